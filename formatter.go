package bustop

import (
	"fmt"
	"strings"
)

// Display layouts for timestamps.
const (
	dateLayout     = "2006-01-02"
	talkTimeLayout = "2006-01-02 15:04:05"
	timeLayout     = "2006-01-02 15:04"
)

// FormatArticles formats listing rows for terminal display.
// Rows are numbered from 1 and separated by blank lines.
func FormatArticles(articles []Article) string {
	if len(articles) == 0 {
		return ""
	}

	parts := make([]string, 0, len(articles))
	for i, a := range articles {
		var b strings.Builder
		fmt.Fprintf(&b, "%d. %s\n", i+1, a.Title)
		fmt.Fprintf(&b, "   %s · %s · views %d · replies %d\n",
			a.Author.Name, a.PublishedAt.Format(dateLayout), a.Views, a.Replies)
		fmt.Fprintf(&b, "   last reply %s @ %s\n",
			a.LastReply.Name, a.LastReply.PublishedAt.Format(timeLayout))
		b.WriteString("   " + a.Href)
		parts = append(parts, b.String())
	}

	return strings.Join(parts, "\n\n")
}

// FormatTalkPage formats a thread as markdown: a title heading, then one
// section per talk with its body blocks and replies.
func FormatTalkPage(page *TalkPage) string {
	if page == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString("# " + page.Title + "\n")
	for _, talk := range page.Talks {
		b.WriteString("\n")
		b.WriteString(FormatTalk(talk))
	}
	return b.String()
}

// FormatTalk formats a single post as a markdown section.
func FormatTalk(talk Talk) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## #%d %s @ %s\n", talk.Floor, talk.AuthorName, talk.PublishedAt.Format(talkTimeLayout))

	for _, c := range talk.Contents {
		b.WriteString("\n")
		switch c.Kind {
		case ContentText:
			b.WriteString(c.Text + "\n")
		case ContentImage:
			b.WriteString("![](" + c.URL + ")\n")
		case ContentQuote:
			if c.Quote == nil {
				continue
			}
			fmt.Fprintf(&b, "> %s @ %s\n> %s\n", c.Quote.Author, c.Quote.PublishedAt.Format(timeLayout), c.Quote.Text)
		}
	}

	if len(talk.Replies) > 0 {
		b.WriteString("\n")
		for _, r := range talk.Replies {
			fmt.Fprintf(&b, "- %s @ %s: %s\n", r.AuthorName, r.PublishedAt.Format(timeLayout), r.Content)
		}
	}

	return b.String()
}
