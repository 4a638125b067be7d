package goquery

import (
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/bustop"
)

// Ensure ThreadParser implements bustop.ThreadParser at compile time.
var _ bustop.ThreadParser = (*ThreadParser)(nil)

// ThreadParser extracts talks from thread pages.
// ThreadParser is safe for concurrent use by multiple goroutines.
type ThreadParser struct {
	selectors *ThreadSelectors
	onDrop    DropFunc
}

// ThreadOption configures a ThreadParser.
type ThreadOption func(*ThreadParser)

// WithThreadDropFunc sets a callback for talks and replies left out of
// the result.
func WithThreadDropFunc(fn DropFunc) ThreadOption {
	return func(p *ThreadParser) {
		p.onDrop = fn
	}
}

// NewThreadParser creates a ThreadParser.
func NewThreadParser(selectors *ThreadSelectors, opts ...ThreadOption) *ThreadParser {
	p := &ThreadParser{selectors: selectors}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ParseThread parses one page of the thread at href.
//
// The page kind alone decides what is extracted. A first page yields the
// whole TalkPage: title (required), total page count (1 when the pager is
// absent), the opening post as floor 1, then the repeated posts. A
// continuation page yields only the repeated posts.
func (p *ThreadParser) ParseThread(html string, href string, kind bustop.PageKind) (*bustop.ThreadUpdate, error) {
	doc, err := parseDocument(html)
	if err != nil {
		return nil, err
	}

	switch kind {
	case bustop.PageFirst:
		return p.parseFirstPage(doc.Selection, href)
	case bustop.PageContinuation:
		return &bustop.ThreadUpdate{
			Kind:  bustop.PageContinuation,
			Talks: p.parseItems(doc.Selection),
		}, nil
	}
	return nil, bustop.Errorf(bustop.EINVALID, "unknown page kind %d", kind)
}

func (p *ThreadParser) parseFirstPage(root *goquery.Selection, href string) (*bustop.ThreadUpdate, error) {
	f := newFields(root)
	title := f.leadingText("title", p.selectors.Title)
	if !f.ok() {
		return nil, bustop.Errorf(bustop.EINVALID, "thread title not found: %s", href)
	}

	page := &bustop.TalkPage{
		TotalPages: p.totalPages(root),
		Title:      title,
		Href:       href,
		Talks:      []bustop.Talk{},
	}
	if talk, ok := p.parseMainPost(root); ok {
		page.Talks = append(page.Talks, talk)
	}
	page.Talks = append(page.Talks, p.parseItems(root)...)

	return &bustop.ThreadUpdate{Kind: bustop.PageFirst, Page: page}, nil
}

// totalPages reads the pager's "共 N 頁" label. Single-page threads have
// no pager.
func (p *ThreadParser) totalPages(root *goquery.Selection) uint32 {
	label, ok := root.FindMatcher(p.selectors.Pages).First().Attr("title")
	if !ok {
		return 1
	}
	n, err := strconv.ParseUint(strings.Trim(label, "共頁页 "), 10, 32)
	if err != nil || n == 0 {
		return 1
	}
	return uint32(n)
}

// parseMainPost extracts the thread-opening post. Its markup carries no
// floor counter, so it is floor 1 by definition.
func (p *ThreadParser) parseMainPost(root *goquery.Selection) (bustop.Talk, bool) {
	s := p.selectors
	f := newFields(root)

	talk := bustop.Talk{
		AuthorName:    f.text("author name", s.MainAuthorName),
		AuthorPicture: f.attr("author picture", s.MainAuthorPicture, "src"),
		PublishedAt: f.when("published at", timestamp{
			visible: s.MainPublishedAt,
			layouts: dateTimeLayouts,
		}),
		Floor: 1,
	}
	content := f.first("content", s.MainContent)

	if !f.ok() {
		p.drop("talk", f.missing)
		return bustop.Talk{}, false
	}

	talk.Contents = walkContent(content.Get(0))
	talk.Replies = p.parseReplies(root, s.MainReplies)
	return talk, true
}

// parseItems extracts every repeated post in document order.
func (p *ThreadParser) parseItems(root *goquery.Selection) []bustop.Talk {
	talks := []bustop.Talk{}
	root.FindMatcher(p.selectors.Items).Each(func(_ int, item *goquery.Selection) {
		if talk, ok := p.parseItem(item); ok {
			talks = append(talks, talk)
		}
	})
	return talks
}

func (p *ThreadParser) parseItem(item *goquery.Selection) (bustop.Talk, bool) {
	s := p.selectors
	f := newFields(item)

	talk := bustop.Talk{
		AuthorName:    f.text("author name", s.ItemAuthorName),
		AuthorPicture: f.attr("author picture", s.ItemAuthorPicture, "src"),
		PublishedAt: f.when("published at", timestamp{
			precise: s.ItemPublishedAt,
			visible: s.ItemPublishedAtText,
			layouts: dateTimeLayouts,
		}),
		Floor: f.floor("floor", s.ItemFloor),
	}
	content := f.first("content", s.ItemContent)

	if !f.ok() {
		p.drop("talk", f.missing)
		return bustop.Talk{}, false
	}

	talk.Contents = walkContent(content.Get(0))
	talk.Replies = p.parseReplies(item, s.ItemReplies)
	return talk, true
}

// parseReplies extracts the comments matched by m within scope.
func (p *ThreadParser) parseReplies(scope *goquery.Selection, m goquery.Matcher) []bustop.Reply {
	replies := []bustop.Reply{}
	scope.FindMatcher(m).Each(func(_ int, el *goquery.Selection) {
		if reply, ok := p.parseReply(el); ok {
			replies = append(replies, reply)
		}
	})
	return replies
}

func (p *ThreadParser) parseReply(el *goquery.Selection) (bustop.Reply, bool) {
	s := p.selectors
	f := newFields(el)

	reply := bustop.Reply{
		AuthorName:    f.text("author name", s.ReplyAuthorName),
		AuthorPicture: f.attr("author picture", s.ReplyAuthorPicture, "src"),
		PublishedAt: f.when("published at", timestamp{
			precise: s.ReplyPublishedAt,
			visible: s.ReplyPublishedAtText,
			layouts: minuteLayouts,
		}),
		Content: f.leadingText("content", s.ReplyContent),
	}

	if !f.ok() {
		p.drop("reply", f.missing)
		return bustop.Reply{}, false
	}
	return reply, true
}

func (p *ThreadParser) drop(record, field string) {
	if p.onDrop != nil {
		p.onDrop(record, field)
	}
}
