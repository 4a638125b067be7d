package bustop

import (
	"context"
	"time"
)

// PageKind distinguishes the first page of a thread, which carries the
// title and pagination, from the pages that follow it.
type PageKind int

// Page kinds.
const (
	PageFirst PageKind = iota + 1
	PageContinuation
)

// PageKindOf classifies a 1-based page number. Anything below 2 is the
// first page.
func PageKindOf(page int) PageKind {
	if page <= 1 {
		return PageFirst
	}
	return PageContinuation
}

// String returns a short name for logging.
func (k PageKind) String() string {
	switch k {
	case PageFirst:
		return "first"
	case PageContinuation:
		return "continuation"
	}
	return "unknown"
}

// TalkPage is a thread as discovered from its first page.
type TalkPage struct {
	// TotalPages is at least 1.
	TotalPages uint32 `json:"totalPages"`
	Title      string `json:"title"`
	Href       string `json:"href"`
	Talks      []Talk `json:"talks"`
}

// Talk is a full forum post.
type Talk struct {
	AuthorName    string    `json:"authorName"`
	AuthorPicture string    `json:"authorPicture"`
	PublishedAt   time.Time `json:"publishedAt"`

	// Floor is the post's position in its thread as displayed (#N).
	// The thread-opening post is always floor 1.
	Floor uint32 `json:"floor"`

	Contents []Content `json:"contents"`
	Replies  []Reply   `json:"replies"`
}

// ContentKind tags the variant held by a Content.
type ContentKind string

// Content kinds.
const (
	ContentText  ContentKind = "text"
	ContentImage ContentKind = "image"
	ContentQuote ContentKind = "quote"
)

// Content is one block of a post body: a text run, an image, or a quote.
// Exactly one of Text, URL, Quote is meaningful, selected by Kind.
type Content struct {
	Kind  ContentKind `json:"kind"`
	Text  string      `json:"text,omitempty"`
	URL   string      `json:"url,omitempty"`
	Quote *Quote      `json:"quote,omitempty"`
}

// Quote is a citation of an earlier post embedded in a post body.
type Quote struct {
	Author      string    `json:"author"`
	PublishedAt time.Time `json:"publishedAt"`
	Text        string    `json:"text"`
}

// TextContent returns a text Content.
func TextContent(text string) Content {
	return Content{Kind: ContentText, Text: text}
}

// ImageContent returns an image Content.
func ImageContent(url string) Content {
	return Content{Kind: ContentImage, URL: url}
}

// QuoteContent returns a quote Content.
func QuoteContent(q Quote) Content {
	return Content{Kind: ContentQuote, Quote: &q}
}

// Reply is a short comment attached to a Talk.
type Reply struct {
	AuthorName    string    `json:"authorName"`
	AuthorPicture string    `json:"authorPicture"`
	PublishedAt   time.Time `json:"publishedAt"`
	Content       string    `json:"content"`
}

// ThreadUpdate is the result of parsing one page of a thread.
// First pages carry a whole TalkPage to replace what the caller holds;
// continuation pages carry a batch of talks only.
type ThreadUpdate struct {
	Kind  PageKind
	Page  *TalkPage
	Talks []Talk
}

// Apply merges the update into the page the caller currently holds and
// returns the result. A first-page update replaces current entirely. A
// continuation update keeps current's title and page count and swaps in
// the new batch of talks. current is never modified.
func (u *ThreadUpdate) Apply(current *TalkPage) (*TalkPage, error) {
	switch u.Kind {
	case PageFirst:
		if u.Page == nil {
			return nil, Errorf(EINVALID, "first-page update without a page")
		}
		return u.Page, nil
	case PageContinuation:
		if current == nil {
			return nil, Errorf(EINVALID, "continuation update requires the thread's first page")
		}
		next := *current
		next.Talks = u.Talks
		return &next, nil
	}
	return nil, Errorf(EINVALID, "unknown page kind %d", u.Kind)
}

// ThreadParser extracts talks from a page of a thread.
type ThreadParser interface {
	// ParseThread parses one page of the thread at href. For PageFirst the
	// title is required and its absence fails the whole page with
	// EINVALID. For PageContinuation only the posts are extracted.
	ParseThread(html string, href string, kind PageKind) (*ThreadUpdate, error)
}

// ThreadService represents a service for managing archived threads.
type ThreadService interface {
	// ReplaceThread stores a thread from its first page, discarding any
	// talks previously stored for it.
	ReplaceThread(ctx context.Context, page *TalkPage) error

	// AppendTalks adds or updates the talks of a continuation page.
	// Returns the number of talks whose content changed.
	// Returns ENOTFOUND if the thread has not been stored.
	AppendTalks(ctx context.Context, href string, page int, talks []Talk) (int, error)

	// FindThread retrieves a thread with all stored talks ordered by floor.
	// Returns ENOTFOUND if the thread does not exist.
	FindThread(ctx context.Context, href string) (*TalkPage, error)
}

// FloorAnomaly reports a talk whose floor number does not increase over
// the talk before it.
type FloorAnomaly struct {
	Index    int
	Floor    uint32
	Previous uint32
}

// FloorAnomalies checks that floor numbers strictly increase in talk order.
// The opening post's floor is synthesized rather than read from markup, so
// a mismatch with the markup's own counter shows up here.
func FloorAnomalies(talks []Talk) []FloorAnomaly {
	var anomalies []FloorAnomaly
	for i := 1; i < len(talks); i++ {
		prev, cur := talks[i-1].Floor, talks[i].Floor
		if cur <= prev {
			anomalies = append(anomalies, FloorAnomaly{Index: i, Floor: cur, Previous: prev})
		}
	}
	return anomalies
}

// ThreadWriter persists a thread outside the database.
type ThreadWriter interface {
	// WriteThread writes page and returns where it was written.
	WriteThread(ctx context.Context, page *TalkPage) (string, error)
}
