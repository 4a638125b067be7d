package bustop

import (
	"context"
	"time"
)

// Article is one row of a forum's thread listing.
type Article struct {
	Title  string `json:"title"`
	Author Author `json:"author"`

	// PublishedAt is a calendar date; its time of day is always zero.
	PublishedAt time.Time `json:"publishedAt"`

	Views   uint32 `json:"views"`
	Replies uint32 `json:"replies"`

	LastReply LastReply `json:"lastReply"`

	// PreviewImages holds absolute image URLs in document order.
	PreviewImages []string `json:"previewImages"`

	// Href is the absolute URL of the thread's detail page.
	Href string `json:"href"`
}

// Author identifies the member who opened a thread.
type Author struct {
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// LastReply identifies the most recent reply in a thread.
type LastReply struct {
	Name        string    `json:"name"`
	PublishedAt time.Time `json:"publishedAt"`
}

// ListingParser extracts articles from a thread-listing page.
type ListingParser interface {
	// ParseListing returns every row of the listing whose required fields
	// could all be resolved, in document order. Incomplete rows are dropped.
	// Returns EINVALID if the input cannot be read as HTML.
	ParseListing(html string) ([]Article, error)
}

// ArticleService represents a service for managing archived articles.
type ArticleService interface {
	// SaveArticles inserts or updates articles, keyed by Href.
	// Returns the number of articles written.
	SaveArticles(ctx context.Context, articles []Article) (int, error)

	// FindArticles retrieves articles matching the filter, newest first.
	FindArticles(ctx context.Context, filter ArticleFilter) ([]*Article, error)
}

// ArticleFilter represents a filter for FindArticles.
type ArticleFilter struct {
	Href   *string `json:"href"`
	Author *string `json:"author"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}
