// Package crawl fetches forum pages and runs them through the parsers:
// single pages on demand, and whole listings or threads for archiving.
package crawl

import (
	"context"
	"log/slog"
	"net/url"
	"time"

	"github.com/fwojciec/bustop"
)

// Reader fetches one forum page and parses it.
type Reader struct {
	Fetcher  bustop.Fetcher
	Listings bustop.ListingParser
	Threads  bustop.ThreadParser

	// RateLimiter, if set, throttles requests per host.
	RateLimiter bustop.DomainLimiter

	// RetryDelays defaults to DefaultRetryDelays. An empty non-nil slice
	// disables retries.
	RetryDelays []time.Duration

	BaseURL string
	ForumID int
	Logger  *slog.Logger
}

// Listing fetches and parses page of the forum's thread listing.
func (r *Reader) Listing(ctx context.Context, page int) ([]bustop.Article, error) {
	html, err := r.fetch(ctx, r.ListingURL(page))
	if err != nil {
		return nil, err
	}
	return r.Listings.ParseListing(html)
}

// Thread fetches and parses page of the thread at href.
func (r *Reader) Thread(ctx context.Context, href string, page int) (*bustop.ThreadUpdate, error) {
	html, err := r.fetch(ctx, threadPageURL(href, page))
	if err != nil {
		return nil, err
	}
	return r.Threads.ParseThread(html, href, bustop.PageKindOf(page))
}

// ListingURL returns the URL of page of the configured forum's listing.
func (r *Reader) ListingURL(page int) string {
	forumID := r.ForumID
	if forumID <= 0 {
		forumID = bustop.DefaultForumID
	}
	baseURL := r.BaseURL
	if baseURL == "" {
		baseURL = bustop.DefaultBaseURL
	}
	return bustop.ListingURL(baseURL, forumID, page)
}

// threadPageURL returns href itself for the first page, which is how
// threads are linked from listings.
func threadPageURL(href string, page int) string {
	if page <= 1 {
		return href
	}
	return bustop.ThreadPageURL(href, page)
}

func (r *Reader) fetch(ctx context.Context, rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return "", bustop.Errorf(bustop.EINVALID, "invalid URL: %q", rawURL)
	}

	if r.RateLimiter != nil {
		if err := r.RateLimiter.Wait(ctx, u.Host); err != nil {
			return "", err
		}
	}

	delays := r.RetryDelays
	if delays == nil {
		delays = DefaultRetryDelays()
	}
	return FetchWithRetryDelays(ctx, r.Fetcher, rawURL, delays, r.Logger)
}
