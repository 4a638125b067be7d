// Package cache provides an in-memory page cache backed by go-cache.
package cache

import (
	"context"
	"time"

	"github.com/fwojciec/bustop"
	gocache "github.com/patrickmn/go-cache"
)

// Default cache timings.
const (
	DefaultTTL             = 5 * time.Minute
	DefaultCleanupInterval = 10 * time.Minute
)

// Ensure Fetcher implements bustop.Fetcher at compile time.
var _ bustop.Fetcher = (*Fetcher)(nil)

// Fetcher wraps a bustop.Fetcher and keeps successful responses in memory
// for a fixed time. Failed fetches are never cached.
type Fetcher struct {
	next  bustop.Fetcher
	pages *gocache.Cache
	ttl   time.Duration
}

// NewFetcher returns a caching fetcher. A non-positive ttl uses DefaultTTL.
func NewFetcher(next bustop.Fetcher, ttl time.Duration) *Fetcher {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Fetcher{
		next:  next,
		pages: gocache.New(ttl, DefaultCleanupInterval),
		ttl:   ttl,
	}
}

// Fetch returns the cached body for url, fetching it on a miss.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	if v, ok := f.pages.Get(url); ok {
		if html, ok := v.(string); ok {
			return html, nil
		}
	}

	html, err := f.next.Fetch(ctx, url)
	if err != nil {
		return "", err
	}
	f.pages.Set(url, html, f.ttl)
	return html, nil
}

// Len returns the number of cached pages, expired ones included until
// the next cleanup.
func (f *Fetcher) Len() int {
	return f.pages.ItemCount()
}

// Close drops the cache and closes the wrapped fetcher.
func (f *Fetcher) Close() error {
	f.pages.Flush()
	return f.next.Close()
}
