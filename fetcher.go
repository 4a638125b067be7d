package bustop

import "context"

// Fetcher retrieves page HTML from URLs.
// Implementations add whatever request headers the forum requires and
// return the decoded body only for a successful response.
type Fetcher interface {
	// Fetch requests the URL and returns the response body as text.
	// The context controls timeout and cancellation.
	Fetch(ctx context.Context, url string) (html string, err error)

	// Close releases resources held by the fetcher.
	Close() error
}
