// Package rod provides a bustop.Fetcher backed by headless Chrome, for
// forum pages served behind a JavaScript check.
package rod

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/fwojciec/bustop"
	"github.com/go-rod/rod/lib/proto"
)

// DefaultFetchTimeout bounds a single page load.
const DefaultFetchTimeout = 10 * time.Second

// DefaultHeaders are sent with every navigation, as name/value pairs.
var DefaultHeaders = []string{
	"Cookie", "existmag=mag",
	"Accept-Language", "zh-CN,zh-Hans;q=0.9",
}

// Ensure Fetcher implements bustop.Fetcher at compile time.
var _ bustop.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves rendered HTML from URLs using Chrome browser automation.
// Fetcher is safe for concurrent use by multiple goroutines.
type Fetcher struct {
	manager      *BrowserManager
	fetchTimeout time.Duration
	headers      []string
	browserOpts  []ManagerOption
	closed       atomic.Bool
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithFetchTimeout sets the per-page load timeout.
func WithFetchTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.fetchTimeout = d
	}
}

// WithHeaders appends name/value header pairs to DefaultHeaders.
func WithHeaders(pairs ...string) Option {
	return func(f *Fetcher) {
		f.headers = append(f.headers, pairs...)
	}
}

// WithBrowserOptions configures the BrowserManager the fetcher launches.
func WithBrowserOptions(opts ...ManagerOption) Option {
	return func(f *Fetcher) {
		f.browserOpts = append(f.browserOpts, opts...)
	}
}

// NewFetcher creates a new Fetcher that launches a headless Chrome browser.
// Close must be called when the Fetcher is no longer needed.
//
// Returns an error if Chrome/Chromium cannot be found or launched.
func NewFetcher(opts ...Option) (*Fetcher, error) {
	f := &Fetcher{
		fetchTimeout: DefaultFetchTimeout,
		headers:      append([]string(nil), DefaultHeaders...),
	}
	for _, opt := range opts {
		opt(f)
	}

	manager, err := NewBrowserManager(f.browserOpts...)
	if err != nil {
		return nil, err
	}
	f.manager = manager

	return f, nil
}

// Fetch navigates to the URL and returns the rendered HTML.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	if f.closed.Load() {
		return "", bustop.Errorf(bustop.EINVALID, "fetcher is closed")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, f.fetchTimeout)
	defer cancel()

	page, err := f.manager.Browser().Page(proto.TargetCreateTarget{})
	if err != nil {
		return "", err
	}
	defer page.Close()

	page = page.Context(ctx)

	cleanup, err := page.SetExtraHeaders(f.headers)
	if err != nil {
		return "", err
	}
	defer cleanup()

	if err := page.Navigate(url); err != nil {
		return "", err
	}
	if err := page.WaitLoad(); err != nil {
		return "", err
	}

	html, err := page.HTML()
	if err != nil {
		return "", err
	}

	f.manager.IncrementPageCount()
	return html, nil
}

// LauncherPID returns the process ID of the browser launcher.
func (f *Fetcher) LauncherPID() int {
	return f.manager.LauncherPID()
}

// Close releases browser resources. Close is safe to call multiple times.
func (f *Fetcher) Close() error {
	if !f.closed.CompareAndSwap(false, true) {
		return nil
	}
	return f.manager.Close()
}
