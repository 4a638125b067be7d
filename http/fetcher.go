// Package http provides an HTTP-based implementation of bustop.Fetcher
// that sends the request headers the forum expects.
package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/fwojciec/bustop"
)

// DefaultFetchTimeout is the default timeout for HTTP requests.
// Kept consistent with rod.DefaultFetchTimeout (10s).
const DefaultFetchTimeout = 10 * time.Second

// DefaultUserAgent identifies the client when no other is configured.
const DefaultUserAgent = "bustop"

// DefaultHeaders are sent with every request. The cookie skips the
// age-confirmation interstitial; the language selects the Chinese
// template the parsers are written against.
var DefaultHeaders = map[string]string{
	"Cookie":          "existmag=mag",
	"Accept-Language": "zh-CN,zh-Hans;q=0.9",
}

// DefaultReferers maps request hosts to the Referer they require.
// The avatar and image hosts refuse hotlinked requests.
var DefaultReferers = map[string]string{
	"uc.javbus22.com": "https://www.javbus.com/",
	"forum.javcdn.cc": "https://www.javbus.com/",
	"www.javbus.com":  "https://www.javbus.com/forum/forum.php",
}

// Ensure Fetcher implements bustop.Fetcher at compile time.
var _ bustop.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves HTML content from URLs using HTTP requests.
// Unlike rod.Fetcher, this does not execute JavaScript.
type Fetcher struct {
	client    *http.Client
	timeout   time.Duration
	userAgent string
	headers   map[string]string
	referers  map[string]string
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the timeout for HTTP requests.
// Defaults to DefaultFetchTimeout (10s) if not specified.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// WithHeaders adds request headers, overriding defaults with the same name.
func WithHeaders(headers map[string]string) Option {
	return func(f *Fetcher) {
		for k, v := range headers {
			f.headers[k] = v
		}
	}
}

// WithReferers adds host to Referer mappings, overriding defaults for the
// same host.
func WithReferers(referers map[string]string) Option {
	return func(f *Fetcher) {
		for k, v := range referers {
			f.referers[k] = v
		}
	}
}

// NewFetcher creates a new HTTP-based Fetcher.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		timeout:   DefaultFetchTimeout,
		userAgent: DefaultUserAgent,
		headers:   make(map[string]string, len(DefaultHeaders)),
		referers:  make(map[string]string, len(DefaultReferers)),
	}
	for k, v := range DefaultHeaders {
		f.headers[k] = v
	}
	for k, v := range DefaultReferers {
		f.referers[k] = v
	}
	for _, opt := range opts {
		opt(f)
	}

	f.client = &http.Client{
		Timeout: f.timeout,
	}

	return f
}

// Fetch retrieves the HTML content from the given URL.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", err
	}
	f.setHeaders(req)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound, http.StatusGone:
		// Deleted threads and out-of-range pages.
		return "", bustop.Errorf(bustop.ENOTFOUND, "HTTP %d for %s", resp.StatusCode, rawURL)
	default:
		return "", fmt.Errorf("HTTP %d for %s", resp.StatusCode, rawURL)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	return string(body), nil
}

func (f *Fetcher) setHeaders(req *http.Request) {
	req.Header.Set("User-Agent", f.userAgent)
	for k, v := range f.headers {
		req.Header.Set(k, v)
	}
	if referer := f.Referer(req.URL); referer != "" {
		req.Header.Set("Referer", referer)
	}
}

// Referer returns the Referer sent for requests to u, or "" if its host
// has none configured.
func (f *Fetcher) Referer(u *url.URL) string {
	return f.referers[u.Hostname()]
}

// Close releases resources. For HTTP fetcher this is a no-op since
// http.Client doesn't require explicit cleanup.
func (f *Fetcher) Close() error {
	return nil
}
