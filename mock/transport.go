package mock

import (
	"context"

	"github.com/fwojciec/bustop"
)

var (
	_ bustop.Fetcher       = (*Fetcher)(nil)
	_ bustop.DomainLimiter = (*DomainLimiter)(nil)
)

// Fetcher is a mock implementation of bustop.Fetcher.
// A nil CloseFn makes Close a no-op.
type Fetcher struct {
	FetchFn func(ctx context.Context, url string) (string, error)
	CloseFn func() error
}

func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	return f.FetchFn(ctx, url)
}

func (f *Fetcher) Close() error {
	if f.CloseFn == nil {
		return nil
	}
	return f.CloseFn()
}

// DomainLimiter is a mock implementation of bustop.DomainLimiter.
type DomainLimiter struct {
	WaitFn func(ctx context.Context, domain string) error
}

func (l *DomainLimiter) Wait(ctx context.Context, domain string) error {
	return l.WaitFn(ctx, domain)
}
