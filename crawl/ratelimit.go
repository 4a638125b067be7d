package crawl

import (
	"context"
	"sync"

	"github.com/fwojciec/bustop"
	"golang.org/x/time/rate"
)

var _ bustop.DomainLimiter = (*DomainLimiter)(nil)

// DomainLimiter keeps one token bucket per host, so forum pages and image
// hosts are throttled independently. A rate of zero or less means no limit.
type DomainLimiter struct {
	mu       sync.Mutex
	buckets  map[string]*rate.Limiter
	rps      float64
	hostRate map[string]float64
}

// LimiterOption configures a DomainLimiter.
type LimiterOption func(*DomainLimiter)

// WithHostRate gives host its own rate instead of the default.
func WithHostRate(host string, rps float64) LimiterOption {
	return func(d *DomainLimiter) {
		d.hostRate[host] = rps
	}
}

// NewDomainLimiter creates a DomainLimiter allowing rps requests per second
// to each host, without bursts.
func NewDomainLimiter(rps float64, opts ...LimiterOption) *DomainLimiter {
	d := &DomainLimiter{
		buckets:  make(map[string]*rate.Limiter),
		rps:      rps,
		hostRate: make(map[string]float64),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Wait blocks until the rate limit allows a request to the domain.
// Returns an error if the context is canceled before the wait completes.
func (d *DomainLimiter) Wait(ctx context.Context, domain string) error {
	return d.bucket(domain).Wait(ctx)
}

// Rate returns the requests per second allowed to domain.
func (d *DomainLimiter) Rate(domain string) float64 {
	if rps, ok := d.hostRate[domain]; ok {
		return rps
	}
	return d.rps
}

func (d *DomainLimiter) bucket(domain string) *rate.Limiter {
	d.mu.Lock()
	defer d.mu.Unlock()

	if b, ok := d.buckets[domain]; ok {
		return b
	}

	limit := rate.Inf
	if rps := d.Rate(domain); rps > 0 {
		limit = rate.Limit(rps)
	}
	b := rate.NewLimiter(limit, 1)
	d.buckets[domain] = b
	return b
}
