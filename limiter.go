package bustop

import "context"

// DomainLimiter provides per-host rate limiting for requests to the forum
// and its image hosts.
type DomainLimiter interface {
	// Wait blocks until the rate limit allows a request to the domain.
	// Returns an error if the context is canceled.
	Wait(ctx context.Context, domain string) error
}
