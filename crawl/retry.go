package crawl

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/bustop"
)

// DefaultRetryDelays returns the backoff delays for fetch retries: 1s, 2s, 4s.
func DefaultRetryDelays() []time.Duration {
	return []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}
}

// permanent reports whether err means the request can never succeed:
// a rejected request or a page the forum says does not exist.
func permanent(err error) bool {
	switch bustop.ErrorCode(err) {
	case bustop.EINVALID, bustop.ENOTFOUND:
		return true
	}
	return false
}

// FetchWithRetryDelays fetches url, sleeping delays[i] before retry i+1,
// so at most len(delays)+1 attempts. Permanent errors are returned at
// once. A nil logger disables retry logging.
func FetchWithRetryDelays(ctx context.Context, fetcher bustop.Fetcher, url string, delays []time.Duration, logger *slog.Logger) (string, error) {
	html, err := fetcher.Fetch(ctx, url)
	for _, delay := range delays {
		if err == nil || permanent(err) {
			break
		}
		if logger != nil {
			logger.Warn("retrying fetch", "url", url, "delay", delay, "err", err)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return "", ctx.Err()
		case <-timer.C:
		}

		html, err = fetcher.Fetch(ctx, url)
	}
	if err != nil {
		return "", err
	}
	return html, nil
}
