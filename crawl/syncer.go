package crawl

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/fwojciec/bustop"
	"github.com/fwojciec/bustop/bloom"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is the number of pages fetched at once.
const DefaultConcurrency = 4

// DefaultMaxPages bounds the page count a thread may claim.
const DefaultMaxPages = 1000

// Listing dedup filter sizing.
const (
	articlesPerPage        = 50
	dedupFalsePositiveRate = 0.001
)

// Syncer archives listings and threads into storage.
type Syncer struct {
	Reader      *Reader
	Articles    bustop.ArticleService
	Threads     bustop.ThreadService
	Concurrency int
	Logger      *slog.Logger

	// MaxPages rejects threads whose pager claims more pages.
	// Defaults to DefaultMaxPages when zero.
	MaxPages int
}

// Result holds the outcome of a sync operation.
type Result struct {
	// Pages is the number of pages fetched and parsed.
	Pages int

	// Saved is the number of records written to storage.
	Saved int

	// Skipped is the number of records seen earlier in the same sync.
	Skipped int

	// Failed is the number of pages that could not be fetched or parsed.
	Failed int
}

// pageResult holds the outcome of reading one page.
type pageResult struct {
	page     int
	url      string
	articles []bustop.Article
	update   *bustop.ThreadUpdate
	err      error
}

// SyncListings reads listing pages 1 through pages concurrently and saves
// every article once. Rows that reappear on a later page, because the
// listing shifted while it was paged through, are skipped.
func (s *Syncer) SyncListings(ctx context.Context, pages int, progress ProgressFunc) (*Result, error) {
	if pages < 1 {
		return nil, bustop.Errorf(bustop.EINVALID, "page count must be at least 1")
	}

	results, err := s.readPages(ctx, 1, pages, progress, func(ctx context.Context, page int) pageResult {
		articles, err := s.Reader.Listing(ctx, page)
		return pageResult{url: s.Reader.ListingURL(page), articles: articles, err: err}
	})
	if err != nil {
		return nil, err
	}

	var result Result
	seen := bloom.NewFilter(uint(pages*articlesPerPage), dedupFalsePositiveRate)
	var unique []bustop.Article
	for _, r := range results {
		if r.err != nil {
			result.Failed++
			continue
		}
		result.Pages++
		for _, a := range r.articles {
			if seen.Seen(a.Href) {
				result.Skipped++
				continue
			}
			unique = append(unique, a)
		}
	}

	if len(unique) > 0 {
		saved, err := s.Articles.SaveArticles(ctx, unique)
		if err != nil {
			return nil, err
		}
		result.Saved = saved
	}

	return &result, nil
}

// SyncThread archives every page of the thread at href. The first page
// replaces whatever was stored for the thread; the remaining pages are
// read concurrently and appended in page order.
func (s *Syncer) SyncThread(ctx context.Context, href string, progress ProgressFunc) (*Result, error) {
	update, err := s.Reader.Thread(ctx, href, 1)
	if err != nil {
		return nil, err
	}
	first, err := update.Apply(nil)
	if err != nil {
		return nil, err
	}
	if limit := s.maxPages(); int64(first.TotalPages) > int64(limit) {
		return nil, bustop.Errorf(bustop.EINVALID, "thread claims %d pages, more than the limit of %d", first.TotalPages, limit)
	}
	if err := s.Threads.ReplaceThread(ctx, first); err != nil {
		return nil, err
	}

	result := Result{Pages: 1, Saved: len(first.Talks)}
	talks := first.Talks

	if first.TotalPages > 1 {
		results, err := s.readPages(ctx, 2, int(first.TotalPages), progress, func(ctx context.Context, page int) pageResult {
			update, err := s.Reader.Thread(ctx, href, page)
			return pageResult{url: threadPageURL(href, page), update: update, err: err}
		})
		if err != nil {
			return nil, err
		}

		for _, r := range results {
			if r.err != nil {
				result.Failed++
				continue
			}
			n, err := s.Threads.AppendTalks(ctx, href, r.page, r.update.Talks)
			if err != nil {
				return nil, err
			}
			result.Pages++
			result.Saved += n
			talks = append(talks, r.update.Talks...)
		}
	}

	for _, a := range bustop.FloorAnomalies(talks) {
		s.logger().Warn("floor out of order",
			"url", href,
			"floor", a.Floor,
			"previous", a.Previous,
		)
	}

	return &result, nil
}

// readPages reads pages from through to concurrently and returns the
// results in page order. Failed pages are reported through progress and
// in their result; only cancellation of ctx fails the call.
func (s *Syncer) readPages(ctx context.Context, from, to int, progress ProgressFunc, read func(context.Context, int) pageResult) ([]pageResult, error) {
	concurrency := s.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	total := to - from + 1
	resultCh := make(chan pageResult, concurrency)
	var completed atomic.Int64

	if progress != nil {
		progress(ProgressEvent{Type: ProgressStarted, Total: total})
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	go func() {
		for page := from; page <= to; page++ {
			g.Go(func() error {
				r := read(gctx, page)
				r.page = page
				resultCh <- r
				return nil
			})
		}
		_ = g.Wait()
		close(resultCh)
	}()

	results := make([]pageResult, total)
	for r := range resultCh {
		results[r.page-from] = r
		done := int(completed.Add(1))

		if progress == nil {
			continue
		}
		event := ProgressEvent{
			Type:      ProgressCompleted,
			Completed: done,
			Total:     total,
			URL:       r.url,
		}
		if r.err != nil {
			event.Type = ProgressFailed
			event.Error = r.err
		}
		progress(event)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if progress != nil {
		progress(ProgressEvent{Type: ProgressFinished, Completed: total, Total: total})
	}

	return results, nil
}

func (s *Syncer) maxPages() int {
	if s.MaxPages > 0 {
		return s.MaxPages
	}
	return DefaultMaxPages
}

func (s *Syncer) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.New(slog.DiscardHandler)
}
