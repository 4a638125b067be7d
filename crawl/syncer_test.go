package crawl_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/fwojciec/bustop"
	"github.com/fwojciec/bustop/crawl"
	"github.com/fwojciec/bustop/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pageFetcher serves the page number found in the URL as the body.
func pageFetcher(fail map[string]bool) *mock.Fetcher {
	return &mock.Fetcher{
		FetchFn: func(ctx context.Context, url string) (string, error) {
			page := "1"
			if i := strings.LastIndex(url, "page="); i >= 0 {
				page = url[i+len("page="):]
			}
			if fail[page] {
				return "", bustop.Errorf(bustop.EINVALID, "page %s unavailable", page)
			}
			return page, nil
		},
	}
}

func TestSyncer_SyncListings(t *testing.T) {
	t.Parallel()

	t.Run("saves each article once across shifted pages", func(t *testing.T) {
		t.Parallel()

		rows := map[string][]string{
			"1": {"a", "b"},
			"2": {"b", "c"},
			"3": {"d"},
		}

		var saved []bustop.Article
		syncer := &crawl.Syncer{
			Reader: &crawl.Reader{
				Fetcher: pageFetcher(nil),
				Listings: &mock.ListingParser{
					ParseListingFn: func(html string) ([]bustop.Article, error) {
						var articles []bustop.Article
						for _, tid := range rows[html] {
							articles = append(articles, bustop.Article{Title: tid, Href: "https://www.javbus.com/forum/?tid=" + tid})
						}
						return articles, nil
					},
				},
			},
			Articles: &mock.ArticleService{
				SaveArticlesFn: func(ctx context.Context, articles []bustop.Article) (int, error) {
					saved = articles
					return len(articles), nil
				},
			},
			Concurrency: 2,
		}

		result, err := syncer.SyncListings(context.Background(), 3, nil)

		require.NoError(t, err)
		assert.Equal(t, &crawl.Result{Pages: 3, Saved: 4, Skipped: 1}, result)
		titles := make([]string, len(saved))
		for i, a := range saved {
			titles[i] = a.Title
		}
		assert.Equal(t, []string{"a", "b", "c", "d"}, titles)
	})

	t.Run("counts failed pages and reports progress", func(t *testing.T) {
		t.Parallel()

		var mu sync.Mutex
		var events []crawl.ProgressEvent
		syncer := &crawl.Syncer{
			Reader: &crawl.Reader{
				Fetcher: pageFetcher(map[string]bool{"2": true}),
				Listings: &mock.ListingParser{
					ParseListingFn: func(html string) ([]bustop.Article, error) {
						return []bustop.Article{{Href: "https://www.javbus.com/forum/?tid=" + html}}, nil
					},
				},
			},
			Articles: &mock.ArticleService{
				SaveArticlesFn: func(ctx context.Context, articles []bustop.Article) (int, error) {
					return len(articles), nil
				},
			},
		}

		result, err := syncer.SyncListings(context.Background(), 3, func(e crawl.ProgressEvent) {
			mu.Lock()
			defer mu.Unlock()
			events = append(events, e)
		})

		require.NoError(t, err)
		assert.Equal(t, &crawl.Result{Pages: 2, Saved: 2, Failed: 1}, result)

		require.Len(t, events, 5)
		assert.Equal(t, crawl.ProgressStarted, events[0].Type)
		assert.Equal(t, 3, events[0].Total)
		assert.Equal(t, crawl.ProgressFinished, events[4].Type)

		var failed []crawl.ProgressEvent
		for _, e := range events[1:4] {
			if e.Type == crawl.ProgressFailed {
				failed = append(failed, e)
			}
		}
		require.Len(t, failed, 1)
		assert.Contains(t, failed[0].URL, "page=2")
		assert.Error(t, failed[0].Error)
	})

	t.Run("skips save when nothing parsed", func(t *testing.T) {
		t.Parallel()

		syncer := &crawl.Syncer{
			Reader: &crawl.Reader{
				Fetcher: pageFetcher(nil),
				Listings: &mock.ListingParser{
					ParseListingFn: func(html string) ([]bustop.Article, error) {
						return nil, nil
					},
				},
			},
			Articles: &mock.ArticleService{
				SaveArticlesFn: func(ctx context.Context, articles []bustop.Article) (int, error) {
					t.Fatal("SaveArticles must not be called")
					return 0, nil
				},
			},
		}

		result, err := syncer.SyncListings(context.Background(), 1, nil)

		require.NoError(t, err)
		assert.Equal(t, &crawl.Result{Pages: 1}, result)
	})

	t.Run("returns storage error", func(t *testing.T) {
		t.Parallel()

		syncer := &crawl.Syncer{
			Reader: &crawl.Reader{
				Fetcher: pageFetcher(nil),
				Listings: &mock.ListingParser{
					ParseListingFn: func(html string) ([]bustop.Article, error) {
						return []bustop.Article{{Href: "https://www.javbus.com/forum/?tid=1"}}, nil
					},
				},
			},
			Articles: &mock.ArticleService{
				SaveArticlesFn: func(ctx context.Context, articles []bustop.Article) (int, error) {
					return 0, errors.New("disk full")
				},
			},
		}

		_, err := syncer.SyncListings(context.Background(), 1, nil)

		require.EqualError(t, err, "disk full")
	})

	t.Run("rejects zero pages", func(t *testing.T) {
		t.Parallel()

		_, err := (&crawl.Syncer{}).SyncListings(context.Background(), 0, nil)

		require.Error(t, err)
		assert.Equal(t, bustop.EINVALID, bustop.ErrorCode(err))
	})
}

func TestSyncer_SyncThread(t *testing.T) {
	t.Parallel()

	threadParser := func(totalPages uint32) *mock.ThreadParser {
		return &mock.ThreadParser{
			ParseThreadFn: func(html, href string, kind bustop.PageKind) (*bustop.ThreadUpdate, error) {
				var page int
				_, _ = fmt.Sscan(html, &page)
				talks := []bustop.Talk{
					{Floor: uint32(page*10 + 1)},
					{Floor: uint32(page*10 + 2)},
				}
				if kind == bustop.PageFirst {
					return &bustop.ThreadUpdate{
						Kind: bustop.PageFirst,
						Page: &bustop.TalkPage{TotalPages: totalPages, Title: "t", Href: href, Talks: talks},
					}, nil
				}
				return &bustop.ThreadUpdate{Kind: bustop.PageContinuation, Talks: talks}, nil
			},
		}
	}

	t.Run("replaces first page and appends the rest in order", func(t *testing.T) {
		t.Parallel()

		var replaced *bustop.TalkPage
		var appended []int
		syncer := &crawl.Syncer{
			Reader: &crawl.Reader{
				Fetcher: pageFetcher(nil),
				Threads: threadParser(4),
			},
			Threads: &mock.ThreadService{
				ReplaceThreadFn: func(ctx context.Context, page *bustop.TalkPage) error {
					replaced = page
					return nil
				},
				AppendTalksFn: func(ctx context.Context, href string, page int, talks []bustop.Talk) (int, error) {
					assert.Equal(t, testThreadHref, href)
					assert.Equal(t, uint32(page*10+1), talks[0].Floor)
					appended = append(appended, page)
					return len(talks), nil
				},
			},
			Concurrency: 3,
		}

		result, err := syncer.SyncThread(context.Background(), testThreadHref, nil)

		require.NoError(t, err)
		require.NotNil(t, replaced)
		assert.Equal(t, "t", replaced.Title)
		assert.Equal(t, []int{2, 3, 4}, appended)
		assert.Equal(t, &crawl.Result{Pages: 4, Saved: 8}, result)
	})

	t.Run("does not fetch further pages for single-page thread", func(t *testing.T) {
		t.Parallel()

		syncer := &crawl.Syncer{
			Reader: &crawl.Reader{
				Fetcher: pageFetcher(nil),
				Threads: threadParser(1),
			},
			Threads: &mock.ThreadService{
				ReplaceThreadFn: func(ctx context.Context, page *bustop.TalkPage) error {
					return nil
				},
				AppendTalksFn: func(ctx context.Context, href string, page int, talks []bustop.Talk) (int, error) {
					t.Fatal("AppendTalks must not be called")
					return 0, nil
				},
			},
		}

		result, err := syncer.SyncThread(context.Background(), testThreadHref, nil)

		require.NoError(t, err)
		assert.Equal(t, &crawl.Result{Pages: 1, Saved: 2}, result)
	})

	t.Run("counts failed continuation pages", func(t *testing.T) {
		t.Parallel()

		syncer := &crawl.Syncer{
			Reader: &crawl.Reader{
				Fetcher: pageFetcher(map[string]bool{"3": true}),
				Threads: threadParser(3),
			},
			Threads: &mock.ThreadService{
				ReplaceThreadFn: func(ctx context.Context, page *bustop.TalkPage) error {
					return nil
				},
				AppendTalksFn: func(ctx context.Context, href string, page int, talks []bustop.Talk) (int, error) {
					return len(talks), nil
				},
			},
		}

		result, err := syncer.SyncThread(context.Background(), testThreadHref, nil)

		require.NoError(t, err)
		assert.Equal(t, &crawl.Result{Pages: 2, Saved: 4, Failed: 1}, result)
	})

	t.Run("rejects thread claiming more pages than the limit", func(t *testing.T) {
		t.Parallel()

		var fetches atomic.Int64
		fetcher := pageFetcher(nil)
		fetch := fetcher.FetchFn
		fetcher.FetchFn = func(ctx context.Context, url string) (string, error) {
			fetches.Add(1)
			return fetch(ctx, url)
		}
		syncer := &crawl.Syncer{
			Reader: &crawl.Reader{
				Fetcher: fetcher,
				Threads: threadParser(4000000000),
			},
			Threads: &mock.ThreadService{
				ReplaceThreadFn: func(ctx context.Context, page *bustop.TalkPage) error {
					t.Fatal("ReplaceThread must not be called")
					return nil
				},
			},
		}

		result, err := syncer.SyncThread(context.Background(), testThreadHref, nil)

		require.Error(t, err)
		assert.Nil(t, result)
		assert.Equal(t, bustop.EINVALID, bustop.ErrorCode(err))
		assert.Equal(t, int64(1), fetches.Load())
	})

	t.Run("honours a custom page limit", func(t *testing.T) {
		t.Parallel()

		syncer := &crawl.Syncer{
			Reader: &crawl.Reader{
				Fetcher: pageFetcher(nil),
				Threads: threadParser(6),
			},
			MaxPages: 5,
		}

		_, err := syncer.SyncThread(context.Background(), testThreadHref, nil)

		assert.Equal(t, bustop.EINVALID, bustop.ErrorCode(err))
	})

	t.Run("fails when first page cannot be read", func(t *testing.T) {
		t.Parallel()

		syncer := &crawl.Syncer{
			Reader: &crawl.Reader{
				Fetcher: pageFetcher(map[string]bool{"1": true}),
				Threads: threadParser(3),
			},
		}

		_, err := syncer.SyncThread(context.Background(), testThreadHref, nil)

		require.Error(t, err)
	})
}
