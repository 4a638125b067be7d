package slog_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/fwojciec/bustop"
	"github.com/fwojciec/bustop/mock"
	bustopslog "github.com/fwojciec/bustop/slog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggingListingParser_ParseListing(t *testing.T) {
	t.Parallel()

	t.Run("logs article count", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		inner := &mock.ListingParser{
			ParseListingFn: func(html string) ([]bustop.Article, error) {
				return []bustop.Article{{Title: "a"}, {Title: "b"}}, nil
			},
		}

		articles, err := bustopslog.NewLoggingListingParser(inner, newTestLogger(&buf)).ParseListing("<html></html>")

		require.NoError(t, err)
		assert.Len(t, articles, 2)
		output := buf.String()
		assert.Contains(t, output, "parse listing")
		assert.Contains(t, output, "count=2")
		assert.Contains(t, output, "bytes=13")
	})

	t.Run("logs error", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		inner := &mock.ListingParser{
			ParseListingFn: func(html string) ([]bustop.Article, error) {
				return nil, bustop.Errorf(bustop.EINVALID, "empty HTML input")
			},
		}

		_, err := bustopslog.NewLoggingListingParser(inner, newTestLogger(&buf)).ParseListing("")

		require.Error(t, err)
		assert.Contains(t, buf.String(), "err=\"empty HTML input\"")
	})
}

func TestLoggingThreadParser_ParseThread(t *testing.T) {
	t.Parallel()

	t.Run("logs first page talk count", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		inner := &mock.ThreadParser{
			ParseThreadFn: func(html, href string, kind bustop.PageKind) (*bustop.ThreadUpdate, error) {
				return &bustop.ThreadUpdate{
					Kind: bustop.PageFirst,
					Page: &bustop.TalkPage{Talks: []bustop.Talk{{Floor: 1}, {Floor: 2}, {Floor: 3}}},
				}, nil
			},
		}

		_, err := bustopslog.NewLoggingThreadParser(inner, newTestLogger(&buf)).ParseThread("<html></html>", "https://example.com/t", bustop.PageFirst)

		require.NoError(t, err)
		output := buf.String()
		assert.Contains(t, output, "parse thread")
		assert.Contains(t, output, "kind=first")
		assert.Contains(t, output, "count=3")
		assert.NotContains(t, output, "level=WARN")
	})

	t.Run("warns on floors out of order", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		inner := &mock.ThreadParser{
			ParseThreadFn: func(html, href string, kind bustop.PageKind) (*bustop.ThreadUpdate, error) {
				return &bustop.ThreadUpdate{
					Kind:  bustop.PageContinuation,
					Talks: []bustop.Talk{{Floor: 11}, {Floor: 11}},
				}, nil
			},
		}

		_, err := bustopslog.NewLoggingThreadParser(inner, newTestLogger(&buf)).ParseThread("<html></html>", "https://example.com/t", bustop.PageContinuation)

		require.NoError(t, err)
		output := buf.String()
		assert.Contains(t, output, "kind=continuation")
		assert.Contains(t, output, "level=WARN")
		assert.Contains(t, output, "floor out of order")
		assert.Contains(t, output, "index=1")
	})

	t.Run("logs error without update", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		inner := &mock.ThreadParser{
			ParseThreadFn: func(html, href string, kind bustop.PageKind) (*bustop.ThreadUpdate, error) {
				return nil, errors.New("boom")
			},
		}

		_, err := bustopslog.NewLoggingThreadParser(inner, newTestLogger(&buf)).ParseThread("x", "https://example.com/t", bustop.PageFirst)

		require.Error(t, err)
		output := buf.String()
		assert.Contains(t, output, "count=0")
		assert.Contains(t, output, "err=boom")
	})
}

func TestDropLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	bustopslog.DropLogger(newTestLogger(&buf))("talk", "author name")

	output := buf.String()
	assert.Contains(t, output, "dropped record")
	assert.Contains(t, output, "record=talk")
	assert.Contains(t, output, "missing=\"author name\"")
}
