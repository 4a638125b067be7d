package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/fwojciec/bustop"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ bustop.ArticleService = (*ArticleService)(nil)

// ArticleService implements bustop.ArticleService using SQLite.
type ArticleService struct {
	db *DB
}

// NewArticleService creates a new ArticleService.
func NewArticleService(db *DB) *ArticleService {
	return &ArticleService{db: db}
}

// SaveArticles inserts new articles and refreshes the counters and last
// reply of known ones, in a single transaction.
func (s *ArticleService) SaveArticles(ctx context.Context, articles []bustop.Article) (int, error) {
	for _, a := range articles {
		if a.Href == "" {
			return 0, bustop.Errorf(bustop.EINVALID, "article href required")
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	now := formatTime(time.Now())
	var n int
	for _, a := range articles {
		images, err := json.Marshal(nonNil(a.PreviewImages))
		if err != nil {
			return 0, err
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO articles (id, href, title, author_name, author_picture, published_at,
				views, replies, last_reply_name, last_reply_at, preview_images, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (href) DO UPDATE SET
				title = excluded.title,
				author_name = excluded.author_name,
				author_picture = excluded.author_picture,
				published_at = excluded.published_at,
				views = excluded.views,
				replies = excluded.replies,
				last_reply_name = excluded.last_reply_name,
				last_reply_at = excluded.last_reply_at,
				preview_images = excluded.preview_images,
				updated_at = excluded.updated_at
		`, uuid.New().String(), a.Href, a.Title, a.Author.Name, a.Author.Picture, formatTime(a.PublishedAt),
			a.Views, a.Replies, a.LastReply.Name, formatTime(a.LastReply.PublishedAt), string(images), now); err != nil {
			return 0, fmt.Errorf("failed to save article %s: %w", a.Href, err)
		}
		n++
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return n, nil
}

// FindArticles retrieves articles matching the filter, newest first.
func (s *ArticleService) FindArticles(ctx context.Context, filter bustop.ArticleFilter) ([]*bustop.Article, error) {
	var query strings.Builder
	var args []any

	query.WriteString(`SELECT href, title, author_name, author_picture, published_at, views, replies,
		last_reply_name, last_reply_at, preview_images FROM articles WHERE 1=1`)

	if filter.Href != nil {
		query.WriteString(" AND href = ?")
		args = append(args, *filter.Href)
	}
	if filter.Author != nil {
		query.WriteString(" AND author_name = ?")
		args = append(args, *filter.Author)
	}

	query.WriteString(" ORDER BY published_at DESC, last_reply_at DESC, href ASC")
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	articles := []*bustop.Article{}
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		articles = append(articles, a)
	}

	return articles, rows.Err()
}

func scanArticle(rows *sql.Rows) (*bustop.Article, error) {
	var a bustop.Article
	var publishedAt, lastReplyAt, images string

	if err := rows.Scan(&a.Href, &a.Title, &a.Author.Name, &a.Author.Picture, &publishedAt,
		&a.Views, &a.Replies, &a.LastReply.Name, &lastReplyAt, &images); err != nil {
		return nil, err
	}

	var err error
	if a.PublishedAt, err = parseRFC3339(publishedAt, "published_at"); err != nil {
		return nil, err
	}
	if a.LastReply.PublishedAt, err = parseRFC3339(lastReplyAt, "last_reply_at"); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(images), &a.PreviewImages); err != nil {
		return nil, fmt.Errorf("failed to decode preview_images: %w", err)
	}

	return &a, nil
}

// nonNil returns s, or an empty slice when s is nil, so it encodes as [].
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
