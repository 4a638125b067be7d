package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/bustop"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ bustop.ThreadService = (*ThreadService)(nil)

// ThreadService implements bustop.ThreadService using SQLite.
type ThreadService struct {
	db *DB
}

// NewThreadService creates a new ThreadService.
func NewThreadService(db *DB) *ThreadService {
	return &ThreadService{db: db}
}

// ReplaceThread stores the thread's first page. Talks stored from an
// earlier sync are discarded, since floors may have been deleted since.
func (s *ThreadService) ReplaceThread(ctx context.Context, page *bustop.TalkPage) error {
	if page == nil || page.Href == "" {
		return bustop.Errorf(bustop.EINVALID, "thread href required")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var threadID string
	if err := tx.QueryRowContext(ctx, `
		INSERT INTO threads (id, href, title, total_pages, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (href) DO UPDATE SET
			title = excluded.title,
			total_pages = excluded.total_pages,
			updated_at = excluded.updated_at
		RETURNING id
	`, uuid.New().String(), page.Href, page.Title, page.TotalPages, formatTime(time.Now())).Scan(&threadID); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM talks WHERE thread_id = ?", threadID); err != nil {
		return err
	}
	if _, err := upsertTalks(ctx, tx, threadID, 1, page.Talks); err != nil {
		return err
	}

	return tx.Commit()
}

// AppendTalks stores the talks of a continuation page. A talk whose floor
// is already stored is rewritten only if its content changed.
func (s *ThreadService) AppendTalks(ctx context.Context, href string, page int, talks []bustop.Talk) (int, error) {
	if page < 1 {
		return 0, bustop.Errorf(bustop.EINVALID, "invalid page number: %d", page)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var threadID string
	err = tx.QueryRowContext(ctx, "SELECT id FROM threads WHERE href = ?", href).Scan(&threadID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, bustop.Errorf(bustop.ENOTFOUND, "thread not found: %s", href)
	}
	if err != nil {
		return 0, err
	}

	n, err := upsertTalks(ctx, tx, threadID, page, talks)
	if err != nil {
		return 0, err
	}

	if _, err := tx.ExecContext(ctx, "UPDATE threads SET updated_at = ? WHERE id = ?",
		formatTime(time.Now()), threadID); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return n, nil
}

// FindThread retrieves a thread with its talks ordered by floor.
func (s *ThreadService) FindThread(ctx context.Context, href string) (*bustop.TalkPage, error) {
	var threadID string
	page := bustop.TalkPage{Href: href, Talks: []bustop.Talk{}}

	err := s.db.QueryRowContext(ctx, "SELECT id, title, total_pages FROM threads WHERE href = ?", href).
		Scan(&threadID, &page.Title, &page.TotalPages)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, bustop.Errorf(bustop.ENOTFOUND, "thread not found: %s", href)
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT floor, author_name, author_picture, published_at, contents, replies
		FROM talks
		WHERE thread_id = ?
		ORDER BY floor ASC
	`, threadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var talk bustop.Talk
		var publishedAt, contents, replies string

		if err := rows.Scan(&talk.Floor, &talk.AuthorName, &talk.AuthorPicture, &publishedAt, &contents, &replies); err != nil {
			return nil, err
		}
		if talk.PublishedAt, err = parseRFC3339(publishedAt, "published_at"); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(contents), &talk.Contents); err != nil {
			return nil, fmt.Errorf("failed to decode contents: %w", err)
		}
		if err := json.Unmarshal([]byte(replies), &talk.Replies); err != nil {
			return nil, fmt.Errorf("failed to decode replies: %w", err)
		}

		page.Talks = append(page.Talks, talk)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &page, nil
}

// upsertTalks writes talks for a thread and returns how many rows were
// inserted or changed. When talks repeat a floor, the first one is kept.
func upsertTalks(ctx context.Context, tx *sql.Tx, threadID string, page int, talks []bustop.Talk) (int, error) {
	var n int
	written := make(map[uint32]bool, len(talks))
	for _, talk := range talks {
		if written[talk.Floor] {
			continue
		}
		written[talk.Floor] = true

		contents, err := json.Marshal(nonNil(talk.Contents))
		if err != nil {
			return 0, err
		}
		replies, err := json.Marshal(nonNil(talk.Replies))
		if err != nil {
			return 0, err
		}

		res, err := tx.ExecContext(ctx, `
			INSERT INTO talks (id, thread_id, floor, page, author_name, author_picture, published_at,
				contents, replies, content_hash)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (thread_id, floor) DO UPDATE SET
				page = excluded.page,
				author_name = excluded.author_name,
				author_picture = excluded.author_picture,
				published_at = excluded.published_at,
				contents = excluded.contents,
				replies = excluded.replies,
				content_hash = excluded.content_hash
			WHERE talks.content_hash <> excluded.content_hash
		`, uuid.New().String(), threadID, talk.Floor, page, talk.AuthorName, talk.AuthorPicture,
			formatTime(talk.PublishedAt), string(contents), string(replies), hashTalk(talk, contents, replies))
		if err != nil {
			return 0, fmt.Errorf("failed to save floor %d: %w", talk.Floor, err)
		}

		affected, err := res.RowsAffected()
		if err != nil {
			return 0, err
		}
		n += int(affected)
	}
	return n, nil
}

// hashTalk fingerprints everything stored for a talk except its page.
func hashTalk(talk bustop.Talk, contents, replies []byte) string {
	h := xxhash.New()
	_, _ = h.WriteString(talk.AuthorName)
	_, _ = h.WriteString("\x00")
	_, _ = h.WriteString(talk.AuthorPicture)
	_, _ = h.WriteString("\x00")
	_, _ = h.WriteString(formatTime(talk.PublishedAt))
	_, _ = h.Write(contents)
	_, _ = h.Write(replies)
	return strconv.FormatUint(h.Sum64(), 16)
}
