package bookmarks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/bookmarksync/internal/common"
	"github.com/dmitrijs2005/bookmarksync/internal/dbx"
	"github.com/dmitrijs2005/bookmarksync/internal/models"
)

// SQLiteRepository implements Repository on a *sql.DB. sqlite's single
// writer provides the per-entry mutual exclusion the interface requires.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Save(ctx context.Context, account models.AccountID, b models.Bookmark) error {
	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		// A work carries at most one last-read-location: replace, don't append.
		if b.Kind == models.KindLastReadLocation {
			_, err := tx.ExecContext(ctx,
				`DELETE FROM bookmarks WHERE account_id = ? AND work_id = ? AND kind = ? AND id <> ?`,
				account, b.Work, models.KindLastReadLocation, b.ID)
			if err != nil {
				return fmt.Errorf("failed to replace last read location: %w", err)
			}
		}

		query := ` INSERT INTO bookmarks (account_id, id, work_id, kind, chapter_href, progression, selected_text, taken_at, device, uri)
				values (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
				ON CONFLICT(account_id, id) DO UPDATE SET work_id = excluded.work_id,
					kind = excluded.kind,
					chapter_href = excluded.chapter_href,
					progression = excluded.progression,
					selected_text = excluded.selected_text,
					taken_at = excluded.taken_at,
					device = excluded.device,
					uri = excluded.uri
		`
		_, err := tx.ExecContext(ctx, query,
			account, b.ID, b.Work, b.Kind, b.ChapterHref, b.Progression,
			b.SelectedText, formatTime(b.Time), b.Device, b.URI)
		if err != nil {
			return fmt.Errorf("failed to upsert bookmark: %w", err)
		}
		return nil
	})
}

func (r *SQLiteRepository) GetByID(ctx context.Context, account models.AccountID, id models.BookmarkID) (models.Bookmark, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, work_id, kind, chapter_href, progression, selected_text, taken_at, device, uri
		 FROM bookmarks WHERE account_id = ? AND id = ?`, account, id)

	b, err := scanBookmark(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Bookmark{}, common.ErrNotFound
	}
	if err != nil {
		return models.Bookmark{}, fmt.Errorf("failed to select bookmark: %w", err)
	}
	return b, nil
}

func (r *SQLiteRepository) ListByAccount(ctx context.Context, account models.AccountID) ([]models.Bookmark, error) {
	return r.list(ctx,
		`SELECT id, work_id, kind, chapter_href, progression, selected_text, taken_at, device, uri
		 FROM bookmarks WHERE account_id = ? ORDER BY id`, account)
}

func (r *SQLiteRepository) ListByWork(ctx context.Context, account models.AccountID, work models.WorkID) ([]models.Bookmark, error) {
	return r.list(ctx,
		`SELECT id, work_id, kind, chapter_href, progression, selected_text, taken_at, device, uri
		 FROM bookmarks WHERE account_id = ? AND work_id = ? ORDER BY id`, account, work)
}

func (r *SQLiteRepository) DeleteByID(ctx context.Context, account models.AccountID, id models.BookmarkID) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM bookmarks WHERE account_id = ? AND id = ?`, account, id)
	if err != nil {
		return fmt.Errorf("failed to delete bookmark: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) DeleteByAccount(ctx context.Context, account models.AccountID) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM bookmarks WHERE account_id = ?`, account)
	if err != nil {
		return fmt.Errorf("failed to delete account bookmarks: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) list(ctx context.Context, query string, args ...any) ([]models.Bookmark, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select bookmarks: %w", err)
	}
	defer rows.Close()

	var result []models.Bookmark
	for rows.Next() {
		b, err := scanBookmark(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bookmark: %w", err)
		}
		result = append(result, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bookmarks: %w", err)
	}
	return result, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBookmark(row rowScanner) (models.Bookmark, error) {
	var b models.Bookmark
	var takenAt string
	err := row.Scan(&b.ID, &b.Work, &b.Kind, &b.ChapterHref, &b.Progression,
		&b.SelectedText, &takenAt, &b.Device, &b.URI)
	if err != nil {
		return models.Bookmark{}, err
	}
	if takenAt != "" {
		t, err := time.Parse(time.RFC3339Nano, takenAt)
		if err != nil {
			return models.Bookmark{}, err
		}
		b.Time = t
	}
	return b, nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

var _ Repository = (*SQLiteRepository)(nil)
