package bookmarks

import (
	"context"

	"github.com/dmitrijs2005/bookmarksync/internal/models"
)

// Repository is the local per-book bookmark store. Implementations must
// provide their own mutual exclusion: saves from the sync worker may race
// with direct reads from the reader UI.
type Repository interface {
	// Save persists the bookmark. Explicit bookmarks and highlights are
	// appended (upserted by ID); a last-read-location replaces the work's
	// previous one.
	Save(ctx context.Context, account models.AccountID, bookmark models.Bookmark) error

	// GetByID returns the bookmark, or common.ErrNotFound.
	GetByID(ctx context.Context, account models.AccountID, id models.BookmarkID) (models.Bookmark, error)

	// ListByAccount returns every bookmark stored under the account,
	// ordered by ID.
	ListByAccount(ctx context.Context, account models.AccountID) ([]models.Bookmark, error)

	// ListByWork returns the bookmarks of one book, ordered by ID.
	ListByWork(ctx context.Context, account models.AccountID, work models.WorkID) ([]models.Bookmark, error)

	// DeleteByID removes a bookmark. Deleting an absent ID is not an error.
	DeleteByID(ctx context.Context, account models.AccountID, id models.BookmarkID) error

	// DeleteByAccount removes everything stored under the account.
	DeleteByAccount(ctx context.Context, account models.AccountID) error
}
