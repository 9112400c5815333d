package annotations

import (
	"context"

	"github.com/dmitrijs2005/bookmarksync/internal/models"
)

// Client is the collaborator interface onto the remote annotation server.
// Calls are synchronous; failures surface as ordinary errors that the
// command execution layer logs and drops (sync is best-effort).
type Client interface {
	// GetBookmarks returns every bookmark in the account's annotation
	// collection. Entries that fail to parse are skipped, not fatal.
	GetBookmarks(ctx context.Context, annotationsURI string, credentials models.Credentials) ([]models.Bookmark, error)

	// AddBookmark posts the bookmark and returns the stored copy, carrying
	// the server-assigned URI when the server reports one.
	AddBookmark(ctx context.Context, annotationsURI string, credentials models.Credentials, bookmark models.Bookmark) (models.Bookmark, error)

	// DeleteBookmark removes the annotation at the given server URI.
	DeleteBookmark(ctx context.Context, bookmarkURI string, credentials models.Credentials) error

	// SyncingIsEnabled queries the patron settings endpoint for the
	// server-side sync flag.
	SyncingIsEnabled(ctx context.Context, settingsURI string, credentials models.Credentials) (bool, error)

	// SyncingEnable sets the server-side sync flag.
	SyncingEnable(ctx context.Context, settingsURI string, credentials models.Credentials, enabled bool) error
}
