package policy

import "github.com/dmitrijs2005/bookmarksync/internal/models"

// Input is the closed set of events the policy reacts to. Variants are plain
// structs behind a sealed interface; Evaluate switches over them
// exhaustively.
type Input interface {
	isInput()
}

// BookmarkCreated reports that the user created a bookmark on this device.
type BookmarkCreated struct {
	Account  models.AccountID
	Bookmark models.Bookmark
}

// BookmarkDeleteRequested reports that the user asked to delete a bookmark.
type BookmarkDeleteRequested struct {
	Account  models.AccountID
	Bookmark models.Bookmark
}

// BookmarkReceived reports that a remote fetch returned this bookmark: the
// server believes it exists.
type BookmarkReceived struct {
	Account  models.AccountID
	Bookmark models.Bookmark
}

// BookmarkSaved reports that the server acknowledged a send. Fed back by the
// executor after a successful RemotelySendBookmark.
type BookmarkSaved struct {
	Account  models.AccountID
	Bookmark models.Bookmark
}

// AccountCreated reports a new account in the active profile.
type AccountCreated struct {
	Account AccountSyncState
}

// AccountUpdated reports changed provider/credential/preference data.
type AccountUpdated struct {
	Account AccountSyncState
}

// AccountLoggedIn reports fresh credentials for an account.
type AccountLoggedIn struct {
	Account AccountSyncState
}

// AccountDeleted reports removal of an account from the active profile.
type AccountDeleted struct {
	Account models.AccountID
}

// SyncingEnabled reports the server-side sync setting learned by the
// eligibility probe (or set via the settings endpoint).
type SyncingEnabled struct {
	Account models.AccountID
	Enabled bool
}

func (BookmarkCreated) isInput()         {}
func (BookmarkDeleteRequested) isInput() {}
func (BookmarkReceived) isInput()        {}
func (BookmarkSaved) isInput()           {}
func (AccountCreated) isInput()          {}
func (AccountUpdated) isInput()          {}
func (AccountLoggedIn) isInput()         {}
func (AccountDeleted) isInput()          {}
func (SyncingEnabled) isInput()          {}
