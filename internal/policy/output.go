package policy

import "github.com/dmitrijs2005/bookmarksync/internal/models"

// Output is the closed set of effects an evaluation may request. Commands
// are executed against collaborating services; events are pure notifications.
// Outputs MUST be executed in emission order: later outputs assume earlier
// ones have been dispatched (sync-all emits sends before the fetch).
type Output interface {
	isOutput()
}

// Command marks outputs that the execution layer acts on.
type Command interface {
	Output
	isCommand()
}

// Event marks outputs that only notify observers.
type Event interface {
	Output
	isEvent()
}

// LocallySaveBookmark writes the bookmark into the local store: append for
// explicit bookmarks and highlights, replace for the last read location.
type LocallySaveBookmark struct {
	Account  models.AccountID
	Bookmark models.Bookmark
}

// RemotelySendBookmark posts the bookmark to the account's annotation
// endpoint.
type RemotelySendBookmark struct {
	Account  models.AccountID
	Bookmark models.Bookmark
}

// RemotelyDeleteBookmark retracts the bookmark from the server. Requires a
// server-assigned URI; the executor short-circuits when none is present.
type RemotelyDeleteBookmark struct {
	Account  models.AccountID
	Bookmark models.Bookmark
}

// RemotelyFetchBookmarks pulls the account's full annotation list. Each
// entry comes back as a BookmarkReceived input.
type RemotelyFetchBookmarks struct {
	Account models.AccountID
}

// LocalBookmarkAlreadyExists reports an idempotent create: the bookmark was
// already known and nothing changed.
type LocalBookmarkAlreadyExists struct {
	Account  models.AccountID
	Bookmark models.Bookmark
}

func (LocallySaveBookmark) isOutput()        {}
func (RemotelySendBookmark) isOutput()       {}
func (RemotelyDeleteBookmark) isOutput()     {}
func (RemotelyFetchBookmarks) isOutput()     {}
func (LocalBookmarkAlreadyExists) isOutput() {}

func (LocallySaveBookmark) isCommand()    {}
func (RemotelySendBookmark) isCommand()   {}
func (RemotelyDeleteBookmark) isCommand() {}
func (RemotelyFetchBookmarks) isCommand() {}

func (LocalBookmarkAlreadyExists) isEvent() {}
