package services

import (
	"context"

	"github.com/dmitrijs2005/bookmarksync/internal/annotations"
	"github.com/dmitrijs2005/bookmarksync/internal/common"
	"github.com/dmitrijs2005/bookmarksync/internal/logging"
	"github.com/dmitrijs2005/bookmarksync/internal/models"
	"github.com/dmitrijs2005/bookmarksync/internal/policy"
	"github.com/dmitrijs2005/bookmarksync/internal/repositories/bookmarks"
)

// executor turns policy outputs into operations against the local store and
// the annotation server. Every failure is logged and swallowed: sync is
// best-effort and an unexecuted command is retried by the next natural sync
// trigger, never escalated. The returned feedback inputs are queued behind
// the current evaluation's outputs.
type executor struct {
	repo           bookmarks.Repository
	client         annotations.Client
	resolveAccount func(models.AccountID) (models.Account, bool)
	events         *broadcaster
	logger         logging.Logger
}

func (e *executor) execute(ctx context.Context, out policy.Output) []policy.Input {
	switch cmd := out.(type) {
	case policy.LocallySaveBookmark:
		return e.locallySave(ctx, cmd)
	case policy.RemotelySendBookmark:
		return e.remotelySend(ctx, cmd)
	case policy.RemotelyDeleteBookmark:
		return e.remotelyDelete(ctx, cmd)
	case policy.RemotelyFetchBookmarks:
		return e.remotelyFetch(ctx, cmd)
	case policy.LocalBookmarkAlreadyExists:
		e.logger.Debug(ctx, "bookmark already exists locally",
			"account", cmd.Account, "bookmark", cmd.Bookmark.ID)
		return nil
	default:
		e.logger.Error(ctx, "unknown policy output", "output", out)
		return nil
	}
}

func (e *executor) locallySave(ctx context.Context, cmd policy.LocallySaveBookmark) []policy.Input {
	if err := e.repo.Save(ctx, cmd.Account, cmd.Bookmark); err != nil {
		e.logger.Error(ctx, "failed to save bookmark locally",
			"account", cmd.Account, "bookmark", cmd.Bookmark.ID, "error", err)
		return nil
	}
	e.events.Publish(BookmarkSaved{Account: cmd.Account, Bookmark: cmd.Bookmark})
	return nil
}

func (e *executor) remotelySend(ctx context.Context, cmd policy.RemotelySendBookmark) []policy.Input {
	account, ok := e.syncableAccount(ctx, cmd.Account)
	if !ok {
		return nil
	}

	saved, err := e.client.AddBookmark(ctx, account.AnnotationsURI, account.Credentials, cmd.Bookmark)
	if err != nil {
		// Dropped, not failed: the record stays RemoteUnknown and the next
		// sync-all offers it again.
		e.logger.Warn(ctx, "dropping bookmark send",
			"account", cmd.Account, "bookmark", cmd.Bookmark.ID, "error", err)
		return nil
	}
	return []policy.Input{policy.BookmarkSaved{Account: cmd.Account, Bookmark: saved}}
}

func (e *executor) remotelyDelete(ctx context.Context, cmd policy.RemotelyDeleteBookmark) []policy.Input {
	account, ok := e.syncableAccount(ctx, cmd.Account)
	if !ok {
		return nil
	}
	if cmd.Bookmark.URI == "" {
		// The server never told us where it stored this bookmark. The next
		// fetch returns it with a URI and re-triggers the delete.
		e.logger.Warn(ctx, "dropping remote delete",
			"account", cmd.Account, "bookmark", cmd.Bookmark.ID, "error", common.ErrNoBookmarkURI)
		return nil
	}

	if err := e.client.DeleteBookmark(ctx, cmd.Bookmark.URI, account.Credentials); err != nil {
		e.logger.Warn(ctx, "dropping remote delete",
			"account", cmd.Account, "bookmark", cmd.Bookmark.ID, "error", err)
	}
	return nil
}

func (e *executor) remotelyFetch(ctx context.Context, cmd policy.RemotelyFetchBookmarks) []policy.Input {
	e.events.Publish(SyncStarted{Account: cmd.Account})
	defer e.events.Publish(SyncFinished{Account: cmd.Account})

	account, ok := e.syncableAccount(ctx, cmd.Account)
	if !ok {
		return nil
	}

	list, err := e.client.GetBookmarks(ctx, account.AnnotationsURI, account.Credentials)
	if err != nil {
		// A failed fetch behaves as an empty collection.
		e.logger.Warn(ctx, "bookmark fetch failed", "account", cmd.Account, "error", err)
		return nil
	}

	inputs := make([]policy.Input, 0, len(list))
	for _, b := range list {
		inputs = append(inputs, policy.BookmarkReceived{Account: cmd.Account, Bookmark: b})
	}
	e.logger.Debug(ctx, "fetched remote bookmarks", "account", cmd.Account, "count", len(list))
	return inputs
}

// syncableAccount resolves the account and re-checks that a remote call
// still makes sense. The policy gates on canSync, but account data may have
// changed between emission and execution; acting on a stale command is a
// logic error caught here, not a crash.
func (e *executor) syncableAccount(ctx context.Context, id models.AccountID) (models.Account, bool) {
	account, ok := e.resolveAccount(id)
	if !ok {
		e.logger.Warn(ctx, "skipping remote command for unknown account", "account", id)
		return models.Account{}, false
	}
	if !account.SyncSupported() || account.Credentials.Empty() {
		e.logger.Warn(ctx, "skipping remote command for unsyncable account", "account", id)
		return models.Account{}, false
	}
	return account, true
}

// isRemoteCommand reports whether executing the output touches the network.
// The orchestrator resolves a caller's future before the first such output.
func isRemoteCommand(out policy.Output) bool {
	switch out.(type) {
	case policy.RemotelySendBookmark, policy.RemotelyDeleteBookmark, policy.RemotelyFetchBookmarks:
		return true
	default:
		return false
	}
}
