package policy

import "github.com/dmitrijs2005/bookmarksync/internal/models"

// Evaluate is the synchronization policy: a pure reducer mapping an input
// and the current state to a new state plus an ordered list of outputs.
// It performs no I/O and never fails; all failure handling lives in the
// execution layer.
//
// The transition table is intentionally asymmetric. Local creation is
// authoritative and wins over "already exists" races, while a remote report
// of a locally-deleted bookmark means the server is stale and must be told
// to delete. A locally-deleted bookmark is never resurrected by the server.
func Evaluate(in Input, s State) (State, []Output) {
	switch input := in.(type) {
	case BookmarkCreated:
		return evaluateBookmarkCreated(s, input)
	case BookmarkDeleteRequested:
		return evaluateBookmarkDeleteRequested(s, input)
	case BookmarkReceived:
		return evaluateBookmarkReceived(s, input)
	case BookmarkSaved:
		return evaluateBookmarkSaved(s, input)
	case AccountCreated:
		return evaluateAccountUpserted(s, input.Account)
	case AccountUpdated:
		return evaluateAccountUpserted(s, input.Account)
	case AccountLoggedIn:
		return evaluateAccountUpserted(s, input.Account)
	case AccountDeleted:
		return s.withoutAccount(input.Account), nil
	case SyncingEnabled:
		return evaluateSyncingEnabled(s, input)
	default:
		// The input set is closed; an unknown variant is a programming error
		// but must not crash the worker.
		return s, nil
	}
}

func evaluateBookmarkCreated(s State, in BookmarkCreated) (State, []Output) {
	if rec, ok := s.Record(in.Account, in.Bookmark.ID); ok && rec.Local == LocalSaved {
		// Idempotent create: report, change nothing.
		return s, []Output{LocalBookmarkAlreadyExists{Account: in.Account, Bookmark: in.Bookmark}}
	}

	// No record, or a previously deleted one being recreated. The new value
	// starts over with unknown remote state: the intervening deletion (if
	// any) invalidated whatever the server held.
	next := s.withRecord(BookmarkRecord{
		Account:  in.Account,
		Bookmark: in.Bookmark,
		Local:    LocalSaved,
		Remote:   RemoteUnknown,
	})

	outputs := []Output{LocallySaveBookmark{Account: in.Account, Bookmark: in.Bookmark}}
	if account, ok := next.Account(in.Account); ok && account.CanSync() {
		outputs = append(outputs, sendUnsent(next, in.Account)...)
	}
	return next, outputs
}

func evaluateBookmarkDeleteRequested(s State, in BookmarkDeleteRequested) (State, []Output) {
	rec, ok := s.Record(in.Account, in.Bookmark.ID)
	if !ok || rec.Local != LocalSaved {
		return s, nil
	}

	// Keep the stored bookmark value: it may already carry the server URI
	// the remote delete needs.
	rec.Local = LocalDeleted
	rec.Remote = RemoteDeleting
	next := s.withRecord(rec)

	if account, ok := next.Account(in.Account); ok && account.CanSync() {
		return next, []Output{RemotelyDeleteBookmark{Account: in.Account, Bookmark: rec.Bookmark}}
	}
	return next, nil
}

func evaluateBookmarkReceived(s State, in BookmarkReceived) (State, []Output) {
	rec, ok := s.Record(in.Account, in.Bookmark.ID)

	switch {
	case !ok:
		// New to this device: adopt and persist locally.
		next := s.withRecord(BookmarkRecord{
			Account:  in.Account,
			Bookmark: in.Bookmark,
			Local:    LocalSaved,
			Remote:   RemoteSaved,
		})
		return next, []Output{LocallySaveBookmark{Account: in.Account, Bookmark: in.Bookmark}}

	case rec.Local == LocalSaved:
		// Already held locally. Adopt the received copy (it carries the
		// server-assigned URI) and record that the server has it.
		rec.Bookmark = in.Bookmark
		rec.Remote = RemoteSaved
		next := s.withRecord(rec)
		return next, []Output{LocalBookmarkAlreadyExists{Account: in.Account, Bookmark: in.Bookmark}}

	default:
		// Deleted locally: the server is stale. Tell it to retract the
		// bookmark rather than resurrecting it here.
		rec.Bookmark = in.Bookmark
		rec.Remote = RemoteDeleting
		next := s.withRecord(rec)
		if account, ok := next.Account(in.Account); ok && account.CanSync() {
			return next, []Output{RemotelyDeleteBookmark{Account: in.Account, Bookmark: in.Bookmark}}
		}
		return next, nil
	}
}

func evaluateBookmarkSaved(s State, in BookmarkSaved) (State, []Output) {
	rec, ok := s.Record(in.Account, in.Bookmark.ID)
	if !ok || rec.Local != LocalSaved {
		return s, nil
	}
	rec.Bookmark = in.Bookmark
	rec.Remote = RemoteSaved
	return s.withRecord(rec), nil
}

func evaluateAccountUpserted(s State, account AccountSyncState) (State, []Output) {
	next := s.withAccount(account)
	if account.CanSync() {
		return next, syncAll(next, account.AccountID)
	}
	return next, nil
}

func evaluateSyncingEnabled(s State, in SyncingEnabled) (State, []Output) {
	account, ok := s.Account(in.Account)
	if !ok {
		return s, nil
	}

	couldSync := account.CanSync()
	account.EnabledOnServer = in.Enabled
	next := s.withAccount(account)

	// Rising edge only: the moment the server reports sync enabled, a
	// previously unsynced account catches up. Re-announcing an unchanged
	// setting triggers nothing.
	if !couldSync && account.CanSync() {
		return next, syncAll(next, in.Account)
	}
	return next, nil
}

// syncAll is the compound catch-up operation: offer every unsent bookmark to
// the server, then fetch the server's full list. The fetch must come last so
// it observes the sends.
func syncAll(s State, account models.AccountID) []Output {
	return append(sendUnsent(s, account), RemotelyFetchBookmarks{Account: account})
}

// sendUnsent emits a RemotelySendBookmark for every record the server has
// never acknowledged, in bookmark-ID order.
func sendUnsent(s State, account models.AccountID) []Output {
	var outputs []Output
	for _, rec := range s.Records(account) {
		if rec.Remote == RemoteUnknown {
			outputs = append(outputs, RemotelySendBookmark{Account: account, Bookmark: rec.Bookmark})
		}
	}
	return outputs
}
