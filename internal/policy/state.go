package policy

import (
	"sort"

	"github.com/dmitrijs2005/bookmarksync/internal/models"
)

// LocalState is the on-device status of a bookmark record.
type LocalState int

const (
	LocalSaved LocalState = iota
	LocalDeleted
)

func (s LocalState) String() string {
	switch s {
	case LocalSaved:
		return "saved"
	case LocalDeleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// RemoteState is the last known status of a bookmark on the annotation
// server. RemoteSending and RemoteDeleted are modeled for completeness of
// the state space; the current transitions leave a record in RemoteUnknown
// until the server acks a send (a failed send must stay RemoteUnknown so the
// next sync-all retries it).
type RemoteState int

const (
	RemoteUnknown RemoteState = iota
	RemoteSending
	RemoteSaved
	RemoteDeleting
	RemoteDeleted
)

func (s RemoteState) String() string {
	switch s {
	case RemoteUnknown:
		return "unknown"
	case RemoteSending:
		return "sending"
	case RemoteSaved:
		return "saved"
	case RemoteDeleting:
		return "deleting"
	case RemoteDeleted:
		return "deleted"
	default:
		return "invalid"
	}
}

// AccountSyncState is the per-account sync eligibility snapshot.
type AccountSyncState struct {
	// AccountID keys the account.
	AccountID models.AccountID

	// SupportedByAccount is true when the account's library exposes an
	// annotations endpoint at all.
	SupportedByAccount bool

	// EnabledOnServer is learned by probing the server's patron settings;
	// false until a probe says otherwise.
	EnabledOnServer bool

	// PermittedByUser is the local preference.
	PermittedByUser bool
}

// CanSync derives the single boolean gating every remote operation. It is
// always re-derived from the current fields, never cached.
func (a AccountSyncState) CanSync() bool {
	return a.SupportedByAccount && a.EnabledOnServer && a.PermittedByUser
}

// BookmarkRecord tracks one (account, bookmark) pair.
type BookmarkRecord struct {
	Account  models.AccountID
	Bookmark models.Bookmark
	Local    LocalState
	Remote   RemoteState
}

// State is an immutable snapshot of all account and bookmark sync status.
// Transforms return a new State; the inner maps of an existing State are
// never mutated. Only Evaluate produces new States; the orchestrator holds
// the single authoritative copy.
type State struct {
	accounts  map[models.AccountID]AccountSyncState
	bookmarks map[models.AccountID]map[models.BookmarkID]BookmarkRecord
}

// NewState returns an empty snapshot.
func NewState() State {
	return State{
		accounts:  map[models.AccountID]AccountSyncState{},
		bookmarks: map[models.AccountID]map[models.BookmarkID]BookmarkRecord{},
	}
}

// SeededState builds the initial snapshot for a freshly activated profile:
// the given accounts plus every locally persisted bookmark, each marked
// LocalSaved/RemoteUnknown so the next sync-all offers it to the server.
func SeededState(accounts []AccountSyncState, saved map[models.AccountID][]models.Bookmark) State {
	s := NewState()
	for _, a := range accounts {
		s.accounts[a.AccountID] = a
	}
	for accountID, bookmarks := range saved {
		m := make(map[models.BookmarkID]BookmarkRecord, len(bookmarks))
		for _, b := range bookmarks {
			m[b.ID] = BookmarkRecord{
				Account:  accountID,
				Bookmark: b,
				Local:    LocalSaved,
				Remote:   RemoteUnknown,
			}
		}
		s.bookmarks[accountID] = m
	}
	return s
}

// Account returns the sync state for the given account.
func (s State) Account(id models.AccountID) (AccountSyncState, bool) {
	a, ok := s.accounts[id]
	return a, ok
}

// Accounts returns all account states, ordered by account ID.
func (s State) Accounts() []AccountSyncState {
	out := make([]AccountSyncState, 0, len(s.accounts))
	for _, a := range s.accounts {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AccountID < out[j].AccountID })
	return out
}

// Record returns the bookmark record for (account, bookmark), if known.
func (s State) Record(account models.AccountID, id models.BookmarkID) (BookmarkRecord, bool) {
	m, ok := s.bookmarks[account]
	if !ok {
		return BookmarkRecord{}, false
	}
	r, ok := m[id]
	return r, ok
}

// Records returns the account's bookmark records, ordered by bookmark ID.
// The ordering makes sync-all output deterministic.
func (s State) Records(account models.AccountID) []BookmarkRecord {
	m := s.bookmarks[account]
	out := make([]BookmarkRecord, 0, len(m))
	for _, r := range m {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Bookmark.ID < out[j].Bookmark.ID })
	return out
}

// withAccount returns a copy of s with the account state upserted.
func (s State) withAccount(a AccountSyncState) State {
	accounts := make(map[models.AccountID]AccountSyncState, len(s.accounts)+1)
	for k, v := range s.accounts {
		accounts[k] = v
	}
	accounts[a.AccountID] = a
	return State{accounts: accounts, bookmarks: s.bookmarks}
}

// withoutAccount returns a copy of s with the account and all its bookmark
// records removed.
func (s State) withoutAccount(id models.AccountID) State {
	accounts := make(map[models.AccountID]AccountSyncState, len(s.accounts))
	for k, v := range s.accounts {
		if k != id {
			accounts[k] = v
		}
	}
	bookmarks := make(map[models.AccountID]map[models.BookmarkID]BookmarkRecord, len(s.bookmarks))
	for k, v := range s.bookmarks {
		if k != id {
			bookmarks[k] = v
		}
	}
	return State{accounts: accounts, bookmarks: bookmarks}
}

// withRecord returns a copy of s with the record upserted. Only the outer
// map and the affected account's inner map are copied.
func (s State) withRecord(r BookmarkRecord) State {
	bookmarks := make(map[models.AccountID]map[models.BookmarkID]BookmarkRecord, len(s.bookmarks)+1)
	for k, v := range s.bookmarks {
		bookmarks[k] = v
	}
	inner := make(map[models.BookmarkID]BookmarkRecord, len(s.bookmarks[r.Account])+1)
	for k, v := range s.bookmarks[r.Account] {
		inner[k] = v
	}
	inner[r.Bookmark.ID] = r
	bookmarks[r.Account] = inner
	return State{accounts: s.accounts, bookmarks: bookmarks}
}
