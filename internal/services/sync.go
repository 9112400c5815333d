package services

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/dmitrijs2005/bookmarksync/internal/annotations"
	"github.com/dmitrijs2005/bookmarksync/internal/common"
	"github.com/dmitrijs2005/bookmarksync/internal/logging"
	"github.com/dmitrijs2005/bookmarksync/internal/models"
	"github.com/dmitrijs2005/bookmarksync/internal/policy"
	"github.com/dmitrijs2005/bookmarksync/internal/repositories/bookmarks"
)

// SyncSetting is the outcome of SyncEnable.
type SyncSetting int

const (
	SyncSettingEnabled SyncSetting = iota
	SyncSettingDisabled
	SyncSettingNotSupported
)

func (s SyncSetting) String() string {
	switch s {
	case SyncSettingEnabled:
		return "enabled"
	case SyncSettingDisabled:
		return "disabled"
	case SyncSettingNotSupported:
		return "not supported"
	default:
		return "invalid"
	}
}

// task is one unit of serialized work. fn runs on the worker; resolve
// settles the caller's future and may be called at most once inside fn (the
// worker settles it with nil afterwards if fn never did).
type task struct {
	fn   func(ctx context.Context, resolve func(error))
	done chan error
}

// SyncService is the synchronization orchestrator. It owns the single
// authoritative policy.State and runs every policy evaluation and command
// execution on one worker goroutine, strictly in submission order. Callers
// on other goroutines submit work and wait; they never touch the state.
type SyncService struct {
	logger logging.Logger
	repo   bookmarks.Repository
	client annotations.Client
	events *broadcaster
	exec   *executor

	mailbox chan *task

	ctx    context.Context
	cancel context.CancelFunc
	closed chan struct{}

	// state is owned exclusively by the worker goroutine.
	state policy.State

	// evaluating is a reentrancy guard asserting worker confinement.
	evaluating atomic.Bool

	mu       sync.Mutex
	profile  *models.Profile
	accounts map[models.AccountID]models.Account
	snapshot policy.State
}

const mailboxDepth = 128

// NewSyncService builds the orchestrator and starts its worker. Call Close
// to stop it.
func NewSyncService(repo bookmarks.Repository, client annotations.Client, logger logging.Logger) *SyncService {
	ctx, cancel := context.WithCancel(context.Background())

	s := &SyncService{
		logger:   logger,
		repo:     repo,
		client:   client,
		events:   newBroadcaster(),
		mailbox:  make(chan *task, mailboxDepth),
		ctx:      ctx,
		cancel:   cancel,
		closed:   make(chan struct{}),
		state:    policy.NewState(),
		accounts: map[models.AccountID]models.Account{},
		snapshot: policy.NewState(),
	}
	s.exec = &executor{
		repo:           repo,
		client:         client,
		resolveAccount: s.account,
		events:         s.events,
		logger:         logger,
	}

	go s.run()
	return s
}

// Close stops the worker and closes all event subscriptions. In-flight
// work finishes first; unstarted tasks fail with context.Canceled.
func (s *SyncService) Close() {
	s.cancel()
	<-s.closed
	s.events.Close()
}

// Events subscribes to the lifecycle stream. The returned cancel must be
// called when the observer goes away.
func (s *SyncService) Events() (<-chan Event, func()) {
	return s.events.Subscribe()
}

// State returns the most recent policy state snapshot, taken immediately
// after the last completed evaluation.
func (s *SyncService) State() policy.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot
}

// BookmarkCreate records a user-created bookmark. It returns once the local
// effect has been applied; any remote send continues in the background.
func (s *SyncService) BookmarkCreate(ctx context.Context, account models.AccountID, bookmark models.Bookmark) error {
	if err := s.requireAccount(account); err != nil {
		return err
	}
	return s.submit(ctx, func(ctx context.Context, resolve func(error)) {
		s.processInput(ctx, policy.BookmarkCreated{Account: account, Bookmark: bookmark}, resolve)
	})
}

// BookmarkDelete records a user-requested deletion. The bookmark leaves
// local storage before the call returns; the remote retraction is
// best-effort background work.
func (s *SyncService) BookmarkDelete(ctx context.Context, account models.AccountID, bookmark models.Bookmark) error {
	if err := s.requireAccount(account); err != nil {
		return err
	}
	return s.submit(ctx, func(ctx context.Context, resolve func(error)) {
		if err := s.repo.DeleteByID(ctx, account, bookmark.ID); err != nil {
			s.logger.Error(ctx, "failed to delete bookmark locally",
				"account", account, "bookmark", bookmark.ID, "error", err)
		}
		s.processInput(ctx, policy.BookmarkDeleteRequested{Account: account, Bookmark: bookmark}, resolve)
	})
}

// BookmarkLoad returns the locally known bookmarks of one book. It reads
// storage directly and does not go through the policy.
func (s *SyncService) BookmarkLoad(ctx context.Context, account models.AccountID, work models.WorkID) ([]models.Bookmark, error) {
	if err := s.requireAccount(account); err != nil {
		return nil, err
	}
	return s.repo.ListByWork(ctx, account, work)
}

// SyncEnable sets the server-side sync flag for the account, re-probes the
// setting and feeds the result through the policy. The returned SyncSetting
// reflects what the server reported after the change.
func (s *SyncService) SyncEnable(ctx context.Context, accountID models.AccountID, enabled bool) (SyncSetting, error) {
	if err := s.requireAccount(accountID); err != nil {
		return SyncSettingDisabled, err
	}
	account, _ := s.account(accountID)

	if !account.SyncSupported() {
		return SyncSettingNotSupported, nil
	}
	if account.SettingsURI == "" || account.Credentials.Empty() {
		return SyncSettingNotSupported, nil
	}

	if err := s.client.SyncingEnable(ctx, account.SettingsURI, account.Credentials, enabled); err != nil {
		return SyncSettingDisabled, fmt.Errorf("updating sync setting: %w", err)
	}

	nowEnabled := s.probeAccount(ctx, account)
	if err := s.submit(ctx, func(ctx context.Context, resolve func(error)) {
		s.processInput(ctx, policy.SyncingEnabled{Account: accountID, Enabled: nowEnabled}, resolve)
	}); err != nil {
		return SyncSettingDisabled, err
	}

	if nowEnabled {
		return SyncSettingEnabled, nil
	}
	return SyncSettingDisabled, nil
}

// ProfileChanged replaces the authoritative state wholesale: the new
// profile's accounts are registered, the policy state is reseeded from
// local storage, and every account is re-probed in the background.
func (s *SyncService) ProfileChanged(ctx context.Context, profile models.Profile) error {
	s.mu.Lock()
	p := profile
	s.profile = &p
	s.accounts = make(map[models.AccountID]models.Account, len(profile.Accounts))
	for _, a := range profile.Accounts {
		s.accounts[a.ID] = a
	}
	s.mu.Unlock()

	err := s.submit(ctx, func(ctx context.Context, resolve func(error)) {
		states := make([]policy.AccountSyncState, 0, len(profile.Accounts))
		saved := make(map[models.AccountID][]models.Bookmark, len(profile.Accounts))
		for _, a := range profile.Accounts {
			states = append(states, policy.AccountSyncState{
				AccountID:          a.ID,
				SupportedByAccount: a.SyncSupported(),
				PermittedByUser:    a.SyncPermitted,
			})
			list, err := s.repo.ListByAccount(ctx, a.ID)
			if err != nil {
				s.logger.Error(ctx, "failed to seed bookmarks from storage",
					"account", a.ID, "error", err)
				continue
			}
			saved[a.ID] = list
		}
		s.setState(policy.SeededState(states, saved))
	})
	if err != nil {
		return err
	}

	go s.probeAll(s.ctx, profile.Accounts)
	return nil
}

// AccountCreated registers a new account and probes its eligibility.
func (s *SyncService) AccountCreated(ctx context.Context, account models.Account) error {
	return s.accountUpserted(ctx, account, func(st policy.AccountSyncState) policy.Input {
		return policy.AccountCreated{Account: st}
	}, true)
}

// AccountUpdated applies changed provider, credential or preference data.
func (s *SyncService) AccountUpdated(ctx context.Context, account models.Account) error {
	return s.accountUpserted(ctx, account, func(st policy.AccountSyncState) policy.Input {
		return policy.AccountUpdated{Account: st}
	}, false)
}

// AccountLoggedIn registers fresh credentials and probes eligibility.
func (s *SyncService) AccountLoggedIn(ctx context.Context, account models.Account) error {
	return s.accountUpserted(ctx, account, func(st policy.AccountSyncState) policy.Input {
		return policy.AccountLoggedIn{Account: st}
	}, true)
}

// AccountDeleted drops the account, its policy records and its locally
// stored bookmarks.
func (s *SyncService) AccountDeleted(ctx context.Context, accountID models.AccountID) error {
	if err := s.requireProfile(); err != nil {
		return err
	}

	s.mu.Lock()
	delete(s.accounts, accountID)
	s.mu.Unlock()

	return s.submit(ctx, func(ctx context.Context, resolve func(error)) {
		if err := s.repo.DeleteByAccount(ctx, accountID); err != nil {
			s.logger.Error(ctx, "failed to purge account bookmarks",
				"account", accountID, "error", err)
		}
		s.processInput(ctx, policy.AccountDeleted{Account: accountID}, resolve)
	})
}

func (s *SyncService) accountUpserted(ctx context.Context, account models.Account, input func(policy.AccountSyncState) policy.Input, probe bool) error {
	if err := s.requireProfile(); err != nil {
		return err
	}

	s.mu.Lock()
	s.accounts[account.ID] = account
	s.mu.Unlock()

	err := s.submit(ctx, func(ctx context.Context, resolve func(error)) {
		st := policy.AccountSyncState{
			AccountID:          account.ID,
			SupportedByAccount: account.SyncSupported(),
			PermittedByUser:    account.SyncPermitted,
		}
		// Keep what the last probe taught us; a fresh account defaults to
		// "not enabled" until probed.
		if prev, ok := s.state.Account(account.ID); ok {
			st.EnabledOnServer = prev.EnabledOnServer
		}
		s.processInput(ctx, input(st), resolve)
	})
	if err != nil {
		return err
	}

	if probe {
		go func() {
			if enabled, probed := s.probeAccountSilent(s.ctx, account); probed {
				s.submitInput(policy.SyncingEnabled{Account: account.ID, Enabled: enabled})
			}
		}()
	}
	return nil
}

func (s *SyncService) requireProfile() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.profile == nil {
		return common.ErrNoProfile
	}
	return nil
}

func (s *SyncService) requireAccount(id models.AccountID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.profile == nil {
		return common.ErrNoProfile
	}
	if _, ok := s.accounts[id]; !ok {
		return common.ErrAccountUnknown
	}
	return nil
}

func (s *SyncService) account(id models.AccountID) (models.Account, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[id]
	return a, ok
}

// submit places fn on the worker queue and waits for its future. A caller
// may abandon the wait via ctx; the work itself still runs (cancellation is
// only effective before a task starts executing).
func (s *SyncService) submit(ctx context.Context, fn func(ctx context.Context, resolve func(error))) error {
	t := &task{fn: fn, done: make(chan error, 1)}

	select {
	case s.mailbox <- t:
	case <-s.ctx.Done():
		return s.ctx.Err()
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-t.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-s.ctx.Done():
		return s.ctx.Err()
	}
}

// submitInput enqueues a policy input without waiting; used by background
// probes whose callers are long gone.
func (s *SyncService) submitInput(in policy.Input) {
	t := &task{
		fn: func(ctx context.Context, resolve func(error)) {
			s.processInput(ctx, in, resolve)
		},
		done: make(chan error, 1),
	}
	select {
	case s.mailbox <- t:
	case <-s.ctx.Done():
	}
}

func (s *SyncService) run() {
	defer close(s.closed)
	for {
		select {
		case <-s.ctx.Done():
			return
		case t := <-s.mailbox:
			s.runTask(t)
		}
	}
}

func (s *SyncService) runTask(t *task) {
	resolved := false
	resolve := func(err error) {
		if !resolved {
			resolved = true
			t.done <- err
		}
	}

	defer func() {
		// Nothing may escape the worker and kill the process.
		if r := recover(); r != nil {
			s.logger.Error(s.ctx, "panic in sync worker", "panic", r)
		}
		resolve(nil)
	}()

	t.fn(s.ctx, resolve)
}

// processInput serially evaluates the input, executes its outputs in
// emission order and then drains any feedback inputs the execution
// produced, preserving causal order. The caller's future is resolved as
// soon as the local effects are in place: just before the first network
// command, or at the end when there is none.
func (s *SyncService) processInput(ctx context.Context, in policy.Input, resolve func(error)) {
	queue := []policy.Input{in}
	localEffectsDone := false

	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]

		newState, outputs := s.evaluate(next)
		s.setState(newState)

		for _, out := range outputs {
			if !localEffectsDone && isRemoteCommand(out) {
				resolve(nil)
				localEffectsDone = true
			}
			queue = append(queue, s.exec.execute(ctx, out)...)
		}

		if !localEffectsDone {
			resolve(nil)
			localEffectsDone = true
		}
	}
}

// evaluate runs the pure policy under the worker-confinement assertion.
func (s *SyncService) evaluate(in policy.Input) (policy.State, []policy.Output) {
	if !s.evaluating.CompareAndSwap(false, true) {
		panic("policy evaluation reentered: state is confined to the sync worker")
	}
	defer s.evaluating.Store(false)

	return policy.Evaluate(in, s.state)
}

// setState installs the new authoritative state and publishes the snapshot
// other goroutines may read.
func (s *SyncService) setState(state policy.State) {
	s.state = state
	s.mu.Lock()
	s.snapshot = state
	s.mu.Unlock()
}
