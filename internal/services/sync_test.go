package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/bookmarksync/internal/common"
	"github.com/dmitrijs2005/bookmarksync/internal/logging"
	"github.com/dmitrijs2005/bookmarksync/internal/models"
	"github.com/dmitrijs2005/bookmarksync/internal/policy"
)

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// memoryRepo is an in-memory bookmarks.Repository for orchestrator tests.
type memoryRepo struct {
	mu   sync.Mutex
	data map[models.AccountID]map[models.BookmarkID]models.Bookmark
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{data: map[models.AccountID]map[models.BookmarkID]models.Bookmark{}}
}

func (r *memoryRepo) Save(_ context.Context, account models.AccountID, b models.Bookmark) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.data[account]
	if !ok {
		m = map[models.BookmarkID]models.Bookmark{}
		r.data[account] = m
	}
	if b.Kind == models.KindLastReadLocation {
		for id, prev := range m {
			if prev.Work == b.Work && prev.Kind == models.KindLastReadLocation && id != b.ID {
				delete(m, id)
			}
		}
	}
	m[b.ID] = b
	return nil
}

func (r *memoryRepo) GetByID(_ context.Context, account models.AccountID, id models.BookmarkID) (models.Bookmark, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.data[account][id]
	if !ok {
		return models.Bookmark{}, common.ErrNotFound
	}
	return b, nil
}

func (r *memoryRepo) ListByAccount(_ context.Context, account models.AccountID) ([]models.Bookmark, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Bookmark, 0, len(r.data[account]))
	for _, b := range r.data[account] {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memoryRepo) ListByWork(_ context.Context, account models.AccountID, work models.WorkID) ([]models.Bookmark, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Bookmark
	for _, b := range r.data[account] {
		if b.Work == work {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memoryRepo) DeleteByID(_ context.Context, account models.AccountID, id models.BookmarkID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.data[account], id)
	return nil
}

func (r *memoryRepo) DeleteByAccount(_ context.Context, account models.AccountID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.data, account)
	return nil
}

// fakeClient scripts the annotation server.
type fakeClient struct {
	mu sync.Mutex

	enabled   bool
	probeErr  error
	enableErr error
	fetchErr  error
	addErr    error

	remote []models.Bookmark

	added   []models.Bookmark
	deleted []string
	probes  int
	fetches int
}

func (c *fakeClient) GetBookmarks(_ context.Context, _ string, _ models.Credentials) ([]models.Bookmark, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fetches++
	if c.fetchErr != nil {
		return nil, c.fetchErr
	}
	out := make([]models.Bookmark, len(c.remote))
	copy(out, c.remote)
	return out, nil
}

func (c *fakeClient) AddBookmark(_ context.Context, _ string, _ models.Credentials, b models.Bookmark) (models.Bookmark, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.addErr != nil {
		return models.Bookmark{}, c.addErr
	}
	c.added = append(c.added, b)
	b.URI = "https://annotations.example.com/" + string(b.ID)
	return b, nil
}

func (c *fakeClient) DeleteBookmark(_ context.Context, bookmarkURI string, _ models.Credentials) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deleted = append(c.deleted, bookmarkURI)
	return nil
}

func (c *fakeClient) SyncingIsEnabled(_ context.Context, _ string, _ models.Credentials) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.probes++
	if c.probeErr != nil {
		return false, c.probeErr
	}
	return c.enabled, nil
}

func (c *fakeClient) SyncingEnable(_ context.Context, _ string, _ models.Credentials, enabled bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.enableErr != nil {
		return c.enableErr
	}
	c.enabled = enabled
	return nil
}

func (c *fakeClient) addedCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.added)
}

func (c *fakeClient) fetchCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fetches
}

func (c *fakeClient) deletedURIs() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.deleted))
	copy(out, c.deleted)
	return out
}

const accountID = models.AccountID("acc-1")

func syncableAccount() models.Account {
	return models.Account{
		ID:             accountID,
		Provider:       "Test Library",
		AnnotationsURI: "https://annotations.example.com/patron",
		SettingsURI:    "https://settings.example.com/patron",
		Credentials:    models.Credentials{Username: "u", Password: "p"},
		SyncPermitted:  true,
	}
}

func offlineAccount() models.Account {
	a := syncableAccount()
	a.AnnotationsURI = ""
	a.SettingsURI = ""
	return a
}

func bookmark(id string) models.Bookmark {
	return models.Bookmark{
		ID:          models.BookmarkID(id),
		Work:        "work-1",
		Kind:        models.KindExplicit,
		ChapterHref: "/chapter/3",
		Progression: 0.25,
		Time:        time.Date(2024, 5, 10, 8, 0, 0, 0, time.UTC),
		Device:      "device-1",
	}
}

func newService(t *testing.T, repo *memoryRepo, client *fakeClient) *SyncService {
	t.Helper()
	s := NewSyncService(repo, client, testLogger())
	t.Cleanup(s.Close)
	return s
}

func activate(t *testing.T, s *SyncService, accounts ...models.Account) {
	t.Helper()
	err := s.ProfileChanged(context.Background(), models.Profile{
		ID:       "profile-1",
		Name:     "Reader",
		Accounts: accounts,
	})
	require.NoError(t, err)
}

func TestNoProfile(t *testing.T) {
	s := newService(t, newMemoryRepo(), &fakeClient{})
	ctx := context.Background()

	err := s.BookmarkCreate(ctx, accountID, bookmark("b1"))
	assert.ErrorIs(t, err, common.ErrNoProfile)

	_, err = s.BookmarkLoad(ctx, accountID, "work-1")
	assert.ErrorIs(t, err, common.ErrNoProfile)

	_, err = s.SyncEnable(ctx, accountID, true)
	assert.ErrorIs(t, err, common.ErrNoProfile)

	err = s.AccountDeleted(ctx, accountID)
	assert.ErrorIs(t, err, common.ErrNoProfile)
}

func TestUnknownAccount(t *testing.T) {
	s := newService(t, newMemoryRepo(), &fakeClient{})
	activate(t, s, offlineAccount())

	err := s.BookmarkCreate(context.Background(), "nope", bookmark("b1"))
	assert.ErrorIs(t, err, common.ErrAccountUnknown)
}

func TestBookmarkCreate_OfflineAccountStaysLocal(t *testing.T) {
	repo := newMemoryRepo()
	client := &fakeClient{}
	s := newService(t, repo, client)
	activate(t, s, offlineAccount())
	ctx := context.Background()

	require.NoError(t, s.BookmarkCreate(ctx, accountID, bookmark("b1")))

	got, err := s.BookmarkLoad(ctx, accountID, "work-1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, models.BookmarkID("b1"), got[0].ID)

	assert.Zero(t, client.addedCount())
	assert.Zero(t, client.fetchCount())
}

func TestSyncEnable_SendsPendingAndFetches(t *testing.T) {
	repo := newMemoryRepo()
	client := &fakeClient{remote: []models.Bookmark{bookmark("remote-1")}}
	s := newService(t, repo, client)
	activate(t, s, syncableAccount())
	ctx := context.Background()

	// Created while the server-side flag was still off.
	require.NoError(t, s.BookmarkCreate(ctx, accountID, bookmark("b1")))
	require.Zero(t, client.addedCount())

	setting, err := s.SyncEnable(ctx, accountID, true)
	require.NoError(t, err)
	assert.Equal(t, SyncSettingEnabled, setting)

	// Enabling triggers one sync-all: the pending bookmark goes out, a
	// fetch follows and the server's bookmark lands locally.
	require.Eventually(t, func() bool {
		return client.addedCount() == 1 && client.fetchCount() == 1
	}, 2*time.Second, 10*time.Millisecond)

	require.Eventually(t, func() bool {
		list, err := repo.ListByWork(ctx, accountID, "work-1")
		return err == nil && len(list) == 2
	}, 2*time.Second, 10*time.Millisecond)

	// The server ack flowed back: the sent record is RemoteSaved and
	// carries the assigned URI.
	require.Eventually(t, func() bool {
		r, ok := s.State().Record(accountID, "b1")
		return ok && r.Remote == policy.RemoteSaved && r.Bookmark.URI != ""
	}, 2*time.Second, 10*time.Millisecond)
}

func TestSyncEnable_SecondEnableDoesNotResync(t *testing.T) {
	repo := newMemoryRepo()
	client := &fakeClient{}
	s := newService(t, repo, client)
	activate(t, s, syncableAccount())
	ctx := context.Background()

	_, err := s.SyncEnable(ctx, accountID, true)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return client.fetchCount() == 1 },
		2*time.Second, 10*time.Millisecond)

	// Already enabled: no rising edge, no second sync-all.
	_, err = s.SyncEnable(ctx, accountID, true)
	require.NoError(t, err)

	require.NoError(t, s.BookmarkCreate(ctx, accountID, bookmark("b1")))
	require.Eventually(t, func() bool { return client.addedCount() == 1 },
		2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 1, client.fetchCount())
}

func TestSyncEnable_NotSupported(t *testing.T) {
	s := newService(t, newMemoryRepo(), &fakeClient{})
	activate(t, s, offlineAccount())

	setting, err := s.SyncEnable(context.Background(), accountID, true)
	require.NoError(t, err)
	assert.Equal(t, SyncSettingNotSupported, setting)
}

func TestSyncEnable_ServerRejects(t *testing.T) {
	client := &fakeClient{enableErr: errors.New("boom")}
	s := newService(t, newMemoryRepo(), client)
	activate(t, s, syncableAccount())

	setting, err := s.SyncEnable(context.Background(), accountID, true)
	require.Error(t, err)
	assert.Equal(t, SyncSettingDisabled, setting)
}

func TestBookmarkDelete_RemovesLocallyAndRetracts(t *testing.T) {
	repo := newMemoryRepo()
	client := &fakeClient{}
	s := newService(t, repo, client)
	activate(t, s, syncableAccount())
	ctx := context.Background()

	_, err := s.SyncEnable(ctx, accountID, true)
	require.NoError(t, err)

	require.NoError(t, s.BookmarkCreate(ctx, accountID, bookmark("b1")))
	require.Eventually(t, func() bool {
		r, ok := s.State().Record(accountID, "b1")
		return ok && r.Remote == policy.RemoteSaved
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, s.BookmarkDelete(ctx, accountID, bookmark("b1")))

	// Gone from local storage immediately.
	list, err := s.BookmarkLoad(ctx, accountID, "work-1")
	require.NoError(t, err)
	assert.Empty(t, list)

	// The retraction targets the server-assigned URI, not the client ID.
	require.Eventually(t, func() bool {
		d := client.deletedURIs()
		return len(d) == 1 && d[0] == "https://annotations.example.com/b1"
	}, 2*time.Second, 10*time.Millisecond)
}

func TestProfileChanged_SeedsFromStorageAndProbes(t *testing.T) {
	repo := newMemoryRepo()
	ctx := context.Background()
	require.NoError(t, repo.Save(ctx, accountID, bookmark("b1")))

	client := &fakeClient{enabled: true}
	s := newService(t, repo, client)
	activate(t, s, syncableAccount())

	// The startup probe finds syncing enabled and the seeded bookmark is
	// offered to the server.
	require.Eventually(t, func() bool {
		return client.addedCount() == 1 && client.fetchCount() == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestProfileChanged_ProbeFailureDisablesSync(t *testing.T) {
	repo := newMemoryRepo()
	require.NoError(t, repo.Save(context.Background(), accountID, bookmark("b1")))

	client := &fakeClient{enabled: true, probeErr: errors.New("unreachable")}
	s := newService(t, repo, client)
	activate(t, s, syncableAccount())

	require.Eventually(t, func() bool {
		st, ok := s.State().Account(accountID)
		return ok && !st.EnabledOnServer
	}, 2*time.Second, 10*time.Millisecond)
	assert.Zero(t, client.addedCount())
}

func TestSendFailure_KeepsRecordPending(t *testing.T) {
	repo := newMemoryRepo()
	client := &fakeClient{enabled: true, addErr: errors.New("503")}
	s := newService(t, repo, client)
	activate(t, s, syncableAccount())
	ctx := context.Background()

	require.Eventually(t, func() bool {
		st, ok := s.State().Account(accountID)
		return ok && st.EnabledOnServer
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, s.BookmarkCreate(ctx, accountID, bookmark("b1")))

	// The send was dropped; the record stays pending so a later sync-all
	// retries it.
	require.Eventually(t, func() bool {
		r, ok := s.State().Record(accountID, "b1")
		return ok && r.Remote == policy.RemoteUnknown
	}, 2*time.Second, 10*time.Millisecond)

	// Still saved locally regardless.
	list, err := s.BookmarkLoad(ctx, accountID, "work-1")
	require.NoError(t, err)
	require.Len(t, list, 1)
}

func TestAccountDeleted_PurgesEverything(t *testing.T) {
	repo := newMemoryRepo()
	s := newService(t, repo, &fakeClient{})
	activate(t, s, offlineAccount())
	ctx := context.Background()

	require.NoError(t, s.BookmarkCreate(ctx, accountID, bookmark("b1")))
	require.NoError(t, s.AccountDeleted(ctx, accountID))

	_, ok := s.State().Account(accountID)
	assert.False(t, ok)

	list, err := repo.ListByAccount(ctx, accountID)
	require.NoError(t, err)
	assert.Empty(t, list)

	// The account is no longer addressable.
	err = s.BookmarkCreate(ctx, accountID, bookmark("b2"))
	assert.ErrorIs(t, err, common.ErrAccountUnknown)
}

func TestEvents_SaveAndSyncLifecycle(t *testing.T) {
	repo := newMemoryRepo()
	client := &fakeClient{enabled: true}
	s := newService(t, repo, client)

	events, cancel := s.Events()
	defer cancel()

	activate(t, s, syncableAccount())
	require.NoError(t, s.BookmarkCreate(context.Background(), accountID, bookmark("b1")))

	var saw struct {
		saved, started, finished bool
	}
	deadline := time.After(2 * time.Second)
	for !(saw.saved && saw.started && saw.finished) {
		select {
		case e := <-events:
			switch e.(type) {
			case BookmarkSaved:
				saw.saved = true
			case SyncStarted:
				saw.started = true
			case SyncFinished:
				saw.finished = true
			}
		case <-deadline:
			t.Fatalf("missing events: %+v", saw)
		}
	}
}

func TestReceivedBookmarkOfDeletedRecordIsRetracted(t *testing.T) {
	repo := newMemoryRepo()

	remote := bookmark("b1")
	remote.URI = "https://annotations.example.com/b1"
	client := &fakeClient{remote: []models.Bookmark{remote}}

	s := newService(t, repo, client)
	activate(t, s, syncableAccount())
	ctx := context.Background()

	// Create and delete while syncing is off: the deletion is remembered.
	require.NoError(t, s.BookmarkCreate(ctx, accountID, bookmark("b1")))
	require.NoError(t, s.BookmarkDelete(ctx, accountID, bookmark("b1")))

	_, err := s.SyncEnable(ctx, accountID, true)
	require.NoError(t, err)

	// The fetch returns the dead bookmark; it must be retracted upstream,
	// not resurrected locally.
	require.Eventually(t, func() bool {
		d := client.deletedURIs()
		return len(d) == 1 && d[0] == remote.URI
	}, 2*time.Second, 10*time.Millisecond)

	list, err := s.BookmarkLoad(ctx, accountID, "work-1")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestClose_StopsWorker(t *testing.T) {
	s := NewSyncService(newMemoryRepo(), &fakeClient{}, testLogger())

	events, cancel := s.Events()
	defer cancel()

	s.Close()

	_, open := <-events
	assert.False(t, open)

	err := s.BookmarkCreate(context.Background(), accountID, bookmark("b1"))
	assert.Error(t, err)
}
