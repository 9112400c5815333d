package policy

import (
	"testing"

	"github.com/dmitrijs2005/bookmarksync/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountSyncState_CanSync(t *testing.T) {
	tests := []struct {
		name      string
		supported bool
		enabled   bool
		permitted bool
		want      bool
	}{
		{name: "all true", supported: true, enabled: true, permitted: true, want: true},
		{name: "not supported", supported: false, enabled: true, permitted: true, want: false},
		{name: "not enabled on server", supported: true, enabled: false, permitted: true, want: false},
		{name: "not permitted by user", supported: true, enabled: true, permitted: false, want: false},
		{name: "all false", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := AccountSyncState{
				AccountID:          "a",
				SupportedByAccount: tt.supported,
				EnabledOnServer:    tt.enabled,
				PermittedByUser:    tt.permitted,
			}
			assert.Equal(t, tt.want, a.CanSync())
		})
	}
}

func TestSeededState(t *testing.T) {
	accounts := []AccountSyncState{
		{AccountID: "a2", SupportedByAccount: true},
		{AccountID: "a1"},
	}
	saved := map[models.AccountID][]models.Bookmark{
		"a1": {{ID: "b2"}, {ID: "b1"}},
	}

	s := SeededState(accounts, saved)

	got := s.Accounts()
	require.Len(t, got, 2)
	assert.Equal(t, models.AccountID("a1"), got[0].AccountID)
	assert.Equal(t, models.AccountID("a2"), got[1].AccountID)

	recs := s.Records("a1")
	require.Len(t, recs, 2)
	assert.Equal(t, models.BookmarkID("b1"), recs[0].Bookmark.ID)
	assert.Equal(t, models.BookmarkID("b2"), recs[1].Bookmark.ID)
	for _, r := range recs {
		assert.Equal(t, LocalSaved, r.Local)
		assert.Equal(t, RemoteUnknown, r.Remote)
	}

	assert.Empty(t, s.Records("a2"))
}

func TestState_TransformsDoNotShareMaps(t *testing.T) {
	s1 := NewState().withAccount(AccountSyncState{AccountID: "a"})
	s2 := s1.withRecord(BookmarkRecord{Account: "a", Bookmark: models.Bookmark{ID: "b1"}})
	s3 := s2.withRecord(BookmarkRecord{
		Account:  "a",
		Bookmark: models.Bookmark{ID: "b1"},
		Local:    LocalDeleted,
	})

	r2, ok := s2.Record("a", "b1")
	require.True(t, ok)
	assert.Equal(t, LocalSaved, r2.Local)

	r3, ok := s3.Record("a", "b1")
	require.True(t, ok)
	assert.Equal(t, LocalDeleted, r3.Local)

	s4 := s3.withoutAccount("a")
	_, ok = s4.Account("a")
	assert.False(t, ok)
	_, ok = s3.Account("a")
	assert.True(t, ok)
}

func TestStateStrings(t *testing.T) {
	assert.Equal(t, "saved", LocalSaved.String())
	assert.Equal(t, "deleted", LocalDeleted.String())
	assert.Equal(t, "unknown", RemoteUnknown.String())
	assert.Equal(t, "sending", RemoteSending.String())
	assert.Equal(t, "saved", RemoteSaved.String())
	assert.Equal(t, "deleting", RemoteDeleting.String())
	assert.Equal(t, "deleted", RemoteDeleted.String())
}
