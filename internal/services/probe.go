package services

import (
	"context"

	"github.com/dmitrijs2005/bookmarksync/internal/models"
	"github.com/dmitrijs2005/bookmarksync/internal/policy"
)

// probeAccount asks the server whether syncing is enabled for the account.
// A failed probe reads as disabled: syncing stays off until the server can
// be reached again.
func (s *SyncService) probeAccount(ctx context.Context, account models.Account) bool {
	enabled, err := s.client.SyncingIsEnabled(ctx, account.SettingsURI, account.Credentials)
	if err != nil {
		s.logger.Warn(ctx, "sync setting probe failed, treating as disabled",
			"account", account.ID, "error", err)
		return false
	}
	return enabled
}

// probeAccountSilent probes only accounts that could plausibly sync. The
// second return is false when the account was skipped entirely.
func (s *SyncService) probeAccountSilent(ctx context.Context, account models.Account) (enabled, probed bool) {
	if !account.SyncSupported() || account.SettingsURI == "" || account.Credentials.Empty() {
		return false, false
	}
	return s.probeAccount(ctx, account), true
}

// probeAll probes every account and feeds the results through the policy.
// Runs on its own goroutine after a profile change; results arrive as
// ordinary queued inputs.
func (s *SyncService) probeAll(ctx context.Context, accounts []models.Account) {
	for _, a := range accounts {
		if enabled, probed := s.probeAccountSilent(ctx, a); probed {
			s.submitInput(policy.SyncingEnabled{Account: a.ID, Enabled: enabled})
		}
	}
}
