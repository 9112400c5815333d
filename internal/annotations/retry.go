package annotations

import (
	"context"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/dmitrijs2005/bookmarksync/internal/models"
)

// RetryClient is the hardening wrapper over a Client: every network command
// is attempted up to a fixed budget with a fixed inter-attempt delay, then
// abandoned with the final error. Cancellation is cooperative: the context
// is checked before each attempt and an aborted call has no further side
// effects.
type RetryClient struct {
	inner    Client
	attempts uint64
	delay    time.Duration
}

// NewRetryClient wraps inner with the given total attempt budget. Budgets
// below one attempt are rounded up to one.
func NewRetryClient(inner Client, attempts int, delay time.Duration) *RetryClient {
	if attempts < 1 {
		attempts = 1
	}
	return &RetryClient{inner: inner, attempts: uint64(attempts), delay: delay}
}

func (c *RetryClient) backoff() retry.Backoff {
	// attempts-1 retries after the first try.
	return retry.WithMaxRetries(c.attempts-1, retry.NewConstant(c.delay))
}

func (c *RetryClient) GetBookmarks(ctx context.Context, annotationsURI string, credentials models.Credentials) ([]models.Bookmark, error) {
	var bookmarks []models.Bookmark
	err := retry.Do(ctx, c.backoff(), func(ctx context.Context) error {
		var err error
		bookmarks, err = c.inner.GetBookmarks(ctx, annotationsURI, credentials)
		return retryable(err)
	})
	return bookmarks, err
}

func (c *RetryClient) AddBookmark(ctx context.Context, annotationsURI string, credentials models.Credentials, bookmark models.Bookmark) (models.Bookmark, error) {
	var saved models.Bookmark
	err := retry.Do(ctx, c.backoff(), func(ctx context.Context) error {
		var err error
		saved, err = c.inner.AddBookmark(ctx, annotationsURI, credentials, bookmark)
		return retryable(err)
	})
	return saved, err
}

func (c *RetryClient) DeleteBookmark(ctx context.Context, bookmarkURI string, credentials models.Credentials) error {
	return retry.Do(ctx, c.backoff(), func(ctx context.Context) error {
		return retryable(c.inner.DeleteBookmark(ctx, bookmarkURI, credentials))
	})
}

func (c *RetryClient) SyncingIsEnabled(ctx context.Context, settingsURI string, credentials models.Credentials) (bool, error) {
	var enabled bool
	err := retry.Do(ctx, c.backoff(), func(ctx context.Context) error {
		var err error
		enabled, err = c.inner.SyncingIsEnabled(ctx, settingsURI, credentials)
		return retryable(err)
	})
	return enabled, err
}

func (c *RetryClient) SyncingEnable(ctx context.Context, settingsURI string, credentials models.Credentials, enabled bool) error {
	return retry.Do(ctx, c.backoff(), func(ctx context.Context) error {
		return retryable(c.inner.SyncingEnable(ctx, settingsURI, credentials, enabled))
	})
}

func retryable(err error) error {
	if err == nil {
		return nil
	}
	return retry.RetryableError(err)
}

var _ Client = (*RetryClient)(nil)
