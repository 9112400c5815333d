package annotations

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dmitrijs2005/bookmarksync/internal/common"
	"github.com/dmitrijs2005/bookmarksync/internal/logging"
	"github.com/dmitrijs2005/bookmarksync/internal/models"
)

const (
	contentTypeAnnotation = "application/ld+json; profile=\"http://www.w3.org/ns/anno.jsonld\""
	contentTypeProfile    = "vnd.librarysimplified/user-profile+json"

	// settingsSyncKey is the patron-settings flag gating server-side sync.
	settingsSyncKey = "simplified:synchronize_annotations"
)

// HTTPClient talks to the annotation server over plain HTTP with basic
// auth. TLS and connection pooling are whatever the injected http.Client
// provides.
type HTTPClient struct {
	httpClient *http.Client
	logger     logging.Logger
}

func NewHTTPClient(timeout time.Duration, logger logging.Logger) *HTTPClient {
	return &HTTPClient{
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// userProfile is the patron settings document.
type userProfile struct {
	Settings map[string]bool `json:"settings"`
}

func (c *HTTPClient) do(ctx context.Context, method, uri string, credentials models.Credentials, contentType string, body []byte) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, uri, reader)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if !credentials.Empty() {
		req.SetBasicAuth(credentials.Username, credentials.Password)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		resp.Body.Close()
		return nil, common.ErrUnauthorized
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		resp.Body.Close()
		return nil, fmt.Errorf("%s %s: unexpected status %s", method, uri, resp.Status)
	}
	return resp, nil
}

func (c *HTTPClient) GetBookmarks(ctx context.Context, annotationsURI string, credentials models.Credentials) ([]models.Bookmark, error) {
	resp, err := c.do(ctx, http.MethodGet, annotationsURI, credentials, "", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var col collection
	if err := json.NewDecoder(resp.Body).Decode(&col); err != nil {
		return nil, fmt.Errorf("decoding annotation collection: %w", err)
	}

	bookmarks := make([]models.Bookmark, 0, len(col.First.Items))
	for _, a := range col.First.Items {
		b, err := a.ToBookmark()
		if err != nil {
			// One bad annotation must not sink the whole fetch.
			c.logger.Warn(ctx, "skipping unparseable annotation", "uri", a.ID, "error", err)
			continue
		}
		bookmarks = append(bookmarks, b)
	}
	return bookmarks, nil
}

func (c *HTTPClient) AddBookmark(ctx context.Context, annotationsURI string, credentials models.Credentials, bookmark models.Bookmark) (models.Bookmark, error) {
	payload, err := json.Marshal(FromBookmark(bookmark))
	if err != nil {
		return models.Bookmark{}, fmt.Errorf("encoding annotation: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPost, annotationsURI, credentials, contentTypeAnnotation, payload)
	if err != nil {
		return models.Bookmark{}, err
	}
	defer resp.Body.Close()

	// The server echoes the stored annotation, now carrying its resource
	// URI. A missing or unreadable echo is not an error: the send counted,
	// the URI arrives with the next fetch.
	var stored Annotation
	if err := json.NewDecoder(resp.Body).Decode(&stored); err != nil {
		return bookmark, nil
	}
	if saved, err := stored.ToBookmark(); err == nil {
		return saved, nil
	}
	if stored.ID != "" {
		bookmark.URI = stored.ID
	}
	return bookmark, nil
}

func (c *HTTPClient) DeleteBookmark(ctx context.Context, bookmarkURI string, credentials models.Credentials) error {
	resp, err := c.do(ctx, http.MethodDelete, bookmarkURI, credentials, "", nil)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

func (c *HTTPClient) SyncingIsEnabled(ctx context.Context, settingsURI string, credentials models.Credentials) (bool, error) {
	resp, err := c.do(ctx, http.MethodGet, settingsURI, credentials, "", nil)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	var profile userProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return false, fmt.Errorf("decoding patron settings: %w", err)
	}
	return profile.Settings[settingsSyncKey], nil
}

func (c *HTTPClient) SyncingEnable(ctx context.Context, settingsURI string, credentials models.Credentials, enabled bool) error {
	payload, err := json.Marshal(userProfile{Settings: map[string]bool{settingsSyncKey: enabled}})
	if err != nil {
		return fmt.Errorf("encoding patron settings: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPut, settingsURI, credentials, contentTypeProfile, payload)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

var _ Client = (*HTTPClient)(nil)
