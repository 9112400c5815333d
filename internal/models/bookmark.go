// Package models defines the domain value types of the bookmark sync engine.
package models

import (
	"time"

	"github.com/google/uuid"
)

// BookmarkKind classifies a bookmark.
type BookmarkKind string

const (
	// KindLastReadLocation is the implicit "where the reader left off"
	// marker. At most one exists per work per account.
	KindLastReadLocation BookmarkKind = "last_read_location"

	// KindExplicit is a reader-placed bookmark.
	KindExplicit BookmarkKind = "explicit"

	// KindHighlight is a text selection with an optional excerpt.
	KindHighlight BookmarkKind = "highlight"
)

// BookmarkID is the stable identifier of a bookmark. IDs are unique within
// an account, not globally: the same ID may name different bookmarks under
// different accounts.
type BookmarkID string

// WorkID identifies the book a bookmark belongs to.
type WorkID string

// Bookmark is a reading-position or highlight marker. It is a value type:
// a "changed" bookmark is a new value carrying the same ID.
type Bookmark struct {
	// ID is the stable lookup key.
	ID BookmarkID

	// Work is the owning book.
	Work WorkID

	// Kind classifies the marker.
	Kind BookmarkKind

	// ChapterHref locates the chapter within the work.
	ChapterHref string

	// Progression is the position within the chapter, in [0, 1].
	Progression float64

	// SelectedText is the excerpt for highlights, empty otherwise.
	SelectedText string

	// Time is when the bookmark was taken, UTC.
	Time time.Time

	// Device identifies the device that produced the bookmark.
	Device string

	// URI is the server-assigned annotation URI. Empty until the server has
	// reported the bookmark back to us; required for a remote delete.
	URI string
}

// NewBookmarkID mints a fresh bookmark identifier.
func NewBookmarkID() BookmarkID {
	return BookmarkID(uuid.NewString())
}
