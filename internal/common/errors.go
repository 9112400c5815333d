// Package common defines shared constants and sentinel errors used across
// the bookmark sync engine. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Orchestrator-level errors. ErrNoProfile is the one error class that
	// reaches API callers: every other failure is logged and absorbed.
	ErrNoProfile      = errors.New("no profile is active")
	ErrAccountUnknown = errors.New("account is not part of the active profile")

	// Remote annotation endpoint errors.
	ErrUnauthorized     = errors.New("unauthorized")
	ErrSyncNotSupported = errors.New("annotation sync is not supported by this account")
	ErrNoBookmarkURI    = errors.New("bookmark has no server-assigned URI")

	// Generic internal flow control.
	ErrInternal = errors.New("internal error")
)
