// Package cli implements the interactive bookmark manager: a small REPL
// over the sync service for managing profiles, accounts and bookmarks from
// a terminal.
package cli
