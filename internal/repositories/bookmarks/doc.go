// Package bookmarks is the local on-device bookmark store: a Repository
// interface and its SQLite implementation. It knows nothing about sync
// status; that lives in the policy state.
package bookmarks
