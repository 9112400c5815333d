// Package services hosts the sync orchestrator. SyncService owns the
// authoritative policy state, serializes every evaluation on a single
// worker goroutine and executes the resulting commands against the local
// store and the annotation server. Remote work is best-effort: failures
// are logged and retried by the next natural sync trigger.
package services
