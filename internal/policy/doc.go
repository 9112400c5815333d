// Package policy contains the pure bookmark synchronization policy: given an
// input event and an immutable state snapshot, Evaluate returns the next
// snapshot and the ordered effects to run. The package has no I/O and no
// concurrency; serialization of evaluations is the orchestrator's job.
package policy
