// Package annotations implements the wire format and HTTP client for the
// remote annotation server: fetching, posting and deleting bookmark
// annotations and probing the patron's server-side sync setting. A
// RetryClient wrapper adds a bounded retry budget for environments that
// want automatic retry instead of "retry on next sync".
package annotations
