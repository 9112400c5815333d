// Package config loads runtime configuration for the bookmark sync engine.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-d string   path to the local bookmark database
//	-t int      annotation request timeout (seconds)
//	-l string   log level
//
// # JSON schema
//
// The JSON loader uses timex.Duration for intervals, so values can be either
// strings like "3s" or integer nanoseconds:
//
//	{
//	  "database_path": "bookmarks.db",
//	  "request_timeout": "30s",
//	  "retry_attempts": 3,
//	  "retry_delay": "3s",
//	  "log_level": "info"
//	}
//
// This package does not read environment variables; use the JSON file or
// flags to configure values.
package config
