// Package constants provides shared constants used throughout the orgmap codebase.
// This includes timeouts and file permissions that should be consistent across
// the library and the CLI.
package constants

import "time"

// Timeout constants define various timeout durations used in the application
const (
	// CommandTimeout bounds one CLI merge run, ingestion included
	CommandTimeout = 10 * time.Minute
)

// File permission constants define standard Unix file permissions
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0o755

	// FilePermissions is the default permission for exports and reports (rw-r--r--)
	FilePermissions = 0o644
)
