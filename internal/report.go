package internal

import (
	"encoding/json"
	"errors"
	"io"
)

var (
	ErrNotFound = errors.New("file not found at ref")
	ErrNetwork  = errors.New("remote unreachable")
	ErrBackup   = errors.New("backup incomplete")
)

// Sync statuses. Every invocation terminates in exactly one of these; none of
// them is ever surfaced as a raised error to the calling process.
const (
	StatusSuccess        = "success"
	StatusDryRun         = "dry_run"
	StatusDirtyTree      = "dirty_tree"
	StatusNetworkError   = "network_error"
	StatusBackupError    = "backup_error"
	StatusPartialFailure = "partial_failure"
	StatusLocked         = "locked"
	StatusFailure        = "failure"
)

// Error codes carried in the JSON contract.
const (
	ErrCodeNetworkUnreachable = "network_unreachable"
	ErrCodeVersionUnreadable  = "version_unreadable"
	ErrCodeDiffFailed         = "diff_failed"
)

// PathError records a single path that could not be checked out.
type PathError struct {
	Path string `json:"path"`
	Err  string `json:"error"`
}

// CheckResult is the outcome of a read-only update check.
type CheckResult struct {
	UpdateAvailable bool     `json:"update_available"`
	LocalVersion    string   `json:"local_version"`
	UpstreamVersion string   `json:"upstream_version,omitempty"`
	ChangedPaths    []string `json:"changed_paths"`
	Inconsistent    bool     `json:"inconsistent,omitempty"`
	Error           string   `json:"error,omitempty"`
}

// SyncResult is the outcome of a sync invocation.
type SyncResult struct {
	Status         string            `json:"status"`
	ChangedFiles   []string          `json:"changed_files"`
	FailedFiles    []PathError       `json:"failed_files,omitempty"`
	OffendingPaths []string          `json:"offending_paths,omitempty"`
	BackupLocation string            `json:"backup_location,omitempty"`
	VersionBefore  string            `json:"version_before"`
	VersionAfter   string            `json:"version_after"`
	Previews       map[string]string `json:"previews,omitempty"`
	Error          string            `json:"error,omitempty"`
}

// StartupResult is the best-effort startup check outcome. It carries nothing
// but the availability bit so the startup path has nothing to trip over.
type StartupResult struct {
	UpdateAvailable bool `json:"update_available"`
}

// WriteJSON serializes v for the external workflow layer.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
