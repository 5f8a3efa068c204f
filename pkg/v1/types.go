package v1

// CheckResult reports whether a newer template is available upstream.
type CheckResult struct {
	UpdateAvailable bool     `json:"update_available"`
	LocalVersion    string   `json:"local_version"`
	UpstreamVersion string   `json:"upstream_version,omitempty"`
	ChangedPaths    []string `json:"changed_paths"`
	Inconsistent    bool     `json:"inconsistent,omitempty"`
	Error           string   `json:"error,omitempty"`
}

// PathError records a single path that failed to check out.
type PathError struct {
	Path string `json:"path"`
	Err  string `json:"error"`
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
