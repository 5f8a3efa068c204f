package internal

import "strings"

// The engine only ever writes inside SyncPaths. ProtectedPaths is user
// territory and exists for documentation and tests; nothing in the sync flow
// consults it at runtime because no code path can reach those locations.
var (
	SyncPaths = []string{
		"system",
		"index.md",
		"bootstrap.md",
	}

	ProtectedPaths = []string{
		"memory",
		"projects",
		"skills",
		"workspace",
		"secrets",
		".tsync",
	}
)

const (
	// BackupDirName holds timestamped pre-overwrite snapshots.
	BackupDirName = ".sync-backup"

	// LockFileName is the advisory single-flight lock taken by mutating syncs.
	LockFileName = ".tsync.lock"

	// ConfigDirName holds the engine's own configuration.
	ConfigDirName = ".tsync"
)

// underPath reports whether rel equals path or lives below it. Both are
// slash-form repo-relative paths.
func underPath(rel, path string) bool {
	return rel == path || strings.HasPrefix(rel, path+"/")
}

// InSyncPaths reports whether rel falls under any sync path.
func InSyncPaths(rel string) bool {
	for _, p := range SyncPaths {
		if underPath(rel, p) {
			return true
		}
	}
	return false
}

// InProtectedPaths reports whether rel falls under any protected path.
func InProtectedPaths(rel string) bool {
	for _, p := range ProtectedPaths {
		if underPath(rel, p) {
			return true
		}
	}
	return false
}
