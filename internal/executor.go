package internal

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"

	"github.com/gofrs/flock"
)

// Snapshotter is what the executor needs from a backup implementation.
type Snapshotter interface {
	Snapshot(paths []string, versionBefore string) (string, error)
}

// OverwriteStrategy is the policy applied during checkout. The shipped
// strategy is an unconditional path-bounded overwrite; the seam exists so a
// merging strategy could be substituted without touching the orchestration.
type OverwriteStrategy interface {
	Apply(ref string, paths []string) ([]PathError, error)
}

// CheckoutOverwrite replaces each sync path's content with the content at the
// upstream ref. One-way by design: local edits under the sync paths are
// discarded, mitigated by the guard and backup steps that run first.
type CheckoutOverwrite struct {
	repo RepoHandle
}

func NewCheckoutOverwrite(repo RepoHandle) CheckoutOverwrite {
	return CheckoutOverwrite{repo: repo}
}

func (s CheckoutOverwrite) Apply(ref string, paths []string) ([]PathError, error) {
	return s.repo.CheckoutPaths(ref, paths)
}

type SyncOptions struct {
	DryRun bool
	Force  bool
}

// Executor drives a sync invocation through fetch, guard, backup, checkout
// and finalize. Every terminal state is a structured SyncResult; it never
// returns a Go error to the caller.
type Executor struct {
	repo     RepoHandle
	store    *VersionStore
	guard    *DirtyTreeGuard
	backup   Snapshotter
	strategy OverwriteStrategy
	cfg      *Config
	root     string
	logger   *slog.Logger
}

func NewExecutor(repo RepoHandle, store *VersionStore, backup Snapshotter, cfg *Config, root string, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{
		repo:     repo,
		store:    store,
		guard:    NewDirtyTreeGuard(repo),
		backup:   backup,
		strategy: NewCheckoutOverwrite(repo),
		cfg:      cfg,
		root:     root,
		logger:   logger,
	}
}

// SetStrategy replaces the overwrite policy.
func (e *Executor) SetStrategy(s OverwriteStrategy) {
	e.strategy = s
}

func (e *Executor) Sync(ctx context.Context, opts SyncOptions) *SyncResult {
	local := e.store.Read()
	res := &SyncResult{
		Status:        StatusFailure,
		ChangedFiles:  []string{},
		VersionBefore: local.String(),
		VersionAfter:  local.String(),
	}

	// Advisory single-flight lock: two interleaving syncs would corrupt the
	// tree. Lock failure is its own terminal status, never a blocking wait.
	// Dry runs take no lock because they write nothing, not even a lockfile.
	if !opts.DryRun {
		lock := flock.New(filepath.Join(e.root, LockFileName))
		locked, err := lock.TryLock()
		if err != nil {
			res.Status = StatusLocked
			res.Error = err.Error()
			return res
		}
		if !locked {
			res.Status = StatusLocked
			res.Error = "another sync is in progress"
			return res
		}
		defer func() { _ = lock.Unlock() }()
	}

	if err := e.repo.EnsureRemote(e.cfg.Remote.Name, e.cfg.Remote.URL); err != nil {
		res.Status = StatusNetworkError
		res.Error = ErrCodeNetworkUnreachable
		return res
	}

	e.logger.Info("fetching upstream", "remote", e.cfg.Remote.Name, "ref", e.cfg.Remote.Ref)
	state, err := e.repo.Fetch(ctx, e.cfg.Remote.Name, e.cfg.Remote.Ref)
	if err != nil {
		e.logger.Warn("fetch failed", "error", err)
		res.Status = StatusNetworkError
		res.Error = ErrCodeNetworkUnreachable
		return res
	}

	upstream := Unknown
	if data, err := e.repo.ReadFileAtRef(VersionFile, state.Ref); err == nil {
		upstream = ParseVersion(string(data))
	}
	if !upstream.Known() {
		res.Error = ErrCodeVersionUnreadable
		return res
	}

	guard, err := e.guard.Check()
	if err != nil {
		res.Error = fmt.Sprintf("status check: %v", err)
		return res
	}
	if guard.Dirty && !opts.Force {
		res.Status = StatusDirtyTree
		res.OffendingPaths = guard.OffendingPaths
		return res
	}

	changed, err := e.repo.DiffPaths("HEAD", state.Ref, SyncPaths)
	if err != nil {
		res.Error = ErrCodeDiffFailed
		return res
	}
	if changed == nil {
		changed = []string{}
	}
	res.ChangedFiles = changed

	if opts.DryRun {
		res.Status = StatusDryRun
		res.Previews = PreviewChanges(e.repo, e.root, state.Ref, changed)
		return res
	}

	forcedDirty := opts.Force && guard.Dirty
	if len(changed) == 0 && !forcedDirty {
		// Already in sync. No backup, no checkout, no version write.
		res.Status = StatusSuccess
		return res
	}

	backupSet := mergePaths(changed, guard.OffendingPaths)
	e.logger.Info("snapshotting pre-sync content", "files", len(backupSet))
	location, err := e.backup.Snapshot(backupSet, res.VersionBefore)
	if err != nil {
		// Fail closed: no destructive write without a verified-complete backup.
		e.logger.Error("backup failed, aborting", "error", err)
		res.Status = StatusBackupError
		res.Error = err.Error()
		return res
	}
	res.BackupLocation = location

	e.logger.Info("checking out upstream content", "commit", state.Commit)
	failures, err := e.strategy.Apply(state.Ref, SyncPaths)
	if err != nil {
		res.Error = fmt.Sprintf("checkout: %v", err)
		return res
	}
	if len(failures) > 0 {
		res.Status = StatusPartialFailure
		res.FailedFiles = failures
		res.VersionAfter = e.store.Read().String()
		res.Error = "some paths failed to check out"
		return res
	}

	if err := e.store.Write(upstream); err != nil {
		res.Status = StatusPartialFailure
		res.Error = fmt.Sprintf("version write: %v", err)
		return res
	}
	res.VersionAfter = upstream.String()

	message := fmt.Sprintf("sync: update template %s -> %s", res.VersionBefore, res.VersionAfter)
	if err := e.repo.CommitPaths(message, SyncPaths); err != nil {
		res.Status = StatusPartialFailure
		res.Error = fmt.Sprintf("record sync commit: %v", err)
		return res
	}

	e.logger.Info("sync complete", "version", res.VersionAfter, "changed", len(changed))
	res.Status = StatusSuccess
	return res
}

func mergePaths(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	var merged []string
	for _, rel := range append(append([]string{}, a...), b...) {
		if seen[rel] {
			continue
		}
		seen[rel] = true
		merged = append(merged, rel)
	}
	sort.Strings(merged)
	return merged
}
