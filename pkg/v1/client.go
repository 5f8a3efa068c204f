package v1

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/templateops/tsync/internal"
)

// Client provides programmatic access to the sync engine for callers that
// embed it instead of shelling out to the CLI.
type Client struct {
	root       string
	comparator *internal.Comparator
	executor   *internal.Executor
}

// New creates a new Client with the given options.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	root := cfg.root
	if root == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("get working directory: %w", err)
		}
		root = cwd
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	conf, err := internal.LoadConfig(root)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	repo, err := internal.OpenRepo(root)
	if err != nil {
		return nil, fmt.Errorf("open repository: %w", err)
	}

	store := internal.NewVersionStore(root)
	backup := internal.NewBackupManager(root)

	return &Client{
		root:       root,
		comparator: internal.NewComparator(repo, store, conf, logger),
		executor:   internal.NewExecutor(repo, store, backup, conf, root, logger),
	}, nil
}

// CheckUpdate performs a read-only comparison against the upstream template.
func (c *Client) CheckUpdate(ctx context.Context) *CheckResult {
	return toCheckResult(c.comparator.CheckUpdate(ctx))
}

// Sync updates the sync paths from upstream. dryRun previews without
// writing; force proceeds past uncommitted edits inside the sync paths.
func (c *Client) Sync(ctx context.Context, dryRun, force bool) *SyncResult {
	return toSyncResult(c.executor.Sync(ctx, internal.SyncOptions{
		DryRun: dryRun,
		Force:  force,
	}))
}

// StartupCheck runs a best-effort update check under the given timeout
// (zero means the configured default). It never fails.
func (c *Client) StartupCheck(ctx context.Context, timeout time.Duration) bool {
	return c.comparator.StartupCheck(ctx, timeout).UpdateAvailable
}

func toCheckResult(res *internal.CheckResult) *CheckResult {
	return &CheckResult{
		UpdateAvailable: res.UpdateAvailable,
		LocalVersion:    res.LocalVersion,
		UpstreamVersion: res.UpstreamVersion,
		ChangedPaths:    res.ChangedPaths,
		Inconsistent:    res.Inconsistent,
		Error:           res.Error,
	}
}

func toSyncResult(res *internal.SyncResult) *SyncResult {
	out := &SyncResult{
		Status:         res.Status,
		ChangedFiles:   res.ChangedFiles,
		OffendingPaths: res.OffendingPaths,
		BackupLocation: res.BackupLocation,
		VersionBefore:  res.VersionBefore,
		VersionAfter:   res.VersionAfter,
		Previews:       res.Previews,
		Error:          res.Error,
	}
	for _, f := range res.FailedFiles {
		out.FailedFiles = append(out.FailedFiles, PathError{Path: f.Path, Err: f.Err})
	}
	return out
}
