package internal

import (
	"context"
	"log/slog"
	"time"
)

// Comparator answers "is there a newer template upstream" without ever
// touching the working tree.
type Comparator struct {
	repo   RepoHandle
	store  *VersionStore
	cfg    *Config
	logger *slog.Logger
}

func NewComparator(repo RepoHandle, store *VersionStore, cfg *Config, logger *slog.Logger) *Comparator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Comparator{repo: repo, store: store, cfg: cfg, logger: logger}
}

// CheckUpdate compares the local version against the upstream template.
// It never returns a Go error: connectivity problems and unreadable versions
// degrade to updateAvailable=false with a structured error code, because this
// may run from a non-interactive startup path that must not abort.
func (c *Comparator) CheckUpdate(ctx context.Context) *CheckResult {
	res := &CheckResult{ChangedPaths: []string{}}

	local := c.store.Read()
	res.LocalVersion = local.String()

	if err := c.repo.EnsureRemote(c.cfg.Remote.Name, c.cfg.Remote.URL); err != nil {
		c.logger.Warn("ensure remote failed", "remote", c.cfg.Remote.Name, "error", err)
		res.Error = ErrCodeNetworkUnreachable
		return res
	}

	state, err := c.repo.Fetch(ctx, c.cfg.Remote.Name, c.cfg.Remote.Ref)
	if err != nil {
		c.logger.Warn("fetch failed", "remote", c.cfg.Remote.Name, "error", err)
		res.Error = ErrCodeNetworkUnreachable
		return res
	}

	upstream := Unknown
	if data, err := c.repo.ReadFileAtRef(VersionFile, state.Ref); err == nil {
		upstream = ParseVersion(string(data))
	}

	if !local.Known() || !upstream.Known() {
		res.Error = ErrCodeVersionUnreadable
		return res
	}
	res.UpstreamVersion = upstream.String()

	if !local.Less(upstream) {
		return res
	}
	res.UpdateAvailable = true

	changed, err := c.repo.DiffPaths("HEAD", state.Ref, SyncPaths)
	if err != nil {
		c.logger.Warn("diff failed", "error", err)
		res.Error = ErrCodeDiffFailed
		return res
	}
	res.ChangedPaths = changed

	// A version bump with no tracked differences means the template repo is
	// in an odd state. Reported, not fatal.
	if len(changed) == 0 {
		res.Inconsistent = true
	}

	return res
}

// StartupCheck wraps CheckUpdate with a hard timeout and swallows every
// failure mode, including panics. It is invoked as a best-effort side
// activity during a broader startup sequence that must always complete.
func (c *Comparator) StartupCheck(ctx context.Context, timeout time.Duration) StartupResult {
	if timeout <= 0 {
		timeout = c.cfg.StartupTimeout()
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan bool, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				c.logger.Warn("startup check panicked", "panic", r)
				done <- false
			}
		}()
		res := c.CheckUpdate(ctx)
		done <- res.Error == "" && res.UpdateAvailable
	}()

	select {
	case <-ctx.Done():
		return StartupResult{}
	case available := <-done:
		return StartupResult{UpdateAvailable: available}
	}
}
