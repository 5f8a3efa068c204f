package internal

import (
	"context"
	"testing"
	"time"
)

func setupComparator(t *testing.T, repo RepoHandle, localVersion string) *Comparator {
	t.Helper()
	root := t.TempDir()
	store := NewVersionStore(root)
	if localVersion != "" {
		if err := store.Write(ParseVersion(localVersion)); err != nil {
			t.Fatalf("seed version: %v", err)
		}
	}
	return NewComparator(repo, store, DefaultConfig(), nil)
}

func TestCheckUpdateAvailable(t *testing.T) {
	repo := newFakeRepo()
	repo.setFile(fakeRemoteRef, VersionFile, "0.82.0\n")
	repo.diff = []string{"system/VERSION", "system/prompts/base.md"}

	res := setupComparator(t, repo, "0.80.0").CheckUpdate(context.Background())

	if !res.UpdateAvailable {
		t.Fatal("expected update available")
	}
	if res.LocalVersion != "0.80.0" || res.UpstreamVersion != "0.82.0" {
		t.Errorf("versions = %q -> %q", res.LocalVersion, res.UpstreamVersion)
	}
	if len(res.ChangedPaths) != 2 {
		t.Errorf("changed = %v", res.ChangedPaths)
	}
	if res.Error != "" || res.Inconsistent {
		t.Errorf("unexpected error=%q inconsistent=%v", res.Error, res.Inconsistent)
	}
}

func TestCheckUpdateUpToDate(t *testing.T) {
	repo := newFakeRepo()
	repo.setFile(fakeRemoteRef, VersionFile, "0.80.0\n")

	res := setupComparator(t, repo, "0.80.0").CheckUpdate(context.Background())

	if res.UpdateAvailable || res.Error != "" {
		t.Errorf("result = %+v", res)
	}
}

func TestCheckUpdateLocalNewer(t *testing.T) {
	repo := newFakeRepo()
	repo.setFile(fakeRemoteRef, VersionFile, "0.79.0\n")

	res := setupComparator(t, repo, "0.80.0").CheckUpdate(context.Background())
	if res.UpdateAvailable {
		t.Error("downgrade offered as update")
	}
}

func TestCheckUpdateNetworkUnreachable(t *testing.T) {
	repo := newFakeRepo()
	repo.fetchErr = ErrNetwork

	res := setupComparator(t, repo, "0.80.0").CheckUpdate(context.Background())

	if res.UpdateAvailable {
		t.Error("update reported despite unreachable remote")
	}
	if res.Error != ErrCodeNetworkUnreachable {
		t.Errorf("error = %q", res.Error)
	}
}

func TestCheckUpdateVersionUnreadable(t *testing.T) {
	// Upstream has no readable version file.
	repo := newFakeRepo()
	res := setupComparator(t, repo, "0.80.0").CheckUpdate(context.Background())
	if res.Error != ErrCodeVersionUnreadable || res.UpdateAvailable {
		t.Errorf("result = %+v", res)
	}

	// Local version missing.
	repo = newFakeRepo()
	repo.setFile(fakeRemoteRef, VersionFile, "0.82.0\n")
	res = setupComparator(t, repo, "").CheckUpdate(context.Background())
	if res.Error != ErrCodeVersionUnreadable || res.UpdateAvailable {
		t.Errorf("result = %+v", res)
	}
}

func TestCheckUpdateInconsistentBump(t *testing.T) {
	// Version bumped upstream but no tracked path differs.
	repo := newFakeRepo()
	repo.setFile(fakeRemoteRef, VersionFile, "0.82.0\n")

	res := setupComparator(t, repo, "0.80.0").CheckUpdate(context.Background())

	if !res.UpdateAvailable {
		t.Fatal("expected update available")
	}
	if !res.Inconsistent {
		t.Error("expected inconsistent flag")
	}
	if res.Error != "" {
		t.Errorf("error = %q", res.Error)
	}
}

func TestStartupCheckBoundedBySlowFetch(t *testing.T) {
	repo := newFakeRepo()
	repo.fetchDelay = 5 * time.Second
	c := setupComparator(t, repo, "0.80.0")

	start := time.Now()
	res := c.StartupCheck(context.Background(), 50*time.Millisecond)
	elapsed := time.Since(start)

	if res.UpdateAvailable {
		t.Error("update reported despite timeout")
	}
	if elapsed > time.Second {
		t.Errorf("startup check took %v", elapsed)
	}
}

func TestStartupCheckSwallowsPanic(t *testing.T) {
	repo := newFakeRepo()
	repo.ensurePanic = true
	c := setupComparator(t, repo, "0.80.0")

	res := c.StartupCheck(context.Background(), time.Second)
	if res.UpdateAvailable {
		t.Error("update reported despite panic")
	}
}

func TestStartupCheckReportsUpdate(t *testing.T) {
	repo := newFakeRepo()
	repo.setFile(fakeRemoteRef, VersionFile, "0.82.0\n")
	repo.diff = []string{"system/VERSION"}
	c := setupComparator(t, repo, "0.80.0")

	res := c.StartupCheck(context.Background(), time.Second)
	if !res.UpdateAvailable {
		t.Error("expected update available")
	}
}
