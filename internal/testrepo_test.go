package internal

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// Test fixtures track "master", go-git's init default.
const testRef = "master"

func writeRepoFile(t *testing.T, dir, rel, content string) {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir %s: %v", rel, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", rel, err)
	}
}

// commitUpstream writes files, removes the named paths, and commits, all in
// the repository at dir.
func commitUpstream(t *testing.T, dir string, files map[string]string, remove []string, message string) {
	t.Helper()

	repo, err := git.PlainOpen(dir)
	if err != nil {
		t.Fatalf("open %s: %v", dir, err)
	}
	w, err := repo.Worktree()
	if err != nil {
		t.Fatalf("worktree: %v", err)
	}

	for _, rel := range remove {
		if _, err := w.Remove(rel); err != nil {
			t.Fatalf("remove %s: %v", rel, err)
		}
	}
	for rel, content := range files {
		writeRepoFile(t, dir, rel, content)
		if _, err := w.Add(rel); err != nil {
			t.Fatalf("stage %s: %v", rel, err)
		}
	}

	_, err = w.Commit(message, &git.CommitOptions{
		Author: &object.Signature{
			Name:  "template",
			Email: "template@local",
			When:  time.Now(),
		},
	})
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
}

// setupTemplatePair builds an upstream template repo at version 0.80.0 and a
// local clone of it, and seeds the clone with untracked user content under
// the protected paths.
func setupTemplatePair(t *testing.T) (local, upstream string) {
	t.Helper()

	upstream = t.TempDir()
	if _, err := git.PlainInit(upstream, false); err != nil {
		t.Fatalf("init upstream: %v", err)
	}
	commitUpstream(t, upstream, map[string]string{
		"system/VERSION":         "0.80.0\n",
		"system/prompts/base.md": "You are the system.\n",
		"system/rules/style.md":  "Be terse.\n",
		"index.md":               "# Index\n",
		"bootstrap.md":           "# Bootstrap\n",
	}, nil, "template 0.80.0")

	local = t.TempDir()
	if _, err := git.PlainClone(local, false, &git.CloneOptions{URL: upstream}); err != nil {
		t.Fatalf("clone: %v", err)
	}

	writeRepoFile(t, local, "memory/notes.md", "user notes\n")
	writeRepoFile(t, local, "projects/alpha/plan.md", "user plan\n")
	writeRepoFile(t, local, "skills/review.md", "user skill\n")
	writeRepoFile(t, local, "secrets/api.key", "hunter2\n")

	return local, upstream
}

// bumpUpstream advances the template to 0.82.0 with a typical set of edits:
// one modified file, one new file, one deleted file.
func bumpUpstream(t *testing.T, upstream string) {
	t.Helper()
	commitUpstream(t, upstream, map[string]string{
		"system/VERSION":         "0.82.0\n",
		"system/prompts/base.md": "You are the improved system.\n",
		"system/prompts/new.md":  "New guidance.\n",
	}, []string{"system/rules/style.md"}, "template 0.82.0")
}

func testConfig(upstream string) *Config {
	cfg := DefaultConfig()
	cfg.Remote.URL = upstream
	cfg.Remote.Ref = testRef
	return cfg
}

func openHandle(t *testing.T, local string) *GitRepo {
	t.Helper()
	g, err := OpenRepo(local)
	if err != nil {
		t.Fatalf("open handle: %v", err)
	}
	return g
}
