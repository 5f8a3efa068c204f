package internal

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

const (
	CommitAuthor = "tsync"
	CommitEmail  = "tsync@local"
)

// RemoteState describes the outcome of a fetch. Transient, never persisted.
type RemoteState struct {
	Remote    string
	Ref       string // full reference name, e.g. refs/remotes/upstream/main
	Commit    string
	FetchedAt time.Time
}

// RepoHandle is the only abstraction over version-control primitives.
// Everything above it depends on this interface alone, which keeps the VCS
// error taxonomy contained here and makes the orchestration layers testable
// against an in-memory fake.
type RepoHandle interface {
	EnsureRemote(name, url string) error
	Fetch(ctx context.Context, remote, ref string) (RemoteState, error)
	ReadFileAtRef(path, ref string) ([]byte, error)
	DiffPaths(baseRef, targetRef string, paths []string) ([]string, error)
	StatusDirty(paths []string) ([]string, error)
	CheckoutPaths(ref string, paths []string) ([]PathError, error)
	CommitPaths(message string, paths []string) error
}

// GitRepo implements RepoHandle on a working clone via go-git, entirely
// in-process.
type GitRepo struct {
	repo     *git.Repository
	worktree *git.Worktree
	fs       billy.Filesystem
}

func OpenRepo(root string) (*GitRepo, error) {
	repo, err := git.PlainOpen(root)
	if err != nil {
		return nil, fmt.Errorf("open repository: %w", err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("get worktree: %w", err)
	}

	return &GitRepo{
		repo:     repo,
		worktree: worktree,
		fs:       worktree.Filesystem,
	}, nil
}

// EnsureRemote adds the named remote if absent; an existing remote is left
// untouched even when its URL differs.
func (g *GitRepo) EnsureRemote(name, url string) error {
	_, err := g.repo.Remote(name)
	if err == nil {
		return nil
	}
	if !errors.Is(err, git.ErrRemoteNotFound) {
		return fmt.Errorf("lookup remote %s: %w", name, err)
	}

	_, err = g.repo.CreateRemote(&gitconfig.RemoteConfig{
		Name: name,
		URLs: []string{url},
	})
	if err != nil {
		return fmt.Errorf("create remote %s: %w", name, err)
	}
	return nil
}

// Fetch updates the named remote and resolves its ref. Timeouts, unreachable
// hosts and authentication failures all look different to go-git but are
// surfaced uniformly as ErrNetwork: callers above this layer have no business
// telling them apart.
func (g *GitRepo) Fetch(ctx context.Context, remote, ref string) (RemoteState, error) {
	err := g.repo.FetchContext(ctx, &git.FetchOptions{RemoteName: remote})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return RemoteState{}, fmt.Errorf("%w: fetch %s: %v", ErrNetwork, remote, err)
	}

	name := plumbing.NewRemoteReferenceName(remote, ref)
	r, err := g.repo.Reference(name, true)
	if err != nil {
		return RemoteState{}, fmt.Errorf("%w: resolve %s: %v", ErrNetwork, name, err)
	}

	return RemoteState{
		Remote:    remote,
		Ref:       name.String(),
		Commit:    r.Hash().String(),
		FetchedAt: time.Now(),
	}, nil
}

func (g *GitRepo) ReadFileAtRef(path, ref string) ([]byte, error) {
	tree, err := g.treeAt(ref)
	if err != nil {
		return nil, err
	}

	f, err := tree.File(path)
	if errors.Is(err, object.ErrFileNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lookup %s at %s: %w", path, ref, err)
	}

	content, err := f.Contents()
	if err != nil {
		return nil, fmt.Errorf("read %s at %s: %w", path, ref, err)
	}
	return []byte(content), nil
}

// DiffPaths returns the sorted set of files under paths that differ between
// the two refs.
func (g *GitRepo) DiffPaths(baseRef, targetRef string, paths []string) ([]string, error) {
	baseTree, err := g.treeAt(baseRef)
	if err != nil {
		return nil, err
	}
	targetTree, err := g.treeAt(targetRef)
	if err != nil {
		return nil, err
	}

	changes, err := baseTree.Diff(targetTree)
	if err != nil {
		return nil, fmt.Errorf("diff trees: %w", err)
	}

	seen := make(map[string]bool)
	var changed []string
	for _, change := range changes {
		name := change.To.Name
		if name == "" {
			name = change.From.Name
		}
		if !matchesAny(name, paths) || seen[name] {
			continue
		}
		seen[name] = true
		changed = append(changed, name)
	}

	sort.Strings(changed)
	return changed, nil
}

// StatusDirty lists uncommitted modifications confined to paths. Changes
// anywhere else in the tree are ignored.
func (g *GitRepo) StatusDirty(paths []string) ([]string, error) {
	status, err := g.worktree.Status()
	if err != nil {
		return nil, fmt.Errorf("get status: %w", err)
	}

	var dirty []string
	for path, s := range status {
		if s.Worktree == git.Unmodified && s.Staging == git.Unmodified {
			continue
		}
		if matchesAny(path, paths) {
			dirty = append(dirty, path)
		}
	}

	sort.Strings(dirty)
	return dirty, nil
}

// CheckoutPaths overwrites each path's content in the working tree with the
// content at ref. Files under a path that are tracked at HEAD but gone at ref
// are removed. A failing file is recorded and the remaining files still get
// written; the caller decides what a partial result means.
func (g *GitRepo) CheckoutPaths(ref string, paths []string) ([]PathError, error) {
	targetTree, err := g.treeAt(ref)
	if err != nil {
		return nil, err
	}
	headTree, err := g.treeAt("HEAD")
	if err != nil {
		return nil, err
	}

	var failures []PathError
	for _, path := range paths {
		upstream, err := filesUnder(targetTree, path)
		if err != nil {
			failures = append(failures, PathError{Path: path, Err: err.Error()})
			continue
		}
		tracked, err := filesUnder(headTree, path)
		if err != nil {
			failures = append(failures, PathError{Path: path, Err: err.Error()})
			continue
		}

		for rel, f := range upstream {
			if err := g.writeBlob(rel, f); err != nil {
				failures = append(failures, PathError{Path: rel, Err: err.Error()})
			}
		}

		for rel := range tracked {
			if _, ok := upstream[rel]; ok {
				continue
			}
			if err := g.fs.Remove(rel); err != nil && !os.IsNotExist(err) {
				failures = append(failures, PathError{Path: rel, Err: err.Error()})
			}
		}
	}

	return failures, nil
}

// CommitPaths stages every change confined to paths and records a commit.
// A clean tree within paths is a no-op.
func (g *GitRepo) CommitPaths(message string, paths []string) error {
	dirty, err := g.StatusDirty(paths)
	if err != nil {
		return err
	}
	if len(dirty) == 0 {
		return nil
	}

	for _, rel := range dirty {
		if _, err := g.worktree.Add(rel); err != nil {
			return fmt.Errorf("stage %s: %w", rel, err)
		}
	}

	_, err = g.worktree.Commit(message, &git.CommitOptions{
		Author: &object.Signature{
			Name:  CommitAuthor,
			Email: CommitEmail,
			When:  time.Now(),
		},
	})
	if err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// helpers

func (g *GitRepo) treeAt(ref string) (*object.Tree, error) {
	resolved, err := g.repo.ResolveRevision(plumbing.Revision(ref))
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", ref, err)
	}

	commit, err := g.repo.CommitObject(*resolved)
	if err != nil {
		return nil, fmt.Errorf("get commit %s: %w", resolved, err)
	}

	tree, err := commit.Tree()
	if err != nil {
		return nil, fmt.Errorf("get tree %s: %w", resolved, err)
	}
	return tree, nil
}

func (g *GitRepo) writeBlob(rel string, f *object.File) error {
	content, err := f.Contents()
	if err != nil {
		return fmt.Errorf("read blob: %w", err)
	}

	mode, err := f.Mode.ToOSFileMode()
	if err != nil {
		mode = 0644
	}

	if err := util.WriteFile(g.fs, rel, []byte(content), mode.Perm()); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	return nil
}

// filesUnder maps rel path -> file for every blob at or below path in tree.
func filesUnder(tree *object.Tree, path string) (map[string]*object.File, error) {
	files := make(map[string]*object.File)
	err := tree.Files().ForEach(func(f *object.File) error {
		if underPath(f.Name, path) {
			files[f.Name] = f
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk tree: %w", err)
	}
	return files, nil
}

func matchesAny(rel string, paths []string) bool {
	for _, p := range paths {
		if underPath(rel, p) {
			return true
		}
	}
	return false
}
