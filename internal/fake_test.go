package internal

import (
	"context"
	"time"
)

// fakeRepo is an in-memory RepoHandle for deterministic tests of the layers
// above the VCS boundary.
type fakeRepo struct {
	remotes map[string]string

	fetchErr   error
	fetchDelay time.Duration
	commit     string

	// files maps ref -> rel path -> content.
	files map[string]map[string]string

	diff    []string
	diffErr error

	dirty     []string
	statusErr error

	checkoutFailures []PathError
	checkoutErr      error
	checkoutCalls    [][]string

	commitMessages []string

	ensurePanic bool
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		remotes: make(map[string]string),
		commit:  "f0e1d2c3",
		files:   make(map[string]map[string]string),
	}
}

const fakeRemoteRef = "refs/remotes/upstream/main"

func (f *fakeRepo) setFile(ref, rel, content string) {
	if f.files[ref] == nil {
		f.files[ref] = make(map[string]string)
	}
	f.files[ref][rel] = content
}

func (f *fakeRepo) EnsureRemote(name, url string) error {
	if f.ensurePanic {
		panic("remote config corrupted")
	}
	if _, ok := f.remotes[name]; !ok {
		f.remotes[name] = url
	}
	return nil
}

func (f *fakeRepo) Fetch(ctx context.Context, remote, ref string) (RemoteState, error) {
	if f.fetchDelay > 0 {
		select {
		case <-ctx.Done():
			return RemoteState{}, ctx.Err()
		case <-time.After(f.fetchDelay):
		}
	}
	if f.fetchErr != nil {
		return RemoteState{}, f.fetchErr
	}
	return RemoteState{
		Remote:    remote,
		Ref:       fakeRemoteRef,
		Commit:    f.commit,
		FetchedAt: time.Now(),
	}, nil
}

func (f *fakeRepo) ReadFileAtRef(path, ref string) ([]byte, error) {
	if content, ok := f.files[ref][path]; ok {
		return []byte(content), nil
	}
	return nil, ErrNotFound
}

func (f *fakeRepo) DiffPaths(baseRef, targetRef string, paths []string) ([]string, error) {
	return f.diff, f.diffErr
}

func (f *fakeRepo) StatusDirty(paths []string) ([]string, error) {
	return f.dirty, f.statusErr
}

func (f *fakeRepo) CheckoutPaths(ref string, paths []string) ([]PathError, error) {
	f.checkoutCalls = append(f.checkoutCalls, paths)
	return f.checkoutFailures, f.checkoutErr
}

func (f *fakeRepo) CommitPaths(message string, paths []string) error {
	f.commitMessages = append(f.commitMessages, message)
	return nil
}
