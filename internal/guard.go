package internal

// GuardReport is the dirty-tree guard verdict.
type GuardReport struct {
	Dirty          bool
	OffendingPaths []string
}

// DirtyTreeGuard detects uncommitted edits inside the sync paths. Edits
// anywhere else are user territory and deliberately invisible here: sync
// never touches those locations, so there is nothing to protect them from.
type DirtyTreeGuard struct {
	repo RepoHandle
}

func NewDirtyTreeGuard(repo RepoHandle) *DirtyTreeGuard {
	return &DirtyTreeGuard{repo: repo}
}

func (g *DirtyTreeGuard) Check() (GuardReport, error) {
	dirty, err := g.repo.StatusDirty(SyncPaths)
	if err != nil {
		return GuardReport{}, err
	}
	return GuardReport{
		Dirty:          len(dirty) > 0,
		OffendingPaths: dirty,
	}, nil
}
