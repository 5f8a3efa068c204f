package internal

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// VersionFile is the repo-relative location of the template version string.
// It lives inside the synced tree so upstream bumps travel with the content.
const VersionFile = "system/VERSION"

// Version is a semantic version triple. The zero value is Unknown and
// represents a missing or malformed version string.
type Version struct {
	v *semver.Version
}

// Unknown is returned wherever a version cannot be read or parsed.
var Unknown = Version{}

func ParseVersion(s string) Version {
	v, err := semver.NewVersion(strings.TrimSpace(s))
	if err != nil {
		return Unknown
	}
	return Version{v: v}
}

func (v Version) Known() bool {
	return v.v != nil
}

func (v Version) String() string {
	if v.v == nil {
		return "unknown"
	}
	return v.v.String()
}

// Less reports whether v orders strictly before o. Comparison is
// lexicographic over (major, minor, patch); Unknown never orders before
// anything, callers are expected to check Known first.
func (v Version) Less(o Version) bool {
	if v.v == nil || o.v == nil {
		return false
	}
	return v.v.Compare(o.v) < 0
}

func (v Version) Equal(o Version) bool {
	if v.v == nil || o.v == nil {
		return v.v == nil && o.v == nil
	}
	return v.v.Compare(o.v) == 0
}

// VersionStore reads and writes the local VERSION file.
type VersionStore struct {
	root string
}

func NewVersionStore(root string) *VersionStore {
	return &VersionStore{root: root}
}

func (s *VersionStore) Path() string {
	return filepath.Join(s.root, filepath.FromSlash(VersionFile))
}

// Read returns the local version, or Unknown if the file is missing or
// malformed. It never fails.
func (s *VersionStore) Read() Version {
	data, err := os.ReadFile(s.Path())
	if err != nil {
		return Unknown
	}
	return ParseVersion(string(data))
}

// Write persists the version atomically: the content goes to a temp file in
// the same directory first, then replaces the target with a rename, so a
// crash mid-write cannot leave a truncated version string behind.
func (s *VersionStore) Write(v Version) error {
	if !v.Known() {
		return fmt.Errorf("refusing to write unknown version")
	}

	path := s.Path()
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create version directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".version-*")
	if err != nil {
		return fmt.Errorf("create temp version file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.WriteString(v.String() + "\n"); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write version: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close version file: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace version file: %w", err)
	}

	return nil
}
