package internal

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// BackupManifest is written next to the snapshot so a user digging through
// .sync-backup later can tell what a directory contains and why it exists.
type BackupManifest struct {
	CreatedAt     time.Time `yaml:"created_at"`
	VersionBefore string    `yaml:"version_before"`
	Files         []string  `yaml:"files"`
}

// BackupManager snapshots about-to-be-overwritten files into a
// timestamp-named directory mirroring their relative paths. Snapshots are
// never consumed programmatically afterward; they exist for manual recovery.
type BackupManager struct {
	root string
}

func NewBackupManager(root string) *BackupManager {
	return &BackupManager{root: root}
}

// Snapshot copies the current content of every path in paths. Paths with no
// local pre-image (files new upstream) are skipped. Any copy failure removes
// the partial snapshot and reports ErrBackup: a half backup presented as
// complete would be worse than none, and the caller must abort the sync.
func (b *BackupManager) Snapshot(paths []string, versionBefore string) (string, error) {
	stamp := time.Now().UTC().Format("2006-01-02T15-04-05.000000000Z")
	dest := filepath.Join(b.root, BackupDirName, stamp)

	manifest := BackupManifest{
		CreatedAt:     time.Now().UTC(),
		VersionBefore: versionBefore,
	}

	for _, rel := range paths {
		src := filepath.Join(b.root, filepath.FromSlash(rel))
		info, err := os.Stat(src)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return b.fail(dest, rel, err)
		}

		if info.IsDir() {
			err = filepath.Walk(src, func(p string, fi os.FileInfo, err error) error {
				if err != nil || fi.IsDir() {
					return err
				}
				sub, relErr := filepath.Rel(b.root, p)
				if relErr != nil {
					return relErr
				}
				sub = filepath.ToSlash(sub)
				if copyErr := copyFile(p, filepath.Join(dest, filepath.FromSlash(sub)), fi.Mode()); copyErr != nil {
					return copyErr
				}
				manifest.Files = append(manifest.Files, sub)
				return nil
			})
			if err != nil {
				return b.fail(dest, rel, err)
			}
			continue
		}

		if err := copyFile(src, filepath.Join(dest, filepath.FromSlash(rel)), info.Mode()); err != nil {
			return b.fail(dest, rel, err)
		}
		manifest.Files = append(manifest.Files, rel)
	}

	if len(manifest.Files) == 0 {
		// Nothing had a pre-image; no snapshot directory to leave behind.
		return "", nil
	}

	data, err := yaml.Marshal(&manifest)
	if err != nil {
		return b.fail(dest, "manifest.yaml", err)
	}
	if err := os.WriteFile(filepath.Join(dest, "manifest.yaml"), data, 0644); err != nil {
		return b.fail(dest, "manifest.yaml", err)
	}

	return dest, nil
}

func (b *BackupManager) fail(dest, rel string, err error) (string, error) {
	os.RemoveAll(dest)
	return "", fmt.Errorf("%w: %s: %v", ErrBackup, rel, err)
}

func copyFile(src, dest string, mode os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer in.Close()

	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode.Perm())
	if err != nil {
		return fmt.Errorf("create copy: %w", err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copy content: %w", err)
	}
	return out.Close()
}
