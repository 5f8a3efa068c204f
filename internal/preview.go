package internal

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// PreviewChanges renders a patch-style preview for each changed file: local
// working-tree content against the content at ref. Missing files on either
// side diff against empty, which reads naturally as a whole-file add or
// delete. Unreadable files are skipped rather than failing the preview.
func PreviewChanges(repo RepoHandle, root, ref string, paths []string) map[string]string {
	dmp := diffmatchpatch.New()
	previews := make(map[string]string, len(paths))

	for _, rel := range paths {
		upstream, err := repo.ReadFileAtRef(rel, ref)
		if err != nil && !errors.Is(err, ErrNotFound) {
			continue
		}

		local, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
		if err != nil && !os.IsNotExist(err) {
			continue
		}

		patches := dmp.PatchMake(string(local), string(upstream))
		previews[rel] = dmp.PatchToText(patches)
	}

	return previews
}
