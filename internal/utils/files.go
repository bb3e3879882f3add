package utils

import (
	"io/fs"
	"path/filepath"
	"sort"
)

// FindFiles recursively finds files under dir whose extension is one of exts.
// Results are sorted so callers see a stable order.
func FindFiles(dir string, exts ...string) ([]string, error) {
	wanted := make(map[string]bool, len(exts))
	for _, ext := range exts {
		wanted[ext] = true
	}

	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if wanted[filepath.Ext(path)] {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}
