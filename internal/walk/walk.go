// Package walk discovers the files that make up a ROM.
package walk

import (
	"io/fs"
	"path/filepath"
	"strings"
)

// Files walks fsys and returns the paths of all regular files, in lexical
// order, joined to prefix with a slash. Symbolic links and other special
// files are skipped and never followed.
func Files(fsys fs.FS, prefix string) ([]string, error) {
	prefix = strings.TrimSuffix(filepath.ToSlash(prefix), "/")

	var paths []string
	err := fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if !d.Type().IsRegular() {
			return nil
		}

		if prefix != "" {
			path = prefix + "/" + path
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return paths, nil
}
