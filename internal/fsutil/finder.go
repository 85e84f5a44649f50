// Package fsutil provides file system utility functions.
package fsutil

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FindFilesByExtension recursively searches the given root path for all files ending
// with the specified extension. It returns a slice of their full paths.
func FindFilesByExtension(rootPath string, extension string) ([]string, error) {
	return FindFiles([]string{rootPath}, extension)
}

// FindFiles collects the files under paths whose names end with one of the
// extensions. A path may name a directory, searched recursively, or a single
// file, which is kept only if its extension matches. Paths that do not exist
// are skipped. Each file is listed once, in walk order.
func FindFiles(paths []string, extensions ...string) ([]string, error) {
	if len(extensions) == 0 {
		panic("at least one extension is required")
	}

	var files []string
	seen := make(map[string]struct{})
	add := func(path string) {
		if _, wasSeen := seen[path]; wasSeen || !HasExtension(path, extensions...) {
			return
		}
		seen[path] = struct{}{}
		files = append(files, path)
	}

	for _, root := range paths {
		info, err := os.Stat(root)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("error accessing path %s: %w", root, err)
		}
		if !info.IsDir() {
			add(root)
			continue
		}
		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return files, nil
}

// HasExtension reports whether the base name of path ends with one of the
// extensions. Multi-part extensions such as ".ngraph.hcl" are matched whole.
func HasExtension(path string, extensions ...string) bool {
	base := filepath.Base(path)
	for _, ext := range extensions {
		if strings.HasSuffix(base, ext) {
			return true
		}
	}
	return false
}
