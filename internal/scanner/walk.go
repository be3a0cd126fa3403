package scanner

import (
	"io/fs"
	"path/filepath"
	"strings"
)

// defaultIgnoreDirs are directory names never scanned or watched.
var defaultIgnoreDirs = []string{".git", ".obsidian", ".trash", "node_modules"}

// listMarkdownFiles walks the vault and returns vault-relative paths of all
// markdown files, skipping ignored directories. Unreadable entries are
// skipped rather than aborting the walk.
func (s *MarkdownSource) listMarkdownFiles() ([]string, error) {
	var paths []string
	err := filepath.WalkDir(s.vaultPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil //nolint:nilerr
		}
		if d.IsDir() {
			if s.ignoreDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(path, ".md") {
			return nil
		}
		rel, err := filepath.Rel(s.vaultPath, path)
		if err != nil {
			return nil //nolint:nilerr
		}
		paths = append(paths, filepath.ToSlash(rel))
		return nil
	})
	return paths, err
}

// shouldIgnore reports whether any path component is an ignored directory.
func (s *MarkdownSource) shouldIgnore(relPath string) bool {
	for _, part := range strings.Split(filepath.ToSlash(relPath), "/") {
		if s.ignoreDirs[part] {
			return true
		}
	}
	return false
}
