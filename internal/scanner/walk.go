// Package scanner walks repository trees and decides which files match the
// static essential-file rules.
package scanner

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// FileEntry is a discovered file: its absolute path and the last path segment.
type FileEntry struct {
	Path     string
	BaseName string
}

// NewFileEntry builds a FileEntry for path.
func NewFileEntry(path string) FileEntry {
	return FileEntry{Path: path, BaseName: filepath.Base(path)}
}

// WalkOptions controls which entries WalkFiles reports.
type WalkOptions struct {
	// PruneGit skips descent into directories named .git and drops files
	// named .gitignore.
	PruneGit bool
	// Ignore, when non-nil, drops files whose root-relative path it matches.
	Ignore *IgnoreMatcher
}

// WalkFiles calls fn for every file under root. Directories are never
// reported, including symlinks that resolve to directories. Symlinks are
// reported only when they resolve to a regular file inside root. A missing
// or unreadable root is not an error: fn is simply never called.
func WalkFiles(root string, opts WalkOptions, fn func(FileEntry)) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return
	}
	realRoot, err := filepath.EvalSymlinks(absRoot)
	if err != nil {
		return
	}

	_ = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // Skip unreadable entries.
		}

		if d.IsDir() {
			if opts.PruneGit && path != absRoot && d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}

		if d.Type()&fs.ModeSymlink != 0 && !linkStaysInside(realRoot, path) {
			return nil
		}

		if opts.PruneGit && d.Name() == ".gitignore" {
			return nil
		}

		if opts.Ignore != nil {
			if rel, relErr := filepath.Rel(absRoot, path); relErr == nil && opts.Ignore.Match(rel) {
				return nil
			}
		}

		fn(NewFileEntry(path))
		return nil
	})
}

// linkStaysInside reports whether the symlink at path resolves to a regular
// file under realRoot.
func linkStaysInside(realRoot, path string) bool {
	target, err := filepath.EvalSymlinks(path)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(realRoot, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return false
	}
	info, err := os.Stat(target)
	return err == nil && info.Mode().IsRegular()
}

// ListFiles returns every file path under root, sorted, with .git pruned and
// .gitignore files dropped.
func ListFiles(root string, ignore *IgnoreMatcher) []string {
	paths := []string{}
	WalkFiles(root, WalkOptions{PruneGit: true, Ignore: ignore}, func(e FileEntry) {
		paths = append(paths, e.Path)
	})
	sort.Strings(paths)
	return paths
}

// BaseNames returns the base name of each path, in order.
func BaseNames(paths []string) []string {
	names := make([]string, len(paths))
	for i, p := range paths {
		names[i] = filepath.Base(p)
	}
	return names
}
