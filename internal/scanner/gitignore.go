package scanner

import (
	"os"
	"path/filepath"

	gitignore "github.com/sabhiram/go-gitignore"
)

// IgnoreMatcher wraps a gitignore pattern matcher.
type IgnoreMatcher struct {
	gi *gitignore.GitIgnore
}

// NewIgnoreMatcher loads .gitignore from the repository root.
// If no .gitignore file is found, the matcher accepts everything.
func NewIgnoreMatcher(root string) *IgnoreMatcher {
	path := filepath.Join(root, ".gitignore")
	if _, err := os.Stat(path); err != nil {
		return &IgnoreMatcher{}
	}
	gi, err := gitignore.CompileIgnoreFile(path)
	if err != nil {
		return &IgnoreMatcher{}
	}
	return &IgnoreMatcher{gi: gi}
}

// NewIgnoreMatcherFromLines compiles patterns given inline.
func NewIgnoreMatcherFromLines(lines ...string) *IgnoreMatcher {
	return &IgnoreMatcher{gi: gitignore.CompileIgnoreLines(lines...)}
}

// Match returns true if the given root-relative path should be ignored.
func (m *IgnoreMatcher) Match(relPath string) bool {
	if m == nil || m.gi == nil {
		return false
	}
	return m.gi.MatchesPath(filepath.ToSlash(relPath))
}
