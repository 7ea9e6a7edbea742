// Package workspace manages per-run working directories and writes the
// generated README into them.
package workspace

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// DefaultReadmeName is the file WriteReadme creates when no name is set.
const DefaultReadmeName = "README.md"

// Manager creates working directories under BaseDir.
type Manager struct {
	BaseDir    string
	ReadmeName string
	// Keep leaves working directories in place after Remove is called.
	Keep   bool
	Logger *slog.Logger
}

func (m *Manager) logger() *slog.Logger {
	if m.Logger == nil {
		return slog.Default()
	}
	return m.Logger
}

// Create makes a fresh, uniquely named directory under BaseDir, creating
// BaseDir first if needed. The returned path is absolute.
func (m *Manager) Create() (string, error) {
	base, err := filepath.Abs(m.BaseDir)
	if err != nil {
		return "", fmt.Errorf("workspace: resolve base dir: %w", err)
	}
	if err := os.MkdirAll(base, 0o755); err != nil {
		return "", fmt.Errorf("workspace: create base dir: %w", err)
	}
	dir, err := os.MkdirTemp(base, "run-")
	if err != nil {
		return "", fmt.Errorf("workspace: create: %w", err)
	}
	m.logger().Debug("created working directory", "dir", dir)
	return dir, nil
}

// Remove deletes dir unless Keep is set.
func (m *Manager) Remove(dir string) error {
	if m.Keep || dir == "" {
		return nil
	}
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("workspace: remove %s: %w", dir, err)
	}
	return nil
}

// WriteReadme writes content to the README file in dir, replacing any
// existing one, and returns the file's path.
func (m *Manager) WriteReadme(dir, content string) (string, error) {
	name := m.ReadmeName
	if name == "" {
		name = DefaultReadmeName
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("workspace: write %s: %w", name, err)
	}
	m.logger().Info("README file created", "path", path)
	return path, nil
}
