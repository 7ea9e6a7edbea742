package scanner

import (
	"os"
	"path/filepath"
)

// AutoProfile asks for the profile to be detected from the repository.
const AutoProfile = "auto"

// DetectProfile inspects the files at root and returns the name of the
// built-in profile that fits best, or "" when nothing is recognised.
func DetectProfile(root string) string {
	has := func(names ...string) bool {
		for _, n := range names {
			if _, err := os.Stat(filepath.Join(root, n)); err == nil {
				return true
			}
		}
		return false
	}

	switch {
	case has("pom.xml", "build.gradle", "build.gradle.kts"):
		return "java-spring"
	case has("go.mod"):
		return "go"
	case has("package.json"):
		return "node"
	case has("pyproject.toml", "requirements.txt", "setup.py"):
		return "python"
	}
	return ""
}
