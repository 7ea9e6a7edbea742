// Package git fetches repositories by shelling out to the git binary.
package git

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/readmegen/readmegen/internal/config"
)

// ErrUnsupportedURL is returned for repository locators that are neither
// https URLs, file URLs nor local paths.
var ErrUnsupportedURL = errors.New("git: unsupported repository URL")

// CloneError reports a failed git clone. Output is git's combined output with
// any credential removed.
type CloneError struct {
	URL    string
	Output string
	Err    error
}

func (e *CloneError) Error() string {
	msg := fmt.Sprintf("git: clone %s: %v", e.URL, e.Err)
	if e.Output != "" {
		msg += ": " + e.Output
	}
	return msg
}

func (e *CloneError) Unwrap() error { return e.Err }

// Cloner clones repositories into local directories.
type Cloner struct {
	// Token authenticates https clones. It is embedded in the clone URL.
	Token string
	// Depth limits history when positive; zero clones everything.
	Depth int
}

// Clone clones repoURL into dir, which must not exist or be empty.
func (c Cloner) Clone(ctx context.Context, repoURL, dir string) error {
	authURL, err := AuthURL(repoURL, c.Token)
	if err != nil {
		return err
	}

	args := []string{"clone", "--quiet"}
	if c.Depth > 0 {
		args = append(args, "--depth", strconv.Itoa(c.Depth))
	}
	args = append(args, "--", authURL, dir)

	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0")
	out, err := cmd.CombinedOutput()
	if err != nil {
		return &CloneError{
			URL:    repoURL,
			Output: redact(strings.TrimSpace(string(out)), c.Token),
			Err:    err,
		}
	}
	return nil
}

// AuthURL returns the locator git should clone from. https URLs need a token
// and come back as https://<token>@host/path. file:// URLs and existing local
// paths are returned unchanged.
func AuthURL(repoURL, token string) (string, error) {
	if isLocal(repoURL) {
		return repoURL, nil
	}

	u, err := url.Parse(repoURL)
	if err != nil || u.Scheme != "https" || u.Host == "" {
		return "", fmt.Errorf("%w: %q (expected https://...)", ErrUnsupportedURL, repoURL)
	}
	if token == "" {
		return "", fmt.Errorf("%w: GitHub token required to clone %s", config.ErrMissingCredential, repoURL)
	}
	u.User = url.User(token)
	return u.String(), nil
}

func isLocal(repoURL string) bool {
	if strings.HasPrefix(repoURL, "file://") {
		return true
	}
	if strings.Contains(repoURL, "://") {
		return false
	}
	_, err := os.Stat(repoURL)
	return err == nil
}

func redact(s, token string) string {
	if token == "" {
		return s
	}
	return strings.ReplaceAll(s, token, "***")
}

// Revision returns the commit checked out in dir, or "" if it cannot be read.
func Revision(dir string) string {
	return gitOutput(dir, "rev-parse", "HEAD")
}

// gitOutput runs a git command and returns trimmed stdout.
// Returns "" on any error.
func gitOutput(dir string, args ...string) string {
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}
