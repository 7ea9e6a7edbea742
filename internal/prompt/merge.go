package prompt

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

var errNotUTF8 = errors.New("content is not valid UTF-8")

// MergeFiles concatenates the files at paths into one document, one section
// per readable file:
//
//	--- <basename> ---
//	<content>
//	<blank line>
//
// Sections follow the order of paths. A file that cannot be read or is not
// valid UTF-8 is logged and left out; it never aborts the merge.
func MergeFiles(logger *slog.Logger, paths []string) string {
	if logger == nil {
		logger = slog.Default()
	}

	var b strings.Builder
	for _, path := range paths {
		content, err := readText(path)
		if err != nil {
			logger.Error("error reading file", "path", path, "error", err)
			continue
		}
		fmt.Fprintf(&b, "--- %s ---\n%s\n\n", filepath.Base(path), content)
	}
	return b.String()
}

func readText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(data) {
		return "", errNotUTF8
	}
	return string(data), nil
}
