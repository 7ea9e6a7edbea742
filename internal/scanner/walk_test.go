package scanner

import (
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"testing"
)

// writeTree creates files (and their parent dirs) under root.
func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func abs(root string, rels ...string) []string {
	out := make([]string, len(rels))
	for i, r := range rels {
		out[i] = filepath.Join(root, r)
	}
	sort.Strings(out)
	return out
}

func TestListFiles_EmptyDir(t *testing.T) {
	got := ListFiles(t.TempDir(), nil)
	if len(got) != 0 {
		t.Errorf("expected no files, got %v", got)
	}
}

func TestListFiles_NonexistentDir(t *testing.T) {
	got := ListFiles(filepath.Join(t.TempDir(), "does_not_exist"), nil)
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", got)
	}
}

func TestListFiles_Nested(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"file1.txt":            "1",
		"dir1/file2.py":        "2",
		"dir1/subdir/file3.md": "3",
		"dir2/file4.js":        "4",
	})

	got := ListFiles(root, nil)
	want := abs(root, "file1.txt", "dir1/file2.py", "dir1/subdir/file3.md", "dir2/file4.js")
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v\nwant %v", got, want)
	}
}

func TestListFiles_PrunesGitAndGitignore(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"file1.txt":               "1",
		".gitignore":              "*.log",
		".git/HEAD":               "ref: refs/heads/main",
		".git/objects/pack/p.idx": "idx",
		"dir1/file2.py":           "2",
		"dir1/.gitignore":         "more",
	})

	got := ListFiles(root, nil)
	want := abs(root, "file1.txt", "dir1/file2.py")
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v\nwant %v", got, want)
	}
}

func TestListFiles_HonoursIgnoreMatcher(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"main.go":       "package main",
		"debug.log":     "noise",
		"build/out.bin": "bin",
	})

	got := ListFiles(root, NewIgnoreMatcherFromLines("*.log", "build/"))
	want := abs(root, "main.go")
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v\nwant %v", got, want)
	}
}

func TestWalkFiles_NeverReportsDirectories(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"a/b/c.txt": "c"})
	if err := os.Symlink(filepath.Join(root, "a"), filepath.Join(root, "link-to-dir")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	var got []string
	WalkFiles(root, WalkOptions{}, func(e FileEntry) {
		got = append(got, e.Path)
	})
	if len(got) != 1 || got[0] != filepath.Join(root, "a", "b", "c.txt") {
		t.Errorf("expected only the regular file, got %v", got)
	}
}

func TestWalkFiles_WithoutPruneKeepsGitFiles(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		".gitignore": "x",
		".git/HEAD":  "ref",
	})

	count := 0
	WalkFiles(root, WalkOptions{}, func(FileEntry) { count++ })
	if count != 2 {
		t.Errorf("expected 2 files without pruning, got %d", count)
	}
}

func TestBaseNames(t *testing.T) {
	tests := []struct {
		name  string
		paths []string
		want  []string
	}{
		{"basic", []string{"/home/u/docs/file1.txt", "/home/u/img/image.png"}, []string{"file1.txt", "image.png"}},
		{"empty", []string{}, []string{}},
		{"no extension", []string{"/home/u/README", "/bin/executable"}, []string{"README", "executable"}},
		{"hidden", []string{"/home/u/.config", "/home/u/.ssh/id_rsa"}, []string{".config", "id_rsa"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BaseNames(tt.paths)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewFileEntry(t *testing.T) {
	e := NewFileEntry("/repo/src/App.java")
	if e.BaseName != "App.java" || e.Path != "/repo/src/App.java" {
		t.Errorf("unexpected entry: %+v", e)
	}
}

func TestWalkFiles_SymlinkOutsideRootSkipped(t *testing.T) {
	outside := t.TempDir()
	secret := filepath.Join(outside, "id_rsa")
	if err := os.WriteFile(secret, []byte("PRIVATE KEY"), 0o600); err != nil {
		t.Fatal(err)
	}

	root := t.TempDir()
	writeTree(t, root, map[string]string{"pom.xml": "<project/>", "src/Real.java": "class Real {}"})
	if err := os.Symlink(secret, filepath.Join(root, "App.java")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}
	if err := os.Symlink(filepath.Join("..", "pom.xml"), filepath.Join(root, "src", "pom-link.xml")); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(filepath.Join(root, "missing"), filepath.Join(root, "dangling.java")); err != nil {
		t.Fatal(err)
	}

	got := ListFiles(root, nil)
	want := []string{
		filepath.Join(root, "pom.xml"),
		filepath.Join(root, "src", "Real.java"),
		filepath.Join(root, "src", "pom-link.xml"),
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v\nwant %v", got, want)
	}
}
