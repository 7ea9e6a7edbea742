package scanner

import (
	"path/filepath"
	"strings"
)

// Rules is the static essential-file rule set for a known project type.
type Rules struct {
	// Kind names the project type in prompts, e.g. "Java".
	Kind        string   `yaml:"kind"`
	BuildFiles  []string `yaml:"build_files"`
	ConfigFiles []string `yaml:"config_files"`
	// ResourceDir is matched as a substring of the slash-separated directory
	// containing a config file, e.g. "src/main/resources".
	ResourceDir    string   `yaml:"resource_dir"`
	DockerFiles    []string `yaml:"docker_files"`
	ExtraFiles     []string `yaml:"extra_files"`
	SourceSuffixes []string `yaml:"source_suffixes"`
	// TestSuffixes exclude source files; empty means tests are kept.
	TestSuffixes []string `yaml:"test_suffixes"`
}

// Essential reports whether the file at path satisfies any rule.
func (r Rules) Essential(path string) bool {
	name := filepath.Base(path)

	switch {
	case in(name, r.BuildFiles):
		return true
	case in(name, r.ConfigFiles) && r.inResourceDir(path):
		return true
	case in(name, r.DockerFiles):
		return true
	case in(name, r.ExtraFiles):
		return true
	}
	return r.isSource(name)
}

func (r Rules) inResourceDir(path string) bool {
	if r.ResourceDir == "" {
		return false
	}
	dir := filepath.ToSlash(filepath.Dir(path))
	return strings.Contains(dir, filepath.ToSlash(r.ResourceDir))
}

func (r Rules) isSource(name string) bool {
	if !hasAnySuffix(name, r.SourceSuffixes) {
		return false
	}
	return !hasAnySuffix(name, r.TestSuffixes)
}

// Override returns r with every non-empty field of o replacing its own.
func (r Rules) Override(o Rules) Rules {
	if len(o.BuildFiles) > 0 {
		r.BuildFiles = o.BuildFiles
	}
	if len(o.ConfigFiles) > 0 {
		r.ConfigFiles = o.ConfigFiles
	}
	if o.ResourceDir != "" {
		r.ResourceDir = o.ResourceDir
	}
	if len(o.DockerFiles) > 0 {
		r.DockerFiles = o.DockerFiles
	}
	if len(o.ExtraFiles) > 0 {
		r.ExtraFiles = o.ExtraFiles
	}
	if len(o.SourceSuffixes) > 0 {
		r.SourceSuffixes = o.SourceSuffixes
	}
	if len(o.TestSuffixes) > 0 {
		r.TestSuffixes = o.TestSuffixes
	}
	return r
}

func in(name string, set []string) bool {
	for _, s := range set {
		if s == name {
			return true
		}
	}
	return false
}

func hasAnySuffix(name string, suffixes []string) bool {
	for _, s := range suffixes {
		if s != "" && strings.HasSuffix(name, s) {
			return true
		}
	}
	return false
}
