package scanner

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed profiles.yaml
var profilesYAML []byte

var (
	profilesOnce sync.Once
	profiles     map[string]Rules
	profilesErr  error
)

func loadProfiles() (map[string]Rules, error) {
	profilesOnce.Do(func() {
		profiles, profilesErr = ParseProfiles(profilesYAML)
	})
	return profiles, profilesErr
}

// ParseProfiles decodes a YAML document mapping profile names to Rules.
func ParseProfiles(data []byte) (map[string]Rules, error) {
	out := map[string]Rules{}
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("scanner: parse profiles: %w", err)
	}
	return out, nil
}

// Profile returns the built-in rule set registered under name.
func Profile(name string) (Rules, error) {
	all, err := loadProfiles()
	if err != nil {
		return Rules{}, err
	}
	r, ok := all[name]
	if !ok {
		return Rules{}, fmt.Errorf("scanner: unknown profile %q; valid profiles: %s",
			name, strings.Join(ProfileNames(), ", "))
	}
	return r, nil
}

// ProfileNames returns the sorted names of all built-in profiles.
func ProfileNames() []string {
	all, _ := loadProfiles()
	names := make([]string, 0, len(all))
	for k := range all {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
