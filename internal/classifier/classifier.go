// Package classifier decides which files of a repository are essential for
// documenting it.
package classifier

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"

	"github.com/readmegen/readmegen/internal/config"
	"github.com/readmegen/readmegen/internal/oracle"
	"github.com/readmegen/readmegen/internal/prompt"
	"github.com/readmegen/readmegen/internal/response"
	"github.com/readmegen/readmegen/internal/scanner"
)

// DefaultProfile is used when auto-detection recognises nothing.
const DefaultProfile = "java-spring"

// Classifier returns the absolute paths of the essential files under root.
// An empty or nonexistent root yields an empty list and no error.
type Classifier interface {
	Classify(ctx context.Context, root string) ([]string, error)
}

// Static selects files with a fixed rule set. It walks the whole tree,
// .git included, and returns matches sorted by path.
type Static struct {
	Rules scanner.Rules
	// RespectGitignore drops files matched by the root .gitignore.
	RespectGitignore bool
}

func (s Static) Classify(_ context.Context, root string) ([]string, error) {
	opts := scanner.WalkOptions{}
	if s.RespectGitignore {
		opts.Ignore = scanner.NewIgnoreMatcher(root)
	}

	paths := []string{}
	scanner.WalkFiles(root, opts, func(e scanner.FileEntry) {
		if s.Rules.Essential(e.Path) {
			paths = append(paths, e.Path)
		}
	})
	sort.Strings(paths)
	return paths, nil
}

// Oracle asks an LLM to pick essential files from the repository's base
// names alone. File contents are never sent.
type Oracle struct {
	oracle           oracle.Oracle
	logger           *slog.Logger
	respectGitignore bool
}

// NewOracle creates an oracle-backed classifier.
func NewOracle(o oracle.Oracle, logger *slog.Logger, respectGitignore bool) *Oracle {
	if logger == nil {
		logger = slog.Default()
	}
	return &Oracle{oracle: o, logger: logger, respectGitignore: respectGitignore}
}

// Selection is the outcome of an oracle classification: the names the
// oracle answered with, unresolved ones included, and the paths they
// resolved to.
type Selection struct {
	Candidates []string
	Paths      []string
}

// Selector is implemented by classifiers that can report the candidate
// names behind their selection.
type Selector interface {
	Select(ctx context.Context, root string) (Selection, error)
}

// Classify lists every file, asks the oracle which base names are essential
// and maps the answer back onto paths. A reply without a usable list selects
// nothing; oracle errors, budget errors included, are returned as-is.
func (c *Oracle) Classify(ctx context.Context, root string) ([]string, error) {
	sel, err := c.Select(ctx, root)
	if err != nil {
		return nil, err
	}
	return sel.Paths, nil
}

// Select is Classify that also returns the oracle's candidate names.
func (c *Oracle) Select(ctx context.Context, root string) (Selection, error) {
	var ignore *scanner.IgnoreMatcher
	if c.respectGitignore {
		ignore = scanner.NewIgnoreMatcher(root)
	}
	paths := scanner.ListFiles(root, ignore)
	if len(paths) == 0 {
		return Selection{Candidates: []string{}, Paths: []string{}}, nil
	}

	names, err := c.SelectNames(ctx, scanner.BaseNames(paths))
	if err != nil {
		return Selection{}, err
	}
	resolved := ResolveEssential(names, paths)
	if missing := unresolvedNames(names, resolved); len(missing) > 0 {
		c.logger.Warn("oracle named files that do not exist", "names", missing)
	}
	return Selection{Candidates: names, Paths: resolved}, nil
}

// unresolvedNames returns the names that match no path in resolved.
func unresolvedNames(names, resolved []string) []string {
	found := make(map[string]struct{}, len(resolved))
	for _, p := range resolved {
		found[filepath.Base(p)] = struct{}{}
	}
	missing := []string{}
	for _, n := range names {
		if _, ok := found[n]; !ok {
			missing = append(missing, n)
		}
	}
	return missing
}

// SelectNames sends names to the oracle and parses the list it answers with.
func (c *Oracle) SelectNames(ctx context.Context, names []string) ([]string, error) {
	p, err := prompt.EssentialFilesPrompt(names)
	if err != nil {
		return nil, err
	}
	reply, err := c.oracle.Invoke(ctx, p)
	if err != nil {
		return nil, err
	}

	res := response.ParseList(reply)
	switch res.Outcome {
	case response.Malformed:
		c.logger.Error("error parsing file names", "span", res.Span, "error", res.Err)
	case response.NoList:
		c.logger.Warn("oracle reply contains no file list", "reply_bytes", len(reply))
	}
	return res.Names(), nil
}

// ResolveEssential keeps each path whose base name is in names. Output order
// follows paths; names never seen in paths are dropped, and a name matching
// several paths keeps all of them.
func ResolveEssential(names, paths []string) []string {
	wanted := make(map[string]struct{}, len(names))
	for _, n := range names {
		wanted[n] = struct{}{}
	}

	out := []string{}
	for _, p := range paths {
		if _, ok := wanted[filepath.Base(p)]; ok {
			out = append(out, p)
		}
	}
	return out
}

// RulesFor builds the static rule set described by cfg: the named profile
// with any configured rule fields laid over it.
func RulesFor(cfg config.ClassifierConfig) (scanner.Rules, error) {
	base, err := scanner.Profile(cfg.Profile)
	if err != nil {
		return scanner.Rules{}, err
	}
	return base.Override(scanner.Rules{
		BuildFiles:     cfg.BuildFiles,
		ConfigFiles:    cfg.ConfigFiles,
		ResourceDir:    cfg.ResourceDir,
		DockerFiles:    cfg.DockerFiles,
		ExtraFiles:     cfg.ExtraFiles,
		SourceSuffixes: cfg.SourceSuffixes,
		TestSuffixes:   cfg.TestSuffixes,
	}), nil
}

// AutoStatic detects the profile of each tree it classifies, falling back to
// Fallback when nothing is recognised.
type AutoStatic struct {
	Config   config.ClassifierConfig
	Fallback string
	Logger   *slog.Logger
}

func (a AutoStatic) Classify(ctx context.Context, root string) ([]string, error) {
	cfg := a.Config
	cfg.Profile = scanner.DetectProfile(root)
	if cfg.Profile == "" {
		cfg.Profile = a.Fallback
	}
	if a.Logger != nil {
		a.Logger.Debug("detected profile", "root", root, "profile", cfg.Profile)
	}
	rules, err := RulesFor(cfg)
	if err != nil {
		return nil, err
	}
	return Static{Rules: rules, RespectGitignore: cfg.RespectGitignore}.Classify(ctx, root)
}

// New returns the classifier selected by cfg.Mode. o is only used in oracle
// mode and may be nil otherwise.
func New(cfg config.ClassifierConfig, o oracle.Oracle, logger *slog.Logger) (Classifier, error) {
	switch cfg.Mode {
	case config.ModeStatic:
		if cfg.Profile == scanner.AutoProfile {
			return AutoStatic{Config: cfg, Fallback: DefaultProfile, Logger: logger}, nil
		}
		rules, err := RulesFor(cfg)
		if err != nil {
			return nil, err
		}
		return Static{Rules: rules, RespectGitignore: cfg.RespectGitignore}, nil
	case config.ModeOracle:
		if o == nil {
			return nil, errors.New("classifier: oracle mode needs an oracle")
		}
		return NewOracle(o, logger, cfg.RespectGitignore), nil
	default:
		return nil, fmt.Errorf("classifier: unknown mode %q; valid modes: %s, %s",
			cfg.Mode, config.ModeStatic, config.ModeOracle)
	}
}
