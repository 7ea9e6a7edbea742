// Package pipeline runs one README generation: clone, classify, merge,
// generate and persist, strictly in that order.
package pipeline

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/readmegen/readmegen/internal/classifier"
	"github.com/readmegen/readmegen/internal/oracle"
	"github.com/readmegen/readmegen/internal/prompt"
	"github.com/readmegen/readmegen/internal/scanner"
)

// Source fetches a repository into dir.
type Source interface {
	Clone(ctx context.Context, url, dir string) error
}

// Workspace hands out fresh working directories.
type Workspace interface {
	Create() (string, error)
	Remove(dir string) error
}

// Sink stores the generated README in dir and returns where it went.
type Sink interface {
	WriteReadme(dir, content string) (string, error)
}

// State is the record one run reads and fills in. It belongs to a single
// run and must not be shared between goroutines.
type State struct {
	RunID   string
	RepoURL string
	WorkDir string
	// Revision is the commit that was cloned, when git can report it.
	Revision       string
	FilePaths []string
	// Candidates are the names the oracle answered with, including names
	// that matched no file. Nil when the classifier is not oracle-backed.
	Candidates     []string
	EssentialNames []string
	EssentialPaths []string
	Merged         string
	ReadmeBody     string
	ReadmePath     string
	ReadmeWritten  bool
}

// Deps are the collaborators a Pipeline is built from.
type Deps struct {
	Source     Source
	Workspace  Workspace
	Classifier classifier.Classifier
	Generator  oracle.Oracle
	Sink       Sink
	Logger     *slog.Logger
	// ProjectKind fills the README prompt ("Java", "Go", ...). Empty reads
	// as a generic project.
	ProjectKind string
	// Revision reports the commit checked out in a directory. Optional.
	Revision func(dir string) string
}

// Pipeline sequences the stages of a run over its collaborators.
type Pipeline struct {
	deps Deps
	log  *slog.Logger
}

// New creates a Pipeline.
func New(d Deps) *Pipeline {
	log := d.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Pipeline{deps: d, log: log}
}

// Run executes every stage for url. A failure before persistence stops the
// run, removes the working directory and returns the stage's error as-is.
// A persistence failure is logged and reported through ReadmeWritten
// instead. The returned State is non-nil in both cases.
func (p *Pipeline) Run(ctx context.Context, url string) (*State, error) {
	s := &State{RunID: uuid.NewString(), RepoURL: url}
	log := p.log.With("run_id", s.RunID)

	stages := []struct {
		name string
		fn   func(context.Context, *State, *slog.Logger) error
	}{
		{"clone", p.clone},
		{"classify", p.classify},
		{"merge", p.merge},
		{"generate", p.generate},
	}
	for _, st := range stages {
		if err := st.fn(ctx, s, log); err != nil {
			log.Error("stage failed", "stage", st.name, "error", err)
			p.discard(s, log)
			return s, err
		}
	}

	p.persist(s, log)
	return s, nil
}

// clone reads RepoURL and writes WorkDir, Revision and FilePaths.
func (p *Pipeline) clone(ctx context.Context, s *State, log *slog.Logger) error {
	dir, err := p.deps.Workspace.Create()
	if err != nil {
		return err
	}
	s.WorkDir = dir

	log.Info("cloning repository", "url", s.RepoURL, "dir", dir)
	if err := p.deps.Source.Clone(ctx, s.RepoURL, dir); err != nil {
		return err
	}
	if p.deps.Revision != nil {
		s.Revision = p.deps.Revision(dir)
	}

	s.FilePaths = scanner.ListFiles(dir, nil)
	log.Info("repository cloned", "files", len(s.FilePaths), "revision", s.Revision)
	return nil
}

// classify reads WorkDir and writes EssentialPaths and EssentialNames, plus
// Candidates when the classifier can report them. The classifier resolves
// names to paths against the clone, so EssentialPaths and EssentialNames
// always describe the same selection.
func (p *Pipeline) classify(ctx context.Context, s *State, log *slog.Logger) error {
	var paths []string
	if sel, ok := p.deps.Classifier.(classifier.Selector); ok {
		res, err := sel.Select(ctx, s.WorkDir)
		if err != nil {
			return err
		}
		s.Candidates = res.Candidates
		paths = res.Paths
		log.Info("oracle candidates", "names", s.Candidates)
	} else {
		var err error
		if paths, err = p.deps.Classifier.Classify(ctx, s.WorkDir); err != nil {
			return err
		}
	}
	s.EssentialPaths = paths
	s.EssentialNames = uniqueBaseNames(paths)
	log.Info("essential files selected", "count", len(paths), "names", s.EssentialNames)
	return nil
}

// merge reads EssentialPaths and writes Merged.
func (p *Pipeline) merge(_ context.Context, s *State, log *slog.Logger) error {
	s.Merged = prompt.MergeFiles(log, s.EssentialPaths)
	if s.Merged == "" {
		log.Warn("no essential file content to send")
	}
	return nil
}

// generate reads Merged and writes ReadmeBody. The generator enforces the
// token budget before it sends anything.
func (p *Pipeline) generate(ctx context.Context, s *State, log *slog.Logger) error {
	text, err := prompt.ReadmePrompt(p.deps.ProjectKind, s.Merged)
	if err != nil {
		return err
	}
	body, err := p.deps.Generator.Invoke(ctx, text)
	if err != nil {
		return err
	}
	s.ReadmeBody = body
	log.Info("README body generated", "bytes", len(body))
	return nil
}

// persist reads WorkDir and ReadmeBody and writes ReadmePath and
// ReadmeWritten. Failure is logged, never returned.
func (p *Pipeline) persist(s *State, log *slog.Logger) {
	path, err := p.deps.Sink.WriteReadme(s.WorkDir, s.ReadmeBody)
	if err != nil {
		log.Error("error creating README file", "dir", s.WorkDir, "error", err)
		return
	}
	s.ReadmePath = path
	s.ReadmeWritten = true
}

func (p *Pipeline) discard(s *State, log *slog.Logger) {
	if s.WorkDir == "" {
		return
	}
	if err := p.deps.Workspace.Remove(s.WorkDir); err != nil {
		log.Warn("could not remove working directory", "dir", s.WorkDir, "error", err)
	}
}

func uniqueBaseNames(paths []string) []string {
	seen := make(map[string]bool, len(paths))
	names := []string{}
	for _, n := range scanner.BaseNames(paths) {
		if !seen[n] {
			seen[n] = true
			names = append(names, n)
		}
	}
	return names
}
