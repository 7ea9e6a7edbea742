package cli

import (
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/readmegen/readmegen/internal/adapter"
	"github.com/readmegen/readmegen/internal/classifier"
	"github.com/readmegen/readmegen/internal/config"
	"github.com/readmegen/readmegen/internal/git"
	"github.com/readmegen/readmegen/internal/oracle"
	"github.com/readmegen/readmegen/internal/pipeline"
	"github.com/readmegen/readmegen/internal/prompt"
	"github.com/readmegen/readmegen/internal/workspace"
)

// globalOptions are the persistent flags shared by every command.
type globalOptions struct {
	configPath string
	verbose    bool
}

// runOptions are the per-run overrides accepted by generate and files.
type runOptions struct {
	mode     string
	provider string
	model    string
	profile  string
}

func (o *runOptions) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.mode, "mode", "", "file selection: static or oracle")
	cmd.Flags().StringVarP(&o.provider, "provider", "p", "", "LLM provider: "+strings.Join(adapter.Providers(), ", "))
	cmd.Flags().StringVarP(&o.model, "model", "m", "", "generation model; also selects the tokenizer for the budget")
	cmd.Flags().StringVar(&o.profile, "profile", "", "static rule profile: java-spring, go, node, python or auto")
}

// apply lays the flag values over cfg. Choosing a provider without a model
// switches to that provider's default model.
func (o runOptions) apply(cfg *config.GlobalConfig) {
	if o.mode != "" {
		cfg.Classifier.Mode = o.mode
	}
	if o.profile != "" {
		cfg.Classifier.Profile = o.profile
	}
	if o.provider != "" && o.provider != cfg.Generation.Provider {
		cfg.Generation.Provider = o.provider
		cfg.Generation.Model = adapter.DefaultModel(o.provider)
	}
	if o.model != "" {
		cfg.Generation.Model = o.model
	}
}

// loadConfig reads the config file named by --config, or the global one.
func loadConfig(g *globalOptions) (config.GlobalConfig, error) {
	if g.configPath != "" {
		return config.LoadFile(g.configPath)
	}
	return config.LoadGlobal()
}

// newLogger returns a text logger on w at the configured level; verbose
// forces debug.
func newLogger(w io.Writer, level string, verbose bool) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	if verbose {
		lvl = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}

// newOracle builds the budgeted client for the configured generation model.
// Hosted providers without an API key fail with config.ErrMissingCredential.
func newOracle(cfg config.GlobalConfig, tok *prompt.Tokenizer, logger *slog.Logger) (*oracle.Client, error) {
	gen := cfg.Generation
	key, err := cfg.RequireProviderKey(gen.Provider)
	if err != nil {
		return nil, err
	}

	opts := adapter.Options{APIKey: key}
	if gen.Provider == adapter.ProviderOllama {
		opts.BaseURL = cfg.Ollama.Host
	}
	llm, err := adapter.New(gen.Provider, opts)
	if err != nil {
		return nil, err
	}

	budget := prompt.NewBudget(tok, gen.Model, gen.MaxInputTokens)
	return oracle.New(llm, budget, oracle.Options{
		Temperature:     gen.Temperature,
		MaxOutputTokens: gen.MaxOutputTokens,
		Logger:          logger,
	}), nil
}

// newClassifier builds the configured classifier. The oracle client is only
// constructed in oracle mode, so static runs need no API key.
func newClassifier(cfg config.GlobalConfig, tok *prompt.Tokenizer, logger *slog.Logger) (classifier.Classifier, error) {
	var o oracle.Oracle
	if cfg.Classifier.Mode == config.ModeOracle {
		client, err := newOracle(cfg, tok, logger)
		if err != nil {
			return nil, err
		}
		o = client
	}
	return classifier.New(cfg.Classifier, o, logger)
}

// projectKind names the project in the README prompt. Only static mode
// knows what kind of project it is looking at.
func projectKind(cfg config.GlobalConfig) string {
	if cfg.Classifier.Mode != config.ModeStatic {
		return ""
	}
	rules, err := classifier.RulesFor(cfg.Classifier)
	if err != nil {
		return ""
	}
	return rules.Kind
}

// pipelineOptions are the generate-only knobs that shape the pipeline.
type pipelineOptions struct {
	depth  int
	keep   bool
	stream func(string)
}

// newPipeline wires every collaborator of a run from cfg.
func newPipeline(cfg config.GlobalConfig, logger *slog.Logger, po pipelineOptions) (*pipeline.Pipeline, error) {
	tok := prompt.NewTokenizer()

	cls, err := newClassifier(cfg, tok, logger)
	if err != nil {
		return nil, err
	}
	generator, err := newOracle(cfg, tok, logger)
	if err != nil {
		return nil, err
	}
	if po.stream != nil {
		generator = generator.Streaming(po.stream)
	}

	ws := &workspace.Manager{
		BaseDir:    cfg.Workspace.BaseDir,
		ReadmeName: cfg.Workspace.ReadmeName,
		Keep:       po.keep,
		Logger:     logger,
	}

	return pipeline.New(pipeline.Deps{
		Source:      git.Cloner{Token: cfg.Keys.GitHub, Depth: po.depth},
		Workspace:   ws,
		Classifier:  cls,
		Generator:   generator,
		Sink:        ws,
		Logger:      logger,
		ProjectKind: projectKind(cfg),
		Revision:    git.Revision,
	}), nil
}
