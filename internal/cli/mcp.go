package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/readmegen/readmegen/internal/classifier"
	"github.com/readmegen/readmegen/internal/config"
	mcpserver "github.com/readmegen/readmegen/internal/mcp"
	"github.com/readmegen/readmegen/internal/prompt"
)

func newMCPCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve readmegen's tools over MCP (stdio)",
		Long: `Start an MCP server on stdin/stdout exposing list_essential_files,
count_tokens and generate_readme. Logs go to stderr so they never corrupt the
protocol stream.

Example client entry:
  {"command": "readmegen", "args": ["mcp"]}`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(g)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			logger := newLogger(os.Stderr, cfg.Log.Level, g.verbose)
			tok := prompt.NewTokenizer()

			deps := mcpserver.Deps{
				Classifiers: func(mode, profile string) (classifier.Classifier, error) {
					c := cfg
					run := runOptions{mode: mode, profile: profile}
					run.apply(&c)
					return newClassifier(c, tok, logger)
				},
				Tokenizer: tok,
				Model:     cfg.Generation.Model,
				Limit:     cfg.Generation.MaxInputTokens,
			}

			// generate_readme is only offered when a run could succeed.
			if _, keyErr := cfg.RequireProviderKey(cfg.Generation.Provider); keyErr == nil {
				p, err := newPipeline(cfg, logger, pipelineOptions{depth: 1})
				if err != nil {
					return err
				}
				deps.Pipeline = p
			} else {
				logger.Warn("generate_readme disabled", "error", keyErr)
			}

			if cfg.Classifier.Mode == config.ModeOracle && deps.Pipeline == nil {
				fmt.Fprintln(os.Stderr, "Note: oracle mode needs an API key; list_essential_files works with mode=static only.")
			}

			return mcpserver.Serve(mcpserver.NewServer(version, deps))
		},
	}
}
