package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/readmegen/readmegen/internal/git"
	"github.com/readmegen/readmegen/internal/pipeline"
	"github.com/readmegen/readmegen/internal/prompt"
)

func newGenerateCmd(g *globalOptions) *cobra.Command {
	var (
		run    runOptions
		stream bool
		keep   bool
		depth  int
	)

	cmd := &cobra.Command{
		Use:   "generate <repo-url>",
		Short: "Clone a repository and write a README for it",
		Long: `Clone the repository, select its essential files, merge them into one
prompt and ask the configured LLM for a README. The README is written into the
run's working directory under the workspace base dir (.temp by default).

https URLs need a GitHub token (GITHUB_TOKEN or keys.github). Local paths and
file:// URLs are cloned without one.

Examples:
  readmegen generate https://github.com/acme/shop
  readmegen generate https://github.com/acme/shop --mode static --profile java-spring
  readmegen generate ./my-checkout --provider ollama --model llama3.2 --stream`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			url := args[0]

			cfg, err := loadConfig(g)
			if err != nil {
				return err
			}
			run.apply(&cfg)
			if err := cfg.Validate(); err != nil {
				return err
			}
			// Fail on a bad locator or missing token before anything is created.
			if _, err := git.AuthURL(url, cfg.Keys.GitHub); err != nil {
				return err
			}

			logger := newLogger(cmd.ErrOrStderr(), cfg.Log.Level, g.verbose)
			out := cmd.OutOrStdout()

			po := pipelineOptions{depth: depth, keep: keep}
			if stream {
				po.stream = func(s string) { fmt.Fprint(out, s) }
			}
			p, err := newPipeline(cfg, logger, po)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			var state *pipeline.State
			runErr := func() error {
				state, err = p.Run(ctx, url)
				return err
			}
			if stream {
				err = runErr()
				fmt.Fprintln(out)
			} else {
				err = withSpinner("  Generating README", runErr)
			}

			var be *prompt.BudgetError
			if errors.As(err, &be) {
				return fmt.Errorf("%w\nThe merged files are %d tokens for %s; raise generation.max_input_tokens or try --mode static with a narrower profile",
					err, be.Count, be.Model)
			}
			if err != nil {
				return err
			}

			if !stream {
				fmt.Fprintln(out, state.ReadmeBody)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Essential files (%d): %v\n", len(state.EssentialPaths), state.EssentialNames)
			if state.ReadmeWritten {
				fmt.Fprintf(cmd.ErrOrStderr(), "README written to %s\n", state.ReadmePath)
			} else {
				fmt.Fprintln(cmd.ErrOrStderr(), "README was generated but could not be written; see the log above.")
			}
			return nil
		},
	}

	run.register(cmd)
	cmd.Flags().BoolVar(&stream, "stream", false, "print the README as it is generated")
	cmd.Flags().BoolVar(&keep, "keep", false, "keep the working directory even when the run fails")
	cmd.Flags().IntVar(&depth, "depth", 1, "clone depth; 0 clones the full history")

	return cmd
}
