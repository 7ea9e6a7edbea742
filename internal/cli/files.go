package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/readmegen/readmegen/internal/prompt"
)

func newFilesCmd(g *globalOptions) *cobra.Command {
	var (
		run    runOptions
		merged bool
	)

	cmd := &cobra.Command{
		Use:   "files <dir>",
		Short: "Show which files of a local directory would be sent to the LLM",
		Long: `Run the file classifier on a local checkout and print the selected files,
relative to the directory. With --merged, print the merged document that would
be embedded in the README prompt, followed by its token count.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}
			if info, err := os.Stat(root); err != nil || !info.IsDir() {
				return fmt.Errorf("not a directory: %s", args[0])
			}

			cfg, err := loadConfig(g)
			if err != nil {
				return err
			}
			run.apply(&cfg)
			if err := cfg.Validate(); err != nil {
				return err
			}

			logger := newLogger(cmd.ErrOrStderr(), cfg.Log.Level, g.verbose)
			tok := prompt.NewTokenizer()
			cls, err := newClassifier(cfg, tok, logger)
			if err != nil {
				return err
			}

			paths, err := cls.Classify(context.Background(), root)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if merged {
				doc := prompt.MergeFiles(logger, paths)
				fmt.Fprint(out, doc)
				count, err := tok.Count(doc, cfg.Generation.Model)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "--- %d files, %d tokens (%s, limit %d) ---\n",
					len(paths), count, cfg.Generation.Model, cfg.Generation.MaxInputTokens)
				return nil
			}

			for _, p := range paths {
				if rel, err := filepath.Rel(root, p); err == nil {
					p = filepath.ToSlash(rel)
				}
				fmt.Fprintln(out, p)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "%d essential files (%s mode)\n", len(paths), cfg.Classifier.Mode)
			return nil
		},
	}

	run.register(cmd)
	cmd.Flags().BoolVar(&merged, "merged", false, "print the merged file contents instead of the file list")

	return cmd
}
