package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/readmegen/readmegen/internal/prompt"
)

func newTokensCmd(g *globalOptions) *cobra.Command {
	var model string

	cmd := &cobra.Command{
		Use:   "tokens [file]",
		Short: "Count tokens the way the generation budget does",
		Long: `Count the tokens of a file, or of stdin when no file is given, under the
tokenizer of the generation model, and compare the count with
generation.max_input_tokens. Exits non-zero when the text is over budget.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(g)
			if err != nil {
				return err
			}
			if model != "" {
				cfg.Generation.Model = model
			}

			var data []byte
			if len(args) == 1 {
				data, err = os.ReadFile(args[0])
			} else {
				data, err = io.ReadAll(cmd.InOrStdin())
			}
			if err != nil {
				return fmt.Errorf("read input: %w", err)
			}

			budget := prompt.NewBudget(prompt.NewTokenizer(), cfg.Generation.Model, cfg.Generation.MaxInputTokens)
			count, err := budget.Check(string(data))
			if err != nil && !errors.Is(err, prompt.ErrBudgetExceeded) {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d tokens (%s, limit %d)\n", count, budget.Model(), budget.Limit())
			return err
		},
	}

	cmd.Flags().StringVarP(&model, "model", "m", "", "model whose tokenizer to use (default: generation.model)")
	return cmd
}
