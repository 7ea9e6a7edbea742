// Package cli defines the Cobra command tree for the readmegen CLI.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// version, commit, date are set via -ldflags at build time.
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Execute runs the root command.
func Execute(v, c, d string) {
	version, commit, date = v, c, d
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// newRootCmd builds the command tree. Commands are created fresh on each
// call so tests can run them in isolation.
func newRootCmd() *cobra.Command {
	var opts globalOptions

	root := &cobra.Command{
		Use:   "readmegen",
		Short: "Generate a README for a repository from its essential files",
		Long: `readmegen clones a repository, picks the files that best describe it,
merges them into a single prompt that fits a token budget and asks an LLM to
write a README, which is saved next to the clone.

Run 'readmegen setup' once to store API keys, then
'readmegen generate https://github.com/owner/repo'.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default ~/.config/readmegen/config.toml)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log debug output to stderr")

	root.AddCommand(
		newGenerateCmd(&opts),
		newFilesCmd(&opts),
		newTokensCmd(&opts),
		newMCPCmd(&opts),
		newSetupCmd(),
		newVersionCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "readmegen %s (commit %s, built %s)\n", version, commit, date)
		},
	}
}
