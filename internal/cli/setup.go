package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/readmegen/readmegen/internal/adapter"
	"github.com/readmegen/readmegen/internal/config"
)

func newSetupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "setup",
		Short: "Interactive first-time configuration",
		Long:  "Configure the LLM provider, API keys, GitHub token and file selection mode for readmegen.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := runSetup(bufio.NewReader(cmd.InOrStdin()), cmd.OutOrStdout())
			if err != nil {
				return err
			}

			if err := config.SaveGlobal(cfg); err != nil {
				return fmt.Errorf("save config: %w", err)
			}
			path, _ := config.GlobalConfigPath()
			fmt.Fprintf(cmd.OutOrStdout(), "Configuration saved to %s\n", path)
			fmt.Fprintln(cmd.OutOrStdout(), "Run `readmegen generate <repo-url>` to write your first README.")
			return nil
		},
	}
}

// runSetup asks the setup questions on out and reads answers from r.
func runSetup(r *bufio.Reader, out io.Writer) (config.GlobalConfig, error) {
	cfg := config.DefaultGlobal()

	fmt.Fprintln(out, "Welcome to readmegen! Let's configure README generation.")
	fmt.Fprintln(out)

	// Step 1: Choose LLM provider.
	fmt.Fprintln(out, "Which LLM should write your READMEs?")
	fmt.Fprintln(out, "  [1] OpenAI (GPT-4o)")
	fmt.Fprintln(out, "  [2] Claude (Anthropic)")
	fmt.Fprintln(out, "  [3] Gemini (Google)")
	fmt.Fprintln(out, "  [4] Ollama (local)")
	fmt.Fprint(out, "> ")

	switch strings.TrimSpace(readLineBuf(r)) {
	case "2":
		cfg.Generation.Provider = adapter.ProviderClaude
		fmt.Fprint(out, "Enter your Anthropic API key (or press Enter to set ANTHROPIC_API_KEY later): ")
		cfg.Keys.Anthropic = readLineBuf(r)
	case "3":
		cfg.Generation.Provider = adapter.ProviderGemini
		fmt.Fprint(out, "Enter your Gemini API key (or press Enter to set GEMINI_API_KEY later): ")
		cfg.Keys.Gemini = readLineBuf(r)
	case "4":
		cfg.Generation.Provider = adapter.ProviderOllama
		fmt.Fprintf(out, "Ollama host (press Enter for %s): ", cfg.Ollama.Host)
		if host := readLineBuf(r); host != "" {
			cfg.Ollama.Host = host
		}
	case "1", "":
		cfg.Generation.Provider = adapter.ProviderOpenAI
		fmt.Fprint(out, "Enter your OpenAI API key (or press Enter to set OPENAI_API_KEY later): ")
		cfg.Keys.OpenAI = readLineBuf(r)
	default:
		fmt.Fprintln(out, "Unrecognized choice; defaulting to openai.")
		cfg.Generation.Provider = adapter.ProviderOpenAI
	}
	cfg.Generation.Model = adapter.DefaultModel(cfg.Generation.Provider)
	fmt.Fprintln(out)

	// Step 2: GitHub token.
	fmt.Fprint(out, "GitHub token for cloning (or press Enter to set GITHUB_TOKEN later): ")
	cfg.Keys.GitHub = readLineBuf(r)
	fmt.Fprintln(out)

	// Step 3: File selection.
	fmt.Fprintln(out, "How should essential files be chosen?")
	fmt.Fprintln(out, "  [1] Ask the LLM, from file names only")
	fmt.Fprintln(out, "  [2] Static rules for a known project type")
	fmt.Fprint(out, "> ")

	if strings.TrimSpace(readLineBuf(r)) == "2" {
		cfg.Classifier.Mode = config.ModeStatic
		fmt.Fprintf(out, "Profile (press Enter for %s): ", cfg.Classifier.Profile)
		if profile := readLineBuf(r); profile != "" {
			cfg.Classifier.Profile = profile
		}
	}
	fmt.Fprintln(out)

	return cfg, cfg.Validate()
}

// readLineBuf reads a trimmed line from a bufio.Reader.
func readLineBuf(r *bufio.Reader) string {
	line, _ := r.ReadString('\n')
	return strings.TrimSpace(line)
}
