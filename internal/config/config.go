// Package config manages the global (~/.config/readmegen/config.toml)
// configuration for readmegen, with environment and .env overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// ErrMissingCredential is returned when a required token or API key is absent.
var ErrMissingCredential = errors.New("config: missing credential")

// Classifier modes.
const (
	ModeStatic = "static"
	ModeOracle = "oracle"
)

// GlobalConfig holds user-wide settings.
type GlobalConfig struct {
	Keys       KeysConfig       `toml:"keys"`
	Generation GenerationConfig `toml:"generation"`
	Classifier ClassifierConfig `toml:"classifier"`
	Workspace  WorkspaceConfig  `toml:"workspace"`
	Ollama     OllamaConfig     `toml:"ollama"`
	Log        LogConfig        `toml:"log"`
}

// KeysConfig holds the GitHub token and the provider API keys.
type KeysConfig struct {
	GitHub    string `toml:"github"`
	Anthropic string `toml:"anthropic"`
	OpenAI    string `toml:"openai"`
	Gemini    string `toml:"gemini"`
}

// GenerationConfig describes the model that writes the README. Model is also
// the identifier the token budget is computed against.
type GenerationConfig struct {
	Provider        string  `toml:"provider"`
	Model           string  `toml:"model"`
	MaxInputTokens  int     `toml:"max_input_tokens"`
	MaxOutputTokens int     `toml:"max_output_tokens"`
	Temperature     float64 `toml:"temperature"`
}

// ClassifierConfig selects the essential-file strategy. Rule fields, when
// non-empty, replace the corresponding field of the named static profile.
type ClassifierConfig struct {
	Mode             string   `toml:"mode"`
	Profile          string   `toml:"profile"`
	RespectGitignore bool     `toml:"respect_gitignore"`
	BuildFiles       []string `toml:"build_files"`
	ConfigFiles      []string `toml:"config_files"`
	ResourceDir      string   `toml:"resource_dir"`
	DockerFiles      []string `toml:"docker_files"`
	ExtraFiles       []string `toml:"extra_files"`
	SourceSuffixes   []string `toml:"source_suffixes"`
	TestSuffixes     []string `toml:"test_suffixes"`
}

// WorkspaceConfig says where run directories are created and what the README is called.
type WorkspaceConfig struct {
	BaseDir    string `toml:"base_dir"`
	ReadmeName string `toml:"readme_name"`
}

// OllamaConfig points at the local Ollama server.
type OllamaConfig struct {
	Host string `toml:"host"`
}

// LogConfig sets the slog level: debug, info, warn or error.
type LogConfig struct {
	Level string `toml:"level"`
}

// DefaultGlobal returns sensible defaults.
func DefaultGlobal() GlobalConfig {
	return GlobalConfig{
		Generation: GenerationConfig{
			Provider:        "openai",
			Model:           "gpt-4o",
			MaxInputTokens:  5000,
			MaxOutputTokens: 4096,
			Temperature:     0.3,
		},
		Classifier: ClassifierConfig{
			Mode:    ModeOracle,
			Profile: "java-spring",
		},
		Workspace: WorkspaceConfig{
			BaseDir:    ".temp",
			ReadmeName: "README.md",
		},
		Ollama: OllamaConfig{
			Host: "http://localhost:11434",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// GlobalConfigPath returns the path to the global config file.
func GlobalConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "readmegen", "config.toml"), nil
}

// LoadGlobal loads the global config, applying defaults for any missing values,
// then lets .env and environment variables override the API keys.
func LoadGlobal() (GlobalConfig, error) {
	cfg := DefaultGlobal()

	path, err := GlobalConfigPath()
	if err == nil {
		if _, statErr := os.Stat(path); statErr == nil {
			if _, err := toml.DecodeFile(path, &cfg); err != nil {
				return cfg, fmt.Errorf("config: load global: %w", err)
			}
		}
	}

	// A missing .env is the common case.
	_ = godotenv.Load()

	applyEnv(&cfg)
	return cfg, nil
}

// LoadFile decodes the TOML file at path over the defaults.
func LoadFile(path string) (GlobalConfig, error) {
	cfg := DefaultGlobal()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("config: load %s: %w", path, err)
	}
	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *GlobalConfig) {
	if v := os.Getenv("GITHUB_TOKEN"); v != "" {
		cfg.Keys.GitHub = v
	}
	if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" {
		cfg.Keys.Anthropic = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.Keys.OpenAI = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		cfg.Keys.Gemini = v
	}
}

// SaveGlobal writes the global config to disk.
func SaveGlobal(cfg GlobalConfig) error {
	path, err := GlobalConfigPath()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("config: mkdir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("config: create global config: %w", err)
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}

// ProviderKey returns the API key configured for the given provider.
// Ollama needs none and always yields "".
func (c GlobalConfig) ProviderKey(provider string) string {
	switch provider {
	case "claude":
		return c.Keys.Anthropic
	case "openai":
		return c.Keys.OpenAI
	case "gemini":
		return c.Keys.Gemini
	default:
		return ""
	}
}

// RequireProviderKey is ProviderKey but fails with ErrMissingCredential for a
// hosted provider without a key.
func (c GlobalConfig) RequireProviderKey(provider string) (string, error) {
	key := c.ProviderKey(provider)
	if key == "" && provider != "ollama" {
		return "", fmt.Errorf("%w: no API key for provider %q", ErrMissingCredential, provider)
	}
	return key, nil
}

// Validate checks values that would otherwise fail late in a run.
func (c GlobalConfig) Validate() error {
	switch c.Classifier.Mode {
	case ModeStatic, ModeOracle:
	default:
		return fmt.Errorf("config: unknown classifier mode %q; valid modes: static, oracle", c.Classifier.Mode)
	}
	if c.Generation.MaxInputTokens <= 0 {
		return fmt.Errorf("config: generation.max_input_tokens must be positive, got %d", c.Generation.MaxInputTokens)
	}
	if c.Generation.Model == "" {
		return errors.New("config: generation.model is empty")
	}
	return nil
}
