// Package adapter provides a unified completion interface over LLM providers.
package adapter

import (
	"context"
	"fmt"
	"strings"
)

// Provider name constants.
const (
	ProviderClaude = "claude"
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
	ProviderOllama = "ollama"
)

// DefaultOllamaHost is used when Options.BaseURL is empty for Ollama.
const DefaultOllamaHost = "http://localhost:11434"

const defaultMaxTokens = 4096

// StreamChunk is a single piece of text or an error delivered by Complete.
type StreamChunk struct {
	Text  string
	Error error
}

// CompletionRequest holds the parameters for a completion call.
type CompletionRequest struct {
	SystemPrompt string
	Prompt       string
	Model        string
	MaxTokens    int
	Temperature  float64
	Stream       bool
}

func (r CompletionRequest) maxTokens() int {
	if r.MaxTokens <= 0 {
		return defaultMaxTokens
	}
	return r.MaxTokens
}

// ModelInfo describes the default model an adapter talks to.
type ModelInfo struct {
	Name              string
	Provider          string
	MaxContextWindow  int
	SupportsStreaming bool
}

// LLMAdapter is the common interface all provider adapters implement.
type LLMAdapter interface {
	// Complete sends a prompt and delivers the response on the returned
	// channel. The channel is closed when the response is finished; a failure
	// arrives as a chunk with Error set.
	Complete(ctx context.Context, req CompletionRequest) (<-chan StreamChunk, error)

	// Info returns metadata about the adapter's default model.
	Info() ModelInfo
}

// Options configures a provider adapter.
type Options struct {
	// APIKey for hosted providers. Ollama ignores it.
	APIKey string
	// BaseURL overrides the provider endpoint. For Ollama it is the server
	// host; empty means DefaultOllamaHost.
	BaseURL string
}

// New constructs the LLMAdapter for the named provider.
func New(provider string, opts Options) (LLMAdapter, error) {
	switch provider {
	case ProviderClaude:
		return NewClaude(opts), nil
	case ProviderOpenAI:
		return NewOpenAI(opts), nil
	case ProviderGemini:
		return NewGemini(opts), nil
	case ProviderOllama:
		return NewOllama(opts), nil
	default:
		return nil, fmt.Errorf("adapter: unknown provider %q; valid providers: %s",
			provider, strings.Join(Providers(), ", "))
	}
}

// Providers lists the supported provider names.
func Providers() []string {
	return []string{ProviderClaude, ProviderOpenAI, ProviderGemini, ProviderOllama}
}

// DefaultModel returns the model used for provider when none is configured.
func DefaultModel(provider string) string {
	switch provider {
	case ProviderClaude:
		return "claude-sonnet-4-6"
	case ProviderGemini:
		return "gemini-2.0-flash"
	case ProviderOllama:
		return "llama3.2"
	default:
		return "gpt-4o"
	}
}

// Collect drains ch and returns the concatenated text. The first error chunk
// ends collection and is returned with whatever text arrived before it.
// Each chunk's text is also written to tee when tee is non-nil.
func Collect(ch <-chan StreamChunk, tee func(string)) (string, error) {
	var b strings.Builder
	for chunk := range ch {
		if chunk.Error != nil {
			// Drain so the producing goroutine can exit.
			for range ch {
			}
			return b.String(), chunk.Error
		}
		b.WriteString(chunk.Text)
		if tee != nil {
			tee(chunk.Text)
		}
	}
	return b.String(), nil
}
