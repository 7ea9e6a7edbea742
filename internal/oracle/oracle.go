// Package oracle wraps an LLM adapter in a token-budgeted, synchronous
// prompt-in/text-out client.
package oracle

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/readmegen/readmegen/internal/adapter"
	"github.com/readmegen/readmegen/internal/prompt"
)

// Oracle answers a single prompt with free-form text.
type Oracle interface {
	Invoke(ctx context.Context, prompt string) (string, error)
}

// Options tunes the completion requests a Client sends.
type Options struct {
	SystemPrompt    string
	Temperature     float64
	MaxOutputTokens int
	Logger          *slog.Logger
}

// Client is an Oracle backed by an adapter.LLMAdapter. Every prompt is checked
// against the budget before any request is made, and the budget's model is
// the model the request is sent to.
type Client struct {
	llm     adapter.LLMAdapter
	budget  *prompt.Budget
	opts    Options
	onChunk func(string)
}

// New creates a Client.
func New(llm adapter.LLMAdapter, budget *prompt.Budget, opts Options) *Client {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Client{llm: llm, budget: budget, opts: opts}
}

// Streaming returns a copy of c that requests a streamed response and hands
// each piece of text to fn as it arrives. Invoke still returns the whole text.
func (c *Client) Streaming(fn func(string)) *Client {
	cp := *c
	cp.onChunk = fn
	return &cp
}

// Model returns the model identifier requests are sent to.
func (c *Client) Model() string { return c.budget.Model() }

// Invoke checks p against the budget and then runs one completion. A prompt
// over budget fails with a *prompt.BudgetError and the adapter is never
// called.
func (c *Client) Invoke(ctx context.Context, p string) (string, error) {
	count, err := c.budget.Check(p)
	if err != nil {
		return "", err
	}
	c.opts.Logger.Debug("invoking oracle",
		"provider", c.llm.Info().Provider,
		"model", c.budget.Model(),
		"tokens", count,
		"limit", c.budget.Limit(),
	)

	ch, err := c.llm.Complete(ctx, adapter.CompletionRequest{
		SystemPrompt: c.opts.SystemPrompt,
		Prompt:       p,
		Model:        c.budget.Model(),
		MaxTokens:    c.opts.MaxOutputTokens,
		Temperature:  c.opts.Temperature,
		Stream:       c.onChunk != nil,
	})
	if err != nil {
		return "", fmt.Errorf("oracle: invoke: %w", err)
	}

	text, err := adapter.Collect(ch, c.onChunk)
	if err != nil {
		return "", fmt.Errorf("oracle: invoke: %w", err)
	}
	return text, nil
}
