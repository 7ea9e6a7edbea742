package adapter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	anthropic "github.com/liushuangls/go-anthropic/v2"
)

// claudeAdapter implements LLMAdapter for Anthropic Claude.
type claudeAdapter struct {
	client *anthropic.Client
}

// NewClaude creates a Claude adapter.
func NewClaude(opts Options) LLMAdapter {
	var clientOpts []anthropic.ClientOption
	if opts.BaseURL != "" {
		clientOpts = append(clientOpts, anthropic.WithBaseURL(opts.BaseURL))
	}
	return &claudeAdapter{
		client: anthropic.NewClient(opts.APIKey, clientOpts...),
	}
}

func (c *claudeAdapter) Info() ModelInfo {
	return ModelInfo{
		Name:              DefaultModel(ProviderClaude),
		Provider:          ProviderClaude,
		MaxContextWindow:  200000,
		SupportsStreaming: true,
	}
}

func (c *claudeAdapter) request(req CompletionRequest) anthropic.MessagesRequest {
	model := req.Model
	if model == "" {
		model = DefaultModel(ProviderClaude)
	}
	temperature := float32(req.Temperature)
	return anthropic.MessagesRequest{
		Model: anthropic.Model(model),
		Messages: []anthropic.Message{{
			Role:    anthropic.RoleUser,
			Content: []anthropic.MessageContent{anthropic.NewTextMessageContent(req.Prompt)},
		}},
		System:      req.SystemPrompt,
		MaxTokens:   req.maxTokens(),
		Temperature: &temperature,
	}
}

func (c *claudeAdapter) Complete(ctx context.Context, req CompletionRequest) (<-chan StreamChunk, error) {
	msgReq := c.request(req)
	ch := make(chan StreamChunk, 64)

	if !req.Stream {
		go func() {
			defer close(ch)
			resp, err := c.client.CreateMessages(ctx, msgReq)
			if err != nil {
				ch <- StreamChunk{Error: fmt.Errorf("claude complete: %w", err)}
				return
			}
			var b strings.Builder
			for _, content := range resp.Content {
				if content.Type == anthropic.MessagesContentTypeText {
					b.WriteString(content.GetText())
				}
			}
			ch <- StreamChunk{Text: b.String()}
		}()
		return ch, nil
	}

	go func() {
		defer close(ch)
		_, err := c.client.CreateMessagesStream(ctx, anthropic.MessagesStreamRequest{
			MessagesRequest: msgReq,
			OnContentBlockDelta: func(delta anthropic.MessagesEventContentBlockDeltaData) {
				if delta.Delta.Type == anthropic.MessagesContentTypeTextDelta {
					ch <- StreamChunk{Text: delta.Delta.GetText()}
				}
			},
		})
		if err != nil && !errors.Is(err, io.EOF) {
			ch <- StreamChunk{Error: fmt.Errorf("claude stream: %w", err)}
		}
	}()

	return ch, nil
}
