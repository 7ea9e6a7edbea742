package adapter

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const geminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// geminiAdapter implements LLMAdapter for Google Gemini via the REST API.
type geminiAdapter struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewGemini creates a Gemini adapter.
func NewGemini(opts Options) LLMAdapter {
	base := opts.BaseURL
	if base == "" {
		base = geminiBaseURL
	}
	return &geminiAdapter{
		apiKey:  opts.APIKey,
		baseURL: strings.TrimRight(base, "/"),
		client:  &http.Client{},
	}
}

func (g *geminiAdapter) Info() ModelInfo {
	return ModelInfo{
		Name:              DefaultModel(ProviderGemini),
		Provider:          ProviderGemini,
		MaxContextWindow:  1000000,
		SupportsStreaming: true,
	}
}

type geminiGenerateRequest struct {
	Contents          []geminiContent         `json:"contents"`
	SystemInstruction *geminiContent          `json:"systemInstruction,omitempty"`
	GenerationConfig  *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenerationConfig struct {
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
	Temperature     float64 `json:"temperature"`
}

type geminiGenerateResponse struct {
	Candidates []geminiCandidate `json:"candidates"`
	Error      *geminiError      `json:"error,omitempty"`
}

type geminiCandidate struct {
	Content geminiContent `json:"content"`
}

type geminiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// text joins every non-empty part of every candidate.
func (r geminiGenerateResponse) text() string {
	var b strings.Builder
	for _, cand := range r.Candidates {
		for _, part := range cand.Content.Parts {
			b.WriteString(part.Text)
		}
	}
	return b.String()
}

func (r geminiGenerateResponse) err() error {
	if r.Error == nil {
		return nil
	}
	return fmt.Errorf("gemini api error %d: %s", r.Error.Code, r.Error.Message)
}

func (g *geminiAdapter) endpoint(model string, stream bool) string {
	if stream {
		return fmt.Sprintf("%s/models/%s:streamGenerateContent?alt=sse", g.baseURL, model)
	}
	return fmt.Sprintf("%s/models/%s:generateContent", g.baseURL, model)
}

func (g *geminiAdapter) Complete(ctx context.Context, req CompletionRequest) (<-chan StreamChunk, error) {
	model := req.Model
	if model == "" {
		model = DefaultModel(ProviderGemini)
	}

	genReq := geminiGenerateRequest{
		Contents: []geminiContent{{
			Role:  "user",
			Parts: []geminiPart{{Text: req.Prompt}},
		}},
		GenerationConfig: &geminiGenerationConfig{
			MaxOutputTokens: req.maxTokens(),
			Temperature:     req.Temperature,
		},
	}
	if req.SystemPrompt != "" {
		genReq.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: req.SystemPrompt}}}
	}

	body, err := json.Marshal(genReq)
	if err != nil {
		return nil, fmt.Errorf("gemini complete marshal: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint(model, req.Stream), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("gemini complete request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", g.apiKey)

	ch := make(chan StreamChunk, 64)
	go func() {
		defer close(ch)

		resp, err := g.client.Do(httpReq)
		if err != nil {
			ch <- StreamChunk{Error: fmt.Errorf("gemini complete: %w", err)}
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			respBody, _ := io.ReadAll(resp.Body)
			ch <- StreamChunk{Error: fmt.Errorf("gemini complete: status %d: %s", resp.StatusCode, respBody)}
			return
		}

		if !req.Stream {
			var genResp geminiGenerateResponse
			if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
				ch <- StreamChunk{Error: fmt.Errorf("gemini complete decode: %w", err)}
				return
			}
			if err := genResp.err(); err != nil {
				ch <- StreamChunk{Error: err}
				return
			}
			ch <- StreamChunk{Text: genResp.text()}
			return
		}

		// Server-sent events: one "data: {json}" line per chunk.
		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			data, ok := strings.CutPrefix(scanner.Text(), "data: ")
			if !ok {
				continue
			}
			var genResp geminiGenerateResponse
			if err := json.Unmarshal([]byte(data), &genResp); err != nil {
				ch <- StreamChunk{Error: fmt.Errorf("gemini stream decode: %w", err)}
				return
			}
			if err := genResp.err(); err != nil {
				ch <- StreamChunk{Error: err}
				return
			}
			if text := genResp.text(); text != "" {
				ch <- StreamChunk{Text: text}
			}
		}
		if err := scanner.Err(); err != nil {
			ch <- StreamChunk{Error: fmt.Errorf("gemini stream scan: %w", err)}
		}
	}()

	return ch, nil
}
