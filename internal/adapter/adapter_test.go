package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func collect(t *testing.T, a LLMAdapter, req CompletionRequest) (string, error) {
	t.Helper()
	ch, err := a.Complete(context.Background(), req)
	if err != nil {
		return "", err
	}
	return Collect(ch, nil)
}

func TestNew_ValidProviders(t *testing.T) {
	for _, provider := range Providers() {
		t.Run(provider, func(t *testing.T) {
			a, err := New(provider, Options{APIKey: "test-key"})
			if err != nil {
				t.Fatalf("New(%q) error: %v", provider, err)
			}
			info := a.Info()
			if info.Provider != provider {
				t.Errorf("Info().Provider = %q, want %q", info.Provider, provider)
			}
			if info.Name != DefaultModel(provider) {
				t.Errorf("Info().Name = %q, want %q", info.Name, DefaultModel(provider))
			}
		})
	}
}

func TestNew_InvalidProvider(t *testing.T) {
	_, err := New("invalid", Options{})
	if err == nil {
		t.Fatal("expected error for invalid provider")
	}
	if !strings.Contains(err.Error(), "ollama") {
		t.Errorf("error should list valid providers: %v", err)
	}
}

func TestDefaultModel(t *testing.T) {
	tests := map[string]string{
		ProviderOpenAI: "gpt-4o",
		ProviderClaude: "claude-sonnet-4-6",
		ProviderGemini: "gemini-2.0-flash",
		ProviderOllama: "llama3.2",
		"":             "gpt-4o",
	}
	for provider, want := range tests {
		if got := DefaultModel(provider); got != want {
			t.Errorf("DefaultModel(%q) = %q, want %q", provider, got, want)
		}
	}
}

func TestCollect(t *testing.T) {
	ch := make(chan StreamChunk, 3)
	ch <- StreamChunk{Text: "Hello "}
	ch <- StreamChunk{Text: "World"}
	close(ch)

	var teed []string
	got, err := Collect(ch, func(s string) { teed = append(teed, s) })
	if err != nil {
		t.Fatal(err)
	}
	if got != "Hello World" {
		t.Errorf("got %q", got)
	}
	if len(teed) != 2 {
		t.Errorf("tee saw %d chunks, want 2", len(teed))
	}
}

func TestCollect_StopsOnError(t *testing.T) {
	boom := errors.New("boom")
	ch := make(chan StreamChunk, 3)
	ch <- StreamChunk{Text: "partial"}
	ch <- StreamChunk{Error: boom}
	ch <- StreamChunk{Text: "ignored"}
	close(ch)

	got, err := Collect(ch, nil)
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if got != "partial" {
		t.Errorf("got %q, want text before the error", got)
	}
}

func TestOpenAIComplete_NonStreaming(t *testing.T) {
	var gotReq map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("missing bearer token: %q", r.Header.Get("Authorization"))
		}
		json.NewDecoder(r.Body).Decode(&gotReq)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"model": "gpt-4o",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "# Project"}, "finish_reason": "stop"}]
		}`)
	}))
	defer server.Close()

	a := NewOpenAI(Options{APIKey: "test-key", BaseURL: server.URL + "/v1"})
	text, err := collect(t, a, CompletionRequest{Prompt: "Write a README", Temperature: 0.3})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if text != "# Project" {
		t.Errorf("got %q", text)
	}
	if gotReq["model"] != "gpt-4o" {
		t.Errorf("request model = %v, want default gpt-4o", gotReq["model"])
	}
	if temp, _ := gotReq["temperature"].(float64); temp < 0.29 || temp > 0.31 {
		t.Errorf("request temperature = %v, want 0.3", gotReq["temperature"])
	}
}

func TestOpenAIComplete_Streaming(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		for _, text := range []string{"Hello ", "World!"} {
			fmt.Fprintf(w, "data: {\"id\":\"1\",\"object\":\"chat.completion.chunk\",\"choices\":[{\"index\":0,\"delta\":{\"content\":%q}}]}\n\n", text)
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer server.Close()

	a := NewOpenAI(Options{APIKey: "k", BaseURL: server.URL + "/v1"})
	text, err := collect(t, a, CompletionRequest{Prompt: "hi", Stream: true})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if text != "Hello World!" {
		t.Errorf("got %q", text)
	}
}

func TestOpenAIComplete_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":{"message":"invalid api key","type":"invalid_request_error"}}`)
	}))
	defer server.Close()

	a := NewOpenAI(Options{APIKey: "bad", BaseURL: server.URL + "/v1"})
	_, err := collect(t, a, CompletionRequest{Prompt: "hi"})
	if err == nil {
		t.Fatal("expected error for 401 response")
	}
	if !strings.HasPrefix(err.Error(), "openai complete") {
		t.Errorf("error should be prefixed with the operation: %v", err)
	}
}

func TestClaudeComplete_NonStreaming(t *testing.T) {
	var gotReq map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/messages") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("x-api-key") != "test-key" {
			t.Errorf("missing api key header")
		}
		json.NewDecoder(r.Body).Decode(&gotReq)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"id": "msg_1",
			"type": "message",
			"role": "assistant",
			"model": "claude-sonnet-4-6",
			"content": [{"type": "text", "text": "# From Claude"}],
			"stop_reason": "end_turn",
			"usage": {"input_tokens": 10, "output_tokens": 4}
		}`)
	}))
	defer server.Close()

	a := NewClaude(Options{APIKey: "test-key", BaseURL: server.URL + "/v1"})
	text, err := collect(t, a, CompletionRequest{Prompt: "Write a README", MaxTokens: 100})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if text != "# From Claude" {
		t.Errorf("got %q", text)
	}
	if gotReq["max_tokens"] != float64(100) {
		t.Errorf("max_tokens = %v, want 100", gotReq["max_tokens"])
	}
}

func TestGeminiComplete_NonStreaming(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models/gemini-2.0-flash:generateContent" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("x-goog-api-key") != "test-key" {
			t.Errorf("missing api key header")
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"candidates": [{
				"content": {
					"parts": [{"text": "Hello from "}, {"text": "Gemini!"}],
					"role": "model"
				}
			}]
		}`)
	}))
	defer server.Close()

	a := NewGemini(Options{APIKey: "test-key", BaseURL: server.URL})
	text, err := collect(t, a, CompletionRequest{Prompt: "Hello"})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if text != "Hello from Gemini!" {
		t.Errorf("got %q, want %q", text, "Hello from Gemini!")
	}
}

func TestGeminiComplete_StreamingSSE(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("alt") != "sse" {
			t.Errorf("streaming request should ask for SSE")
		}
		w.Header().Set("Content-Type", "text/event-stream")
		for _, text := range []string{"Hello ", "World!"} {
			data, _ := json.Marshal(geminiGenerateResponse{
				Candidates: []geminiCandidate{{
					Content: geminiContent{Role: "model", Parts: []geminiPart{{Text: text}}},
				}},
			})
			fmt.Fprintf(w, "data: %s\n\n", data)
		}
	}))
	defer server.Close()

	a := NewGemini(Options{APIKey: "k", BaseURL: server.URL})
	text, err := collect(t, a, CompletionRequest{Prompt: "Hello", Stream: true})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if text != "Hello World!" {
		t.Errorf("streamed text: got %q, want %q", text, "Hello World!")
	}
}

func TestGeminiComplete_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"error":{"code":403,"message":"API key invalid"}}`)
	}))
	defer server.Close()

	a := NewGemini(Options{APIKey: "bad-key", BaseURL: server.URL})
	_, err := collect(t, a, CompletionRequest{Prompt: "Hello"})
	if err == nil {
		t.Fatal("expected error for 403 response")
	}
	if !strings.Contains(err.Error(), "403") {
		t.Errorf("error should mention status code 403: %v", err)
	}
}

func TestOllamaComplete(t *testing.T) {
	tests := []struct {
		name   string
		stream bool
		body   string
		want   string
	}{
		{
			name: "single reply",
			body: `{"message":{"role":"assistant","content":"# Local README"},"done":true}`,
			want: "# Local README",
		},
		{
			name:   "streamed lines",
			stream: true,
			body: `{"message":{"role":"assistant","content":"# Local"},"done":false}
{"message":{"role":"assistant","content":" README"},"done":false}
{"message":{"role":"assistant","content":""},"done":true}
`,
			want: "# Local README",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotReq ollamaChatRequest
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/api/chat" {
					t.Errorf("unexpected path %s", r.URL.Path)
				}
				json.NewDecoder(r.Body).Decode(&gotReq)
				io.WriteString(w, tt.body)
			}))
			defer server.Close()

			a := NewOllama(Options{BaseURL: server.URL + "/"})
			text, err := collect(t, a, CompletionRequest{
				SystemPrompt: "be brief",
				Prompt:       "hi",
				Stream:       tt.stream,
			})
			if err != nil {
				t.Fatalf("Complete: %v", err)
			}
			if text != tt.want {
				t.Errorf("got %q, want %q", text, tt.want)
			}
			if gotReq.Stream != tt.stream {
				t.Errorf("request stream = %v, want %v", gotReq.Stream, tt.stream)
			}
			if len(gotReq.Messages) != 2 || gotReq.Messages[0].Role != "system" {
				t.Errorf("expected system + user messages, got %+v", gotReq.Messages)
			}
			if gotReq.Model != "llama3.2" {
				t.Errorf("model = %q, want default", gotReq.Model)
			}
		})
	}
}

func TestOllamaComplete_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, `{"error":"model \"nope\" not found"}`)
	}))
	defer server.Close()

	a := NewOllama(Options{BaseURL: server.URL})
	_, err := collect(t, a, CompletionRequest{Prompt: "hi", Model: "nope"})
	if err == nil || !strings.Contains(err.Error(), "404") {
		t.Fatalf("expected 404 error, got %v", err)
	}
}

func TestComplete_CancelledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	a := NewOllama(Options{BaseURL: server.URL})
	ch, err := a.Complete(ctx, CompletionRequest{Prompt: "hi"})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if _, err := Collect(ch, nil); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
