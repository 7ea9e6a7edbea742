// Package response extracts structured data from free-form LLM output.
package response

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Outcome classifies what ParseList found.
type Outcome int

const (
	// NoList means the text holds no '[' ... ']' span.
	NoList Outcome = iota
	// Found means the first bracketed span decoded as a list of strings.
	Found
	// Malformed means a bracketed span exists but is not a valid string list.
	Malformed
)

func (o Outcome) String() string {
	switch o {
	case Found:
		return "found"
	case Malformed:
		return "malformed"
	default:
		return "no list"
	}
}

// Result is the typed outcome of ParseList.
type Result struct {
	Outcome Outcome
	// Span is the bracketed text that was decoded, brackets included.
	Span string
	// Err is the decode error when Outcome is Malformed.
	Err   error
	names []string
}

// Names returns the parsed list, or an empty slice for NoList and Malformed.
func (r Result) Names() []string {
	if r.Outcome != Found || r.names == nil {
		return []string{}
	}
	return r.names
}

// ParseList finds the first '[' in text and the first ']' after it, then
// decodes that span strictly as a JSON array of strings. The span is not
// bracket-balanced: nested lists end at the first closing bracket.
func ParseList(text string) Result {
	span, ok := firstBracketSpan(text)
	if !ok {
		return Result{Outcome: NoList}
	}

	var names []string
	if err := json.Unmarshal([]byte(span), &names); err != nil {
		return Result{
			Outcome: Malformed,
			Span:    span,
			Err:     fmt.Errorf("response: decode list %q: %w", truncate(span, 80), err),
		}
	}
	if names == nil {
		names = []string{}
	}
	return Result{Outcome: Found, Span: span, names: names}
}

func firstBracketSpan(text string) (string, bool) {
	start := strings.IndexByte(text, '[')
	if start == -1 {
		return "", false
	}
	end := strings.IndexByte(text[start+1:], ']')
	if end == -1 {
		return "", false
	}
	return text[start : start+1+end+1], true
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
