// Package prompt assembles LLM prompts from repository files and keeps them
// inside a token budget.
package prompt

import (
	"fmt"
	"strings"
	"sync"

	tiktoken "github.com/pkoukk/tiktoken-go"
	tiktoken_loader "github.com/pkoukk/tiktoken-go-loader"
)

// FallbackEncoding is used for model identifiers tiktoken does not know
// (Claude, Gemini, local models). cl100k_base is a close approximation.
const FallbackEncoding = "cl100k_base"

var loaderOnce sync.Once

// useEmbeddedBPE makes tiktoken read BPE ranks from the files embedded by
// tiktoken-go-loader, downloading only encodings it does not carry.
func useEmbeddedBPE() {
	loaderOnce.Do(func() {
		tiktoken.SetBpeLoader(chainLoader{
			tiktoken_loader.NewOfflineLoader(),
			tiktoken.NewDefaultBpeLoader(),
		})
	})
}

// chainLoader returns the first successful load.
type chainLoader []tiktoken.BpeLoader

func (c chainLoader) LoadTiktokenBpe(file string) (map[string]int, error) {
	var err error
	for _, l := range c {
		var ranks map[string]int
		if ranks, err = l.LoadTiktokenBpe(file); err == nil {
			return ranks, nil
		}
	}
	return nil, err
}

// KnownModel reports whether tiktoken maps model to an encoding, either by
// exact name or by prefix.
func KnownModel(model string) bool {
	if _, ok := tiktoken.MODEL_TO_ENCODING[model]; ok {
		return true
	}
	for prefix := range tiktoken.MODEL_PREFIX_TO_ENCODING {
		if strings.HasPrefix(model, prefix) {
			return true
		}
	}
	return false
}

// Tokenizer counts tokens with the encoding that belongs to each model.
// Encodings are resolved once per model identifier and cached; failed loads
// are not cached.
type Tokenizer struct {
	mu   sync.Mutex
	encs map[string]*tiktoken.Tiktoken

	forModel func(model string) (*tiktoken.Tiktoken, error)
	byName   func(encoding string) (*tiktoken.Tiktoken, error)
}

// NewTokenizer creates an empty Tokenizer.
func NewTokenizer() *Tokenizer {
	useEmbeddedBPE()
	return &Tokenizer{
		encs:     make(map[string]*tiktoken.Tiktoken),
		forModel: tiktoken.EncodingForModel,
		byName:   tiktoken.GetEncoding,
	}
}

// encoding resolves model's encoding. Only models tiktoken does not know use
// FallbackEncoding; a known model whose encoding fails to load is an error.
func (t *Tokenizer) encoding(model string) (*tiktoken.Tiktoken, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if enc, ok := t.encs[model]; ok {
		return enc, nil
	}

	var (
		enc *tiktoken.Tiktoken
		err error
	)
	if KnownModel(model) {
		enc, err = t.forModel(model)
	} else {
		enc, err = t.byName(FallbackEncoding)
	}
	if err != nil {
		return nil, fmt.Errorf("tokenizer: get encoding for %q: %w", model, err)
	}
	t.encs[model] = enc
	return enc, nil
}

// Count returns the number of tokens text encodes to under model's encoding.
func (t *Tokenizer) Count(text, model string) (int, error) {
	if text == "" {
		return 0, nil
	}
	enc, err := t.encoding(model)
	if err != nil {
		return 0, err
	}
	return len(enc.Encode(text, nil, nil)), nil
}
