package prompt

import (
	"errors"
	"fmt"
)

// ErrBudgetExceeded matches every *BudgetError via errors.Is.
var ErrBudgetExceeded = errors.New("prompt exceeds token limit")

// BudgetError reports a prompt that is over its token ceiling.
type BudgetError struct {
	Model string
	Count int
	Limit int
}

func (e *BudgetError) Error() string {
	return fmt.Sprintf("%s: %d tokens for model %q, limit %d", ErrBudgetExceeded, e.Count, e.Model, e.Limit)
}

// Is lets errors.Is(err, ErrBudgetExceeded) match.
func (e *BudgetError) Is(target error) bool {
	return target == ErrBudgetExceeded
}

// Budget is a hard token ceiling for prompts sent to one generation model.
type Budget struct {
	tokenizer *Tokenizer
	model     string
	limit     int
}

// NewBudget creates a Budget. model must be the identifier of the model the
// prompt will be sent to, since encodings differ between models.
func NewBudget(tokenizer *Tokenizer, model string, limit int) *Budget {
	return &Budget{tokenizer: tokenizer, model: model, limit: limit}
}

// Model returns the model identifier the budget counts against.
func (b *Budget) Model() string { return b.model }

// Limit returns the token ceiling.
func (b *Budget) Limit() int { return b.limit }

// Check counts text and returns the count. A count equal to the limit passes;
// anything above it returns a *BudgetError.
func (b *Budget) Check(text string) (int, error) {
	count, err := b.tokenizer.Count(text, b.model)
	if err != nil {
		return 0, err
	}
	if count > b.limit {
		return count, &BudgetError{Model: b.model, Count: count, Limit: b.limit}
	}
	return count, nil
}
