package gemini

import (
	"context"

	"github.com/fwojciec/sitelens"
	"google.golang.org/genai"
	"google.golang.org/genai/tokenizer"
)

var _ sitelens.TokenCounter = (*TokenCounter)(nil)

// TokenCounter sizes extraction and analysis prompts for the LLM log lines.
// Counting happens locally; no request is sent to the API.
type TokenCounter struct {
	tok *tokenizer.LocalTokenizer
}

// NewTokenCounter returns a TokenCounter for model. Models without a local
// tokenizer return EINVALID and callers log without counts.
func NewTokenCounter(model string) (*TokenCounter, error) {
	tok, err := tokenizer.NewLocalTokenizer(model)
	if err != nil {
		return nil, sitelens.Errorf(sitelens.EINVALID, "no local tokenizer for model %q: %v", model, err)
	}
	return &TokenCounter{tok: tok}, nil
}

// CountTokens returns the token count of a prompt. Empty prompts count zero.
func (tc *TokenCounter) CountTokens(ctx context.Context, text string) (int, error) {
	if text == "" {
		return 0, nil
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	contents := []*genai.Content{
		genai.NewContentFromText(text, genai.RoleUser),
	}

	result, err := tc.tok.CountTokens(contents, nil)
	if err != nil {
		return 0, err
	}

	return int(result.TotalTokens), nil
}
