package gemini

import (
	"context"

	"google.golang.org/genai"
)

// NewTestClient returns a Client that calls fn instead of the API.
func NewTestClient(fn func(ctx context.Context, model, prompt string, config *genai.GenerateContentConfig) (string, error), opts ...Option) *Client {
	c := NewClient(nil, opts...)
	c.generate = fn
	return c
}
