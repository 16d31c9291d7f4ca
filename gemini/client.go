// Package gemini implements sitelens.LLM and sitelens.TokenCounter with
// Google Gemini.
package gemini

import (
	"context"
	"errors"
	"net/http"

	"github.com/fwojciec/sitelens"
	"google.golang.org/genai"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.5-flash"

// attempts is the total number of calls made for one prompt. The second
// call happens only after a transient failure.
const attempts = 2

// Ensure Client implements sitelens.LLM at compile time.
var _ sitelens.LLM = (*Client)(nil)

// Client sends single-turn text prompts to Gemini.
type Client struct {
	generate    generateFunc
	model       string
	temperature *float32
}

// generateFunc performs one model call and returns the reply text.
type generateFunc func(ctx context.Context, model, prompt string, config *genai.GenerateContentConfig) (string, error)

// Option configures a Client.
type Option func(*Client)

// WithModel sets the model name.
func WithModel(model string) Option {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float32) Option {
	return func(c *Client) {
		c.temperature = &t
	}
}

// NewClient creates a new Client over an initialized genai client.
func NewClient(client *genai.Client, opts ...Option) *Client {
	c := &Client{
		generate: modelsGenerate(client),
		model:    DefaultModel,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func modelsGenerate(client *genai.Client) generateFunc {
	return func(ctx context.Context, model, prompt string, config *genai.GenerateContentConfig) (string, error) {
		result, err := client.Models.GenerateContent(ctx, model,
			[]*genai.Content{{
				Parts: []*genai.Part{{Text: prompt}},
			}},
			config,
		)
		if err != nil {
			return "", err
		}
		if result == nil {
			return "", sitelens.Errorf(sitelens.EINTERNAL, "gemini returned nil result")
		}
		return result.Text(), nil
	}
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.model
}

// Generate sends prompt to the model and returns the reply text. A
// timeout-class failure is retried once; other failures return at once.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	config := BuildConfig(c.temperature)

	var err error
	for i := 0; i < attempts; i++ {
		var text string
		text, err = c.generate(ctx, c.model, prompt, config)
		if err == nil {
			return text, nil
		}
		err = classify(err)
		if ctx.Err() != nil || !sitelens.IsTransient(err) {
			break
		}
	}
	return "", err
}

// classify maps gateway timeouts reported by the API to ETIMEOUT.
func classify(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) && apiErr.Code == http.StatusGatewayTimeout {
		return sitelens.Errorf(sitelens.ETIMEOUT, "gemini: %s", apiErr.Message)
	}
	return err
}

// BuildConfig returns the GenerateContentConfig for Gemini API calls.
// A nil temperature leaves the model default.
func BuildConfig(temperature *float32) *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		Temperature: temperature,
	}
}
