package prompt

import (
	"context"
	"time"

	"github.com/fwojciec/sitelens"
)

// DefaultCompareDelays returns the waits between comparison attempts: 2s
// after the first timeout and 4s after the second, for three attempts.
func DefaultCompareDelays() []time.Duration {
	return []time.Duration{2 * time.Second, 4 * time.Second}
}

// generateWithRetry calls the model up to len(delays)+1 times. Only
// transient failures are retried; any other error returns at once. The
// number of attempts made is returned alongside the last error.
func generateWithRetry(ctx context.Context, llm sitelens.LLM, prompt string, delays []time.Duration) (string, int, error) {
	maxAttempts := len(delays) + 1

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		reply, err := llm.Generate(ctx, prompt)
		if err == nil {
			return reply, attempt + 1, nil
		}
		lastErr = err

		if !sitelens.IsTransient(err) || attempt >= maxAttempts-1 {
			return "", attempt + 1, lastErr
		}

		// Wait before next attempt
		select {
		case <-ctx.Done():
			return "", attempt + 1, ctx.Err()
		case <-time.After(delays[attempt]):
		}
	}

	return "", maxAttempts, lastErr
}
