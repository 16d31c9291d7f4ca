package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/sitelens"
)

// Ensure LoggingLLM implements sitelens.LLM.
var _ sitelens.LLM = (*LoggingLLM)(nil)

// LoggingLLM wraps an LLM with logging of prompt size and latency.
type LoggingLLM struct {
	next    sitelens.LLM
	counter sitelens.TokenCounter
	logger  *slog.Logger
}

// NewLoggingLLM creates a new LoggingLLM. The counter is optional; when nil
// only character counts are logged.
func NewLoggingLLM(next sitelens.LLM, counter sitelens.TokenCounter, logger *slog.Logger) *LoggingLLM {
	return &LoggingLLM{next: next, counter: counter, logger: logger}
}

// Generate logs the prompt size, response size and duration.
func (l *LoggingLLM) Generate(ctx context.Context, prompt string) (reply string, err error) {
	attrs := []any{"prompt_chars", len(prompt)}
	if l.counter != nil {
		if n, cerr := l.counter.CountTokens(ctx, prompt); cerr == nil {
			attrs = append(attrs, "prompt_tokens", n)
		}
	}
	defer func(begin time.Time) {
		l.logger.Info("generate", append(attrs,
			"reply_chars", len(reply),
			"duration", time.Since(begin),
			"err", err,
		)...)
	}(time.Now())
	return l.next.Generate(ctx, prompt)
}
