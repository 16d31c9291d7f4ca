package mock

import (
	"context"

	"github.com/fwojciec/sitelens"
)

var _ sitelens.LLM = (*LLM)(nil)

// LLM is a mock implementation of sitelens.LLM.
type LLM struct {
	GenerateFn func(ctx context.Context, prompt string) (string, error)
}

func (l *LLM) Generate(ctx context.Context, prompt string) (string, error) {
	return l.GenerateFn(ctx, prompt)
}

var _ sitelens.Prompter = (*Prompter)(nil)

// Prompter is a mock implementation of sitelens.Prompter.
type Prompter struct {
	ExtractFn func(ctx context.Context, req sitelens.ExtractRequest) (*sitelens.Record, error)
}

func (p *Prompter) Extract(ctx context.Context, req sitelens.ExtractRequest) (*sitelens.Record, error) {
	return p.ExtractFn(ctx, req)
}

var _ sitelens.Synthesizer = (*Synthesizer)(nil)

// Synthesizer is a mock implementation of sitelens.Synthesizer.
type Synthesizer struct {
	AnalyzeFn func(ctx context.Context, req sitelens.AnalyzeRequest) *sitelens.AnalysisRecord
	CompareFn func(ctx context.Context, domain string, results []sitelens.SiteResult, instruction string) *sitelens.Record
	AnswerFn  func(ctx context.Context, domain string, results []sitelens.SiteResult, question, instruction string) *sitelens.QnARecord
}

func (s *Synthesizer) Analyze(ctx context.Context, req sitelens.AnalyzeRequest) *sitelens.AnalysisRecord {
	return s.AnalyzeFn(ctx, req)
}

func (s *Synthesizer) Compare(ctx context.Context, domain string, results []sitelens.SiteResult, instruction string) *sitelens.Record {
	return s.CompareFn(ctx, domain, results, instruction)
}

func (s *Synthesizer) Answer(ctx context.Context, domain string, results []sitelens.SiteResult, question, instruction string) *sitelens.QnARecord {
	return s.AnswerFn(ctx, domain, results, question, instruction)
}

var _ sitelens.Asker = (*Asker)(nil)

// Asker is a mock implementation of sitelens.Asker.
type Asker struct {
	AskFn func(ctx context.Context, taskID int, question string) (*sitelens.QnARecord, error)
}

func (a *Asker) Ask(ctx context.Context, taskID int, question string) (*sitelens.QnARecord, error) {
	return a.AskFn(ctx, taskID, question)
}
