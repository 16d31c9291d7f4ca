package mock

import "github.com/fwojciec/sitelens"

var _ sitelens.Extractor = (*Extractor)(nil)

// Extractor is a mock implementation of sitelens.Extractor.
type Extractor struct {
	ExtractFn func(html string) (*sitelens.ExtractResult, error)
}

func (e *Extractor) Extract(html string) (*sitelens.ExtractResult, error) {
	return e.ExtractFn(html)
}
