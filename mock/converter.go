package mock

import "github.com/fwojciec/sitelens"

var _ sitelens.Converter = (*Converter)(nil)

// Converter is a mock implementation of sitelens.Converter.
type Converter struct {
	ConvertFn func(html string) (string, error)
}

func (c *Converter) Convert(html string) (string, error) {
	return c.ConvertFn(html)
}
