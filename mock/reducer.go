package mock

import "github.com/fwojciec/sitelens"

var _ sitelens.Reducer = (*Reducer)(nil)

// Reducer is a mock implementation of sitelens.Reducer.
type Reducer struct {
	ReduceFn func(html string, signal *sitelens.StructuredSignal) (*sitelens.Reduction, error)
}

func (r *Reducer) Reduce(html string, signal *sitelens.StructuredSignal) (*sitelens.Reduction, error) {
	return r.ReduceFn(html, signal)
}
