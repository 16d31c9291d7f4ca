package sitelens_test

import (
	"testing"
	"time"

	"github.com/fwojciec/sitelens"
	"github.com/stretchr/testify/assert"
)

func TestEstimateRemaining(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 20, sitelens.EstimateRemaining(20*time.Second, 2, 4))
	assert.Equal(t, 0, sitelens.EstimateRemaining(10*time.Second, 3, 3))
	assert.Equal(t, 0, sitelens.EstimateRemaining(10*time.Second, 0, 3))
	assert.Equal(t, 7, sitelens.EstimateRemaining(15*time.Second, 2, 3))
}

func TestProgressFunc_Report(t *testing.T) {
	t.Parallel()

	var got []sitelens.ProgressEvent
	fn := sitelens.ProgressFunc(func(ev sitelens.ProgressEvent) { got = append(got, ev) })

	fn.Report(sitelens.ProgressEvent{Stage: sitelens.StageFetching})
	sitelens.ProgressFunc(nil).Report(sitelens.ProgressEvent{})

	assert.Len(t, got, 1)
}
