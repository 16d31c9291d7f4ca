package mock

import (
	"context"
	"time"

	"github.com/fwojciec/sitelens"
)

var _ sitelens.Scheduler = (*Scheduler)(nil)

// Scheduler is a mock implementation of sitelens.Scheduler.
type Scheduler struct {
	ScheduleFn   func(ctx context.Context, job sitelens.ScheduledJob) (time.Time, error)
	UnscheduleFn func(id string) bool
}

func (s *Scheduler) Schedule(ctx context.Context, job sitelens.ScheduledJob) (time.Time, error) {
	return s.ScheduleFn(ctx, job)
}

func (s *Scheduler) Unschedule(id string) bool {
	return s.UnscheduleFn(id)
}
