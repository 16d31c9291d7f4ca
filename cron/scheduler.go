// Package cron dispatches scheduled tasks on wall-clock triggers.
package cron

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/fwojciec/sitelens"
	"github.com/robfig/cron/v3"
	"golang.org/x/sync/singleflight"
)

// Ensure Scheduler implements sitelens.Scheduler at compile time.
var _ sitelens.Scheduler = (*Scheduler)(nil)

// Scheduler runs tasks on daily, weekly and one-shot triggers. Scheduling
// a job ID that is already registered replaces the earlier registration.
// Overlapping fires of the same job share a single execution.
type Scheduler struct {
	runner sitelens.TaskRunner
	tasks  sitelens.TaskService
	logger *slog.Logger
	now    func() time.Time
	loc    *time.Location

	cron    *cron.Cron
	group   singleflight.Group
	ctx     context.Context
	cancel  context.CancelFunc
	mu      sync.Mutex
	entries map[string]cron.EntryID
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scheduler) {
		s.logger = logger
	}
}

// WithLocation sets the time zone triggers are evaluated in. Defaults to
// time.Local.
func WithLocation(loc *time.Location) Option {
	return func(s *Scheduler) {
		s.loc = loc
	}
}

// WithClock sets the function used to read the current time.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) {
		s.now = now
	}
}

// NewScheduler creates a Scheduler that executes jobs through runner and
// records their next run times in tasks.
func NewScheduler(runner sitelens.TaskRunner, tasks sitelens.TaskService, opts ...Option) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		runner:  runner,
		tasks:   tasks,
		logger:  slog.Default(),
		now:     time.Now,
		loc:     time.Local,
		ctx:     ctx,
		cancel:  cancel,
		entries: make(map[string]cron.EntryID),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.cron = cron.New(cron.WithLocation(s.loc))
	return s
}

// Start begins dispatching registered jobs.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts dispatching and cancels running jobs. It waits for them to
// return or for ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.cancel()
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Schedule registers job and stores its next run time on the task.
func (s *Scheduler) Schedule(ctx context.Context, job sitelens.ScheduledJob) (time.Time, error) {
	if job.ID == "" {
		job.ID = sitelens.JobID(job.TaskID)
	}
	sched, err := Schedule(job.Trigger, s.loc)
	if err != nil {
		return time.Time{}, err
	}
	next := sched.Next(s.now())
	if next.IsZero() {
		return time.Time{}, sitelens.Errorf(sitelens.EINVALID, "schedule time %s is in the past", job.Trigger)
	}

	s.mu.Lock()
	if id, ok := s.entries[job.ID]; ok {
		s.cron.Remove(id)
	}
	s.entries[job.ID] = s.cron.Schedule(sched, cron.FuncJob(func() { s.fire(job) }))
	s.mu.Unlock()

	s.logger.Info("job scheduled",
		"job", job.ID,
		"trigger", string(job.Trigger.Kind),
		"at", job.Trigger.String(),
		"next_run", next.Format(time.RFC3339),
	)

	if _, err := s.tasks.UpdateTask(ctx, job.TaskID, sitelens.TaskUpdate{NextRun: &next}); err != nil {
		s.Unschedule(job.ID)
		return time.Time{}, err
	}
	return next, nil
}

// Unschedule removes a job. It reports whether the job was registered.
func (s *Scheduler) Unschedule(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[id]
	if !ok {
		return false
	}
	s.cron.Remove(entry)
	delete(s.entries, id)
	return true
}

// Jobs returns the IDs of registered jobs with their next run times.
func (s *Scheduler) Jobs() map[string]time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]time.Time, len(s.entries))
	for id, entry := range s.entries {
		out[id] = s.cron.Entry(entry).Next
	}
	return out
}

// Reload registers every stored task marked as scheduled. Tasks whose
// trigger cannot be restored are logged and skipped. It returns the number
// of jobs registered.
func (s *Scheduler) Reload(ctx context.Context) (int, error) {
	scheduled := true
	tasks, err := s.tasks.FindTasks(ctx, sitelens.TaskFilter{Scheduled: &scheduled})
	if err != nil {
		return 0, err
	}

	n := 0
	for _, task := range tasks {
		trigger, err := sitelens.ParseTrigger(task.ScheduleType, task.ScheduleTime)
		if err != nil {
			s.logger.Warn("skipping scheduled task", "task", task.ID, "error", sitelens.ErrorMessage(err))
			continue
		}
		if _, err := s.Schedule(ctx, sitelens.ScheduledJob{
			ID:          sitelens.JobID(task.ID),
			TaskID:      task.ID,
			Trigger:     trigger,
			URLs:        task.URLs,
			Instruction: task.Instruction,
			Domain:      task.Domain,
		}); err != nil {
			s.logger.Warn("skipping scheduled task", "task", task.ID, "error", sitelens.ErrorMessage(err))
			continue
		}
		n++
	}
	return n, nil
}

// fire executes one trigger of job. Concurrent fires of the same job wait
// for the execution in flight instead of starting another.
func (s *Scheduler) fire(job sitelens.ScheduledJob) {
	_, _, _ = s.group.Do(job.ID, func() (any, error) {
		s.execute(job)
		return nil, nil
	})

	if job.Trigger.Kind == sitelens.TriggerOnce {
		s.Unschedule(job.ID)
		return
	}

	s.mu.Lock()
	_, ok := s.entries[job.ID]
	s.mu.Unlock()
	if !ok {
		return
	}
	sched, err := Schedule(job.Trigger, s.loc)
	if err != nil {
		return
	}
	next := sched.Next(s.now())
	_, _ = s.tasks.UpdateTask(context.WithoutCancel(s.ctx), job.TaskID, sitelens.TaskUpdate{NextRun: &next})
}

func (s *Scheduler) execute(job sitelens.ScheduledJob) {
	start := s.now()
	s.logger.Info("scheduled run start", "job", job.ID, "task", job.TaskID)

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("scheduled run panicked", "job", job.ID, "task", job.TaskID, "panic", r)
			s.markFailed(job.TaskID, fmt.Sprint(r))
		}
	}()

	task, err := s.runner.Run(s.ctx, job.TaskID, sitelens.RunOptions{
		URLs:        job.URLs,
		Instruction: job.Instruction,
		Domain:      job.Domain,
	})
	if err != nil {
		s.logger.Error("scheduled run failed", "job", job.ID, "task", job.TaskID, "error", err)
		if sitelens.ErrorCode(err) == sitelens.ENOTFOUND {
			s.Unschedule(job.ID)
			return
		}
		s.markFailed(job.TaskID, sitelens.ErrorMessage(err))
		return
	}

	s.logger.Info("scheduled run done",
		"job", job.ID,
		"task", job.TaskID,
		"status", string(task.Status),
		"duration", s.now().Sub(start),
	)
}

// markFailed records a top-level failure of a scheduled execution.
func (s *Scheduler) markFailed(taskID int, msg string) {
	status := sitelens.TaskError
	completedAt := s.now()
	_, err := s.tasks.UpdateTask(context.WithoutCancel(s.ctx), taskID, sitelens.TaskUpdate{
		Status:        &status,
		Errors:        []sitelens.URLError{{Error: msg}},
		CompletedAt:   &completedAt,
		ClearProgress: true,
		ClearEstimate: true,
	})
	if err != nil {
		s.logger.Error("failed to record scheduled run failure", "task", taskID, "error", err)
	}
}
