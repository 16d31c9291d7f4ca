package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/sitelens"
	"github.com/google/uuid"
)

// Ensure LoggingTaskRunner implements sitelens.TaskRunner.
var _ sitelens.TaskRunner = (*LoggingTaskRunner)(nil)

// LoggingTaskRunner wraps a TaskRunner, logging the start and end of every
// batch under a fresh run id.
type LoggingTaskRunner struct {
	next   sitelens.TaskRunner
	logger *slog.Logger
	newID  func() string
}

// NewLoggingTaskRunner creates a new LoggingTaskRunner.
func NewLoggingTaskRunner(next sitelens.TaskRunner, logger *slog.Logger) *LoggingTaskRunner {
	return &LoggingTaskRunner{
		next:   next,
		logger: logger,
		newID:  func() string { return uuid.New().String() },
	}
}

// Create logs task creation and delegates to the wrapped runner.
func (r *LoggingTaskRunner) Create(ctx context.Context, req sitelens.TaskRequest) (task *sitelens.Task, err error) {
	defer func() {
		if err != nil {
			r.logger.Warn("create task", "urls", len(req.URLs), "domain", req.Domain, "err", err)
			return
		}
		r.logger.Info("create task", "task", task.ID, "urls", len(task.URLs), "domain", task.Domain, "scheduled", task.IsScheduled)
	}()
	return r.next.Create(ctx, req)
}

// Run logs the batch and delegates to the wrapped runner.
func (r *LoggingTaskRunner) Run(ctx context.Context, id int, opts sitelens.RunOptions) (*sitelens.Task, error) {
	return r.logRun(id, "run", func() (*sitelens.Task, error) {
		return r.next.Run(ctx, id, opts)
	})
}

// Rerun logs the batch and delegates to the wrapped runner.
func (r *LoggingTaskRunner) Rerun(ctx context.Context, id int, req sitelens.RerunRequest) (*sitelens.Task, error) {
	return r.logRun(id, "rerun", func() (*sitelens.Task, error) {
		return r.next.Rerun(ctx, id, req)
	})
}

func (r *LoggingTaskRunner) logRun(id int, kind string, fn func() (*sitelens.Task, error)) (*sitelens.Task, error) {
	logger := r.logger.With("run", r.newID(), "task", id, "kind", kind)
	logger.Info("batch start")

	begin := time.Now()
	task, err := fn()
	if err != nil {
		logger.Error("batch failed", "duration", time.Since(begin), "err", err)
		return nil, err
	}

	logger.Info("batch done",
		"status", task.Status,
		"urls", len(task.Results),
		"failed", len(task.Errors),
		"language", task.Language,
		"compared", task.Comparison != nil,
		"duration", time.Since(begin),
	)
	return task, nil
}
