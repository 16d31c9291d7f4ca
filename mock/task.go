package mock

import (
	"context"

	"github.com/fwojciec/sitelens"
)

var _ sitelens.TaskService = (*TaskService)(nil)

// TaskService is a mock implementation of sitelens.TaskService.
type TaskService struct {
	CreateTaskFn    func(ctx context.Context, task *sitelens.Task) error
	FindTaskByIDFn  func(ctx context.Context, id int) (*sitelens.Task, error)
	FindTasksFn     func(ctx context.Context, filter sitelens.TaskFilter) ([]*sitelens.Task, error)
	UpdateTaskFn    func(ctx context.Context, id int, upd sitelens.TaskUpdate) (*sitelens.Task, error)
	DeleteTaskFn    func(ctx context.Context, id int) error
	DeleteTasksFn   func(ctx context.Context, ids []int) (int, error)
	ToggleStarFn    func(ctx context.Context, id int) (bool, error)
	ToggleArchiveFn func(ctx context.Context, id int) (bool, error)
}

func (s *TaskService) CreateTask(ctx context.Context, task *sitelens.Task) error {
	return s.CreateTaskFn(ctx, task)
}

func (s *TaskService) FindTaskByID(ctx context.Context, id int) (*sitelens.Task, error) {
	return s.FindTaskByIDFn(ctx, id)
}

func (s *TaskService) FindTasks(ctx context.Context, filter sitelens.TaskFilter) ([]*sitelens.Task, error) {
	return s.FindTasksFn(ctx, filter)
}

func (s *TaskService) UpdateTask(ctx context.Context, id int, upd sitelens.TaskUpdate) (*sitelens.Task, error) {
	return s.UpdateTaskFn(ctx, id, upd)
}

func (s *TaskService) DeleteTask(ctx context.Context, id int) error {
	return s.DeleteTaskFn(ctx, id)
}

func (s *TaskService) DeleteTasks(ctx context.Context, ids []int) (int, error) {
	return s.DeleteTasksFn(ctx, ids)
}

func (s *TaskService) ToggleStar(ctx context.Context, id int) (bool, error) {
	return s.ToggleStarFn(ctx, id)
}

func (s *TaskService) ToggleArchive(ctx context.Context, id int) (bool, error) {
	return s.ToggleArchiveFn(ctx, id)
}

var _ sitelens.TaskRunner = (*TaskRunner)(nil)

// TaskRunner is a mock implementation of sitelens.TaskRunner.
type TaskRunner struct {
	CreateFn func(ctx context.Context, req sitelens.TaskRequest) (*sitelens.Task, error)
	RunFn    func(ctx context.Context, id int, opts sitelens.RunOptions) (*sitelens.Task, error)
	RerunFn  func(ctx context.Context, id int, req sitelens.RerunRequest) (*sitelens.Task, error)
}

func (r *TaskRunner) Create(ctx context.Context, req sitelens.TaskRequest) (*sitelens.Task, error) {
	return r.CreateFn(ctx, req)
}

func (r *TaskRunner) Run(ctx context.Context, id int, opts sitelens.RunOptions) (*sitelens.Task, error) {
	return r.RunFn(ctx, id, opts)
}

func (r *TaskRunner) Rerun(ctx context.Context, id int, req sitelens.RerunRequest) (*sitelens.Task, error) {
	return r.RerunFn(ctx, id, req)
}

var _ sitelens.Scraper = (*Scraper)(nil)

// Scraper is a mock implementation of sitelens.Scraper.
type Scraper struct {
	ScrapeFn func(ctx context.Context, req sitelens.ScrapeRequest, progress sitelens.ProgressFunc) (*sitelens.ScrapeResult, error)
}

func (s *Scraper) Scrape(ctx context.Context, req sitelens.ScrapeRequest, progress sitelens.ProgressFunc) (*sitelens.ScrapeResult, error) {
	return s.ScrapeFn(ctx, req, progress)
}
