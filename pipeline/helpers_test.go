package pipeline_test

import (
	"context"
	"sync"

	"github.com/fwojciec/sitelens"
	"github.com/fwojciec/sitelens/mock"
)

// taskStore is an in-memory task store that records every update.
type taskStore struct {
	mu      sync.Mutex
	tasks   map[int]*sitelens.Task
	updates []sitelens.TaskUpdate
	nextID  int
}

func newTaskStore(tasks ...*sitelens.Task) *taskStore {
	s := &taskStore{tasks: make(map[int]*sitelens.Task), nextID: 1}
	for _, t := range tasks {
		s.tasks[t.ID] = t
		if t.ID >= s.nextID {
			s.nextID = t.ID + 1
		}
	}
	return s
}

func (s *taskStore) service() *mock.TaskService {
	return &mock.TaskService{
		CreateTaskFn: func(_ context.Context, task *sitelens.Task) error {
			s.mu.Lock()
			defer s.mu.Unlock()
			task.ID = s.nextID
			s.nextID++
			cp := *task
			s.tasks[task.ID] = &cp
			return nil
		},
		FindTaskByIDFn: func(_ context.Context, id int) (*sitelens.Task, error) {
			s.mu.Lock()
			defer s.mu.Unlock()
			task, ok := s.tasks[id]
			if !ok {
				return nil, sitelens.Errorf(sitelens.ENOTFOUND, "Task not found")
			}
			cp := *task
			return &cp, nil
		},
		UpdateTaskFn: func(_ context.Context, id int, upd sitelens.TaskUpdate) (*sitelens.Task, error) {
			s.mu.Lock()
			defer s.mu.Unlock()
			task, ok := s.tasks[id]
			if !ok {
				return nil, sitelens.Errorf(sitelens.ENOTFOUND, "Task not found")
			}
			s.updates = append(s.updates, upd)
			task.Apply(upd)
			cp := *task
			return &cp, nil
		},
	}
}

// progress returns every progress event written to the store.
func (s *taskStore) progress() []sitelens.ProgressEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []sitelens.ProgressEvent
	for _, u := range s.updates {
		if u.Progress != nil {
			out = append(out, *u.Progress)
		}
	}
	return out
}

func (s *taskStore) get(id int) *sitelens.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tasks[id]
}

func ptr[T any](v T) *T {
	return &v
}
