package gin_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/fwojciec/sitelens"
	sitelensgin "github.com/fwojciec/sitelens/gin"
	"github.com/fwojciec/sitelens/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	server    *sitelensgin.Server
	tasks     *mock.TaskService
	runner    *mock.TaskRunner
	scheduler *mock.Scheduler
	asker     *mock.Asker
}

func newFixture() *fixture {
	f := &fixture{
		tasks:     &mock.TaskService{},
		runner:    &mock.TaskRunner{},
		scheduler: &mock.Scheduler{},
		asker:     &mock.Asker{},
	}
	f.server = sitelensgin.NewServer()
	f.server.Tasks = f.tasks
	f.server.Runner = f.runner
	f.server.Scheduler = f.scheduler
	f.server.Asker = f.asker
	return f
}

func (f *fixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = strings.NewReader(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	f.server.Handler().ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func assertError(t *testing.T, w *httptest.ResponseRecorder, status int, msg string) {
	t.Helper()
	assert.Equal(t, status, w.Code)
	assert.Equal(t, msg, decode(t, w)["error"])
}

func notFound(context.Context, int) (*sitelens.Task, error) {
	return nil, sitelens.Errorf(sitelens.ENOTFOUND, "Task not found")
}

func TestDomains(t *testing.T) {
	t.Parallel()

	f := newFixture()
	w := f.do(t, http.MethodGet, "/api/domains", nil)

	require.Equal(t, http.StatusOK, w.Code)
	domains := decode(t, w)["domains"].(map[string]any)
	assert.Len(t, domains, len(sitelens.Domains()))
	ecommerce := domains["ecommerce"].(map[string]any)
	assert.NotEmpty(t, ecommerce["name"])
	assert.NotEmpty(t, ecommerce["parameters"])
	assert.Contains(t, ecommerce["description"], "focused analysis")
}

func TestScrape(t *testing.T) {
	t.Parallel()

	t.Run("creates and runs the task", func(t *testing.T) {
		t.Parallel()

		f := newFixture()
		var created sitelens.TaskRequest
		f.runner.CreateFn = func(_ context.Context, req sitelens.TaskRequest) (*sitelens.Task, error) {
			created = req
			return &sitelens.Task{ID: 7}, nil
		}
		f.runner.RunFn = func(_ context.Context, id int, _ sitelens.RunOptions) (*sitelens.Task, error) {
			return &sitelens.Task{
				ID:       id,
				Status:   sitelens.TaskCompleted,
				Domain:   "news",
				Language: "de",
				Results:  []sitelens.URLResult{{URL: "https://a.com", Status: sitelens.ResultError, Error: "Error scraping https://a.com: boom"}},
				Errors:   []sitelens.URLError{{URL: "https://a.com", Error: "Error scraping https://a.com: boom"}},
			}, nil
		}

		w := f.do(t, http.MethodPost, "/api/scrape", map[string]any{
			"urls":              []string{"https://a.com"},
			"instruction":       "Headlines",
			"domain":            "news",
			"enable_comparison": true,
			"task_name":         "Morning news",
			"tags":              []string{"daily"},
		})

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		body := decode(t, w)
		assert.EqualValues(t, 7, body["task_id"])
		assert.Equal(t, "completed", body["status"])
		assert.Equal(t, "de", body["language"])
		assert.Len(t, body["errors"], 1)
		assert.Nil(t, body["comparison"])
		assert.Equal(t, "Morning news", created.Name)
		assert.Equal(t, "news", created.Domain)
		assert.Equal(t, []string{"daily"}, created.Tags)
		require.NotNil(t, created.EnableComparison)
		assert.True(t, *created.EnableComparison)
		assert.Nil(t, created.Schedule)
	})

	t.Run("rejects missing URLs", func(t *testing.T) {
		t.Parallel()

		f := newFixture()
		w := f.do(t, http.MethodPost, "/api/scrape", map[string]any{"urls": []string{}})
		assertError(t, w, http.StatusBadRequest, "No URLs provided")
	})

	t.Run("rejects malformed body", func(t *testing.T) {
		t.Parallel()

		f := newFixture()
		w := f.do(t, http.MethodPost, "/api/scrape", `{"urls": `)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("maps validation errors to 400", func(t *testing.T) {
		t.Parallel()

		f := newFixture()
		f.runner.CreateFn = func(context.Context, sitelens.TaskRequest) (*sitelens.Task, error) {
			return nil, sitelens.Errorf(sitelens.EINVALID, "unknown domain %q", "astrology")
		}

		w := f.do(t, http.MethodPost, "/api/scrape", map[string]any{"urls": []string{"https://a.com"}, "domain": "astrology"})
		assertError(t, w, http.StatusBadRequest, `unknown domain "astrology"`)
	})

	t.Run("maps internal errors to 500", func(t *testing.T) {
		t.Parallel()

		f := newFixture()
		f.runner.CreateFn = func(context.Context, sitelens.TaskRequest) (*sitelens.Task, error) {
			return &sitelens.Task{ID: 1}, nil
		}
		f.runner.RunFn = func(context.Context, int, sitelens.RunOptions) (*sitelens.Task, error) {
			return nil, errors.New("database is locked")
		}

		w := f.do(t, http.MethodPost, "/api/scrape", map[string]any{"urls": []string{"https://a.com"}})
		assertError(t, w, http.StatusInternalServerError, "database is locked")
	})

	t.Run("schedules instead of running", func(t *testing.T) {
		t.Parallel()

		f := newFixture()
		next := time.Date(2030, 1, 1, 9, 30, 0, 0, time.UTC)
		var created sitelens.TaskRequest
		f.runner.CreateFn = func(_ context.Context, req sitelens.TaskRequest) (*sitelens.Task, error) {
			created = req
			return &sitelens.Task{ID: 3, URLs: req.URLs, Domain: "general"}, nil
		}
		f.runner.RunFn = func(context.Context, int, sitelens.RunOptions) (*sitelens.Task, error) {
			t.Fatal("scheduled task must not run immediately")
			return nil, nil
		}
		var job sitelens.ScheduledJob
		f.scheduler.ScheduleFn = func(_ context.Context, j sitelens.ScheduledJob) (time.Time, error) {
			job = j
			return next, nil
		}

		w := f.do(t, http.MethodPost, "/api/scrape", map[string]any{
			"urls":          []string{"https://a.com"},
			"is_scheduled":  true,
			"schedule_type": "daily",
			"schedule_time": "09:30",
		})

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		body := decode(t, w)
		assert.Equal(t, "Task scheduled successfully", body["message"])
		assert.Equal(t, "daily", body["schedule_type"])
		assert.Equal(t, "2030-01-01T09:30:00Z", body["next_run"])
		require.NotNil(t, created.Schedule)
		assert.Equal(t, sitelens.Daily(9, 30), *created.Schedule)
		assert.Equal(t, "task_3", job.ID)
		assert.Equal(t, 3, job.TaskID)
		assert.Equal(t, []string{"https://a.com"}, job.URLs)
	})
}

func TestSchedule(t *testing.T) {
	t.Parallel()

	t.Run("requires type and time", func(t *testing.T) {
		t.Parallel()

		f := newFixture()
		w := f.do(t, http.MethodPost, "/api/schedule", map[string]any{"urls": []string{"https://a.com"}, "schedule_type": "daily"})
		assertError(t, w, http.StatusBadRequest, "Schedule type and time are required")
	})

	t.Run("rejects unknown weekday", func(t *testing.T) {
		t.Parallel()

		f := newFixture()
		w := f.do(t, http.MethodPost, "/api/schedule", map[string]any{
			"urls":          []string{"https://a.com"},
			"schedule_type": "weekly",
			"schedule_time": "someday 09:30",
		})
		assertError(t, w, http.StatusBadRequest, `unknown weekday "someday"`)
	})

	t.Run("defaults the task name", func(t *testing.T) {
		t.Parallel()

		f := newFixture()
		var name string
		f.runner.CreateFn = func(_ context.Context, req sitelens.TaskRequest) (*sitelens.Task, error) {
			name = req.Name
			return &sitelens.Task{ID: 1}, nil
		}
		f.scheduler.ScheduleFn = func(context.Context, sitelens.ScheduledJob) (time.Time, error) {
			return time.Date(2030, 1, 7, 9, 30, 0, 0, time.UTC), nil
		}

		w := f.do(t, http.MethodPost, "/api/schedule", map[string]any{
			"urls":          []string{"https://a.com"},
			"schedule_type": "weekly",
			"schedule_time": "monday 09:30",
		})

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, "Scheduled Task", name)
	})

	t.Run("removes the task when scheduling fails", func(t *testing.T) {
		t.Parallel()

		f := newFixture()
		f.runner.CreateFn = func(context.Context, sitelens.TaskRequest) (*sitelens.Task, error) {
			return &sitelens.Task{ID: 5}, nil
		}
		f.scheduler.ScheduleFn = func(context.Context, sitelens.ScheduledJob) (time.Time, error) {
			return time.Time{}, sitelens.Errorf(sitelens.EINVALID, "schedule time is in the past")
		}
		var deleted int
		f.tasks.DeleteTaskFn = func(_ context.Context, id int) error {
			deleted = id
			return nil
		}

		w := f.do(t, http.MethodPost, "/api/schedule", map[string]any{
			"urls":          []string{"https://a.com"},
			"schedule_type": "once",
			"schedule_time": "2001-01-01T10:00",
		})

		assertError(t, w, http.StatusBadRequest, "schedule time is in the past")
		assert.Equal(t, 5, deleted)
	})
}

func TestTaskList(t *testing.T) {
	t.Parallel()

	t.Run("parses filters", func(t *testing.T) {
		t.Parallel()

		f := newFixture()
		var filter sitelens.TaskFilter
		f.tasks.FindTasksFn = func(_ context.Context, fl sitelens.TaskFilter) ([]*sitelens.Task, error) {
			filter = fl
			return []*sitelens.Task{{ID: 1, Name: "a"}}, nil
		}

		w := f.do(t, http.MethodGet, "/api/tasks?domain=news&status=completed&starred=true&archived=false&tags=daily&search=foo&sort_by=name&sort_order=ASC&date_from=2025-01-01&date_to=2025-01-31&limit=10", nil)

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Len(t, decode(t, w)["tasks"], 1)
		require.NotNil(t, filter.Domain)
		assert.Equal(t, "news", *filter.Domain)
		require.NotNil(t, filter.Status)
		assert.Equal(t, sitelens.TaskCompleted, *filter.Status)
		require.NotNil(t, filter.Starred)
		assert.True(t, *filter.Starred)
		require.NotNil(t, filter.Archived)
		assert.False(t, *filter.Archived)
		assert.Nil(t, filter.Scheduled)
		require.NotNil(t, filter.Tag)
		assert.Equal(t, "daily", *filter.Tag)
		assert.Equal(t, "foo", filter.Search)
		assert.Equal(t, "name", filter.SortBy)
		assert.Equal(t, sitelens.SortAsc, filter.SortOrder)
		assert.Equal(t, 10, filter.Limit)
		require.NotNil(t, filter.DateFrom)
		assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), *filter.DateFrom)
		require.NotNil(t, filter.DateTo)
		assert.Equal(t, time.Date(2025, 1, 31, 23, 59, 59, 0, time.UTC), *filter.DateTo)
	})

	t.Run("defaults to newest first", func(t *testing.T) {
		t.Parallel()

		f := newFixture()
		var filter sitelens.TaskFilter
		f.tasks.FindTasksFn = func(_ context.Context, fl sitelens.TaskFilter) ([]*sitelens.Task, error) {
			filter = fl
			return []*sitelens.Task{}, nil
		}

		w := f.do(t, http.MethodGet, "/api/tasks", nil)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "created_at", filter.SortBy)
		assert.Equal(t, sitelens.SortDesc, filter.SortOrder)
		assert.Equal(t, []any{}, decode(t, w)["tasks"])
	})

	t.Run("rejects invalid status", func(t *testing.T) {
		t.Parallel()

		f := newFixture()
		w := f.do(t, http.MethodGet, "/api/tasks?status=done", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("rejects invalid date", func(t *testing.T) {
		t.Parallel()

		f := newFixture()
		w := f.do(t, http.MethodGet, "/api/tasks?date_from=yesterday", nil)
		assertError(t, w, http.StatusBadRequest, `invalid date "yesterday"`)
	})
}

func TestTaskView(t *testing.T) {
	t.Parallel()

	t.Run("returns the task", func(t *testing.T) {
		t.Parallel()

		f := newFixture()
		f.tasks.FindTaskByIDFn = func(_ context.Context, id int) (*sitelens.Task, error) {
			return &sitelens.Task{ID: id, Name: "prices", Status: sitelens.TaskCompleted}, nil
		}

		w := f.do(t, http.MethodGet, "/api/tasks/12", nil)

		require.Equal(t, http.StatusOK, w.Code)
		body := decode(t, w)
		assert.EqualValues(t, 12, body["id"])
		assert.Equal(t, "prices", body["name"])
	})

	t.Run("returns 404 for missing task", func(t *testing.T) {
		t.Parallel()

		f := newFixture()
		f.tasks.FindTaskByIDFn = notFound

		w := f.do(t, http.MethodGet, "/api/tasks/12", nil)
		assertError(t, w, http.StatusNotFound, "Task not found")
	})

	t.Run("returns 404 for non-numeric id", func(t *testing.T) {
		t.Parallel()

		f := newFixture()
		w := f.do(t, http.MethodGet, "/api/tasks/abc", nil)
		assertError(t, w, http.StatusNotFound, "Task not found")
	})
}

func TestTaskDelete(t *testing.T) {
	t.Parallel()

	t.Run("deletes and unschedules", func(t *testing.T) {
		t.Parallel()

		f := newFixture()
		f.tasks.DeleteTaskFn = func(context.Context, int) error { return nil }
		var unscheduled string
		f.scheduler.UnscheduleFn = func(id string) bool {
			unscheduled = id
			return true
		}

		w := f.do(t, http.MethodDelete, "/api/tasks/4", nil)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Task deleted successfully", decode(t, w)["message"])
		assert.Equal(t, "task_4", unscheduled)
	})

	t.Run("returns 404 for missing task", func(t *testing.T) {
		t.Parallel()

		f := newFixture()
		f.tasks.DeleteTaskFn = func(context.Context, int) error {
			return sitelens.Errorf(sitelens.ENOTFOUND, "Task not found")
		}

		w := f.do(t, http.MethodDelete, "/api/tasks/4", nil)
		assertError(t, w, http.StatusNotFound, "Task not found")
	})
}

func TestTaskBulkDelete(t *testing.T) {
	t.Parallel()

	t.Run("reports count", func(t *testing.T) {
		t.Parallel()

		f := newFixture()
		var ids []int
		f.tasks.DeleteTasksFn = func(_ context.Context, got []int) (int, error) {
			ids = got
			return 2, nil
		}
		f.scheduler.UnscheduleFn = func(string) bool { return false }

		w := f.do(t, http.MethodPost, "/api/tasks/bulk-delete", map[string]any{"task_ids": []int{1, 2, 9}})

		require.Equal(t, http.StatusOK, w.Code)
		body := decode(t, w)
		assert.EqualValues(t, 2, body["deleted_count"])
		assert.Equal(t, "2 task(s) deleted successfully", body["message"])
		assert.Equal(t, []int{1, 2, 9}, ids)
	})

	t.Run("requires ids", func(t *testing.T) {
		t.Parallel()

		f := newFixture()
		w := f.do(t, http.MethodPost, "/api/tasks/bulk-delete", map[string]any{"task_ids": []int{}})
		assertError(t, w, http.StatusBadRequest, "No task IDs provided")
	})
}

func TestTaskProgress(t *testing.T) {
	t.Parallel()

	t.Run("reports stored progress", func(t *testing.T) {
		t.Parallel()

		f := newFixture()
		eta := 40
		f.tasks.FindTaskByIDFn = func(_ context.Context, id int) (*sitelens.Task, error) {
			return &sitelens.Task{
				ID:                     id,
				Status:                 sitelens.TaskProcessing,
				CurrentURLIndex:        2,
				TotalURLs:              5,
				EstimatedTimeRemaining: &eta,
				Progress: &sitelens.ProgressEvent{
					Stage:   sitelens.StageExtracting,
					Message: "Extracting data with AI...",
					Current: 2,
					Total:   5,
				},
			}, nil
		}

		w := f.do(t, http.MethodGet, "/api/tasks/8/progress", nil)

		require.Equal(t, http.StatusOK, w.Code)
		body := decode(t, w)
		assert.EqualValues(t, 8, body["task_id"])
		assert.Equal(t, "processing", body["status"])
		assert.EqualValues(t, 40, body["estimated_time_remaining"])
		progress := body["progress"].(map[string]any)
		assert.Equal(t, "extracting", progress["stage"])
		assert.EqualValues(t, 2, progress["current"])
	})

	t.Run("falls back to counters without progress", func(t *testing.T) {
		t.Parallel()

		f := newFixture()
		f.tasks.FindTaskByIDFn = func(_ context.Context, id int) (*sitelens.Task, error) {
			return &sitelens.Task{ID: id, Status: sitelens.TaskCompleted, CurrentURLIndex: 3, TotalURLs: 3}, nil
		}

		w := f.do(t, http.MethodGet, "/api/tasks/8/progress", nil)

		require.Equal(t, http.StatusOK, w.Code)
		body := decode(t, w)
		progress := body["progress"].(map[string]any)
		assert.EqualValues(t, 3, progress["current"])
		assert.EqualValues(t, 3, progress["total"])
		assert.Nil(t, body["estimated_time_remaining"])
	})
}

func TestTaskAsk(t *testing.T) {
	t.Parallel()

	t.Run("returns the answer", func(t *testing.T) {
		t.Parallel()

		f := newFixture()
		var question string
		f.asker.AskFn = func(_ context.Context, id int, q string) (*sitelens.QnARecord, error) {
			question = q
			return &sitelens.QnARecord{Answer: "A is cheaper", SupportingPoints: []string{"https://a.com"}, Confidence: "high"}, nil
		}

		w := f.do(t, http.MethodPost, "/api/tasks/2/ask", map[string]any{"question": "Which is cheaper?"})

		require.Equal(t, http.StatusOK, w.Code)
		body := decode(t, w)
		assert.Equal(t, "A is cheaper", body["answer"])
		assert.Equal(t, "high", body["confidence"])
		assert.Equal(t, "Which is cheaper?", question)
	})

	t.Run("maps asker errors", func(t *testing.T) {
		t.Parallel()

		f := newFixture()
		f.asker.AskFn = func(context.Context, int, string) (*sitelens.QnARecord, error) {
			return nil, sitelens.Errorf(sitelens.EINVALID, "Task is not completed yet")
		}

		w := f.do(t, http.MethodPost, "/api/tasks/2/ask", map[string]any{"question": "?"})
		assertError(t, w, http.StatusBadRequest, "Task is not completed yet")
	})
}

func TestTaskToggles(t *testing.T) {
	t.Parallel()

	t.Run("star", func(t *testing.T) {
		t.Parallel()

		f := newFixture()
		f.tasks.ToggleStarFn = func(context.Context, int) (bool, error) { return true, nil }

		w := f.do(t, http.MethodPost, "/api/tasks/1/star", nil)

		require.Equal(t, http.StatusOK, w.Code)
		body := decode(t, w)
		assert.Equal(t, true, body["starred"])
		assert.Equal(t, "Task starred", body["message"])
	})

	t.Run("archive", func(t *testing.T) {
		t.Parallel()

		f := newFixture()
		f.tasks.ToggleArchiveFn = func(context.Context, int) (bool, error) { return false, nil }

		w := f.do(t, http.MethodPost, "/api/tasks/1/archive", nil)

		require.Equal(t, http.StatusOK, w.Code)
		body := decode(t, w)
		assert.Equal(t, false, body["archived"])
		assert.Equal(t, "Task unarchived", body["message"])
	})
}

func TestTaskTags(t *testing.T) {
	t.Parallel()

	t.Run("stores cleaned tags", func(t *testing.T) {
		t.Parallel()

		f := newFixture()
		var upd sitelens.TaskUpdate
		f.tasks.UpdateTaskFn = func(_ context.Context, id int, u sitelens.TaskUpdate) (*sitelens.Task, error) {
			upd = u
			return &sitelens.Task{ID: id}, nil
		}

		w := f.do(t, http.MethodPut, "/api/tasks/1/tags", map[string]any{"tags": []string{" a ", "b", "a", ""}})

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, []any{"a", "b"}, decode(t, w)["tags"])
		assert.Equal(t, []string{"a", "b"}, upd.Tags)
	})

	t.Run("clears tags with an empty list", func(t *testing.T) {
		t.Parallel()

		f := newFixture()
		var upd sitelens.TaskUpdate
		f.tasks.UpdateTaskFn = func(_ context.Context, id int, u sitelens.TaskUpdate) (*sitelens.Task, error) {
			upd = u
			return &sitelens.Task{ID: id}, nil
		}

		w := f.do(t, http.MethodPut, "/api/tasks/1/tags", map[string]any{"tags": []string{}})

		require.Equal(t, http.StatusOK, w.Code)
		assert.NotNil(t, upd.Tags)
		assert.Empty(t, upd.Tags)
	})

	t.Run("rejects non-list tags", func(t *testing.T) {
		t.Parallel()

		f := newFixture()
		w := f.do(t, http.MethodPut, "/api/tasks/1/tags", map[string]any{"tags": "a,b"})
		assertError(t, w, http.StatusBadRequest, "Tags must be a list")
	})
}

func TestTaskRerun(t *testing.T) {
	t.Parallel()

	t.Run("passes overrides", func(t *testing.T) {
		t.Parallel()

		f := newFixture()
		var req sitelens.RerunRequest
		f.runner.RerunFn = func(_ context.Context, id int, r sitelens.RerunRequest) (*sitelens.Task, error) {
			req = r
			return &sitelens.Task{ID: id, Status: sitelens.TaskCompleted}, nil
		}

		w := f.do(t, http.MethodPost, "/api/tasks/6/rerun", map[string]any{
			"task_name":         "again",
			"urls":              "https://a.com\n\n https://b.com ",
			"tags":              "x, y,",
			"enable_comparison": false,
		})

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		body := decode(t, w)
		assert.Equal(t, "Analysis re-run completed successfully", body["message"])
		assert.Equal(t, "completed", body["status"])
		require.NotNil(t, req.Name)
		assert.Equal(t, "again", *req.Name)
		assert.Equal(t, []string{"https://a.com", "https://b.com"}, req.URLs)
		assert.Equal(t, []string{"x", "y"}, req.Tags)
		assert.Nil(t, req.Instruction)
		require.NotNil(t, req.EnableComparison)
		assert.False(t, *req.EnableComparison)
	})

	t.Run("inherits everything with an empty body", func(t *testing.T) {
		t.Parallel()

		f := newFixture()
		var req sitelens.RerunRequest
		f.runner.RerunFn = func(_ context.Context, id int, r sitelens.RerunRequest) (*sitelens.Task, error) {
			req = r
			return &sitelens.Task{ID: id, Status: sitelens.TaskCompleted}, nil
		}

		w := f.do(t, http.MethodPost, "/api/tasks/6/rerun", nil)

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Nil(t, req.URLs)
		assert.Nil(t, req.Tags)
		assert.Nil(t, req.EnableComparison)
	})

	t.Run("returns 404 for missing task", func(t *testing.T) {
		t.Parallel()

		f := newFixture()
		f.runner.RerunFn = func(context.Context, int, sitelens.RerunRequest) (*sitelens.Task, error) {
			return nil, sitelens.Errorf(sitelens.ENOTFOUND, "Task not found")
		}

		w := f.do(t, http.MethodPost, "/api/tasks/6/rerun", map[string]any{})
		assertError(t, w, http.StatusNotFound, "Task not found")
	})
}

func TestDownload(t *testing.T) {
	t.Parallel()

	completed := func(_ context.Context, id int) (*sitelens.Task, error) {
		data := sitelens.NewRecord()
		data.Set("title", "Widget")
		return &sitelens.Task{
			ID: id,
			Results: []sitelens.URLResult{{
				URL:    "https://a.com",
				Status: sitelens.ResultSuccess,
				Data: &sitelens.ScrapeResult{
					URL:           "https://a.com",
					ExtractedData: data,
					Analysis:      &sitelens.AnalysisRecord{Summary: "A widget"},
				},
			}},
		}, nil
	}

	t.Run("csv attachment", func(t *testing.T) {
		t.Parallel()

		f := newFixture()
		f.tasks.FindTaskByIDFn = completed

		w := f.do(t, http.MethodGet, "/api/download/3/csv", nil)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
		assert.Equal(t, `attachment; filename="task_3_results.csv"`, w.Header().Get("Content-Disposition"))
		assert.Equal(t, "url,field,value\nhttps://a.com,extracted.title,Widget\nhttps://a.com,analysis.summary,A widget\n", w.Body.String())
	})

	t.Run("json attachment", func(t *testing.T) {
		t.Parallel()

		f := newFixture()
		f.tasks.FindTaskByIDFn = completed

		w := f.do(t, http.MethodGet, "/api/download/3/json", nil)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Content-Type"), "application/json")
		var results []map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &results))
		assert.Equal(t, "https://a.com", results[0]["url"])
	})

	t.Run("rejects unknown format", func(t *testing.T) {
		t.Parallel()

		f := newFixture()
		f.tasks.FindTaskByIDFn = completed

		w := f.do(t, http.MethodGet, "/api/download/3/xml", nil)
		assertError(t, w, http.StatusBadRequest, "Invalid format. Use json, csv, or txt")
	})

	t.Run("404 without results", func(t *testing.T) {
		t.Parallel()

		f := newFixture()
		f.tasks.FindTaskByIDFn = func(_ context.Context, id int) (*sitelens.Task, error) {
			return &sitelens.Task{ID: id}, nil
		}

		w := f.do(t, http.MethodGet, "/api/download/3/json", nil)
		assertError(t, w, http.StatusNotFound, "No results available")
	})

	t.Run("404 when nothing exportable as csv", func(t *testing.T) {
		t.Parallel()

		f := newFixture()
		f.tasks.FindTaskByIDFn = func(_ context.Context, id int) (*sitelens.Task, error) {
			return &sitelens.Task{ID: id, Results: []sitelens.URLResult{{URL: "https://a.com", Status: sitelens.ResultError, Error: "boom"}}}, nil
		}

		w := f.do(t, http.MethodGet, "/api/download/3/csv", nil)
		assertError(t, w, http.StatusNotFound, "No data to export")
	})
}

func TestUnknownRoute(t *testing.T) {
	t.Parallel()

	f := newFixture()
	w := f.do(t, http.MethodGet, "/api/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestServer_OpenClose(t *testing.T) {
	t.Parallel()

	s := sitelensgin.NewServer()
	s.Addr = "127.0.0.1:0"
	require.NoError(t, s.Open())
	t.Cleanup(func() { _ = s.Close() })

	resp, err := http.Get(s.URL() + "/api/domains")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
