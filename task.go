package sitelens

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// DefaultInstruction is used when a task is created without an instruction.
const DefaultInstruction = "Extract all text content from the page"

// TaskStatus is the lifecycle status of a task.
type TaskStatus string

// Task statuses.
const (
	TaskPending    TaskStatus = "pending"
	TaskProcessing TaskStatus = "processing"
	TaskCompleted  TaskStatus = "completed"
	TaskError      TaskStatus = "error"
)

// Valid reports whether s is a known status.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskPending, TaskProcessing, TaskCompleted, TaskError:
		return true
	}
	return false
}

// ResultStatus discriminates per-URL outcomes.
type ResultStatus string

// Per-URL outcomes.
const (
	ResultSuccess ResultStatus = "success"
	ResultError   ResultStatus = "error"
)

// ScrapeResult is the successful outcome of processing one URL.
type ScrapeResult struct {
	URL           string          `json:"url"`
	Domain        string          `json:"domain"`
	Language      string          `json:"language"`
	ExtractedData *Record         `json:"extracted_data"`
	Analysis      *AnalysisRecord `json:"analysis"`
	ContentHash   string          `json:"content_hash,omitempty"`
}

// URLResult is the outcome for one URL of a batch. A failed URL carries
// an error message and no data.
type URLResult struct {
	URL    string        `json:"url"`
	Status ResultStatus  `json:"status"`
	Data   *ScrapeResult `json:"data,omitempty"`
	Error  string        `json:"error,omitempty"`
}

// Succeeded reports whether the URL was processed successfully.
func (r URLResult) Succeeded() bool {
	return r.Status == ResultSuccess && r.Data != nil
}

// URLError records the failure of one URL.
type URLError struct {
	URL   string `json:"url,omitempty"`
	Error string `json:"error"`
}

// Task is one batch of URLs sharing an instruction and domain.
type Task struct {
	ID          int        `json:"id"`
	Name        string     `json:"name"`
	URLs        []string   `json:"urls"`
	Instruction string     `json:"instruction"`
	Domain      string     `json:"domain"`
	Status      TaskStatus `json:"status"`
	Tags        []string   `json:"tags"`
	Starred     bool       `json:"starred"`
	Archived    bool       `json:"archived"`

	Progress               *ProgressEvent `json:"progress"`
	CurrentURLIndex        int            `json:"current_url_index"`
	TotalURLs              int            `json:"total_urls"`
	EstimatedTimeRemaining *int           `json:"estimated_time_remaining"`
	Language               string         `json:"language"`

	Results           []URLResult `json:"results"`
	Errors            []URLError  `json:"errors"`
	Comparison        *Record     `json:"comparison"`
	ComparisonEnabled *bool       `json:"comparison_enabled"`

	IsScheduled  bool       `json:"is_scheduled"`
	ScheduleType string     `json:"schedule_type,omitempty"`
	ScheduleTime string     `json:"schedule_time,omitempty"`
	NextRun      *time.Time `json:"next_run,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at"`
}

// Validate returns an error if the task contains invalid fields.
func (t *Task) Validate() error {
	if t.Name == "" {
		return Errorf(EINVALID, "task name required")
	}
	if len(t.URLs) == 0 {
		return Errorf(EINVALID, "no URLs provided")
	}
	if _, ok := FindDomain(t.Domain); !ok {
		return Errorf(EINVALID, "unknown domain %q", t.Domain)
	}
	return nil
}

// SiteResults returns the successful results in batch order.
func (t *Task) SiteResults() []SiteResult {
	return SiteResults(t.Results)
}

// SiteResults returns the successful entries of results in order.
func SiteResults(results []URLResult) []SiteResult {
	var out []SiteResult
	for _, r := range results {
		if !r.Succeeded() {
			continue
		}
		out = append(out, SiteResult{
			URL:           r.URL,
			ExtractedData: r.Data.ExtractedData,
			Analysis:      r.Data.Analysis,
		})
	}
	return out
}

// DefaultTaskName names a task that was created without one.
func DefaultTaskName(urls []string) string {
	if len(urls) == 1 {
		return fmt.Sprintf("Scrape %s", SiteIdentifier(urls[0]))
	}
	return fmt.Sprintf("Scrape %d URLs", len(urls))
}

// CleanTags trims tags and drops blanks and duplicates.
func CleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool)
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
	}
	return out
}

// TaskService represents a service for managing tasks.
type TaskService interface {
	// CreateTask stores a new task and assigns its ID and creation time.
	CreateTask(ctx context.Context, task *Task) error

	// FindTaskByID retrieves a task by ID.
	// Returns ENOTFOUND if the task does not exist.
	FindTaskByID(ctx context.Context, id int) (*Task, error)

	// FindTasks retrieves tasks matching the filter.
	FindTasks(ctx context.Context, filter TaskFilter) ([]*Task, error)

	// UpdateTask applies a partial update.
	// Returns ENOTFOUND if the task does not exist.
	UpdateTask(ctx context.Context, id int, upd TaskUpdate) (*Task, error)

	// DeleteTask permanently removes a task.
	// Returns ENOTFOUND if the task does not exist.
	DeleteTask(ctx context.Context, id int) error

	// DeleteTasks removes every listed task and returns how many existed.
	DeleteTasks(ctx context.Context, ids []int) (int, error)

	// ToggleStar flips the starred flag and returns its new value.
	ToggleStar(ctx context.Context, id int) (bool, error)

	// ToggleArchive flips the archived flag and returns its new value.
	ToggleArchive(ctx context.Context, id int) (bool, error)
}

// SortOrder is the direction of a task listing.
type SortOrder string

// Sort directions.
const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// Sortable task columns.
var TaskSortFields = []string{"created_at", "name", "status", "domain", "completed_at"}

// TaskFilter represents a filter for FindTasks.
type TaskFilter struct {
	ID        *int        `json:"id"`
	Domain    *string     `json:"domain"`
	Status    *TaskStatus `json:"status"`
	Starred   *bool       `json:"starred"`
	Archived  *bool       `json:"archived"`
	Scheduled *bool       `json:"scheduled"`
	DateFrom  *time.Time  `json:"date_from"`
	DateTo    *time.Time  `json:"date_to"`
	Tag       *string     `json:"tag"`

	// Search matches the name, URLs or instruction.
	Search string `json:"search"`

	SortBy    string    `json:"sort_by"`
	SortOrder SortOrder `json:"sort_order"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// TaskUpdate represents fields that can be updated on a task. Nil fields
// are left unchanged; the Clear flags reset nullable columns.
type TaskUpdate struct {
	Name              *string
	URLs              []string
	Instruction       *string
	Domain            *string
	Status            *TaskStatus
	Tags              []string
	Language          *string
	ComparisonEnabled *bool

	Results []URLResult
	Errors  []URLError

	Progress      *ProgressEvent
	ClearProgress bool

	Comparison      *Record
	ClearComparison bool

	CurrentURLIndex *int
	TotalURLs       *int

	EstimatedTimeRemaining *int
	ClearEstimate          bool

	CompletedAt      *time.Time
	ClearCompletedAt bool

	IsScheduled  *bool
	ScheduleType *string
	ScheduleTime *string
	NextRun      *time.Time
}

// TaskRequest describes a new task.
type TaskRequest struct {
	Name             string   `json:"name"`
	URLs             []string `json:"urls"`
	Instruction      string   `json:"instruction"`
	Domain           string   `json:"domain"`
	Tags             []string `json:"tags"`
	EnableComparison *bool    `json:"enable_comparison"`

	// Schedule, when set, creates a pending task run by the scheduler.
	Schedule *Trigger `json:"-"`
}

// RunOptions override stored task inputs for a single run. Empty fields
// inherit the stored values.
type RunOptions struct {
	URLs             []string
	Instruction      string
	Domain           string
	EnableComparison *bool
}

// RerunRequest overrides the inputs of a rerun. Nil or blank fields inherit
// the stored values, except Tags where an empty non-nil slice clears them.
type RerunRequest struct {
	Name             *string  `json:"name"`
	URLs             []string `json:"urls"`
	Instruction      *string  `json:"instruction"`
	Domain           *string  `json:"domain"`
	Tags             []string `json:"tags"`
	EnableComparison *bool    `json:"enable_comparison"`
}

// TaskRunner creates and executes tasks.
type TaskRunner interface {
	// Create validates req and stores a new task without running it.
	Create(ctx context.Context, req TaskRequest) (*Task, error)

	// Run executes the batch of a stored task and returns the final task.
	Run(ctx context.Context, id int, opts RunOptions) (*Task, error)

	// Rerun clears the previous outcome of a task and runs it again.
	Rerun(ctx context.Context, id int, req RerunRequest) (*Task, error)
}

// Scraper processes a single URL.
type Scraper interface {
	Scrape(ctx context.Context, req ScrapeRequest, progress ProgressFunc) (*ScrapeResult, error)
}

// ScrapeRequest carries the inputs of processing one URL.
type ScrapeRequest struct {
	URL         string
	Instruction string
	Domain      string
}

// Apply copies the set fields of upd onto t.
func (t *Task) Apply(upd TaskUpdate) {
	if upd.Name != nil {
		t.Name = *upd.Name
	}
	if upd.URLs != nil {
		t.URLs = upd.URLs
	}
	if upd.Instruction != nil {
		t.Instruction = *upd.Instruction
	}
	if upd.Domain != nil {
		t.Domain = *upd.Domain
	}
	if upd.Status != nil {
		t.Status = *upd.Status
	}
	if upd.Tags != nil {
		t.Tags = upd.Tags
	}
	if upd.Language != nil {
		t.Language = *upd.Language
	}
	if upd.ComparisonEnabled != nil {
		v := *upd.ComparisonEnabled
		t.ComparisonEnabled = &v
	}
	if upd.Results != nil {
		t.Results = upd.Results
	}
	if upd.Errors != nil {
		t.Errors = upd.Errors
	}

	switch {
	case upd.ClearProgress:
		t.Progress = nil
	case upd.Progress != nil:
		ev := *upd.Progress
		t.Progress = &ev
	}
	switch {
	case upd.ClearComparison:
		t.Comparison = nil
	case upd.Comparison != nil:
		t.Comparison = upd.Comparison
	}
	if upd.CurrentURLIndex != nil {
		t.CurrentURLIndex = *upd.CurrentURLIndex
	}
	if upd.TotalURLs != nil {
		t.TotalURLs = *upd.TotalURLs
	}
	switch {
	case upd.ClearEstimate:
		t.EstimatedTimeRemaining = nil
	case upd.EstimatedTimeRemaining != nil:
		v := *upd.EstimatedTimeRemaining
		t.EstimatedTimeRemaining = &v
	}
	switch {
	case upd.ClearCompletedAt:
		t.CompletedAt = nil
	case upd.CompletedAt != nil:
		v := *upd.CompletedAt
		t.CompletedAt = &v
	}

	if upd.IsScheduled != nil {
		t.IsScheduled = *upd.IsScheduled
	}
	if upd.ScheduleType != nil {
		t.ScheduleType = *upd.ScheduleType
	}
	if upd.ScheduleTime != nil {
		t.ScheduleTime = *upd.ScheduleTime
	}
	if upd.NextRun != nil {
		v := *upd.NextRun
		t.NextRun = &v
	}
}
