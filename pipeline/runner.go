package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fwojciec/sitelens"
)

// Ensure Runner implements sitelens.TaskRunner at compile time.
var _ sitelens.TaskRunner = (*Runner)(nil)

// Runner executes tasks one URL at a time, writing progress to the task
// store after every step.
type Runner struct {
	Tasks       sitelens.TaskService
	Scraper     sitelens.Scraper
	Synthesizer sitelens.Synthesizer

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// batch holds the resolved inputs of one run.
type batch struct {
	urls        []string
	instruction string
	domain      string
	compare     bool
}

func (r *Runner) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

// Create validates req and stores a new pending task.
func (r *Runner) Create(ctx context.Context, req sitelens.TaskRequest) (*sitelens.Task, error) {
	urls := sitelens.CleanURLs(req.URLs)
	if len(urls) == 0 {
		return nil, sitelens.Errorf(sitelens.EINVALID, "No URLs provided")
	}
	domain, err := sitelens.ValidateDomain(req.Domain)
	if err != nil {
		return nil, err
	}

	instruction := strings.TrimSpace(req.Instruction)
	if instruction == "" {
		instruction = sitelens.DefaultInstruction
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = sitelens.DefaultTaskName(urls)
	}

	task := &sitelens.Task{
		Name:              name,
		URLs:              urls,
		Instruction:       instruction,
		Domain:            domain,
		Status:            sitelens.TaskPending,
		Tags:              sitelens.CleanTags(req.Tags),
		TotalURLs:         len(urls),
		Language:          sitelens.DefaultLanguage,
		ComparisonEnabled: req.EnableComparison,
	}
	if req.Schedule != nil {
		if err := req.Schedule.Validate(); err != nil {
			return nil, err
		}
		task.IsScheduled = true
		task.ScheduleType = string(req.Schedule.Kind)
		task.ScheduleTime = req.Schedule.String()
	}
	if err := task.Validate(); err != nil {
		return nil, err
	}

	if err := r.Tasks.CreateTask(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// Run executes the batch of a stored task. Empty fields of opts inherit
// the stored inputs; comparison defaults to the stored flag.
func (r *Runner) Run(ctx context.Context, id int, opts sitelens.RunOptions) (*sitelens.Task, error) {
	task, err := r.Tasks.FindTaskByID(ctx, id)
	if err != nil {
		return nil, err
	}

	b := batch{
		urls:        task.URLs,
		instruction: task.Instruction,
		domain:      task.Domain,
	}
	if urls := sitelens.CleanURLs(opts.URLs); len(urls) > 0 {
		b.urls = urls
	}
	if s := strings.TrimSpace(opts.Instruction); s != "" {
		b.instruction = s
	}
	if opts.Domain != "" {
		b.domain = opts.Domain
	}
	if b.domain, err = sitelens.ValidateDomain(b.domain); err != nil {
		return nil, err
	}
	switch {
	case opts.EnableComparison != nil:
		b.compare = *opts.EnableComparison
	case task.ComparisonEnabled != nil:
		b.compare = *task.ComparisonEnabled
	}

	zero := 0
	total := len(b.urls)
	status := sitelens.TaskProcessing
	if _, err := r.Tasks.UpdateTask(ctx, id, sitelens.TaskUpdate{
		Status:           &status,
		CurrentURLIndex:  &zero,
		TotalURLs:        &total,
		ClearProgress:    true,
		ClearEstimate:    true,
		ClearCompletedAt: true,
	}); err != nil {
		return nil, err
	}
	return r.execute(ctx, id, b)
}

// Rerun clears the previous outcome of a task and runs it again with the
// overrides in req applied.
func (r *Runner) Rerun(ctx context.Context, id int, req sitelens.RerunRequest) (*sitelens.Task, error) {
	task, err := r.Tasks.FindTaskByID(ctx, id)
	if err != nil {
		return nil, err
	}

	b := batch{
		urls:        task.URLs,
		instruction: task.Instruction,
		domain:      task.Domain,
	}
	// Blank overrides inherit the stored value.
	if urls := sitelens.CleanURLs(req.URLs); len(urls) > 0 {
		b.urls = urls
	}
	if len(b.urls) == 0 {
		return nil, sitelens.Errorf(sitelens.EINVALID, "No URLs provided")
	}
	if req.Instruction != nil && strings.TrimSpace(*req.Instruction) != "" {
		b.instruction = strings.TrimSpace(*req.Instruction)
	}
	if b.instruction == "" {
		b.instruction = sitelens.DefaultInstruction
	}
	if req.Domain != nil && strings.TrimSpace(*req.Domain) != "" {
		b.domain = strings.TrimSpace(*req.Domain)
	}
	if b.domain, err = sitelens.ValidateDomain(b.domain); err != nil {
		return nil, err
	}
	b.compare = RerunComparison(task, b.urls, req.EnableComparison)

	name := task.Name
	if req.Name != nil && strings.TrimSpace(*req.Name) != "" {
		name = strings.TrimSpace(*req.Name)
	}
	if name == "" {
		name = fmt.Sprintf("Task #%d", id)
	}
	tags := task.Tags
	if req.Tags != nil {
		tags = sitelens.CleanTags(req.Tags)
	}
	if tags == nil {
		tags = []string{}
	}

	zero := 0
	total := len(b.urls)
	status := sitelens.TaskProcessing
	if _, err := r.Tasks.UpdateTask(ctx, id, sitelens.TaskUpdate{
		Status:            &status,
		Name:              &name,
		URLs:              b.urls,
		Instruction:       &b.instruction,
		Domain:            &b.domain,
		Tags:              tags,
		ComparisonEnabled: &b.compare,
		Results:           []sitelens.URLResult{},
		Errors:            []sitelens.URLError{},
		ClearComparison:   true,
		ClearProgress:     true,
		ClearEstimate:     true,
		ClearCompletedAt:  true,
		CurrentURLIndex:   &zero,
		TotalURLs:         &total,
	}); err != nil {
		return nil, err
	}
	return r.execute(ctx, id, b)
}

// RerunComparison returns whether a rerun of task over urls compares its
// results. An explicit override wins. Otherwise a stored comparison
// enables it unless it holds an "error" key, then the stored flag is used,
// and finally comparison is enabled for multi-URL batches.
func RerunComparison(task *sitelens.Task, urls []string, override *bool) bool {
	switch {
	case override != nil:
		return *override
	case task.Comparison != nil && task.Comparison.Len() > 0:
		return !task.Comparison.Has("error")
	case task.ComparisonEnabled != nil:
		return *task.ComparisonEnabled
	}
	return len(urls) > 1
}

// execute processes every URL of b in order and stores the outcome.
func (r *Runner) execute(ctx context.Context, id int, b batch) (*sitelens.Task, error) {
	start := r.now()
	total := len(b.urls)

	results := make([]sitelens.URLResult, 0, total)
	errs := []sitelens.URLError{}
	var langs []string

	for i, url := range b.urls {
		current := i + 1
		ev := sitelens.ProgressEvent{
			Stage:      sitelens.StageScraping,
			Message:    fmt.Sprintf("Scraping URL %d/%d: %s", current, total, url),
			Current:    current,
			Total:      total,
			CurrentURL: url,
		}
		if _, err := r.Tasks.UpdateTask(ctx, id, sitelens.TaskUpdate{
			CurrentURLIndex: &current,
			Progress:        &ev,
		}); err != nil {
			return nil, r.fail(ctx, id, err)
		}

		report := func(stage sitelens.ProgressEvent) {
			ev.Stage = stage.Stage
			if stage.Message != "" {
				ev.Message = stage.Message
			}
			snapshot := ev
			// Progress is best effort; the batch outcome is written at the end.
			_, _ = r.Tasks.UpdateTask(ctx, id, sitelens.TaskUpdate{
				CurrentURLIndex: &current,
				Progress:        &snapshot,
			})
		}

		res, err := r.Scraper.Scrape(ctx, sitelens.ScrapeRequest{
			URL:         url,
			Instruction: b.instruction,
			Domain:      b.domain,
		}, report)
		if err != nil {
			msg := fmt.Sprintf("Error scraping %s: %s", url, sitelens.ErrorMessage(err))
			errs = append(errs, sitelens.URLError{URL: url, Error: msg})
			results = append(results, sitelens.URLResult{URL: url, Status: sitelens.ResultError, Error: msg})
		} else {
			if res.Language != "" {
				langs = append(langs, res.Language)
			}
			results = append(results, sitelens.URLResult{URL: url, Status: sitelens.ResultSuccess, Data: res})
		}

		eta := sitelens.EstimateRemaining(r.now().Sub(start), current, total)
		_, _ = r.Tasks.UpdateTask(ctx, id, sitelens.TaskUpdate{EstimatedTimeRemaining: &eta})
	}

	var comparison *sitelens.Record
	if b.compare && total > 1 {
		sites := sitelens.SiteResults(results)
		if len(sites) >= 2 {
			ev := sitelens.ProgressEvent{
				Stage:   sitelens.StageComparing,
				Message: "Generating comparison...",
				Current: total,
				Total:   total,
			}
			_, _ = r.Tasks.UpdateTask(ctx, id, sitelens.TaskUpdate{Progress: &ev})
		}
		comparison = r.Synthesizer.Compare(ctx, b.domain, sites, b.instruction)
	}

	status := sitelens.TaskCompleted
	language := sitelens.LanguageMode(langs)
	completedAt := r.now()
	upd := sitelens.TaskUpdate{
		Status:          &status,
		Domain:          &b.domain,
		Results:         results,
		Errors:          errs,
		Language:        &language,
		CompletedAt:     &completedAt,
		CurrentURLIndex: &total,
		ClearProgress:   true,
		ClearEstimate:   true,
	}
	if comparison != nil {
		upd.Comparison = comparison
	} else {
		upd.ClearComparison = true
	}

	task, err := r.Tasks.UpdateTask(ctx, id, upd)
	if err != nil {
		return nil, r.fail(ctx, id, err)
	}
	return task, nil
}

// fail marks the task as errored and returns err.
func (r *Runner) fail(ctx context.Context, id int, err error) error {
	status := sitelens.TaskError
	_, _ = r.Tasks.UpdateTask(context.WithoutCancel(ctx), id, sitelens.TaskUpdate{
		Status:        &status,
		ClearProgress: true,
		ClearEstimate: true,
	})
	return err
}
