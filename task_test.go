package sitelens_test

import (
	"testing"

	"github.com/fwojciec/sitelens"
	"github.com/stretchr/testify/assert"
)

func TestTask_Validate(t *testing.T) {
	t.Parallel()

	valid := sitelens.Task{Name: "n", URLs: []string{"https://a.com"}, Domain: "general"}
	assert.NoError(t, valid.Validate())

	noURLs := valid
	noURLs.URLs = nil
	assert.Equal(t, sitelens.EINVALID, sitelens.ErrorCode(noURLs.Validate()))

	badDomain := valid
	badDomain.Domain = "astrology"
	assert.Equal(t, sitelens.EINVALID, sitelens.ErrorCode(badDomain.Validate()))

	noName := valid
	noName.Name = ""
	assert.Equal(t, sitelens.EINVALID, sitelens.ErrorCode(noName.Validate()))
}

func TestTask_SiteResults(t *testing.T) {
	t.Parallel()

	task := sitelens.Task{Results: []sitelens.URLResult{
		{URL: "https://a.com", Status: sitelens.ResultSuccess, Data: &sitelens.ScrapeResult{URL: "https://a.com"}},
		{URL: "https://b.com", Status: sitelens.ResultError, Error: "boom"},
		{URL: "https://c.com", Status: sitelens.ResultSuccess, Data: &sitelens.ScrapeResult{URL: "https://c.com"}},
	}}

	got := task.SiteResults()

	assert.Len(t, got, 2)
	assert.Equal(t, "https://a.com", got[0].URL)
	assert.Equal(t, "https://c.com", got[1].URL)
}

func TestDefaultTaskName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Scrape example.com", sitelens.DefaultTaskName([]string{"https://www.example.com/x"}))
	assert.Equal(t, "Scrape 3 URLs", sitelens.DefaultTaskName([]string{"a", "b", "c"}))
}

func TestCleanTags(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"a", "b"}, sitelens.CleanTags([]string{" a", "", "b", "a "}))
}

func TestTask_Apply(t *testing.T) {
	t.Parallel()

	t.Run("sets only the given fields", func(t *testing.T) {
		t.Parallel()

		task := sitelens.Task{Name: "old", Instruction: "keep", Status: sitelens.TaskPending}
		name := "new"
		status := sitelens.TaskProcessing
		idx := 2

		task.Apply(sitelens.TaskUpdate{Name: &name, Status: &status, CurrentURLIndex: &idx})

		assert.Equal(t, "new", task.Name)
		assert.Equal(t, "keep", task.Instruction)
		assert.Equal(t, sitelens.TaskProcessing, task.Status)
		assert.Equal(t, 2, task.CurrentURLIndex)
	})

	t.Run("clear flags win over values", func(t *testing.T) {
		t.Parallel()

		eta := 30
		task := sitelens.Task{
			Progress:               &sitelens.ProgressEvent{Stage: sitelens.StageScraping},
			EstimatedTimeRemaining: &eta,
			Comparison:             sitelens.NewRecord(),
		}

		task.Apply(sitelens.TaskUpdate{
			Progress:        &sitelens.ProgressEvent{Stage: sitelens.StageFetching},
			ClearProgress:   true,
			ClearEstimate:   true,
			ClearComparison: true,
		})

		assert.Nil(t, task.Progress)
		assert.Nil(t, task.EstimatedTimeRemaining)
		assert.Nil(t, task.Comparison)
	})

	t.Run("copies progress", func(t *testing.T) {
		t.Parallel()

		ev := sitelens.ProgressEvent{Stage: sitelens.StageFetching}
		var task sitelens.Task
		task.Apply(sitelens.TaskUpdate{Progress: &ev})
		ev.Stage = sitelens.StageAnalyzing

		assert.Equal(t, sitelens.StageFetching, task.Progress.Stage)
	})
}
