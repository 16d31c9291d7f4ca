package sitelens

import "time"

// Progress stages.
const (
	StageScraping   = "scraping"
	StageFetching   = "fetching"
	StageCleaning   = "cleaning"
	StageExtracting = "extracting"
	StageAnalyzing  = "analyzing"
	StageComparing  = "comparing"
)

// ProgressEvent is a snapshot of where a running task is.
type ProgressEvent struct {
	Stage      string `json:"stage"`
	Message    string `json:"message"`
	Current    int    `json:"current"`
	Total      int    `json:"total"`
	CurrentURL string `json:"current_url,omitempty"`
}

// ProgressFunc receives progress events. It must not block or panic.
type ProgressFunc func(ProgressEvent)

// Report calls fn when it is set.
func (fn ProgressFunc) Report(ev ProgressEvent) {
	if fn != nil {
		fn(ev)
	}
}

// EstimateRemaining extrapolates the seconds left for a batch from the
// average time spent on the done items.
func EstimateRemaining(elapsed time.Duration, done, total int) int {
	if done <= 0 || total <= done {
		return 0
	}
	avg := elapsed.Seconds() / float64(done)
	return int(avg * float64(total-done))
}
