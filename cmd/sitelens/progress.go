package main

import (
	"fmt"

	"github.com/fwojciec/sitelens"
)

// Run executes the progress command.
func (c *ProgressCmd) Run(deps *Dependencies) error {
	task, err := deps.Tasks.FindTaskByID(deps.Ctx, c.ID)
	if err != nil {
		return fail(deps, err)
	}

	fmt.Fprintf(deps.Stdout, "Task %d [%s]: %d/%d URL(s)\n", task.ID, task.Status, task.CurrentURLIndex, task.TotalURLs)
	if task.Progress != nil && task.Status == sitelens.TaskProcessing {
		fmt.Fprintf(deps.Stdout, "Stage: %s\n", task.Progress.Stage)
		if task.Progress.Message != "" {
			fmt.Fprintln(deps.Stdout, task.Progress.Message)
		}
	}
	if task.EstimatedTimeRemaining != nil {
		fmt.Fprintf(deps.Stdout, "Estimated time remaining: %ds\n", *task.EstimatedTimeRemaining)
	}
	return nil
}
