package main

import (
	"fmt"
	"strings"

	"github.com/fwojciec/sitelens"
)

// Run executes the tag command.
func (c *TagCmd) Run(deps *Dependencies) error {
	task, err := deps.Tasks.UpdateTask(deps.Ctx, c.ID, sitelens.TaskUpdate{
		Tags: sitelens.CleanTags(c.Tags),
	})
	if err != nil {
		return fail(deps, err)
	}

	if len(task.Tags) == 0 {
		fmt.Fprintf(deps.Stdout, "Cleared tags of task %d\n", task.ID)
		return nil
	}
	fmt.Fprintf(deps.Stdout, "Tagged task %d: %s\n", task.ID, strings.Join(task.Tags, ", "))
	return nil
}
