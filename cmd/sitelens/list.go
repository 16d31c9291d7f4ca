package main

import (
	"fmt"
	"strings"

	"github.com/fwojciec/sitelens"
)

// Run executes the list command.
func (c *ListCmd) Run(deps *Dependencies) error {
	filter := sitelens.TaskFilter{
		Archived:  &c.Archived,
		Search:    c.Search,
		SortBy:    c.Sort,
		SortOrder: sitelens.SortOrder(strings.ToLower(c.Order)),
		Limit:     c.Limit,
	}
	if c.Domain != "" {
		filter.Domain = &c.Domain
	}
	if c.Status != "" {
		status := sitelens.TaskStatus(c.Status)
		if !status.Valid() {
			return fail(deps, sitelens.Errorf(sitelens.EINVALID, "invalid status %q", c.Status))
		}
		filter.Status = &status
	}
	if c.Tag != "" {
		filter.Tag = &c.Tag
	}
	if c.Starred {
		filter.Starred = &c.Starred
	}
	if c.Scheduled {
		filter.Scheduled = &c.Scheduled
	}

	tasks, err := deps.Tasks.FindTasks(deps.Ctx, filter)
	if err != nil {
		return fail(deps, err)
	}

	if len(tasks) == 0 {
		fmt.Fprintln(deps.Stdout, "No tasks found. Use 'sitelens scrape' to create one.")
		return nil
	}

	for _, t := range tasks {
		printSummary(deps.Stdout, t)
	}
	return nil
}
