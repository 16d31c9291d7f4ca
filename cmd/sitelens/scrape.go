package main

import (
	"fmt"

	"github.com/fwojciec/sitelens"
)

// Run executes the scrape command.
func (c *ScrapeCmd) Run(deps *Dependencies) error {
	task, err := deps.Runner.Create(deps.Ctx, sitelens.TaskRequest{
		Name:             c.Name,
		URLs:             c.URLs,
		Instruction:      c.Instruction,
		Domain:           c.Domain,
		Tags:             c.Tags,
		EnableComparison: comparison(c.Compare),
	})
	if err != nil {
		return fail(deps, err)
	}
	fmt.Fprintf(deps.Stderr, "Created task %d, scraping %d URL(s)...\n", task.ID, len(task.URLs))

	task, err = deps.Runner.Run(deps.Ctx, task.ID, sitelens.RunOptions{})
	if err != nil {
		return fail(deps, err)
	}

	printTask(deps.Stdout, task)
	return nil
}
