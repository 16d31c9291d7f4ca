package main

import (
	"fmt"

	"github.com/fwojciec/sitelens"
)

// Run executes the rerun command.
func (c *RerunCmd) Run(deps *Dependencies) error {
	var req sitelens.RerunRequest
	if c.Name != "" {
		req.Name = &c.Name
	}
	if len(c.URLs) > 0 {
		req.URLs = c.URLs
	}
	if c.Instruction != "" {
		req.Instruction = &c.Instruction
	}
	if c.Domain != "" {
		req.Domain = &c.Domain
	}
	if len(c.Tags) > 0 {
		req.Tags = c.Tags
	}
	req.EnableComparison = comparison(c.Compare)

	fmt.Fprintf(deps.Stderr, "Re-running task %d...\n", c.ID)
	task, err := deps.Runner.Rerun(deps.Ctx, c.ID, req)
	if err != nil {
		return fail(deps, err)
	}

	printTask(deps.Stdout, task)
	return nil
}
