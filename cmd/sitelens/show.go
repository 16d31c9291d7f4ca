package main

import (
	"encoding/json"
)

// Run executes the show command.
func (c *ShowCmd) Run(deps *Dependencies) error {
	task, err := deps.Tasks.FindTaskByID(deps.Ctx, c.ID)
	if err != nil {
		return fail(deps, err)
	}

	if c.JSON {
		enc := json.NewEncoder(deps.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(task)
	}

	printTask(deps.Stdout, task)
	return nil
}
