package main

import (
	"fmt"

	"github.com/fwojciec/sitelens"
)

// Run executes the delete command.
func (c *DeleteCmd) Run(deps *Dependencies) error {
	if !c.Force {
		fmt.Fprintf(deps.Stderr, "error: use --force to confirm deletion\n")
		return sitelens.Errorf(sitelens.EINVALID, "use --force to confirm deletion")
	}

	n, err := deps.Tasks.DeleteTasks(deps.Ctx, c.IDs)
	if err != nil {
		return fail(deps, err)
	}
	if n == 0 {
		return fail(deps, sitelens.Errorf(sitelens.ENOTFOUND, "Task not found"))
	}

	fmt.Fprintf(deps.Stdout, "Deleted %d task(s)\n", n)
	return nil
}
