package main

import (
	"fmt"

	"github.com/fwojciec/sitelens"
	"github.com/fwojciec/sitelens/fs"
)

// Run executes the export command.
func (c *ExportCmd) Run(deps *Dependencies) error {
	task, err := deps.Tasks.FindTaskByID(deps.Ctx, c.ID)
	if err != nil {
		return fail(deps, err)
	}

	if c.Bundle {
		dir, err := fs.WriteBundle(c.Output, task)
		if err != nil {
			return fail(deps, err)
		}
		fmt.Fprintf(deps.Stdout, "Exported task %d to %s\n", task.ID, dir)
		return nil
	}

	format, err := sitelens.ParseExportFormat(c.Format)
	if err != nil {
		return fail(deps, err)
	}
	path, err := fs.WriteExport(c.Output, task.ID, format, task.Results)
	if err != nil {
		return fail(deps, err)
	}

	fmt.Fprintf(deps.Stdout, "Exported task %d to %s\n", task.ID, path)
	return nil
}
