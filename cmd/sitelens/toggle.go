package main

import (
	"fmt"
)

// Run executes the star command.
func (c *StarCmd) Run(deps *Dependencies) error {
	starred, err := deps.Tasks.ToggleStar(deps.Ctx, c.ID)
	if err != nil {
		return fail(deps, err)
	}

	if starred {
		fmt.Fprintf(deps.Stdout, "Task %d starred\n", c.ID)
	} else {
		fmt.Fprintf(deps.Stdout, "Task %d unstarred\n", c.ID)
	}
	return nil
}

// Run executes the archive command.
func (c *ArchiveCmd) Run(deps *Dependencies) error {
	archived, err := deps.Tasks.ToggleArchive(deps.Ctx, c.ID)
	if err != nil {
		return fail(deps, err)
	}

	if archived {
		fmt.Fprintf(deps.Stdout, "Task %d archived\n", c.ID)
	} else {
		fmt.Fprintf(deps.Stdout, "Task %d unarchived\n", c.ID)
	}
	return nil
}
