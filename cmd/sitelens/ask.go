package main

import (
	"fmt"
)

// Run executes the ask command.
func (c *AskCmd) Run(deps *Dependencies) error {
	answer, err := deps.Asker.Ask(deps.Ctx, c.ID, c.Question)
	if err != nil {
		return fail(deps, err)
	}

	fmt.Fprintln(deps.Stdout, answer.Answer)
	if len(answer.SupportingPoints) > 0 {
		fmt.Fprintln(deps.Stdout)
		for _, p := range answer.SupportingPoints {
			fmt.Fprintf(deps.Stdout, "- %s\n", p)
		}
	}
	fmt.Fprintf(deps.Stdout, "\nConfidence: %s\n", answer.Confidence)
	if answer.Error != "" {
		fmt.Fprintf(deps.Stderr, "warning: %s\n", answer.Error)
	}
	return nil
}
