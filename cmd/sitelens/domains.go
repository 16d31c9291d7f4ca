package main

import (
	"fmt"
	"strings"

	"github.com/fwojciec/sitelens"
)

// Run executes the domains command.
func (c *DomainsCmd) Run(deps *Dependencies) error {
	for _, d := range sitelens.Domains() {
		fmt.Fprintf(deps.Stdout, "%-14s %s\n", d.Key, d.Name)
		fmt.Fprintf(deps.Stdout, "%-14s fields: %s\n", "", strings.Join(d.Parameters, ", "))
	}
	return nil
}
