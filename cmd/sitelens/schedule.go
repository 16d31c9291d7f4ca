package main

import (
	"fmt"
	"time"

	"github.com/fwojciec/sitelens"
	"github.com/fwojciec/sitelens/cron"
)

// Run executes the schedule command. The task is stored with its trigger
// and dispatched by a running "sitelens serve".
func (c *ScheduleCmd) Run(deps *Dependencies) error {
	trigger, err := sitelens.ParseTrigger(c.Type, c.At)
	if err != nil {
		return fail(deps, err)
	}
	sched, err := cron.Schedule(trigger, time.Local)
	if err != nil {
		return fail(deps, err)
	}
	next := sched.Next(deps.now())
	if next.IsZero() {
		return fail(deps, sitelens.Errorf(sitelens.EINVALID, "schedule time %s is in the past", trigger))
	}

	name := c.Name
	if name == "" {
		name = "Scheduled Task"
	}
	task, err := deps.Runner.Create(deps.Ctx, sitelens.TaskRequest{
		Name:        name,
		URLs:        c.URLs,
		Instruction: c.Instruction,
		Domain:      c.Domain,
		Tags:        c.Tags,
		Schedule:    &trigger,
	})
	if err != nil {
		return fail(deps, err)
	}

	fmt.Fprintf(deps.Stdout, "Scheduled task %d (%s %s), next run %s\n",
		task.ID, trigger.Kind, trigger, next.Local().Format(time.DateTime))
	fmt.Fprintln(deps.Stdout, "Scheduled tasks run while 'sitelens serve' is running.")
	return nil
}
