package cron

import (
	"fmt"
	"time"

	"github.com/fwojciec/sitelens"
	"github.com/robfig/cron/v3"
)

// Schedule converts a trigger into a cron schedule evaluated in loc.
// Daily and weekly triggers become standard five-field specs; one-shot
// triggers fire once and then report no further activations.
func Schedule(t sitelens.Trigger, loc *time.Location) (cron.Schedule, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	if loc == nil {
		loc = time.Local
	}

	var spec string
	switch t.Kind {
	case sitelens.TriggerOnce:
		return onceSchedule{at: t.At}, nil
	case sitelens.TriggerDaily:
		spec = fmt.Sprintf("%d %d * * *", t.Minute, t.Hour)
	case sitelens.TriggerWeekly:
		spec = fmt.Sprintf("%d %d * * %d", t.Minute, t.Hour, int(t.Weekday))
	}

	sched, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, sitelens.Errorf(sitelens.EINVALID, "invalid schedule %q: %s", t.String(), err)
	}
	if ss, ok := sched.(*cron.SpecSchedule); ok {
		ss.Location = loc
	}
	return sched, nil
}

// onceSchedule activates a single time. Next returns the zero time once
// the activation has passed, which the cron runner treats as inactive.
type onceSchedule struct {
	at time.Time
}

func (s onceSchedule) Next(t time.Time) time.Time {
	if t.Before(s.at) {
		return s.at
	}
	return time.Time{}
}
