package sitelens

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TriggerKind names a trigger variant.
type TriggerKind string

// Trigger kinds.
const (
	TriggerOnce   TriggerKind = "once"
	TriggerDaily  TriggerKind = "daily"
	TriggerWeekly TriggerKind = "weekly"
)

// Trigger specifies when a scheduled task runs. Exactly one variant is
// populated according to Kind: At for TriggerOnce, Hour and Minute for
// TriggerDaily, and Weekday, Hour and Minute for TriggerWeekly.
type Trigger struct {
	Kind    TriggerKind
	At      time.Time
	Weekday time.Weekday
	Hour    int
	Minute  int
}

// OneShot returns a trigger firing once at t.
func OneShot(t time.Time) Trigger {
	return Trigger{Kind: TriggerOnce, At: t}
}

// Daily returns a trigger firing every day at hour:minute.
func Daily(hour, minute int) Trigger {
	return Trigger{Kind: TriggerDaily, Hour: hour, Minute: minute}
}

// Weekly returns a trigger firing every week on day at hour:minute.
func Weekly(day time.Weekday, hour, minute int) Trigger {
	return Trigger{Kind: TriggerWeekly, Weekday: day, Hour: hour, Minute: minute}
}

// Validate returns an error if the trigger is malformed.
func (t Trigger) Validate() error {
	switch t.Kind {
	case TriggerOnce:
		if t.At.IsZero() {
			return Errorf(EINVALID, "one-shot trigger requires a time")
		}
		return nil
	case TriggerDaily, TriggerWeekly:
		if t.Hour < 0 || t.Hour > 23 || t.Minute < 0 || t.Minute > 59 {
			return Errorf(EINVALID, "invalid time of day %02d:%02d", t.Hour, t.Minute)
		}
		if t.Weekday < time.Sunday || t.Weekday > time.Saturday {
			return Errorf(EINVALID, "invalid weekday %d", t.Weekday)
		}
		return nil
	}
	return Errorf(EINVALID, "unknown schedule type %q", t.Kind)
}

// String renders the trigger in the form ParseTrigger accepts.
func (t Trigger) String() string {
	switch t.Kind {
	case TriggerOnce:
		return t.At.Format(time.RFC3339)
	case TriggerDaily:
		return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
	case TriggerWeekly:
		return fmt.Sprintf("%s %02d:%02d", strings.ToLower(t.Weekday.String()), t.Hour, t.Minute)
	}
	return ""
}

var datetimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// ParseTrigger parses a schedule type and time specification.
//
//	once:   a datetime ("2025-01-02T15:04", RFC 3339, ...)
//	daily:  "HH:MM" or a datetime whose time of day is used
//	weekly: "monday 09:30" or a datetime whose weekday and time are used
//
// Datetimes without a zone are interpreted in the local time zone.
func ParseTrigger(kind, spec string) (Trigger, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return Trigger{}, Errorf(EINVALID, "schedule time required")
	}

	var t Trigger
	switch TriggerKind(strings.ToLower(strings.TrimSpace(kind))) {
	case TriggerOnce:
		at, err := parseDatetime(spec)
		if err != nil {
			return Trigger{}, err
		}
		t = OneShot(at)
	case TriggerDaily:
		if at, err := parseDatetime(spec); err == nil {
			t = Daily(at.Hour(), at.Minute())
			break
		}
		hour, minute, err := parseClock(spec)
		if err != nil {
			return Trigger{}, err
		}
		t = Daily(hour, minute)
	case TriggerWeekly:
		if at, err := parseDatetime(spec); err == nil {
			t = Weekly(at.Weekday(), at.Hour(), at.Minute())
			break
		}
		day, clock, ok := strings.Cut(spec, " ")
		if !ok {
			return Trigger{}, Errorf(EINVALID, "invalid weekly schedule %q: expected \"DAY HH:MM\" or a datetime", spec)
		}
		weekday, err := parseWeekday(day)
		if err != nil {
			return Trigger{}, err
		}
		hour, minute, err := parseClock(strings.TrimSpace(clock))
		if err != nil {
			return Trigger{}, err
		}
		t = Weekly(weekday, hour, minute)
	default:
		return Trigger{}, Errorf(EINVALID, "unknown schedule type %q", kind)
	}
	return t, t.Validate()
}

func parseDatetime(s string) (time.Time, error) {
	s = strings.Replace(s, "Z", "+00:00", 1)
	for _, layout := range datetimeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, Errorf(EINVALID, "invalid datetime %q", s)
}

func parseClock(s string) (int, int, error) {
	parts := strings.Split(s, ":")
	if len(parts) < 2 {
		return 0, 0, Errorf(EINVALID, "invalid time format %q: expected HH:MM", s)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, Errorf(EINVALID, "invalid hour in %q", s)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, Errorf(EINVALID, "invalid minute in %q", s)
	}
	return hour, minute, nil
}

func parseWeekday(s string) (time.Weekday, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for d := time.Sunday; d <= time.Saturday; d++ {
		name := strings.ToLower(d.String())
		if s == name || s == name[:3] {
			return d, nil
		}
	}
	return 0, Errorf(EINVALID, "unknown weekday %q", s)
}

// JobID returns the scheduler identity of a task.
func JobID(taskID int) string {
	return fmt.Sprintf("task_%d", taskID)
}

// ScheduledJob binds a trigger to the task it executes.
type ScheduledJob struct {
	ID          string
	TaskID      int
	Trigger     Trigger
	URLs        []string
	Instruction string
	Domain      string
}

// Scheduler dispatches scheduled jobs. Registering a job whose ID is
// already scheduled replaces the previous registration.
type Scheduler interface {
	// Schedule registers job and returns its next run time.
	Schedule(ctx context.Context, job ScheduledJob) (time.Time, error)

	// Unschedule removes a job. It reports whether the job existed.
	Unschedule(id string) bool
}
