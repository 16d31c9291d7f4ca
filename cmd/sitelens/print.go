package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fwojciec/sitelens"
)

// printSummary writes the one-line form of a task used by list.
func printSummary(w io.Writer, t *sitelens.Task) {
	marks := ""
	if t.Starred {
		marks += "*"
	}
	if t.IsScheduled {
		marks += "@"
	}
	fmt.Fprintf(w, "%d%s  %s  [%s]  %s  %d URL(s)  %s\n",
		t.ID, marks, t.Name, t.Status, t.Domain, len(t.URLs), t.CreatedAt.Local().Format(time.DateTime))
}

// printTask writes the full form of a task including each URL outcome.
func printTask(w io.Writer, t *sitelens.Task) {
	fmt.Fprintf(w, "Task %d: %s [%s]\n", t.ID, t.Name, t.Status)
	fmt.Fprintf(w, "Domain: %s  Language: %s\n", t.Domain, t.Language)
	fmt.Fprintf(w, "Instruction: %s\n", t.Instruction)
	if len(t.Tags) > 0 {
		fmt.Fprintf(w, "Tags: %s\n", strings.Join(t.Tags, ", "))
	}
	if t.IsScheduled {
		fmt.Fprintf(w, "Schedule: %s %s", t.ScheduleType, t.ScheduleTime)
		if t.NextRun != nil {
			fmt.Fprintf(w, " (next run %s)", t.NextRun.Local().Format(time.DateTime))
		}
		fmt.Fprintln(w)
	}

	succeeded := len(t.SiteResults())
	fmt.Fprintf(w, "URLs: %d (%d succeeded, %d failed)\n", len(t.URLs), succeeded, len(t.Results)-succeeded)

	for _, r := range t.Results {
		fmt.Fprintln(w)
		fmt.Fprintln(w, r.URL)
		if !r.Succeeded() {
			fmt.Fprintf(w, "  Error: %s\n", r.Error)
			continue
		}
		printAnalysis(w, r.Data.Analysis)
		if data := r.Data.ExtractedData; data != nil && data.Len() > 0 {
			fmt.Fprintln(w, "  Extracted data:")
			for _, k := range data.Keys() {
				v, _ := data.Get(k)
				fmt.Fprintf(w, "    %s: %s\n", k, sitelens.FormatValue(v))
			}
		}
	}

	if t.Comparison != nil {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Comparison:")
		buf, err := json.MarshalIndent(t.Comparison, "  ", "  ")
		if err == nil {
			fmt.Fprintf(w, "  %s\n", buf)
		}
	}
}

func printAnalysis(w io.Writer, a *sitelens.AnalysisRecord) {
	if a == nil {
		return
	}
	if a.Summary != "" {
		fmt.Fprintf(w, "  Summary: %s\n", a.Summary)
	}
	if a.UserRequestAnswer != "" {
		fmt.Fprintf(w, "  Answer: %s\n", a.UserRequestAnswer)
	}
	printList(w, "Key points", a.KeyPoints)
	printList(w, "Insights", a.Insights)
	printList(w, "Opportunities", a.Opportunities)
	printList(w, "Risks", a.Risks)
	printList(w, "Next steps", a.NextSteps)
}

func printList(w io.Writer, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(w, "  %s:\n", title)
	for _, item := range items {
		fmt.Fprintf(w, "    - %s\n", item)
	}
}
