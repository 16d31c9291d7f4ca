package sitelens

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// ExportFormat names a results download format.
type ExportFormat string

// Export formats.
const (
	ExportJSON ExportFormat = "json"
	ExportCSV  ExportFormat = "csv"
	ExportText ExportFormat = "txt"
)

// ParseExportFormat validates a format name.
func ParseExportFormat(s string) (ExportFormat, error) {
	switch f := ExportFormat(strings.ToLower(s)); f {
	case ExportJSON, ExportCSV, ExportText:
		return f, nil
	}
	return "", Errorf(EINVALID, "Invalid format. Use json, csv, or txt")
}

// ContentType returns the MIME type of the format.
func (f ExportFormat) ContentType() string {
	switch f {
	case ExportJSON:
		return "application/json"
	case ExportCSV:
		return "text/csv"
	}
	return "text/plain"
}

// ExportFilename returns the download file name for a task's results.
func ExportFilename(taskID int, f ExportFormat) string {
	return fmt.Sprintf("task_%d_results.%s", taskID, f)
}

// ExportRow is one url/field/value line of a CSV export.
type ExportRow struct {
	URL   string
	Field string
	Value string
}

// ExportRows flattens a successful result into url/field/value rows.
// Empty values are skipped.
func ExportRows(r URLResult) []ExportRow {
	if !r.Succeeded() {
		return nil
	}
	var rows []ExportRow
	push := func(field, value string) {
		if value == "" {
			return
		}
		rows = append(rows, ExportRow{URL: r.URL, Field: field, Value: value})
	}

	data := r.Data.ExtractedData
	for _, k := range data.Keys() {
		v, _ := data.Get(k)
		push("extracted."+k, FormatValue(v))
	}

	a := r.Data.Analysis
	if a == nil {
		return rows
	}
	push("analysis.summary", a.Summary)
	push("analysis.user_request_answer", a.UserRequestAnswer)
	for _, l := range []struct {
		name  string
		items []string
	}{
		{"key_points", a.KeyPoints},
		{"insights", a.Insights},
		{"opportunities", a.Opportunities},
		{"risks", a.Risks},
		{"next_steps", a.NextSteps},
	} {
		push("analysis."+l.name, strings.Join(l.items, "; "))
	}
	return rows
}

// Export writes results to w in the given format. It returns ENOTFOUND
// when there is nothing to export.
func Export(w io.Writer, f ExportFormat, results []URLResult) error {
	if len(results) == 0 {
		return Errorf(ENOTFOUND, "No results available")
	}
	switch f {
	case ExportJSON:
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	case ExportCSV:
		return writeCSV(w, results)
	case ExportText:
		_, err := io.WriteString(w, FormatText(results))
		return err
	}
	return Errorf(EINVALID, "Invalid format. Use json, csv, or txt")
}

func writeCSV(w io.Writer, results []URLResult) error {
	var rows []ExportRow
	for _, r := range results {
		rows = append(rows, ExportRows(r)...)
	}
	if len(rows) == 0 {
		return Errorf(ENOTFOUND, "No data to export")
	}
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"url", "field", "value"}); err != nil {
		return err
	}
	for _, row := range rows {
		if err := cw.Write([]string{row.URL, row.Field, row.Value}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// FormatText renders results as a plain-text report.
func FormatText(results []URLResult) string {
	orNA := func(s string) string {
		if s == "" {
			return "N/A"
		}
		return s
	}
	joinOrNA := func(items []string) string {
		if len(items) == 0 {
			return "N/A"
		}
		return strings.Join(items, ", ")
	}

	var lines []string
	for _, r := range results {
		lines = append(lines, "URL: "+orNA(r.URL), "Status: "+orNA(string(r.Status)))
		if r.Succeeded() {
			a := r.Data.Analysis
			if a == nil {
				a = &AnalysisRecord{}
			}
			lines = append(lines,
				"Summary: "+orNA(a.Summary),
				"Key Points: "+joinOrNA(a.KeyPoints),
				"Insights: "+joinOrNA(a.Insights),
				"Answer: "+orNA(a.UserRequestAnswer),
			)
		} else {
			msg := r.Error
			if msg == "" {
				msg = "Unknown error"
			}
			lines = append(lines, "Error: "+msg)
		}
		lines = append(lines, strings.Repeat("-", 80))
	}
	return strings.Join(lines, "\n")
}
