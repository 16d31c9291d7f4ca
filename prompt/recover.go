// Package prompt builds the extraction, analysis, comparison and question
// prompts sent to the model and recovers structured data from its replies.
package prompt

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/fwojciec/sitelens"
)

// ParseFailed is the error value of a degraded record.
const ParseFailed = "parse failed"

var (
	fenceOpen  = regexp.MustCompile("^```(?:json|JSON)?\\s*")
	fenceClose = regexp.MustCompile("\\s*```$")
)

// StripFence removes a leading and trailing fenced-code marker.
func StripFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = fenceOpen.ReplaceAllString(text, "")
	text = fenceClose.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// Recover turns a model reply into a record. It never fails: text that
// holds no JSON object yields {raw_content, error: "parse failed"}.
func Recover(text string) *sitelens.Record {
	if rec, ok := recoverRecord(text); ok {
		return rec
	}
	rec := sitelens.NewRecord()
	rec.Set("raw_content", StripFence(text))
	rec.Set("error", ParseFailed)
	return rec
}

// recoverRecord reports whether text holds a parseable JSON object.
func recoverRecord(text string) (*sitelens.Record, bool) {
	var rec *sitelens.Record
	if err := decode(text, &rec); err != nil || rec == nil {
		return nil, false
	}
	return rec, true
}

// decode unmarshals the JSON object in text into v, trying the whole reply,
// then the first balanced {...} span, then everything between the first
// '{' and the last '}'.
func decode(text string, v any) error {
	text = StripFence(text)
	err := json.Unmarshal([]byte(text), v)
	if err == nil {
		return nil
	}
	for _, candidate := range candidates(text) {
		if json.Unmarshal([]byte(candidate), v) == nil {
			return nil
		}
	}
	return err
}

func candidates(text string) []string {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return nil
	}
	var out []string
	if span, ok := balanced(text[start:]); ok {
		out = append(out, span)
	}
	if end := strings.LastIndexByte(text, '}'); end > start {
		out = append(out, text[start:end+1])
	}
	return out
}

// balanced returns the shortest prefix of s, which starts with '{', whose
// braces balance. Braces inside JSON strings are ignored.
func balanced(s string) (string, bool) {
	depth := 0
	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			escaped = false
		case inString && c == '\\':
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				return s[:i+1], true
			}
		}
	}
	return "", false
}
