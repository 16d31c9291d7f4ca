package prompt

import (
	"regexp"
	"strings"
)

// Intent flags what an instruction asks for beyond plain extraction.
type Intent struct {
	Code       bool
	Complexity bool
	UseCases   bool
}

var (
	codeKeywords = []string{
		"code", "snippet", "example", "sample", "syntax", "function",
		"api", "implementation", "script", "command",
	}
	complexityKeywords = []string{
		"complexity", "difficulty", "difficult", "beginner", "advanced",
		"intermediate", "learning curve", "prerequisite", "skill level",
	}
	useCaseKeywords = []string{
		"use case", "use-case", "usecase", "when to use", "best for",
		"suitable for", "scenario", "application", "who should",
	}
)

var (
	codePattern       = keywordPattern(codeKeywords)
	complexityPattern = keywordPattern(complexityKeywords)
	useCasePattern    = keywordPattern(useCaseKeywords)
)

// keywordPattern matches any keyword as a whole word, allowing a plural s.
func keywordPattern(keywords []string) *regexp.Regexp {
	quoted := make([]string, len(keywords))
	for i, k := range keywords {
		quoted[i] = regexp.QuoteMeta(k)
	}
	return regexp.MustCompile(`(?i)\b(?:` + strings.Join(quoted, "|") + `)s?\b`)
}

// DetectIntent scans an instruction for code, complexity and use-case
// keywords.
func DetectIntent(instruction string) Intent {
	return Intent{
		Code:       codePattern.MatchString(instruction),
		Complexity: complexityPattern.MatchString(instruction),
		UseCases:   useCasePattern.MatchString(instruction),
	}
}

// Directives returns one "must extract" line per raised flag.
func (i Intent) Directives() []string {
	var out []string
	if i.Code {
		out = append(out, `You MUST extract every code example verbatim into a "code_examples" array, keeping the language when it is stated.`)
	}
	if i.Complexity {
		out = append(out, `You MUST extract a "complexity" field (beginner, intermediate or advanced) with the evidence that supports it.`)
	}
	if i.UseCases {
		out = append(out, `You MUST extract a "use_cases" array listing the situations the page recommends this for.`)
	}
	return out
}

func (i Intent) writeTo(sb *strings.Builder) {
	directives := i.Directives()
	if len(directives) == 0 {
		return
	}
	sb.WriteString("\nRequired by the instruction:\n")
	for _, d := range directives {
		sb.WriteString("- ")
		sb.WriteString(d)
		sb.WriteString("\n")
	}
}
