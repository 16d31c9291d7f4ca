package prompt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/fwojciec/sitelens"
)

// Payload limits, in characters.
const (
	MaxAnalysisData      = 4000
	MaxComparisonSite    = 3000
	MaxComparisonPayload = 5000
	MaxComparisonAnswers = 2000
	QuestionBudget       = 8000
	MaxQuestionPayload   = 10000
)

// InsufficientComparison is the message returned when fewer than two sites
// succeeded.
const InsufficientComparison = "Comparison requires at least 2 websites"

// Ensure Synthesizer implements sitelens.Synthesizer at compile time.
var _ sitelens.Synthesizer = (*Synthesizer)(nil)

// Synthesizer builds analyses, comparisons and answers with the model.
type Synthesizer struct {
	llm    sitelens.LLM
	delays []time.Duration
}

// SynthOption configures a Synthesizer.
type SynthOption func(*Synthesizer)

// WithCompareDelays sets the waits between comparison attempts. The number
// of attempts is len(delays)+1.
func WithCompareDelays(delays ...time.Duration) SynthOption {
	return func(s *Synthesizer) {
		s.delays = delays
	}
}

// NewSynthesizer creates a new Synthesizer.
func NewSynthesizer(llm sitelens.LLM, opts ...SynthOption) *Synthesizer {
	s := &Synthesizer{llm: llm, delays: DefaultCompareDelays()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Analyze produces the fixed-shape analysis of one page. It makes a single
// model call; any failure yields a placeholder analysis.
func (s *Synthesizer) Analyze(ctx context.Context, req sitelens.AnalyzeRequest) *sitelens.AnalysisRecord {
	reply, err := s.llm.Generate(ctx, BuildAnalysisPrompt(req))
	if err != nil {
		return sitelens.PlaceholderAnalysis(err)
	}
	var a sitelens.AnalysisRecord
	if err := decode(reply, &a); err != nil {
		return sitelens.PlaceholderAnalysis(fmt.Errorf("%s: %w", ParseFailed, err))
	}
	normalizeAnalysis(&a)
	return &a
}

func normalizeAnalysis(a *sitelens.AnalysisRecord) {
	for _, list := range []*[]string{&a.KeyPoints, &a.Insights, &a.Opportunities, &a.Risks, &a.NextSteps} {
		if *list == nil {
			*list = []string{}
		}
	}
}

// BuildAnalysisPrompt assembles the single-page analysis prompt.
func BuildAnalysisPrompt(req sitelens.AnalyzeRequest) string {
	domain := sitelens.LookupDomain(req.Domain)
	instruction := strings.TrimSpace(req.Instruction)
	if instruction == "" {
		instruction = "Summarize the extracted findings."
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "You are an expert analyst reviewing data from a %s website.\n", domain.Name)
	sb.WriteString("Summarize findings tailored to this domain and the user's instruction.\n\n")
	fmt.Fprintf(&sb, "Extracted Data (JSON):\n%s\n\n", sitelens.Truncate(marshalIndent(req.Data), MaxAnalysisData))
	fmt.Fprintf(&sb, "User Instruction:\n%s\n\n", instruction)
	sb.WriteString("Domain-Focused Considerations:\n")
	for _, hint := range domain.Focus(3) {
		fmt.Fprintf(&sb, "- %s\n", hint)
	}
	DetectIntent(req.Instruction).writeTo(&sb)
	sb.WriteString(`
Produce STRICT JSON with this schema:
{
  "summary": "2-3 sentence overview",
  "key_points": ["bullet 1", "bullet 2", "bullet 3"],
  "insights": ["deeper insight 1", "insight 2"],
  "user_request_answer": "direct answer to the instruction",
  "opportunities": ["optional opportunity 1", "optional opportunity 2"],
  "risks": ["optional risk 1", "optional risk 2"],
  "next_steps": ["optional action 1", "optional action 2"]
}

Return ONLY valid JSON with double quotes.
`)
	if lang := req.Language; lang != "" && lang != sitelens.DefaultLanguage {
		fmt.Fprintf(&sb, "\nNote: The extracted data may contain content in %s language. Please provide analysis in the same language or as requested by the user.", strings.ToUpper(lang))
	}
	return sb.String()
}

// Compare synthesizes a cross-site comparison. Fewer than two results
// return a fixed message without calling the model. Timeouts are retried
// with growing delays; every failure is reported inside the record.
func (s *Synthesizer) Compare(ctx context.Context, domain string, results []sitelens.SiteResult, instruction string) *sitelens.Record {
	if len(results) < 2 {
		rec := sitelens.NewRecord()
		rec.Set("message", InsufficientComparison)
		return rec
	}

	reply, attempts, err := generateWithRetry(ctx, s.llm, BuildComparisonPrompt(domain, results, instruction), s.delays)
	if err != nil {
		rec := sitelens.NewRecord()
		if sitelens.IsTransient(err) && attempts == len(s.delays)+1 {
			rec.Set("error", fmt.Sprintf("Comparison timed out after %d attempts. The comparison may be too complex. Try with fewer URLs or simpler content.", attempts))
			rec.Set("partial_data", "You can still view individual website analyses above.")
			return rec
		}
		rec.Set("error", "Comparison generation failed: "+sitelens.ErrorMessage(err))
		return rec
	}

	if rec, ok := recoverRecord(reply); ok {
		return rec
	}
	rec := sitelens.NewRecord()
	rec.Set("raw_comparison", StripFence(reply))
	rec.Set("error", "Could not parse comparison as structured JSON")
	return rec
}

type comparisonSite struct {
	URL               string          `json:"url"`
	Summary           string          `json:"summary"`
	KeyPoints         []string        `json:"key_points"`
	UserRequestAnswer string          `json:"user_request_answer"`
	ExtractedData     json.RawMessage `json:"extracted_data"`
}

type siteAnswer struct {
	URL    string `json:"url"`
	Answer string `json:"answer"`
}

// BuildComparisonPrompt assembles the cross-site comparison prompt.
func BuildComparisonPrompt(domain string, results []sitelens.SiteResult, instruction string) string {
	d := sitelens.LookupDomain(domain)

	sites := make([]comparisonSite, 0, len(results))
	answers := []siteAnswer{}
	for _, r := range results {
		a := r.Analysis
		if a == nil {
			a = &sitelens.AnalysisRecord{}
		}
		keyPoints := a.KeyPoints
		if len(keyPoints) > 5 {
			keyPoints = keyPoints[:5]
		}
		if keyPoints == nil {
			keyPoints = []string{}
		}
		sites = append(sites, comparisonSite{
			URL:               r.URL,
			Summary:           a.Summary,
			KeyPoints:         keyPoints,
			UserRequestAnswer: a.UserRequestAnswer,
			ExtractedData:     capExtracted(r.ExtractedData, MaxComparisonSite),
		})
		if a.UserRequestAnswer != "" {
			answers = append(answers, siteAnswer{URL: r.URL, Answer: a.UserRequestAnswer})
		}
	}

	if strings.TrimSpace(instruction) == "" {
		instruction = "Extract and analyze relevant information from these websites"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "You are comparing %d %s websites.\n\n", len(results), d.Name)
	fmt.Fprintf(&sb, "User's Original Request/Instruction: %s\n\n", instruction)
	fmt.Fprintf(&sb, "Comparison Data (JSON):\n%s\n\n", sitelens.Truncate(marshalIndent(sites), MaxComparisonPayload))
	fmt.Fprintf(&sb, "Individual Website Answers to User Request:\n%s\n\n", sitelens.Truncate(marshalIndent(answers), MaxComparisonAnswers))
	sb.WriteString("Based on the user's request and the data from all websites, provide a comprehensive comparison.\n\n")
	sb.WriteString("IMPORTANT: Generate a cross-website 'user_request_answer' that synthesizes what should be extracted across ALL websites. " +
		"This should be more comprehensive than individual answers - it should identify:\n" +
		"- Common data patterns across all websites\n" +
		"- Unique data available on specific websites\n" +
		"- Recommended extraction strategy that works across all sites\n" +
		"- Key insights that emerge from comparing the extraction results\n")
	DetectIntent(instruction).writeTo(&sb)
	sb.WriteString(`
Deliver JSON with:
{
  "summary": "overall comparison summary (2-3 sentences)",
  "user_request_answer": "comprehensive cross-website answer to what should be extracted, synthesizing insights from all websites. This should be actionable and helpful.",
  "similarities": ["shared trait 1", "shared trait 2"],
  "differences": ["difference 1", "difference 2"],
  "websites": {
    "url": {
      "pros": ["pro 1", "pro 2"],
      "cons": ["con 1", "con 2"],
      "notable_features": ["feature 1"],
      "best_for": "who benefits most",
      "score": 0-10
    }
  },
  "comparison_table": {
    "metrics": ["metric 1", "metric 2"],
    "rows": [
      {"metric": "Example", "values": {"url_1": "value", "url_2": "value"}}
    ]
  },
  "extraction_recommendations": {
    "common_fields": ["field available on all sites", "another common field"],
    "unique_fields": {"url": ["field only on this site"]},
    "best_practices": ["recommendation 1", "recommendation 2"]
  },
  "recommendation": "final takeaway / which site suits which scenario"
}

Return ONLY valid JSON.`)
	return sb.String()
}

// capExtracted serializes data, replacing it with a note when it is longer
// than limit and the cut-off text is no longer valid JSON.
func capExtracted(data *sitelens.Record, limit int) json.RawMessage {
	if data == nil {
		data = sitelens.NewRecord()
	}
	s := marshalIndent(data)
	if utf8.RuneCountInString(s) <= limit {
		return json.RawMessage(s)
	}
	if cut := sitelens.Truncate(s, limit); json.Valid([]byte(cut)) {
		return json.RawMessage(cut)
	}
	return json.RawMessage(`{"note": "Data too large, summary only"}`)
}

// Answer answers a question about a task's results. Every failure yields a
// low-confidence answer describing the problem.
func (s *Synthesizer) Answer(ctx context.Context, domain string, results []sitelens.SiteResult, question, instruction string) *sitelens.QnARecord {
	reply, err := s.llm.Generate(ctx, BuildQuestionPrompt(domain, results, question, instruction))
	if err != nil {
		msg := sitelens.ErrorMessage(err)
		return lowConfidence("Unable to answer right now: "+msg, msg)
	}
	if strings.TrimSpace(reply) == "" {
		return lowConfidence("Unable to answer right now: The AI model returned an empty response. Please try again.", "")
	}

	var qna sitelens.QnARecord
	if err := decode(reply, &qna); err != nil {
		text := StripFence(reply)
		return lowConfidence(
			fmt.Sprintf("Unable to parse AI response as JSON. Raw response: %s...", sitelens.Truncate(text, 200)),
			"JSON parsing error: "+err.Error(),
		)
	}
	if qna.SupportingPoints == nil {
		qna.SupportingPoints = []string{}
	}
	qna.Confidence = normalizeConfidence(qna.Confidence)
	return &qna
}

func lowConfidence(answer, errMsg string) *sitelens.QnARecord {
	return &sitelens.QnARecord{
		Answer:           answer,
		SupportingPoints: []string{},
		Confidence:       sitelens.ConfidenceLow,
		Error:            errMsg,
	}
}

func normalizeConfidence(c string) string {
	switch c = strings.ToLower(strings.TrimSpace(c)); c {
	case sitelens.ConfidenceHigh, sitelens.ConfidenceMedium, sitelens.ConfidenceLow:
		return c
	}
	return sitelens.ConfidenceLow
}

type questionSite struct {
	Number        int                      `json:"website_number"`
	Name          string                   `json:"website_name"`
	URL           string                   `json:"url"`
	ExtractedData json.RawMessage          `json:"extracted_data"`
	Analysis      *sitelens.AnalysisRecord `json:"analysis"`
}

type questionPayload struct {
	Domain          string         `json:"domain"`
	UserInstruction string         `json:"user_instruction"`
	TotalWebsites   int            `json:"total_websites"`
	Websites        []questionSite `json:"websites"`
}

// BuildQuestionPrompt assembles the question-answering prompt. When the
// context is larger than QuestionBudget each site's extracted data is cut
// to an equal share of it before the final hard cap.
func BuildQuestionPrompt(domain string, results []sitelens.SiteResult, question, instruction string) string {
	d := sitelens.LookupDomain(domain)

	payload := questionPayload{
		Domain:          d.Name,
		UserInstruction: instruction,
		TotalWebsites:   len(results),
		Websites:        make([]questionSite, 0, len(results)),
	}
	for i, r := range results {
		rec := r.ExtractedData
		if rec == nil {
			rec = sitelens.NewRecord()
		}
		payload.Websites = append(payload.Websites, questionSite{
			Number:        i + 1,
			Name:          sitelens.SiteIdentifier(r.URL),
			URL:           r.URL,
			ExtractedData: json.RawMessage(marshalCompact(rec)),
			Analysis:      r.Analysis,
		})
	}

	data := marshalIndent(payload)
	if utf8.RuneCountInString(data) > QuestionBudget && len(payload.Websites) > 0 {
		share := QuestionBudget / len(payload.Websites)
		for i := range payload.Websites {
			site := &payload.Websites[i]
			s := string(site.ExtractedData)
			if utf8.RuneCountInString(s) <= share {
				continue
			}
			preview := map[string]any{"truncated": true, "preview": sitelens.Truncate(s, share)}
			site.ExtractedData = json.RawMessage(marshalCompact(preview))
		}
		data = sitelens.Truncate(marshalIndent(payload), MaxQuestionPayload)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "You are answering a user question about previously scraped %s websites.\n", d.Name)
	sb.WriteString(`
SMART CONTEXT USAGE INSTRUCTIONS:
- You have been provided with data from MULTIPLE websites (see the "websites" array in the context below)
- Analyze the question to determine which websites are relevant:

  **INCLUDE ALL WEBSITES ONLY WHEN:**
  - Question explicitly asks for comparison ("which", "better", "more", "compare", "versus", "vs")
  - Question asks about competitive landscape, market share, or relative positioning
  - Question asks "which company/website" or "which has more/less"
  - Question requires comparing multiple entities

  **FOCUS ON RELEVANT WEBSITE(S) WHEN:**
  - Question is about a specific company, product, or entity
  - Question asks "what", "how", "why" about a specific topic without comparison
  - Question is about features, capabilities, or details of one entity
  - Only include other websites if they provide relevant context (e.g., competitive mentions, partnerships)

- Clearly indicate which website each piece of information comes from
- Do NOT include irrelevant information from other websites just because it's available
- If the question is about one company, focus on that company's data unless comparison is needed
`)
	fmt.Fprintf(&sb, "\nContext Data (JSON):\n%s\n", data)
	fmt.Fprintf(&sb, "\nQuestion:\n%s\n", question)
	fmt.Fprintf(&sb, "\nGuidance: %s\n", d.QnAStyle)
	sb.WriteString(`
Return JSON:
{
  "answer": "focused answer that uses only relevant websites. Include comparisons only when the question requires it.",
  "supporting_points": ["evidence 1 from [FULL WEBSITE URL starting with http:// or https://]", "evidence 2 from [FULL WEBSITE URL starting with http:// or https://]"],
  "confidence": "high | medium | low"
}

IMPORTANT: For supporting_points, always use the FULL URL (e.g., https://www.example.com/products/item-42) not just the domain name (e.g., example.com). The URL should be clickable and complete.
`)
	return sb.String()
}

func marshalIndent(v any) string {
	return marshal(v, "  ")
}

func marshalCompact(v any) string {
	return marshal(v, "")
}

func marshal(v any, indent string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if indent != "" {
		enc.SetIndent("", indent)
	}
	if err := enc.Encode(v); err != nil {
		return "{}"
	}
	return strings.TrimRight(buf.String(), "\n")
}
