package sitelens

import "context"

// LLM sends a prompt to a language model and returns its raw reply.
type LLM interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// ExtractRequest carries everything the extraction prompt is built from.
type ExtractRequest struct {
	Digest      string
	Instruction string
	URL         string
	Language    string
	Domain      string

	// Signal, when non-nil, overrides model values with structured markup.
	Signal *StructuredSignal
}

// Prompter asks the model to extract structured data from a digest.
type Prompter interface {
	// Extract returns the extracted record. Malformed model output yields a
	// degraded record rather than an error; an error is returned only when
	// the model call itself failed.
	Extract(ctx context.Context, req ExtractRequest) (*Record, error)
}

// Confidence levels of a QnARecord.
const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
	ConfidenceLow    = "low"
)

// AnalysisRecord is the fixed-shape analysis of one page.
type AnalysisRecord struct {
	Summary           string   `json:"summary"`
	KeyPoints         []string `json:"key_points"`
	Insights          []string `json:"insights"`
	UserRequestAnswer string   `json:"user_request_answer"`
	Opportunities     []string `json:"opportunities"`
	Risks             []string `json:"risks"`
	NextSteps         []string `json:"next_steps"`
}

// PlaceholderAnalysis is substituted when an analysis could not be produced.
func PlaceholderAnalysis(err error) *AnalysisRecord {
	msg := "unknown error"
	if err != nil {
		msg = ErrorMessage(err)
	}
	return &AnalysisRecord{
		Summary:       "Could not generate structured analysis.",
		KeyPoints:     []string{},
		Insights:      []string{"Error: " + msg},
		Opportunities: []string{},
		Risks:         []string{},
		NextSteps:     []string{},
	}
}

// QnARecord is the answer to a follow-up question about a task.
type QnARecord struct {
	Answer           string   `json:"answer"`
	SupportingPoints []string `json:"supporting_points"`
	Confidence       string   `json:"confidence"`
	Error            string   `json:"error,omitempty"`
}

// SiteResult is the successful outcome for one URL as seen by the
// comparison and question answering prompts.
type SiteResult struct {
	URL           string
	ExtractedData *Record
	Analysis      *AnalysisRecord
}

// AnalyzeRequest carries the inputs of a single-page analysis.
type AnalyzeRequest struct {
	Domain      string
	Data        *Record
	Instruction string
	Language    string
}

// Synthesizer produces analyses, comparisons and answers from extracted data.
// None of its operations fail: problems are reported inside the returned
// records.
type Synthesizer interface {
	Analyze(ctx context.Context, req AnalyzeRequest) *AnalysisRecord
	Compare(ctx context.Context, domain string, results []SiteResult, instruction string) *Record
	Answer(ctx context.Context, domain string, results []SiteResult, question, instruction string) *QnARecord
}

// Asker answers follow-up questions about a completed task.
type Asker interface {
	// Ask returns an answer grounded in the task's successful results with
	// supporting points rewritten to full URLs. It fails with ENOTFOUND for
	// a missing task and EINVALID when the task cannot be asked about yet.
	Ask(ctx context.Context, taskID int, question string) (*QnARecord, error)
}
