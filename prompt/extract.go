package prompt

import (
	"context"
	"fmt"
	"strings"

	"github.com/fwojciec/sitelens"
)

// MaxExtractContent caps the digest text embedded in an extraction prompt.
const MaxExtractContent = 8000

// Ensure Extractor implements sitelens.Prompter at compile time.
var _ sitelens.Prompter = (*Extractor)(nil)

// Extractor asks the model for structured data from a page digest.
type Extractor struct {
	llm sitelens.LLM
}

// NewExtractor creates a new Extractor.
func NewExtractor(llm sitelens.LLM) *Extractor {
	return &Extractor{llm: llm}
}

// Extract builds the extraction prompt, calls the model and recovers a
// record from the reply. Structured product fields from the page override
// whatever the model returned for the same keys.
func (e *Extractor) Extract(ctx context.Context, req sitelens.ExtractRequest) (*sitelens.Record, error) {
	reply, err := e.llm.Generate(ctx, BuildExtractionPrompt(req))
	var rec *sitelens.Record
	if err != nil {
		salvaged, ok := recoverRecord(reply)
		if !ok {
			return nil, sitelens.Errorf(sitelens.EINTERNAL, "LLM extraction error: %s", sitelens.ErrorMessage(err))
		}
		rec = salvaged
	} else {
		rec = Recover(reply)
	}

	if req.Signal != nil {
		req.Signal.Product.Apply(rec)
	}
	return rec, nil
}

// BuildExtractionPrompt assembles the extraction prompt for one page.
func BuildExtractionPrompt(req sitelens.ExtractRequest) string {
	domain := sitelens.LookupDomain(req.Domain)
	instruction := strings.TrimSpace(req.Instruction)
	if instruction == "" {
		instruction = "Extract all relevant information."
	}

	var sb strings.Builder
	sb.WriteString("You are a web scraping assistant. Extract data from the following webpage content based on the user's instruction.\n")
	if lang := req.Language; lang != "" && lang != sitelens.DefaultLanguage {
		fmt.Fprintf(&sb, "Note: This webpage appears to be in %s language. Please extract data accordingly, maintaining the original language of the content unless the user specifically requests translation.\n", strings.ToUpper(lang))
	}

	fmt.Fprintf(&sb, "\nURL: %s\n", req.URL)
	fmt.Fprintf(&sb, "You are an expert data extractor for %s websites. Extract the user's requested information plus important %s signals.\n", domain.Name, domain.Name)
	fmt.Fprintf(&sb, "Key fields to look for: %s\n", strings.Join(domain.Parameters, ", "))

	if len(domain.Checklist) > 0 {
		sb.WriteString("\nMandatory fields (always include these keys, use null when the page does not show them):\n")
		for _, field := range domain.Checklist {
			fmt.Fprintf(&sb, "- %s\n", field)
		}
		if domain.PreferStructured {
			sb.WriteString("Prefer values from STRUCTURED_DATA, PRICE, RATING and REVIEW_COUNT lines over values inferred from free text.\n")
		}
	}

	DetectIntent(req.Instruction).writeTo(&sb)

	fmt.Fprintf(&sb, "\nUser Instruction: %s\n", instruction)
	fmt.Fprintf(&sb, "\nWebpage Content:\n%s\n", sitelens.Truncate(req.Digest, MaxExtractContent))

	sb.WriteString(`
Please extract the requested data and return it as a JSON object. The JSON should have clear field names based on what was requested.
For example, if the user asks for "product names and prices", return:
{
  "product_names": ["Product 1", "Product 2"],
  "prices": ["$10", "$20"]
}

Be intelligent about identifying:
- Tables (return as arrays of objects)
- Lists (return as arrays)
- Prices (extract numbers and currency symbols, handle different currencies)
- Reviews (extract review text and ratings)
- Headings, links and any other structured data

IMPORTANT: If the content is in a language other than English, preserve the original language in the extracted data unless the user specifically requests translation.

Return ONLY valid JSON, no additional text or markdown formatting.`)
	return sb.String()
}
