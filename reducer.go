package sitelens

import "encoding/json"

// DefaultLanguage is the language assumed when a page gives no signal.
const DefaultLanguage = "en"

// StructuredBlock is one raw schema markup object found in a page.
type StructuredBlock struct {
	Type string          `json:"type"`
	Raw  json.RawMessage `json:"raw"`
}

// StructuredSignal holds the machine-readable metadata embedded in a page.
type StructuredSignal struct {
	Blocks  []StructuredBlock `json:"blocks"`
	Product ProductFields     `json:"product"`
}

// ByType groups the raw blocks by their declared schema type.
func (s *StructuredSignal) ByType() map[string][]json.RawMessage {
	out := make(map[string][]json.RawMessage)
	if s == nil {
		return out
	}
	for _, b := range s.Blocks {
		out[b.Type] = append(out[b.Type], b.Raw)
	}
	return out
}

// Empty reports whether the page carried no structured metadata.
func (s *StructuredSignal) Empty() bool {
	return s == nil || (len(s.Blocks) == 0 && s.Product.Empty())
}

// ProductFields are the normalized product values derived from schema
// markup. They take precedence over values inferred by the model.
type ProductFields struct {
	Name         string `json:"name,omitempty"`
	Price        string `json:"price,omitempty"`
	Currency     string `json:"currency,omitempty"`
	Availability string `json:"availability,omitempty"`
	Rating       string `json:"rating,omitempty"`
	ReviewCount  string `json:"review_count,omitempty"`
	Description  string `json:"description,omitempty"`
	Brand        string `json:"brand,omitempty"`
}

// Fields returns the non-empty fields keyed by their record name, in a
// stable order.
func (p ProductFields) Fields() [][2]string {
	all := [][2]string{
		{"name", p.Name},
		{"price", p.Price},
		{"currency", p.Currency},
		{"availability", p.Availability},
		{"rating", p.Rating},
		{"review_count", p.ReviewCount},
		{"description", p.Description},
		{"brand", p.Brand},
	}
	var out [][2]string
	for _, f := range all {
		if f[1] != "" {
			out = append(out, f)
		}
	}
	return out
}

// Empty reports whether no product field is set.
func (p ProductFields) Empty() bool {
	return len(p.Fields()) == 0
}

// Apply overwrites the same-named keys of rec with the non-empty fields.
func (p ProductFields) Apply(rec *Record) {
	for _, f := range p.Fields() {
		rec.Set(f[0], f[1])
	}
}

// Reduction is the result of reducing a page.
type Reduction struct {
	Language string
	Signal   *StructuredSignal
	Digest   *Digest
}

// Reducer turns raw HTML into a language tag, a structured signal and a
// content digest.
type Reducer interface {
	// Reduce parses html. When signal is non-nil it is used instead of
	// extracting the structured metadata again.
	Reduce(html string, signal *StructuredSignal) (*Reduction, error)
}

// LanguageMode returns the most frequent language, breaking ties by first
// occurrence. It returns DefaultLanguage for an empty list.
func LanguageMode(langs []string) string {
	counts := make(map[string]int)
	best, bestCount := "", 0
	for _, l := range langs {
		if l == "" {
			continue
		}
		counts[l]++
	}
	for _, l := range langs {
		if l == "" {
			continue
		}
		if counts[l] > bestCount {
			best, bestCount = l, counts[l]
		}
	}
	if best == "" {
		return DefaultLanguage
	}
	return best
}
