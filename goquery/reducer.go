// Package goquery reduces raw HTML to the language tag, structured
// metadata and size-bounded text digest handed to the model.
package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/sitelens"
)

// Ensure Reducer implements sitelens.Reducer at compile time.
var _ sitelens.Reducer = (*Reducer)(nil)

// Reducer implements sitelens.Reducer with goquery.
type Reducer struct {
	budget    int
	extractor sitelens.Extractor
	converter sitelens.Converter
}

// Option configures a Reducer.
type Option func(*Reducer)

// WithBudget sets the global digest budget in characters.
// Defaults to sitelens.DefaultDigestBudget.
func WithBudget(n int) Option {
	return func(r *Reducer) {
		r.budget = n
	}
}

// WithReadableFallback makes the reducer run the page through extractor and
// converter when the structural digest comes out empty.
func WithReadableFallback(extractor sitelens.Extractor, converter sitelens.Converter) Option {
	return func(r *Reducer) {
		r.extractor = extractor
		r.converter = converter
	}
}

// NewReducer creates a new Reducer.
func NewReducer(opts ...Option) *Reducer {
	r := &Reducer{budget: sitelens.DefaultDigestBudget}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Reduce parses html and returns its language, structured signal and digest.
func (r *Reducer) Reduce(html string, signal *sitelens.StructuredSignal) (*sitelens.Reduction, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, sitelens.Errorf(sitelens.EINVALID, "failed to parse HTML: %v", err)
	}

	// Structured markup lives in script tags, so read it before cleaning.
	if signal == nil {
		signal = extractStructured(doc)
	}

	doc.Find("script, style, noscript, link").Remove()
	language := detectLanguage(doc)
	doc.Find("meta").Remove()

	frags := collectFragments(doc, signal)
	if len(frags) == 0 {
		frags = r.readable(html)
	}

	return &sitelens.Reduction{
		Language: language,
		Signal:   signal,
		Digest:   sitelens.NewDigest(frags, r.budget),
	}, nil
}

// readable runs the fallback extractor. Its failures leave the digest empty.
func (r *Reducer) readable(html string) []sitelens.Fragment {
	if r.extractor == nil || r.converter == nil {
		return nil
	}
	res, err := r.extractor.Extract(html)
	if err != nil {
		return nil
	}
	text := res.Text
	if res.ContentHTML != "" {
		if md, err := r.converter.Convert(res.ContentHTML); err == nil {
			text = md
		}
	}
	return readableFragments(text)
}
