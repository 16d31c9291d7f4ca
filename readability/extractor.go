// Package readability provides the alternative readable-content extractor
// selected with --extractor readability.
package readability

import (
	"strings"

	"github.com/fwojciec/sitelens"
	"github.com/go-shiori/go-readability"
)

// Ensure Extractor implements sitelens.Extractor at compile time.
var _ sitelens.Extractor = (*Extractor)(nil)

// Extractor pulls the article body out of a page the reducer found no
// structural content in.
type Extractor struct{}

// NewExtractor returns an Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract returns the title, excerpt and main content of rawHTML.
func (e *Extractor) Extract(rawHTML string) (*sitelens.ExtractResult, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, sitelens.Errorf(sitelens.EINVALID, "empty HTML input")
	}

	article, err := readability.FromReader(strings.NewReader(rawHTML), nil)
	if err != nil {
		return nil, err
	}

	return &sitelens.ExtractResult{
		Title:       strings.TrimSpace(article.Title),
		Description: strings.TrimSpace(article.Excerpt),
		ContentHTML: strings.TrimSpace(article.Content),
		Text:        strings.TrimSpace(article.TextContent),
	}, nil
}
