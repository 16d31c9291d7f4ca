package pipeline

import (
	"context"
	"fmt"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/sitelens"
)

// Ensure Processor implements sitelens.Scraper at compile time.
var _ sitelens.Scraper = (*Processor)(nil)

// Processor runs one URL through fetch, reduce, extract and analyze.
type Processor struct {
	Fetcher     sitelens.Fetcher
	Reducer     sitelens.Reducer
	Prompter    sitelens.Prompter
	Synthesizer sitelens.Synthesizer

	// RateLimiter, when set, is waited on per host before each fetch.
	RateLimiter sitelens.DomainLimiter
}

// Scrape processes req.URL, reporting each stage to progress. Analysis
// problems are reported inside the result; only fetch, reduce and
// extraction failures are returned as errors.
func (p *Processor) Scrape(ctx context.Context, req sitelens.ScrapeRequest, progress sitelens.ProgressFunc) (*sitelens.ScrapeResult, error) {
	url := sitelens.NormalizeURL(req.URL)
	if url == "" {
		return nil, sitelens.Errorf(sitelens.EINVALID, "URL required")
	}
	domain, err := sitelens.ValidateDomain(req.Domain)
	if err != nil {
		return nil, err
	}

	progress.Report(sitelens.ProgressEvent{
		Stage:   sitelens.StageFetching,
		Message: fmt.Sprintf("Fetching %s...", url),
	})
	if p.RateLimiter != nil {
		if err := p.RateLimiter.Wait(ctx, sitelens.Hostname(url)); err != nil {
			return nil, err
		}
	}
	html, err := p.Fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}

	reduction, err := p.Reducer.Reduce(html, nil)
	if err != nil {
		return nil, err
	}
	progress.Report(sitelens.ProgressEvent{
		Stage:   sitelens.StageCleaning,
		Message: fmt.Sprintf("Processing content (Language: %s)...", reduction.Language),
	})
	digest := reduction.Digest.String()

	progress.Report(sitelens.ProgressEvent{
		Stage:   sitelens.StageExtracting,
		Message: "Extracting data with AI...",
	})
	data, err := p.Prompter.Extract(ctx, sitelens.ExtractRequest{
		Digest:      digest,
		Instruction: req.Instruction,
		URL:         url,
		Language:    reduction.Language,
		Domain:      domain,
		Signal:      reduction.Signal,
	})
	if err != nil {
		return nil, err
	}

	progress.Report(sitelens.ProgressEvent{
		Stage:   sitelens.StageAnalyzing,
		Message: "Generating insights...",
	})
	analysis := p.Synthesizer.Analyze(ctx, sitelens.AnalyzeRequest{
		Domain:      domain,
		Data:        data,
		Instruction: req.Instruction,
		Language:    reduction.Language,
	})

	return &sitelens.ScrapeResult{
		URL:           url,
		Domain:        domain,
		Language:      reduction.Language,
		ExtractedData: data,
		Analysis:      analysis,
		ContentHash:   computeHash(digest),
	}, nil
}

// computeHash computes a hash of the content using xxhash.
func computeHash(content string) string {
	h := xxhash.Sum64String(content)
	return fmt.Sprintf("%x", h)
}
