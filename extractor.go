package sitelens

// ExtractResult holds the readable content of an HTML page.
type ExtractResult struct {
	// Title is the page title extracted from metadata.
	Title string

	// Description is the page summary from metadata, if any.
	Description string

	// ContentHTML is the main content as clean HTML.
	// Boilerplate (nav, footer, sidebar, ads) has been removed.
	ContentHTML string

	// Text is ContentHTML reduced to plain text.
	Text string
}

// Extractor isolates the main readable content of an HTML page. The
// reducer falls back to it when structural reduction finds nothing.
type Extractor interface {
	// Extract processes raw HTML and returns the main content.
	Extract(html string) (*ExtractResult, error)
}
