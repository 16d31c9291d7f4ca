package goquery

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/sitelens"
)

// Count and length caps per fragment category. The priority categories
// are sized so that together they always fit sitelens.DefaultDigestBudget.
const (
	maxCodeBlocks   = 4
	maxCodeLen      = 750
	maxStructured   = 3
	maxStructLen    = 900
	maxSignals      = 10
	maxSignalLen    = 100
	maxHeadings     = 50
	maxHeadingLen   = 300
	maxParagraphs   = 100
	maxParagraphLen = 500
	minParagraphLen = 10
	maxLists        = 20
	maxListItems    = 50
	maxListItemLen  = 200
	maxTables       = 10
	maxTableRows    = 50
	maxCellLen      = 100
	maxLinks        = 50
	maxLinkTextLen  = 100
)

var priceSelectors = []string{
	`[itemprop="price"]`,
	`[class*="price"]`,
	`[id*="price"]`,
	`[data-price]`,
	`[data-testid*="price"]`,
	`.a-price`,
}

var ratingSelectors = []string{
	`[itemprop="ratingValue"]`,
	`[class*="rating"]`,
	`[class*="stars"]`,
	`[aria-label*="star"]`,
	`[data-rating]`,
	`[class*="review-score"]`,
}

var reviewCountSelectors = []string{
	`[itemprop="reviewCount"]`,
	`[itemprop="ratingCount"]`,
	`[class*="review"]`,
	`[class*="ratings-count"]`,
	`[id*="review"]`,
	`[data-hook*="review"]`,
	`a[href*="review"]`,
}

var (
	digitRe       = regexp.MustCompile(`\d`)
	reviewCountRe = regexp.MustCompile(`(?i)\d[\d,.]*\s*(reviews?|ratings?|customers?)`)
)

// collectFragments walks the cleaned document in priority order.
func collectFragments(doc *goquery.Document, signal *sitelens.StructuredSignal) []sitelens.Fragment {
	var frags []sitelens.Fragment
	add := func(kind sitelens.FragmentKind, text string) {
		frags = append(frags, sitelens.Fragment{Kind: kind, Text: text})
	}

	// Code blocks keep their internal whitespace.
	n := 0
	doc.Find("pre, code").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if goquery.NodeName(s) == "code" && s.ParentsFiltered("pre").Length() > 0 {
			return true
		}
		text := strings.TrimSpace(s.Text())
		if text == "" {
			return true
		}
		add(sitelens.FragmentCode, sitelens.Truncate(text, maxCodeLen))
		n++
		return n < maxCodeBlocks
	})

	for i, b := range signal.Blocks {
		if i == maxStructured {
			break
		}
		add(sitelens.FragmentStructured, sitelens.Truncate("["+b.Type+"] "+string(b.Raw), maxStructLen))
	}

	for _, text := range matchSignals(doc, priceSelectors, func(s string) bool {
		return digitRe.MatchString(s)
	}) {
		add(sitelens.FragmentPrice, text)
	}
	for _, text := range matchSignals(doc, ratingSelectors, func(s string) bool {
		return digitRe.MatchString(s) || strings.Contains(strings.ToLower(s), "star")
	}) {
		add(sitelens.FragmentRating, text)
	}
	for _, text := range matchSignals(doc, reviewCountSelectors, func(s string) bool {
		return reviewCountRe.MatchString(s)
	}) {
		add(sitelens.FragmentReviewCount, text)
	}

	first(doc.Find("h1, h2, h3, h4, h5, h6"), maxHeadings).Each(func(_ int, s *goquery.Selection) {
		if text := collapse(s.Text()); text != "" {
			add(sitelens.FragmentHeading, sitelens.Truncate(text, maxHeadingLen))
		}
	})

	first(doc.Find("p"), maxParagraphs).Each(func(_ int, s *goquery.Selection) {
		if text := collapse(s.Text()); len([]rune(text)) > minParagraphLen {
			add(sitelens.FragmentParagraph, sitelens.Truncate(text, maxParagraphLen))
		}
	})

	first(doc.Find("ul, ol"), maxLists).Each(func(_ int, list *goquery.Selection) {
		var items []string
		first(list.Find("li"), maxListItems).Each(func(_ int, li *goquery.Selection) {
			items = append(items, sitelens.Truncate(collapse(li.Text()), maxListItemLen))
		})
		if len(items) > 0 {
			add(sitelens.FragmentList, strings.Join(items, " | "))
		}
	})

	first(doc.Find("table"), maxTables).Each(func(_ int, table *goquery.Selection) {
		var rows []string
		first(table.Find("tr"), maxTableRows).Each(func(_ int, tr *goquery.Selection) {
			var cells []string
			tr.Find("td, th").Each(func(_ int, cell *goquery.Selection) {
				cells = append(cells, sitelens.Truncate(collapse(cell.Text()), maxCellLen))
			})
			if len(cells) > 0 {
				rows = append(rows, strings.Join(cells, " | "))
			}
		})
		if len(rows) > 0 {
			add(sitelens.FragmentTable, strings.Join(rows, " || "))
		}
	})

	first(doc.Find("a[href]"), maxLinks).Each(func(_ int, a *goquery.Selection) {
		text := collapse(a.Text())
		if text == "" || len([]rune(text)) >= maxLinkTextLen {
			return
		}
		href := strings.TrimSpace(a.AttrOr("href", ""))
		if strings.HasPrefix(href, "http") || strings.HasPrefix(href, "/") {
			add(sitelens.FragmentLink, text+" -> "+href)
		}
	})

	return frags
}

// matchSignals returns the deduplicated texts of elements matching any
// selector that pass the cue check.
func matchSignals(doc *goquery.Document, selectors []string, cue func(string) bool) []string {
	var out []string
	seen := make(map[string]bool)
	for _, sel := range selectors {
		doc.Find(sel).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			text := collapse(s.Text())
			if text == "" {
				text = collapse(s.AttrOr("content", s.AttrOr("aria-label", "")))
			}
			text = sitelens.Truncate(text, maxSignalLen)
			if text == "" || !cue(text) {
				return true
			}
			key := strings.ToLower(text)
			if seen[key] {
				return true
			}
			seen[key] = true
			out = append(out, text)
			return len(out) < maxSignals
		})
		if len(out) >= maxSignals {
			break
		}
	}
	return out
}

func first(s *goquery.Selection, n int) *goquery.Selection {
	if s.Length() <= n {
		return s
	}
	return s.Slice(0, n)
}

// collapse trims text and folds internal whitespace runs to single spaces.
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// readableFragments turns Markdown from the readable-content fallback into
// paragraph fragments.
func readableFragments(markdown string) []sitelens.Fragment {
	var frags []sitelens.Fragment
	for _, block := range strings.Split(markdown, "\n\n") {
		text := collapse(block)
		if len([]rune(text)) <= minParagraphLen {
			continue
		}
		frags = append(frags, sitelens.Fragment{
			Kind: sitelens.FragmentParagraph,
			Text: sitelens.Truncate(text, maxParagraphLen),
		})
		if len(frags) == maxParagraphs {
			break
		}
	}
	return frags
}
