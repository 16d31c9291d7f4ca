package sitelens

import (
	"strings"
	"unicode/utf8"
)

// DefaultDigestBudget is the global character budget of a digest.
const DefaultDigestBudget = 10000

// NoContentText is the digest text of a page without extractable content.
const NoContentText = "No extractable content found on this page."

// TruncationMarker is appended to a digest when fragments were dropped.
const TruncationMarker = "... (content truncated)"

// FragmentKind tags a digest fragment.
type FragmentKind string

// Fragment kinds in priority order.
const (
	FragmentCode        FragmentKind = "CODE"
	FragmentStructured  FragmentKind = "STRUCTURED_DATA"
	FragmentPrice       FragmentKind = "PRICE"
	FragmentRating      FragmentKind = "RATING"
	FragmentReviewCount FragmentKind = "REVIEW_COUNT"
	FragmentHeading     FragmentKind = "HEADING"
	FragmentParagraph   FragmentKind = "PARAGRAPH"
	FragmentList        FragmentKind = "LIST"
	FragmentTable       FragmentKind = "TABLE"
	FragmentLink        FragmentKind = "LINK"
)

// Priority reports whether fragments of this kind are always kept when a
// digest is over budget.
func (k FragmentKind) Priority() bool {
	switch k {
	case FragmentCode, FragmentStructured, FragmentPrice, FragmentRating, FragmentReviewCount:
		return true
	}
	return false
}

// Fragment is one tagged line of a digest.
type Fragment struct {
	Kind FragmentKind
	Text string
}

func (f Fragment) String() string {
	return string(f.Kind) + ": " + f.Text
}

// Digest is the size-bounded, priority-ordered text reduction of a page.
type Digest struct {
	Fragments []Fragment

	// Truncated is set when fragments were dropped to fit the budget.
	Truncated bool
}

// Empty reports whether the digest has no fragments.
func (d *Digest) Empty() bool {
	return d == nil || len(d.Fragments) == 0
}

// String renders the digest as newline-separated fragments. An empty
// digest renders as NoContentText.
func (d *Digest) String() string {
	if d.Empty() {
		return NoContentText
	}
	var sb strings.Builder
	for i, f := range d.Fragments {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(f.String())
	}
	if d.Truncated {
		sb.WriteString("\n")
		sb.WriteString(TruncationMarker)
	}
	return sb.String()
}

// NewDigest assembles fragments under budget characters. When everything
// does not fit, priority fragments are kept first and the remaining budget
// is filled with lower-priority fragments in their original order.
func NewDigest(fragments []Fragment, budget int) *Digest {
	total := 0
	for i, f := range fragments {
		if i > 0 {
			total++
		}
		total += fragmentLen(f)
	}
	if total <= budget {
		return &Digest{Fragments: fragments}
	}

	available := budget - utf8.RuneCountInString("\n"+TruncationMarker)
	keep := make([]bool, len(fragments))
	used := 0
	take := func(i int) {
		n := fragmentLen(fragments[i])
		if used > 0 {
			n++
		}
		if used+n <= available {
			keep[i] = true
			used += n
		}
	}
	for i, f := range fragments {
		if f.Kind.Priority() {
			take(i)
		}
	}
	for i, f := range fragments {
		if !f.Kind.Priority() {
			take(i)
		}
	}

	d := &Digest{Truncated: true}
	for i, f := range fragments {
		if keep[i] {
			d.Fragments = append(d.Fragments, f)
		}
	}
	return d
}

func fragmentLen(f Fragment) int {
	return utf8.RuneCountInString(string(f.Kind)) + 2 + utf8.RuneCountInString(f.Text)
}

// Truncate shortens s to at most n characters without splitting a rune.
func Truncate(s string, n int) string {
	if n < 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
