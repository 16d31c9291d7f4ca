package goquery

import (
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/sitelens"
)

// languageSample is how much body text the lexical scorer looks at.
const languageSample = 500

// languageThreshold is the marker count a language must exceed.
const languageThreshold = 2

type languageMarkers struct {
	lang    string
	markers []string

	// substring languages do not separate words with spaces.
	substring bool
}

var languageTable = []languageMarkers{
	{lang: "es", markers: []string{"el", "la", "de", "que", "y", "en", "un", "es", "se", "no", "te", "lo", "le"}},
	{lang: "fr", markers: []string{"le", "de", "et", "à", "un", "il", "être", "en", "avoir", "que", "pour"}},
	{lang: "de", markers: []string{"der", "die", "und", "in", "den", "von", "zu", "das", "mit", "sich", "des", "auf"}},
	{lang: "it", markers: []string{"il", "di", "che", "e", "la", "a", "per", "è", "in", "un", "sono", "le"}},
	{lang: "pt", markers: []string{"o", "de", "a", "e", "do", "da", "em", "um", "para", "é", "com", "não"}},
	{lang: "ru", markers: []string{"в", "и", "не", "что", "он", "на", "я", "с", "со", "как", "а", "то"}},
	{lang: "zh", markers: []string{"的", "一", "是", "在", "不", "了", "有", "和", "人", "这", "中", "大"}, substring: true},
	{lang: "ja", markers: []string{"の", "に", "は", "を", "た", "が", "で", "て", "と", "し", "れ", "さ"}, substring: true},
	{lang: "ko", markers: []string{"이", "가", "을", "를", "에", "의", "와", "과", "도", "로", "에서", "부터"}, substring: true},
	{lang: "ar", markers: []string{"في", "من", "إلى", "على", "أن", "هو", "هي", "كان", "كانت", "مع", "هذا", "هذه"}},
}

// detectLanguage returns a two-letter language code from the root lang
// attribute, the Content-Language meta header, or stop-word scoring of the
// body text, in that order.
func detectLanguage(doc *goquery.Document) string {
	if lang, ok := doc.Find("html").First().Attr("lang"); ok && strings.TrimSpace(lang) != "" {
		return languageCode(lang)
	}

	var meta string
	doc.Find("meta[http-equiv]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if strings.EqualFold(s.AttrOr("http-equiv", ""), "content-language") {
			meta = s.AttrOr("content", "")
			return false
		}
		return true
	})
	if strings.TrimSpace(meta) != "" {
		return languageCode(meta)
	}

	return scoreLanguage(sitelens.Truncate(doc.Find("body").Text(), languageSample))
}

func languageCode(lang string) string {
	lang = strings.TrimSpace(lang)
	if len(lang) < 2 {
		return sitelens.DefaultLanguage
	}
	return strings.ToLower(lang[:2])
}

// scoreLanguage counts distinct marker hits per language and returns the
// best language above the threshold.
func scoreLanguage(text string) string {
	text = strings.ToLower(text)
	words := make(map[string]bool)
	for _, w := range strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsMark(r)
	}) {
		words[w] = true
	}

	best, bestScore := sitelens.DefaultLanguage, 0
	for _, lm := range languageTable {
		score := 0
		seen := make(map[string]bool)
		for _, m := range lm.markers {
			if seen[m] {
				continue
			}
			seen[m] = true
			if lm.substring && strings.Contains(text, m) || !lm.substring && words[m] {
				score++
			}
		}
		if score > bestScore {
			best, bestScore = lm.lang, score
		}
	}
	if bestScore > languageThreshold {
		return best
	}
	return sitelens.DefaultLanguage
}
