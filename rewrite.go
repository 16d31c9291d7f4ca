package sitelens

import (
	"regexp"
	"strings"
)

// RewriteSupportingPoints replaces bare site identifiers in points with the
// full URL of the matching result so every point carries a clickable source.
// Identifiers match regardless of case.
func RewriteSupportingPoints(points []string, urls []string) []string {
	type target struct {
		name string
		url  string
	}
	var targets []target
	seen := make(map[string]bool)
	add := func(name, url string) {
		if name == "" || seen[name] {
			return
		}
		seen[name] = true
		targets = append(targets, target{name: name, url: url})
	}
	for _, u := range urls {
		site := SiteIdentifier(u)
		if site == u {
			continue
		}
		add(site, u)
		if label, _, ok := strings.Cut(site, "."); ok {
			add(label, u)
		}
	}

	out := make([]string, len(points))
	for i, p := range points {
		for _, t := range targets {
			if strings.Contains(p, t.url) {
				continue
			}
			name := regexp.QuoteMeta(t.name)
			p = regexp.MustCompile(`(?i)\(`+name+`\)`).ReplaceAllLiteralString(p, "("+t.url+")")
			p = regexp.MustCompile(`(?i)\[`+name+`\]`).ReplaceAllLiteralString(p, "["+t.url+"]")
			if strings.Contains(p, t.url) {
				continue
			}
			re := regexp.MustCompile(`(?i)\b` + name + `\b`)
			if loc := re.FindStringIndex(p); loc != nil {
				p = p[:loc[0]] + t.url + p[loc[1]:]
			}
		}
		out[i] = p
	}
	return out
}
