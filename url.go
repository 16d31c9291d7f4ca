package sitelens

import (
	"net/url"
	"strings"
)

// NormalizeURL trims raw and prefixes https:// when it has no scheme.
func NormalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		return raw
	}
	return "https://" + raw
}

// SiteIdentifier returns the short name used to refer to a site in model
// prompts: the host with a leading "www." removed. Unparseable input is
// returned unchanged.
func SiteIdentifier(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return rawURL
	}
	return strings.TrimPrefix(u.Host, "www.")
}

// Hostname returns the lowercased host of rawURL without its port.
func Hostname(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}

// CleanURLs normalizes a caller-supplied URL list, dropping blank entries.
func CleanURLs(urls []string) []string {
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		if n := NormalizeURL(u); n != "" {
			out = append(out, n)
		}
	}
	return out
}
