package fs

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/fwojciec/sitelens"
)

// URLToPath converts a page URL to a relative report path under a
// directory named after the site.
// Example: https://www.example.com/docs/api/users → example.com/docs/api/users.md
func URLToPath(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	if host == "" {
		return "", fmt.Errorf("url has no host: %s", rawURL)
	}

	for _, seg := range strings.Split(u.Path, "/") {
		if seg == ".." {
			return "", fmt.Errorf("path traversal in url: %s", rawURL)
		}
	}

	path := u.Path

	// Handle root or trailing slash → index.md
	if path == "" || path == "/" {
		return host + "/index.md", nil
	}

	// Remove leading slash
	path = strings.TrimPrefix(path, "/")

	// Trailing slash becomes index.md in that directory
	if strings.HasSuffix(path, "/") {
		return host + "/" + path + "index.md", nil
	}

	return host + "/" + path + ".md", nil
}

// FormatReport renders a successful result as markdown with YAML
// frontmatter.
func FormatReport(res *sitelens.ScrapeResult, exported time.Time) string {
	var b strings.Builder
	b.WriteString("---\n")
	b.WriteString("source: ")
	b.WriteString(res.URL)
	b.WriteString("\ndomain: ")
	b.WriteString(res.Domain)
	b.WriteString("\nlanguage: ")
	b.WriteString(res.Language)
	b.WriteString("\nexported: ")
	b.WriteString(exported.Format("2006-01-02"))
	b.WriteString("\n---\n\n")

	fmt.Fprintf(&b, "# %s\n", sitelens.SiteIdentifier(res.URL))

	if a := res.Analysis; a != nil {
		if a.Summary != "" {
			fmt.Fprintf(&b, "\n%s\n", a.Summary)
		}
		if a.UserRequestAnswer != "" {
			fmt.Fprintf(&b, "\n## Answer\n\n%s\n", a.UserRequestAnswer)
		}
		writeList(&b, "Key points", a.KeyPoints)
		writeList(&b, "Insights", a.Insights)
		writeList(&b, "Opportunities", a.Opportunities)
		writeList(&b, "Risks", a.Risks)
		writeList(&b, "Next steps", a.NextSteps)
	}

	if data := res.ExtractedData; data != nil && data.Len() > 0 {
		b.WriteString("\n## Extracted data\n\n")
		for _, k := range data.Keys() {
			v, _ := data.Get(k)
			fmt.Fprintf(&b, "- **%s**: %s\n", k, sitelens.FormatValue(v))
		}
	}
	return b.String()
}

func writeList(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "\n## %s\n\n", title)
	for _, item := range items {
		fmt.Fprintf(b, "- %s\n", item)
	}
}
