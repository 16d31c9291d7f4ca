// Package htmltomarkdown turns readable page content into the Markdown the
// reducer sends to the model when a page has no structural fragments.
package htmltomarkdown

import (
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/fwojciec/sitelens"
)

// Ensure Converter implements sitelens.Converter at compile time.
var _ sitelens.Converter = (*Converter)(nil)

// noiseTags never carry text worth sending to the model.
var noiseTags = []string{"img", "svg", "picture", "iframe", "form", "button"}

// Converter renders extracted HTML as Markdown with tables kept and media
// dropped.
type Converter struct {
	conv *converter.Converter
}

// NewConverter returns a Converter with the CommonMark and table plugins.
func NewConverter() *Converter {
	conv := converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			table.NewTablePlugin(),
		),
	)
	for _, tag := range noiseTags {
		conv.Register.TagType(tag, converter.TagTypeRemove, converter.PriorityStandard)
	}
	return &Converter{conv: conv}
}

// Convert returns html as trimmed Markdown.
func (c *Converter) Convert(html string) (string, error) {
	if strings.TrimSpace(html) == "" {
		return "", sitelens.Errorf(sitelens.EINVALID, "empty HTML input")
	}

	result, err := c.conv.ConvertString(html)
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(result), nil
}
