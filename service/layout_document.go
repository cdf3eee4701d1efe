package service

import (
	"encoding/json"
	"fmt"
	"html"
	"strings"

	"github.com/tieubaoca/docproc-be/types"
)

// PageContent is the text of one decoded page.
type PageContent struct {
	Number int    `json:"number"`
	Text   string `json:"text"`
}

// LayoutDocument is the document handle produced by the layout backend's
// converter. It keeps per-page text, so structured exports can mark page
// boundaries. Table and figure counts are whatever the converter could
// detect; poppler-based conversion leaves them at zero.
type LayoutDocument struct {
	Source      string        `json:"source"`
	Pages       []PageContent `json:"pages"`
	TableCount  int           `json:"tables"`
	FigureCount int           `json:"figures"`
}

func (d *LayoutDocument) ExportText() (string, error) {
	var b strings.Builder
	for i, page := range d.Pages {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(page.Text)
	}
	return b.String(), nil
}

func (d *LayoutDocument) ExportMarkdown() (string, error) {
	var b strings.Builder
	for i, page := range d.Pages {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "## Page %d\n\n", page.Number)
		b.WriteString(page.Text)
	}
	return b.String(), nil
}

func (d *LayoutDocument) ExportHTML() (string, error) {
	var b strings.Builder
	b.WriteString("<article>\n")
	for _, page := range d.Pages {
		fmt.Fprintf(&b, "<section data-page=\"%d\">\n<h2>Page %d</h2>\n", page.Number, page.Number)
		for _, para := range strings.Split(page.Text, "\n\n") {
			para = strings.TrimSpace(para)
			if para == "" {
				continue
			}
			fmt.Fprintf(&b, "<p>%s</p>\n", html.EscapeString(para))
		}
		b.WriteString("</section>\n")
	}
	b.WriteString("</article>\n")
	return b.String(), nil
}

func (d *LayoutDocument) ExportJSON() (string, error) {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to serialize document: %w", err)
	}
	return string(data), nil
}

func (d *LayoutDocument) Stats() types.DocumentStats {
	return types.DocumentStats{
		Pages:   len(d.Pages),
		Tables:  d.TableCount,
		Figures: d.FigureCount,
	}
}
