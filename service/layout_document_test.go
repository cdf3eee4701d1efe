package service

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoPageDoc() *LayoutDocument {
	return &LayoutDocument{
		Source: "report.pdf",
		Pages: []PageContent{
			{Number: 1, Text: "First page text."},
			{Number: 2, Text: "Second page text."},
		},
		TableCount: 3,
	}
}

func TestLayoutDocumentExportText(t *testing.T) {
	text, err := twoPageDoc().ExportText()
	require.NoError(t, err)
	assert.Equal(t, "First page text.\n\nSecond page text.", text)
}

func TestLayoutDocumentExportMarkdown(t *testing.T) {
	md, err := twoPageDoc().ExportMarkdown()
	require.NoError(t, err)
	assert.Contains(t, md, "## Page 1\n\nFirst page text.")
	assert.Contains(t, md, "## Page 2\n\nSecond page text.")
}

func TestLayoutDocumentExportHTML(t *testing.T) {
	doc := &LayoutDocument{
		Pages: []PageContent{{Number: 1, Text: "a < b & c"}},
	}
	out, err := doc.ExportHTML()
	require.NoError(t, err)
	assert.Contains(t, out, `<section data-page="1">`)
	assert.Contains(t, out, "<p>a &lt; b &amp; c</p>")
}

func TestLayoutDocumentExportJSON(t *testing.T) {
	out, err := twoPageDoc().ExportJSON()
	require.NoError(t, err)

	var decoded LayoutDocument
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, "report.pdf", decoded.Source)
	require.Len(t, decoded.Pages, 2)
}

func TestLayoutDocumentStats(t *testing.T) {
	stats := twoPageDoc().Stats()
	assert.Equal(t, 2, stats.Pages)
	assert.Equal(t, 3, stats.Tables)
	assert.Equal(t, 0, stats.Figures)
}

func TestCleanText(t *testing.T) {
	assert.Equal(t, "hello world", cleanText("hello\x00 world\r"))
	assert.Equal(t, "page one\npage two", cleanText("page one\fpage two"))
	assert.Equal(t, "a b", cleanText("  a  b  "))
}
