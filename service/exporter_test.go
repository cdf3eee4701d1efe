package service

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tieubaoca/docproc-be/types"
)

// fakeDocument implements Document with canned outputs per format. A nil
// error with empty content is a valid export.
type fakeDocument struct {
	markdown string
	html     string
	json     string
	text     string

	markdownErr error
	htmlErr     error
	jsonErr     error
	textErr     error

	stats types.DocumentStats
}

func (d *fakeDocument) ExportMarkdown() (string, error) { return d.markdown, d.markdownErr }
func (d *fakeDocument) ExportHTML() (string, error)     { return d.html, d.htmlErr }
func (d *fakeDocument) ExportJSON() (string, error)     { return d.json, d.jsonErr }
func (d *fakeDocument) ExportText() (string, error)     { return d.text, d.textErr }
func (d *fakeDocument) Stats() types.DocumentStats      { return d.stats }

func TestExportContentDispatch(t *testing.T) {
	doc := &fakeDocument{
		markdown: "# md",
		html:     "<p>html</p>",
		json:     `{"k":"v"}`,
		text:     "plain",
	}

	tests := []struct {
		format string
		want   string
	}{
		{FormatMarkdown, "# md"},
		{FormatHTML, "<p>html</p>"},
		{FormatJSON, `{"k":"v"}`},
		{FormatText, "plain"},
		{"MARKDOWN", "# md"},
	}
	for _, tt := range tests {
		got, err := ExportContent(doc, tt.format)
		require.NoError(t, err, "format %s", tt.format)
		assert.Equal(t, tt.want, got, "format %s", tt.format)
	}
}

func TestExportContentUnknownFormatFallsBackToText(t *testing.T) {
	doc := &fakeDocument{text: "plain"}
	got, err := ExportContent(doc, "docbook")
	require.NoError(t, err)
	assert.Equal(t, "plain", got)
}

func TestExportContentFailedExportDegradesToText(t *testing.T) {
	doc := &fakeDocument{
		markdownErr: errors.New("markdown renderer broken"),
		text:        "plain",
	}
	got, err := ExportContent(doc, FormatMarkdown)
	require.NoError(t, err)
	assert.Equal(t, "plain", got)
}

func TestExportContentNoTextExport(t *testing.T) {
	doc := &fakeDocument{
		jsonErr: errors.New("no json"),
		textErr: errors.New("no text"),
	}
	_, err := ExportContent(doc, FormatJSON)
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrUnsupportedExport)
}
