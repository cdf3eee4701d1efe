package service

import (
	"fmt"
	"strings"

	"github.com/tieubaoca/docproc-be/types"
)

// Output formats understood by ExportContent.
const (
	FormatMarkdown = "markdown"
	FormatHTML     = "html"
	FormatJSON     = "json"
	FormatText     = "text"
)

// Document is a decoded document handle. Every backend that produces one
// implements the full export contract; structural stats are best-effort and
// default to zero when the backend cannot know them.
type Document interface {
	ExportMarkdown() (string, error)
	ExportHTML() (string, error)
	ExportJSON() (string, error)
	ExportText() (string, error)
	Stats() types.DocumentStats
}

// ExportContent renders the document in the requested format. Unrecognized
// formats fall back to plain text instead of erroring. The only terminal
// failure is a handle with no text export at all, reported as
// types.ErrUnsupportedExport.
func ExportContent(doc Document, format string) (string, error) {
	var content string
	var err error

	switch strings.ToLower(format) {
	case FormatMarkdown:
		content, err = doc.ExportMarkdown()
	case FormatHTML:
		content, err = doc.ExportHTML()
	case FormatJSON:
		content, err = doc.ExportJSON()
	case FormatText:
		content, err = doc.ExportText()
	default:
		content, err = doc.ExportText()
	}
	if err == nil {
		return content, nil
	}

	// A structured export that fails degrades to plain text.
	content, textErr := doc.ExportText()
	if textErr != nil {
		return "", fmt.Errorf("%w: %v", types.ErrUnsupportedExport, textErr)
	}
	return content, nil
}
