package service

import (
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	gmtext "github.com/yuin/goldmark/text"
)

// StructuralChunker is the optional structure-aware chunking capability.
// Implementations return contextualized chunk texts that respect document
// sections; overlap is the implementation's own business. An error (or empty
// output) means the caller should fall back to the generic windower.
type StructuralChunker interface {
	ChunkDocument(doc Document, maxTokens int) ([]string, error)
}

// headingChunker splits the document's markdown export along headings and
// prefixes every emitted chunk with its section heading, so a chunk carries
// its own context. Sections longer than maxTokens are subdivided into plain
// token windows, still under the section heading.
type headingChunker struct{}

// NewHeadingChunker returns the default structure-aware chunker.
func NewHeadingChunker() StructuralChunker {
	return &headingChunker{}
}

type markdownSection struct {
	heading string
	body    strings.Builder
}

func (c *headingChunker) ChunkDocument(doc Document, maxTokens int) ([]string, error) {
	source, err := doc.ExportMarkdown()
	if err != nil {
		return nil, fmt.Errorf("markdown export failed: %w", err)
	}
	if maxTokens <= 0 {
		maxTokens = DefaultAutoChunkSize
	}

	sections := parseSections([]byte(source))
	if len(sections) == 0 {
		return nil, fmt.Errorf("no heading structure found in document")
	}

	var chunks []string
	for _, section := range sections {
		body := strings.TrimSpace(section.body.String())
		if body == "" && section.heading == "" {
			continue
		}
		for _, part := range splitSectionBody(body, maxTokens) {
			chunks = append(chunks, contextualize(section.heading, part))
		}
	}
	if len(chunks) == 0 {
		return nil, fmt.Errorf("document structure produced no chunks")
	}
	return chunks, nil
}

// parseSections walks the markdown AST and gathers text under each heading.
// Text before the first heading is dropped into an unnamed section.
func parseSections(source []byte) []*markdownSection {
	md := goldmark.New()
	doc := md.Parser().Parse(gmtext.NewReader(source))

	var sections []*markdownSection
	current := &markdownSection{}

	ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if entering {
			switch node := n.(type) {
			case *ast.Heading:
				if current.heading != "" || current.body.Len() > 0 {
					sections = append(sections, current)
				}
				current = &markdownSection{heading: headingText(node, source)}
				return ast.WalkSkipChildren, nil
			case *ast.Text:
				current.body.Write(node.Segment.Value(source))
			}
		} else if _, ok := n.(*ast.Paragraph); ok {
			current.body.WriteString("\n\n")
		}
		return ast.WalkContinue, nil
	})

	if current.heading != "" || current.body.Len() > 0 {
		sections = append(sections, current)
	}
	return sections
}

func headingText(node ast.Node, source []byte) string {
	var b strings.Builder
	for child := node.FirstChild(); child != nil; child = child.NextSibling() {
		if textNode, ok := child.(*ast.Text); ok {
			b.Write(textNode.Segment.Value(source))
		}
	}
	return b.String()
}

// splitSectionBody cuts an oversized section into token windows. No overlap:
// section boundaries already carry the context.
func splitSectionBody(body string, maxTokens int) []string {
	tokens := strings.Fields(body)
	if len(tokens) == 0 {
		return []string{""}
	}
	if len(tokens) <= maxTokens {
		return []string{body}
	}
	var parts []string
	for start := 0; start < len(tokens); start += maxTokens {
		end := start + maxTokens
		if end > len(tokens) {
			end = len(tokens)
		}
		parts = append(parts, strings.Join(tokens[start:end], " "))
	}
	return parts
}

// contextualize is the metadata-enriched serialization of a chunk: the
// section heading followed by the chunk body.
func contextualize(heading, body string) string {
	if heading == "" {
		return body
	}
	if body == "" {
		return heading
	}
	return heading + "\n\n" + body
}
