package service

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeadingChunkerSplitsByHeading(t *testing.T) {
	doc := &fakeDocument{markdown: `# Introduction

This is the intro paragraph.

# Methods

First methods paragraph.

Second methods paragraph.
`}

	chunker := NewHeadingChunker()
	chunks, err := chunker.ChunkDocument(doc, 1000)
	require.NoError(t, err)
	require.Len(t, chunks, 2)

	assert.True(t, strings.HasPrefix(chunks[0], "Introduction\n\n"))
	assert.Contains(t, chunks[0], "intro paragraph")
	assert.True(t, strings.HasPrefix(chunks[1], "Methods\n\n"))
	assert.Contains(t, chunks[1], "First methods paragraph")
	assert.Contains(t, chunks[1], "Second methods paragraph")
}

func TestHeadingChunkerSubdividesLongSections(t *testing.T) {
	var body strings.Builder
	for i := 0; i < 50; i++ {
		fmt.Fprintf(&body, "word%d ", i)
	}
	doc := &fakeDocument{markdown: "# Long\n\n" + body.String() + "\n"}

	chunker := NewHeadingChunker()
	chunks, err := chunker.ChunkDocument(doc, 20)
	require.NoError(t, err)
	require.Len(t, chunks, 3)
	for i, chunk := range chunks {
		assert.True(t, strings.HasPrefix(chunk, "Long\n\n"), "chunk %d keeps its heading", i)
	}
}

func TestHeadingChunkerEmptyDocument(t *testing.T) {
	chunker := NewHeadingChunker()
	_, err := chunker.ChunkDocument(&fakeDocument{markdown: ""}, 100)
	require.Error(t, err)
}

func TestHeadingChunkerExportFailure(t *testing.T) {
	chunker := NewHeadingChunker()
	_, err := chunker.ChunkDocument(&fakeDocument{markdownErr: errors.New("no markdown")}, 100)
	require.Error(t, err)
}

func TestHeadingChunkerTextWithoutHeadings(t *testing.T) {
	doc := &fakeDocument{markdown: "Just a paragraph with no structure at all.\n"}
	chunker := NewHeadingChunker()
	chunks, err := chunker.ChunkDocument(doc, 100)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Contains(t, chunks[0], "no structure")
}

func TestSplitSectionBody(t *testing.T) {
	assert.Equal(t, []string{""}, splitSectionBody("", 10))
	assert.Equal(t, []string{"a b c"}, splitSectionBody("a b c", 10))

	parts := splitSectionBody("a b c d e", 2)
	assert.Equal(t, []string{"a b", "c d", "e"}, parts)
}

func TestContextualize(t *testing.T) {
	assert.Equal(t, "body", contextualize("", "body"))
	assert.Equal(t, "head", contextualize("head", ""))
	assert.Equal(t, "head\n\nbody", contextualize("head", "body"))
}
