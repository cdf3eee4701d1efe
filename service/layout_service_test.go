package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tieubaoca/docproc-be/types"
)

type fakeConverter struct {
	doc      Document
	err      error
	lastOpts ConvertOptions
}

func (c *fakeConverter) Convert(ctx context.Context, path string, opts ConvertOptions) (Document, error) {
	c.lastOpts = opts
	if c.err != nil {
		return nil, c.err
	}
	return c.doc, nil
}

type fakeChunker struct {
	texts []string
	err   error
}

func (c *fakeChunker) ChunkDocument(doc Document, maxTokens int) ([]string, error) {
	if c.err != nil {
		return nil, c.err
	}
	return c.texts, nil
}

func layoutTestDoc() *fakeDocument {
	return &fakeDocument{
		markdown: "# Title\n\none two three four five six seven eight",
		text:     "one two three four five six seven eight",
		stats:    types.DocumentStats{Pages: 2, Tables: 1},
	}
}

func TestLayoutProcessEmptyPayload(t *testing.T) {
	svc := NewLayoutServiceWith(types.ProcessorServiceConfig{}, &fakeConverter{doc: layoutTestDoc()}, nil)
	_, err := svc.Process(context.Background(), types.ProcessRequest{Filename: "a.pdf"})
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrInvalidInput)
}

func TestLayoutProcessConverterFailure(t *testing.T) {
	svc := NewLayoutServiceWith(types.ProcessorServiceConfig{}, &fakeConverter{err: errors.New("corrupt pdf")}, nil)
	_, err := svc.Process(context.Background(), types.ProcessRequest{
		Data:     []byte("%PDF"),
		Filename: "bad.pdf",
	})
	require.Error(t, err)

	var decodeErr *types.DecodeError
	require.ErrorAs(t, err, &decodeErr)
	assert.Equal(t, "bad.pdf", decodeErr.Filename)
}

func TestLayoutProcessNativeChunking(t *testing.T) {
	chunker := &fakeChunker{texts: []string{"Title\n\none two three", "Title\n\nfour five"}}
	svc := NewLayoutServiceWith(types.ProcessorServiceConfig{}, &fakeConverter{doc: layoutTestDoc()}, chunker)

	result, err := svc.Process(context.Background(), types.ProcessRequest{
		Data:             []byte("%PDF"),
		Filename:         "a.pdf",
		ChunkingStrategy: types.AutoChunkingStrategy(),
	})
	require.NoError(t, err)
	require.Len(t, result.Chunks, 2)

	assert.NotContains(t, result.Metadata, MetaChunkingDegraded)
	assert.Equal(t, ProcessorLayout, result.Chunks[0].Metadata[MetaProcessor])

	// Offsets are cumulative token counts over the native chunk texts.
	assert.Equal(t, 0, result.Chunks[0].StartOffset)
	assert.Equal(t, 4, result.Chunks[0].EndOffset)
	assert.Equal(t, 4, result.Chunks[1].StartOffset)
	assert.Equal(t, 7, result.Chunks[1].EndOffset)
}

func TestLayoutProcessFallbackOnChunkerError(t *testing.T) {
	chunker := &fakeChunker{err: errors.New("no heading structure found in document")}
	svc := NewLayoutServiceWith(types.ProcessorServiceConfig{}, &fakeConverter{doc: layoutTestDoc()}, chunker)

	result, err := svc.Process(context.Background(), types.ProcessRequest{
		Data:             []byte("%PDF"),
		Filename:         "a.pdf",
		ChunkingStrategy: types.StaticChunkingStrategy(4, 1),
	})
	require.NoError(t, err)
	require.NotEmpty(t, result.Chunks)

	assert.Equal(t, true, result.Metadata[MetaChunkingDegraded])
	assert.Equal(t, "no heading structure found in document", result.Metadata[MetaChunkingDegradedReason])
	for _, chunk := range result.Chunks {
		assert.Equal(t, ProcessorLayoutFallback, chunk.Metadata[MetaProcessor])
	}
}

func TestLayoutProcessFallbackWithoutChunker(t *testing.T) {
	svc := NewLayoutServiceWith(types.ProcessorServiceConfig{}, &fakeConverter{doc: layoutTestDoc()}, nil)

	result, err := svc.Process(context.Background(), types.ProcessRequest{
		Data:             []byte("%PDF"),
		Filename:         "a.pdf",
		ChunkingStrategy: types.StaticChunkingStrategy(4, 1),
	})
	require.NoError(t, err)
	require.NotEmpty(t, result.Chunks)
	assert.Equal(t, true, result.Metadata[MetaChunkingDegraded])
}

func TestLayoutProcessFallbackOnEmptyNativeOutput(t *testing.T) {
	chunker := &fakeChunker{texts: nil}
	svc := NewLayoutServiceWith(types.ProcessorServiceConfig{}, &fakeConverter{doc: layoutTestDoc()}, chunker)

	result, err := svc.Process(context.Background(), types.ProcessRequest{
		Data:             []byte("%PDF"),
		Filename:         "a.pdf",
		ChunkingStrategy: types.StaticChunkingStrategy(4, 1),
	})
	require.NoError(t, err)
	require.NotEmpty(t, result.Chunks)
	assert.Equal(t, true, result.Metadata[MetaChunkingDegraded])
	assert.Equal(t, "native chunker produced no chunks", result.Metadata[MetaChunkingDegradedReason])
}

func TestLayoutProcessContentIndependentOfChunkingPath(t *testing.T) {
	doc := layoutTestDoc()
	req := types.ProcessRequest{
		Data:             []byte("%PDF"),
		Filename:         "a.pdf",
		ChunkingStrategy: types.StaticChunkingStrategy(4, 1),
	}

	native := NewLayoutServiceWith(types.ProcessorServiceConfig{}, &fakeConverter{doc: doc},
		&fakeChunker{texts: []string{"Title\n\none two"}})
	degraded := NewLayoutServiceWith(types.ProcessorServiceConfig{}, &fakeConverter{doc: doc},
		&fakeChunker{err: errors.New("broken")})

	nativeResult, err := native.Process(context.Background(), req)
	require.NoError(t, err)
	degradedResult, err := degraded.Process(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, nativeResult.Content, degradedResult.Content)
}

func TestLayoutProcessNoChunkingWithoutStrategy(t *testing.T) {
	svc := NewLayoutServiceWith(types.ProcessorServiceConfig{}, &fakeConverter{doc: layoutTestDoc()}, &fakeChunker{texts: []string{"x"}})

	result, err := svc.Process(context.Background(), types.ProcessRequest{
		Data:     []byte("%PDF"),
		Filename: "a.pdf",
	})
	require.NoError(t, err)
	assert.Empty(t, result.Chunks)
	assert.Equal(t, 0, result.Metadata["chunk_count"])
}

func TestLayoutProcessMetadata(t *testing.T) {
	svc := NewLayoutServiceWith(types.ProcessorServiceConfig{}, &fakeConverter{doc: layoutTestDoc()}, nil)

	result, err := svc.Process(context.Background(), types.ProcessRequest{
		Data:     []byte("%PDF-fake"),
		Filename: "report.pdf",
	})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Metadata["pages"])
	assert.Equal(t, 1, result.Metadata["tables"])
	assert.Equal(t, FormatMarkdown, result.Metadata["format"])
	assert.Equal(t, ProcessorLayout, result.Metadata["processor"])
	assert.Equal(t, "report.pdf", result.Metadata["filename"])
	assert.Equal(t, 9, result.Metadata["file_size_bytes"])
}

func TestLayoutProcessFormatOption(t *testing.T) {
	converter := &fakeConverter{doc: layoutTestDoc()}
	svc := NewLayoutServiceWith(types.ProcessorServiceConfig{}, converter, nil)

	result, err := svc.Process(context.Background(), types.ProcessRequest{
		Data:     []byte("%PDF"),
		Filename: "a.pdf",
		Options:  map[string]any{"format": FormatText},
	})
	require.NoError(t, err)
	assert.Equal(t, "one two three four five six seven eight", result.Content)
	assert.Equal(t, FormatText, result.Metadata["format"])
}

func TestParseLayoutOptions(t *testing.T) {
	opts := parseLayoutOptions(map[string]any{
		"format":          "html",
		"extract_tables":  true,
		"ocr_enabled":     true,
		"ocr_languages":   []any{"eng", "vie"},
		"unknown_key":     "ignored",
		"extract_figures": "not-a-bool", // wrong type, dropped
	})

	assert.Equal(t, "html", opts.Format)
	assert.True(t, opts.ExtractTables)
	assert.True(t, opts.OCREnabled)
	assert.Equal(t, []string{"eng", "vie"}, opts.OCRLanguages)
	assert.False(t, opts.ExtractFigures)
}

func TestParseLayoutOptionsNil(t *testing.T) {
	opts := parseLayoutOptions(nil)
	assert.Equal(t, ConvertOptions{}, opts)
}
