package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tieubaoca/docproc-be/types"
)

type fakeExtractor struct {
	pages []string
	err   error
}

func (e *fakeExtractor) ExtractPages(ctx context.Context, data []byte) ([]string, error) {
	if e.err != nil {
		return nil, e.err
	}
	return e.pages, nil
}

func TestPDFTextProcess(t *testing.T) {
	extractor := &fakeExtractor{pages: []string{"page one text", "page two text"}}
	svc := NewPDFTextServiceWithExtractor(types.ProcessorServiceConfig{}, extractor)

	result, err := svc.Process(context.Background(), types.ProcessRequest{
		Data:     []byte("%PDF"),
		Filename: "doc.pdf",
	})
	require.NoError(t, err)

	assert.Equal(t, "page one text\npage two text", result.Content)
	assert.Empty(t, result.Chunks)
	assert.Equal(t, 2, result.Metadata["pages"])
	assert.Equal(t, ProcessorPDFText, result.Metadata["processor"])
	assert.Equal(t, FormatText, result.Metadata["format"])
	assert.Equal(t, 0, result.Metadata["chunk_count"])
}

func TestPDFTextProcessWithChunking(t *testing.T) {
	extractor := &fakeExtractor{pages: []string{tokenText(250)}}
	svc := NewPDFTextServiceWithExtractor(types.ProcessorServiceConfig{}, extractor)

	result, err := svc.Process(context.Background(), types.ProcessRequest{
		Data:             []byte("%PDF"),
		Filename:         "doc.pdf",
		ChunkingStrategy: types.StaticChunkingStrategy(100, 20),
	})
	require.NoError(t, err)
	require.Len(t, result.Chunks, 4)

	assert.Equal(t, 4, result.Metadata["chunk_count"])
	for _, chunk := range result.Chunks {
		assert.Equal(t, "doc.pdf", chunk.DocumentID)
		assert.Equal(t, ProcessorPDFText, chunk.Metadata[MetaProcessor])
		assert.Equal(t, 1, chunk.Metadata["pages"])
	}
}

func TestPDFTextProcessAutoStrategyUsesDefaults(t *testing.T) {
	extractor := &fakeExtractor{pages: []string{tokenText(1000)}}
	svc := NewPDFTextServiceWithExtractor(types.ProcessorServiceConfig{
		DefaultChunkSize:    200,
		DefaultChunkOverlap: 50,
	}, extractor)

	result, err := svc.Process(context.Background(), types.ProcessRequest{
		Data:             []byte("%PDF"),
		Filename:         "doc.pdf",
		ChunkingStrategy: types.AutoChunkingStrategy(),
	})
	require.NoError(t, err)
	require.NotEmpty(t, result.Chunks)
	assert.Equal(t, 200, result.Chunks[0].EndOffset-result.Chunks[0].StartOffset)
	assert.Equal(t, 150, result.Chunks[1].StartOffset)
}

func TestPDFTextProcessEmptyPayload(t *testing.T) {
	svc := NewPDFTextServiceWithExtractor(types.ProcessorServiceConfig{}, &fakeExtractor{})
	_, err := svc.Process(context.Background(), types.ProcessRequest{Filename: "empty.pdf"})
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrInvalidInput)
}

func TestPDFTextProcessOversizedPayload(t *testing.T) {
	svc := NewPDFTextServiceWithExtractor(types.ProcessorServiceConfig{MaxFileSizeMB: 1}, &fakeExtractor{})
	_, err := svc.Process(context.Background(), types.ProcessRequest{
		Data:     make([]byte, 2<<20),
		Filename: "big.pdf",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrInvalidInput)
}

func TestPDFTextProcessDecodeFailure(t *testing.T) {
	extractor := &fakeExtractor{err: errors.New("not a pdf")}
	svc := NewPDFTextServiceWithExtractor(types.ProcessorServiceConfig{}, extractor)

	_, err := svc.Process(context.Background(), types.ProcessRequest{
		Data:     []byte("garbage"),
		Filename: "bad.pdf",
	})
	require.Error(t, err)

	var decodeErr *types.DecodeError
	require.ErrorAs(t, err, &decodeErr)
	assert.Equal(t, "bad.pdf", decodeErr.Filename)
}
