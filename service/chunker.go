package service

import (
	"log"
	"strings"

	"github.com/tieubaoca/docproc-be/types"
)

// Metadata keys the chunker stamps onto every chunk it emits.
const (
	MetaChunkIndex = "chunk_index"
	MetaProcessor  = "processor"
	MetaTokenCount = "token_count"
)

// MakeOverlappedChunks splits text into fixed-size overlapping windows of
// whitespace-delimited tokens. Offsets on the returned chunks are token
// offsets into the tokenized text. Chunks come out in document order with
// monotonically increasing start offsets; the last chunk may be shorter than
// windowLen. Empty text yields no chunks and no error.
//
// An overlap >= window would stall the scan, so it is clamped to windowLen-1
// and logged instead of looping forever.
func MakeOverlappedChunks(text, documentID string, windowLen, overlapLen int, metadata map[string]any) []types.DocumentChunk {
	if windowLen <= 0 {
		log.Printf("Warning: chunk window must be positive, got %d; no chunks produced", windowLen)
		return nil
	}
	if overlapLen < 0 {
		overlapLen = 0
	}
	if overlapLen >= windowLen {
		log.Printf("Warning: chunk overlap %d >= window %d, clamping overlap to %d", overlapLen, windowLen, windowLen-1)
		overlapLen = windowLen - 1
	}

	tokens := strings.Fields(text)
	if len(tokens) == 0 {
		return nil
	}

	step := windowLen - overlapLen
	var chunks []types.DocumentChunk
	for start := 0; start < len(tokens); start += step {
		end := start + windowLen
		if end > len(tokens) {
			end = len(tokens)
		}

		meta := make(map[string]any, len(metadata)+3)
		for k, v := range metadata {
			meta[k] = v
		}
		meta[MetaChunkIndex] = len(chunks)
		meta[MetaTokenCount] = end - start

		chunks = append(chunks, types.DocumentChunk{
			Content:     strings.Join(tokens[start:end], " "),
			DocumentID:  documentID,
			StartOffset: start,
			EndOffset:   end,
			Metadata:    meta,
		})
	}

	return chunks
}
