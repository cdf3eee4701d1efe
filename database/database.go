package database

import (
	"context"

	"github.com/tieubaoca/docproc-be/types"
)

// ChunkFilter narrows chunk searches by metadata.
type ChunkFilter struct {
	DocumentID string
	Tags       []string
}

// VectorStore is the storage contract for indexed chunks. Embeddings are
// optional: stores with a server-side vectorizer accept nil.
type VectorStore interface {
	UpsertChunk(ctx context.Context, chunk *types.IndexedChunk, embedding []float32) error
	BatchInsertChunks(ctx context.Context, chunks []types.IndexedChunk, embeddings [][]float32) error
	SearchChunks(ctx context.Context, queries []string, filter ChunkFilter, limit int) ([]types.IndexedChunk, error)
	DeleteDocumentChunks(ctx context.Context, documentID string) error
}
