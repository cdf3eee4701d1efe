package service

import (
	"context"
)

// Embedder turns chunk texts into vectors. The processing pipeline does not
// call it yet; the ingestion service uses it to vectorize chunks before they
// go into the vector store.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}
