package database

import (
	"context"
	"fmt"
	"log"
	"runtime"
	"strconv"
	"strings"

	"github.com/philippgille/chromem-go"

	"github.com/tieubaoca/docproc-be/types"
)

const chromemCollection = "chunks"

// ChromemStore keeps indexed chunks in an embedded chromem-go database, for
// running without a Weaviate instance. The embedding function is only used
// for documents inserted without an explicit vector and for queries.
type ChromemStore struct {
	db         *chromem.DB
	collection *chromem.Collection
}

// NewChromemStore opens (or creates) a persistent store at path. An empty
// path keeps everything in memory.
func NewChromemStore(path string, embedFunc chromem.EmbeddingFunc) (*ChromemStore, error) {
	var db *chromem.DB
	var err error
	if path == "" {
		db = chromem.NewDB()
	} else {
		db, err = chromem.NewPersistentDB(path, false)
		if err != nil {
			return nil, fmt.Errorf("failed to open chromem db: %w", err)
		}
	}

	collection, err := db.GetOrCreateCollection(chromemCollection, nil, embedFunc)
	if err != nil {
		return nil, fmt.Errorf("failed to open chunks collection: %w", err)
	}
	return &ChromemStore{
		db:         db,
		collection: collection,
	}, nil
}

func chromemDocument(chunk *types.IndexedChunk, embedding []float32) chromem.Document {
	id := chunk.ID
	if id == "" {
		id = fmt.Sprintf("%s-%d", chunk.DocumentID, chunk.ChunkIndex)
	}
	metadata := map[string]string{
		"document_id": chunk.DocumentID,
		"chunk_index": strconv.Itoa(chunk.ChunkIndex),
		"title":       chunk.Metadata.Title,
		"source":      chunk.Metadata.Source,
		"processor":   chunk.Metadata.Processor,
		"tags":        strings.Join(chunk.Metadata.Tags, ","),
	}
	for k, v := range chunk.Custom {
		metadata[k] = v
	}
	return chromem.Document{
		ID:        id,
		Content:   chunk.Content,
		Metadata:  metadata,
		Embedding: embedding,
	}
}

func (s *ChromemStore) UpsertChunk(ctx context.Context, chunk *types.IndexedChunk, embedding []float32) error {
	return s.collection.AddDocuments(ctx, []chromem.Document{chromemDocument(chunk, embedding)}, 1)
}

func (s *ChromemStore) BatchInsertChunks(ctx context.Context, chunks []types.IndexedChunk, embeddings [][]float32) error {
	docs := make([]chromem.Document, 0, len(chunks))
	for i := range chunks {
		var embedding []float32
		if embeddings != nil && i < len(embeddings) {
			embedding = embeddings[i]
		}
		docs = append(docs, chromemDocument(&chunks[i], embedding))
	}
	if err := s.collection.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return fmt.Errorf("failed to insert chunks: %w", err)
	}
	log.Printf("Inserted %d chunks into chromem collection", len(docs))
	return nil
}

func (s *ChromemStore) SearchChunks(ctx context.Context, queries []string, filter ChunkFilter, limit int) ([]types.IndexedChunk, error) {
	if limit <= 0 {
		limit = 5
	}
	count := s.collection.Count()
	if count == 0 {
		return nil, nil
	}
	if limit > count {
		limit = count
	}

	var where map[string]string
	if filter.DocumentID != "" {
		where = map[string]string{"document_id": filter.DocumentID}
	}

	results, err := s.collection.Query(ctx, strings.Join(queries, " "), limit, where, nil)
	if err != nil {
		return nil, fmt.Errorf("chromem query failed: %w", err)
	}

	var chunks []types.IndexedChunk
	for _, res := range results {
		chunk := resultToChunk(res)
		if len(filter.Tags) > 0 && !hasAnyTag(chunk.Metadata.Tags, filter.Tags) {
			continue
		}
		chunks = append(chunks, chunk)
	}
	return chunks, nil
}

func (s *ChromemStore) DeleteDocumentChunks(ctx context.Context, documentID string) error {
	return s.collection.Delete(ctx, map[string]string{"document_id": documentID}, nil)
}

func resultToChunk(res chromem.Result) types.IndexedChunk {
	chunkIndex, _ := strconv.Atoi(res.Metadata["chunk_index"])
	var tags []string
	if raw := res.Metadata["tags"]; raw != "" {
		tags = strings.Split(raw, ",")
	}
	return types.IndexedChunk{
		ID:         res.ID,
		Content:    res.Content,
		DocumentID: res.Metadata["document_id"],
		ChunkIndex: chunkIndex,
		Metadata: types.ChunkMetadata{
			Title:     res.Metadata["title"],
			Source:    res.Metadata["source"],
			Processor: res.Metadata["processor"],
			Tags:      tags,
		},
		Custom: map[string]string{
			"distance": fmt.Sprintf("%f", 1-res.Similarity),
		},
	}
}

func hasAnyTag(tags, wanted []string) bool {
	for _, tag := range tags {
		for _, w := range wanted {
			if tag == w {
				return true
			}
		}
	}
	return false
}
