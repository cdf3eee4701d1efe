package database

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/weaviate/weaviate-go-client/v4/weaviate"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/auth"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/filters"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"

	"github.com/tieubaoca/docproc-be/config"
	"github.com/tieubaoca/docproc-be/types"
)

const BATCH_SIZE = 200

var (
	CHUNK_CLASS        = "DocumentChunk"
	CHUNK_CLASS_OBJECT = &models.Class{
		Class: CHUNK_CLASS,
		Properties: []*models.Property{
			{Name: "content", DataType: []string{"text"}},
			{Name: "documentId", DataType: []string{"text"}},
			{Name: "chunkIndex", DataType: []string{"int"}},
			{Name: "title", DataType: []string{"text"}},
			{Name: "source", DataType: []string{"text"}},
			{Name: "processor", DataType: []string{"text"}},
			{Name: "tags", DataType: []string{"text[]"}},
			{Name: "custom", DataType: []string{"object"},
				NestedProperties: []*models.NestedProperty{
					{Name: "page", DataType: []string{"text"}},
				},
			},
			{Name: "createdAt", DataType: []string{"int"}},
		},
		VectorIndexType: "hnsw",
	}
)

// WeaviateStore keeps indexed chunks in a Weaviate class with HNSW indexing.
type WeaviateStore struct {
	client *weaviate.Client
}

func NewWeaviateStore(cfg config.WeaviateStoreConfig) (*WeaviateStore, error) {
	var scheme string
	if strings.Contains(cfg.Host, "https") {
		scheme = "https"
	} else {
		scheme = "http"
	}
	host := strings.TrimPrefix(cfg.Host, scheme+"://")
	clientCfg := weaviate.Config{
		Host:   host,
		Scheme: scheme,
	}
	if cfg.APIKey != "" {
		clientCfg.AuthConfig = auth.ApiKey{
			Value: cfg.APIKey,
		}
		clientCfg.Headers = map[string]string{
			"X-Weaviate-Api-Key":     cfg.APIKey,
			"X-Weaviate-Cluster-Url": fmt.Sprintf("%s://%s", scheme, host),
		}
	}
	CHUNK_CLASS_OBJECT.Vectorizer = cfg.Text2Vec
	CHUNK_CLASS_OBJECT.ModuleConfig = cfg.ModuleConfig
	client, err := weaviate.NewClient(clientCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create weaviate client: %w", err)
	}

	schema, err := client.Schema().Getter().Do(context.Background())
	if err != nil {
		return nil, fmt.Errorf("failed to get schema: %w", err)
	}

	hasChunkClass := false
	for _, class := range schema.Classes {
		if class.Class == CHUNK_CLASS {
			hasChunkClass = true
			break
		}
	}
	if !hasChunkClass {
		err = client.Schema().ClassCreator().WithClass(CHUNK_CLASS_OBJECT).Do(context.Background())
		if err != nil {
			return nil, fmt.Errorf("failed to create DocumentChunk class: %w", err)
		}
	}
	return &WeaviateStore{
		client: client,
	}, nil
}

// ReInit drops and recreates the chunk class.
func (s *WeaviateStore) ReInit() error {
	err := s.client.Schema().ClassDeleter().WithClassName(CHUNK_CLASS).Do(context.Background())
	if err != nil {
		return fmt.Errorf("failed to delete DocumentChunk class: %w", err)
	}

	err = s.client.Schema().ClassCreator().WithClass(CHUNK_CLASS_OBJECT).Do(context.Background())
	if err != nil {
		return fmt.Errorf("failed to create DocumentChunk class: %w", err)
	}
	return nil
}

func chunkProperties(chunk *types.IndexedChunk) map[string]interface{} {
	return map[string]interface{}{
		"content":    chunk.Content,
		"documentId": chunk.DocumentID,
		"chunkIndex": chunk.ChunkIndex,
		"title":      chunk.Metadata.Title,
		"source":     chunk.Metadata.Source,
		"processor":  chunk.Metadata.Processor,
		"tags":       chunk.Metadata.Tags,
		"custom":     chunk.Custom,
		"createdAt":  chunk.CreatedAt,
	}
}

func (s *WeaviateStore) UpsertChunk(ctx context.Context, chunk *types.IndexedChunk, embedding []float32) error {
	creator := s.client.Data().Creator().
		WithClassName(CHUNK_CLASS).
		WithProperties(chunkProperties(chunk))

	if embedding != nil {
		creator = creator.WithVector(embedding)
	}

	result, err := creator.Do(ctx)
	if err != nil {
		return err
	}
	log.Println("UpsertChunk result:", result.Object.ID)
	return nil
}

func (s *WeaviateStore) BatchInsertChunks(ctx context.Context, chunks []types.IndexedChunk, embeddings [][]float32) error {
	total := len(chunks)
	for i := 0; i < total; i += BATCH_SIZE {
		end := i + BATCH_SIZE
		if end > total {
			end = total
		}

		batcher := s.client.Batch().ObjectsBatcher()
		for j := i; j < end; j++ {
			obj := &models.Object{
				Class:      CHUNK_CLASS,
				Properties: chunkProperties(&chunks[j]),
			}
			if embeddings != nil && j < len(embeddings) {
				obj.Vector = embeddings[j]
			}
			batcher = batcher.WithObjects(obj)
		}

		if _, err := batcher.Do(ctx); err != nil {
			return fmt.Errorf("failed to insert batch %d-%d: %w", i, end, err)
		}
		log.Printf("Inserted batch %d-%d of %d chunks", i, end, total)
	}

	return nil
}

func (s *WeaviateStore) DeleteDocumentChunks(ctx context.Context, documentID string) error {
	_, err := s.client.Batch().ObjectsBatchDeleter().
		WithClassName(CHUNK_CLASS).
		WithWhere(filters.Where().
			WithPath([]string{"documentId"}).
			WithOperator(filters.Equal).
			WithValueText(documentID)).
		Do(ctx)
	return err
}

func (s *WeaviateStore) SearchChunks(ctx context.Context, queries []string, filter ChunkFilter, limit int) ([]types.IndexedChunk, error) {
	fields := []graphql.Field{
		{Name: "content"},
		{Name: "documentId"},
		{Name: "chunkIndex"},
		{Name: "title"},
		{Name: "source"},
		{Name: "processor"},
		{Name: "tags"},
		{Name: "custom", Fields: []graphql.Field{{Name: "page"}}},
		{Name: "createdAt"},
		{Name: "_additional", Fields: []graphql.Field{{Name: "distance"}, {Name: "id"}}},
	}

	nearText := s.client.GraphQL().NearTextArgBuilder().
		WithConcepts(queries).
		WithCertainty(0.7)
	where := buildChunkFilter(filter)

	getBuilder := s.client.GraphQL().Get().
		WithClassName(CHUNK_CLASS).
		WithFields(fields...).
		WithNearText(nearText)
	if limit > 0 {
		getBuilder = getBuilder.WithLimit(limit)
	}
	if where != nil {
		getBuilder = getBuilder.WithWhere(where)
	}

	result, err := getBuilder.Do(ctx)
	if err != nil {
		return nil, err
	}
	if result.Errors != nil {
		return nil, fmt.Errorf("search failed: %v", result.Errors[0].Message)
	}

	var chunks []types.IndexedChunk
	if data, ok := result.Data["Get"].(map[string]interface{})[CHUNK_CLASS].([]interface{}); ok {
		for _, item := range data {
			obj, ok := item.(map[string]interface{})
			if !ok {
				continue
			}
			chunk := types.IndexedChunk{
				Content:    stringValue(obj["content"]),
				DocumentID: stringValue(obj["documentId"]),
				ChunkIndex: intValue(obj["chunkIndex"]),
				Metadata: types.ChunkMetadata{
					Title:     stringValue(obj["title"]),
					Source:    stringValue(obj["source"]),
					Processor: stringValue(obj["processor"]),
					Tags:      parseStringArray(obj["tags"]),
				},
				Custom:    parseStringMap(obj["custom"]),
				CreatedAt: int64(floatValue(obj["createdAt"])),
			}
			if additional, ok := obj["_additional"].(map[string]interface{}); ok {
				chunk.ID = stringValue(additional["id"])
				if chunk.Custom == nil {
					chunk.Custom = map[string]string{}
				}
				chunk.Custom["distance"] = fmt.Sprintf("%f", floatValue(additional["distance"]))
			}
			chunks = append(chunks, chunk)
		}
	}
	return chunks, nil
}

func buildChunkFilter(filter ChunkFilter) *filters.WhereBuilder {
	var operands []*filters.WhereBuilder
	if filter.DocumentID != "" {
		operands = append(operands, filters.Where().
			WithPath([]string{"documentId"}).
			WithOperator(filters.Equal).
			WithValueText(filter.DocumentID))
	}
	if len(filter.Tags) > 0 {
		operands = append(operands, filters.Where().
			WithPath([]string{"tags"}).
			WithOperator(filters.ContainsAny).
			WithValueText(filter.Tags...))
	}
	switch len(operands) {
	case 0:
		return nil
	case 1:
		return operands[0]
	default:
		return filters.Where().WithOperator(filters.And).WithOperands(operands)
	}
}

func stringValue(v interface{}) string {
	s, _ := v.(string)
	return s
}

func floatValue(v interface{}) float64 {
	f, _ := v.(float64)
	return f
}

func intValue(v interface{}) int {
	return int(floatValue(v))
}

func parseStringArray(v interface{}) []string {
	items, ok := v.([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func parseStringMap(v interface{}) map[string]string {
	items, ok := v.(map[string]interface{})
	if !ok {
		return nil
	}
	out := make(map[string]string, len(items))
	for k, item := range items {
		if s, ok := item.(string); ok {
			out[k] = s
		}
	}
	return out
}
