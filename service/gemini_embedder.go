package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiEmbedder generates embeddings with the Gemini API. It rotates
// through the configured API keys when a request fails, the same way the
// chat services handle quota errors.
type GeminiEmbedder struct {
	apiKeys    []string
	currentKey int
	client     *genai.Client
	model      string
	mu         sync.Mutex
}

func NewGeminiEmbedder(apiKeys []string, model string) (*GeminiEmbedder, error) {
	if len(apiKeys) == 0 {
		return nil, errors.New("no API keys provided")
	}
	s := &GeminiEmbedder{
		apiKeys: apiKeys,
		model:   model,
	}
	if err := s.initClient(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *GeminiEmbedder) initClient() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	client, err := genai.NewClient(context.Background(), option.WithAPIKey(s.apiKeys[s.currentKey]))
	if err != nil {
		return err
	}
	s.client = client
	return nil
}

func (s *GeminiEmbedder) rotateAPIKey() error {
	s.mu.Lock()
	s.currentKey = (s.currentKey + 1) % len(s.apiKeys)
	s.mu.Unlock()
	log.Printf("Rotating Gemini API key to index %d", s.currentKey)
	return s.initClient()
}

func (s *GeminiEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	res, err := s.batchEmbed(ctx, texts)
	if err != nil {
		// One rotation attempt before giving up.
		if rotateErr := s.rotateAPIKey(); rotateErr != nil {
			return nil, fmt.Errorf("embedding request failed: %w", err)
		}
		res, err = s.batchEmbed(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("embedding request failed: %w", err)
		}
	}

	if len(res.Embeddings) != len(texts) {
		return nil, errors.New("embedding response size mismatch")
	}
	embeddings := make([][]float32, len(res.Embeddings))
	for i, emb := range res.Embeddings {
		embeddings[i] = emb.Values
	}
	return embeddings, nil
}

func (s *GeminiEmbedder) batchEmbed(ctx context.Context, texts []string) (*genai.BatchEmbedContentsResponse, error) {
	s.mu.Lock()
	em := s.client.EmbeddingModel(s.model)
	s.mu.Unlock()

	batch := em.NewBatch()
	for _, text := range texts {
		batch = batch.AddContent(genai.Text(text))
	}
	return em.BatchEmbedContents(ctx, batch)
}
