package service

import (
	"context"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/tieubaoca/docproc-be/database"
	"github.com/tieubaoca/docproc-be/repository"
	"github.com/tieubaoca/docproc-be/types"
	"github.com/tieubaoca/docproc-be/utils"
)

// FileService ties the processing pipeline to storage: it saves uploads, runs
// the configured backend, embeds the resulting chunks, and indexes them in
// the vector store.
type FileService struct {
	uploadDir string
	processor FileProcessor
	embedder  Embedder                  // nil when the store vectorizes server-side
	store     database.VectorStore      // nil disables indexing
	history   repository.ProcessingRepo // nil disables history records
}

func NewFileService(
	uploadDir string,
	processor FileProcessor,
	embedder Embedder,
	store database.VectorStore,
	history repository.ProcessingRepo,
) *FileService {
	if err := os.MkdirAll(uploadDir, 0755); err != nil {
		panic(err)
	}
	return &FileService{
		uploadDir: uploadDir,
		processor: processor,
		embedder:  embedder,
		store:     store,
		history:   history,
	}
}

// UploadFile stores an uploaded document and runs it through processing and
// indexing, streaming progress to c. The channel is closed when done.
func (s *FileService) UploadFile(ctx context.Context, req types.UploadRequest, file *multipart.FileHeader, c chan<- types.ProcessingDocumentStatus) error {
	if c != nil {
		defer close(c)
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if ext != ".pdf" {
		return fmt.Errorf("unsupported file type: %s", ext)
	}

	src, err := file.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	originalName := strings.TrimSuffix(req.Title, ext)
	if originalName == "" {
		originalName = utils.FileNameWithoutExt(file.Filename)
	}
	timestamp := time.Now().Unix()
	filename := utils.SanitizeFilename(fmt.Sprintf("%s_%d%s", originalName, timestamp, ext))

	dst, err := os.Create(filepath.Join(s.uploadDir, filename))
	if err != nil {
		return err
	}
	defer dst.Close()

	if _, err = io.Copy(dst, src); err != nil {
		return err
	}

	data, err := os.ReadFile(filepath.Join(s.uploadDir, filename))
	if err != nil {
		return err
	}
	return s.processAndIndex(ctx, data, file.Filename, req, c)
}

// IngestFile processes a document already on disk, used by the CLI commands.
func (s *FileService) IngestFile(ctx context.Context, path string, req types.UploadRequest, c chan<- types.ProcessingDocumentStatus) error {
	if c != nil {
		defer close(c)
	}

	if _, err := utils.CopyFileWithTimestamp(path, s.uploadDir); err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return s.processAndIndex(ctx, data, filepath.Base(path), req, c)
}

func (s *FileService) processAndIndex(ctx context.Context, data []byte, filename string, req types.UploadRequest, c chan<- types.ProcessingDocumentStatus) error {
	strategy := req.Chunk
	if strategy == nil {
		strategy = types.AutoChunkingStrategy()
	}

	sendStatus(c, types.ProcessingDocumentStatus{
		Status:  "processing",
		Message: "Extracting document content",
	})

	result, err := s.processor.Process(ctx, types.ProcessRequest{
		Data:             data,
		Filename:         filename,
		Options:          req.Options,
		ChunkingStrategy: strategy,
	})
	if err != nil {
		return err
	}

	chunks := toIndexedChunks(result, req)
	total := len(chunks)
	sendStatus(c, types.ProcessingDocumentStatus{
		Status:      "processing",
		Message:     fmt.Sprintf("Indexing %d chunks", total),
		TotalChunks: total,
	})

	var embeddings [][]float32
	if s.embedder != nil && total > 0 {
		texts := make([]string, total)
		for i, chunk := range chunks {
			texts[i] = chunk.Content
		}
		embeddings, err = s.embedder.EmbedTexts(ctx, texts)
		if err != nil {
			return fmt.Errorf("failed to embed chunks: %w", err)
		}
	}

	if s.store != nil && total > 0 {
		if err := s.store.BatchInsertChunks(ctx, chunks, embeddings); err != nil {
			return err
		}
	}

	if s.history != nil {
		if err := s.history.SaveRecord(ctx, recordFromResult(result)); err != nil {
			// History is advisory; indexing already succeeded.
			log.Printf("Warning: failed to save processing record: %v", err)
		}
	}

	sendStatus(c, types.ProcessingDocumentStatus{
		Status:          "completed",
		Message:         "Done processing document",
		Progress:        1,
		TotalChunks:     total,
		ProcessedChunks: total,
	})
	return nil
}

func sendStatus(c chan<- types.ProcessingDocumentStatus, status types.ProcessingDocumentStatus) {
	if c != nil {
		c <- status
	}
}

func toIndexedChunks(result *types.ProcessedContent, req types.UploadRequest) []types.IndexedChunk {
	now := time.Now().Unix()
	chunks := make([]types.IndexedChunk, 0, len(result.Chunks))
	for i, chunk := range result.Chunks {
		processor, _ := chunk.Metadata[MetaProcessor].(string)
		custom := map[string]string{
			"start_offset": strconv.Itoa(chunk.StartOffset),
			"end_offset":   strconv.Itoa(chunk.EndOffset),
		}
		chunks = append(chunks, types.IndexedChunk{
			Content:    chunk.Content,
			DocumentID: chunk.DocumentID,
			ChunkIndex: i,
			Metadata: types.ChunkMetadata{
				Title:     req.Title,
				Source:    req.Source,
				Processor: processor,
				Tags:      req.Tags,
			},
			Custom:    custom,
			CreatedAt: now,
		})
	}
	return chunks
}

func recordFromResult(result *types.ProcessedContent) *types.ProcessingRecord {
	meta := result.Metadata
	record := &types.ProcessingRecord{
		Filename:      metaString(meta, "filename"),
		Processor:     metaString(meta, "processor"),
		Format:        metaString(meta, "format"),
		Pages:         metaInt(meta, "pages"),
		ChunkCount:    metaInt(meta, "chunk_count"),
		ContentLength: metaInt(meta, "content_length"),
		FileSizeBytes: metaInt(meta, "file_size_bytes"),
	}
	if v, ok := meta[MetaChunkingDegraded].(bool); ok {
		record.ChunkingDegrade = v
	}
	if v, ok := meta["processing_time_seconds"].(float64); ok {
		record.DurationSeconds = v
	}
	return record
}

func metaString(meta map[string]any, key string) string {
	s, _ := meta[key].(string)
	return s
}

func metaInt(meta map[string]any, key string) int {
	switch v := meta[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	}
	return 0
}
