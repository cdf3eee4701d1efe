package service

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"

	"github.com/tieubaoca/docproc-be/types"
)

// ProcessorPDFText is the registry name of the minimal extraction backend.
const ProcessorPDFText = "pdftext"

// PageExtractor decodes raw bytes into per-page text. The default
// implementation parses PDFs in-process; tests and alternate decoders plug in
// their own.
type PageExtractor interface {
	ExtractPages(ctx context.Context, data []byte) ([]string, error)
}

// PDFTextService is the minimal backend: raw text extraction plus the generic
// overlap chunker. It understands no document structure and accepts no
// backend-specific options (all are silently ignored).
type PDFTextService struct {
	cfg       types.ProcessorServiceConfig
	extractor PageExtractor
}

// NewPDFTextService creates the backend with the built-in PDF extractor.
func NewPDFTextService(cfg types.ProcessorServiceConfig) *PDFTextService {
	return NewPDFTextServiceWithExtractor(cfg, &pdfPageExtractor{})
}

// NewPDFTextServiceWithExtractor creates the backend with a custom extractor.
func NewPDFTextServiceWithExtractor(cfg types.ProcessorServiceConfig, extractor PageExtractor) *PDFTextService {
	return &PDFTextService{
		cfg:       cfg,
		extractor: extractor,
	}
}

func (s *PDFTextService) Name() string { return ProcessorPDFText }

// Process extracts text page by page, joins it, and optionally chunks it
// with the overlap windower.
func (s *PDFTextService) Process(ctx context.Context, req types.ProcessRequest) (*types.ProcessedContent, error) {
	start := time.Now()

	if err := validatePayload(req, s.cfg.MaxFileSizeMB); err != nil {
		return nil, err
	}
	log.Printf("Processing file with pdftext: %s, size: %d bytes", req.Filename, len(req.Data))

	pages, err := s.extractor.ExtractPages(ctx, req.Data)
	if err != nil {
		return nil, &types.DecodeError{Filename: req.Filename, Err: err}
	}
	content := strings.Join(pages, "\n")

	var chunks []types.DocumentChunk
	chunkCount := 0
	if req.ChunkingStrategy != nil {
		window, overlap := req.ChunkingStrategy.Resolve(s.defaultWindow(), s.defaultOverlap())
		chunks = MakeOverlappedChunks(content, req.Filename, window, overlap, map[string]any{
			"filename":    req.Filename,
			MetaProcessor: ProcessorPDFText,
			"pages":       len(pages),
		})
		chunkCount = len(chunks)

		if req.IncludeEmbeddings && chunkCount > 0 {
			// The embedding capability is not wired into the pipeline yet;
			// the result keeps a nil slot for it.
			log.Printf("Warning: embedding generation not yet implemented for pdftext backend")
		}
	}

	elapsed := time.Since(start).Seconds()
	result := &types.ProcessedContent{
		Content: content,
		Chunks:  chunks,
		Metadata: map[string]any{
			"pages":                   len(pages),
			"processor":               ProcessorPDFText,
			"format":                  FormatText,
			"processing_time_seconds": elapsed,
			"content_length":          len(content),
			"filename":                req.Filename,
			"file_size_bytes":         len(req.Data),
			"chunking_strategy":       req.ChunkingStrategy,
			"chunk_count":             chunkCount,
			"include_embeddings":      req.IncludeEmbeddings,
		},
	}

	log.Printf("pdftext processing completed: %d pages, %d chars, %d chunks, %.2fs",
		len(pages), len(content), chunkCount, elapsed)
	return result, nil
}

func (s *PDFTextService) defaultWindow() int {
	if s.cfg.DefaultChunkSize > 0 {
		return s.cfg.DefaultChunkSize
	}
	return DefaultAutoChunkSize
}

func (s *PDFTextService) defaultOverlap() int {
	if s.cfg.DefaultChunkOverlap > 0 {
		return s.cfg.DefaultChunkOverlap
	}
	return DefaultAutoChunkOverlap
}

// validatePayload rejects empty payloads and payloads over the configured
// size limit. Both are terminal input errors, not retryable conditions.
func validatePayload(req types.ProcessRequest, maxSizeMB int) error {
	if len(req.Data) == 0 {
		return fmt.Errorf("%s: empty payload: %w", req.Filename, types.ErrInvalidInput)
	}
	if maxSizeMB > 0 && len(req.Data) > maxSizeMB<<20 {
		return fmt.Errorf("%s: payload exceeds %d MB: %w", req.Filename, maxSizeMB, types.ErrInvalidInput)
	}
	return nil
}

// pdfPageExtractor reads PDF text in-process.
type pdfPageExtractor struct{}

func (e *pdfPageExtractor) ExtractPages(ctx context.Context, data []byte) ([]string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}

	pages := make([]string, 0, reader.NumPage())
	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// Skip unreadable pages instead of failing the document.
			log.Printf("Warning: failed to extract text from page %d: %v", pageNum, err)
			pages = append(pages, "")
			continue
		}
		pages = append(pages, strings.TrimSpace(text))
	}
	return pages, nil
}
