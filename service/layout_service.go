package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/tieubaoca/docproc-be/types"
	"github.com/tieubaoca/docproc-be/utils"
)

// Registry name and the processor tag chunks get when the structure-aware
// path degrades to the generic windower.
const (
	ProcessorLayout         = "layout"
	ProcessorLayoutFallback = "layout_fallback"
)

// Metadata keys recording that native chunking degraded to the fallback.
const (
	MetaChunkingDegraded       = "chunking_degraded"
	MetaChunkingDegradedReason = "chunking_degraded_reason"
)

// LayoutService is the structure-aware backend. It decodes through an
// external converter capability, exports layout-aware formats, and chunks
// along document structure, degrading to the generic windower whenever the
// structural path cannot deliver.
//
// The service holds only immutable configuration and capability handles, so
// concurrent Process calls are safe to interleave.
type LayoutService struct {
	cfg       types.ProcessorServiceConfig
	converter DocumentConverter
	chunker   StructuralChunker // nil means no native chunking capability
}

// NewLayoutService creates the backend with the poppler-based converter and
// the heading chunker. Missing poppler binaries surface here as a
// construction-time error, not on the first request.
func NewLayoutService(cfg types.ProcessorServiceConfig) (*LayoutService, error) {
	if err := checkPopplerTools(); err != nil {
		return nil, &types.BackendUnavailableError{Backend: ProcessorLayout, Reason: err.Error()}
	}
	return NewLayoutServiceWith(cfg, &popplerConverter{}, NewHeadingChunker()), nil
}

// NewLayoutServiceWith creates the backend with explicit capabilities.
// Passing a nil chunker disables native chunking entirely; every chunking
// request then goes straight to the windower.
func NewLayoutServiceWith(cfg types.ProcessorServiceConfig, converter DocumentConverter, chunker StructuralChunker) *LayoutService {
	return &LayoutService{
		cfg:       cfg,
		converter: converter,
		chunker:   chunker,
	}
}

func (s *LayoutService) Name() string { return ProcessorLayout }

// Process decodes the payload through the converter, exports the requested
// format, and chunks if a strategy is present.
func (s *LayoutService) Process(ctx context.Context, req types.ProcessRequest) (*types.ProcessedContent, error) {
	start := time.Now()

	if err := validatePayload(req, s.cfg.MaxFileSizeMB); err != nil {
		return nil, err
	}
	log.Printf("Processing file with layout converter: %s, size: %d bytes", req.Filename, len(req.Data))

	opts := parseLayoutOptions(req.Options)
	if len(opts.OCRLanguages) == 0 {
		opts.OCRLanguages = s.cfg.OCRLanguages
	}
	format := opts.Format
	if format == "" {
		format = FormatMarkdown
	}

	// The converter reads from disk; scratch storage is scoped to this call
	// and released on every exit path.
	scratchPath, cleanup, err := utils.WriteScratchFile(req.Data, req.Filename)
	if err != nil {
		return nil, &types.ProcessingError{Filename: req.Filename, Stage: "scratch", Err: err}
	}
	defer cleanup()

	doc, err := s.converter.Convert(ctx, scratchPath, opts)
	if err != nil {
		return nil, &types.DecodeError{Filename: req.Filename, Err: err}
	}

	content, err := ExportContent(doc, format)
	if err != nil {
		return nil, &types.ProcessingError{Filename: req.Filename, Stage: "export", Err: err}
	}

	var chunks []types.DocumentChunk
	chunkCount := 0
	degraded := false
	degradedReason := ""
	if req.ChunkingStrategy != nil {
		outcome := s.chunkDocument(doc, req.Filename, req.ChunkingStrategy, format)
		chunks = outcome.chunks
		chunkCount = len(outcome.chunks)
		degraded = outcome.degraded
		degradedReason = outcome.reason

		if req.IncludeEmbeddings && chunkCount > 0 {
			// The embedding capability is not wired into the pipeline yet;
			// the result keeps a nil slot for it.
			log.Printf("Warning: embedding generation not yet implemented for layout backend")
		}
	}

	stats := doc.Stats()
	elapsed := time.Since(start).Seconds()
	metadata := map[string]any{
		"pages":                   stats.Pages,
		"tables":                  stats.Tables,
		"figures":                 stats.Figures,
		"format":                  format,
		"processor":               ProcessorLayout,
		"processing_time_seconds": elapsed,
		"content_length":          len(content),
		"filename":                req.Filename,
		"file_size_bytes":         len(req.Data),
		"converter_options":       opts,
		"chunking_strategy":       req.ChunkingStrategy,
		"chunk_count":             chunkCount,
		"include_embeddings":      req.IncludeEmbeddings,
	}
	if degraded {
		metadata[MetaChunkingDegraded] = true
		metadata[MetaChunkingDegradedReason] = degradedReason
	}

	log.Printf("layout processing completed: %d pages, %d tables, %d chunks, %.2fs",
		stats.Pages, stats.Tables, chunkCount, elapsed)
	return &types.ProcessedContent{
		Content:  content,
		Chunks:   chunks,
		Metadata: metadata,
	}, nil
}

// chunkOutcome is the explicit two-outcome result of the structural chunking
// adapter: either native chunks, or fallback chunks with the degradation
// recorded. It is never expressed as a caught error.
type chunkOutcome struct {
	chunks   []types.DocumentChunk
	degraded bool
	reason   string
}

// chunkDocument tries the native structure-aware chunker and falls back to
// the generic windower on any native failure: capability absent, error, or
// empty output. Each failure is absorbed and moves forward exactly once;
// nothing is retried. The fallback itself never fails: it produces no chunks
// only when text export fails.
func (s *LayoutService) chunkDocument(doc Document, documentID string, strategy *types.ChunkingStrategy, format string) chunkOutcome {
	if s.chunker == nil {
		return s.fallbackChunking(doc, documentID, strategy, format, "native chunker not available")
	}

	// Native chunkers substitute their own overlap heuristic, so only the
	// window size translates.
	maxTokens, _ := strategy.Resolve(s.defaultWindow(), s.defaultOverlap())
	texts, err := s.chunker.ChunkDocument(doc, maxTokens)
	if err != nil {
		return s.fallbackChunking(doc, documentID, strategy, format, err.Error())
	}
	if len(texts) == 0 {
		return s.fallbackChunking(doc, documentID, strategy, format, "native chunker produced no chunks")
	}

	stats := doc.Stats()
	chunks := make([]types.DocumentChunk, 0, len(texts))
	offset := 0
	for i, text := range texts {
		length := tokenLen(text)
		chunks = append(chunks, types.DocumentChunk{
			Content:     text,
			DocumentID:  documentID,
			StartOffset: offset,
			EndOffset:   offset + length,
			Metadata: map[string]any{
				MetaChunkIndex: i,
				MetaProcessor:  ProcessorLayout,
				MetaTokenCount: length,
				"pages":        stats.Pages,
			},
		})
		offset += length
	}
	log.Printf("layout native chunking created %d chunks", len(chunks))
	return chunkOutcome{chunks: chunks}
}

// fallbackChunking windows the exported text. Structural stats degrade to
// zero rather than failing; the degradation stays observable through the
// outcome and a log line.
func (s *LayoutService) fallbackChunking(doc Document, documentID string, strategy *types.ChunkingStrategy, format string, reason string) chunkOutcome {
	log.Printf("Warning: layout native chunking degraded, falling back to windowed chunking: %s", reason)

	// Chunk over the same representation the caller asked for, where that
	// makes sense; anything other than markdown chunks over plain text.
	exportFormat := FormatText
	if format == FormatMarkdown {
		exportFormat = FormatMarkdown
	}
	text, err := ExportContent(doc, exportFormat)
	if err != nil {
		log.Printf("Warning: fallback chunking could not export text: %v", err)
		return chunkOutcome{degraded: true, reason: fmt.Sprintf("%s; fallback export failed: %v", reason, err)}
	}

	stats := doc.Stats()
	window, overlap := strategy.Resolve(s.defaultWindow(), s.defaultOverlap())
	chunks := MakeOverlappedChunks(text, documentID, window, overlap, map[string]any{
		MetaProcessor: ProcessorLayoutFallback,
		"pages":       stats.Pages,
		"tables":      stats.Tables,
		"figures":     stats.Figures,
	})
	log.Printf("layout fallback chunking created %d chunks", len(chunks))
	return chunkOutcome{chunks: chunks, degraded: true, reason: reason}
}

func (s *LayoutService) defaultWindow() int {
	if s.cfg.DefaultChunkSize > 0 {
		return s.cfg.DefaultChunkSize
	}
	return DefaultAutoChunkSize
}

func (s *LayoutService) defaultOverlap() int {
	if s.cfg.DefaultChunkOverlap > 0 {
		return s.cfg.DefaultChunkOverlap
	}
	return DefaultAutoChunkOverlap
}

func tokenLen(text string) int {
	n := 0
	inToken := false
	for _, r := range text {
		switch r {
		case ' ', '\t', '\n', '\r', '\v', '\f':
			inToken = false
		default:
			if !inToken {
				n++
				inToken = true
			}
		}
	}
	return n
}

// parseLayoutOptions translates the raw option map into converter options.
// Unknown keys are ignored for forward compatibility; known keys with values
// of the wrong type are dropped, never rejected.
func parseLayoutOptions(options map[string]any) ConvertOptions {
	var opts ConvertOptions
	if options == nil {
		return opts
	}
	if v, ok := optString(options, "format"); ok {
		opts.Format = v
	}
	if v, ok := optBool(options, "extract_tables"); ok {
		opts.ExtractTables = v
	}
	if v, ok := optBool(options, "extract_figures"); ok {
		opts.ExtractFigures = v
	}
	if v, ok := optBool(options, "ocr_enabled"); ok {
		opts.OCREnabled = v
	}
	if v, ok := optStringSlice(options, "ocr_languages"); ok {
		opts.OCRLanguages = v
	}
	if v, ok := optBool(options, "preserve_layout"); ok {
		opts.PreserveLayout = v
	}
	return opts
}
