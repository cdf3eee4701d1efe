package types

// Chunking strategy types accepted by the processing API.
const (
	ChunkingStrategyAuto   = "auto"
	ChunkingStrategyStatic = "static"
)

// StaticChunkingConfig holds explicit window parameters for chunking.
type StaticChunkingConfig struct {
	MaxChunkSizeTokens int `json:"max_chunk_size_tokens"`
	ChunkOverlapTokens int `json:"chunk_overlap_tokens"`
}

// ChunkingStrategy selects how extracted content is split into chunks.
// Type is either "auto" (backend picks its defaults) or "static"
// (explicit window/overlap in Static).
type ChunkingStrategy struct {
	Type   string                `json:"type"`
	Static *StaticChunkingConfig `json:"static,omitempty"`
}

// AutoChunkingStrategy returns a strategy that lets the backend pick defaults.
func AutoChunkingStrategy() *ChunkingStrategy {
	return &ChunkingStrategy{Type: ChunkingStrategyAuto}
}

// StaticChunkingStrategy returns a strategy with an explicit window and overlap.
func StaticChunkingStrategy(maxChunkSize, overlap int) *ChunkingStrategy {
	return &ChunkingStrategy{
		Type: ChunkingStrategyStatic,
		Static: &StaticChunkingConfig{
			MaxChunkSizeTokens: maxChunkSize,
			ChunkOverlapTokens: overlap,
		},
	}
}

// Resolve returns the window and overlap to use for chunking. Auto (or a
// static strategy with a non-positive window) falls back to the supplied
// backend defaults.
func (s *ChunkingStrategy) Resolve(defaultWindow, defaultOverlap int) (int, int) {
	if s == nil || s.Type != ChunkingStrategyStatic || s.Static == nil || s.Static.MaxChunkSizeTokens <= 0 {
		return defaultWindow, defaultOverlap
	}
	return s.Static.MaxChunkSizeTokens, s.Static.ChunkOverlapTokens
}

// DocumentChunk is one ordered unit of chunker output. Offsets are in token
// units relative to the source text; DocumentID is a label, not an ownership
// link. Chunks are always produced in document order.
type DocumentChunk struct {
	Content     string         `json:"content"`
	DocumentID  string         `json:"document_id"`
	StartOffset int            `json:"start_offset"`
	EndOffset   int            `json:"end_offset"`
	Metadata    map[string]any `json:"metadata"`
}

// ProcessRequest carries one file through the processing pipeline.
// Filename is a hint/label only and is never used for trust decisions.
type ProcessRequest struct {
	Data              []byte            `json:"data"`
	Filename          string            `json:"filename"`
	Options           map[string]any    `json:"options,omitempty"`
	ChunkingStrategy  *ChunkingStrategy `json:"chunking_strategy,omitempty"`
	IncludeEmbeddings bool              `json:"include_embeddings"`
}

// ProcessedContent is the result of one process call. Chunks is nil when no
// chunking strategy was supplied (or chunking produced nothing recoverable).
// Embeddings stays nil until embedding generation is wired in; the slot
// exists so the result shape does not change when it is.
type ProcessedContent struct {
	Content    string          `json:"content"`
	Chunks     []DocumentChunk `json:"chunks,omitempty"`
	Embeddings [][]float32     `json:"embeddings,omitempty"`
	Metadata   map[string]any  `json:"metadata"`
}

// DocumentStats are best-effort structural counts from a decoded document.
// Unknown counts stay 0 rather than failing the call.
type DocumentStats struct {
	Pages   int `json:"pages"`
	Tables  int `json:"tables"`
	Figures int `json:"figures"`
}

// ProcessorServiceConfig contains configuration options shared by the
// processing backends.
type ProcessorServiceConfig struct {
	DefaultChunkSize    int      // Default window size in tokens for auto strategy
	DefaultChunkOverlap int      // Default overlap in tokens for auto strategy
	MaxFileSizeMB       int      // Maximum accepted payload size
	OCRLanguages        []string // Language packs passed to tesseract
}

// IndexedChunk is a chunk as stored in the vector database.
type IndexedChunk struct {
	ID         string            `bson:"_id" json:"id"`
	Content    string            `bson:"content" json:"content"`
	DocumentID string            `bson:"document_id" json:"document_id"`
	ChunkIndex int               `bson:"chunk_index" json:"chunk_index"`
	Metadata   ChunkMetadata     `bson:"metadata" json:"metadata"`
	Custom     map[string]string `bson:"custom" json:"custom,omitempty"`
	CreatedAt  int64             `bson:"created_at" json:"created_at"`
}

// ChunkMetadata contains additional indexed chunk information.
type ChunkMetadata struct {
	Title     string   `bson:"title" json:"title"`
	Source    string   `bson:"source" json:"source"`
	Processor string   `bson:"processor" json:"processor"`
	Tags      []string `bson:"tags" json:"tags"`
}

// ProcessingRecord is the persisted history entry for one pipeline run.
type ProcessingRecord struct {
	ID              string  `bson:"_id,omitempty" json:"id"`
	Filename        string  `bson:"filename" json:"filename"`
	Processor       string  `bson:"processor" json:"processor"`
	Format          string  `bson:"format" json:"format"`
	Pages           int     `bson:"pages" json:"pages"`
	ChunkCount      int     `bson:"chunk_count" json:"chunk_count"`
	ContentLength   int     `bson:"content_length" json:"content_length"`
	FileSizeBytes   int     `bson:"file_size_bytes" json:"file_size_bytes"`
	ChunkingDegrade bool    `bson:"chunking_degraded" json:"chunking_degraded"`
	DurationSeconds float64 `bson:"duration_seconds" json:"duration_seconds"`
	CreatedAt       int64   `bson:"created_at" json:"created_at"`
}
