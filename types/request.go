package types

// UploadRequest describes a document being uploaded for indexing.
type UploadRequest struct {
	Title   string            `json:"title"`
	Source  string            `json:"source"`
	Tags    []string          `json:"tags"`
	Backend string            `json:"backend,omitempty"`
	Options map[string]any    `json:"options,omitempty"`
	Chunk   *ChunkingStrategy `json:"chunking_strategy,omitempty"`
}

// ProcessFileRequest is the transport form of ProcessRequest: the payload
// arrives base64-encoded in JSON.
type ProcessFileRequest struct {
	Filename          string            `json:"filename"`
	FileData          string            `json:"file_data"` // base64
	Backend           string            `json:"backend,omitempty"`
	Options           map[string]any    `json:"options,omitempty"`
	ChunkingStrategy  *ChunkingStrategy `json:"chunking_strategy,omitempty"`
	IncludeEmbeddings bool              `json:"include_embeddings"`
}

// SearchRequest queries indexed chunks.
type SearchRequest struct {
	Queries []string `json:"queries"`
	Tags    []string `json:"tags,omitempty"`
	Limit   int      `json:"limit,omitempty"`
}
