package types

type DataResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

type SearchResponse struct {
	Chunks []IndexedChunk `json:"chunks"`
}

// ProcessingDocumentStatus is streamed to the client while a document is
// being processed and indexed.
type ProcessingDocumentStatus struct {
	Status          string  `json:"status"`
	Message         string  `json:"message"`
	Progress        float64 `json:"progress"`
	TotalChunks     int     `json:"total_chunks"`
	ProcessedChunks int     `json:"processed_chunks"`
}
