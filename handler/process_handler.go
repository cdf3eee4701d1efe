package handler

import (
	"encoding/base64"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tieubaoca/docproc-be/service"
	"github.com/tieubaoca/docproc-be/types"
)

// ProcessHandler exposes the processing pipeline over HTTP. The payload
// arrives base64-encoded in JSON and the full ProcessedContent goes back.
type ProcessHandler struct {
	processors     map[string]service.FileProcessor
	defaultBackend string
}

func NewProcessHandler(processors map[string]service.FileProcessor, defaultBackend string) *ProcessHandler {
	return &ProcessHandler{
		processors:     processors,
		defaultBackend: defaultBackend,
	}
}

func (h *ProcessHandler) HandleProcess(c *gin.Context) {
	var req types.ProcessFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  "error",
			Message: "Invalid request body",
		})
		return
	}

	data, err := base64.StdEncoding.DecodeString(req.FileData)
	if err != nil {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  "error",
			Message: "Invalid base64 file data",
		})
		return
	}

	backend := req.Backend
	if backend == "" {
		backend = h.defaultBackend
	}
	processor, ok := h.processors[backend]
	if !ok {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  "error",
			Message: "Unknown backend: " + backend,
		})
		return
	}

	result, err := processor.Process(c.Request.Context(), types.ProcessRequest{
		Data:              data,
		Filename:          req.Filename,
		Options:           req.Options,
		ChunkingStrategy:  req.ChunkingStrategy,
		IncludeEmbeddings: req.IncludeEmbeddings,
	})
	if err != nil {
		status := http.StatusInternalServerError
		var decodeErr *types.DecodeError
		switch {
		case errors.Is(err, types.ErrInvalidInput):
			status = http.StatusBadRequest
		case errors.As(err, &decodeErr):
			status = http.StatusUnprocessableEntity
		}
		c.JSON(status, types.DataResponse{
			Status:  "error",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, types.DataResponse{
		Status: "success",
		Data:   result,
	})
}

// HandleBackends lists the registered processing backends.
func (h *ProcessHandler) HandleBackends(c *gin.Context) {
	c.JSON(http.StatusOK, types.DataResponse{
		Status: "success",
		Data:   service.Backends(),
	})
}
