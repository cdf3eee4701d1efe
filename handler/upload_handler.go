package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	services "github.com/tieubaoca/docproc-be/service"
	"github.com/tieubaoca/docproc-be/types"
)

type UploadHandler struct {
	fileService *services.FileService
}

func NewUploadHandler(fileService *services.FileService) *UploadHandler {
	return &UploadHandler{
		fileService: fileService,
	}
}

// UploadDocumentHandler accepts a multipart upload and streams indexing
// progress back as server-sent events.
func (h *UploadHandler) UploadDocumentHandler(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  "error",
			Message: "Invalid file",
		})
		return
	}
	defer file.Close()

	metadata := c.Request.FormValue("metadata")
	var req types.UploadRequest
	if err := json.Unmarshal([]byte(metadata), &req); err != nil {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  "error",
			Message: "Invalid metadata",
		})
		return
	}

	const maxSize = 100 << 20
	if header.Size > maxSize {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  "error",
			Message: "File too large",
		})
		return
	}

	statusChan := make(chan types.ProcessingDocumentStatus)
	errChan := make(chan error, 1)
	go func() {
		errChan <- h.fileService.UploadFile(c.Request.Context(), req, header, statusChan)
	}()

	clientGone := c.Writer.CloseNotify()
	for {
		select {
		case <-clientGone:
			return // Client disconnected
		case status, ok := <-statusChan:
			if !ok {
				statusChan = nil
				continue
			}
			jsonStatus, err := json.Marshal(status)
			if err != nil {
				continue
			}
			c.SSEvent("message", string(jsonStatus))
			c.Writer.Flush()
		case err := <-errChan:
			if err != nil {
				c.JSON(http.StatusInternalServerError, types.DataResponse{
					Status:  "error",
					Message: err.Error(),
				})
				return
			}
			c.SSEvent("done", "")
			c.Writer.Flush()
			return
		}
	}
}
