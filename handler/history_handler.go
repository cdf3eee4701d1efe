package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/tieubaoca/docproc-be/repository"
	"github.com/tieubaoca/docproc-be/types"
)

// HistoryHandler exposes the processing history records.
type HistoryHandler struct {
	history repository.ProcessingRepo
}

func NewHistoryHandler(history repository.ProcessingRepo) *HistoryHandler {
	return &HistoryHandler{
		history: history,
	}
}

// HandleListRecords returns recent processing records, newest first. An
// optional "filename" query narrows the listing to one document.
func (h *HistoryHandler) HandleListRecords(c *gin.Context) {
	if filename := c.Query("filename"); filename != "" {
		records, err := h.history.GetRecordsByFilename(c.Request.Context(), filename)
		if err != nil {
			c.JSON(http.StatusInternalServerError, types.DataResponse{
				Status:  "error",
				Message: err.Error(),
			})
			return
		}
		c.JSON(http.StatusOK, types.DataResponse{
			Status: "success",
			Data:   records,
		})
		return
	}

	limit, _ := strconv.ParseInt(c.DefaultQuery("limit", "50"), 10, 64)
	records, err := h.history.ListRecords(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.DataResponse{
			Status:  "error",
			Message: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, types.DataResponse{
		Status: "success",
		Data:   records,
	})
}
