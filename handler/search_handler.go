package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tieubaoca/docproc-be/database"
	"github.com/tieubaoca/docproc-be/types"
)

type SearchHandler struct {
	store database.VectorStore
}

func NewSearchHandler(store database.VectorStore) *SearchHandler {
	return &SearchHandler{
		store: store,
	}
}

func (h *SearchHandler) HandleSearch(c *gin.Context) {
	var req types.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  "error",
			Message: "Invalid request body",
		})
		return
	}
	if len(req.Queries) == 0 {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  "error",
			Message: "At least one query is required",
		})
		return
	}

	// Set default limit if not provided
	if req.Limit == 0 {
		req.Limit = 5
	}

	chunks, err := h.store.SearchChunks(c.Request.Context(), req.Queries, database.ChunkFilter{Tags: req.Tags}, req.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.DataResponse{
			Status:  "error",
			Message: "Search failed: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, types.DataResponse{
		Status: "success",
		Data: types.SearchResponse{
			Chunks: chunks,
		},
	})
}
