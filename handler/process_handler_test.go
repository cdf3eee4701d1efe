package handler

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tieubaoca/docproc-be/service"
	"github.com/tieubaoca/docproc-be/types"
)

type stubProcessor struct {
	name    string
	result  *types.ProcessedContent
	err     error
	lastReq types.ProcessRequest
}

func (p *stubProcessor) Name() string { return p.name }

func (p *stubProcessor) Process(ctx context.Context, req types.ProcessRequest) (*types.ProcessedContent, error) {
	p.lastReq = req
	if p.err != nil {
		return nil, p.err
	}
	return p.result, nil
}

func newProcessRouter(processor *stubProcessor) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	h := NewProcessHandler(map[string]service.FileProcessor{"stub": processor}, "stub")
	router.POST("/api/v1/process", h.HandleProcess)
	router.GET("/api/v1/backends", h.HandleBackends)
	return router
}

func postProcess(t *testing.T, router *gin.Engine, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/process", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHandleProcessSuccess(t *testing.T) {
	processor := &stubProcessor{
		name: "stub",
		result: &types.ProcessedContent{
			Content:  "extracted text",
			Metadata: map[string]any{"pages": 1},
		},
	}
	router := newProcessRouter(processor)

	w := postProcess(t, router, types.ProcessFileRequest{
		Filename: "a.pdf",
		FileData: base64.StdEncoding.EncodeToString([]byte("%PDF")),
	})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []byte("%PDF"), processor.lastReq.Data)
	assert.Equal(t, "a.pdf", processor.lastReq.Filename)

	var resp types.DataResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "success", resp.Status)
}

func TestHandleProcessInvalidBody(t *testing.T) {
	router := newProcessRouter(&stubProcessor{name: "stub"})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/process", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleProcessInvalidBase64(t *testing.T) {
	router := newProcessRouter(&stubProcessor{name: "stub"})
	w := postProcess(t, router, types.ProcessFileRequest{
		Filename: "a.pdf",
		FileData: "!!! not base64 !!!",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleProcessUnknownBackend(t *testing.T) {
	router := newProcessRouter(&stubProcessor{name: "stub"})
	w := postProcess(t, router, types.ProcessFileRequest{
		Filename: "a.pdf",
		FileData: base64.StdEncoding.EncodeToString([]byte("x")),
		Backend:  "nope",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleProcessErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"invalid input", types.ErrInvalidInput, http.StatusBadRequest},
		{"decode failure", &types.DecodeError{Filename: "a.pdf", Err: errors.New("corrupt")}, http.StatusUnprocessableEntity},
		{"internal", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newProcessRouter(&stubProcessor{name: "stub", err: tt.err})
			w := postProcess(t, router, types.ProcessFileRequest{
				Filename: "a.pdf",
				FileData: base64.StdEncoding.EncodeToString([]byte("x")),
			})
			assert.Equal(t, tt.code, w.Code)
		})
	}
}

func TestHandleBackends(t *testing.T) {
	router := newProcessRouter(&stubProcessor{name: "stub"})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/backends", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp types.DataResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "success", resp.Status)
}
