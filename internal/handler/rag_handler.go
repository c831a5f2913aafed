package handler

import (
	"io"

	"github.com/gin-gonic/gin"

	"github.com/docask/docask/internal/model"
	"github.com/docask/docask/internal/pkg/errcode"
	"github.com/docask/docask/internal/pkg/response"
	"github.com/docask/docask/internal/service"
)

type RAGHandler struct {
	rag *service.RAGService
}

func NewRAGHandler(rag *service.RAGService) *RAGHandler {
	return &RAGHandler{rag: rag}
}

func (h *RAGHandler) Upload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		response.Error(c, errcode.ErrInvalidFile, "file is required")
		return
	}
	opened, err := file.Open()
	if err != nil {
		response.Error(c, errcode.ErrInvalidFile, "failed to open file")
		return
	}
	defer opened.Close()
	data, err := io.ReadAll(opened)
	if err != nil {
		response.Error(c, errcode.ErrInvalidFile, "failed to read file")
		return
	}
	result, err := h.rag.Ingest(c.Request.Context(), getUserID(c), file.Filename, data)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, result)
}

type queryRequest struct {
	Query       string              `json:"query"`
	History     []model.HistoryTurn `json:"conversation_history"`
	DocumentIDs []string            `json:"document_ids"`
}

func (h *RAGHandler) Query(c *gin.Context) {
	var req queryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	result, err := h.rag.Query(c.Request.Context(), getUserID(c), model.QueryContext{
		Query:       req.Query,
		History:     req.History,
		DocumentIDs: req.DocumentIDs,
	})
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, result)
}

func (h *RAGHandler) Delete(c *gin.Context) {
	documentID := c.Param("id")
	if documentID == "" {
		response.Error(c, errcode.ErrInvalid, "document id is required")
		return
	}
	result, err := h.rag.Delete(c.Request.Context(), getUserID(c), documentID)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, result)
}

func (h *RAGHandler) Stats(c *gin.Context) {
	result, err := h.rag.Stats(c.Request.Context(), getUserID(c))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, result)
}
