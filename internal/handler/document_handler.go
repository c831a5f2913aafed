package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/docask/docask/internal/pkg/response"
	"github.com/docask/docask/internal/service"
)

type DocumentHandler struct {
	rag *service.RAGService
}

func NewDocumentHandler(rag *service.RAGService) *DocumentHandler {
	return &DocumentHandler{rag: rag}
}

func (h *DocumentHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	result, err := h.rag.ListDocuments(c.Request.Context(), getUserID(c), limit, offset)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, result)
}
