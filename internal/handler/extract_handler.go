package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"leakscan/internal/domain"
	"leakscan/internal/service"
)

// ExtractHandler handles single-document extraction endpoints.
type ExtractHandler struct {
	documentService service.DocumentService
}

// NewExtractHandler creates a new ExtractHandler.
func NewExtractHandler(documentService service.DocumentService) *ExtractHandler {
	return &ExtractHandler{documentService: documentService}
}

// ExtractRequest is the body of POST /api/v1/extract.
type ExtractRequest struct {
	TextContent string `json:"textContent"`
	FileName    string `json:"fileName"`
	FileType    string `json:"fileType"`
}

// ExtractResponse is the success body of POST /api/v1/extract.
type ExtractResponse struct {
	Success     bool                       `json:"success"`
	Extraction  domain.UniversalExtraction `json:"extraction"`
	FileName    string                     `json:"fileName"`
	Model       string                     `json:"model"`
	ProcessedAt time.Time                  `json:"processedAt"`
}

// Extract handles POST /api/v1/extract
func (h *ExtractHandler) Extract(c *gin.Context) {
	var req ExtractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	result, err := h.documentService.Extract(c.Request.Context(), &service.ExtractInput{
		TextContent: req.TextContent,
		FileName:    req.FileName,
		FileType:    req.FileType,
	})
	if err != nil {
		HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, ExtractResponse{
		Success:     true,
		Extraction:  result.Extraction,
		FileName:    result.FileName,
		Model:       result.Model,
		ProcessedAt: result.ProcessedAt,
	})
}
