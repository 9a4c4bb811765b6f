package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"leakscan/internal/domain"
	"leakscan/internal/service"
)

// OCRHandler handles vision extraction endpoints.
type OCRHandler struct {
	documentService service.DocumentService
}

// NewOCRHandler creates a new OCRHandler.
func NewOCRHandler(documentService service.DocumentService) *OCRHandler {
	return &OCRHandler{documentService: documentService}
}

// OCRRequest is the body of POST /api/v1/ocr. Images and PDFs are sent as
// base64; spreadsheets and documents are sent as extracted text.
type OCRRequest struct {
	ImageBase64   string `json:"imageBase64"`
	ImageMIMEType string `json:"imageMimeType"`
	TextContent   string `json:"textContent"`
	FileName      string `json:"fileName"`
}

// OCRResponse is the success body of POST /api/v1/ocr.
type OCRResponse struct {
	Success     bool              `json:"success"`
	OCRResult   *domain.OCRResult `json:"ocrResult"`
	FileName    string            `json:"fileName"`
	Model       string            `json:"model"`
	ProcessedAt time.Time         `json:"processedAt"`
}

// TextExtractionRequiredResponse tells the caller to resend an Office file
// through the text path.
type TextExtractionRequiredResponse struct {
	Error                  string `json:"error"`
	RequiresTextExtraction bool   `json:"requiresTextExtraction"`
	FileType               string `json:"fileType"`
}

// Extract handles POST /api/v1/ocr
func (h *OCRHandler) Extract(c *gin.Context) {
	var req OCRRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	result, err := h.documentService.VisionExtract(c.Request.Context(), &service.VisionExtractInput{
		ImageBase64:   req.ImageBase64,
		ImageMIMEType: req.ImageMIMEType,
		TextContent:   req.TextContent,
		FileName:      req.FileName,
	})
	if errors.Is(err, domain.ErrRequiresTextExtraction) {
		c.JSON(http.StatusBadRequest, TextExtractionRequiredResponse{
			Error:                  "Spreadsheet and Office files must be sent as extracted text content",
			RequiresTextExtraction: true,
			FileType:               req.ImageMIMEType,
		})
		return
	}
	if err != nil {
		HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, OCRResponse{
		Success:     true,
		OCRResult:   result.OCRResult,
		FileName:    result.FileName,
		Model:       result.Model,
		ProcessedAt: result.ProcessedAt,
	})
}
