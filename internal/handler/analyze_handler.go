package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"leakscan/internal/domain"
	"leakscan/internal/service"
)

// AnalyzeHandler handles leak analysis over client-extracted content.
type AnalyzeHandler struct {
	analysisService service.AnalysisService
}

// NewAnalyzeHandler creates a new AnalyzeHandler.
func NewAnalyzeHandler(analysisService service.AnalysisService) *AnalyzeHandler {
	return &AnalyzeHandler{analysisService: analysisService}
}

// AnalyzeRequest is the body of POST /api/v1/analyze-leaks.
type AnalyzeRequest struct {
	FileContent      string                 `json:"fileContent"`
	FileNames        []string               `json:"fileNames"`
	Categories       map[string][]string    `json:"categories"`
	OCRResults       []domain.FileOCRResult `json:"ocrResults"`
	ScanType         domain.ScanType        `json:"scanType"`
	ExistingAnalysis *domain.LeakAnalysis   `json:"existingAnalysis"`
}

// AnalyzeResponse is the success body of POST /api/v1/analyze-leaks.
type AnalyzeResponse struct {
	Success        bool                   `json:"success"`
	Analysis       *domain.LeakAnalysis   `json:"analysis"`
	Models         []string               `json:"models"`
	GeminiFindings domain.PatternFindings `json:"geminiFindings"`
}

// Analyze handles POST /api/v1/analyze-leaks
func (h *AnalyzeHandler) Analyze(c *gin.Context) {
	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	result, err := h.analysisService.AnalyzeLeaks(c.Request.Context(), &service.AnalyzeInput{
		FileContent:      req.FileContent,
		FileNames:        req.FileNames,
		Categories:       req.Categories,
		OCRResults:       req.OCRResults,
		ScanType:         req.ScanType,
		ExistingAnalysis: req.ExistingAnalysis,
	})
	if err != nil {
		HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, AnalyzeResponse{
		Success:        true,
		Analysis:       result.Analysis,
		Models:         result.Models,
		GeminiFindings: result.GeminiFindings,
	})
}
