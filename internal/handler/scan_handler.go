package handler

import (
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"leakscan/internal/adapter"
	"leakscan/internal/domain"
	"leakscan/internal/logger"
	"leakscan/internal/middleware"
	"leakscan/internal/service"
)

// ScanHandler handles full-pipeline scan endpoints.
type ScanHandler struct {
	analysisService service.AnalysisService
	maxFileBytes    int64
}

// NewScanHandler creates a new ScanHandler. Uploaded files are read up to
// one byte past maxFileBytes so oversized files are reported rather than
// silently truncated.
func NewScanHandler(analysisService service.AnalysisService, maxFileBytes int64) *ScanHandler {
	return &ScanHandler{analysisService: analysisService, maxFileBytes: maxFileBytes}
}

// StoredScanRequest is the body of POST /api/v1/scans/stored.
type StoredScanRequest struct {
	ObjectKeys       []string             `json:"objectKeys"`
	ScanType         domain.ScanType      `json:"scanType"`
	ExistingAnalysis *domain.LeakAnalysis `json:"existingAnalysis"`
}

// ScanResponse is the success body of both scan endpoints.
type ScanResponse struct {
	Success        bool                     `json:"success"`
	SessionID      uuid.UUID                `json:"sessionId"`
	ScanType       domain.ScanType          `json:"scanType"`
	Documents      []domain.DocumentReport  `json:"documents"`
	Extractions    []domain.NamedExtraction `json:"extractions"`
	Analysis       *domain.LeakAnalysis     `json:"analysis"`
	Models         []string                 `json:"models"`
	GeminiFindings *domain.PatternFindings  `json:"geminiFindings"`
}

// Scan handles POST /api/v1/scans
func (h *ScanHandler) Scan(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid multipart form", err.Error())
		return
	}

	headers := form.File["files"]
	if len(headers) == 0 {
		RespondError(c, http.StatusBadRequest, "missing required input", "files field is required")
		return
	}

	files := make([]adapter.FileInput, 0, len(headers))
	for _, fh := range headers {
		in, err := h.readUpload(fh)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "could not read uploaded file", err.Error())
			return
		}
		files = append(files, in)
	}

	var existing *domain.LeakAnalysis
	if raw := c.PostForm("existingAnalysis"); raw != "" {
		existing = &domain.LeakAnalysis{}
		if err := json.Unmarshal([]byte(raw), existing); err != nil {
			RespondError(c, http.StatusBadRequest, "invalid existingAnalysis", err.Error())
			return
		}
	}

	h.logSubject(c, len(files))
	result, err := h.analysisService.Scan(c.Request.Context(), &service.ScanInput{
		Files:            files,
		ScanType:         domain.ScanType(c.PostForm("scanType")),
		ExistingAnalysis: existing,
	})
	if err != nil {
		HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, newScanResponse(result))
}

// ScanStored handles POST /api/v1/scans/stored
func (h *ScanHandler) ScanStored(c *gin.Context) {
	var req StoredScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	h.logSubject(c, len(req.ObjectKeys))
	result, err := h.analysisService.ScanStored(c.Request.Context(), &service.StoredScanInput{
		ObjectKeys:       req.ObjectKeys,
		ScanType:         req.ScanType,
		ExistingAnalysis: req.ExistingAnalysis,
	})
	if err != nil {
		HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, newScanResponse(result))
}

func (h *ScanHandler) readUpload(fh *multipart.FileHeader) (adapter.FileInput, error) {
	f, err := fh.Open()
	if err != nil {
		return adapter.FileInput{}, fmt.Errorf("opening %s: %w", fh.Filename, err)
	}
	defer func() { _ = f.Close() }()

	var r io.Reader = f
	if h.maxFileBytes > 0 {
		r = io.LimitReader(f, h.maxFileBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return adapter.FileInput{}, fmt.Errorf("reading %s: %w", fh.Filename, err)
	}
	return adapter.FileInput{
		FileName: fh.Filename,
		MIMEType: fh.Header.Get("Content-Type"),
		Data:     data,
	}, nil
}

func (h *ScanHandler) logSubject(c *gin.Context, files int) {
	subject := middleware.GetSubject(c)
	if subject == "" {
		return
	}
	logger.FromContext(c.Request.Context()).Info("handler.ScanHandler: scan requested",
		zap.String("subject", subject), zap.Int("files", files))
}

func newScanResponse(result *service.ScanResult) ScanResponse {
	s := result.Session
	return ScanResponse{
		Success:        true,
		SessionID:      s.ID,
		ScanType:       s.ScanType,
		Documents:      s.Documents,
		Extractions:    s.Extractions,
		Analysis:       s.Analysis,
		Models:         result.Models,
		GeminiFindings: s.Findings,
	}
}
