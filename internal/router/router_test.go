package router_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"leakscan/internal/config"
	"leakscan/internal/domain"
	"leakscan/internal/handler"
	"leakscan/internal/router"
	"leakscan/internal/service"
	"leakscan/mocks"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newEngine(auth config.AuthConfig) (*gin.Engine, *mocks.MockDocumentService, *mocks.MockAnalysisService) {
	docSvc := new(mocks.MockDocumentService)
	analysisSvc := new(mocks.MockAnalysisService)
	cfg := &config.Config{
		Auth: auth,
		CORS: config.CORSConfig{AllowedHeaders: []string{"authorization", "content-type"}},
	}
	r := router.Setup(cfg, router.Handlers{
		Extract: handler.NewExtractHandler(docSvc),
		OCR:     handler.NewOCRHandler(docSvc),
		Analyze: handler.NewAnalyzeHandler(analysisSvc),
		Scan:    handler.NewScanHandler(analysisSvc, 1024),
		Health:  handler.NewHealthHandler(nil),
	})
	return r, docSvc, analysisSvc
}

func serve(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestRouter_Health(t *testing.T) {
	r, _, _ := newEngine(config.AuthConfig{})

	w := serve(r, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = serve(r, http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_PreflightSkipsAuth(t *testing.T) {
	r, _, _ := newEngine(config.AuthConfig{JWTSecret: "secret"})

	w := serve(r, http.MethodOptions, "/api/v1/analyze-leaks", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouter_AuthRequiredWhenConfigured(t *testing.T) {
	r, _, analysisSvc := newEngine(config.AuthConfig{JWTSecret: "secret"})

	w := serve(r, http.MethodPost, "/api/v1/analyze-leaks", `{"fileContent": "x"}`)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	analysisSvc.AssertNotCalled(t, "AnalyzeLeaks", mock.Anything, mock.Anything)
}

func TestRouter_LegacyPaths(t *testing.T) {
	r, docSvc, analysisSvc := newEngine(config.AuthConfig{})
	docSvc.On("Extract", mock.Anything, mock.Anything).Return(&service.ExtractResult{FileName: "a.csv"}, nil)
	docSvc.On("VisionExtract", mock.Anything, mock.Anything).Return(&service.VisionExtractResult{OCRResult: &domain.OCRResult{}}, nil)
	analysisSvc.On("AnalyzeLeaks", mock.Anything, mock.Anything).Return(&service.AnalyzeResult{Analysis: &domain.LeakAnalysis{}}, nil)

	for _, path := range []string{"/extract-data", "/ocr-extract", "/analyze-leaks", "/api/v1/extract", "/api/v1/ocr"} {
		w := serve(r, http.MethodPost, path, `{"fileContent": "x", "textContent": "x", "fileName": "a.csv"}`)
		assert.Equal(t, http.StatusOK, w.Code, path)
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"), path)
	}
}
