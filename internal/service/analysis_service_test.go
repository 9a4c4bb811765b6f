package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"leakscan/internal/adapter"
	"leakscan/internal/config"
	"leakscan/internal/domain"
	"leakscan/internal/extraction"
	"leakscan/internal/inference"
	"leakscan/internal/leaks"
	"leakscan/internal/port"
	"leakscan/internal/service"
	"leakscan/mocks"
)

const (
	extractionAnswer = `{"document_type": "bank_statement", "confidence": 0.9, "line_items": [{"description": "Netflix", "amount": 15.99}]}`
	findingsAnswer   = `{"patterns": [{"type": "duplicate", "description": "Netflix billed twice", "confidence": 0.8}], "anomalies": [], "summary": "one"}`
	reasonerAnswer   = `{"leaks": [{"id": "l1", "type": "duplicate_charge", "description": "Netflix charged twice", "amount": 15.99, "severity": "high", "confidence": 0.9, "modelSource": "both"}], "expenses": [], "summary": "One duplicate"}`
)

var analysisCfg = config.AnalysisConfig{MaxContentChars: 100000, ReviewThreshold: 0.6}

func provider(model, text string) *mocks.MockInferenceProvider {
	p := new(mocks.MockInferenceProvider)
	p.On("Complete", mock.Anything, mock.Anything).Return(&port.Completion{Text: text, Model: model}, nil)
	p.On("Model").Return(model)
	return p
}

func failing(model string, err error) *mocks.MockInferenceProvider {
	p := new(mocks.MockInferenceProvider)
	p.On("Complete", mock.Anything, mock.Anything).Return(nil, err)
	p.On("Model").Return(model)
	return p
}

type pipeline struct {
	extractor *mocks.MockInferenceProvider
	detector  *mocks.MockInferenceProvider
	reasoner  *mocks.MockInferenceProvider
	storage   *mocks.MockObjectStorage
}

func newAnalysisService(t *testing.T, p pipeline) service.AnalysisService {
	t.Helper()
	if p.extractor == nil {
		p.extractor = provider("extract-model", extractionAnswer)
	}
	if p.detector == nil {
		p.detector = provider("pattern-model", findingsAnswer)
	}
	if p.reasoner == nil {
		p.reasoner = provider("reason-model", reasonerAnswer)
	}
	normalizer, err := extraction.NewNormalizer(p.extractor, config.ExtractionConfig{MaxTextChars: 50000})
	require.NoError(t, err)

	var storage port.ObjectStorage
	if p.storage != nil {
		storage = p.storage
	}
	return service.NewAnalysisService(
		adapter.New(config.AdapterConfig{MaxFileSizeMB: 1, MaxImageDimension: 512}),
		normalizer,
		leaks.NewDetector(p.detector, analysisCfg),
		leaks.NewReasoner(p.reasoner, analysisCfg),
		storage,
		"docs",
		config.PipelineConfig{Concurrency: 2},
	)
}

func TestAnalyzeLeaks_Success(t *testing.T) {
	reasoner := provider("reason-model", reasonerAnswer)
	svc := newAnalysisService(t, pipeline{reasoner: reasoner})

	result, err := svc.AnalyzeLeaks(context.Background(), &service.AnalyzeInput{
		FileContent: "2024-03-01 Netflix 15.99\n2024-03-01 Netflix 15.99",
		FileNames:   []string{"bank.csv"},
		Categories:  map[string][]string{"bank": {"bank.csv"}},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Analysis.TotalLeaks)
	assert.Equal(t, domain.ScanTypeFree, result.Analysis.ScanType)
	assert.True(t, result.GeminiFindings.Available)
	assert.Equal(t, []string{"pattern-model", "reason-model"}, result.Models)
	assert.Equal(t, []string{"Netflix billed twice"}, result.Analysis.ModelContributions.Gemini)

	reasoner.AssertCalled(t, "Complete", mock.Anything, mock.MatchedBy(func(req port.CompletionRequest) bool {
		return strings.Contains(req.Content, "bank.csv") && strings.Contains(req.Content, "Document categories")
	}))
}

func TestAnalyzeLeaks_StageADegrades(t *testing.T) {
	svc := newAnalysisService(t, pipeline{
		detector: failing("pattern-model", errors.New("upstream 500")),
	})

	result, err := svc.AnalyzeLeaks(context.Background(), &service.AnalyzeInput{FileContent: "ledger rows"})
	require.NoError(t, err)

	assert.False(t, result.GeminiFindings.Available)
	assert.Empty(t, result.Analysis.ModelContributions.Gemini)
	assert.Equal(t, []string{"Netflix charged twice"}, result.Analysis.ModelContributions.GPT)
}

func TestAnalyzeLeaks_StageBRateLimit(t *testing.T) {
	svc := newAnalysisService(t, pipeline{
		reasoner: failing("reason-model", inference.NewRateLimitError("openai", errors.New("429"), 30)),
	})

	result, err := svc.AnalyzeLeaks(context.Background(), &service.AnalyzeInput{FileContent: "ledger rows"})

	assert.Nil(t, result)
	assert.True(t, inference.IsRateLimited(err))
}

func TestAnalyzeLeaks_UsesOCRResults(t *testing.T) {
	reasoner := provider("reason-model", reasonerAnswer)
	svc := newAnalysisService(t, pipeline{reasoner: reasoner})

	_, err := svc.AnalyzeLeaks(context.Background(), &service.AnalyzeInput{
		OCRResults: []domain.FileOCRResult{{
			FileName: "receipt.png",
			OCRResult: domain.OCRResult{
				RawText:      "ACME Hosting $49.00",
				DocumentType: "receipt",
				Tables:       []domain.OCRTable{{Title: "Items", Headers: []string{"item", "amount"}, Rows: [][]string{{"hosting", "49.00"}}}},
			},
		}},
	})
	require.NoError(t, err)

	reasoner.AssertCalled(t, "Complete", mock.Anything, mock.MatchedBy(func(req port.CompletionRequest) bool {
		return strings.Contains(req.Content, "receipt.png") &&
			strings.Contains(req.Content, "ACME Hosting") &&
			strings.Contains(req.Content, "hosting, 49.00")
	}))
}

func TestAnalyzeLeaks_Validation(t *testing.T) {
	svc := newAnalysisService(t, pipeline{})

	_, err := svc.AnalyzeLeaks(context.Background(), &service.AnalyzeInput{FileContent: "   "})
	assert.ErrorIs(t, err, domain.ErrMissingInput)

	_, err = svc.AnalyzeLeaks(context.Background(), &service.AnalyzeInput{FileContent: "x", ScanType: "premium"})
	assert.ErrorIs(t, err, domain.ErrInvalidScanType)
}

func TestAnalyzeLeaks_EnhancedCarriesPrior(t *testing.T) {
	reasoner := provider("reason-model", `{"leaks": [{"id": "n1", "type": "billing_error", "description": "Overbilled", "amount": 5}]}`)
	svc := newAnalysisService(t, pipeline{reasoner: reasoner})
	prior := &domain.LeakAnalysis{Leaks: []domain.LeakItem{{ID: "p1", Type: domain.LeakTypeOther, Amount: 10}}}

	result, err := svc.AnalyzeLeaks(context.Background(), &service.AnalyzeInput{
		FileContent:      "new statement",
		ScanType:         domain.ScanTypeEnhanced,
		ExistingAnalysis: prior,
	})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Analysis.TotalLeaks)
	assert.Equal(t, 15.0, result.Analysis.TotalRecoverable)
	assert.Equal(t, domain.ScanTypeEnhanced, result.Analysis.ScanType)
}

func TestAnalyzeLeaks_FreeIgnoresPrior(t *testing.T) {
	svc := newAnalysisService(t, pipeline{})
	prior := &domain.LeakAnalysis{Leaks: []domain.LeakItem{{ID: "p1", Type: domain.LeakTypeOther, Amount: 10}}}

	result, err := svc.AnalyzeLeaks(context.Background(), &service.AnalyzeInput{
		FileContent:      "new statement",
		ScanType:         domain.ScanTypeFree,
		ExistingAnalysis: prior,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Analysis.TotalLeaks)
}

func TestScan_SkipsUnreadableFiles(t *testing.T) {
	reasoner := provider("reason-model", reasonerAnswer)
	svc := newAnalysisService(t, pipeline{reasoner: reasoner})

	result, err := svc.Scan(context.Background(), &service.ScanInput{Files: []adapter.FileInput{
		{FileName: "photo.jpg", MIMEType: "image/jpeg", Data: []byte("definitely not a jpeg")},
		{FileName: "bank.csv", Data: []byte("date,description,amount\n2024-03-01,Netflix,15.99\n")},
	}})
	require.NoError(t, err)

	s := result.Session
	require.Len(t, s.Documents, 2)
	assert.Equal(t, domain.AdaptStatusUnreadable, s.Documents[0].Status)
	assert.Equal(t, domain.AdaptStatusOK, s.Documents[1].Status)
	require.Len(t, s.Extractions, 1)
	assert.Equal(t, "bank.csv", s.Extractions[0].FileName)
	assert.Equal(t, []string{"bank.csv"}, s.ReadableFileNames())
	assert.NotNil(t, s.Findings)
	assert.Equal(t, 1, s.Analysis.TotalLeaks)
	assert.Equal(t, []string{"extract-model", "pattern-model", "reason-model"}, result.Models)

	reasoner.AssertCalled(t, "Complete", mock.Anything, mock.MatchedBy(func(req port.CompletionRequest) bool {
		return strings.Contains(req.Content, "=== File: bank.csv ===") &&
			strings.Contains(req.Content, "Netflix") &&
			!strings.Contains(req.Content, "photo.jpg")
	}))
}

func TestScan_NoReadableDocuments(t *testing.T) {
	reasoner := provider("reason-model", reasonerAnswer)
	svc := newAnalysisService(t, pipeline{reasoner: reasoner})

	result, err := svc.Scan(context.Background(), &service.ScanInput{Files: []adapter.FileInput{
		{FileName: "photo.jpg", MIMEType: "image/jpeg", Data: []byte("definitely not a jpeg")},
		{FileName: "archive.zip", Data: append([]byte("PK\x03\x04"), make([]byte, 64)...)},
	}})

	assert.Nil(t, result)
	assert.ErrorIs(t, err, domain.ErrNoReadableDocuments)
	reasoner.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything)
}

func TestScan_ExtractionFailureKeepsFile(t *testing.T) {
	svc := newAnalysisService(t, pipeline{
		extractor: failing("extract-model", errors.New("upstream 503")),
	})

	result, err := svc.Scan(context.Background(), &service.ScanInput{Files: []adapter.FileInput{
		{FileName: "notes.txt", Data: []byte("Netflix 15.99 monthly")},
	}})
	require.NoError(t, err)

	require.Len(t, result.Session.Extractions, 1)
	ex := result.Session.Extractions[0].Extraction
	assert.Equal(t, extraction.EmptyExtractionConfidence, ex.ClassificationConfidence)
	assert.NotEmpty(t, ex.Validation.Notes)
}

func TestScan_NoFiles(t *testing.T) {
	svc := newAnalysisService(t, pipeline{})

	_, err := svc.Scan(context.Background(), &service.ScanInput{})
	assert.ErrorIs(t, err, domain.ErrMissingInput)
}

func TestScanStored_Success(t *testing.T) {
	storage := new(mocks.MockObjectStorage)
	storage.On("Download", mock.Anything, "docs", "tenant/a/bank.csv").Return(&port.StoredObject{
		Key:         "bank.csv",
		Body:        []byte("date,description,amount\n2024-03-01,Netflix,15.99\n"),
		ContentType: "text/csv",
	}, nil)
	storage.On("Download", mock.Anything, "docs", "tenant/a/notes.txt").Return(&port.StoredObject{
		Key:         "notes.txt",
		Body:        []byte("Spotify renewed at a higher price"),
		ContentType: "text/plain",
	}, nil)
	svc := newAnalysisService(t, pipeline{storage: storage})

	result, err := svc.ScanStored(context.Background(), &service.StoredScanInput{
		ObjectKeys: []string{"tenant/a/bank.csv", "tenant/a/notes.txt"},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"bank.csv", "notes.txt"}, result.Session.ReadableFileNames())
	storage.AssertExpectations(t)
}

func TestScanStored_DownloadError(t *testing.T) {
	storage := new(mocks.MockObjectStorage)
	storage.On("Download", mock.Anything, "docs", "missing.pdf").
		Return(nil, domain.ErrObjectNotFound)
	svc := newAnalysisService(t, pipeline{storage: storage})

	_, err := svc.ScanStored(context.Background(), &service.StoredScanInput{ObjectKeys: []string{"missing.pdf"}})
	assert.ErrorIs(t, err, domain.ErrObjectNotFound)
}

func TestScanStored_Validation(t *testing.T) {
	svc := newAnalysisService(t, pipeline{})
	_, err := svc.ScanStored(context.Background(), &service.StoredScanInput{ObjectKeys: []string{"a.csv"}})
	assert.ErrorIs(t, err, domain.ErrStorageUnavailable)

	withStorage := newAnalysisService(t, pipeline{storage: new(mocks.MockObjectStorage)})
	_, err = withStorage.ScanStored(context.Background(), &service.StoredScanInput{})
	assert.ErrorIs(t, err, domain.ErrMissingInput)

	_, err = withStorage.ScanStored(context.Background(), &service.StoredScanInput{ObjectKeys: []string{"a.csv"}, ScanType: "bogus"})
	assert.ErrorIs(t, err, domain.ErrInvalidScanType)
}
