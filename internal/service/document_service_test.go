package service_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/png"
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
	"leakscan/internal/port"
	"leakscan/internal/service"
	"leakscan/mocks"
)

const ocrAnswer = `{"rawText": "ACME Hosting invoice total $49.00", "documentType": "invoice", "tables": [], "extractedData": {"amounts": ["$49.00"]}, "confidence": 0.92}`

func newDocumentService(t *testing.T, extractor, ocr *mocks.MockInferenceProvider) service.DocumentService {
	t.Helper()
	normalizer, err := extraction.NewNormalizer(extractor, config.ExtractionConfig{MaxTextChars: 50000})
	require.NoError(t, err)
	return service.NewDocumentService(
		normalizer,
		extraction.NewOCR(ocr, config.ExtractionConfig{MaxTextChars: 50000}),
		adapter.New(config.AdapterConfig{MaxFileSizeMB: 1, MaxImageDimension: 512}),
	)
}

func pngBase64(t *testing.T) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 8, 8))))
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

func TestDocumentService_Extract(t *testing.T) {
	extractor := provider("extract-model", extractionAnswer)
	svc := newDocumentService(t, extractor, provider("ocr-model", ocrAnswer))

	result, err := svc.Extract(context.Background(), &service.ExtractInput{
		TextContent: "date,description,amount\n2024-03-01,Netflix,15.99",
		FileName:    "bank.csv",
		FileType:    "text/csv",
	})
	require.NoError(t, err)

	assert.Equal(t, "bank.csv", result.FileName)
	assert.Equal(t, "extract-model", result.Model)
	assert.False(t, result.ProcessedAt.IsZero())
	extractor.AssertCalled(t, "Complete", mock.Anything, mock.MatchedBy(func(req port.CompletionRequest) bool {
		return strings.Contains(req.Content, "Netflix")
	}))
}

func TestDocumentService_Extract_MissingInput(t *testing.T) {
	svc := newDocumentService(t, provider("extract-model", extractionAnswer), provider("ocr-model", ocrAnswer))

	_, err := svc.Extract(context.Background(), &service.ExtractInput{TextContent: "rows"})
	assert.ErrorIs(t, err, domain.ErrMissingInput)

	_, err = svc.Extract(context.Background(), &service.ExtractInput{FileName: "a.csv"})
	assert.ErrorIs(t, err, domain.ErrMissingInput)
}

func TestDocumentService_Extract_QuotaIsSurfaced(t *testing.T) {
	svc := newDocumentService(t,
		failing("extract-model", &inference.QuotaExceededError{Provider: "gemini", Err: errors.New("402")}),
		provider("ocr-model", ocrAnswer))

	_, err := svc.Extract(context.Background(), &service.ExtractInput{TextContent: "rows", FileName: "a.csv"})

	var qErr *inference.QuotaExceededError
	assert.True(t, errors.As(err, &qErr))
}

func TestDocumentService_VisionExtract_Image(t *testing.T) {
	ocr := provider("ocr-model", ocrAnswer)
	svc := newDocumentService(t, provider("extract-model", extractionAnswer), ocr)

	result, err := svc.VisionExtract(context.Background(), &service.VisionExtractInput{
		ImageBase64:   "data:image/png;base64," + pngBase64(t),
		ImageMIMEType: "image/png",
		FileName:      "invoice.png",
	})
	require.NoError(t, err)

	assert.Equal(t, "invoice", result.OCRResult.DocumentType)
	assert.Equal(t, "ocr-model", result.Model)
	ocr.AssertCalled(t, "Complete", mock.Anything, mock.MatchedBy(func(req port.CompletionRequest) bool {
		return req.Image != nil && req.Image.MIMEType == "image/png"
	}))
}

func TestDocumentService_VisionExtract_TextContent(t *testing.T) {
	ocr := provider("ocr-model", ocrAnswer)
	svc := newDocumentService(t, provider("extract-model", extractionAnswer), ocr)

	_, err := svc.VisionExtract(context.Background(), &service.VisionExtractInput{
		TextContent: "Invoice #42 total $49.00",
		FileName:    "invoice.txt",
	})
	require.NoError(t, err)
	ocr.AssertCalled(t, "Complete", mock.Anything, mock.MatchedBy(func(req port.CompletionRequest) bool {
		return req.Image == nil && strings.Contains(req.Content, "Invoice #42")
	}))
}

func TestDocumentService_VisionExtract_Rejections(t *testing.T) {
	tests := []struct {
		name  string
		input service.VisionExtractInput
		want  error
	}{
		{
			name:  "no content",
			input: service.VisionExtractInput{FileName: "a.png"},
			want:  domain.ErrMissingInput,
		},
		{
			name:  "no file name",
			input: service.VisionExtractInput{ImageBase64: "aGVsbG8="},
			want:  domain.ErrMissingInput,
		},
		{
			name: "office document",
			input: service.VisionExtractInput{
				ImageBase64:   "UEsDBA==",
				ImageMIMEType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
				FileName:      "ledger.xlsx",
			},
			want: domain.ErrRequiresTextExtraction,
		},
		{
			name:  "bad base64",
			input: service.VisionExtractInput{ImageBase64: "%%%not base64", ImageMIMEType: "image/png", FileName: "a.png"},
			want:  domain.ErrInvalidInput,
		},
		{
			name: "corrupt image",
			input: service.VisionExtractInput{
				ImageBase64:   base64.StdEncoding.EncodeToString([]byte("definitely not a png")),
				ImageMIMEType: "image/png",
				FileName:      "a.png",
			},
			want: domain.ErrUnreadableFile,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ocr := provider("ocr-model", ocrAnswer)
			svc := newDocumentService(t, provider("extract-model", extractionAnswer), ocr)

			_, err := svc.VisionExtract(context.Background(), &tt.input)
			assert.ErrorIs(t, err, tt.want)
			ocr.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything)
		})
	}
}
