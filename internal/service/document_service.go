package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"leakscan/internal/adapter"
	"leakscan/internal/domain"
	"leakscan/internal/extraction"
	"leakscan/internal/logger"
	"leakscan/internal/port"
	"leakscan/internal/tracing"
)

// ExtractInput is the DTO for normalizing already-extracted document text.
type ExtractInput struct {
	TextContent string
	FileName    string
	FileType    string
}

// ExtractResult is the normalized record for one document.
type ExtractResult struct {
	Extraction  domain.UniversalExtraction
	FileName    string
	Model       string
	ProcessedAt time.Time
}

// VisionExtractInput is the DTO for the OCR endpoint. Either ImageBase64 or
// TextContent must be set.
type VisionExtractInput struct {
	ImageBase64   string
	ImageMIMEType string
	TextContent   string
	FileName      string
}

// VisionExtractResult is the OCR transcription of one document.
type VisionExtractResult struct {
	OCRResult   *domain.OCRResult
	FileName    string
	Model       string
	ProcessedAt time.Time
}

// DocumentService defines the single-document extraction contract.
type DocumentService interface {
	Extract(ctx context.Context, input *ExtractInput) (*ExtractResult, error)
	VisionExtract(ctx context.Context, input *VisionExtractInput) (*VisionExtractResult, error)
}

type documentService struct {
	normalizer *extraction.Normalizer
	ocr        *extraction.OCR
	adapter    *adapter.Adapter
}

// NewDocumentService creates a new DocumentService implementation.
func NewDocumentService(normalizer *extraction.Normalizer, ocr *extraction.OCR, fileAdapter *adapter.Adapter) DocumentService {
	return &documentService{
		normalizer: normalizer,
		ocr:        ocr,
		adapter:    fileAdapter,
	}
}

func (s *documentService) Extract(ctx context.Context, input *ExtractInput) (*ExtractResult, error) {
	if strings.TrimSpace(input.TextContent) == "" || strings.TrimSpace(input.FileName) == "" {
		return nil, fmt.Errorf("%w: textContent and fileName are required", domain.ErrMissingInput)
	}

	ctx, span := tracing.StartStage(ctx, "extraction.normalize")
	ex, err := s.normalizer.Extract(ctx, extraction.Content{Text: input.TextContent}, input.FileName, input.FileType)
	tracing.EndStage(span, err)
	if err != nil {
		return nil, err
	}

	return &ExtractResult{
		Extraction:  ex,
		FileName:    input.FileName,
		Model:       s.normalizer.Model(),
		ProcessedAt: time.Now().UTC(),
	}, nil
}

func (s *documentService) VisionExtract(ctx context.Context, input *VisionExtractInput) (*VisionExtractResult, error) {
	if input.ImageBase64 == "" && strings.TrimSpace(input.TextContent) == "" {
		return nil, fmt.Errorf("%w: imageBase64 or textContent is required", domain.ErrMissingInput)
	}
	if strings.TrimSpace(input.FileName) == "" {
		return nil, fmt.Errorf("%w: fileName is required", domain.ErrMissingInput)
	}
	if input.TextContent == "" && adapter.IsOfficeMIME(input.ImageMIMEType) {
		return nil, domain.ErrRequiresTextExtraction
	}

	content := extraction.Content{Text: input.TextContent}
	if input.ImageBase64 != "" {
		payload, text, err := s.prepareUpload(ctx, input)
		if err != nil {
			return nil, err
		}
		content.Image = payload
		if content.Text == "" {
			content.Text = text
		}
	}

	ctx, span := tracing.StartStage(ctx, "extraction.ocr")
	result, err := s.ocr.Extract(ctx, content, input.FileName)
	tracing.EndStage(span, err)
	if err != nil {
		return nil, err
	}

	return &VisionExtractResult{
		OCRResult:   result,
		FileName:    input.FileName,
		Model:       s.ocr.Model(),
		ProcessedAt: time.Now().UTC(),
	}, nil
}

// prepareUpload decodes the base64 upload and runs it through the format
// adapter, so corrupt images are rejected and GIFs or oversized images are
// re-encoded. Files the adapter reads as text come back as text.
func (s *documentService) prepareUpload(ctx context.Context, input *VisionExtractInput) (*port.ImagePayload, string, error) {
	encoded := input.ImageBase64
	if i := strings.Index(encoded, ";base64,"); i >= 0 && strings.HasPrefix(encoded, "data:") {
		encoded = encoded[i+len(";base64,"):]
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, "", fmt.Errorf("%w: imageBase64 is not valid base64", domain.ErrInvalidInput)
	}

	adapted := s.adapter.Adapt(ctx, adapter.FileInput{
		FileName: input.FileName,
		MIMEType: input.ImageMIMEType,
		Data:     data,
	})
	switch {
	case !adapted.OK():
		logger.FromContext(ctx).Info("service.VisionExtract: upload rejected by adapter",
			zap.String("file", input.FileName), zap.String("reason", adapted.Reason))
		if adapted.Status == domain.AdaptStatusUnsupported {
			return nil, "", fmt.Errorf("%w: %s", domain.ErrUnsupportedFileType, adapted.MIMEType)
		}
		return nil, "", fmt.Errorf("%w: %s", domain.ErrUnreadableFile, adapted.Reason)
	case adapted.Path == adapter.PathText:
		return nil, adapted.Text, nil
	default:
		return &port.ImagePayload{MIMEType: adapted.MIMEType, Base64: adapted.Base64}, "", nil
	}
}
