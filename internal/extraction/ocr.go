package extraction

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"leakscan/internal/coerce"
	"leakscan/internal/config"
	"leakscan/internal/domain"
	"leakscan/internal/inference"
	"leakscan/internal/logger"
	"leakscan/internal/port"
)

const (
	fallbackOCRConfidence = 0.5
	unknownDocumentType   = "unknown"
)

// OCR transcribes documents for the vision-extract endpoint.
type OCR struct {
	provider     port.InferenceProvider
	instructions string
	maxChars     int
}

// NewOCR creates an OCR extractor.
func NewOCR(provider port.InferenceProvider, cfg config.ExtractionConfig) *OCR {
	return &OCR{
		provider:     provider,
		instructions: BuildOCRPrompt(),
		maxChars:     cfg.MaxTextChars,
	}
}

// Model returns the model name of the underlying provider.
func (o *OCR) Model() string {
	return o.provider.Model()
}

// Extract transcribes content. Provider failures are returned; a non-JSON
// answer is kept as raw text with reduced confidence.
func (o *OCR) Extract(ctx context.Context, content Content, fileName string) (*domain.OCRResult, error) {
	if content.Empty() {
		return nil, fmt.Errorf("%w: no document content", domain.ErrMissingInput)
	}

	text, _ := inference.TruncateContent(content.Text, o.maxChars)
	completion, err := o.provider.Complete(ctx, port.CompletionRequest{
		Instructions:   o.instructions,
		Content:        buildUserContent(fileName, "", text, content.Image != nil),
		Image:          content.Image,
		ResponseFormat: port.ResponseFormatJSON,
	})
	if err != nil {
		return nil, fmt.Errorf("ocr %s: %w", fileName, err)
	}

	var result domain.OCRResult
	raw, err := inference.ParseModelJSON[map[string]interface{}](completion.Text)
	if err != nil {
		logger.FromContext(ctx).Info("extraction.OCR.Extract: model answered with plain text",
			zap.String("file", fileName), zap.String("model", completion.Model))
		result = domain.OCRResult{
			RawText:      completion.Text,
			DocumentType: unknownDocumentType,
			Confidence:   fallbackOCRConfidence,
		}
	} else {
		result = decodeOCR(raw)
	}

	backfill(&result)
	return &result, nil
}

func decodeOCR(raw map[string]interface{}) domain.OCRResult {
	data := coerce.Map(raw["extractedData"])
	result := domain.OCRResult{
		RawText: coerce.Text(coerce.First(raw, "rawText", "raw_text", "text")),
		Tables:  decodeTables(raw["tables"]),
		ExtractedData: domain.ExtractedData{
			Amounts:        coerce.Strings(data["amounts"]),
			Dates:          coerce.Strings(data["dates"]),
			AccountNumbers: coerce.Strings(data["accountNumbers"]),
			TransactionIDs: coerce.Strings(data["transactionIds"]),
		},
		DocumentType: coerce.Enum(raw["documentType"]),
		Confidence:   fallbackOCRConfidence,
	}
	if result.DocumentType == "" {
		result.DocumentType = unknownDocumentType
	}
	if c := coerce.Confidence(raw["confidence"]); c != nil {
		result.Confidence = *c
	}
	return result
}

func decodeTables(v interface{}) []domain.OCRTable {
	tables := []domain.OCRTable{}
	for _, entry := range coerce.Slice(v) {
		m := coerce.Map(entry)
		if m == nil {
			continue
		}
		t := domain.OCRTable{
			Title:   coerce.Text(m["title"]),
			Headers: coerce.Strings(m["headers"]),
			Rows:    [][]string{},
		}
		for _, row := range coerce.Slice(m["rows"]) {
			cells := []string{}
			for _, cell := range coerce.Slice(row) {
				cells = append(cells, coerce.Text(cell))
			}
			if len(cells) > 0 {
				t.Rows = append(t.Rows, cells)
			}
		}
		if len(t.Headers) == 0 && len(t.Rows) == 0 {
			continue
		}
		tables = append(tables, t)
	}
	return tables
}
