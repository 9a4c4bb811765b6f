package extraction

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"leakscan/internal/config"
	"leakscan/internal/domain"
	"leakscan/internal/inference"
	"leakscan/internal/logger"
	"leakscan/internal/port"
)

// Content is a document as handed to a model: text, an attached image or
// PDF, or both.
type Content struct {
	Text  string
	Image *port.ImagePayload
}

// Empty reports whether there is nothing to send.
func (c Content) Empty() bool {
	return c.Text == "" && c.Image == nil
}

// Normalizer converts documents into UniversalExtraction records.
type Normalizer struct {
	provider     port.InferenceProvider
	instructions string
	maxChars     int
}

// NewNormalizer creates a Normalizer. The synonym table is parsed once here.
func NewNormalizer(provider port.InferenceProvider, cfg config.ExtractionConfig) (*Normalizer, error) {
	synonyms, err := LoadSynonyms()
	if err != nil {
		return nil, err
	}
	return &Normalizer{
		provider:     provider,
		instructions: BuildNormalizerPrompt(synonyms),
		maxChars:     cfg.MaxTextChars,
	}, nil
}

// Model returns the model name of the underlying provider.
func (n *Normalizer) Model() string {
	return n.provider.Model()
}

// Normalize never fails: any provider or parse failure yields
// EmptyExtraction with the reason recorded for the user.
func (n *Normalizer) Normalize(ctx context.Context, content Content, fileName, declaredType string) domain.UniversalExtraction {
	ex, err := n.Extract(ctx, content, fileName, declaredType)
	if err != nil {
		logger.FromContext(ctx).Warn("extraction.Normalizer.Normalize: provider failed, using empty extraction",
			zap.String("file", fileName), zap.Error(err))
		return EmptyExtraction(fmt.Sprintf("the extraction model could not process this file (%v)", err))
	}
	return ex
}

// Extract is Normalize for callers that must surface provider failures.
// Malformed model output still degrades to EmptyExtraction; only errors from
// the provider call itself are returned.
func (n *Normalizer) Extract(ctx context.Context, content Content, fileName, declaredType string) (domain.UniversalExtraction, error) {
	if content.Empty() {
		return EmptyExtraction("the file contained no readable content"), nil
	}

	text, truncated := inference.TruncateContent(content.Text, n.maxChars)
	var truncNote string
	if truncated {
		truncNote = fmt.Sprintf("Only the first %d of %d characters were analyzed.", n.maxChars, len([]rune(content.Text)))
	}

	completion, err := n.provider.Complete(ctx, port.CompletionRequest{
		Instructions:   n.instructions,
		Content:        buildUserContent(fileName, declaredType, text, content.Image != nil),
		Image:          content.Image,
		ResponseFormat: port.ResponseFormatJSON,
	})
	if err != nil {
		return domain.UniversalExtraction{}, fmt.Errorf("extracting %s: %w", fileName, err)
	}

	raw, err := inference.ParseModelJSON[map[string]interface{}](completion.Text)
	if err != nil {
		var perr *inference.ParseError
		if errors.As(err, &perr) {
			logger.FromContext(ctx).Warn("extraction.Normalizer.Extract: unparseable model output",
				zap.String("file", fileName), zap.String("model", completion.Model), zap.Error(perr.Err))
		}
		ex := EmptyExtraction("the extraction model returned a response that was not valid JSON")
		return withTruncationNote(ex, truncNote), nil
	}

	ex := decodeExtraction(raw)
	logger.FromContext(ctx).Debug("extraction.Normalizer.Extract: normalized document",
		zap.String("file", fileName),
		zap.String("file_kind", string(ex.FileKind)),
		zap.Int("items", len(ex.Items)),
		zap.Int("expenses", len(ex.Expenses)),
		zap.Bool("truncated", truncated),
	)
	return withTruncationNote(ex, truncNote), nil
}

func withTruncationNote(ex domain.UniversalExtraction, note string) domain.UniversalExtraction {
	if note == "" {
		return ex
	}
	ex.Validation.Notes = append(ex.Validation.Notes, note)
	if ex.NotesForUser == "" {
		ex.NotesForUser = note
	} else {
		ex.NotesForUser += " " + note
	}
	return ex
}
