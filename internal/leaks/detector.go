package leaks

import (
	"context"

	"go.uber.org/zap"

	"leakscan/internal/coerce"
	"leakscan/internal/config"
	"leakscan/internal/domain"
	"leakscan/internal/inference"
	"leakscan/internal/logger"
	"leakscan/internal/port"
)

// UnavailableSummary is the Stage A summary when the stage degraded.
const UnavailableSummary = "pattern analysis unavailable"

const defaultPatternConfidence = 0.5

// Detector is the Stage A pattern scanner. It never fails: a provider or
// parse failure degrades to empty findings.
type Detector struct {
	provider     port.InferenceProvider
	instructions string
	maxChars     int
}

// NewDetector creates a Stage A detector.
func NewDetector(provider port.InferenceProvider, cfg config.AnalysisConfig) *Detector {
	return &Detector{
		provider:     provider,
		instructions: BuildDetectorPrompt(),
		maxChars:     cfg.MaxContentChars,
	}
}

// Model returns the model name of the underlying provider.
func (d *Detector) Model() string {
	return d.provider.Model()
}

// UnavailableFindings is the degraded Stage A result.
func UnavailableFindings() domain.PatternFindings {
	return domain.PatternFindings{
		Patterns:  []domain.Pattern{},
		Anomalies: []domain.Anomaly{},
		Summary:   UnavailableSummary,
		Available: false,
	}
}

// DetectPatterns runs the shallow first pass over the concatenated documents.
func (d *Detector) DetectPatterns(ctx context.Context, text string, fileNames []string) domain.PatternFindings {
	log := logger.FromContext(ctx)
	content, _ := inference.TruncateContent(text, d.maxChars)

	completion, err := d.provider.Complete(ctx, port.CompletionRequest{
		Instructions:   d.instructions,
		Content:        buildAnalysisContent(fileNames, content),
		ResponseFormat: port.ResponseFormatJSON,
	})
	if err != nil {
		log.Warn("leaks.Detector.DetectPatterns: provider failed, continuing without patterns",
			zap.Bool("rate_limited", inference.IsRateLimited(err)),
			zap.Bool("quota_exceeded", inference.IsQuotaExceeded(err)),
			zap.Error(err))
		return UnavailableFindings()
	}

	raw, err := inference.ParseModelJSON[map[string]interface{}](completion.Text)
	if err != nil {
		log.Warn("leaks.Detector.DetectPatterns: unparseable model output, continuing without patterns",
			zap.String("model", completion.Model), zap.Error(err))
		return UnavailableFindings()
	}

	findings := decodeFindings(raw)
	findings.Model = completion.Model
	log.Debug("leaks.Detector.DetectPatterns: scan complete",
		zap.Int("patterns", len(findings.Patterns)),
		zap.Int("anomalies", len(findings.Anomalies)))
	return findings
}

func decodeFindings(raw map[string]interface{}) domain.PatternFindings {
	f := domain.PatternFindings{
		Patterns:  []domain.Pattern{},
		Anomalies: []domain.Anomaly{},
		Summary:   coerce.Text(raw["summary"]),
		Available: true,
	}
	for _, entry := range coerce.Slice(raw["patterns"]) {
		m := coerce.Map(entry)
		if m == nil {
			continue
		}
		p := domain.Pattern{
			Type:        coerce.Enum(m["type"]),
			Description: coerce.Text(m["description"]),
			Confidence:  defaultPatternConfidence,
			Amounts:     coerce.Floats(m["amounts"]),
		}
		if c := coerce.Confidence(m["confidence"]); c != nil {
			p.Confidence = *c
		}
		if p.Description == "" && p.Type == "" {
			continue
		}
		f.Patterns = append(f.Patterns, p)
	}
	for _, entry := range coerce.Slice(raw["anomalies"]) {
		m := coerce.Map(entry)
		if m == nil {
			continue
		}
		desc := coerce.Text(m["description"])
		if desc == "" {
			continue
		}
		f.Anomalies = append(f.Anomalies, domain.Anomaly{
			Description: desc,
			Severity:    normalizeSeverity(m["severity"]),
		})
	}
	return f
}
