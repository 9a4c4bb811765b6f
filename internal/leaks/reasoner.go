package leaks

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"leakscan/internal/aggregate"
	"leakscan/internal/coerce"
	"leakscan/internal/config"
	"leakscan/internal/domain"
	"leakscan/internal/inference"
	"leakscan/internal/logger"
	"leakscan/internal/port"
)

// Reasoner is the Stage B cross-validator. Its failures are terminal: a
// partial or empty analysis is never returned in place of an error.
type Reasoner struct {
	provider        port.InferenceProvider
	maxChars        int
	reviewThreshold float64
	now             func() time.Time
}

// NewReasoner creates a Stage B reasoner.
func NewReasoner(provider port.InferenceProvider, cfg config.AnalysisConfig) *Reasoner {
	threshold := cfg.ReviewThreshold
	if threshold <= 0 {
		threshold = 0.6
	}
	return &Reasoner{
		provider:        provider,
		maxChars:        cfg.MaxContentChars,
		reviewThreshold: threshold,
		now:             func() time.Time { return time.Now().UTC() },
	}
}

// Model returns the model name of the underlying provider.
func (r *Reasoner) Model() string {
	return r.provider.Model()
}

// CrossValidate adjudicates the Stage A findings against the documents and
// produces the final analysis. When prior is set its leaks and expenses are
// reconciled with the model's revision by id. Prior items with a missing or
// duplicated id are given a fresh one before the prompt is built.
func (r *Reasoner) CrossValidate(ctx context.Context, findings domain.PatternFindings, text string, fileNames []string, prior *domain.LeakAnalysis) (*domain.LeakAnalysis, error) {
	log := logger.FromContext(ctx)
	content, _ := inference.TruncateContent(text, r.maxChars)
	if prior != nil {
		prior = withStableIDs(prior)
	}

	completion, err := r.provider.Complete(ctx, port.CompletionRequest{
		Instructions:   BuildReasonerPrompt(findings, prior),
		Content:        buildAnalysisContent(fileNames, content),
		ResponseFormat: port.ResponseFormatJSON,
	})
	if err != nil {
		return nil, fmt.Errorf("cross-validating findings: %w", err)
	}

	raw, err := inference.ParseModelJSON[map[string]interface{}](completion.Text)
	if err != nil {
		log.Error("leaks.Reasoner.CrossValidate: unparseable model output",
			zap.String("model", completion.Model), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedAnalysis, err)
	}
	if inner := coerce.Map(raw["analysis"]); inner != nil {
		if _, ok := raw["leaks"]; !ok {
			raw = inner
		}
	}
	if _, ok := raw["leaks"].([]interface{}); !ok {
		return nil, fmt.Errorf("%w: response has no leaks array", domain.ErrMalformedAnalysis)
	}

	leaks := decodeLeaks(raw["leaks"])
	expenses := decodeExpenses(raw["expenses"])
	if prior != nil {
		leaks = mergeLeaks(prior.Leaks, leaks, coerce.Strings(raw["retractedLeakIds"]))
		expenses = mergeExpenses(prior.Expenses, expenses, coerce.Strings(raw["retractedExpenseIds"]))
	}

	analysis := &domain.LeakAnalysis{
		Leaks:              leaks,
		Expenses:           expenses,
		Summary:            coerce.Text(raw["summary"]),
		AnalyzedAt:         r.now(),
		ModelContributions: contributions(findings, leaks),
		Categories:         aggregate.CategorizeLeaks(leaks),
		ExpenseCategories:  aggregate.CategorizeExpenses(expenses),
	}
	r.computeTotals(analysis, coerce.Confidence(coerce.Map(raw["confidence"])["overallScore"]))
	if analysis.Summary == "" {
		analysis.Summary = fallbackSummary(analysis)
	}

	logDrift(log, raw, analysis)
	log.Info("leaks.Reasoner.CrossValidate: analysis complete",
		zap.String("model", completion.Model),
		zap.Int("leaks", analysis.TotalLeaks),
		zap.Float64("recoverable", analysis.TotalRecoverable),
		zap.Int("cross_validated", analysis.Confidence.CrossValidated),
		zap.Bool("enhanced", prior != nil))
	return analysis, nil
}

// computeTotals derives every summary number from the itemized lists.
// modelScore is only used when there are no leaks to average.
func (r *Reasoner) computeTotals(a *domain.LeakAnalysis, modelScore *float64) {
	amounts := make([]float64, len(a.Leaks))
	confSum := 0.0
	for i := range a.Leaks {
		l := &a.Leaks[i]
		amounts[i] = l.Amount
		if l.CrossValidated {
			a.Confidence.CrossValidated++
		}
		c := aggregate.DefaultConfidence
		if l.Confidence != nil {
			c = *l.Confidence
		}
		if l.Confidence == nil || *l.Confidence < r.reviewThreshold {
			a.Confidence.NeedsReview++
		}
		confSum += c
	}

	var due []float64
	for i := range a.Expenses {
		if a.Expenses[i].Outstanding() {
			due = append(due, a.Expenses[i].Amount)
		}
	}

	a.TotalLeaks = len(a.Leaks)
	a.TotalRecoverable = aggregate.Sum(amounts...)
	a.TotalAmountDue = aggregate.Sum(due...)

	switch {
	case len(a.Leaks) > 0:
		a.Confidence.OverallScore = roundScore(confSum / float64(len(a.Leaks)))
	case modelScore != nil:
		a.Confidence.OverallScore = *modelScore
	default:
		a.Confidence.OverallScore = aggregate.DefaultConfidence
	}
}

func contributions(findings domain.PatternFindings, leaks []domain.LeakItem) domain.ModelContributions {
	mc := domain.ModelContributions{Gemini: []string{}, GPT: []string{}}
	if findings.Available {
		for _, p := range findings.Patterns {
			if p.Description != "" {
				mc.Gemini = append(mc.Gemini, p.Description)
			}
		}
		for _, a := range findings.Anomalies {
			mc.Gemini = append(mc.Gemini, a.Description)
		}
	}
	for i := range leaks {
		if leaks[i].Description != "" {
			mc.GPT = append(mc.GPT, leaks[i].Description)
		}
	}
	return mc
}

func fallbackSummary(a *domain.LeakAnalysis) string {
	if a.TotalLeaks == 0 {
		return "No revenue leaks were identified in the analyzed documents."
	}
	return fmt.Sprintf("Found %d potential revenue leaks totaling $%.2f in recoverable funds.", a.TotalLeaks, a.TotalRecoverable)
}

func logDrift(log *zap.Logger, raw map[string]interface{}, a *domain.LeakAnalysis) {
	if n := coerce.Float(raw["totalLeaks"]); n != nil && int(*n) != a.TotalLeaks {
		log.Debug("leaks.Reasoner.CrossValidate: model totalLeaks differs from itemized list",
			zap.Float64("model", *n), zap.Int("computed", a.TotalLeaks))
	}
	if v := coerce.Float(raw["totalRecoverable"]); v != nil && math.Abs(*v-a.TotalRecoverable) > 0.005 {
		log.Debug("leaks.Reasoner.CrossValidate: model totalRecoverable differs from itemized list",
			zap.Float64("model", *v), zap.Float64("computed", a.TotalRecoverable))
	}
}

func roundScore(f float64) float64 {
	return math.Round(f*1000) / 1000
}
