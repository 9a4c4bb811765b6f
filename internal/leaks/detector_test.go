package leaks_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"leakscan/internal/config"
	"leakscan/internal/domain"
	"leakscan/internal/inference"
	"leakscan/internal/leaks"
	"leakscan/internal/port"
	"leakscan/mocks"
)

var analysisCfg = config.AnalysisConfig{MaxContentChars: 100000, ReviewThreshold: 0.6}

func stubProvider(text string) *mocks.MockInferenceProvider {
	p := new(mocks.MockInferenceProvider)
	p.On("Complete", mock.Anything, mock.Anything).Return(&port.Completion{Text: text, Model: "stub-model"}, nil)
	p.On("Model").Return("stub-model")
	return p
}

func failingProvider(err error) *mocks.MockInferenceProvider {
	p := new(mocks.MockInferenceProvider)
	p.On("Complete", mock.Anything, mock.Anything).Return(nil, err)
	p.On("Model").Return("stub-model")
	return p
}

func TestDetectPatterns_Success(t *testing.T) {
	answer := `{
  "patterns": [
    {"type": "Recurring Charge", "description": "Netflix billed twice in March", "confidence": 0.9, "amounts": [15.99, "15.99"]},
    {"type": "price_increase", "description": "Hosting price rose 20%"},
    {}
  ],
  "anomalies": [{"description": "Refund without matching sale", "severity": "critical"}, {"severity": "low"}],
  "summary": "Two recurring patterns"
}`
	d := leaks.NewDetector(stubProvider(answer), analysisCfg)

	f := d.DetectPatterns(context.Background(), "ledger", []string{"bank.csv"})

	assert.True(t, f.Available)
	assert.Equal(t, "stub-model", f.Model)
	assert.Len(t, f.Patterns, 2)
	assert.Equal(t, "recurring_charge", f.Patterns[0].Type)
	assert.Equal(t, []float64{15.99, 15.99}, f.Patterns[0].Amounts)
	assert.Equal(t, 0.5, f.Patterns[1].Confidence)
	assert.Len(t, f.Anomalies, 1)
	assert.Equal(t, domain.SeverityHigh, f.Anomalies[0].Severity)
	assert.Equal(t, "Two recurring patterns", f.Summary)
}

func TestDetectPatterns_RateLimitedDegrades(t *testing.T) {
	d := leaks.NewDetector(failingProvider(inference.NewRateLimitError("gemini", errors.New("429"), 30)), analysisCfg)

	f := d.DetectPatterns(context.Background(), "ledger", nil)

	assert.False(t, f.Available)
	assert.Equal(t, leaks.UnavailableSummary, f.Summary)
	assert.NotNil(t, f.Patterns)
	assert.NotNil(t, f.Anomalies)
}

func TestDetectPatterns_MalformedJSONDegrades(t *testing.T) {
	d := leaks.NewDetector(stubProvider("I found some patterns but cannot format them."), analysisCfg)

	f := d.DetectPatterns(context.Background(), "ledger", nil)

	assert.Equal(t, leaks.UnavailableFindings(), f)
}

func TestDetectPatterns_SendsFileNamesAndTruncates(t *testing.T) {
	p := stubProvider(`{"patterns":[],"anomalies":[],"summary":""}`)
	d := leaks.NewDetector(p, config.AnalysisConfig{MaxContentChars: 5})

	d.DetectPatterns(context.Background(), "abcdefghij", []string{"a.csv", "b.pdf"})

	p.AssertCalled(t, "Complete", mock.Anything, mock.MatchedBy(func(req port.CompletionRequest) bool {
		return strings.Contains(req.Content, "a.csv") &&
			strings.Contains(req.Content, "b.pdf") &&
			strings.Contains(req.Content, "[TRUNCATED: showing first 5 of 10 characters]")
	}))
}
