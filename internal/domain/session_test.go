package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"leakscan/internal/domain"
)

func TestNewAnalysisSession_FreeDropsPrior(t *testing.T) {
	prior := &domain.LeakAnalysis{TotalLeaks: 2}

	free := domain.NewAnalysisSession(domain.ScanTypeFree, prior)
	assert.Nil(t, free.Prior)

	enhanced := domain.NewAnalysisSession(domain.ScanTypeEnhanced, prior)
	assert.Same(t, prior, enhanced.Prior)
	assert.NotEqual(t, free.ID, enhanced.ID)
}

func TestAnalysisSession_Reanalyze(t *testing.T) {
	s := domain.NewAnalysisSession(domain.ScanTypeFree, nil)
	s.Analysis = &domain.LeakAnalysis{TotalLeaks: 3}

	next := s.Reanalyze()

	assert.Equal(t, domain.ScanTypeEnhanced, next.ScanType)
	assert.Same(t, s.Analysis, next.Prior)
	assert.Nil(t, next.Analysis)
	assert.NotEqual(t, s.ID, next.ID)
}

func TestAnalysisSession_ReadableFileNames(t *testing.T) {
	s := &domain.AnalysisSession{Documents: []domain.DocumentReport{
		{FileName: "a.csv", Status: domain.AdaptStatusOK},
		{FileName: "b.jpg", Status: domain.AdaptStatusUnreadable},
		{FileName: "c.zip", Status: domain.AdaptStatusUnsupported},
		{FileName: "d.pdf", Status: domain.AdaptStatusOK},
	}}

	assert.Equal(t, []string{"a.csv", "d.pdf"}, s.ReadableFileNames())
}

func TestExpenseItem_Outstanding(t *testing.T) {
	tests := map[domain.ExpenseStatus]bool{
		domain.ExpenseStatusPaid:    false,
		domain.ExpenseStatusPending: true,
		domain.ExpenseStatusOverdue: true,
		domain.ExpenseStatusUnknown: true,
	}
	for status, want := range tests {
		e := domain.ExpenseItem{Status: status}
		assert.Equal(t, want, e.Outstanding(), status)
	}
}

func TestSeverity_Rank(t *testing.T) {
	assert.Greater(t, domain.SeverityHigh.Rank(), domain.SeverityMedium.Rank())
	assert.Greater(t, domain.SeverityMedium.Rank(), domain.SeverityLow.Rank())
	assert.Greater(t, domain.SeverityLow.Rank(), domain.Severity("bogus").Rank())
}
