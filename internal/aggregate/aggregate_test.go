package aggregate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leakscan/internal/aggregate"
	"leakscan/internal/domain"
)

func conf(f float64) *float64 {
	return &f
}

func TestCategorizeLeaks(t *testing.T) {
	leaks := []domain.LeakItem{
		{ID: "1", Type: domain.LeakTypeDuplicateCharge, Amount: 0.1, Severity: domain.SeverityLow, Confidence: conf(0.9)},
		{ID: "2", Type: domain.LeakTypeBillingError, Amount: 40, Severity: domain.SeverityMedium},
		{ID: "3", Type: domain.LeakTypeDuplicateCharge, Amount: 0.2, Severity: domain.SeverityHigh, Confidence: conf(0.5)},
		{ID: "4", Type: domain.LeakTypeDuplicateCharge, Amount: 0.3, Severity: domain.SeverityMedium, Confidence: conf(0.3)},
	}

	cats := aggregate.CategorizeLeaks(leaks)
	require.Len(t, cats, 2)

	dup := cats[0]
	assert.Equal(t, string(domain.LeakTypeDuplicateCharge), dup.Key)
	assert.NotEmpty(t, dup.Label)
	assert.Equal(t, 3, dup.Count)
	assert.Equal(t, 0.6, dup.TotalAmount)
	assert.Equal(t, domain.SeverityHigh, dup.Severity)
	// ((0.9 + 0.5) / 2 + 0.3) / 2
	assert.InDelta(t, 0.5, dup.Confidence, 1e-9)

	billing := cats[1]
	assert.Equal(t, 1, billing.Count)
	assert.Equal(t, aggregate.DefaultConfidence, billing.Confidence)

	count := 0
	for _, c := range cats {
		count += c.Count
	}
	assert.Equal(t, len(leaks), count)
}

func TestCategorizeLeaks_SeverityRollUp(t *testing.T) {
	tests := []struct {
		name       string
		severities []domain.Severity
		want       domain.Severity
	}{
		{"low only", []domain.Severity{domain.SeverityLow}, domain.SeverityLow},
		{"low and medium", []domain.Severity{domain.SeverityLow, domain.SeverityMedium}, domain.SeverityMedium},
		{"medium and low", []domain.Severity{domain.SeverityMedium, domain.SeverityLow}, domain.SeverityMedium},
		{"medium and high", []domain.Severity{domain.SeverityMedium, domain.SeverityHigh}, domain.SeverityHigh},
		{"low and high", []domain.Severity{domain.SeverityLow, domain.SeverityHigh}, domain.SeverityHigh},
		{"high then low", []domain.Severity{domain.SeverityHigh, domain.SeverityLow, domain.SeverityLow}, domain.SeverityHigh},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			leaks := make([]domain.LeakItem, len(tt.severities))
			for i, sev := range tt.severities {
				leaks[i] = domain.LeakItem{Type: domain.LeakTypeBillingError, Amount: 1, Severity: sev}
			}

			cats := aggregate.CategorizeLeaks(leaks)
			require.Len(t, cats, 1)
			assert.Equal(t, tt.want, cats[0].Severity)
		})
	}
}

func TestCategorizeLeaks_Empty(t *testing.T) {
	cats := aggregate.CategorizeLeaks(nil)
	assert.NotNil(t, cats)
	assert.Empty(t, cats)
}

func TestCategorizeExpenses(t *testing.T) {
	expenses := []domain.ExpenseItem{
		{ID: "1", Category: "Rent", Amount: 2500, Status: domain.ExpenseStatusPending},
		{ID: "2", Category: "rent", Amount: 100, Status: domain.ExpenseStatusOverdue},
		{ID: "3", Category: "", Amount: 12.5, Status: domain.ExpenseStatusPaid},
	}

	cats := aggregate.CategorizeExpenses(expenses)
	require.Len(t, cats, 2)

	assert.Equal(t, "rent", cats[0].Key)
	assert.Equal(t, "Rent", cats[0].Label)
	assert.Equal(t, 2, cats[0].Count)
	assert.Equal(t, 2600.0, cats[0].TotalAmount)
	assert.Equal(t, domain.SeverityHigh, cats[0].Severity)

	assert.Equal(t, "other", cats[1].Key)
	assert.Equal(t, "Other", cats[1].Label)
	assert.Equal(t, domain.SeverityLow, cats[1].Severity)
}

func TestExpenseSeverity(t *testing.T) {
	assert.Equal(t, domain.SeverityHigh, aggregate.ExpenseSeverity(domain.ExpenseStatusOverdue))
	assert.Equal(t, domain.SeverityMedium, aggregate.ExpenseSeverity(domain.ExpenseStatusPending))
	assert.Equal(t, domain.SeverityLow, aggregate.ExpenseSeverity(domain.ExpenseStatusPaid))
	assert.Equal(t, domain.SeverityLow, aggregate.ExpenseSeverity(domain.ExpenseStatusUnknown))
}

func TestSum(t *testing.T) {
	assert.Equal(t, 0.3, aggregate.Sum(0.1, 0.2))
	assert.Equal(t, 0.0, aggregate.Sum())
	assert.Equal(t, 99.99, aggregate.Sum(15.99, 35, 49))
}
