package aggregate

import (
	"strings"

	"github.com/shopspring/decimal"

	"leakscan/internal/coerce"
	"leakscan/internal/domain"
)

// DefaultConfidence stands in for items the model gave no confidence.
const DefaultConfidence = 0.7

type entry struct {
	key        string
	label      string
	amount     float64
	severity   domain.Severity
	confidence *float64
}

// CategorizeLeaks groups leaks by type in first-seen order.
func CategorizeLeaks(leaks []domain.LeakItem) []domain.Category {
	entries := make([]entry, len(leaks))
	for i := range leaks {
		l := &leaks[i]
		label, ok := domain.ValidLeakTypes[l.Type]
		if !ok {
			label = string(l.Type)
		}
		entries[i] = entry{
			key:        string(l.Type),
			label:      label,
			amount:     l.Amount,
			severity:   l.Severity,
			confidence: l.Confidence,
		}
	}
	return categorize(entries)
}

// CategorizeExpenses groups expenses by category. Severity follows payment
// status: overdue is high, pending is medium, anything else is low.
func CategorizeExpenses(expenses []domain.ExpenseItem) []domain.Category {
	entries := make([]entry, len(expenses))
	for i := range expenses {
		e := &expenses[i]
		key := coerce.Enum(e.Category)
		label := strings.TrimSpace(e.Category)
		if key == "" {
			key, label = "other", "Other"
		}
		entries[i] = entry{
			key:        key,
			label:      label,
			amount:     e.Amount,
			severity:   ExpenseSeverity(e.Status),
			confidence: e.Confidence,
		}
	}
	return categorize(entries)
}

// ExpenseSeverity maps a payment status onto a severity.
func ExpenseSeverity(status domain.ExpenseStatus) domain.Severity {
	switch status {
	case domain.ExpenseStatusOverdue:
		return domain.SeverityHigh
	case domain.ExpenseStatusPending:
		return domain.SeverityMedium
	default:
		return domain.SeverityLow
	}
}

// categorize sums amounts exactly, keeps the highest severity, and folds
// confidence as a running mean c = (c + x) / 2 seeded with the first item.
func categorize(entries []entry) []domain.Category {
	out := []domain.Category{}
	totals := []decimal.Decimal{}
	index := make(map[string]int)

	for _, e := range entries {
		c := DefaultConfidence
		if e.confidence != nil {
			c = *e.confidence
		}

		i, ok := index[e.key]
		if !ok {
			index[e.key] = len(out)
			out = append(out, domain.Category{
				Key:        e.key,
				Label:      e.label,
				Count:      1,
				Severity:   e.severity,
				Confidence: c,
			})
			totals = append(totals, decimal.NewFromFloat(e.amount))
			continue
		}

		cat := &out[i]
		totals[i] = totals[i].Add(decimal.NewFromFloat(e.amount))
		cat.Count++
		if e.severity.Rank() > cat.Severity.Rank() {
			cat.Severity = e.severity
		}
		cat.Confidence = (cat.Confidence + c) / 2
	}

	for i := range out {
		out[i].TotalAmount = totals[i].InexactFloat64()
	}
	return out
}

// Sum adds money amounts without float drift.
func Sum(amounts ...float64) float64 {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(decimal.NewFromFloat(a))
	}
	return total.InexactFloat64()
}
