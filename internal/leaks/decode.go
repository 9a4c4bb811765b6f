package leaks

import (
	"math"

	"github.com/google/uuid"

	"leakscan/internal/coerce"
	"leakscan/internal/domain"
)

func normalizeSeverity(v interface{}) domain.Severity {
	switch s := domain.Severity(coerce.Enum(v)); s {
	case domain.SeverityHigh, domain.SeverityMedium, domain.SeverityLow:
		return s
	case "critical", "severe":
		return domain.SeverityHigh
	case "minor":
		return domain.SeverityLow
	default:
		return domain.SeverityMedium
	}
}

func normalizeLeakType(v interface{}) domain.LeakType {
	t := domain.LeakType(coerce.Enum(v))
	if _, ok := domain.ValidLeakTypes[t]; ok {
		return t
	}
	return domain.LeakTypeOther
}

// normalizeModelSource accepts the stage names and the provider nicknames
// models tend to use. A bare crossValidated flag implies "both".
func normalizeModelSource(v interface{}, crossValidated bool) domain.ModelSource {
	switch coerce.Enum(v) {
	case "both", "cross_validated", "crossvalidated", "stage_a_and_stage_b":
		return domain.ModelSourceBoth
	case "stage_a_only", "stage_a", "gemini", "first_pass":
		return domain.ModelSourceStageA
	case "stage_b_only", "stage_b", "gpt", "reasoner":
		return domain.ModelSourceStageB
	}
	if crossValidated {
		return domain.ModelSourceBoth
	}
	return domain.ModelSourceStageB
}

func normalizeExpenseStatus(v interface{}) domain.ExpenseStatus {
	switch s := coerce.Enum(v); s {
	case "paid", "settled", "cleared":
		return domain.ExpenseStatusPaid
	case "pending", "due", "upcoming", "unpaid", "open", "scheduled":
		return domain.ExpenseStatusPending
	case "overdue", "past_due", "late", "delinquent":
		return domain.ExpenseStatusOverdue
	default:
		return domain.ExpenseStatusUnknown
	}
}

func decodeLeaks(v interface{}) []domain.LeakItem {
	leaks := []domain.LeakItem{}
	seen := make(map[string]bool)
	for _, entry := range coerce.Slice(v) {
		m := coerce.Map(entry)
		if m == nil {
			continue
		}
		source := normalizeModelSource(m["modelSource"], coerce.Bool(m["crossValidated"]))
		l := domain.LeakItem{
			ID:             coerce.Text(m["id"]),
			Type:           normalizeLeakType(m["type"]),
			Description:    coerce.Text(m["description"]),
			Amount:         math.Abs(coerce.FloatOr(coerce.First(m, "amount", "recoverableAmount"), 0)),
			Date:           coerce.OptionalText(m["date"]),
			Severity:       normalizeSeverity(m["severity"]),
			Recommendation: coerce.Text(m["recommendation"]),
			Confidence:     coerce.Confidence(m["confidence"]),
			ModelSource:    source,
			CrossValidated: source == domain.ModelSourceBoth,
		}
		if l.ID == "" || seen[l.ID] {
			l.ID = uuid.New().String()
		}
		seen[l.ID] = true
		leaks = append(leaks, l)
	}
	return leaks
}

func decodeExpenses(v interface{}) []domain.ExpenseItem {
	expenses := []domain.ExpenseItem{}
	seen := make(map[string]bool)
	for _, entry := range coerce.Slice(v) {
		m := coerce.Map(entry)
		if m == nil {
			continue
		}
		e := domain.ExpenseItem{
			ID:          coerce.Text(m["id"]),
			Category:    coerce.Text(m["category"]),
			Description: coerce.Text(m["description"]),
			Vendor:      coerce.OptionalText(m["vendor"]),
			Amount:      math.Abs(coerce.FloatOr(m["amount"], 0)),
			DueDate:     coerce.OptionalText(coerce.First(m, "dueDate", "due_date")),
			Status:      normalizeExpenseStatus(m["status"]),
			Frequency:   coerce.OptionalText(m["frequency"]),
			Confidence:  coerce.Confidence(m["confidence"]),
		}
		if e.ID == "" || seen[e.ID] {
			e.ID = uuid.New().String()
		}
		seen[e.ID] = true
		expenses = append(expenses, e)
	}
	return expenses
}
