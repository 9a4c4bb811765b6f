package extraction

import (
	"leakscan/internal/coerce"
	"leakscan/internal/domain"
)

const defaultClassificationConfidence = 0.5

// decodeExtraction coerces loosely typed model output into a complete
// UniversalExtraction. Unknown enum values fall back to their "unknown" or
// "other" member; missing numbers stay nil.
func decodeExtraction(raw map[string]interface{}) domain.UniversalExtraction {
	if _, ok := raw["file_kind"]; !ok {
		if inner := coerce.Map(raw["extraction"]); inner != nil {
			raw = inner
		}
	}

	ex := domain.UniversalExtraction{
		FileKind:                 domain.FileKind(coerce.Enum(raw["file_kind"])),
		ClassificationConfidence: defaultClassificationConfidence,
		Grain:                    domain.Grain(coerce.Enum(raw["grain"])),
		NeedsUserMapping:         coerce.Bool(raw["needs_user_mapping"]),
		MappingSuggestions:       decodeStringMap(raw["mapping_suggestions"]),
		SalesSummary:             decodeSalesSummary(coerce.Map(raw["sales_summary"])),
		Items:                    decodeItems(raw["items"]),
		Expenses:                 decodeExpenses(raw["expenses"]),
		FieldConfidence:          decodeFieldConfidence(raw["field_confidence"]),
		NotesForUser:             coerce.Text(raw["notes_for_user"]),
	}

	if c := coerce.Confidence(raw["classification_confidence"]); c != nil {
		ex.ClassificationConfidence = *c
	}
	if !domain.ValidFileKinds[ex.FileKind] || ex.FileKind == domain.FileKindUnknown {
		ex.FileKind = domain.FileKindUnknown
		ex.NeedsUserMapping = true
	}
	if !domain.ValidGrains[ex.Grain] {
		ex.Grain = domain.GrainUnknown
	}

	period := coerce.Map(raw["period"])
	ex.Period = domain.Period{
		Start: coerce.OptionalText(period["start"]),
		End:   coerce.OptionalText(period["end"]),
	}

	validation := coerce.Map(raw["validation"])
	ex.Validation = domain.Validation{
		MathCheckPassed: domain.ParseMathCheck(validation["math_check_passed"]),
		Notes:           coerce.Strings(validation["notes"]),
	}

	return ex
}

func decodeSalesSummary(m map[string]interface{}) domain.SalesSummary {
	return domain.SalesSummary{
		GrossSales:       coerce.Float(m["gross_sales"]),
		NetSales:         coerce.Float(m["net_sales"]),
		TaxesCollected:   coerce.Float(m["taxes_collected"]),
		TipsCollected:    coerce.Float(m["tips_collected"]),
		DiscountsTotal:   coerce.Float(m["discounts_total"]),
		PromotionsTotal:  coerce.Float(m["promotions_total"]),
		RefundsTotal:     coerce.Float(m["refunds_total"]),
		ChargebacksTotal: coerce.Float(m["chargebacks_total"]),
		FeesTotal:        coerce.Float(m["fees_total"]),
		NetPayout:        coerce.Float(m["net_payout"]),
		OrderCount:       coerce.Float(m["order_count"]),
	}
}

func decodeItems(v interface{}) []domain.ExtractedItem {
	items := []domain.ExtractedItem{}
	for _, entry := range coerce.Slice(v) {
		m := coerce.Map(entry)
		if m == nil {
			continue
		}
		items = append(items, domain.ExtractedItem{
			Name:       coerce.Text(coerce.First(m, "name", "item")),
			SKU:        coerce.OptionalText(m["sku"]),
			Category:   coerce.OptionalText(m["category"]),
			Quantity:   coerce.Float(coerce.First(m, "quantity", "qty")),
			GrossSales: coerce.Float(m["gross_sales"]),
			Discounts:  coerce.Float(m["discounts"]),
			NetSales:   coerce.Float(m["net_sales"]),
			Tax:        coerce.Float(m["tax"]),
			Modifiers:  coerce.Float(m["modifiers"]),
		})
	}
	return items
}

func decodeExpenses(v interface{}) []domain.ExtractedExpense {
	expenses := []domain.ExtractedExpense{}
	for _, entry := range coerce.Slice(v) {
		m := coerce.Map(entry)
		if m == nil {
			continue
		}
		expenseType := domain.ExpenseType(coerce.Enum(m["expense_type"]))
		if !domain.ValidExpenseTypes[expenseType] {
			expenseType = domain.ExpenseTypeOther
		}
		expenses = append(expenses, domain.ExtractedExpense{
			Date:        coerce.OptionalText(m["date"]),
			Payee:       coerce.OptionalText(m["payee"]),
			Description: coerce.Text(m["description"]),
			Amount:      coerce.Float(m["amount"]),
			Category:    coerce.OptionalText(m["category"]),
			ExpenseType: expenseType,
			Confidence:  coerce.Confidence(m["confidence"]),
		})
	}
	return expenses
}

func decodeStringMap(v interface{}) map[string]string {
	out := map[string]string{}
	for k, val := range coerce.Map(v) {
		if s := coerce.Text(val); s != "" {
			out[k] = s
		}
	}
	return out
}

func decodeFieldConfidence(v interface{}) map[string]map[string]float64 {
	out := map[string]map[string]float64{}
	for section, fields := range coerce.Map(v) {
		scores := map[string]float64{}
		for field, score := range coerce.Map(fields) {
			if c := coerce.Confidence(score); c != nil {
				scores[field] = *c
			}
		}
		if len(scores) > 0 {
			out[section] = scores
		}
	}
	return out
}
