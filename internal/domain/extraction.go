package domain

import (
	"encoding/json"
	"fmt"
)

// Period bounds a document's reporting window.
type Period struct {
	Start *string `json:"start"`
	End   *string `json:"end"`
}

// SalesSummary holds document-level revenue figures. Every field is nullable:
// a nil value means the document did not provide it, never zero.
type SalesSummary struct {
	GrossSales       *float64 `json:"gross_sales"`
	NetSales         *float64 `json:"net_sales"`
	TaxesCollected   *float64 `json:"taxes_collected"`
	TipsCollected    *float64 `json:"tips_collected"`
	DiscountsTotal   *float64 `json:"discounts_total"`
	PromotionsTotal  *float64 `json:"promotions_total"`
	RefundsTotal     *float64 `json:"refunds_total"`
	ChargebacksTotal *float64 `json:"chargebacks_total"`
	FeesTotal        *float64 `json:"fees_total"`
	NetPayout        *float64 `json:"net_payout"`
	OrderCount       *float64 `json:"order_count"`
}

// ExtractedItem is one row of item-level sales detail.
type ExtractedItem struct {
	Name       string   `json:"name"`
	SKU        *string  `json:"sku"`
	Category   *string  `json:"category"`
	Quantity   *float64 `json:"quantity"`
	GrossSales *float64 `json:"gross_sales"`
	Discounts  *float64 `json:"discounts"`
	NetSales   *float64 `json:"net_sales"`
	Tax        *float64 `json:"tax"`
	Modifiers  *float64 `json:"modifiers"`
}

// ExtractedExpense is one expense line found in a document.
type ExtractedExpense struct {
	Date        *string     `json:"date"`
	Payee       *string     `json:"payee"`
	Description string      `json:"description"`
	Amount      *float64    `json:"amount"`
	Category    *string     `json:"category"`
	ExpenseType ExpenseType `json:"expense_type"`
	Confidence  *float64    `json:"confidence"`
}

// MathCheck is a tri-state result: passed, failed, or unknown.
type MathCheck string

const (
	MathCheckPassed  MathCheck = "passed"
	MathCheckFailed  MathCheck = "failed"
	MathCheckUnknown MathCheck = "unknown"
)

// MarshalJSON renders passed/failed as booleans and anything else as "unknown".
func (m MathCheck) MarshalJSON() ([]byte, error) {
	switch m {
	case MathCheckPassed:
		return []byte("true"), nil
	case MathCheckFailed:
		return []byte("false"), nil
	default:
		return []byte(`"unknown"`), nil
	}
}

// UnmarshalJSON accepts true, false, "true", "false" and "unknown".
func (m *MathCheck) UnmarshalJSON(data []byte) error {
	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("math check: %w", err)
	}
	*m = ParseMathCheck(v)
	return nil
}

// ParseMathCheck coerces a loosely typed JSON value into a MathCheck.
func ParseMathCheck(v interface{}) MathCheck {
	switch t := v.(type) {
	case bool:
		if t {
			return MathCheckPassed
		}
		return MathCheckFailed
	case string:
		switch t {
		case "true", "passed", "pass":
			return MathCheckPassed
		case "false", "failed", "fail":
			return MathCheckFailed
		}
	}
	return MathCheckUnknown
}

// Validation carries the model's own consistency check.
type Validation struct {
	MathCheckPassed MathCheck `json:"math_check_passed"`
	Notes           []string  `json:"notes"`
}

// UniversalExtraction is the canonical per-document record produced by the
// extraction normalizer. It is never mutated after creation.
type UniversalExtraction struct {
	FileKind                 FileKind                      `json:"file_kind"`
	ClassificationConfidence float64                       `json:"classification_confidence"`
	Grain                    Grain                         `json:"grain"`
	Period                   Period                        `json:"period"`
	NeedsUserMapping         bool                          `json:"needs_user_mapping"`
	MappingSuggestions       map[string]string             `json:"mapping_suggestions"`
	SalesSummary             SalesSummary                  `json:"sales_summary"`
	Items                    []ExtractedItem               `json:"items"`
	Expenses                 []ExtractedExpense            `json:"expenses"`
	FieldConfidence          map[string]map[string]float64 `json:"field_confidence"`
	Validation               Validation                    `json:"validation"`
	NotesForUser             string                        `json:"notes_for_user"`
}
