package domain

import "time"

// LeakItem is one detected instance of money lost or at risk.
type LeakItem struct {
	ID             string      `json:"id"`
	Type           LeakType    `json:"type"`
	Description    string      `json:"description"`
	Amount         float64     `json:"amount"`
	Date           *string     `json:"date,omitempty"`
	Severity       Severity    `json:"severity"`
	Recommendation string      `json:"recommendation"`
	Confidence     *float64    `json:"confidence"`
	CrossValidated bool        `json:"crossValidated"`
	ModelSource    ModelSource `json:"modelSource"`
}

// ExpenseItem is an expense obligation surfaced by the reasoner.
type ExpenseItem struct {
	ID          string        `json:"id"`
	Category    string        `json:"category"`
	Description string        `json:"description"`
	Vendor      *string       `json:"vendor,omitempty"`
	Amount      float64       `json:"amount"`
	DueDate     *string       `json:"dueDate,omitempty"`
	Status      ExpenseStatus `json:"status"`
	Frequency   *string       `json:"frequency,omitempty"`
	Confidence  *float64      `json:"confidence"`
}

// Outstanding reports whether the expense still has to be paid.
func (e *ExpenseItem) Outstanding() bool {
	return e.Status != ExpenseStatusPaid
}

// AnalysisConfidence summarizes how trustworthy a LeakAnalysis is.
type AnalysisConfidence struct {
	OverallScore   float64 `json:"overallScore"`
	CrossValidated int     `json:"crossValidated"`
	NeedsReview    int     `json:"needsReview"`
}

// ModelContributions lists the findings each stage contributed.
type ModelContributions struct {
	Gemini []string `json:"gemini"`
	GPT    []string `json:"gpt"`
}

// Category groups same-typed leaks or expenses for display.
type Category struct {
	Key         string   `json:"key"`
	Label       string   `json:"label"`
	TotalAmount float64  `json:"totalAmount"`
	Count       int      `json:"count"`
	Severity    Severity `json:"severity"`
	Confidence  float64  `json:"confidence"`
}

// LeakAnalysis is the result of one analysis run. It is replaced wholesale on
// re-analysis and never patched in place.
type LeakAnalysis struct {
	TotalLeaks         int                `json:"totalLeaks"`
	TotalRecoverable   float64            `json:"totalRecoverable"`
	TotalAmountDue     float64            `json:"totalAmountDue"`
	Leaks              []LeakItem         `json:"leaks"`
	Expenses           []ExpenseItem      `json:"expenses"`
	Summary            string             `json:"summary"`
	AnalyzedAt         time.Time          `json:"analyzedAt"`
	ScanType           ScanType           `json:"scanType,omitempty"`
	Confidence         AnalysisConfidence `json:"confidence"`
	ModelContributions ModelContributions `json:"modelContributions"`
	Categories         []Category         `json:"categories"`
	ExpenseCategories  []Category         `json:"expenseCategories"`
}

// Pattern is a Stage A candidate anomaly.
type Pattern struct {
	Type        string    `json:"type"`
	Description string    `json:"description"`
	Confidence  float64   `json:"confidence"`
	Amounts     []float64 `json:"amounts,omitempty"`
}

// Anomaly is a Stage A observation without a pattern type.
type Anomaly struct {
	Description string   `json:"description"`
	Severity    Severity `json:"severity"`
}

// PatternFindings is the Stage A output. Available is false when the stage
// degraded because its provider failed.
type PatternFindings struct {
	Patterns  []Pattern `json:"patterns"`
	Anomalies []Anomaly `json:"anomalies"`
	Summary   string    `json:"summary"`
	Available bool      `json:"available"`
	Model     string    `json:"model,omitempty"`
}
