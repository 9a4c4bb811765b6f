package leaks

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"leakscan/internal/domain"
)

// BuildDetectorPrompt returns the Stage A instruction prompt.
func BuildDetectorPrompt() string {
	return `You are a fast financial pattern scanner for small businesses. Scan the provided documents for revenue-leak signals. This is a first pass: flag anything suspicious, a second reviewer will adjudicate.

Look for:
- Recurring identical amounts on different dates (possible duplicate charges or forgotten subscriptions)
- Fee ratios that look unusually high (processing, platform, delivery commission)
- Refunds, chargebacks, failed or reversed payments
- Expected payouts or deposits that are missing
- Price or billing changes between periods

Return ONLY valid JSON with no markdown formatting, no code fences, no explanation:
{
  "patterns": [
    { "type": "recurring_charge", "description": "", "confidence": 0.0, "amounts": [0.0] }
  ],
  "anomalies": [
    { "description": "", "severity": "high|medium|low" }
  ],
  "summary": ""
}

confidence is a float between 0.0 and 1.0. Use empty arrays when nothing is found.`
}

// BuildReasonerPrompt returns the Stage B instruction prompt with the Stage A
// findings and, for enhanced scans, the prior analysis embedded.
func BuildReasonerPrompt(findings domain.PatternFindings, prior *domain.LeakAnalysis) string {
	var b strings.Builder
	b.WriteString(`You are a senior forensic accountant reviewing a small business's financial documents for revenue leaks. A fast first-pass scanner already flagged candidate patterns (below). Your job:
- Validate, extend and deduplicate the candidates against the documents.
- Assign each confirmed leak a type, a recoverable amount estimate, a severity, a recommendation and a confidence.
- Set modelSource to "both" when the leak matches a first-pass candidate, "stage_b_only" when only you found it, and "stage_a_only" when you keep a first-pass candidate you could not confirm independently.
- List outstanding expense obligations (bills, subscriptions, invoices) with their status.

Leak types (closed list, use "other" for anything else): ` + joinLeakTypes() + `.
Severity: high, medium or low. Expense status: paid, pending, overdue or unknown.
Amounts are plain positive JSON numbers. Use null for unknown dates and confidences. Never invent amounts.

FIRST-PASS FINDINGS:
`)
	b.WriteString(findingsJSON(findings))
	b.WriteString("\n")

	if prior != nil {
		b.WriteString(`
PRIOR ANALYSIS (from an earlier scan of this business):
`)
		b.WriteString(priorJSON(prior))
		b.WriteString(`

The new documents are additional context. Revise the prior list, do not just append to it:
- Return the complete revised list of leaks and expenses.
- Keep the "id" of every prior leak or expense you keep or update.
- List the ids of prior leaks you now consider wrong in "retractedLeakIds", and of prior expenses in "retractedExpenseIds".
`)
	}

	b.WriteString(`
Return ONLY valid JSON with no markdown formatting, no code fences, no explanation:
{
  "leaks": [
    {
      "id": "", "type": "other", "description": "", "amount": 0.0, "date": null,
      "severity": "medium", "recommendation": "", "confidence": 0.0, "modelSource": "both"
    }
  ],
  "expenses": [
    {
      "id": "", "category": "", "description": "", "vendor": null, "amount": 0.0,
      "dueDate": null, "status": "unknown", "frequency": null, "confidence": 0.0
    }
  ],
  "retractedLeakIds": [],
  "retractedExpenseIds": [],
  "summary": "",
  "confidence": { "overallScore": 0.0 }
}`)
	return b.String()
}

func buildAnalysisContent(fileNames []string, text string) string {
	var b strings.Builder
	if len(fileNames) > 0 {
		fmt.Fprintf(&b, "Files analyzed: %s\n\n", strings.Join(fileNames, ", "))
	}
	b.WriteString("Document content:\n")
	b.WriteString(text)
	return b.String()
}

func findingsJSON(f domain.PatternFindings) string {
	if !f.Available {
		return `{"patterns": [], "anomalies": [], "summary": "pattern analysis unavailable"}`
	}
	data, err := json.MarshalIndent(struct {
		Patterns  []domain.Pattern `json:"patterns"`
		Anomalies []domain.Anomaly `json:"anomalies"`
		Summary   string           `json:"summary"`
	}{f.Patterns, f.Anomalies, f.Summary}, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(data)
}

func priorJSON(a *domain.LeakAnalysis) string {
	data, err := json.MarshalIndent(struct {
		Leaks    []domain.LeakItem    `json:"leaks"`
		Expenses []domain.ExpenseItem `json:"expenses"`
		Summary  string               `json:"summary"`
	}{a.Leaks, a.Expenses, a.Summary}, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(data)
}

func joinLeakTypes() string {
	types := make([]string, 0, len(domain.ValidLeakTypes))
	for t := range domain.ValidLeakTypes {
		types = append(types, string(t))
	}
	sort.Strings(types)
	return strings.Join(types, ", ")
}
