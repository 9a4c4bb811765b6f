package extraction

import (
	"fmt"
	"sort"
	"strings"

	"leakscan/internal/domain"
)

// BuildNormalizerPrompt returns the fixed instruction prompt for the
// extraction normalizer.
func BuildNormalizerPrompt(synonyms []Synonym) string {
	return `You are a financial document normalizer for small businesses (restaurants, retail, services). Classify the provided document and convert ALL of its data into the canonical JSON schema below.

IMPORTANT INSTRUCTIONS:
- Classify the document as exactly one file_kind from this list: ` + joinFileKinds() + `.
- Set grain to one of: item_level, summary_only, transaction_level, unknown.
- Extract EVERY item row and EVERY expense line. Do not skip, summarize, or omit rows.
- Normalize dates to YYYY-MM-DD when possible.
- Numbers must be plain JSON numbers (no currency symbols, no thousands separators). Negative amounts in parentheses become negative numbers.
- If a value is not present in the document, use null. NEVER use 0 for a missing value and NEVER invent numbers.
- If you cannot confidently map columns to the schema, set needs_user_mapping to true and put your best guesses in mapping_suggestions (source column → canonical field).
- Each expense must have an expense_type from: ` + joinExpenseTypes() + `.
- Check the identity gross_sales - fees_total - promotions_total - refunds_total ≈ net_payout when those values exist. Report the result in validation.math_check_passed as true, false, or "unknown", and explain discrepancies in validation.notes. Do not correct the numbers.

Return ONLY valid JSON with no markdown formatting, no code fences, no explanation.

SYNONYM TABLE (labels on the left are equivalent and map to the canonical field):
` + renderSynonyms(synonyms) + `
SCHEMA:
{
  "file_kind": "unknown",
  "classification_confidence": 0.0,
  "grain": "unknown",
  "period": { "start": null, "end": null },
  "needs_user_mapping": false,
  "mapping_suggestions": { "source column": "canonical.field" },
  "sales_summary": {
    "gross_sales": null, "net_sales": null,
    "taxes_collected": null, "tips_collected": null,
    "discounts_total": null, "promotions_total": null,
    "refunds_total": null, "chargebacks_total": null,
    "fees_total": null, "net_payout": null,
    "order_count": null
  },
  "items": [
    {
      "name": "", "sku": null, "category": null,
      "quantity": null, "gross_sales": null, "discounts": null,
      "net_sales": null, "tax": null, "modifiers": null
    }
  ],
  "expenses": [
    {
      "date": null, "payee": null, "description": "",
      "amount": null, "category": null,
      "expense_type": "other", "confidence": 0.0
    }
  ],
  "field_confidence": {
    "sales_summary": { "gross_sales": 0.0 },
    "period": { "start": 0.0 }
  },
  "validation": { "math_check_passed": "unknown", "notes": [] },
  "notes_for_user": ""
}

classification_confidence and every confidence value are floats between 0.0 and 1.0.`
}

// BuildOCRPrompt returns the instruction prompt for the vision-extract endpoint.
func BuildOCRPrompt() string {
	return `You are an OCR and document-understanding assistant for financial documents. Read the provided document (image, PDF, or extracted text) and transcribe it.

IMPORTANT INSTRUCTIONS:
- rawText must contain ALL readable text in reading order.
- Reproduce every table you see in "tables" with its headers and every row. Do not summarize rows.
- In extractedData list every monetary amount, date, account number (masked or full) and transaction/reference id you find, as they appear in the document.
- documentType is a short label such as "bank_statement", "receipt", "invoice", "delivery_payout", "pos_report", "menu" or "unknown".
- confidence is a float between 0.0 and 1.0 describing how legible the document was.

Return ONLY valid JSON with no markdown formatting, no code fences, no explanation:
{
  "rawText": "",
  "tables": [ { "title": "", "headers": [], "rows": [[]] } ],
  "extractedData": {
    "amounts": [],
    "dates": [],
    "accountNumbers": [],
    "transactionIds": []
  },
  "documentType": "unknown",
  "confidence": 0.0
}`
}

func buildUserContent(fileName, declaredType, text string, hasImage bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "File name: %s\n", fileName)
	if declaredType != "" {
		fmt.Fprintf(&b, "Declared type: %s\n", declaredType)
	}
	if hasImage {
		b.WriteString("\nThe document is attached.")
		if text == "" {
			return b.String()
		}
	}
	b.WriteString("\nDocument content:\n")
	b.WriteString(text)
	return b.String()
}

func joinFileKinds() string {
	kinds := make([]string, 0, len(domain.ValidFileKinds))
	for k := range domain.ValidFileKinds {
		kinds = append(kinds, string(k))
	}
	sort.Strings(kinds)
	return strings.Join(kinds, ", ")
}

func joinExpenseTypes() string {
	types := make([]string, 0, len(domain.ValidExpenseTypes))
	for t := range domain.ValidExpenseTypes {
		types = append(types, string(t))
	}
	sort.Strings(types)
	return strings.Join(types, ", ")
}
