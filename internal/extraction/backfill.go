package extraction

import (
	"regexp"
	"strings"

	"leakscan/internal/domain"
)

const maxBackfillMatches = 50

var (
	amountPatterns = []*regexp.Regexp{
		regexp.MustCompile(`[-(]?[$€£₹]\s?\d{1,3}(?:,\d{3})*(?:\.\d{1,2})?\)?`),
		regexp.MustCompile(`\b\d{1,3}(?:,\d{3})*\.\d{2}\b`),
	}
	datePatterns = []*regexp.Regexp{
		regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`),
		regexp.MustCompile(`\b\d{1,2}[/-]\d{1,2}[/-]\d{2,4}\b`),
		regexp.MustCompile(`(?i)\b(?:jan|feb|mar|apr|may|jun|jul|aug|sep|sept|oct|nov|dec)[a-z]*\.?\s+\d{1,2},?\s+\d{4}\b`),
	}
	accountPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:a/?c|acct|account)\s*(?:no\.?|number|#)?[:\s#]*((?:[X*x•]+[\s-]?)*\d{4,18})`),
		regexp.MustCompile(`(?:[X*•]{2,}[\s-]?){1,3}\d{4}\b`),
	}
	transactionPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:txn|transaction|trans|ref(?:erence)?|confirmation|order)\s*(?:id|no\.?|number|#)?[:\s#]+([A-Z0-9][A-Z0-9-]{5,})`),
	}
)

var matchKeyReplacer = strings.NewReplacer("$", "", "€", "", "£", "", "₹", "", "(", "", ")", "", " ", "")

// backfill fills any empty extractedData list by scanning rawText.
func backfill(r *domain.OCRResult) {
	if r.Tables == nil {
		r.Tables = []domain.OCRTable{}
	}
	d := &r.ExtractedData
	if len(d.Amounts) == 0 {
		d.Amounts = scan(r.RawText, amountPatterns)
	}
	if len(d.Dates) == 0 {
		d.Dates = scan(r.RawText, datePatterns)
	}
	if len(d.AccountNumbers) == 0 {
		d.AccountNumbers = scan(r.RawText, accountPatterns)
	}
	if len(d.TransactionIDs) == 0 {
		d.TransactionIDs = filter(scan(r.RawText, transactionPatterns), hasDigit)
	}
}

func filter(in []string, keep func(string) bool) []string {
	out := in[:0]
	for _, s := range in {
		if keep(s) {
			out = append(out, s)
		}
	}
	return out
}

func hasDigit(s string) bool {
	return strings.ContainsAny(s, "0123456789")
}

// scan collects unique matches in order of appearance. Patterns with a
// capture group contribute the group, others the whole match.
func scan(text string, patterns []*regexp.Regexp) []string {
	out := []string{}
	if text == "" {
		return out
	}
	seen := make(map[string]bool)
	for _, re := range patterns {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			v := m[0]
			if len(m) > 1 && m[1] != "" {
				v = m[1]
			}
			v = strings.TrimSpace(v)
			key := matchKeyReplacer.Replace(v)
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, v)
			if len(out) >= maxBackfillMatches {
				return out
			}
		}
	}
	return out
}
