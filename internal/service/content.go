package service

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"leakscan/internal/domain"
)

// buildAnalyzeContent combines the client-supplied pieces of an analyze-leaks
// request into the text both analysis stages read.
func buildAnalyzeContent(fileContent string, categories map[string][]string, ocrResults []domain.FileOCRResult) string {
	var b strings.Builder
	if s := strings.TrimSpace(fileContent); s != "" {
		b.WriteString(s)
		b.WriteString("\n")
	}

	if len(categories) > 0 {
		keys := make([]string, 0, len(categories))
		for k := range categories {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteString("\n=== Document categories ===\n")
		for _, k := range keys {
			fmt.Fprintf(&b, "%s: %s\n", k, strings.Join(categories[k], ", "))
		}
	}

	for _, r := range ocrResults {
		fmt.Fprintf(&b, "\n=== OCR: %s (%s) ===\n", r.FileName, r.OCRResult.DocumentType)
		if text := strings.TrimSpace(r.OCRResult.RawText); text != "" {
			b.WriteString(text)
			b.WriteString("\n")
		}
		for _, t := range r.OCRResult.Tables {
			if t.Title != "" {
				fmt.Fprintf(&b, "Table: %s\n", t.Title)
			}
			if len(t.Headers) > 0 {
				b.WriteString(strings.Join(t.Headers, ", "))
				b.WriteString("\n")
			}
			for _, row := range t.Rows {
				b.WriteString(strings.Join(row, ", "))
				b.WriteString("\n")
			}
		}
	}
	return strings.TrimSpace(b.String())
}

// buildScanContent concatenates each readable file's source text (when it
// has one) with its normalized extraction.
func buildScanContent(results []fileResult) string {
	var b strings.Builder
	for i := range results {
		r := &results[i]
		if r.extraction == nil {
			continue
		}
		fmt.Fprintf(&b, "=== File: %s ===\n", r.file.FileName)
		if r.file.Text != "" {
			b.WriteString(r.file.Text)
			b.WriteString("\n")
		}
		if data, err := json.Marshal(r.extraction); err == nil {
			b.WriteString("--- Normalized extraction ---\n")
			b.Write(data)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	return strings.TrimSpace(b.String())
}
