package adapter

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

var errNoRows = errors.New("no rows found")

// renderDelimited re-emits a delimited file as comma-separated rows.
func renderDelimited(data []byte, comma rune) (string, error) {
	r := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, utf8BOM)))
	r.Comma = comma
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var rows [][]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("parsing delimited file: %w", err)
		}
		rows = append(rows, rec)
	}

	var buf strings.Builder
	n, err := writeRows(&buf, rows)
	if err != nil {
		return "", err
	}
	if n == 0 {
		return "", errNoRows
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}

// renderWorkbook flattens every sheet into a "=== Sheet: name ===" header
// followed by comma-separated rows. Legacy BIFF workbooks fail to open and
// surface as an error.
func renderWorkbook(data []byte) (string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("opening workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	var buf strings.Builder
	total := 0
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return "", fmt.Errorf("reading sheet %q: %w", sheet, err)
		}
		if buf.Len() > 0 {
			buf.WriteString("\n")
		}
		fmt.Fprintf(&buf, "=== Sheet: %s ===\n", sheet)
		n, err := writeRows(&buf, rows)
		if err != nil {
			return "", err
		}
		total += n
	}
	if total == 0 {
		return "", errNoRows
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}

// writeRows writes non-empty rows through a csv.Writer so embedded commas
// stay quoted. Trailing empty cells are dropped.
func writeRows(w io.Writer, rows [][]string) (int, error) {
	cw := csv.NewWriter(w)
	n := 0
	for _, row := range rows {
		row = trimRow(row)
		if len(row) == 0 {
			continue
		}
		if err := cw.Write(row); err != nil {
			return n, fmt.Errorf("writing row: %w", err)
		}
		n++
	}
	cw.Flush()
	return n, cw.Error()
}

func trimRow(row []string) []string {
	end := len(row)
	for end > 0 && strings.TrimSpace(row[end-1]) == "" {
		end--
	}
	out := make([]string, end)
	for i := 0; i < end; i++ {
		out[i] = strings.TrimSpace(row[i])
	}
	return out
}
