package adapter

import (
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

type kind int

const (
	kindUnknown kind = iota
	kindCSV
	kindTSV
	kindXLSX
	kindXLS
	kindText
	kindHTML
	kindPDF
	kindImage
)

const (
	mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	mimeXLS  = "application/vnd.ms-excel"
)

var extKinds = map[string]kind{
	".csv":  kindCSV,
	".tsv":  kindTSV,
	".tab":  kindTSV,
	".xlsx": kindXLSX,
	".xlsm": kindXLSX,
	".xls":  kindXLS,
	".txt":  kindText,
	".text": kindText,
	".md":   kindText,
	".html": kindHTML,
	".htm":  kindHTML,
	".pdf":  kindPDF,
	".jpg":  kindImage,
	".jpeg": kindImage,
	".png":  kindImage,
	".gif":  kindImage,
	".webp": kindImage,
}

var mimeKinds = map[string]kind{
	"text/csv":                  kindCSV,
	"application/csv":           kindCSV,
	"text/tab-separated-values": kindTSV,
	mimeXLSX:                    kindXLSX,
	mimeXLS:                     kindXLS,
	"text/plain":                kindText,
	"text/markdown":             kindText,
	"text/html":                 kindHTML,
	"application/pdf":           kindPDF,
	"image/jpeg":                kindImage,
	"image/jpg":                 kindImage,
	"image/png":                 kindImage,
	"image/gif":                 kindImage,
	"image/webp":                kindImage,
}

var kindMIME = map[kind]string{
	kindCSV:  "text/csv",
	kindTSV:  "text/tab-separated-values",
	kindXLSX: mimeXLSX,
	kindXLS:  mimeXLS,
	kindText: "text/plain",
	kindHTML: "text/html",
	kindPDF:  "application/pdf",
}

var officePrefixes = []string{
	"application/vnd.openxmlformats-officedocument.",
	"application/msword",
	"application/vnd.ms-excel",
	"application/vnd.ms-powerpoint",
	"application/vnd.oasis.opendocument.",
}

// IsOfficeMIME reports whether mimeType is a word-processor, spreadsheet or
// presentation format that vision models cannot read directly.
func IsOfficeMIME(mimeType string) bool {
	m := baseMIME(mimeType)
	for _, prefix := range officePrefixes {
		if strings.HasPrefix(m, prefix) {
			return true
		}
	}
	return false
}

// detectKind resolves a file's kind from its extension, then the declared
// MIME type, then content sniffing. Images always take the sniffed MIME type.
func detectKind(fileName, declared string, data []byte) (kind, string) {
	sniffed := mimetype.Detect(data)

	if k, ok := extKinds[strings.ToLower(filepath.Ext(fileName))]; ok {
		return k, mimeFor(k, sniffed)
	}
	if k, ok := mimeKinds[baseMIME(declared)]; ok {
		return k, mimeFor(k, sniffed)
	}
	for m := sniffed; m != nil; m = m.Parent() {
		if k, ok := mimeKinds[baseMIME(m.String())]; ok {
			return k, mimeFor(k, sniffed)
		}
	}
	return kindUnknown, baseMIME(sniffed.String())
}

func mimeFor(k kind, sniffed *mimetype.MIME) string {
	if k == kindImage {
		m := baseMIME(sniffed.String())
		if m == "image/jpg" {
			return "image/jpeg"
		}
		return m
	}
	return kindMIME[k]
}

func baseMIME(m string) string {
	if i := strings.IndexByte(m, ';'); i >= 0 {
		m = m[:i]
	}
	return strings.ToLower(strings.TrimSpace(m))
}
