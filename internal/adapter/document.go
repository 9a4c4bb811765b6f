package adapter

import (
	"bytes"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/microcosm-cc/bluemonday"
)

var (
	utf8BOM = []byte{0xEF, 0xBB, 0xBF}

	errInvalidUTF8 = errors.New("text is not valid UTF-8")
	errEmptyText   = errors.New("no text content")
)

var (
	htmlPolicy  = bluemonday.UGCPolicy()
	mdConverter = converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			table.NewTablePlugin(),
		),
	)
)

func readPlainText(data []byte) (string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) {
		return "", errInvalidUTF8
	}
	text := strings.TrimSpace(strings.ReplaceAll(string(data), "\r\n", "\n"))
	if text == "" {
		return "", errEmptyText
	}
	return text, nil
}

// renderHTML sanitizes an HTML document and converts it to markdown so
// tables in emailed receipts and statements survive as rows.
func renderHTML(data []byte) (string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) {
		return "", errInvalidUTF8
	}
	clean := htmlPolicy.SanitizeBytes(data)
	md, err := mdConverter.ConvertString(string(clean))
	if err != nil {
		return "", err
	}
	md = strings.TrimSpace(md)
	if md == "" {
		return "", errEmptyText
	}
	return md, nil
}
