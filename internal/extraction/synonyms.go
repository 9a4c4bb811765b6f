package extraction

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed synonyms.yaml
var synonymsYAML []byte

// Synonym maps a canonical field to the labels documents use for it.
type Synonym struct {
	Field    string   `yaml:"field"`
	Synonyms []string `yaml:"synonyms"`
}

// LoadSynonyms parses the embedded synonym table.
func LoadSynonyms() ([]Synonym, error) {
	var table []Synonym
	if err := yaml.Unmarshal(synonymsYAML, &table); err != nil {
		return nil, fmt.Errorf("parsing synonym table: %w", err)
	}
	return table, nil
}

func renderSynonyms(table []Synonym) string {
	var b strings.Builder
	for _, s := range table {
		fmt.Fprintf(&b, "- %s: %s\n", s.Field, strings.Join(quoteAll(s.Synonyms), " ≡ "))
	}
	return b.String()
}

func quoteAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = `"` + s + `"`
	}
	return out
}
