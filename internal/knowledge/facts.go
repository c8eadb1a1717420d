package knowledge

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Excerpt is a titled fragment of reference text. The title doubles as the
// citation tag embedded in answers.
type Excerpt struct {
	Title string `yaml:"title"`
	Text  string `yaml:"text"`
}

// FactTable is the curated, versioned lookup table for identity questions and
// pinned topics. It is loaded once at startup and never mutated.
type FactTable struct {
	Version  int `yaml:"version"`
	Identity struct {
		Phrases []string `yaml:"phrases"`
		Answer  string   `yaml:"answer"`
		Excerpt Excerpt  `yaml:"excerpt"`
	} `yaml:"identity"`
	Topics []Topic `yaml:"topics"`
}

// Topic pins a set of excerpts to substring keywords.
type Topic struct {
	Keywords []string  `yaml:"keywords"`
	Excerpts []Excerpt `yaml:"excerpts"`
}

//go:embed facts.yaml
var embeddedFacts []byte

// LoadFactTable parses the embedded curated fact table.
func LoadFactTable() (*FactTable, error) {
	return ParseFactTable(embeddedFacts)
}

// ParseFactTable parses a fact table from YAML. Exposed so tests can supply
// their own tables.
func ParseFactTable(data []byte) (*FactTable, error) {
	var table FactTable
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("parse fact table: %w", err)
	}
	if table.Version == 0 {
		return nil, fmt.Errorf("fact table has no version")
	}
	return &table, nil
}

// Normalize lowercases and trims a query for matching.
func Normalize(query string) string {
	return strings.ToLower(strings.TrimSpace(query))
}

// IsIdentity reports whether the normalized query contains one of the
// identity phrases.
func (t *FactTable) IsIdentity(query string) bool {
	normalized := Normalize(query)
	for _, phrase := range t.Identity.Phrases {
		if strings.Contains(normalized, phrase) {
			return true
		}
	}
	return false
}

// IdentityAnswer returns the canned self-description.
func (t *FactTable) IdentityAnswer() string {
	return t.Identity.Answer
}

// IdentityExcerpt returns the excerpt served for identity questions.
func (t *FactTable) IdentityExcerpt() Excerpt {
	return t.Identity.Excerpt
}

// Match returns the excerpts of the first topic whose keyword appears in the
// normalized query, or nil when nothing is pinned for it.
func (t *FactTable) Match(query string) []Excerpt {
	normalized := Normalize(query)
	for _, topic := range t.Topics {
		for _, keyword := range topic.Keywords {
			if strings.Contains(normalized, keyword) {
				return topic.Excerpts
			}
		}
	}
	return nil
}
