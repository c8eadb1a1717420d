package answer

import (
	"regexp"
	"strings"
)

// Citation tags are bracket-delimited source titles embedded in model output,
// e.g. "Fleming discovered penicillin in 1928. [Alexander Fleming]".
var citationPattern = regexp.MustCompile(`\[([^\]]+)\]`)

// ExtractCitations returns the source titles cited in text, deduplicated in
// first-occurrence order. An empty pair of brackets is not a citation and an
// unmatched opening bracket is ignored.
func ExtractCitations(text string) []string {
	matches := citationPattern.FindAllStringSubmatch(text, -1)
	var sources []string
	seen := make(map[string]bool)
	for _, match := range matches {
		title := match[1]
		if seen[title] {
			continue
		}
		seen[title] = true
		sources = append(sources, title)
	}
	return sources
}

// StripCitations removes all citation tags from text and trims the result.
// Idempotent: stripping already-clean text is a no-op.
func StripCitations(text string) string {
	return strings.TrimSpace(citationPattern.ReplaceAllString(text, ""))
}

// Extract strips citations and returns both the cleaned text and the cited
// sources.
func Extract(text string) (string, []string) {
	return StripCitations(text), ExtractCitations(text)
}
