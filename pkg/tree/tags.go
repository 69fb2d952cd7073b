package tree

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// NormalizeTags trims and NFC-normalises tags, drops empty ones and removes
// duplicates case-insensitively. The first spelling of a tag wins.
func NormalizeTags(tags []string) []string {
	fold := cases.Fold()
	seen := make(map[string]bool)
	result := []string{}

	for _, tag := range tags {
		tag = norm.NFC.String(strings.TrimSpace(tag))
		if tag == "" {
			continue
		}
		key := fold.String(tag)
		if seen[key] {
			continue
		}
		seen[key] = true
		result = append(result, tag)
	}

	return result
}

// CountWords returns the number of maximal non-whitespace runs in text.
func CountWords(text string) int {
	return len(strings.Fields(text))
}
