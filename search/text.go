package search

import "strings"

// containsAllTerms reports whether every term occurs in text, ignoring case.
// Terms are expected to be lower-cased already.
func containsAllTerms(text string, terms []string) bool {
	if len(terms) == 0 {
		return false
	}

	lowered := strings.ToLower(text)
	for _, term := range terms {
		if !strings.Contains(lowered, term) {
			return false
		}
	}

	return true
}
