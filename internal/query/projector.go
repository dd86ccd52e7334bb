package query

import (
	"strings"

	"github.com/quarry-labs/quarry-cli/internal/core/domain"
)

// SemanticQuery derives the text for the embedding leg: the semantic
// terms space-joined, minus any term that case-insensitively contains
// an excluded term.
func SemanticQuery(parsed domain.ParsedQuery) string {
	var kept []string
	for _, term := range parsed.SemanticTerms {
		if !containsAnyFold(term, parsed.ExcludeTerms) {
			kept = append(kept, term)
		}
	}
	return strings.Join(kept, " ")
}

// FTSQuery derives the text for the keyword leg: each phrase quoted,
// followed by the semantic terms not already contained in some
// phrase. Skipping contained terms avoids double-counting tokens in
// lexical ranking.
func FTSQuery(parsed domain.ParsedQuery) string {
	parts := make([]string, 0, len(parsed.Phrases)+len(parsed.SemanticTerms))
	for _, phrase := range parsed.Phrases {
		parts = append(parts, `"`+phrase+`"`)
	}
	for _, term := range parsed.SemanticTerms {
		if !insidePhrase(term, parsed.Phrases) {
			parts = append(parts, term)
		}
	}
	return strings.Join(parts, " ")
}

// MatchesFilters reports whether metadata satisfies every filter:
// each filter's field must exist and its value must case-insensitively
// contain the filter's value. An empty filter list matches anything; a
// non-empty list against missing metadata matches nothing.
func MatchesFilters(metadata map[string]string, filters []domain.Filter) bool {
	if len(filters) == 0 {
		return true
	}
	if len(metadata) == 0 {
		return false
	}
	for _, filter := range filters {
		value, ok := metadata[filter.Field]
		if !ok {
			return false
		}
		if !strings.Contains(strings.ToLower(value), strings.ToLower(filter.Value)) {
			return false
		}
	}
	return true
}

// ShouldExclude reports whether text case-insensitively contains any
// excluded term.
func ShouldExclude(text string, excludeTerms []string) bool {
	return containsAnyFold(text, excludeTerms)
}

// containsAnyFold reports whether text contains any of terms,
// case-insensitively.
func containsAnyFold(text string, terms []string) bool {
	lower := strings.ToLower(text)
	for _, term := range terms {
		if strings.Contains(lower, strings.ToLower(term)) {
			return true
		}
	}
	return false
}

// insidePhrase reports whether term is substring-contained in any
// phrase.
func insidePhrase(term string, phrases []string) bool {
	for _, phrase := range phrases {
		if strings.Contains(phrase, term) {
			return true
		}
	}
	return false
}
