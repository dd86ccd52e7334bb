package query

import (
	"strings"

	"github.com/quarry-labs/quarry-cli/internal/core/domain"
)

// Parse folds a query string into a ParsedQuery. Any input, however
// malformed, yields a best-effort result: search degrades gracefully
// instead of blocking the user, so there is no error path.
//
// Phrases land in both Phrases and SemanticTerms, since a phrase
// feeds the embedding query as well as exact matching. The OR flag is
// a single boolean across the whole query; with no grouping
// evaluation, a query mixing AND and OR still resolves to one mode
// for the entire term set.
func Parse(input string) domain.ParsedQuery {
	parsed := domain.ParsedQuery{
		BooleanOp:     domain.BooleanAnd,
		OriginalQuery: input,
	}
	if strings.TrimSpace(input) == "" {
		return parsed
	}

	seenOr := false
	for _, tok := range Tokenize(input) {
		switch tok.Kind {
		case TokenPhrase:
			parsed.Phrases = append(parsed.Phrases, tok.Text)
			parsed.SemanticTerms = append(parsed.SemanticTerms, tok.Text)
		case TokenFilter:
			parsed.Filters = append(parsed.Filters, domain.Filter{Field: tok.Field, Value: tok.Value})
		case TokenExclude:
			parsed.ExcludeTerms = append(parsed.ExcludeTerms, tok.Text)
		case TokenTerm:
			parsed.SemanticTerms = append(parsed.SemanticTerms, tok.Text)
		case TokenOr:
			seenOr = true
		case TokenAnd, TokenLParen, TokenRParen:
			// AND is already the default; parens are reserved for
			// grouping that is never evaluated.
		}
	}

	if seenOr {
		parsed.BooleanOp = domain.BooleanOr
	}
	return parsed
}
