package query

// TokenKind discriminates lexed query tokens.
type TokenKind int

const (
	// TokenTerm is a bare search word.
	TokenTerm TokenKind = iota
	// TokenPhrase is a quoted exact phrase.
	TokenPhrase
	// TokenFilter is a field:value constraint.
	TokenFilter
	// TokenExclude is a -term exclusion.
	TokenExclude
	// TokenAnd is the AND operator.
	TokenAnd
	// TokenOr is the OR operator.
	TokenOr
	// TokenLParen is an opening parenthesis, reserved for grouping.
	TokenLParen
	// TokenRParen is a closing parenthesis, reserved for grouping.
	TokenRParen
)

// Token is one lexed element of a query string. Tokens are transient:
// they exist only between Tokenize and Parse within a single call.
type Token struct {
	// Kind discriminates the variant.
	Kind TokenKind

	// Text carries the payload for Term, Phrase and Exclude tokens.
	Text string

	// Field and Value carry the payload for Filter tokens.
	Field string
	Value string
}
