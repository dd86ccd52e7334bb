package query

import (
	"strings"
	"unicode"
)

// Tokenize lexes a raw query string in one left-to-right scan with no
// backtracking and no external state.
//
// Quoted phrases run to the next quote, or to the end of the string
// when unterminated; there are no escape sequences, so an interior
// quote ends the phrase early. Empty phrases and empty exclusion runs
// are dropped rather than emitted.
func Tokenize(input string) []Token {
	var tokens []Token
	runes := []rune(input)

	i := 0
	for i < len(runes) {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			i++

		case r == '"':
			end := i + 1
			for end < len(runes) && runes[end] != '"' {
				end++
			}
			if text := string(runes[i+1 : end]); text != "" {
				tokens = append(tokens, Token{Kind: TokenPhrase, Text: text})
			}
			if end < len(runes) {
				end++ // consume the closing quote
			}
			i = end

		case r == '(':
			tokens = append(tokens, Token{Kind: TokenLParen})
			i++

		case r == ')':
			tokens = append(tokens, Token{Kind: TokenRParen})
			i++

		case r == '-':
			end := i + 1
			for end < len(runes) && !isBoundary(runes[end]) {
				end++
			}
			if text := string(runes[i+1 : end]); text != "" {
				tokens = append(tokens, Token{Kind: TokenExclude, Text: text})
			}
			i = end

		default:
			end := i
			for end < len(runes) && !isBoundary(runes[end]) {
				end++
			}
			tokens = append(tokens, classifyWord(string(runes[i:end])))
			i = end
		}
	}
	return tokens
}

// isBoundary reports whether r terminates a bare word or exclusion run.
func isBoundary(r rune) bool {
	return unicode.IsSpace(r) || r == '(' || r == ')' || r == '"'
}

// classifyWord applies the recognition precedence exactly: boolean
// operator first, then field filter, then plain term.
func classifyWord(word string) Token {
	switch strings.ToUpper(word) {
	case "AND":
		return Token{Kind: TokenAnd}
	case "OR":
		return Token{Kind: TokenOr}
	}
	if field, value, ok := splitFilter(word); ok {
		return Token{Kind: TokenFilter, Field: field, Value: value}
	}
	return Token{Kind: TokenTerm, Text: word}
}

// splitFilter splits on the first colon. Both sides must be non-empty
// for the word to count as a filter.
func splitFilter(word string) (field, value string, ok bool) {
	i := strings.Index(word, ":")
	if i <= 0 || i == len(word)-1 {
		return "", "", false
	}
	return word[:i], word[i+1:], true
}
