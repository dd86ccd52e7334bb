package domain

// BooleanOp is the boolean mode applied across an entire query.
// There is no operator precedence or grouping: a single OR anywhere
// in the input switches the whole query to OR mode.
type BooleanOp string

const (
	// BooleanAnd requires all terms to match.
	BooleanAnd BooleanOp = "AND"
	// BooleanOr requires any term to match.
	BooleanOr BooleanOp = "OR"
)

// Filter is a field:value constraint from the query DSL.
// It matches when the named metadata field contains the value,
// case-insensitively.
type Filter struct {
	// Field is the metadata key to match against.
	Field string

	// Value is the substring the field must contain.
	Value string
}

// ParsedQuery is the structured form of a user search string.
// It is built fresh for every search call, treated as immutable once
// built, and never persisted.
//
// All slices preserve input order and permit duplicates.
type ParsedQuery struct {
	// SemanticTerms feed the embedding query. Phrases appear here too.
	SemanticTerms []string

	// Phrases are quoted segments for exact full-text matching.
	Phrases []string

	// Filters are field:value constraints on document metadata.
	Filters []Filter

	// ExcludeTerms remove results whose text contains them.
	ExcludeTerms []string

	// BooleanOp is AND unless the query contained an OR.
	BooleanOp BooleanOp

	// OriginalQuery is the unmodified input string.
	OriginalQuery string
}

// IsEmpty reports whether the query carries no usable content.
func (q ParsedQuery) IsEmpty() bool {
	return len(q.SemanticTerms) == 0 &&
		len(q.Phrases) == 0 &&
		len(q.Filters) == 0 &&
		len(q.ExcludeTerms) == 0
}
