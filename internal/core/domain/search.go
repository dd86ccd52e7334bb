package domain

// SearchOptions configures a search query.
type SearchOptions struct {
	// Limit is the maximum number of results.
	Limit int

	// Offset is the number of results to skip.
	Offset int

	// KeywordOnly disables the vector leg even when embeddings
	// are configured.
	KeywordOnly bool
}

// SearchResult represents a single search hit.
type SearchResult struct {
	// Document is the matched document.
	Document Document

	// Chunk is the specific chunk that matched.
	Chunk Chunk

	// Score is the fused relevance score.
	Score float64

	// Highlights contains snippets with matched terms.
	Highlights []string
}
