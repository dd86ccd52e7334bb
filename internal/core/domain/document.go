package domain

import "time"

// Document represents an ingested document with metadata.
// It is the canonical representation after parsing.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// URI is the original location relative to the ingest root.
	URI string

	// Title is the human-readable title.
	Title string

	// Format is the detected source format.
	Format Format

	// Content is the full text content after parsing.
	// This is the complete document text before chunking.
	Content string

	// Metadata contains key-value pairs describing the source file.
	// Filter expressions from the query DSL match against these.
	Metadata map[string]string

	// CreatedAt is when the document was first ingested.
	CreatedAt time.Time

	// UpdatedAt is when the document was last re-ingested.
	UpdatedAt time.Time
}

// Chunk represents a searchable unit within a document.
// Documents are split into chunks for granular search results.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// DocumentID links to the parent Document.
	DocumentID string

	// Content is the text content of this chunk.
	Content string

	// Position is the ordinal position within the document.
	Position int

	// Embedding is the vector representation for semantic search.
	Embedding []float32
}
