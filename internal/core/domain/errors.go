package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// Parsing Errors.
	//
	// Every failure out of the document parser wraps exactly one of
	// these two roots. Callers branch with errors.Is.

	// ErrValidation indicates a caller fault: a path escaping the
	// ingest root, an oversize file, or malformed configuration.
	// Retrying without correcting the input will not help.
	ErrValidation = errors.New("validation failed")

	// ErrFileOperation indicates an environment fault: a missing or
	// unreadable file, or an extraction engine failure. The input was
	// acceptable; the world was not.
	ErrFileOperation = errors.New("file operation failed")

	// ErrUnsupportedFormat indicates a file format with no extraction
	// engine configured.
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrIngestInProgress indicates an ingest run is already active.
	ErrIngestInProgress = errors.New("ingest in progress")

	// Engine Errors.

	// ErrExtractorUnavailable indicates an external extraction tool
	// (e.g. pdftotext) is not installed or not on PATH.
	ErrExtractorUnavailable = errors.New("extraction tool unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	// Vector/semantic search is disabled without embeddings.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrSearchUnavailable indicates the search engine is not configured.
	// Full-text/keyword search is disabled.
	ErrSearchUnavailable = errors.New("search engine unavailable")

	// ErrVectorIndexUnavailable indicates the vector index is not configured.
	// Semantic similarity search is disabled.
	ErrVectorIndexUnavailable = errors.New("vector index unavailable")
)
