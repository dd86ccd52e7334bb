package driving

import "context"

// IngestService coordinates document ingestion from a local directory.
type IngestService interface {
	// IngestDirectory walks root and ingests every regular file.
	// Per-file failures are counted, not fatal.
	IngestDirectory(ctx context.Context, root string) (*IngestStatus, error)

	// IngestFile ingests a single file. The path must lie inside root.
	IngestFile(ctx context.Context, root, path string) error

	// Remove deletes the document stored for uri along with its chunks
	// and index entries.
	Remove(ctx context.Context, uri string) error

	// Status returns a snapshot of the current or most recent run.
	Status(ctx context.Context) (*IngestStatus, error)
}

// IngestStatus represents the state of an ingest run.
type IngestStatus struct {
	// Root is the directory being ingested.
	Root string

	// Running indicates if ingestion is currently in progress.
	Running bool

	// FilesSeen is the count of regular files visited.
	FilesSeen int

	// FilesIngested is the count of files stored and indexed.
	FilesIngested int

	// FilesSkipped is the count of files with no ingestible content.
	FilesSkipped int

	// ErrorCount is the number of per-file failures.
	ErrorCount int
}
