package driven

import "context"

// Extractor converts raw document bytes into plain text.
//
// Extractors back the formats whose byte layout the parser does not
// understand itself (PDF, DOCX). They receive the file content already
// read and sandbox-checked by the parser; they never touch the
// filesystem except through temporary files of their own.
type Extractor interface {
	// Extract returns the visible text of the document.
	Extract(ctx context.Context, content []byte) (string, error)

	// CheckAvailable reports whether the underlying engine can run,
	// e.g. whether an external binary is installed.
	CheckAvailable() error
}
