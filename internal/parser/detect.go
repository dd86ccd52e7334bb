package parser

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"

	"github.com/quarry-labs/quarry-cli/internal/core/domain"
)

// DetectFormat maps a file's extension, and where the extension is
// ambiguous its content, to a parsing strategy.
//
// Unambiguous extensions win outright. Everything else, including
// .txt and unknown extensions, is content-sniffed: one strict JSON
// document beats a line-oriented JSONL reading, and only when both
// fail does the content fall through to plain text. The ordering is a
// deliberate fallback hierarchy, with one exception: a JSON-family
// extension never degrades to plain text, so malformed or blank
// .json/.jsonl files flatten to nothing instead of passing raw bytes
// through.
func DetectFormat(path string, content []byte) domain.Format {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".pdf":
		return domain.FormatPDF
	case ".docx":
		return domain.FormatDOCX
	case ".html", ".htm":
		return domain.FormatHTML
	case ".md":
		return domain.FormatMarkdown
	}

	jsonFamily := ext == ".json" || ext == ".jsonl" || ext == ".ndjson"
	return sniffContent(content, jsonFamily)
}

// sniffContent classifies content with no trustworthy extension.
// jsonFamily pins the fallback to the line-oriented handler instead of
// plain text.
func sniffContent(content []byte, jsonFamily bool) domain.Format {
	fallback := domain.FormatText
	if jsonFamily {
		fallback = domain.FormatJSONL
	}

	trimmed := bytes.TrimSpace(content)
	if len(trimmed) == 0 {
		return fallback
	}
	if json.Valid(trimmed) {
		return domain.FormatJSON
	}
	if hasValidJSONLine(content) {
		return domain.FormatJSONL
	}
	return fallback
}

// hasValidJSONLine reports whether at least one non-blank line parses
// as a JSON value on its own.
func hasValidJSONLine(content []byte) bool {
	for _, line := range strings.Split(string(content), "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if json.Valid([]byte(trimmed)) {
			return true
		}
	}
	return false
}
