package parser

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/quarry-labs/quarry-cli/internal/core/domain"
	"github.com/quarry-labs/quarry-cli/internal/core/ports/driven"
)

// Config holds construction-time parser settings. Both fields are
// read-only after New returns; the parser holds no other state, so
// independent ParseFile calls may run concurrently.
type Config struct {
	// BaseDir is the sandbox root. File access outside it fails.
	BaseDir string

	// MaxFileSize is the per-file byte ceiling. Zero disables it.
	MaxFileSize int64
}

// Option configures optional parser collaborators.
type Option func(*Parser)

// WithExtractor registers an extraction engine for a format whose
// bytes the parser does not decode itself (PDF, DOCX).
func WithExtractor(format domain.Format, extractor driven.Extractor) Option {
	return func(p *Parser) {
		p.extractors[format] = extractor
	}
}

// Parser turns files inside a sandboxed root into normalized text.
type Parser struct {
	guard      *Guard
	flattener  *Flattener
	extractors map[domain.Format]driven.Extractor
}

// New creates a parser for the given sandbox configuration.
func New(cfg Config, opts ...Option) (*Parser, error) {
	guard, err := NewGuard(cfg.BaseDir, cfg.MaxFileSize)
	if err != nil {
		return nil, err
	}

	p := &Parser{
		guard:      guard,
		flattener:  NewFlattener(),
		extractors: make(map[domain.Format]driven.Extractor),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// BaseDir returns the absolute sandbox root.
func (p *Parser) BaseDir() string {
	return p.guard.BaseDir()
}

// ParseFile reads one file and returns its normalized text.
//
// The sandbox and size checks run before the read. Escaping or
// oversize paths fail with domain.ErrValidation; missing files, read
// failures and extraction engine failures fail with
// domain.ErrFileOperation. Empty output with a nil error means the
// file held nothing ingestible, which is success.
func (p *Parser) ParseFile(ctx context.Context, path string) (string, error) {
	text, _, err := p.ParseFileWithFormat(ctx, path)
	return text, err
}

// ParseFileWithFormat is ParseFile plus the detected format, which
// ingestion records on the stored document.
func (p *Parser) ParseFileWithFormat(ctx context.Context, path string) (string, domain.Format, error) {
	abs, err := p.guard.Check(path)
	if err != nil {
		return "", "", err
	}

	content, err := os.ReadFile(abs)
	if err != nil {
		return "", "", fmt.Errorf("read %s: %w: %w", path, domain.ErrFileOperation, err)
	}

	format := DetectFormat(abs, content)
	text, err := p.extract(ctx, format, content)
	if err != nil {
		return "", format, err
	}
	return text, format, nil
}

// extract dispatches content to the handler for its format.
func (p *Parser) extract(ctx context.Context, format domain.Format, content []byte) (string, error) {
	switch format {
	case domain.FormatText, domain.FormatMarkdown:
		return stripBOM(string(content)), nil

	case domain.FormatHTML:
		return htmlToText(stripBOM(string(content))), nil

	case domain.FormatPDF, domain.FormatDOCX:
		extractor, ok := p.extractors[format]
		if !ok {
			return "", fmt.Errorf("no %s extractor configured: %w: %w",
				format, domain.ErrFileOperation, domain.ErrUnsupportedFormat)
		}
		text, err := extractor.Extract(ctx, content)
		if err != nil {
			return "", fmt.Errorf("extract %s: %w: %w", format, domain.ErrFileOperation, err)
		}
		return text, nil

	case domain.FormatJSON:
		return p.flattener.FlattenDocument(content), nil

	case domain.FormatJSONL:
		return p.flattener.FlattenLines(content), nil

	default:
		return "", fmt.Errorf("format %q: %w", format, domain.ErrUnsupportedFormat)
	}
}

// stripBOM removes a leading UTF-8 byte-order mark.
func stripBOM(s string) string {
	return strings.TrimPrefix(s, "\uFEFF")
}
