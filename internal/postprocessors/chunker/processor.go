// Package chunker splits parsed document text into overlapping
// fixed-size chunks for indexing and embedding.
package chunker

import (
	"context"

	"github.com/google/uuid"

	"github.com/quarry-labs/quarry-cli/internal/core/domain"
)

// DefaultChunkSize is the chunk length in characters when config
// leaves chunk.size unset.
const DefaultChunkSize = 1000

// DefaultChunkOverlap is the character overlap between adjacent
// chunks when config leaves chunk.overlap unset.
const DefaultChunkOverlap = 100

// Processor cuts document content into fixed-size windows. It
// implements the PostProcessor interface.
type Processor struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker.
type Option func(*Processor)

// WithChunkSize overrides the chunk length in characters.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.chunkSize = size
		}
	}
}

// WithOverlap overrides the overlap between adjacent chunks.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		if overlap >= 0 {
			p.overlap = overlap
		}
	}
}

// New builds a chunker. An overlap at or above the chunk size is
// clamped to a quarter of it so the window always advances.
func New(opts ...Option) *Processor {
	p := &Processor{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.overlap >= p.chunkSize {
		p.overlap = p.chunkSize / 4
	}

	return p
}

// Name returns the registry name for this processor.
func (p *Processor) Name() string {
	return "chunker"
}

// Process slices doc.Content into windows of chunkSize characters,
// each starting (chunkSize - overlap) past the previous one. Incoming
// chunks are ignored; the chunker is the pipeline stage that creates
// them. Empty content yields no chunks, which ingestion treats as a
// document with nothing to index.
func (p *Processor) Process(ctx context.Context, doc *domain.Document, _ []domain.Chunk) ([]domain.Chunk, error) {
	if doc.Content == "" {
		return nil, nil
	}

	content := doc.Content
	contentLen := len(content)

	estimated := (contentLen / (p.chunkSize - p.overlap)) + 1
	chunks := make([]domain.Chunk, 0, estimated)

	position := 0
	start := 0

	for start < contentLen {
		end := start + p.chunkSize
		if end > contentLen {
			end = contentLen
		}

		chunks = append(chunks, domain.Chunk{
			ID:         uuid.New().String(),
			DocumentID: doc.ID,
			Content:    content[start:end],
			Position:   position,
		})
		position++

		start += p.chunkSize - p.overlap
		if p.chunkSize <= p.overlap {
			break
		}
	}

	return chunks, nil
}
