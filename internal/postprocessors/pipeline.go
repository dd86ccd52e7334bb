// Package postprocessors turns parsed document text into the chunks
// the search indexes consume.
package postprocessors

import (
	"context"
	"fmt"

	"github.com/quarry-labs/quarry-cli/internal/core/domain"
	"github.com/quarry-labs/quarry-cli/internal/core/ports/driven"
)

// Pipeline runs a sequence of PostProcessors over an ingested
// document. It implements the PostProcessorPipeline interface.
type Pipeline struct {
	processors []driven.PostProcessor
}

// NewPipeline builds a pipeline that applies the given processors in
// order. Ingestion runs one pipeline per document.
func NewPipeline(processors ...driven.PostProcessor) *Pipeline {
	return &Pipeline{
		processors: processors,
	}
}

// Process feeds the document through each processor in turn. The
// first processor sees nil chunks and is expected to produce the
// initial set; later processors refine what they receive.
func (p *Pipeline) Process(ctx context.Context, doc *domain.Document) ([]domain.Chunk, error) {
	if doc == nil {
		return nil, fmt.Errorf("document is nil")
	}

	var chunks []domain.Chunk

	for _, processor := range p.processors {
		var err error
		chunks, err = processor.Process(ctx, doc, chunks)
		if err != nil {
			return nil, fmt.Errorf("processor %s: %w", processor.Name(), err)
		}
	}

	return chunks, nil
}

// Add appends a processor to the end of the pipeline.
func (p *Pipeline) Add(processor driven.PostProcessor) {
	p.processors = append(p.processors, processor)
}

// Len reports how many processors the pipeline holds.
func (p *Pipeline) Len() int {
	return len(p.processors)
}
