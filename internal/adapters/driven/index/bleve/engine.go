// Package bleve provides the keyword search engine adapter backed by a
// disk-based bleve full-text index.
//
// Chunk content is indexed keyed by chunk ID. Searches build one match
// query per bare term and one match-phrase query per quoted segment,
// combined as a conjunction (AND) or disjunction (OR).
package bleve

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/quarry-labs/quarry-cli/internal/core/domain"
	"github.com/quarry-labs/quarry-cli/internal/core/ports/driven"
)

// indexFileName is the on-disk directory name for the bleve index.
const indexFileName = "keyword.bleve"

// defaultSearchSize caps result counts when the caller passes no limit.
const defaultSearchSize = 10

// chunkDocument is the shape stored in the index for each chunk.
type chunkDocument struct {
	Content string `json:"content"`
}

// Engine implements driven.SearchEngine over a disk-backed bleve index.
type Engine struct {
	index bleve.Index
	path  string
}

// Ensure Engine implements the SearchEngine interface.
var _ driven.SearchEngine = (*Engine)(nil)

// NewEngine opens the keyword index under dataDir, creating it when
// absent. If dataDir is empty, ~/.quarry/data is used.
func NewEngine(dataDir string) (*Engine, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".quarry", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	indexPath := filepath.Join(dataDir, indexFileName)

	var index bleve.Index
	if _, err := os.Stat(indexPath); err == nil {
		index, err = bleve.Open(indexPath)
		if err != nil {
			return nil, fmt.Errorf("opening keyword index: %w", err)
		}
	} else {
		mapping := bleve.NewIndexMapping()
		index, err = bleve.New(indexPath, mapping)
		if err != nil {
			return nil, fmt.Errorf("creating keyword index: %w", err)
		}
	}

	return &Engine{
		index: index,
		path:  indexPath,
	}, nil
}

// Index adds or updates a chunk in the search index.
func (e *Engine) Index(ctx context.Context, chunk domain.Chunk) error {
	if chunk.ID == "" {
		return fmt.Errorf("indexing chunk: %w: chunk ID is required", domain.ErrInvalidInput)
	}

	doc := chunkDocument{Content: chunk.Content}
	if err := e.index.Index(chunk.ID, doc); err != nil {
		return fmt.Errorf("indexing chunk %s: %w", chunk.ID, err)
	}
	return nil
}

// Delete removes a chunk from the search index. Deleting an unknown ID
// is not an error.
func (e *Engine) Delete(ctx context.Context, chunkID string) error {
	if err := e.index.Delete(chunkID); err != nil {
		return fmt.Errorf("deleting chunk %s from index: %w", chunkID, err)
	}
	return nil
}

// Search runs a keyword query against the index. Quoted segments in the
// query string become phrase queries; remaining whitespace-separated
// terms become match queries. op selects whether all sub-queries must
// match (AND) or any may (OR).
func (e *Engine) Search(ctx context.Context, queryStr string, op domain.BooleanOp, limit int) ([]driven.SearchHit, error) {
	terms, phrases := splitQuery(queryStr)
	if len(terms) == 0 && len(phrases) == 0 {
		return nil, nil
	}

	subqueries := make([]query.Query, 0, len(terms)+len(phrases))
	for _, phrase := range phrases {
		pq := bleve.NewMatchPhraseQuery(phrase)
		pq.SetField("content")
		subqueries = append(subqueries, pq)
	}
	for _, term := range terms {
		mq := bleve.NewMatchQuery(term)
		mq.SetField("content")
		subqueries = append(subqueries, mq)
	}

	var q query.Query
	switch {
	case len(subqueries) == 1:
		q = subqueries[0]
	case op == domain.BooleanOr:
		q = bleve.NewDisjunctionQuery(subqueries...)
	default:
		q = bleve.NewConjunctionQuery(subqueries...)
	}

	if limit <= 0 {
		limit = defaultSearchSize
	}

	req := bleve.NewSearchRequest(q)
	req.Size = limit

	result, err := e.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("keyword search: %w", err)
	}

	hits := make([]driven.SearchHit, 0, len(result.Hits))
	for _, hit := range result.Hits {
		hits = append(hits, driven.SearchHit{
			ChunkID: hit.ID,
			Score:   hit.Score,
		})
	}
	return hits, nil
}

// Close releases the underlying index.
func (e *Engine) Close() error {
	if err := e.index.Close(); err != nil {
		return fmt.Errorf("closing keyword index: %w", err)
	}
	return nil
}

// Path returns the on-disk location of the index.
func (e *Engine) Path() string {
	return e.path
}

// splitQuery separates quoted phrases from bare terms. Unterminated
// quotes run to the end of the string.
func splitQuery(s string) (terms, phrases []string) {
	rest := s
	for {
		start := strings.IndexByte(rest, '"')
		if start < 0 {
			terms = append(terms, strings.Fields(rest)...)
			return terms, phrases
		}

		terms = append(terms, strings.Fields(rest[:start])...)
		rest = rest[start+1:]

		end := strings.IndexByte(rest, '"')
		if end < 0 {
			if phrase := strings.TrimSpace(rest); phrase != "" {
				phrases = append(phrases, phrase)
			}
			return terms, phrases
		}

		if phrase := strings.TrimSpace(rest[:end]); phrase != "" {
			phrases = append(phrases, phrase)
		}
		rest = rest[end+1:]
	}
}
