package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/quarry-labs/quarry-cli/internal/core/domain"
	"github.com/quarry-labs/quarry-cli/internal/core/ports/driven"
	"github.com/quarry-labs/quarry-cli/internal/core/ports/driving"
	"github.com/quarry-labs/quarry-cli/internal/logger"
	"github.com/quarry-labs/quarry-cli/internal/query"
)

// Ensure SearchService implements the interface.
var _ driving.SearchService = (*SearchService)(nil)

// rrfK is the reciprocal rank fusion constant. It keeps top ranks
// from dominating the fused score.
const rrfK = 60

// defaultSearchLimit applies when the caller passes no limit.
const defaultSearchLimit = 20

// maxHighlights caps the snippets returned per result.
const maxHighlights = 3

// scoredChunk holds intermediate search results before hydration.
type scoredChunk struct {
	chunkID string
	score   float64
	source  string // "keyword", "vector", or "merged"
}

// SearchService provides hybrid search over ingested documents.
type SearchService struct {
	docStore         driven.DocumentStore
	searchIndex      driven.SearchEngine
	vectorIndex      driven.VectorIndex
	embeddingService driven.EmbeddingService
}

// NewSearchService creates a new search service.
// vectorIndex and embeddingService are optional (can be nil); without
// them every search runs keyword-only.
func NewSearchService(
	docStore driven.DocumentStore,
	searchIndex driven.SearchEngine,
	vectorIndex driven.VectorIndex,
	embeddingService driven.EmbeddingService,
) *SearchService {
	return &SearchService{
		docStore:         docStore,
		searchIndex:      searchIndex,
		vectorIndex:      vectorIndex,
		embeddingService: embeddingService,
	}
}

// Search parses the raw query string and runs a hybrid search.
//
// The parsed query's semantic terms drive the vector leg and its
// phrases and terms drive the keyword leg; both legs run in parallel
// and their rankings are fused. Filters and exclusions apply after
// hydration, against document metadata and chunk content.
func (s *SearchService) Search(
	ctx context.Context, rawQuery string, opts domain.SearchOptions,
) ([]domain.SearchResult, error) {
	logger.Section("Search Execution")
	logger.Debug("Query: %q", rawQuery)

	parsed := query.Parse(rawQuery)
	if parsed.IsEmpty() {
		logger.Debug("Empty query, returning no results")
		return []domain.SearchResult{}, nil
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	// Fetch extra candidates so post-hydration filtering and the
	// offset still leave a full page.
	fetchLimit := (opts.Offset + limit) * 2

	ftsQuery := query.FTSQuery(parsed)
	semanticQuery := query.SemanticQuery(parsed)
	logger.Debug("FTS query: %q (%s)", ftsQuery, parsed.BooleanOp)
	logger.Debug("Semantic query: %q", semanticQuery)
	logger.Debug("Limit: %d, Offset: %d, fetch: %d", limit, opts.Offset, fetchLimit)

	useVector := !opts.KeywordOnly &&
		s.vectorIndex != nil &&
		s.embeddingService != nil &&
		semanticQuery != ""

	var chunks []scoredChunk
	var err error

	if useVector {
		logger.Debug("Executing hybrid search (keyword + vector)")
		chunks, err = s.hybridSearch(ctx, ftsQuery, semanticQuery, parsed.BooleanOp, fetchLimit)
	} else {
		logger.Debug("Executing keyword search")
		chunks, err = s.keywordSearch(ctx, ftsQuery, parsed.BooleanOp, fetchLimit)
	}
	if err != nil {
		logger.Warn("Search failed: %v", err)
		return nil, fmt.Errorf("search: %w", err)
	}

	logger.Debug("Raw results: %d chunks", len(chunks))

	results, err := s.hydrateResults(ctx, chunks, parsed)
	if err != nil {
		return nil, fmt.Errorf("hydrate results: %w", err)
	}

	logger.Debug("Hydrated results: %d documents", len(results))

	results = s.applyPagination(results, opts.Offset, limit)
	logger.Info("Final results: %d", len(results))

	return results, nil
}

// keywordSearch runs the full-text leg. An empty FTS query yields no
// hits without error; filter-only queries land here.
func (s *SearchService) keywordSearch(
	ctx context.Context, ftsQuery string, op domain.BooleanOp, limit int,
) ([]scoredChunk, error) {
	if s.searchIndex == nil {
		logger.Warn("Keyword search unavailable: search engine is nil")
		return nil, domain.ErrSearchUnavailable
	}
	if ftsQuery == "" {
		return nil, nil
	}

	hits, err := s.searchIndex.Search(ctx, ftsQuery, op, limit)
	if err != nil {
		logger.Warn("Keyword search error: %v", err)
		return nil, fmt.Errorf("keyword search: %w", err)
	}

	logger.Debug("Keyword search: %d hits", len(hits))

	results := make([]scoredChunk, len(hits))
	for i, hit := range hits {
		results[i] = scoredChunk{
			chunkID: hit.ChunkID,
			score:   hit.Score,
			source:  "keyword",
		}
	}
	return results, nil
}

// vectorSearch runs the semantic leg: embed the query, then k-NN.
func (s *SearchService) vectorSearch(
	ctx context.Context, semanticQuery string, limit int,
) ([]scoredChunk, error) {
	if s.vectorIndex == nil {
		logger.Warn("Vector search unavailable: vector index is nil")
		return nil, domain.ErrVectorIndexUnavailable
	}
	if s.embeddingService == nil {
		logger.Warn("Vector search unavailable: embedding service is nil")
		return nil, domain.ErrEmbeddingUnavailable
	}
	if semanticQuery == "" {
		return nil, nil
	}

	embedding, err := s.embeddingService.Embed(ctx, semanticQuery)
	if err != nil {
		logger.Warn("Query embedding failed: %v", err)
		return nil, fmt.Errorf("generate query embedding: %w", err)
	}
	logger.Debug("Query embedding: %d dimensions", len(embedding))

	hits, err := s.vectorIndex.Search(ctx, embedding, limit)
	if err != nil {
		logger.Warn("Vector index search failed: %v", err)
		return nil, fmt.Errorf("vector search: %w", err)
	}

	logger.Debug("Vector search: %d hits", len(hits))

	results := make([]scoredChunk, len(hits))
	for i, hit := range hits {
		results[i] = scoredChunk{
			chunkID: hit.ChunkID,
			score:   hit.Similarity,
			source:  "vector",
		}
	}
	return results, nil
}

// hybridSearch runs both legs in parallel and fuses their rankings.
// One failed leg degrades to the other's results; both failing is an
// error.
func (s *SearchService) hybridSearch(
	ctx context.Context, ftsQuery, semanticQuery string, op domain.BooleanOp, limit int,
) ([]scoredChunk, error) {
	var keywordResults, vectorResults []scoredChunk
	var keywordErr, vectorErr error

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		keywordResults, keywordErr = s.keywordSearch(ctx, ftsQuery, op, limit)
	}()

	go func() {
		defer wg.Done()
		vectorResults, vectorErr = s.vectorSearch(ctx, semanticQuery, limit)
	}()

	wg.Wait()

	if keywordErr != nil && vectorErr != nil {
		logger.Warn("Hybrid search: both keyword and vector searches failed")
		return nil, fmt.Errorf("hybrid search: keyword=%w, vector=%w", keywordErr, vectorErr)
	}
	if keywordErr != nil {
		logger.Warn("Hybrid search: keyword search failed, using vector results only")
		return vectorResults, nil
	}
	if vectorErr != nil {
		logger.Warn("Hybrid search: vector search failed, using keyword results only")
		return keywordResults, nil
	}

	logger.Debug("Hybrid search: merging %d keyword + %d vector results with RRF",
		len(keywordResults), len(vectorResults))
	merged := s.reciprocalRankFusion(keywordResults, vectorResults, rrfK)
	logger.Debug("Hybrid search: merged to %d results", len(merged))

	return merged, nil
}

// Merges two ranked lists using Reciprocal Rank Fusion (RRF).
// k is the constant (typically 60) to prevent high ranks from dominating.
//
//nolint:godot // Private method - no exported name to start with.
func (s *SearchService) reciprocalRankFusion(list1, list2 []scoredChunk, k int) []scoredChunk {
	scores := make(map[string]float64)
	seen := make(map[string]bool)

	for rank, chunk := range list1 {
		scores[chunk.chunkID] += 1.0 / float64(k+rank+1)
		seen[chunk.chunkID] = true
	}
	for rank, chunk := range list2 {
		scores[chunk.chunkID] += 1.0 / float64(k+rank+1)
		seen[chunk.chunkID] = true
	}

	results := make([]scoredChunk, 0, len(seen))
	for id := range seen {
		results = append(results, scoredChunk{
			chunkID: id,
			score:   scores[id],
			source:  "merged",
		})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].score != results[j].score {
			return results[i].score > results[j].score
		}
		return results[i].chunkID < results[j].chunkID
	})

	return results
}

// hydrateResults converts chunk IDs to full SearchResult objects,
// dropping hits whose document fails the parsed filters or whose
// content triggers an exclusion. Hits for since-deleted chunks or
// documents are skipped silently.
func (s *SearchService) hydrateResults(
	ctx context.Context, chunks []scoredChunk, parsed domain.ParsedQuery,
) ([]domain.SearchResult, error) {
	if s.docStore == nil {
		return nil, errors.New("document store unavailable")
	}

	terms := highlightTerms(parsed)

	results := make([]domain.SearchResult, 0, len(chunks))
	for _, sc := range chunks {
		chunk, err := s.docStore.GetChunk(ctx, sc.chunkID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("get chunk %s: %w", sc.chunkID, err)
		}

		doc, err := s.docStore.GetDocument(ctx, chunk.DocumentID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("get document %s: %w", chunk.DocumentID, err)
		}

		if !query.MatchesFilters(doc.Metadata, parsed.Filters) {
			logger.Debug("Dropping %s: filter mismatch", sc.chunkID)
			continue
		}
		if query.ShouldExclude(chunk.Content, parsed.ExcludeTerms) {
			logger.Debug("Dropping %s: excluded term present", sc.chunkID)
			continue
		}

		results = append(results, domain.SearchResult{
			Document:   *doc,
			Chunk:      *chunk,
			Score:      sc.score,
			Highlights: s.generateHighlights(chunk.Content, terms),
		})
	}

	return results, nil
}

// generateHighlights returns up to maxHighlights sentences containing
// a search term, each capped at 200 characters.
func (s *SearchService) generateHighlights(content string, terms []string) []string {
	if len(terms) == 0 {
		return nil
	}

	var highlights []string
	for _, sentence := range splitSentences(content) {
		sentence = strings.TrimSpace(sentence)
		if sentence == "" {
			continue
		}

		sentenceLower := strings.ToLower(sentence)
		for _, term := range terms {
			if strings.Contains(sentenceLower, term) {
				highlight := sentence
				if len(highlight) > 200 {
					highlight = highlight[:200] + "..."
				}
				highlights = append(highlights, highlight)
				break
			}
		}

		if len(highlights) >= maxHighlights {
			break
		}
	}

	return highlights
}

// splitSentences splits content into sentences.
func splitSentences(content string) []string {
	var sentences []string
	var current strings.Builder

	for _, r := range content {
		current.WriteRune(r)
		if r == '.' || r == '!' || r == '?' || r == '\n' {
			if s := strings.TrimSpace(current.String()); s != "" {
				sentences = append(sentences, s)
			}
			current.Reset()
		}
	}

	if s := strings.TrimSpace(current.String()); s != "" {
		sentences = append(sentences, s)
	}

	return sentences
}

// highlightTerms flattens the semantic terms to lowercase words for
// snippet matching. Filter and exclusion tokens never highlight.
func highlightTerms(parsed domain.ParsedQuery) []string {
	var terms []string
	for _, term := range parsed.SemanticTerms {
		terms = append(terms, strings.Fields(strings.ToLower(term))...)
	}
	return terms
}

// applyPagination applies offset and limit to results.
func (s *SearchService) applyPagination(results []domain.SearchResult, offset, limit int) []domain.SearchResult {
	if offset >= len(results) {
		return []domain.SearchResult{}
	}

	end := offset + limit
	if end > len(results) {
		end = len(results)
	}

	return results[offset:end]
}
