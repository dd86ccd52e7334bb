// Package memory provides the in-memory vector index adapter.
//
// Vectors are L2-normalized on insert so that similarity search
// reduces to a dot product. The index holds every chunk embedding in
// memory and is rebuilt from the document store at startup; nothing is
// persisted here.
package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/quarry-labs/quarry-cli/internal/core/domain"
	"github.com/quarry-labs/quarry-cli/internal/core/ports/driven"
)

// VectorIndex implements driven.VectorIndex with brute-force cosine
// search over an in-memory map. Thread-safe.
type VectorIndex struct {
	mu      sync.RWMutex
	vectors map[string][]float32
}

// Ensure VectorIndex implements the VectorIndex interface.
var _ driven.VectorIndex = (*VectorIndex)(nil)

// NewVectorIndex creates an empty vector index.
func NewVectorIndex() *VectorIndex {
	return &VectorIndex{
		vectors: make(map[string][]float32),
	}
}

// Add inserts or replaces the vector for the given chunk ID. The
// stored copy is L2-normalized.
func (i *VectorIndex) Add(ctx context.Context, chunkID string, embedding []float32) error {
	if chunkID == "" {
		return fmt.Errorf("adding vector: %w: chunk ID is required", domain.ErrInvalidInput)
	}
	if len(embedding) == 0 {
		return fmt.Errorf("adding vector for chunk %s: %w: embedding is empty", chunkID, domain.ErrInvalidInput)
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	i.vectors[chunkID] = normalize(embedding)
	return nil
}

// Delete removes the vector for the given chunk ID. Deleting an
// unknown ID is not an error.
func (i *VectorIndex) Delete(ctx context.Context, chunkID string) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	delete(i.vectors, chunkID)
	return nil
}

// Search returns the k entries most similar to the query vector,
// ordered by descending cosine similarity. Entries whose dimension
// does not match the query are skipped.
func (i *VectorIndex) Search(ctx context.Context, query []float32, k int) ([]driven.VectorHit, error) {
	if len(query) == 0 {
		return nil, fmt.Errorf("vector search: %w: query vector is empty", domain.ErrInvalidInput)
	}
	if k <= 0 {
		return nil, nil
	}

	normalized := normalize(query)

	i.mu.RLock()
	defer i.mu.RUnlock()

	hits := make([]driven.VectorHit, 0, len(i.vectors))
	for chunkID, vector := range i.vectors {
		if len(vector) != len(normalized) {
			continue
		}
		hits = append(hits, driven.VectorHit{
			ChunkID:    chunkID,
			Similarity: dot(normalized, vector),
		})
	}

	sort.Slice(hits, func(a, b int) bool {
		if hits[a].Similarity != hits[b].Similarity {
			return hits[a].Similarity > hits[b].Similarity
		}
		return hits[a].ChunkID < hits[b].ChunkID
	})

	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// Len returns the number of vectors currently held.
func (i *VectorIndex) Len() int {
	i.mu.RLock()
	defer i.mu.RUnlock()

	return len(i.vectors)
}

// Close drops all vectors.
func (i *VectorIndex) Close() error {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.vectors = make(map[string][]float32)
	return nil
}

// normalize returns an L2-normalized copy of v. A zero vector is
// returned as an unscaled copy.
func normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}

	out := make([]float32, len(v))
	norm := math.Sqrt(sum)
	if norm == 0 {
		copy(out, v)
		return out
	}

	for idx, x := range v {
		out[idx] = float32(float64(x) / norm)
	}
	return out
}

// dot computes the dot product of two equal-length vectors. With both
// sides normalized this is the cosine similarity.
func dot(a, b []float32) float64 {
	var sum float64
	for idx := range a {
		sum += float64(a[idx]) * float64(b[idx])
	}
	return sum
}
