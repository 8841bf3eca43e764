// Package brute provides an exhaustive in-process similarity index.
// Every query scores all stored vectors, which is exact and fast enough
// for libraries in the tens of thousands of versions.
package brute

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/inkwell-labs/inkwell-cli/internal/core/domain"
	"github.com/inkwell-labs/inkwell-cli/internal/core/ports/driven"
)

// Index stores embedding vectors keyed by version ID and answers
// nearest-neighbour queries by scanning all of them. Safe for
// concurrent use.
type Index struct {
	mu      sync.RWMutex
	vectors map[string][]float32
	dims    int
}

// NewIndex creates an empty index. Dimensionality is fixed by the
// first vector upserted.
func NewIndex() *Index {
	return &Index{vectors: make(map[string][]float32)}
}

// Upsert stores or replaces the vector for id. The vector is copied,
// so the caller may reuse the slice.
func (i *Index) Upsert(ctx context.Context, id string, vector []float32) error {
	if id == "" {
		return fmt.Errorf("upsert: %w: empty id", domain.ErrInvalidInput)
	}
	if len(vector) == 0 {
		return fmt.Errorf("upsert %s: %w: empty vector", id, domain.ErrInvalidInput)
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	if i.dims == 0 {
		i.dims = len(vector)
	} else if len(vector) != i.dims {
		return fmt.Errorf("upsert %s: %w: got %d dimensions, index holds %d",
			id, domain.ErrDimensionMismatch, len(vector), i.dims)
	}

	stored := make([]float32, len(vector))
	copy(stored, vector)
	i.vectors[id] = stored
	return nil
}

// Delete removes the vector for id. Deleting an unknown id is a no-op.
func (i *Index) Delete(ctx context.Context, id string) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	delete(i.vectors, id)
	if len(i.vectors) == 0 {
		i.dims = 0
	}
	return nil
}

// Search returns up to k hits ordered by descending cosine similarity,
// with ties broken by ID for deterministic output.
func (i *Index) Search(ctx context.Context, vector []float32, k int) ([]driven.VectorHit, error) {
	if k <= 0 {
		return nil, fmt.Errorf("search: %w: k must be positive", domain.ErrInvalidInput)
	}

	i.mu.RLock()
	defer i.mu.RUnlock()

	if len(i.vectors) == 0 {
		return []driven.VectorHit{}, nil
	}
	if len(vector) != i.dims {
		return nil, fmt.Errorf("search: %w: got %d dimensions, index holds %d",
			domain.ErrDimensionMismatch, len(vector), i.dims)
	}

	hits := make([]driven.VectorHit, 0, len(i.vectors))
	for id, stored := range i.vectors {
		hits = append(hits, driven.VectorHit{
			ID:         id,
			Similarity: cosine(vector, stored),
			Distance:   euclidean(vector, stored),
		})
	}

	sort.Slice(hits, func(a, b int) bool {
		if hits[a].Similarity != hits[b].Similarity {
			return hits[a].Similarity > hits[b].Similarity
		}
		return hits[a].ID < hits[b].ID
	})

	if k < len(hits) {
		hits = hits[:k]
	}
	return hits, nil
}

// Close discards all stored vectors.
func (i *Index) Close() error {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.vectors = make(map[string][]float32)
	i.dims = 0
	return nil
}

func cosine(a, b []float32) float64 {
	var dot, normA, normB float64
	for n := range a {
		dot += float64(a[n]) * float64(b[n])
		normA += float64(a[n]) * float64(a[n])
		normB += float64(b[n]) * float64(b[n])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

func euclidean(a, b []float32) float64 {
	var sum float64
	for n := range a {
		d := float64(a[n]) - float64(b[n])
		sum += d * d
	}
	return math.Sqrt(sum)
}
