package driven

import "context"

// SimilarityIndex provides nearest-neighbour lookup over embedded versions.
// The default adapter is an exact brute-force cosine index held in memory
// and rebuilt from the version store at startup.
type SimilarityIndex interface {
	// Upsert inserts or replaces the vector for a version ID.
	Upsert(ctx context.Context, id string, embedding []float32) error

	// Delete removes a vector from the index. Unknown ids are a no-op.
	Delete(ctx context.Context, id string) error

	// Search returns the k nearest neighbours to the query vector, best
	// first. Returns fewer than k when fewer vectors are indexed, and an
	// empty slice (not an error) when the index is empty.
	Search(ctx context.Context, query []float32, k int) ([]VectorHit, error)

	// Close releases resources.
	Close() error
}

// VectorHit is a similarity search result.
type VectorHit struct {
	// ID is the matched version.
	ID string

	// Similarity is the cosine similarity in [-1, 1].
	Similarity float64

	// Distance is the Euclidean distance between query and match. Reported
	// independently of Similarity because the two differ in magnitude
	// sensitivity, and the ranking model consumes both.
	Distance float64
}
