package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested version does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidReference indicates feedback references a version that
	// does not exist in the store. Rejected at the ledger boundary, never
	// silently stored.
	ErrInvalidReference = errors.New("invalid result reference")

	// ErrOutOfRange indicates a reward or star rating outside its domain.
	ErrOutOfRange = errors.New("value out of range")

	// ErrInvalidVersionType indicates a malformed version type label.
	ErrInvalidVersionType = errors.New("invalid version type")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrEmbeddingUnavailable indicates the embedding provider failed or
	// timed out after bounded retries. Saves and queries cannot proceed
	// without an embedding.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	// The AI pipeline stages degrade to passing text through.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrDimensionMismatch indicates a vector of the wrong width was
	// handed to the similarity index.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrRetrainDegenerate indicates a retrain could not fit a model
	// (singular system or constant rewards). The previous weights are
	// kept.
	ErrRetrainDegenerate = errors.New("retrain: insufficient signal")
)
