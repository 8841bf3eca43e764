package domain

import "time"

// RetrievalResult is one ranked hit returned to the caller.
type RetrievalResult struct {
	// Version is the matched document version.
	Version DocumentVersion

	// Score is the predicted relevance from the ranking model.
	Score float64

	// Similarity is the raw cosine similarity from the index.
	Similarity float64

	// Distance is the raw Euclidean distance from the index.
	Distance float64
}

// Statistics summarises the state of the library for the stats surface.
type Statistics struct {
	// VersionCount is the number of stored document versions.
	VersionCount int

	// LedgerCount is the number of feedback events recorded.
	LedgerCount int

	// ModelVersion is the retrain counter of the current ranking model.
	ModelVersion int

	// LastTrainedAt is when the model was last retrained. Zero when the
	// model is untrained.
	LastTrainedAt time.Time

	// AverageReward is the mean reward across the ledger, 0 when empty.
	AverageReward float64
}
