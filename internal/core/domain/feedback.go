package domain

import "time"

// Feature values computed for a (query, candidate) pair. These are the
// inputs to the ranking model, both at scoring and at training time.
type Features struct {
	// Similarity is the cosine similarity between query and candidate
	// embeddings, in [-1, 1].
	Similarity float64

	// Distance is the Euclidean distance between the two embeddings.
	// Kept as an independent signal: unlike cosine it is sensitive to
	// vector magnitude.
	Distance float64

	// ContentLength is the candidate content length in bytes.
	ContentLength float64

	// Recency is the candidate age bucket (0 = newest). Coarse on purpose
	// so the model cannot overfit to timestamps.
	Recency float64
}

// Vector returns the features in canonical column order.
func (f Features) Vector() []float64 {
	return []float64{f.Similarity, f.Distance, f.ContentLength, f.Recency}
}

// FeatureCount is the width of the feature vector.
const FeatureCount = 4

// FeedbackEvent records one explicit user rating of a retrieval result.
// Events are immutable and never deleted; corrections are represented as
// new compensating entries. The accumulated ledger is the training set
// for the ranking model.
type FeedbackEvent struct {
	// ID uniquely identifies the event.
	ID string

	// Query is the query text the user rated a result for.
	Query string

	// ResultID references the rated DocumentVersion. It must resolve at
	// append time; dangling references are rejected.
	ResultID string

	// Reward is the feedback signal in [-1, 1].
	Reward float64

	// Features are the retrieval features of the rated result, frozen at
	// rating time.
	Features Features

	// CreatedAt is when the rating was recorded.
	CreatedAt time.Time
}

// Star rating bounds for RewardFromStars.
const (
	MinStars = 1
	MaxStars = 5
)

// RewardFromStars maps a 1-5 star rating onto the [-1, 1] reward scale:
// 1 -> -1, 2 -> -0.5, 3 -> 0, 4 -> 0.5, 5 -> 1.
func RewardFromStars(stars int) (float64, error) {
	if stars < MinStars || stars > MaxStars {
		return 0, ErrOutOfRange
	}
	return float64(stars-3) / 2, nil
}

// ValidReward reports whether the reward lies in the defined domain.
func ValidReward(reward float64) bool {
	return reward >= -1 && reward <= 1
}
