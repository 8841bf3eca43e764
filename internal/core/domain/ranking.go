package domain

import "time"

// RankingSchemaVersion is bumped whenever the feature set or the snapshot
// encoding changes. Persisted snapshots with a different schema version are
// discarded and retrained rather than misapplied.
const RankingSchemaVersion = 1

// RankingSnapshot is one immutable state of the learned ranking model:
// a linear model over standardised features. Retraining produces a new
// snapshot; readers always see either the old or the new one, never a
// partial update.
type RankingSnapshot struct {
	// Schema is the snapshot encoding version (RankingSchemaVersion).
	Schema int `json:"schema"`

	// Version counts successful retrains. Zero means untrained.
	Version int `json:"version"`

	// Weights are the regression coefficients over the standardised
	// feature vector, in Features.Vector order.
	Weights []float64 `json:"weights"`

	// Intercept is the regression bias term.
	Intercept float64 `json:"intercept"`

	// Means and Scales standardise raw features before applying Weights,
	// mirroring a scaler+regressor pipeline.
	Means  []float64 `json:"means"`
	Scales []float64 `json:"scales"`

	// TrainedAt is when this snapshot was produced. Zero when untrained.
	TrainedAt time.Time `json:"trained_at"`

	// SampleCount is the ledger size the snapshot was trained on.
	SampleCount int `json:"sample_count"`
}

// NeutralRanking returns the untrained prior: a pure similarity
// passthrough. Scoring with it reproduces raw similarity order exactly,
// which keeps result order deterministic before any feedback exists.
func NeutralRanking() *RankingSnapshot {
	return &RankingSnapshot{Schema: RankingSchemaVersion}
}

// Trained reports whether the snapshot carries learned weights.
func (m *RankingSnapshot) Trained() bool {
	return m.Version > 0 && len(m.Weights) == FeatureCount
}

// Score predicts relevance for the given features. An untrained snapshot
// returns the raw similarity so that ranking degrades to semantic order
// instead of failing.
func (m *RankingSnapshot) Score(f Features) float64 {
	if !m.Trained() {
		return f.Similarity
	}
	raw := f.Vector()
	score := m.Intercept
	for i, w := range m.Weights {
		x := raw[i]
		if i < len(m.Means) && i < len(m.Scales) && m.Scales[i] != 0 {
			x = (x - m.Means[i]) / m.Scales[i]
		}
		score += w * x
	}
	return score
}
