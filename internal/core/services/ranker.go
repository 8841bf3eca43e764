package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/inkwell-labs/inkwell-cli/internal/core/domain"
	"github.com/inkwell-labs/inkwell-cli/internal/core/ports/driven"
	"github.com/inkwell-labs/inkwell-cli/internal/logger"
)

// Ranker holds the current ranking model snapshot and retrains it from
// ledger samples. Snapshots are immutable: Retrain builds a complete new
// snapshot off to the side and publishes it under a short exclusive
// section, so a scorer always sees either the old or the new model.
type Ranker struct {
	mu      sync.RWMutex
	current *domain.RankingSnapshot

	// trainMu serializes retrains. A retrain arriving while another is
	// running is skipped, not queued.
	trainMu sync.Mutex

	store driven.RankingModelStore
}

// NewRanker creates a ranker resuming the latest persisted snapshot, or
// the neutral similarity-passthrough prior when none exists or the
// persisted schema is incompatible. The store may be nil for ephemeral use.
func NewRanker(ctx context.Context, store driven.RankingModelStore) *Ranker {
	r := &Ranker{current: domain.NeutralRanking(), store: store}

	if store == nil {
		return r
	}
	snapshot, err := store.LatestSnapshot(ctx)
	switch {
	case err == nil:
		r.current = snapshot
		logger.Info("Ranking model resumed at version %d", snapshot.Version)
	case errors.Is(err, domain.ErrNotFound):
		logger.Debug("No persisted ranking model, starting neutral")
	default:
		logger.Warn("Loading ranking model failed, starting neutral: %v", err)
	}
	return r
}

// Snapshot returns the current model state. The returned snapshot is
// immutable and safe to use without further locking.
func (r *Ranker) Snapshot() *domain.RankingSnapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current
}

// Score predicts relevance for the given features using the current model.
func (r *Ranker) Score(f domain.Features) float64 {
	return r.Snapshot().Score(f)
}

// Retrain fits a fresh linear model from the samples and publishes it.
//
// The fit mirrors a scaler+regressor pipeline: features are standardised,
// then ordinary least squares is solved via the normal equations. Fewer
// than 2 distinct reward values, or a numerically degenerate system,
// leaves the previous snapshot untouched and returns
// domain.ErrRetrainDegenerate.
func (r *Ranker) Retrain(ctx context.Context, samples []domain.FeedbackEvent) error {
	if !r.trainMu.TryLock() {
		logger.Debug("Retrain already in progress, skipping")
		return nil
	}
	defer r.trainMu.Unlock()

	if distinctRewards(samples) < 2 {
		return fmt.Errorf("retrain with %d samples: %w", len(samples), domain.ErrRetrainDegenerate)
	}

	weights, intercept, means, scales, err := fitLinear(samples)
	if err != nil {
		return err
	}

	prev := r.Snapshot()
	next := &domain.RankingSnapshot{
		Schema:      domain.RankingSchemaVersion,
		Version:     prev.Version + 1,
		Weights:     weights,
		Intercept:   intercept,
		Means:       means,
		Scales:      scales,
		TrainedAt:   time.Now().UTC(),
		SampleCount: len(samples),
	}

	// Persist before publishing so the in-memory version counter never
	// runs ahead of the durable state.
	if r.store != nil {
		if err := r.store.SaveSnapshot(ctx, next); err != nil {
			return fmt.Errorf("persist ranking model v%d: %w", next.Version, err)
		}
	}

	r.mu.Lock()
	r.current = next
	r.mu.Unlock()

	logger.Info("Ranking model retrained: version %d from %d samples", next.Version, len(samples))
	return nil
}

// distinctRewards counts unique reward values in the samples.
func distinctRewards(samples []domain.FeedbackEvent) int {
	seen := make(map[float64]struct{}, 4)
	for i := range samples {
		seen[samples[i].Reward] = struct{}{}
	}
	return len(seen)
}

// fitLinear standardises the feature matrix and solves ordinary least
// squares via the normal equations on the centred system.
func fitLinear(samples []domain.FeedbackEvent) (weights []float64, intercept float64, means, scales []float64, err error) {
	n := len(samples)
	p := domain.FeatureCount

	x := make([][]float64, n)
	y := make([]float64, n)
	for i := range samples {
		x[i] = samples[i].Features.Vector()
		y[i] = samples[i].Reward
	}

	means = make([]float64, p)
	scales = make([]float64, p)
	for j := 0; j < p; j++ {
		var sum float64
		for i := 0; i < n; i++ {
			sum += x[i][j]
		}
		means[j] = sum / float64(n)

		var variance float64
		for i := 0; i < n; i++ {
			d := x[i][j] - means[j]
			variance += d * d
		}
		scales[j] = math.Sqrt(variance / float64(n))
		if scales[j] == 0 {
			// Constant feature: standardises to zero, weight stays zero.
			scales[j] = 1
		}
	}

	var yMean float64
	for i := 0; i < n; i++ {
		yMean += y[i]
	}
	yMean /= float64(n)

	// Normal equations over standardised, centred data: (Xs'Xs) w = Xs'(y - ym).
	a := make([][]float64, p)
	b := make([]float64, p)
	for j := 0; j < p; j++ {
		a[j] = make([]float64, p)
	}
	for i := 0; i < n; i++ {
		zi := make([]float64, p)
		for j := 0; j < p; j++ {
			zi[j] = (x[i][j] - means[j]) / scales[j]
		}
		for j := 0; j < p; j++ {
			for l := 0; l < p; l++ {
				a[j][l] += zi[j] * zi[l]
			}
			b[j] += zi[j] * (y[i] - yMean)
		}
	}
	// Tiny ridge term keeps collinear feature sets solvable without
	// meaningfully changing the fit.
	for j := 0; j < p; j++ {
		a[j][j] += 1e-8
	}

	weights, err = solveLinearSystem(a, b)
	if err != nil {
		return nil, 0, nil, nil, err
	}
	return weights, yMean, means, scales, nil
}

// solveLinearSystem solves a*w = b by Gaussian elimination with partial
// pivoting. A near-singular system returns domain.ErrRetrainDegenerate.
func solveLinearSystem(a [][]float64, b []float64) ([]float64, error) {
	n := len(b)

	for col := 0; col < n; col++ {
		pivot := col
		for row := col + 1; row < n; row++ {
			if math.Abs(a[row][col]) > math.Abs(a[pivot][col]) {
				pivot = row
			}
		}
		if math.Abs(a[pivot][col]) < 1e-12 {
			return nil, domain.ErrRetrainDegenerate
		}
		a[col], a[pivot] = a[pivot], a[col]
		b[col], b[pivot] = b[pivot], b[col]

		for row := col + 1; row < n; row++ {
			factor := a[row][col] / a[col][col]
			for k := col; k < n; k++ {
				a[row][k] -= factor * a[col][k]
			}
			b[row] -= factor * b[col]
		}
	}

	w := make([]float64, n)
	for row := n - 1; row >= 0; row-- {
		sum := b[row]
		for k := row + 1; k < n; k++ {
			sum -= a[row][k] * w[k]
		}
		w[row] = sum / a[row][row]
	}
	return w, nil
}
