package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkwell-labs/inkwell-cli/internal/adapters/driven/storage/memory"
	"github.com/inkwell-labs/inkwell-cli/internal/core/domain"
)

// similaritySamples builds a training set where reward tracks similarity
// and every other feature is held constant.
func similaritySamples(n int) []domain.FeedbackEvent {
	samples := make([]domain.FeedbackEvent, n)
	for i := range samples {
		sim := float64(i) / float64(n-1)
		samples[i] = domain.FeedbackEvent{
			ID:       string(rune('a' + i)),
			Query:    "query",
			ResultID: "result",
			Reward:   2*sim - 1,
			Features: domain.Features{
				Similarity:    sim,
				Distance:      1.5,
				ContentLength: 400,
				Recency:       2,
			},
			CreatedAt: time.Now().UTC(),
		}
	}
	return samples
}

func TestNewRanker_StartsNeutral(t *testing.T) {
	r := NewRanker(context.Background(), nil)

	snap := r.Snapshot()
	assert.Equal(t, 0, snap.Version)
	assert.False(t, snap.Trained())

	// Untrained scoring is a pure similarity passthrough.
	f := domain.Features{Similarity: 0.73, Distance: 9, ContentLength: 1e6, Recency: 4}
	assert.Equal(t, 0.73, r.Score(f))
}

func TestNewRanker_ResumesPersistedSnapshot(t *testing.T) {
	ctx := context.Background()
	store := memory.NewRankingModelStore()

	saved := &domain.RankingSnapshot{
		Schema:      domain.RankingSchemaVersion,
		Version:     3,
		Weights:     []float64{1, 0, 0, 0},
		Means:       []float64{0, 0, 0, 0},
		Scales:      []float64{1, 1, 1, 1},
		TrainedAt:   time.Now().UTC(),
		SampleCount: 30,
	}
	require.NoError(t, store.SaveSnapshot(ctx, saved))

	r := NewRanker(ctx, store)
	assert.Equal(t, 3, r.Snapshot().Version)
	assert.True(t, r.Snapshot().Trained())
}

func TestRanker_Retrain_LearnsSimilarityPreference(t *testing.T) {
	r := NewRanker(context.Background(), nil)

	require.NoError(t, r.Retrain(context.Background(), similaritySamples(10)))

	snap := r.Snapshot()
	assert.Equal(t, 1, snap.Version)
	assert.True(t, snap.Trained())
	assert.Equal(t, 10, snap.SampleCount)
	assert.False(t, snap.TrainedAt.IsZero())

	high := domain.Features{Similarity: 0.9, Distance: 1.5, ContentLength: 400, Recency: 2}
	low := domain.Features{Similarity: 0.2, Distance: 1.5, ContentLength: 400, Recency: 2}
	assert.Greater(t, r.Score(high), r.Score(low))
}

func TestRanker_Retrain_VersionIncrementsPerRetrain(t *testing.T) {
	r := NewRanker(context.Background(), nil)

	require.NoError(t, r.Retrain(context.Background(), similaritySamples(10)))
	require.NoError(t, r.Retrain(context.Background(), similaritySamples(20)))

	assert.Equal(t, 2, r.Snapshot().Version)
	assert.Equal(t, 20, r.Snapshot().SampleCount)
}

func TestRanker_Retrain_ConstantRewardsAreDegenerate(t *testing.T) {
	r := NewRanker(context.Background(), nil)

	samples := similaritySamples(10)
	for i := range samples {
		samples[i].Reward = 0.5
	}

	err := r.Retrain(context.Background(), samples)
	assert.ErrorIs(t, err, domain.ErrRetrainDegenerate)
	assert.Equal(t, 0, r.Snapshot().Version, "degenerate retrain must keep the previous snapshot")
}

func TestRanker_Retrain_EmptySamplesAreDegenerate(t *testing.T) {
	r := NewRanker(context.Background(), nil)

	err := r.Retrain(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrRetrainDegenerate)
	assert.Equal(t, 0, r.Snapshot().Version)
}

func TestRanker_Retrain_PersistsBeforePublishing(t *testing.T) {
	ctx := context.Background()
	store := &mockModelStore{saveErr: errors.New("disk full")}
	r := NewRanker(ctx, store)

	err := r.Retrain(ctx, similaritySamples(10))
	require.Error(t, err)
	assert.Equal(t, 0, r.Snapshot().Version, "unpersisted snapshot must not be published")
}

func TestRanker_Retrain_PersistsSnapshot(t *testing.T) {
	ctx := context.Background()
	store := memory.NewRankingModelStore()
	r := NewRanker(ctx, store)

	require.NoError(t, r.Retrain(ctx, similaritySamples(10)))

	persisted, err := store.LatestSnapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, persisted.Version)
	assert.Equal(t, domain.RankingSchemaVersion, persisted.Schema)
}

func TestRanker_Retrain_HandlesCollinearFeatures(t *testing.T) {
	r := NewRanker(context.Background(), nil)

	// Distance moves in lockstep with similarity; the ridge term keeps
	// the system solvable.
	samples := similaritySamples(10)
	for i := range samples {
		samples[i].Features.Distance = 2 - samples[i].Features.Similarity
	}

	require.NoError(t, r.Retrain(context.Background(), samples))
	assert.True(t, r.Snapshot().Trained())
}

func TestRanker_TrainedScoreUsesStandardisedFeatures(t *testing.T) {
	r := NewRanker(context.Background(), nil)
	require.NoError(t, r.Retrain(context.Background(), similaritySamples(10)))

	// Mean feature values should score near the mean reward (0 for the
	// symmetric training set).
	mid := domain.Features{Similarity: 0.5, Distance: 1.5, ContentLength: 400, Recency: 2}
	assert.InDelta(t, 0, r.Score(mid), 0.05)
}
