package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkwell-labs/inkwell-cli/internal/core/domain"
)

func TestModelStore_SaveAndLatest(t *testing.T) {
	store := NewRankingModelStore()
	ctx := context.Background()

	snap := &domain.RankingSnapshot{
		Schema:    domain.RankingSchemaVersion,
		Version:   3,
		Weights:   []float64{0.4, -0.1, 0.02, 0.0},
		Intercept: 0.1,
		Means:     []float64{0.5, 1.0, 200, 2},
		Scales:    []float64{0.2, 0.5, 80, 1},
		TrainedAt: time.Now(),
	}
	require.NoError(t, store.SaveSnapshot(ctx, snap))

	got, err := store.LatestSnapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Version)
	assert.Equal(t, snap.Weights, got.Weights)
}

func TestModelStore_LatestSnapshot_Empty(t *testing.T) {
	store := NewRankingModelStore()

	got, err := store.LatestSnapshot(context.Background())

	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Nil(t, got)
}

func TestModelStore_LatestSnapshot_IncompatibleSchema(t *testing.T) {
	store := NewRankingModelStore()
	ctx := context.Background()

	require.NoError(t, store.SaveSnapshot(ctx, &domain.RankingSnapshot{
		Schema:  domain.RankingSchemaVersion + 1,
		Version: 1,
	}))

	got, err := store.LatestSnapshot(ctx)

	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Nil(t, got)
}

func TestModelStore_SaveSnapshot_CopiesInput(t *testing.T) {
	store := NewRankingModelStore()
	ctx := context.Background()

	snap := &domain.RankingSnapshot{
		Schema:  domain.RankingSchemaVersion,
		Version: 1,
		Weights: []float64{0.5, 0, 0, 0},
	}
	require.NoError(t, store.SaveSnapshot(ctx, snap))
	snap.Weights[0] = -99

	got, err := store.LatestSnapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0.5, got.Weights[0])
}
