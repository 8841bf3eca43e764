package driven

import (
	"context"

	"github.com/inkwell-labs/inkwell-cli/internal/core/domain"
)

// RankingModelStore persists ranking model snapshots so restarts resume
// the latest trained state. Snapshots carry an explicit schema version;
// loading an incompatible snapshot must fail with domain.ErrNotFound so
// the caller falls back to the neutral prior and retrains.
type RankingModelStore interface {
	// SaveSnapshot persists a snapshot.
	SaveSnapshot(ctx context.Context, snapshot *domain.RankingSnapshot) error

	// LatestSnapshot returns the most recently trained compatible
	// snapshot, or domain.ErrNotFound when none exists.
	LatestSnapshot(ctx context.Context) (*domain.RankingSnapshot, error)
}
