package memory

import (
	"context"
	"sync"

	"github.com/inkwell-labs/inkwell-cli/internal/core/domain"
	"github.com/inkwell-labs/inkwell-cli/internal/core/ports/driven"
)

// Ensure RankingModelStore implements the interface.
var _ driven.RankingModelStore = (*RankingModelStore)(nil)

// RankingModelStore is an in-memory implementation of
// driven.RankingModelStore.
type RankingModelStore struct {
	mu     sync.RWMutex
	latest *domain.RankingSnapshot
}

// NewRankingModelStore creates a new in-memory model store.
func NewRankingModelStore() *RankingModelStore {
	return &RankingModelStore{}
}

// SaveSnapshot persists a snapshot.
func (s *RankingModelStore) SaveSnapshot(_ context.Context, snapshot *domain.RankingSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *snapshot
	s.latest = &copied
	return nil
}

// LatestSnapshot returns the most recent compatible snapshot.
func (s *RankingModelStore) LatestSnapshot(_ context.Context) (*domain.RankingSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.latest == nil || s.latest.Schema != domain.RankingSchemaVersion {
		return nil, domain.ErrNotFound
	}
	copied := *s.latest
	return &copied, nil
}
