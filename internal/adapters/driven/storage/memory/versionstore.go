// Package memory provides in-memory implementations of the storage ports.
// Used in tests and as a zero-setup fallback when no data directory is
// configured.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/inkwell-labs/inkwell-cli/internal/core/domain"
	"github.com/inkwell-labs/inkwell-cli/internal/core/ports/driven"
)

// Ensure VersionStore implements the interface.
var _ driven.VersionStore = (*VersionStore)(nil)

// VersionStore is an in-memory implementation of driven.VersionStore.
type VersionStore struct {
	mu       sync.RWMutex
	versions map[string]domain.DocumentVersion
}

// NewVersionStore creates a new in-memory version store.
func NewVersionStore() *VersionStore {
	return &VersionStore{
		versions: make(map[string]domain.DocumentVersion),
	}
}

// SaveVersion stores a version. An existing ID is left untouched.
func (s *VersionStore) SaveVersion(_ context.Context, v *domain.DocumentVersion) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.versions[v.ID]; ok {
		return nil
	}
	s.versions[v.ID] = *v
	return nil
}

// GetVersion retrieves a version by ID.
func (s *VersionStore) GetVersion(_ context.Context, id string) (*domain.DocumentVersion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.versions[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &v, nil
}

// ListVersions returns all versions for a URL, oldest first.
func (s *VersionStore) ListVersions(_ context.Context, url string) ([]domain.DocumentVersion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []domain.DocumentVersion
	for id := range s.versions {
		if s.versions[id].URL == url {
			result = append(result, s.versions[id])
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

// ListActive returns every active version.
func (s *VersionStore) ListActive(_ context.Context) ([]domain.DocumentVersion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []domain.DocumentVersion
	for id := range s.versions {
		if s.versions[id].Active {
			result = append(result, s.versions[id])
		}
	}
	return result, nil
}

// SetActive marks id active and its URL siblings inactive.
func (s *VersionStore) SetActive(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	target, ok := s.versions[id]
	if !ok {
		return domain.ErrNotFound
	}
	for key, v := range s.versions {
		if v.URL != target.URL {
			continue
		}
		v.Active = key == id
		s.versions[key] = v
	}
	return nil
}

// DeleteVersion removes a version.
func (s *VersionStore) DeleteVersion(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.versions, id)
	return nil
}

// CountVersions returns the number of stored versions.
func (s *VersionStore) CountVersions(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.versions), nil
}
