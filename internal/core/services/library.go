package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/inkwell-labs/inkwell-cli/internal/core/domain"
	"github.com/inkwell-labs/inkwell-cli/internal/core/ports/driven"
	"github.com/inkwell-labs/inkwell-cli/internal/core/ports/driving"
	"github.com/inkwell-labs/inkwell-cli/internal/logger"
)

// Ensure LibraryService implements the interface.
var _ driving.LibraryService = (*LibraryService)(nil)

// LibraryService owns the versioned content store: idempotent saves,
// embedding, index maintenance, and the activate/delete lifecycle.
type LibraryService struct {
	store    driven.VersionStore
	index    driven.SimilarityIndex
	embedder driven.EmbeddingService

	saveLocks keyedMutex
}

// NewLibraryService creates a new library service. The embedder should be
// wrapped in a RetryingEmbedder so provider outages surface as bounded
// failures.
func NewLibraryService(
	store driven.VersionStore,
	index driven.SimilarityIndex,
	embedder driven.EmbeddingService,
) *LibraryService {
	return &LibraryService{
		store:    store,
		index:    index,
		embedder: embedder,
	}
}

// Save stores a version and indexes its embedding.
//
// The ID is derived from (url, versionType, content), so saving an
// identical triple short-circuits and returns the existing ID without a
// second write, embed, or index entry. Concurrent saves of the same triple
// are serialized per ID; at most one write wins.
//
// The embedding is computed before the row is persisted: if the provider
// fails after bounded retries, the save fails atomically and no
// un-embedded version is left behind.
func (s *LibraryService) Save(
	ctx context.Context, url, content string, t domain.VersionType, metadata map[string]any,
) (string, error) {
	if url == "" || content == "" {
		return "", fmt.Errorf("save: url and content required: %w", domain.ErrInvalidInput)
	}
	if !t.Valid() {
		return "", fmt.Errorf("save: version type %q: %w", t, domain.ErrInvalidVersionType)
	}

	id := domain.VersionID(url, t, content)

	unlock := s.saveLocks.lock(id)
	defer unlock()

	if existing, err := s.store.GetVersion(ctx, id); err == nil {
		logger.Debug("Save short-circuit: version %s already stored", existing.ID)
		return existing.ID, nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		return "", fmt.Errorf("save: check existing: %w", err)
	}

	embedding, err := s.embedder.Embed(ctx, content)
	if err != nil {
		return "", fmt.Errorf("save %s: %w", id, err)
	}

	v := &domain.DocumentVersion{
		ID:        id,
		URL:       url,
		Content:   content,
		Type:      t,
		Embedding: embedding,
		Active:    true,
		Metadata:  enrichMetadata(metadata, content),
		CreatedAt: time.Now().UTC(),
	}

	if err := s.store.SaveVersion(ctx, v); err != nil {
		return "", fmt.Errorf("save %s: %w", id, err)
	}

	if err := s.index.Upsert(ctx, id, embedding); err != nil {
		// Keep store and index consistent: a version that cannot be
		// indexed must not be searchable or linger half-saved.
		if delErr := s.store.DeleteVersion(ctx, id); delErr != nil {
			logger.Warn("Rollback of version %s failed: %v", id, delErr)
		}
		return "", fmt.Errorf("index %s: %w", id, err)
	}

	logger.Info("Saved version %s (%s, %d chars)", id, t, len(content))
	return id, nil
}

// Get retrieves a version by ID.
func (s *LibraryService) Get(ctx context.Context, id string) (*domain.DocumentVersion, error) {
	return s.store.GetVersion(ctx, id)
}

// List returns all versions for a URL, oldest first.
func (s *LibraryService) List(ctx context.Context, url string) ([]domain.DocumentVersion, error) {
	return s.store.ListVersions(ctx, url)
}

// Activate makes the given version the only active one for its URL and
// syncs the similarity index: superseded versions leave the search space
// but their rows are retained for audit and revert.
func (s *LibraryService) Activate(ctx context.Context, id string) error {
	target, err := s.store.GetVersion(ctx, id)
	if err != nil {
		return fmt.Errorf("activate %s: %w", id, err)
	}

	if err := s.store.SetActive(ctx, id); err != nil {
		return fmt.Errorf("activate %s: %w", id, err)
	}

	siblings, err := s.store.ListVersions(ctx, target.URL)
	if err != nil {
		return fmt.Errorf("activate %s: list siblings: %w", id, err)
	}
	for i := range siblings {
		v := &siblings[i]
		if v.ID == id {
			if err := s.index.Upsert(ctx, v.ID, v.Embedding); err != nil {
				return fmt.Errorf("activate %s: index: %w", id, err)
			}
			continue
		}
		if err := s.index.Delete(ctx, v.ID); err != nil {
			return fmt.Errorf("activate %s: unindex %s: %w", id, v.ID, err)
		}
	}

	logger.Info("Version %s is now the only active version for %s", id, target.URL)
	return nil
}

// Delete permanently removes a version and its index entry.
func (s *LibraryService) Delete(ctx context.Context, id string) error {
	if _, err := s.store.GetVersion(ctx, id); err != nil {
		return fmt.Errorf("delete %s: %w", id, err)
	}
	if err := s.store.DeleteVersion(ctx, id); err != nil {
		return fmt.Errorf("delete %s: %w", id, err)
	}
	if err := s.index.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete %s: unindex: %w", id, err)
	}
	return nil
}

// RebuildIndex loads every active version into the similarity index.
// Called once at startup; returns the number of vectors indexed.
func (s *LibraryService) RebuildIndex(ctx context.Context) (int, error) {
	versions, err := s.store.ListActive(ctx)
	if err != nil {
		return 0, fmt.Errorf("rebuild index: %w", err)
	}
	for i := range versions {
		if err := s.index.Upsert(ctx, versions[i].ID, versions[i].Embedding); err != nil {
			return i, fmt.Errorf("rebuild index: %s: %w", versions[i].ID, err)
		}
	}
	logger.Debug("Similarity index rebuilt with %d vectors", len(versions))
	return len(versions), nil
}

// enrichMetadata copies the caller's metadata and adds the standard
// content measurements.
func enrichMetadata(metadata map[string]any, content string) map[string]any {
	out := make(map[string]any, len(metadata)+2)
	for k, v := range metadata {
		out[k] = v
	}
	out["char_count"] = len(content)
	out["word_count"] = len(strings.Fields(content))
	return out
}

// keyedMutex serializes operations per key.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyLock
}

type keyLock struct {
	sync.Mutex
	refs int
}

// lock acquires the mutex for key and returns its release function.
func (m *keyedMutex) lock(key string) func() {
	m.mu.Lock()
	if m.locks == nil {
		m.locks = make(map[string]*keyLock)
	}
	kl, ok := m.locks[key]
	if !ok {
		kl = &keyLock{}
		m.locks[key] = kl
	}
	kl.refs++
	m.mu.Unlock()

	kl.Lock()
	return func() {
		kl.Unlock()
		m.mu.Lock()
		kl.refs--
		if kl.refs == 0 {
			delete(m.locks, key)
		}
		m.mu.Unlock()
	}
}
