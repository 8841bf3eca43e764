package driven

import (
	"context"

	"github.com/inkwell-labs/inkwell-cli/internal/core/domain"
)

// VersionStore persists document versions.
// Backed by SQLite for durable storage; an in-memory variant exists for tests.
//
// Rows are append-only from the store's perspective: SaveVersion never
// overwrites an existing row with the same ID, and there is no update
// operation apart from the explicit Activate/Delete lifecycle calls driven
// by the human review workflow.
type VersionStore interface {
	// SaveVersion stores a version. Saving an ID that already exists is a
	// no-op (the idempotent-save contract lives in the service layer; the
	// store just must not duplicate).
	SaveVersion(ctx context.Context, v *domain.DocumentVersion) error

	// GetVersion retrieves a version by ID.
	// Returns domain.ErrNotFound if it does not exist.
	GetVersion(ctx context.Context, id string) (*domain.DocumentVersion, error)

	// ListVersions returns all versions for a URL, active and inactive,
	// ordered by creation time ascending.
	ListVersions(ctx context.Context, url string) ([]domain.DocumentVersion, error)

	// ListActive returns every active version.
	// Used to rebuild the similarity index at startup.
	ListActive(ctx context.Context) ([]domain.DocumentVersion, error)

	// SetActive marks the given version active and every other version of
	// the same URL inactive. Returns domain.ErrNotFound for unknown ids.
	SetActive(ctx context.Context, id string) error

	// DeleteVersion permanently removes a version.
	DeleteVersion(ctx context.Context, id string) error

	// CountVersions returns the total number of stored versions.
	CountVersions(ctx context.Context) (int, error)
}
