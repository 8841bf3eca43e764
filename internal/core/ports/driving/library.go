package driving

import (
	"context"

	"github.com/inkwell-labs/inkwell-cli/internal/core/domain"
)

// LibraryService manages the versioned content store.
type LibraryService interface {
	// Save stores a version and indexes its embedding. Saving an
	// identical (url, versionType, content) triple returns the existing
	// ID without writing anything.
	Save(ctx context.Context, url, content string, t domain.VersionType,
		metadata map[string]any) (string, error)

	// Get retrieves a version by ID.
	Get(ctx context.Context, id string) (*domain.DocumentVersion, error)

	// List returns all versions for a URL in creation order.
	List(ctx context.Context, url string) ([]domain.DocumentVersion, error)

	// Activate makes the given version the only active one for its URL.
	Activate(ctx context.Context, id string) error

	// Delete permanently removes a version and its index entry.
	Delete(ctx context.Context, id string) error
}
