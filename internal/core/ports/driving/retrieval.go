package driving

import (
	"context"

	"github.com/inkwell-labs/inkwell-cli/internal/core/domain"
)

// RetrievalService answers similarity queries with learned ranking and
// records the feedback that trains it.
type RetrievalService interface {
	// Query returns up to k versions ordered by predicted relevance.
	Query(ctx context.Context, text string, k int) ([]domain.RetrievalResult, error)

	// Rate records a 1-5 star rating for a previously returned result and
	// may trigger a synchronous retrain.
	Rate(ctx context.Context, query, resultID string, stars int) error

	// Statistics reports store, ledger, and model state.
	Statistics(ctx context.Context) (*domain.Statistics, error)
}
