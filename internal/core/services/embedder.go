package services

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/inkwell-labs/inkwell-cli/internal/core/domain"
	"github.com/inkwell-labs/inkwell-cli/internal/core/ports/driven"
	"github.com/inkwell-labs/inkwell-cli/internal/logger"
)

// Ensure RetryingEmbedder implements the interface.
var _ driven.EmbeddingService = (*RetryingEmbedder)(nil)

// Default embedding resilience settings.
const (
	DefaultEmbedAttempts = 3
	DefaultEmbedTimeout  = 30 * time.Second
	DefaultEmbedBackoff  = 500 * time.Millisecond
	defaultEmbedRPS      = 10
)

// RetryingEmbedder wraps an embedding service with a rate limiter, a
// per-call timeout, and bounded retries with exponential backoff. Provider
// failures surface as domain.ErrEmbeddingUnavailable instead of hanging
// the save or query path.
type RetryingEmbedder struct {
	svc      driven.EmbeddingService
	limiter  *rate.Limiter
	attempts int
	timeout  time.Duration
	backoff  time.Duration
}

// NewRetryingEmbedder wraps svc with the default resilience settings.
func NewRetryingEmbedder(svc driven.EmbeddingService) *RetryingEmbedder {
	return &RetryingEmbedder{
		svc:      svc,
		limiter:  rate.NewLimiter(rate.Limit(defaultEmbedRPS), defaultEmbedRPS),
		attempts: DefaultEmbedAttempts,
		timeout:  DefaultEmbedTimeout,
		backoff:  DefaultEmbedBackoff,
	}
}

// Embed generates an embedding, retrying transient provider failures.
func (e *RetryingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	var lastErr error

	for attempt := 0; attempt < e.attempts; attempt++ {
		if err := e.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("embedding rate limit: %w", err)
		}

		callCtx, cancel := context.WithTimeout(ctx, e.timeout)
		vec, err := e.svc.Embed(callCtx, text)
		cancel()

		if err == nil {
			return vec, nil
		}
		lastErr = err
		logger.Warn("Embedding attempt %d/%d failed: %v", attempt+1, e.attempts, err)

		if attempt == e.attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(e.backoff << attempt):
		}
	}

	return nil, fmt.Errorf("%w: %v", domain.ErrEmbeddingUnavailable, lastErr)
}

// Dimensions returns the wrapped service's vector size.
func (e *RetryingEmbedder) Dimensions() int { return e.svc.Dimensions() }

// ModelName returns the wrapped service's model name.
func (e *RetryingEmbedder) ModelName() string { return e.svc.ModelName() }

// Ping validates the wrapped service is reachable.
func (e *RetryingEmbedder) Ping(ctx context.Context) error { return e.svc.Ping(ctx) }

// Close releases the wrapped service's resources.
func (e *RetryingEmbedder) Close() error { return e.svc.Close() }
