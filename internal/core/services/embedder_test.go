package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkwell-labs/inkwell-cli/internal/core/domain"
)

func newFastRetryingEmbedder(inner *mockEmbedder) *RetryingEmbedder {
	e := NewRetryingEmbedder(inner)
	e.backoff = 0
	return e
}

func TestRetryingEmbedder_PassesThroughOnSuccess(t *testing.T) {
	inner := newMockEmbedder(3)
	inner.vectors["text"] = []float32{0.1, 0.2, 0.3}
	e := newFastRetryingEmbedder(inner)

	vec, err := e.Embed(context.Background(), "text")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, vec)
	assert.Equal(t, 1, inner.calls)
}

func TestRetryingEmbedder_RetriesTransientFailures(t *testing.T) {
	inner := newMockEmbedder(3)
	inner.failTimes = 2
	e := newFastRetryingEmbedder(inner)

	_, err := e.Embed(context.Background(), "text")
	require.NoError(t, err)
	assert.Equal(t, 3, inner.calls, "two failures then a success")
}

func TestRetryingEmbedder_BoundedAttempts(t *testing.T) {
	inner := newMockEmbedder(3)
	inner.embedErr = errors.New("provider down")
	e := newFastRetryingEmbedder(inner)

	_, err := e.Embed(context.Background(), "text")
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
	assert.Equal(t, DefaultEmbedAttempts, inner.calls)
}

func TestRetryingEmbedder_ContextCancellation(t *testing.T) {
	inner := newMockEmbedder(3)
	inner.embedErr = errors.New("provider down")
	e := newFastRetryingEmbedder(inner)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Embed(ctx, "text")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrEmbeddingUnavailable)
}

func TestRetryingEmbedder_DelegatesMetadata(t *testing.T) {
	inner := newMockEmbedder(768)
	e := newFastRetryingEmbedder(inner)

	assert.Equal(t, 768, e.Dimensions())
	assert.Equal(t, "mock-embed", e.ModelName())
	assert.NoError(t, e.Ping(context.Background()))
	assert.NoError(t, e.Close())
}
