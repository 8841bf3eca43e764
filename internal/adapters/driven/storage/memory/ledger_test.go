package memory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkwell-labs/inkwell-cli/internal/core/domain"
)

func newEvent(n int) *domain.FeedbackEvent {
	return &domain.FeedbackEvent{
		ID:        fmt.Sprintf("event-%d", n),
		Query:     "how to brew coffee",
		ResultID:  "v1",
		Features:  domain.Features{Similarity: 0.8, ContentLength: 120},
		Reward:    0.5,
		CreatedAt: time.Now(),
	}
}

func TestFeedbackLedger_AppendAndCount(t *testing.T) {
	ledger := NewFeedbackLedger()
	ctx := context.Background()

	count, err := ledger.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	for i := 0; i < 3; i++ {
		require.NoError(t, ledger.Append(ctx, newEvent(i)))
	}

	count, err = ledger.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestFeedbackLedger_Append_RejectsOutOfRangeReward(t *testing.T) {
	ledger := NewFeedbackLedger()
	ctx := context.Background()

	event := newEvent(0)
	event.Reward = 1.5

	err := ledger.Append(ctx, event)

	assert.ErrorIs(t, err, domain.ErrOutOfRange)

	count, err := ledger.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestFeedbackLedger_Window_OldestFirst(t *testing.T) {
	ledger := NewFeedbackLedger()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, ledger.Append(ctx, newEvent(i)))
	}

	events, err := ledger.Window(ctx, 3)

	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, "event-2", events[0].ID)
	assert.Equal(t, "event-3", events[1].ID)
	assert.Equal(t, "event-4", events[2].ID)
}

func TestFeedbackLedger_Window_ZeroReturnsAll(t *testing.T) {
	ledger := NewFeedbackLedger()
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		require.NoError(t, ledger.Append(ctx, newEvent(i)))
	}

	events, err := ledger.Window(ctx, 0)

	require.NoError(t, err)
	require.Len(t, events, 4)
	assert.Equal(t, "event-0", events[0].ID)
	assert.Equal(t, "event-3", events[3].ID)
}

func TestFeedbackLedger_Window_LargerThanHistory(t *testing.T) {
	ledger := NewFeedbackLedger()
	ctx := context.Background()

	require.NoError(t, ledger.Append(ctx, newEvent(0)))

	events, err := ledger.Window(ctx, 10)

	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestFeedbackLedger_Window_CopiesEvents(t *testing.T) {
	ledger := NewFeedbackLedger()
	ctx := context.Background()

	require.NoError(t, ledger.Append(ctx, newEvent(0)))

	events, err := ledger.Window(ctx, 0)
	require.NoError(t, err)
	events[0].Reward = -1

	again, err := ledger.Window(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, 0.5, again[0].Reward)
}
