package memory

import (
	"context"
	"sync"

	"github.com/inkwell-labs/inkwell-cli/internal/core/domain"
	"github.com/inkwell-labs/inkwell-cli/internal/core/ports/driven"
)

// Ensure FeedbackLedger implements the interface.
var _ driven.FeedbackLedger = (*FeedbackLedger)(nil)

// FeedbackLedger is an in-memory implementation of driven.FeedbackLedger.
// Events are held in append order.
type FeedbackLedger struct {
	mu     sync.RWMutex
	events []domain.FeedbackEvent
}

// NewFeedbackLedger creates a new in-memory feedback ledger.
func NewFeedbackLedger() *FeedbackLedger {
	return &FeedbackLedger{}
}

// Append records a feedback event. Events with a reward outside [-1, 1]
// are rejected with domain.ErrOutOfRange.
func (l *FeedbackLedger) Append(_ context.Context, event *domain.FeedbackEvent) error {
	if !domain.ValidReward(event.Reward) {
		return domain.ErrOutOfRange
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, *event)
	return nil
}

// Count returns the number of recorded events.
func (l *FeedbackLedger) Count(_ context.Context) (int, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.events), nil
}

// Window returns the latest n events, oldest first. n <= 0 returns all.
func (l *FeedbackLedger) Window(_ context.Context, n int) ([]domain.FeedbackEvent, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	start := 0
	if n > 0 && n < len(l.events) {
		start = len(l.events) - n
	}
	out := make([]domain.FeedbackEvent, len(l.events)-start)
	copy(out, l.events[start:])
	return out, nil
}
