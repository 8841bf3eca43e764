package driven

import (
	"context"

	"github.com/inkwell-labs/inkwell-cli/internal/core/domain"
)

// FeedbackLedger is the append-only log of rating events. No update or
// delete is exposed; corrections are new compensating entries. The ledger
// is the training substrate for the ranking model and must survive
// restarts.
type FeedbackLedger interface {
	// Append records a feedback event. Reference validation happens in
	// the service layer; implementations reject rewards outside [-1, 1]
	// with domain.ErrOutOfRange.
	Append(ctx context.Context, event *domain.FeedbackEvent) error

	// Count returns the number of recorded events.
	Count(ctx context.Context) (int, error)

	// Window returns the latest n events, oldest first. n <= 0 returns
	// the full history.
	Window(ctx context.Context, n int) ([]domain.FeedbackEvent, error)
}
