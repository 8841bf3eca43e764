// Package tui implements the interactive review loop. It presents the
// version chain produced by the pipeline and lets the user accept a
// version as-is, hand-edit it, or send it back for another AI pass
// before it is activated.
package tui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/inkwell-labs/inkwell-cli/internal/core/domain"
	"github.com/inkwell-labs/inkwell-cli/internal/core/ports/driving"
)

// ErrReviewCancelled is returned when the user quits without accepting.
var ErrReviewCancelled = errors.New("review cancelled")

// Ensure Reviewer implements the interface.
var _ driving.Reviewer = (*Reviewer)(nil)

// Reviewer runs the bubbletea review program.
type Reviewer struct{}

// NewReviewer creates a terminal reviewer.
func NewReviewer() *Reviewer {
	return &Reviewer{}
}

// Review presents the version chain and returns the accepted text.
func (r *Reviewer) Review(ctx context.Context, chain []domain.DocumentVersion) (string, domain.VersionType, error) {
	if len(chain) == 0 {
		return "", "", fmt.Errorf("review: empty version chain")
	}

	model := newReviewModel(chain)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	final, err := program.Run()
	if err != nil {
		return "", "", fmt.Errorf("review: %w", err)
	}

	m, ok := final.(reviewModel)
	if !ok {
		return "", "", fmt.Errorf("review: unexpected model type %T", final)
	}

	if m.regen {
		return "", "", &driving.RegenerateError{Feedback: m.feedback}
	}
	if !m.accepted {
		return "", "", ErrReviewCancelled
	}
	return m.finalText, m.finalType, nil
}
