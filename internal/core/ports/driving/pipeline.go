package driving

import (
	"context"

	"github.com/inkwell-labs/inkwell-cli/internal/core/domain"
)

// PipelineService runs the ingest pipeline: fetch, AI stages, human
// review, final save.
type PipelineService interface {
	// Process ingests a URL end to end and returns a report of the saved
	// versions. A nil reviewer accepts the last AI stage unchanged.
	Process(ctx context.Context, url string, reviewer Reviewer) (*ProcessReport, error)
}

// Reviewer is the human-in-the-loop collaborator. The TUI implements it;
// batch runs pass nil.
type Reviewer interface {
	// Review presents the version chain and returns the final text. The
	// returned version type is domain.VersionManualEdit when the human
	// changed the text, otherwise the type of the accepted version.
	// Returning a *RegenerateError asks the pipeline for another editor
	// pass instead of accepting.
	Review(ctx context.Context, chain []domain.DocumentVersion) (string, domain.VersionType, error)
}

// RegenerateError is returned by a Reviewer to request another editor pass
// over the latest draft. Feedback carries the reviewer's instructions for
// that pass.
type RegenerateError struct {
	Feedback string
}

func (e *RegenerateError) Error() string {
	return "regeneration requested"
}

// ProcessReport summarises one pipeline run.
type ProcessReport struct {
	// URL is the processed location.
	URL string

	// VersionIDs maps each produced stage to its stored version ID, in
	// production order.
	VersionIDs []StageVersion

	// FinalID is the ID of the accepted, activated version.
	FinalID string

	// FinalText is the accepted content.
	FinalText string
}

// StageVersion pairs a pipeline stage with the version it stored.
type StageVersion struct {
	Type domain.VersionType
	ID   string
}
