package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/inkwell-labs/inkwell-cli/internal/core/domain"
	"github.com/inkwell-labs/inkwell-cli/internal/core/ports/driven"
	"github.com/inkwell-labs/inkwell-cli/internal/core/ports/driving"
	"github.com/inkwell-labs/inkwell-cli/internal/logger"
)

// Ensure PipelineService implements the interface.
var _ driving.PipelineService = (*PipelineService)(nil)

// minContentLength rejects pages that reduced to boilerplate scraps.
const minContentLength = 50

// defaultMaxReviewRounds bounds regeneration requests per review session.
const defaultMaxReviewRounds = 3

// PipelineService runs the ingest pipeline: fetch a page, put it through
// the writer/reviewer/editor agents, let a human review the chain, then
// save and activate the accepted version. Each stage's output is saved as
// its own version so the whole chain stays auditable and revertable.
type PipelineService struct {
	fetcher   driven.Fetcher
	agents    driven.Agents
	library   driving.LibraryService
	maxRounds int
}

// NewPipelineService creates a new pipeline service. The agents parameter
// is optional (can be nil); without it the AI stages pass content through.
// maxRounds <= 0 uses defaultMaxReviewRounds.
func NewPipelineService(
	fetcher driven.Fetcher,
	agents driven.Agents,
	library driving.LibraryService,
	maxRounds int,
) *PipelineService {
	if maxRounds <= 0 {
		maxRounds = defaultMaxReviewRounds
	}
	return &PipelineService{
		fetcher:   fetcher,
		agents:    agents,
		library:   library,
		maxRounds: maxRounds,
	}
}

// Process ingests a URL end to end.
func (s *PipelineService) Process(
	ctx context.Context, url string, reviewer driving.Reviewer,
) (*driving.ProcessReport, error) {
	logger.Section("Pipeline")

	page, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	if len(page.Text) < minContentLength {
		return nil, fmt.Errorf("fetch %s: %d chars of text: %w", url, len(page.Text), domain.ErrInvalidInput)
	}
	logger.Info("Fetched %d chars from %s", len(page.Text), url)

	report := &driving.ProcessReport{URL: url}
	meta := map[string]any{"title": page.Title}

	save := func(text string, t domain.VersionType) (string, error) {
		id, err := s.library.Save(ctx, url, text, t, meta)
		if err != nil {
			return "", fmt.Errorf("save %s: %w", t, err)
		}
		report.VersionIDs = append(report.VersionIDs, driving.StageVersion{Type: t, ID: id})
		return id, nil
	}

	if _, err := save(page.Text, domain.VersionOriginal); err != nil {
		return nil, err
	}

	spun := s.runStage("writer", page.Text, func(c context.Context) (string, error) {
		return s.agents.Spin(c, page.Text)
	}, ctx)
	if _, err := save(spun, domain.VersionAISpun); err != nil {
		return nil, err
	}

	reviewed := s.runStage("reviewer", spun, func(c context.Context) (string, error) {
		return s.agents.Review(c, spun, page.Text)
	}, ctx)
	if _, err := save(reviewed, domain.VersionAIReviewed); err != nil {
		return nil, err
	}

	edited := s.runStage("editor", reviewed, func(c context.Context) (string, error) {
		return s.agents.Edit(c, reviewed, "")
	}, ctx)
	editedID, err := save(edited, domain.VersionAIEdited)
	if err != nil {
		return nil, err
	}

	finalText, finalType, finalID := edited, domain.VersionAIEdited, editedID
	if reviewer != nil {
		finalText, finalType, finalID, err = s.reviewLoop(ctx, url, edited, reviewer, save)
		if err != nil {
			return nil, err
		}
	}

	if err := s.library.Activate(ctx, finalID); err != nil {
		return nil, fmt.Errorf("activate final: %w", err)
	}

	report.FinalID = finalID
	report.FinalText = finalText
	logger.Info("Pipeline complete: final version %s (%s)", finalID, finalType)
	return report, nil
}

// reviewLoop drives the human review session. A regeneration request runs
// the editor over the latest draft with the reviewer's feedback and
// re-presents the grown chain, at most maxRounds times; past the limit, or
// without agents, the latest draft is accepted with a warning.
func (s *PipelineService) reviewLoop(
	ctx context.Context, url, draft string, reviewer driving.Reviewer,
	save func(string, domain.VersionType) (string, error),
) (string, domain.VersionType, string, error) {
	for round := 0; ; round++ {
		chain, err := s.library.List(ctx, url)
		if err != nil {
			return "", "", "", fmt.Errorf("load version chain: %w", err)
		}

		text, t, err := reviewer.Review(ctx, chain)
		var regen *driving.RegenerateError
		switch {
		case errors.As(err, &regen):
			if s.agents == nil {
				logger.Warn("Regeneration needs a configured LLM, keeping latest draft")
				text, t = draft, domain.VersionAIEdited
			} else if round >= s.maxRounds {
				logger.Warn("Regeneration limit (%d) reached, keeping latest draft", s.maxRounds)
				text, t = draft, domain.VersionAIEdited
			} else {
				draft = s.runStage("editor", draft, func(c context.Context) (string, error) {
					return s.agents.Edit(c, draft, regen.Feedback)
				}, ctx)
				if _, err := save(draft, domain.VersionAIEdited); err != nil {
					return "", "", "", err
				}
				continue
			}
		case err != nil:
			return "", "", "", fmt.Errorf("human review: %w", err)
		}

		// Idempotent: accepting an existing stage unchanged returns its id.
		id, err := save(text, t)
		if err != nil {
			return "", "", "", err
		}
		return text, t, id, nil
	}
}

// runStage executes one AI stage, degrading to the stage input when no
// agents are configured or the call fails. The original text is always
// preserved somewhere in the chain, so a flaky LLM never loses content.
func (s *PipelineService) runStage(
	name, fallback string, fn func(context.Context) (string, error), ctx context.Context,
) string {
	if s.agents == nil {
		logger.Debug("Stage %s skipped: no agents configured", name)
		return fallback
	}
	out, err := fn(ctx)
	if err != nil || out == "" {
		logger.Warn("Stage %s failed, passing text through: %v", name, err)
		return fallback
	}
	logger.Debug("Stage %s complete (%d chars)", name, len(out))
	return out
}
