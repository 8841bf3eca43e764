// Package ai implements the writer, reviewer, and editor agents on top
// of an LLM service. Each agent is a single prompt-and-generate round;
// prompt templates come from a PromptStore with embedded fallbacks.
package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/inkwell-labs/inkwell-cli/internal/core/domain"
	"github.com/inkwell-labs/inkwell-cli/internal/core/ports/driven"
)

// Ensure Agents implements the interface.
var _ driven.Agents = (*Agents)(nil)

// Default generation parameters per stage. The writer runs hot for
// variety, the reviewer and editor run cool for fidelity.
const (
	writerTemperature   = 0.9
	reviewerTemperature = 0.3
	editorTemperature   = 0.4

	defaultMaxTokens = 4096
)

// Fallback prompt templates used when the prompt store has no override.
const (
	defaultWriterPrompt = `You are a skilled ghostwriter. Rewrite the following chapter in an engaging,
fluent style. Preserve the plot, characters, and factual content exactly.
Return ONLY the rewritten chapter text, nothing else.

Chapter:
%s`

	defaultReviewerPrompt = `You are a meticulous literary reviewer. Compare the draft against the
original and correct any drift in plot, names, or facts. Improve clarity
where the draft is weaker than the original.
Return ONLY the corrected chapter text, nothing else.

Original:
%s

Draft:
%s`

	defaultEditorPrompt = `You are a copy editor. Polish the following draft for grammar, pacing,
and consistency. %s
Return ONLY the final chapter text, nothing else.

Draft:
%s`
)

// Agents runs the three-stage rewrite pipeline against an LLM.
type Agents struct {
	llm     driven.LLMService
	prompts driven.PromptStore
}

// NewAgents creates the agent set. The prompt store may be nil, in which
// case the embedded default prompts are used.
func NewAgents(llm driven.LLMService, prompts driven.PromptStore) *Agents {
	return &Agents{llm: llm, prompts: prompts}
}

// Spin rewrites raw content in the configured style.
func (a *Agents) Spin(ctx context.Context, text string) (string, error) {
	template := a.loadPrompt(driven.PromptWriter, defaultWriterPrompt)
	return a.generate(ctx, fmt.Sprintf(template, text), writerTemperature)
}

// Review critiques and corrects a draft against the original.
func (a *Agents) Review(ctx context.Context, draft, original string) (string, error) {
	template := a.loadPrompt(driven.PromptReviewer, defaultReviewerPrompt)
	return a.generate(ctx, fmt.Sprintf(template, original, draft), reviewerTemperature)
}

// Edit applies a final polish, optionally steered by feedback.
func (a *Agents) Edit(ctx context.Context, draft, feedback string) (string, error) {
	instruction := ""
	if feedback != "" {
		instruction = "Apply this feedback: " + feedback + "."
	}

	template := a.loadPrompt(driven.PromptEditor, defaultEditorPrompt)
	return a.generate(ctx, fmt.Sprintf(template, instruction, draft), editorTemperature)
}

func (a *Agents) generate(ctx context.Context, prompt string, temperature float64) (string, error) {
	if a.llm == nil {
		return "", domain.ErrLLMUnavailable
	}

	result, err := a.llm.Generate(ctx, prompt, driven.GenerateOptions{
		MaxTokens:   defaultMaxTokens,
		Temperature: temperature,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrLLMUnavailable, err)
	}

	text := strings.TrimSpace(result)
	if text == "" {
		return "", fmt.Errorf("%w: empty completion", domain.ErrLLMUnavailable)
	}
	return text, nil
}

// loadPrompt loads a prompt from the store, falling back to the default if unavailable.
func (a *Agents) loadPrompt(name, fallback string) string {
	if a.prompts == nil {
		return fallback
	}
	prompt, err := a.prompts.Load(name)
	if err != nil || prompt == "" {
		return fallback
	}
	return prompt
}
