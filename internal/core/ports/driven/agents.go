package driven

import "context"

// Agents groups the three AI edit stages. Each stage is a text-to-text
// transform built on the LLM service; none carries algorithmic weight.
// A nil Agents (or an unavailable LLM) degrades to passing text through.
type Agents interface {
	// Spin rewrites raw content in the configured style.
	Spin(ctx context.Context, text string) (string, error)

	// Review critiques and corrects a draft, with the original available
	// for reference.
	Review(ctx context.Context, draft, original string) (string, error)

	// Edit applies a final polish, optionally steered by feedback.
	Edit(ctx context.Context, draft, feedback string) (string, error)
}
