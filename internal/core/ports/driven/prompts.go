package driven

// Prompt names used by the AI agents.
const (
	// PromptWriter rewrites raw content in the target style.
	PromptWriter = "writer"

	// PromptReviewer critiques and corrects a draft.
	PromptReviewer = "reviewer"

	// PromptEditor applies a final polish, optionally with feedback.
	PromptEditor = "editor"
)

// PromptStore loads agent prompt templates.
// Templates are user-editable files with embedded defaults.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	Load(name string) (string, error)
}
