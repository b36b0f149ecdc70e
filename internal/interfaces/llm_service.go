package interfaces

import "context"

// Summarizer produces narrative analysis text from a prompt. The report
// generator treats an unconfigured or failing summarizer as a signal to fall
// back to rule-based analysis; it never surfaces the error to callers.
type Summarizer interface {
	// Summarize returns the model's narrative for the given prompt.
	// maxTokens <= 0 uses the implementation default.
	Summarize(ctx context.Context, prompt string, maxTokens int) (string, error)

	// IsConfigured reports whether a usable model and API key are available.
	// When false, Summarize must not be called.
	IsConfigured() bool
}
