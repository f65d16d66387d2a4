// Package compose produces the final natural-language answer from retrieved
// context, via an optional generation backend with a template fallback.
package compose

import "context"

// Generator is a text-generation backend. Absence or failure of a backend is
// a handled state: the composer degrades to the template path instead of
// surfacing the error.
type Generator interface {
	// Generate returns the model's response to the system instruction and
	// user prompt. Implementations must honor ctx cancellation/deadline.
	Generate(ctx context.Context, systemInstruction, userPrompt string) (string, error)
	// Name identifies the backend in logs and /status.
	Name() string
}
