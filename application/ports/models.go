package ports

import "context"

// ModelClient is one configured language model. Transport, prompt templates
// and provider quirks live behind this boundary: the core only needs "send
// prompt, get text back" with the caller controlling the deadline.
type ModelClient interface {
	// ID returns the model identifier used for ranking and observability
	ID() string
	// Invoke sends a prompt and returns the raw response text. It must
	// respect ctx cancellation and deadlines.
	Invoke(ctx context.Context, prompt string) (string, error)
}
