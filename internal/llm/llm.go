// Package llm abstracts one-shot text completion over the Copilot SDK. The
// generation stages only ever need "send a prompt, get the final text back",
// so that is the whole interface.
package llm

import (
	"context"
	"time"
)

// Completer executes a single completion round-trip.
type Completer interface {
	// Complete sends the prompt and blocks until the model's final response
	// (or the request deadline).
	Complete(ctx context.Context, req *CompletionRequest) (*CompletionResult, error)

	// Shutdown cleans up resources.
	Shutdown(ctx context.Context) error
}

// CompletionRequest describes one completion call.
type CompletionRequest struct {
	// System frames the model's role and output contract. It is prepended to
	// the prompt as the session has a single message channel.
	System string

	// Prompt is the user-turn content.
	Prompt string

	// Model overrides the engine's default model when non-empty.
	Model string

	// Timeout bounds the round-trip. Required; the engine rejects
	// non-positive values rather than issuing an unbounded call.
	Timeout time.Duration
}

// CompletionResult is the model's final output.
type CompletionResult struct {
	Text       string
	ModelID    string
	DurationMs int64
}
