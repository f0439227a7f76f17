package ai

import "context"

// Outcome labels how a reply was produced.
type Outcome string

const (
	// OutcomeAnswered means the model produced the reply.
	OutcomeAnswered Outcome = "answered"
	// OutcomeFormatError means the provider rejected the request payload.
	OutcomeFormatError Outcome = "format_error"
	// OutcomeUnavailable means every attempt failed and the fallback reply was used.
	OutcomeUnavailable Outcome = "unavailable"
)

// Reply is what the assistant says back, always safe to show to the user.
type Reply struct {
	Text     string
	Outcome  Outcome
	Attempts int
}

// Assistant answers hiking questions.
type Assistant interface {
	Ask(ctx context.Context, question string) Reply
}
