package backend

import (
	"context"
	"fmt"
)

// Completer is a text-completion backend. Implementations block until the
// backend responds or the call fails; a single attempt is made, retries are
// the caller's concern.
type Completer interface {
	Complete(ctx context.Context, prompt string) (*CompletionResult, error)
}

// Usage is the token accounting the backend reports for one completion.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// CompletionResult is the outcome of one completion call. It is not
// modified after being returned.
type CompletionResult struct {
	// Text is the raw response body from the backend.
	Text string
	// Usage is nil when the backend omitted usage metadata.
	Usage *Usage
	// Cost is derived from Usage and the per-model price table. When Usage
	// is absent the cost is reported as unknown, never as zero.
	Cost CostEstimate
}

// Error is a failure from the completion backend: a transport error, a
// non-success HTTP status, or a response that could not be decoded.
type Error struct {
	// StatusCode is the HTTP status, or 0 when the request never got a
	// response.
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("backend error (HTTP %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("backend error: %s", e.Message)
}
