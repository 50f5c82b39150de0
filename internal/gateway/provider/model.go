package provider

import (
	"context"
	"errors"
	"fmt"
)

// ErrEmptyResponse is returned when the API answers 2xx without any content.
var ErrEmptyResponse = errors.New("empty completion response")

type ChatPayload struct {
	System string
	User   string
	// Tag labels the request in the LLM dump log, usually the persona ID.
	Tag string
}

// Usage counts tokens reported by the API for one call.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
}

func (u Usage) Total() int { return u.PromptTokens + u.CompletionTokens }

func (u Usage) Add(o Usage) Usage {
	return Usage{
		PromptTokens:     u.PromptTokens + o.PromptTokens,
		CompletionTokens: u.CompletionTokens + o.CompletionTokens,
	}
}

type Completion struct {
	Content string
	// Model is the model that actually answered, which routers may rewrite.
	Model string
	Usage Usage
}

// ModelProvider performs one chat completion.
type ModelProvider interface {
	ID() string
	Model() string
	Call(ctx context.Context, payload ChatPayload) (Completion, error)
}

// APIError is a non-2xx response from the completion endpoint.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("status=%d: %s", e.StatusCode, e.Message)
}

// Retryable reports whether the status is worth another attempt.
func (e *APIError) Retryable() bool {
	switch e.StatusCode {
	case 429, 500, 502, 503, 504:
		return true
	}
	return false
}
