// Package llm is the model-backend boundary: an opaque text-generation call
// with retry support. Everything above it treats the backend as a function
// from messages to text.
package llm

import "context"

// Message represents a chat message.
type Message struct {
	Role    string `json:"role"`    // "system", "user", or "assistant"
	Content string `json:"content"` // Message content
}

// Request defines a completion request.
type Request struct {
	// Model overrides the client's default model when non-empty. The intent
	// classifier decides whether a turn warrants the expensive tier.
	Model string

	// Messages is the chat history to send.
	Messages []Message

	// Temperature controls randomness. nil uses the endpoint default.
	Temperature *float64

	// MaxTokens limits response length. 0 uses the endpoint default.
	MaxTokens int
}

// Response contains the completion result.
type Response struct {
	// RequestID uniquely identifies this call for log correlation.
	RequestID string

	// Content is the generated text.
	Content string

	// Model is the model that actually served the request.
	Model string

	// TotalTokens is the total tokens consumed, if reported.
	TotalTokens int
}

// Generator is the opaque generate(prompt) -> text boundary. A backend
// failure or timeout here is the only error class that propagates to the
// chat caller as a hard failure.
type Generator interface {
	Complete(ctx context.Context, req Request) (*Response, error)
}
