package llm

import "context"

// Role identifies the author of a chat message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one role/content pair of a chat request.
type Message struct {
	Role    Role
	Content string
}

// ChatRequest is built per call and never retained. Model is filled in by the
// client when left empty.
type ChatRequest struct {
	Model       string
	Messages    []Message
	Temperature float64
	MaxTokens   int
}

// Client is a minimal LLM interface to allow pluggable providers.
type Client interface {
	// Complete issues a single completion call authorized by credential and
	// returns the first choice's text.
	Complete(ctx context.Context, credential string, req ChatRequest) (string, error)
}
