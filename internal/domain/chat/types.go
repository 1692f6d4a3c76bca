package chat

import (
	"context"
	"encoding/json"
)

// Message is a single chat message. Ordering within a conversation is
// chronological and significant.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// DefaultMaxTokens is applied when the caller does not supply a token budget.
const DefaultMaxTokens = 500

// CompletionParams carries one chat completion request through the service.
type CompletionParams struct {
	Messages  []Message
	Model     string
	MaxTokens int
	Stream    bool
}

// CompletionPayload is the JSON body posted to the upstream endpoint.
type CompletionPayload struct {
	Messages  []Message `json:"messages"`
	MaxTokens int       `json:"max_tokens"`
	Stream    bool      `json:"stream,omitempty"`
}

// Stream yields the upstream response body chunk by chunk. Next returns
// io.EOF once the upstream closes the stream.
type Stream interface {
	Next() ([]byte, error)
	Close() error
}

// TokenProvider supplies a bearer token for the upstream endpoint.
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
}

// UpstreamClient performs a single attempt against the upstream completion
// endpoint. Retries live in the service, not here.
type UpstreamClient interface {
	CreateChatCompletion(ctx context.Context, model string, payload CompletionPayload) (json.RawMessage, error)
	CreateChatCompletionStream(ctx context.Context, model string, payload CompletionPayload) (Stream, error)
}
