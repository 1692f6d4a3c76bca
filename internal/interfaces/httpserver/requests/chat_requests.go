package requests

import "monarch-server/relay-api/internal/domain/chat"

// ChatCompletionRequest models POST /api/chat/completions input.
type ChatCompletionRequest struct {
	Messages  []chat.Message `json:"messages" binding:"required"`
	Model     string         `json:"model,omitempty"`
	MaxTokens *int           `json:"max_tokens,omitempty"`
	Stream    *bool          `json:"stream,omitempty"`
}
