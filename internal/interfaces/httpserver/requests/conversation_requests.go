package requests

import (
	"time"

	"monarch-server/relay-api/internal/domain/chat"
)

// CreateConversationRequest models POST /api/conversations input. ID and
// timestamp fields are accepted for wire compatibility with full
// Conversation payloads but are always discarded: the server generates the
// identifier and both timestamps.
type CreateConversationRequest struct {
	ID        string         `json:"id,omitempty"`
	Title     string         `json:"title"`
	Messages  []chat.Message `json:"messages"`
	CreatedAt *time.Time     `json:"created_at,omitempty"`
	UpdatedAt *time.Time     `json:"updated_at,omitempty"`
}

// UpdateConversationRequest models PUT /api/conversations/:id input.
// Messages is required and replaces the stored list; an omitted title leaves
// the existing one untouched. Messages is a pointer so an explicitly empty
// list passes validation while an omitted field does not.
type UpdateConversationRequest struct {
	Title    *string         `json:"title,omitempty"`
	Messages *[]chat.Message `json:"messages" binding:"required"`
}
