package conversation

import (
	"errors"
	"time"

	"monarch-server/relay-api/internal/domain/chat"
)

// DefaultTitle is assigned when an upsert creates a conversation without a
// caller-supplied title.
const DefaultTitle = "New Conversation"

// ErrNotFound is returned when a conversation identifier is unknown.
var ErrNotFound = errors.New("conversation not found")

// Conversation is a stored transcript of chat messages. The identifier is
// generated server-side on creation and immutable afterwards.
type Conversation struct {
	ID        string         `json:"id"`
	Title     string         `json:"title"`
	Messages  []chat.Message `json:"messages"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// CreateParams carries caller input for Create. Any caller-supplied
// identifier or timestamps are discarded before this point.
type CreateParams struct {
	Title    string
	Messages []chat.Message
}

// UpdateParams carries caller input for Update. Messages always replace the
// stored list; Title is applied only when non-nil.
type UpdateParams struct {
	Title    *string
	Messages []chat.Message
}
