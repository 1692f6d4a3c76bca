package conversation

import "context"

// Repository exposes keyed access to stored conversations. Implementations
// must be safe for concurrent use; ErrNotFound signals an unknown id.
type Repository interface {
	List(ctx context.Context) ([]Conversation, error)
	Get(ctx context.Context, id string) (Conversation, error)
	Put(ctx context.Context, conv Conversation) error
	Delete(ctx context.Context, id string) error
}
