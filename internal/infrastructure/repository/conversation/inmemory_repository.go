package conversation

import (
	"context"
	"sync"

	"monarch-server/relay-api/internal/domain/chat"
	domain "monarch-server/relay-api/internal/domain/conversation"
)

// InMemoryRepository is a thread-safe, process-lifetime conversation store.
// Nothing is persisted: a restart loses all records, which is the documented
// contract of this service.
type InMemoryRepository struct {
	mu      sync.RWMutex
	records map[string]domain.Conversation
	order   []string
}

// NewInMemoryRepository constructs an empty store.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		records: make(map[string]domain.Conversation),
	}
}

// List returns all conversations in insertion order.
func (r *InMemoryRepository) List(ctx context.Context) ([]domain.Conversation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Conversation, 0, len(r.order))
	for _, id := range r.order {
		if conv, ok := r.records[id]; ok {
			result = append(result, cloneConversation(conv))
		}
	}
	return result, nil
}

// Get returns the conversation with the given id.
func (r *InMemoryRepository) Get(ctx context.Context, id string) (domain.Conversation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conv, ok := r.records[id]
	if !ok {
		return domain.Conversation{}, domain.ErrNotFound
	}
	return cloneConversation(conv), nil
}

// Put inserts or replaces the conversation under its id.
func (r *InMemoryRepository) Put(ctx context.Context, conv domain.Conversation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.records[conv.ID]; !exists {
		r.order = append(r.order, conv.ID)
	}
	r.records[conv.ID] = cloneConversation(conv)
	return nil
}

// Delete removes the conversation, signalling ErrNotFound for unknown ids.
func (r *InMemoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.records[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.records, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

// cloneConversation copies the record so callers cannot mutate stored state
// through the shared messages slice. An empty-but-non-nil message list stays
// non-nil so it serializes as [] rather than null.
func cloneConversation(conv domain.Conversation) domain.Conversation {
	cloned := conv
	if conv.Messages != nil {
		cloned.Messages = make([]chat.Message, len(conv.Messages))
		copy(cloned.Messages, conv.Messages)
	}
	return cloned
}
