package conversation

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"monarch-server/relay-api/internal/domain/chat"
	"monarch-server/relay-api/internal/infrastructure/metrics"
	"monarch-server/relay-api/internal/utils/idgen"
	"monarch-server/relay-api/internal/utils/platformerrors"
)

// Service describes the business logic surface for conversation bookkeeping.
type Service interface {
	List(ctx context.Context) ([]Conversation, error)
	Get(ctx context.Context, id string) (Conversation, error)
	Create(ctx context.Context, params CreateParams) (Conversation, error)
	Update(ctx context.Context, id string, params UpdateParams) (Conversation, error)
	Delete(ctx context.Context, id string) error
}

type service struct {
	repo Repository
	log  zerolog.Logger
	now  func() time.Time
}

// NewService wires the conversation service with its repository.
func NewService(repo Repository, log zerolog.Logger) Service {
	return &service{
		repo: repo,
		log:  log.With().Str("component", "conversation-service").Logger(),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

func (s *service) List(ctx context.Context) ([]Conversation, error) {
	conversations, err := s.repo.List(ctx)
	if err != nil {
		return nil, platformerrors.AsError(platformerrors.LayerDomain, err, "list conversations")
	}
	metrics.RecordConversationOp("list", "ok")
	return conversations, nil
}

func (s *service) Get(ctx context.Context, id string) (Conversation, error) {
	conv, err := s.repo.Get(ctx, id)
	if err != nil {
		metrics.RecordConversationOp("get", "not_found")
		return Conversation{}, s.mapNotFound(err, id, "get conversation")
	}
	metrics.RecordConversationOp("get", "ok")
	return conv, nil
}

// Create stores a fresh conversation. Caller-supplied identifiers and
// timestamps never reach this layer; the id is generated here and both
// timestamps are set to the same instant.
func (s *service) Create(ctx context.Context, params CreateParams) (Conversation, error) {
	id, err := idgen.GenerateSecureID("conv", 16)
	if err != nil {
		return Conversation{}, platformerrors.NewError(platformerrors.LayerDomain, platformerrors.ErrorTypeInternal,
			"generate conversation id", err)
	}

	now := s.now()
	conv := Conversation{
		ID:        id,
		Title:     params.Title,
		Messages:  normalizeMessages(params.Messages),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Put(ctx, conv); err != nil {
		return Conversation{}, platformerrors.AsError(platformerrors.LayerDomain, err, "store conversation")
	}

	s.log.Info().Str("conversation_id", id).Msg("conversation created")
	metrics.RecordConversationOp("create", "ok")
	return conv, nil
}

// Update replaces the message list of an existing conversation, refreshing
// updated_at and applying the title only when provided. An unknown id is not
// an error: the record is created under that exact identifier (upsert).
func (s *service) Update(ctx context.Context, id string, params UpdateParams) (Conversation, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			return Conversation{}, platformerrors.AsError(platformerrors.LayerDomain, err, "load conversation")
		}

		title := DefaultTitle
		if params.Title != nil {
			title = *params.Title
		}
		now := s.now()
		created := Conversation{
			ID:        id,
			Title:     title,
			Messages:  normalizeMessages(params.Messages),
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.repo.Put(ctx, created); err != nil {
			return Conversation{}, platformerrors.AsError(platformerrors.LayerDomain, err, "store conversation")
		}
		s.log.Info().Str("conversation_id", id).Msg("conversation created via upsert")
		metrics.RecordConversationOp("upsert", "ok")
		return created, nil
	}

	existing.Messages = normalizeMessages(params.Messages)
	if params.Title != nil {
		existing.Title = *params.Title
	}
	existing.UpdatedAt = s.now()

	if err := s.repo.Put(ctx, existing); err != nil {
		return Conversation{}, platformerrors.AsError(platformerrors.LayerDomain, err, "store conversation")
	}
	metrics.RecordConversationOp("update", "ok")
	return existing, nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		metrics.RecordConversationOp("delete", "not_found")
		return s.mapNotFound(err, id, "delete conversation")
	}
	s.log.Info().Str("conversation_id", id).Msg("conversation deleted")
	metrics.RecordConversationOp("delete", "ok")
	return nil
}

func (s *service) mapNotFound(err error, id, message string) *platformerrors.PlatformError {
	if errors.Is(err, ErrNotFound) {
		return platformerrors.NewError(platformerrors.LayerDomain, platformerrors.ErrorTypeNotFound,
			"conversation "+id+" not found", err)
	}
	return platformerrors.AsError(platformerrors.LayerDomain, err, message)
}

// normalizeMessages keeps stored message lists non-nil so responses always
// serialize as [] rather than null.
func normalizeMessages(messages []chat.Message) []chat.Message {
	if messages == nil {
		return []chat.Message{}
	}
	return messages
}
