package handlers

import (
	"github.com/rs/zerolog"

	"monarch-server/relay-api/internal/domain/chat"
	"monarch-server/relay-api/internal/domain/conversation"
)

// Provider wires all HTTP handlers for dependency injection.
type Provider struct {
	Chat         *ChatHandler
	Conversation *ConversationHandler
}

// NewProvider constructs the handler provider with domain services.
func NewProvider(chatService chat.Service, conversationService conversation.Service, log zerolog.Logger) *Provider {
	return &Provider{
		Chat:         NewChatHandler(chatService, log),
		Conversation: NewConversationHandler(conversationService, log),
	}
}
