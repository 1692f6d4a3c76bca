package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"monarch-server/relay-api/internal/domain/conversation"
	"monarch-server/relay-api/internal/interfaces/httpserver/requests"
	"monarch-server/relay-api/internal/interfaces/httpserver/responses"
	"monarch-server/relay-api/internal/utils/platformerrors"
)

// ConversationHandler handles conversation-related HTTP requests.
type ConversationHandler struct {
	service conversation.Service
	log     zerolog.Logger
}

// NewConversationHandler constructs the handler.
func NewConversationHandler(service conversation.Service, log zerolog.Logger) *ConversationHandler {
	return &ConversationHandler{
		service: service,
		log:     log.With().Str("handler", "conversation").Logger(),
	}
}

// List handles GET /api/conversations.
func (h *ConversationHandler) List(c *gin.Context) {
	conversations, err := h.service.List(c.Request.Context())
	if err != nil {
		responses.HandleError(c, err, "failed to list conversations")
		return
	}
	c.JSON(http.StatusOK, conversations)
}

// Get handles GET /api/conversations/:conversation_id.
func (h *ConversationHandler) Get(c *gin.Context) {
	id := c.Param("conversation_id")
	conv, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		responses.HandleError(c, err, "failed to get conversation")
		return
	}
	c.JSON(http.StatusOK, conv)
}

// Create handles POST /api/conversations. Any caller-supplied id or
// timestamps are deliberately discarded here: the service generates a fresh
// identifier and sets both timestamps itself.
func (h *ConversationHandler) Create(c *gin.Context) {
	var req requests.CreateConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "invalid conversation payload", err)
		return
	}

	conv, err := h.service.Create(c.Request.Context(), conversation.CreateParams{
		Title:    req.Title,
		Messages: req.Messages,
	})
	if err != nil {
		responses.HandleError(c, err, "failed to create conversation")
		return
	}
	c.JSON(http.StatusOK, conv)
}

// Update handles PUT /api/conversations/:conversation_id with upsert
// semantics: an unknown id creates a record under that exact identifier.
func (h *ConversationHandler) Update(c *gin.Context) {
	id := c.Param("conversation_id")

	var req requests.UpdateConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "invalid conversation update payload", err)
		return
	}

	conv, err := h.service.Update(c.Request.Context(), id, conversation.UpdateParams{
		Title:    req.Title,
		Messages: *req.Messages,
	})
	if err != nil {
		responses.HandleError(c, err, "failed to update conversation")
		return
	}
	c.JSON(http.StatusOK, conv)
}

// Delete handles DELETE /api/conversations/:conversation_id.
func (h *ConversationHandler) Delete(c *gin.Context) {
	id := c.Param("conversation_id")
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		responses.HandleError(c, err, "failed to delete conversation")
		return
	}
	c.JSON(http.StatusOK, responses.ConversationDeletedResponse{
		Success: true,
		Message: "conversation " + id + " deleted",
	})
}
