package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"monarch-server/relay-api/internal/domain/chat"
	"monarch-server/relay-api/internal/infrastructure/metrics"
	"monarch-server/relay-api/internal/interfaces/httpserver/middlewares"
	"monarch-server/relay-api/internal/interfaces/httpserver/requests"
	"monarch-server/relay-api/internal/interfaces/httpserver/responses"
	"monarch-server/relay-api/internal/utils/platformerrors"
)

// ChatHandler exposes the completion relay endpoint.
type ChatHandler struct {
	service chat.Service
	log     zerolog.Logger
}

// NewChatHandler constructs the handler.
func NewChatHandler(service chat.Service, log zerolog.Logger) *ChatHandler {
	return &ChatHandler{
		service: service,
		log:     log.With().Str("handler", "chat").Logger(),
	}
}

// CreateCompletion handles POST /api/chat/completions. The upstream JSON is
// passed through verbatim; with stream=true the upstream byte stream is
// relayed as server-sent events.
func (h *ChatHandler) CreateCompletion(c *gin.Context) {
	var req requests.ChatCompletionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "invalid chat completion request", err)
		return
	}

	params := chat.CompletionParams{
		Messages: req.Messages,
		Model:    req.Model,
	}
	if req.MaxTokens != nil {
		params.MaxTokens = *req.MaxTokens
	}
	if req.Stream != nil {
		params.Stream = *req.Stream
	}

	if params.Stream {
		h.streamCompletion(c, params)
		return
	}

	raw, err := h.service.CreateCompletion(c.Request.Context(), params)
	if err != nil {
		responses.HandleError(c, err, "error processing chat completion")
		return
	}

	c.Data(http.StatusOK, "application/json", raw)
}

// streamCompletion relays the upstream stream chunk by chunk, flushing after
// every write so nothing is buffered. Errors before the first byte produce a
// normal JSON error response; a mid-stream failure emits one final SSE error
// event and terminates the stream.
func (h *ChatHandler) streamCompletion(c *gin.Context, params chat.CompletionParams) {
	stream, err := h.service.StreamCompletion(c.Request.Context(), params)
	if err != nil {
		responses.HandleError(c, err, "error opening completion stream")
		return
	}
	defer stream.Close()

	flusher, ok := middlewares.PrepareSSE(c)
	if !ok {
		responses.HandleNewError(c, platformerrors.ErrorTypeInternal, "streaming not supported", nil)
		return
	}

	metrics.ActiveStreams.Inc()
	defer metrics.ActiveStreams.Dec()

	c.Status(http.StatusOK)
	for {
		chunk, err := stream.Next()
		if len(chunk) > 0 {
			if _, werr := c.Writer.Write(chunk); werr != nil {
				h.log.Warn().Err(werr).Msg("client disconnected mid-stream")
				return
			}
			flusher.Flush()
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				h.log.Error().Err(err).Msg("upstream stream failed mid-relay")
				_, _ = c.Writer.WriteString("event: error\ndata: {\"error\":\"upstream stream terminated\"}\n\n")
				flusher.Flush()
			}
			return
		}
	}
}
