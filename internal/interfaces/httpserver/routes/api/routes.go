package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"monarch-server/relay-api/internal/interfaces/httpserver/handlers"
	"monarch-server/relay-api/internal/interfaces/httpserver/responses"
)

// Routes encapsulates /api route registration.
type Routes struct {
	handlers *handlers.Provider
}

// NewRoutes builds the /api route registrar.
func NewRoutes(handlerProvider *handlers.Provider) *Routes {
	return &Routes{
		handlers: handlerProvider,
	}
}

// Register attaches all routes under the /api prefix.
func (r *Routes) Register(engine *gin.Engine) {
	group := engine.Group("/api")

	group.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, responses.HealthResponse{
			Status:  "OK",
			Message: "Server is running",
		})
	})

	registerChatRoutes(group, r.handlers.Chat)
	registerConversationRoutes(group, r.handlers.Conversation)
}

func registerChatRoutes(router gin.IRoutes, handler *handlers.ChatHandler) {
	router.POST("/chat/completions", handler.CreateCompletion)
}

func registerConversationRoutes(router gin.IRoutes, handler *handlers.ConversationHandler) {
	router.GET("/conversations", handler.List)
	router.POST("/conversations", handler.Create)
	router.GET("/conversations/:conversation_id", handler.Get)
	router.PUT("/conversations/:conversation_id", handler.Update)
	router.DELETE("/conversations/:conversation_id", handler.Delete)
}
