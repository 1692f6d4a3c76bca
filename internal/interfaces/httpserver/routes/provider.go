package routes

import (
	"github.com/gin-gonic/gin"

	"monarch-server/relay-api/internal/interfaces/httpserver/handlers"
	"monarch-server/relay-api/internal/interfaces/httpserver/routes/api"
)

// Provider aggregates the route registrars for the HTTP server.
type Provider struct {
	api *api.Routes
}

// NewProvider builds the route provider from the handler set.
func NewProvider(handlerProvider *handlers.Provider) *Provider {
	return &Provider{
		api: api.NewRoutes(handlerProvider),
	}
}

// Register attaches every route group to the engine.
func (p *Provider) Register(engine *gin.Engine) {
	p.api.Register(engine)
}
