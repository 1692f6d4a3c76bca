package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"monarch-server/relay-api/internal/config"
	"monarch-server/relay-api/internal/domain/chat"
	"monarch-server/relay-api/internal/domain/conversation"
	"monarch-server/relay-api/internal/domain/retry"
	"monarch-server/relay-api/internal/infrastructure/azuread"
	"monarch-server/relay-api/internal/infrastructure/azureopenai"
	"monarch-server/relay-api/internal/infrastructure/logger"
	"monarch-server/relay-api/internal/infrastructure/observability"
	conversationrepo "monarch-server/relay-api/internal/infrastructure/repository/conversation"
	"monarch-server/relay-api/internal/interfaces/httpserver"
	"monarch-server/relay-api/internal/interfaces/httpserver/handlers"
)

type Application struct {
	httpServer *httpserver.HttpServer
	log        zerolog.Logger
}

func NewApplication(httpServer *httpserver.HttpServer, log zerolog.Logger) *Application {
	return &Application{
		httpServer: httpServer,
		log:        log,
	}
}

func (a *Application) Start(ctx context.Context) error {
	return a.httpServer.Run(ctx)
}

func main() {
	loadEnvFiles()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := observability.Setup(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize observability")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown telemetry")
		}
	}()

	tokenProvider, err := azuread.NewTokenProvider(log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize Azure credential")
	}

	upstreamClient := azureopenai.NewClient(
		cfg.AzureOpenAIEndpoint,
		cfg.AzureOpenAIVersion,
		tokenProvider,
		cfg.UpstreamTimeout,
		log,
	)

	chatService := chat.NewService(
		upstreamClient,
		cfg.AzureOpenAIDeployment,
		retry.UpstreamPolicy(cfg.UpstreamMaxAttempts, cfg.UpstreamRetryBaseDelay),
		log,
	)

	conversationRepository := conversationrepo.NewInMemoryRepository()
	conversationService := conversation.NewService(conversationRepository, log)

	handlerProvider := handlers.NewProvider(chatService, conversationService, log)
	httpServer := httpserver.New(cfg, log, handlerProvider)
	app := NewApplication(httpServer, log)

	log.Info().
		Str("endpoint", cfg.AzureOpenAIEndpoint).
		Str("api_version", cfg.AzureOpenAIVersion).
		Str("deployment", cfg.AzureOpenAIDeployment).
		Msg("MONARCH: relay configured")

	if err := app.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("application stopped with error")
	}

	log.Info().Msg("application exited cleanly")
}

func loadEnvFiles() {
	paths := []string{".env", "../.env"}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Overload(path); err != nil {
				fmt.Fprintf(os.Stderr, "warning: failed to load %s: %v\n", path, err)
			}
		}
	}
}
