package chat

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"monarch-server/relay-api/internal/domain/retry"
	"monarch-server/relay-api/internal/utils/platformerrors"
)

// Service describes the business logic surface for completion forwarding.
type Service interface {
	CreateCompletion(ctx context.Context, params CompletionParams) (json.RawMessage, error)
	StreamCompletion(ctx context.Context, params CompletionParams) (Stream, error)
}

type service struct {
	client       UpstreamClient
	defaultModel string
	policy       retry.Policy
	log          zerolog.Logger
}

// NewService wires the completion service with its upstream client.
func NewService(client UpstreamClient, defaultModel string, policy retry.Policy, log zerolog.Logger) Service {
	return &service{
		client:       client,
		defaultModel: defaultModel,
		policy:       policy,
		log:          log.With().Str("component", "chat-service").Logger(),
	}
}

// CreateCompletion forwards a non-streaming completion request, retrying
// transport failures and upstream error statuses with exponential backoff.
// The upstream JSON body is returned to the caller verbatim.
func (s *service) CreateCompletion(ctx context.Context, params CompletionParams) (json.RawMessage, error) {
	model, err := s.resolveModel(params.Model)
	if err != nil {
		return nil, err
	}

	payload := buildPayload(params, false)

	result, err := retry.ExecuteWithResult(ctx, s.policy, func(ctx context.Context, attempt int) (json.RawMessage, error) {
		if attempt > 0 {
			s.log.Warn().Int("attempt", attempt+1).Str("model", model).Msg("retrying upstream completion")
		}
		return s.client.CreateChatCompletion(ctx, model, payload)
	})
	if err != nil {
		s.log.Error().Err(err).Str("model", model).Msg("upstream completion failed")
		return nil, platformerrors.AsError(platformerrors.LayerDomain, wrapUpstream(err), "upstream completion failed")
	}

	return result, nil
}

// StreamCompletion opens a streaming completion against the upstream
// endpoint. A single attempt only: once bytes may have reached the caller
// there is nothing safe to retry.
func (s *service) StreamCompletion(ctx context.Context, params CompletionParams) (Stream, error) {
	model, err := s.resolveModel(params.Model)
	if err != nil {
		return nil, err
	}

	payload := buildPayload(params, true)

	stream, err := s.client.CreateChatCompletionStream(ctx, model, payload)
	if err != nil {
		s.log.Error().Err(err).Str("model", model).Msg("open upstream stream")
		return nil, platformerrors.AsError(platformerrors.LayerDomain, wrapUpstream(err), "open upstream stream")
	}

	return stream, nil
}

func (s *service) resolveModel(requested string) (string, error) {
	if model := strings.TrimSpace(requested); model != "" {
		return model, nil
	}
	if s.defaultModel != "" {
		return s.defaultModel, nil
	}
	return "", platformerrors.NewError(platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
		"model is required: specify it in the request or set AZURE_OPENAI_DEPLOYMENT_NAME", nil)
}

func buildPayload(params CompletionParams, stream bool) CompletionPayload {
	maxTokens := params.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	return CompletionPayload{
		Messages:  params.Messages,
		MaxTokens: maxTokens,
		Stream:    stream,
	}
}

// wrapUpstream tags an error as upstream unless it already carries a type.
func wrapUpstream(err error) error {
	var platformErr *platformerrors.PlatformError
	if errors.As(err, &platformErr) {
		return err
	}
	return platformerrors.NewError(platformerrors.LayerDomain, platformerrors.ErrorTypeUpstream, "upstream call failed", err)
}
