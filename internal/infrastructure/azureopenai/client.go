package azureopenai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"

	"monarch-server/relay-api/internal/domain/chat"
	"monarch-server/relay-api/internal/infrastructure/metrics"
	"monarch-server/relay-api/internal/infrastructure/observability"
)

// Client implements chat.UpstreamClient against an Azure OpenAI deployment.
// Non-streaming calls go through Resty with a bounded timeout; streaming
// calls use net/http so the body can be relayed without buffering.
type Client struct {
	httpClient   *resty.Client
	streamClient *http.Client
	endpoint     string
	apiVersion   string
	tokens       chat.TokenProvider
	log          zerolog.Logger
}

// NewClient creates a Resty-backed client for the given endpoint base.
func NewClient(endpoint, apiVersion string, tokens chat.TokenProvider, timeout time.Duration, log zerolog.Logger) *Client {
	endpoint = strings.TrimRight(endpoint, "/")
	return &Client{
		httpClient: resty.New().
			SetBaseURL(endpoint).
			SetHeader("Content-Type", "application/json").
			SetTimeout(timeout),
		// No client-level timeout for streams: generation can outlive any
		// fixed budget, cancellation comes from the request context.
		streamClient: &http.Client{},
		endpoint:     endpoint,
		apiVersion:   apiVersion,
		tokens:       tokens,
		log:          log.With().Str("component", "azure-openai-client").Logger(),
	}
}

// CreateChatCompletion performs a single completion attempt and returns the
// upstream JSON body unmodified. A response with an error status is returned
// as an error so the caller's retry policy treats it like a transport
// failure.
func (c *Client) CreateChatCompletion(ctx context.Context, model string, payload chat.CompletionPayload) (json.RawMessage, error) {
	ctx, span := observability.StartUpstreamSpan(ctx, model, false)
	defer span.End()

	token, err := c.tokens.Token(ctx)
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}

	start := time.Now()
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetQueryParam("api-version", c.apiVersion).
		SetBody(payload).
		Post(c.completionPath(model))
	if err != nil {
		metrics.RecordUpstreamRequest(model, "transport_error", time.Since(start))
		observability.RecordError(span, err)
		return nil, fmt.Errorf("execute upstream request: %w", err)
	}

	if resp.IsError() {
		metrics.RecordUpstreamRequest(model, "error_status", time.Since(start))
		err := fmt.Errorf("upstream returned %d: %s", resp.StatusCode(), resp.String())
		observability.RecordError(span, err)
		return nil, err
	}

	metrics.RecordUpstreamRequest(model, "ok", time.Since(start))
	return json.RawMessage(resp.Body()), nil
}

// CreateChatCompletionStream opens a streaming completion. A non-2xx status
// on connect is an error; after that the returned stream yields the raw
// upstream bytes chunk by chunk.
func (c *Client) CreateChatCompletionStream(ctx context.Context, model string, payload chat.CompletionPayload) (chat.Stream, error) {
	ctx, span := observability.StartUpstreamSpan(ctx, model, true)

	token, err := c.tokens.Token(ctx)
	if err != nil {
		observability.RecordError(span, err)
		span.End()
		return nil, err
	}

	body, err := json.Marshal(payload)
	if err != nil {
		span.End()
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	streamURL := c.endpoint + c.completionPath(model) + "?api-version=" + url.QueryEscape(c.apiVersion)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, streamURL, bytes.NewReader(body))
	if err != nil {
		span.End()
		return nil, fmt.Errorf("create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")
	httpReq.Header.Set("Authorization", "Bearer "+token)

	start := time.Now()
	resp, err := c.streamClient.Do(httpReq)
	if err != nil {
		metrics.RecordUpstreamRequest(model, "transport_error", time.Since(start))
		observability.RecordError(span, err)
		span.End()
		return nil, fmt.Errorf("execute upstream request: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		errBody, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		metrics.RecordUpstreamRequest(model, "error_status", time.Since(start))
		err := fmt.Errorf("upstream returned %d: %s", resp.StatusCode, string(errBody))
		observability.RecordError(span, err)
		span.End()
		return nil, err
	}

	metrics.RecordUpstreamRequest(model, "ok", time.Since(start))
	return &byteStream{resp: resp, span: span, buf: make([]byte, 4096)}, nil
}

func (c *Client) completionPath(model string) string {
	return fmt.Sprintf("/openai/deployments/%s/chat/completions", url.PathEscape(model))
}

// Ensure interface compliance.
var _ chat.UpstreamClient = (*Client)(nil)

// byteStream relays the upstream body as raw chunks. The span stays open for
// the lifetime of the relay.
type byteStream struct {
	resp *http.Response
	span trace.Span
	buf  []byte
	err  error
}

// Next returns the next chunk of the upstream body. A read can return data
// together with an error; the chunk is delivered first and the held error is
// returned on the following call so no bytes are dropped.
func (s *byteStream) Next() ([]byte, error) {
	if s.err != nil {
		return nil, s.err
	}
	n, err := s.resp.Body.Read(s.buf)
	if n > 0 {
		s.err = err
		chunk := make([]byte, n)
		copy(chunk, s.buf[:n])
		return chunk, nil
	}
	if err == nil {
		err = io.EOF
	}
	return nil, err
}

func (s *byteStream) Close() error {
	if s.span != nil {
		s.span.End()
	}
	if s.resp != nil && s.resp.Body != nil {
		return s.resp.Body.Close()
	}
	return nil
}
