package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"monarch-server/relay-api/internal/domain/chat"
	"monarch-server/relay-api/internal/interfaces/httpserver/handlers"
	"monarch-server/relay-api/internal/utils/platformerrors"
)

// MockChatService is a mock implementation of chat.Service for testing.
type MockChatService struct {
	CreateCompletionFunc func(ctx context.Context, params chat.CompletionParams) (json.RawMessage, error)
	StreamCompletionFunc func(ctx context.Context, params chat.CompletionParams) (chat.Stream, error)
}

func (m *MockChatService) CreateCompletion(ctx context.Context, params chat.CompletionParams) (json.RawMessage, error) {
	if m.CreateCompletionFunc != nil {
		return m.CreateCompletionFunc(ctx, params)
	}
	return nil, nil
}

func (m *MockChatService) StreamCompletion(ctx context.Context, params chat.CompletionParams) (chat.Stream, error) {
	if m.StreamCompletionFunc != nil {
		return m.StreamCompletionFunc(ctx, params)
	}
	return nil, nil
}

// chunkStream replays a fixed chunk list and then reports the final error.
type chunkStream struct {
	chunks   [][]byte
	finalErr error
	closed   bool
}

func (s *chunkStream) Next() ([]byte, error) {
	if len(s.chunks) == 0 {
		return nil, s.finalErr
	}
	chunk := s.chunks[0]
	s.chunks = s.chunks[1:]
	return chunk, nil
}

func (s *chunkStream) Close() error {
	s.closed = true
	return nil
}

func setupChatTestRouter(handler *handlers.ChatHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/api/chat/completions", handler.CreateCompletion)
	return r
}

func TestChatHandler_CreateCompletion(t *testing.T) {
	upstream := `{"id":"cmpl-1","choices":[{"message":{"content":"hello"}}]}`
	mockService := &MockChatService{
		CreateCompletionFunc: func(ctx context.Context, params chat.CompletionParams) (json.RawMessage, error) {
			return json.RawMessage(upstream), nil
		},
	}

	handler := handlers.NewChatHandler(mockService, zerolog.Nop())
	router := setupChatTestRouter(handler)

	body := bytes.NewBufferString(`{"messages":[{"role":"user","content":"hi"}]}`)
	req, _ := http.NewRequest("POST", "/api/chat/completions", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
	if w.Body.String() != upstream {
		t.Errorf("Expected upstream body passed through verbatim, got %s", w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Expected application/json content type, got %s", ct)
	}
}

func TestChatHandler_CreateCompletion_MissingMessages(t *testing.T) {
	called := false
	mockService := &MockChatService{
		CreateCompletionFunc: func(ctx context.Context, params chat.CompletionParams) (json.RawMessage, error) {
			called = true
			return nil, nil
		},
	}

	handler := handlers.NewChatHandler(mockService, zerolog.Nop())
	router := setupChatTestRouter(handler)

	body := bytes.NewBufferString(`{"model":"gpt-4o"}`)
	req, _ := http.NewRequest("POST", "/api/chat/completions", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
	if called {
		t.Error("Service must not be called for an invalid payload")
	}

	var resp map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if resp["error"] == nil {
		t.Error("Expected error field in envelope")
	}
}

func TestChatHandler_CreateCompletion_ValidationError(t *testing.T) {
	mockService := &MockChatService{
		CreateCompletionFunc: func(ctx context.Context, params chat.CompletionParams) (json.RawMessage, error) {
			return nil, platformerrors.NewError(platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
				"model is required: specify it in the request or set AZURE_OPENAI_DEPLOYMENT_NAME", nil)
		},
	}

	handler := handlers.NewChatHandler(mockService, zerolog.Nop())
	router := setupChatTestRouter(handler)

	body := bytes.NewBufferString(`{"messages":[{"role":"user","content":"hi"}]}`)
	req, _ := http.NewRequest("POST", "/api/chat/completions", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
}

func TestChatHandler_CreateCompletion_UpstreamError(t *testing.T) {
	mockService := &MockChatService{
		CreateCompletionFunc: func(ctx context.Context, params chat.CompletionParams) (json.RawMessage, error) {
			return nil, platformerrors.NewError(platformerrors.LayerDomain, platformerrors.ErrorTypeUpstream,
				"upstream call failed", errors.New("upstream returned 503: busy"))
		},
	}

	handler := handlers.NewChatHandler(mockService, zerolog.Nop())
	router := setupChatTestRouter(handler)

	body := bytes.NewBufferString(`{"messages":[{"role":"user","content":"hi"}]}`)
	req, _ := http.NewRequest("POST", "/api/chat/completions", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("Expected status 500, got %d", w.Code)
	}

	var resp map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if resp["error"] == nil || resp["message"] == nil {
		t.Errorf("Expected error and message fields, got %v", resp)
	}
}

func TestChatHandler_StreamCompletion(t *testing.T) {
	stream := &chunkStream{
		chunks: [][]byte{
			[]byte("data: {\"delta\":\"He\"}\n\n"),
			[]byte("data: {\"delta\":\"llo\"}\n\n"),
			[]byte("data: [DONE]\n\n"),
		},
		finalErr: io.EOF,
	}
	mockService := &MockChatService{
		StreamCompletionFunc: func(ctx context.Context, params chat.CompletionParams) (chat.Stream, error) {
			if !params.Stream {
				t.Error("Expected stream flag set on params")
			}
			return stream, nil
		},
	}

	handler := handlers.NewChatHandler(mockService, zerolog.Nop())
	router := setupChatTestRouter(handler)

	body := bytes.NewBufferString(`{"messages":[{"role":"user","content":"hi"}],"stream":true}`)
	req, _ := http.NewRequest("POST", "/api/chat/completions", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Expected text/event-stream content type, got %s", ct)
	}
	expected := "data: {\"delta\":\"He\"}\n\ndata: {\"delta\":\"llo\"}\n\ndata: [DONE]\n\n"
	if w.Body.String() != expected {
		t.Errorf("Expected chunks relayed in order, got %q", w.Body.String())
	}
	if !stream.closed {
		t.Error("Expected stream to be closed after relay")
	}
}

func TestChatHandler_StreamCompletion_ErrorBeforeFirstByte(t *testing.T) {
	mockService := &MockChatService{
		StreamCompletionFunc: func(ctx context.Context, params chat.CompletionParams) (chat.Stream, error) {
			return nil, platformerrors.NewError(platformerrors.LayerDomain, platformerrors.ErrorTypeUpstream,
				"open upstream stream", errors.New("connect refused"))
		},
	}

	handler := handlers.NewChatHandler(mockService, zerolog.Nop())
	router := setupChatTestRouter(handler)

	body := bytes.NewBufferString(`{"messages":[{"role":"user","content":"hi"}],"stream":true}`)
	req, _ := http.NewRequest("POST", "/api/chat/completions", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("Expected status 500, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct == "text/event-stream" {
		t.Error("Connect failures must produce a JSON error response, not SSE")
	}

	var resp map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if resp["error"] == nil {
		t.Error("Expected error field in envelope")
	}
}

func TestChatHandler_StreamCompletion_MidStreamFailure(t *testing.T) {
	stream := &chunkStream{
		chunks:   [][]byte{[]byte("data: {\"delta\":\"He\"}\n\n")},
		finalErr: errors.New("connection reset"),
	}
	mockService := &MockChatService{
		StreamCompletionFunc: func(ctx context.Context, params chat.CompletionParams) (chat.Stream, error) {
			return stream, nil
		},
	}

	handler := handlers.NewChatHandler(mockService, zerolog.Nop())
	router := setupChatTestRouter(handler)

	body := bytes.NewBufferString(`{"messages":[{"role":"user","content":"hi"}],"stream":true}`)
	req, _ := http.NewRequest("POST", "/api/chat/completions", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200 (headers already sent), got %d", w.Code)
	}

	got := w.Body.String()
	if !bytes.Contains([]byte(got), []byte("data: {\"delta\":\"He\"}\n\n")) {
		t.Errorf("Expected delivered chunk preserved, got %q", got)
	}
	if !bytes.Contains([]byte(got), []byte("event: error")) {
		t.Errorf("Expected terminal error event, got %q", got)
	}
}
