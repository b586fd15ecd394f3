package chat

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vilahaus/concierge/internal/config"
	"github.com/vilahaus/concierge/internal/llm"
	"github.com/vilahaus/concierge/internal/service"
)

type stubGenerator struct {
	reply string
}

func (s *stubGenerator) Complete(ctx context.Context, messages []llm.ChatMessage) (string, error) {
	return s.reply, nil
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := zap.NewNop()
	cfg := &config.Config{Pinecone: config.PineconeConfig{TopK: 4, MinScore: 0.35}}
	memory := service.NewMemoryService(nil, logger)
	chatService := service.NewChatService(cfg, nil, nil, &stubGenerator{reply: "Happy to help."}, memory, logger)

	router := gin.New()
	NewHandler(chatService, nil, logger).RegisterRoutes(router.Group("/api"))
	return router
}

func TestChatEndpoint(t *testing.T) {
	router := newTestRouter(t)

	body := `{"message":"tell me about A02","visitorId":"v1","sessionId":"s1"}`
	req := httptest.NewRequest(http.MethodPost, "/api/rag-chat", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp struct {
		SessionID string `json:"sessionId"`
		Message   string `json:"message"`
		Intent    string `json:"intent"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if resp.SessionID != "s1" {
		t.Errorf("sessionId = %q, want s1", resp.SessionID)
	}
	if resp.Message != "Happy to help." {
		t.Errorf("message = %q", resp.Message)
	}
	if resp.Intent == "" {
		t.Error("intent missing from response")
	}
}

func TestChatRequiresMessage(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/rag-chat", strings.NewReader(`{"visitorId":"v1"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if !strings.Contains(w.Body.String(), "message is required") {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestHistoryRequiresVisitorID(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/chat/history", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestHistoryEmptyIsNotAnError(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/chat/history?visitorId=v1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body = %s", w.Code, w.Body.String())
	}

	var resp struct {
		Messages []json.RawMessage `json:"messages"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if resp.Messages == nil {
		t.Error("messages is null, want empty list")
	}
}

func TestSpeakWithoutTTSConfigured(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/tts", strings.NewReader(`{"text":"hello"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	if !strings.Contains(w.Body.String(), "not configured") {
		t.Errorf("body = %s", w.Body.String())
	}
}
