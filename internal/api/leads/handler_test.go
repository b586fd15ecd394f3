package leads

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vilahaus/concierge/internal/notify"
	"github.com/vilahaus/concierge/internal/repository/sqlite"
	"github.com/vilahaus/concierge/internal/service"
)

func newTestRouter(t *testing.T, webhookURL string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	logger := zap.NewNop()
	notifier := notify.NewNotifier(webhookURL, logger)
	leadService := service.NewLeadService(store, notifier, logger)

	router := gin.New()
	NewHandler(leadService, logger).RegisterRoutes(router.Group("/api"))
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCreateLead(t *testing.T) {
	router := newTestRouter(t, "")

	w := doJSON(t, router, http.MethodPost, "/api/leads",
		`{"name":"Jane Kos","email":"jane@example.com","visitorId":"v1","flatId":"A02"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if resp["message"] == "" {
		t.Error("expected a confirmation message")
	}
}

func TestCreateLeadValidation(t *testing.T) {
	router := newTestRouter(t, "")

	tests := []struct {
		name string
		body string
		want string
	}{
		{"missing name", `{"email":"jane@example.com"}`, "name is required"},
		{"missing email", `{"name":"Jane"}`, "email is required"},
		{"malformed body", `{`, "invalid request body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, router, http.MethodPost, "/api/leads", tt.body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", w.Code)
			}
			if !strings.Contains(w.Body.String(), tt.want) {
				t.Errorf("body = %s, want %q", w.Body.String(), tt.want)
			}
		})
	}
}

func TestCreateLeadSucceedsWhenWebhookFails(t *testing.T) {
	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "automation is down", http.StatusBadGateway)
	}))
	defer failing.Close()

	router := newTestRouter(t, failing.URL)

	w := doJSON(t, router, http.MethodPost, "/api/leads",
		`{"name":"Jane Kos","email":"jane@example.com","visitorId":"v1"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 regardless of webhook outcome; body = %s", w.Code, w.Body.String())
	}
}

func TestQualifyLeadNotFound(t *testing.T) {
	router := newTestRouter(t, "")

	w := doJSON(t, router, http.MethodPatch, "/api/leads", `{"visitorId":"ghost"}`)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404; body = %s", w.Code, w.Body.String())
	}
}

func TestQualifyLeadReturnsScore(t *testing.T) {
	router := newTestRouter(t, "")

	w := doJSON(t, router, http.MethodPost, "/api/leads",
		`{"name":"Jane","email":"jane@example.com","visitorId":"v1"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("lead capture status = %d", w.Code)
	}

	w = doJSON(t, router, http.MethodPatch, "/api/leads",
		`{"visitorId":"v1","leadData":{"budget":"350k"}}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp struct {
		LeadScore int `json:"leadScore"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if resp.LeadScore <= 0 {
		t.Errorf("leadScore = %d, want > 0", resp.LeadScore)
	}
}

func TestTrack(t *testing.T) {
	router := newTestRouter(t, "")

	w := doJSON(t, router, http.MethodPost, "/api/track",
		`{"visitorId":"v1","eventName":"page_view","path":"/flats/a02"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201; body = %s", w.Code, w.Body.String())
	}
}

func TestTrackValidation(t *testing.T) {
	router := newTestRouter(t, "")

	w := doJSON(t, router, http.MethodPost, "/api/track", `{"visitorId":"v1"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}
