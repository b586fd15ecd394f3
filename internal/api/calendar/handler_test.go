package calendar

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vilahaus/concierge/internal/service"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := zap.NewNop()
	calendarService := service.NewCalendarService(nil, "", logger)

	router := gin.New()
	NewHandler(calendarService, logger).RegisterRoutes(router.Group("/api"))
	return router
}

func doJSON(t *testing.T, router *gin.Engine, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/calendar", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestScheduleICS(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, `{
		"action": "generate_ics",
		"scheduleData": {"name": "Jane Kos", "flatId": "A02", "date": "2026-09-12", "time": "14:30"}
	}`)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/calendar") {
		t.Errorf("Content-Type = %q, want text/calendar", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "viewing-A02.ics") {
		t.Errorf("Content-Disposition = %q", cd)
	}

	body := w.Body.String()
	if !strings.Contains(body, "BEGIN:VCALENDAR") {
		t.Error("body is not an ICS document")
	}
	if !strings.Contains(body, "Jane Kos") || !strings.Contains(body, "A02") {
		t.Error("invite does not carry the visitor name and unit")
	}
}

func TestScheduleGoogleURL(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, `{
		"action": "google_calendar",
		"scheduleData": {"name": "Jane", "flatId": "A02", "date": "2026-09-12"}
	}`)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if !strings.HasPrefix(resp.URL, "https://calendar.google.com/") {
		t.Errorf("url = %q", resp.URL)
	}
}

func TestScheduleUnknownAction(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, `{
		"action": "carrier_pigeon",
		"scheduleData": {"name": "Jane", "flatId": "A02"}
	}`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400; body = %s", w.Code, w.Body.String())
	}
}

func TestScheduleInviteWithoutCalendly(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, `{
		"action": "send_invite",
		"scheduleData": {"name": "Jane", "flatId": "A02"}
	}`)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500; body = %s", w.Code, w.Body.String())
	}
}

func TestScheduleValidation(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, `{"action": "generate_ics"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}
