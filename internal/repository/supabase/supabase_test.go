package supabase

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/vilahaus/concierge/internal/domain"
)

type recordedRequest struct {
	method string
	path   string
	query  string
	prefer string
	body   map[string]any
}

func newTestStore(t *testing.T) (*Store, *[]recordedRequest) {
	t.Helper()

	requests := &[]recordedRequest{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recordedRequest{
			method: r.Method,
			path:   r.URL.Path,
			query:  r.URL.RawQuery,
			prefer: r.Header.Get("Prefer"),
		}
		if data, err := io.ReadAll(r.Body); err == nil && len(data) > 0 {
			json.Unmarshal(data, &rec.body)
		}
		*requests = append(*requests, rec)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte("[]"))
	}))
	t.Cleanup(server.Close)

	store, err := New(Config{URL: server.URL, ServiceKey: "service-key"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return store, requests
}

func TestUpsertVisitorPayload(t *testing.T) {
	store, requests := newTestStore(t)

	visitor := &domain.Visitor{ID: "v1", MessageCount: 2, ConversationStarted: true}
	if err := store.UpsertVisitor(context.Background(), visitor); err != nil {
		t.Fatalf("UpsertVisitor: %v", err)
	}

	if len(*requests) != 1 {
		t.Fatalf("requests = %d, want 1", len(*requests))
	}
	req := (*requests)[0]
	if req.method != http.MethodPost || req.path != "/rest/v1/visitors" {
		t.Fatalf("request = %s %s", req.method, req.path)
	}
	if req.prefer != "resolution=merge-duplicates" {
		t.Errorf("Prefer = %q", req.prefer)
	}
	if req.body["id"] != "v1" {
		t.Errorf("id = %v", req.body["id"])
	}
	// The merge path must never carry created_at: a zero timestamp in
	// the payload would overwrite the original creation time.
	if value, ok := req.body["created_at"]; ok {
		t.Errorf("payload carries created_at = %v", value)
	}
	if req.body["updated_at"] == nil {
		t.Error("payload missing updated_at")
	}
}

func TestUpdateLeadPayload(t *testing.T) {
	store, requests := newTestStore(t)

	lead := &domain.Lead{
		ID:        "lead-1",
		VisitorID: "v1",
		Name:      "Jane Kos",
		Email:     "jane@example.com",
		Score:     50,
	}
	if err := store.UpdateLead(context.Background(), lead); err != nil {
		t.Fatalf("UpdateLead: %v", err)
	}

	req := (*requests)[0]
	if req.method != http.MethodPatch || req.path != "/rest/v1/leads" {
		t.Fatalf("request = %s %s", req.method, req.path)
	}
	if !strings.Contains(req.query, "id=eq.lead-1") {
		t.Errorf("query = %q, want id filter", req.query)
	}
	// The primary key is the filter; the body must not try to rewrite it.
	if value, ok := req.body["id"]; ok {
		t.Errorf("payload carries id = %v", value)
	}
	if value, ok := req.body["created_at"]; ok {
		t.Errorf("payload carries created_at = %v", value)
	}
	if req.body["name"] != "Jane Kos" || req.body["updated_at"] == nil {
		t.Errorf("payload = %v", req.body)
	}
}

func TestInsertLeadPayload(t *testing.T) {
	store, requests := newTestStore(t)

	lead := &domain.Lead{VisitorID: "v1", Name: "Jane", Email: "jane@example.com"}
	if err := store.InsertLead(context.Background(), lead); err != nil {
		t.Fatalf("InsertLead: %v", err)
	}
	if lead.ID == "" {
		t.Fatal("InsertLead did not assign an id")
	}

	req := (*requests)[0]
	if req.body["id"] != lead.ID {
		t.Errorf("id = %v, want %s", req.body["id"], lead.ID)
	}
	if req.body["created_at"] == nil {
		t.Error("insert payload missing created_at")
	}
}
