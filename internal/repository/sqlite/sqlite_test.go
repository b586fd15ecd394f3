package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/vilahaus/concierge/internal/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestVisitorRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	missing, err := store.GetVisitor(ctx, "nope")
	if err != nil {
		t.Fatalf("GetVisitor: %v", err)
	}
	if missing != nil {
		t.Fatal("expected nil for an unknown visitor")
	}

	visitor := &domain.Visitor{ID: "v1", SessionID: "s1", MessageCount: 3, ConversationStarted: true}
	if err := store.UpsertVisitor(ctx, visitor); err != nil {
		t.Fatalf("UpsertVisitor: %v", err)
	}

	got, err := store.GetVisitor(ctx, "v1")
	if err != nil || got == nil {
		t.Fatalf("GetVisitor after upsert: %v, %v", got, err)
	}
	if got.MessageCount != 3 || !got.ConversationStarted {
		t.Errorf("visitor = %+v", got)
	}

	// Upsert on the same id updates instead of duplicating.
	got.MessageCount = 4
	got.LeadCaptured = true
	if err := store.UpsertVisitor(ctx, got); err != nil {
		t.Fatalf("second UpsertVisitor: %v", err)
	}
	again, err := store.GetVisitor(ctx, "v1")
	if err != nil || again == nil {
		t.Fatalf("GetVisitor after update: %v, %v", again, err)
	}
	if again.MessageCount != 4 || !again.LeadCaptured {
		t.Errorf("visitor after update = %+v", again)
	}
}

func TestLeadRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	now := time.Now()
	lead := &domain.Lead{
		VisitorID:         "v1",
		Name:              "Jane Kos",
		Email:             "jane@example.com",
		FlatID:            "A02",
		PurchaseTimeframe: "3 months",
		Qualification:     map[string]string{"budget": "350k"},
		Consent:           true,
		ConsentAt:         &now,
	}
	if err := store.InsertLead(ctx, lead); err != nil {
		t.Fatalf("InsertLead: %v", err)
	}
	if lead.ID == "" {
		t.Fatal("InsertLead did not assign an id")
	}

	got, err := store.GetLeadByVisitor(ctx, "v1")
	if err != nil || got == nil {
		t.Fatalf("GetLeadByVisitor: %v, %v", got, err)
	}
	if got.ID != lead.ID || got.Email != "jane@example.com" || got.FlatID != "A02" {
		t.Errorf("lead = %+v", got)
	}
	if got.Qualification["budget"] != "350k" {
		t.Errorf("Qualification = %v", got.Qualification)
	}
	if got.ConsentAt == nil {
		t.Error("ConsentAt lost in round trip")
	}

	got.Phone = "+386 40 123 456"
	got.Qualification["financing"] = "cash"
	if err := store.UpdateLead(ctx, got); err != nil {
		t.Fatalf("UpdateLead: %v", err)
	}

	byID, err := store.GetLead(ctx, lead.ID)
	if err != nil || byID == nil {
		t.Fatalf("GetLead: %v, %v", byID, err)
	}
	if byID.Phone != "+386 40 123 456" || byID.Qualification["financing"] != "cash" {
		t.Errorf("lead after update = %+v", byID)
	}
}

func TestUpdateLeadMissing(t *testing.T) {
	store := newTestStore(t)

	err := store.UpdateLead(context.Background(), &domain.Lead{ID: "ghost"})
	if err == nil {
		t.Error("expected an error updating a missing lead")
	}
}

func TestUpdateLeadScore(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	lead := &domain.Lead{VisitorID: "v1", Name: "Jane", Email: "jane@example.com"}
	if err := store.InsertLead(ctx, lead); err != nil {
		t.Fatalf("InsertLead: %v", err)
	}
	if err := store.UpdateLeadScore(ctx, lead.ID, 35); err != nil {
		t.Fatalf("UpdateLeadScore: %v", err)
	}

	got, err := store.GetLead(ctx, lead.ID)
	if err != nil || got == nil {
		t.Fatalf("GetLead: %v, %v", got, err)
	}
	if got.Score != 35 {
		t.Errorf("Score = %d, want 35", got.Score)
	}
}

func TestInteractions(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	lead := &domain.Lead{VisitorID: "v1", Name: "Jane", Email: "jane@example.com"}
	if err := store.InsertLead(ctx, lead); err != nil {
		t.Fatalf("InsertLead: %v", err)
	}

	base := time.Now()
	events := []*domain.Interaction{
		{LeadID: lead.ID, VisitorID: "v1", Type: domain.InteractionPageView, Points: 1, CreatedAt: base},
		{LeadID: lead.ID, VisitorID: "v1", Type: domain.InteractionChatOpened, Points: 5,
			Details: map[string]any{"path": "/flats/a02"}, CreatedAt: base.Add(time.Second)},
	}
	for _, event := range events {
		if err := store.InsertInteraction(ctx, event); err != nil {
			t.Fatalf("InsertInteraction(%s): %v", event.Type, err)
		}
	}

	got, err := store.ListInteractionsByLead(ctx, lead.ID)
	if err != nil {
		t.Fatalf("ListInteractionsByLead: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("interactions = %d, want 2", len(got))
	}
	if got[0].Type != domain.InteractionPageView || got[1].Type != domain.InteractionChatOpened {
		t.Errorf("order = %s, %s", got[0].Type, got[1].Type)
	}
	if got[1].Details["path"] != "/flats/a02" {
		t.Errorf("Details = %v", got[1].Details)
	}
}

func TestMessagesLatestSession(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	base := time.Now()
	messages := []*domain.Message{
		{SessionID: "s1", VisitorID: "v1", Sender: domain.SenderUser, Text: "old question", CreatedAt: base},
		{SessionID: "s1", VisitorID: "v1", Sender: domain.SenderBot, Text: "old answer", CreatedAt: base.Add(time.Second)},
		{SessionID: "s2", VisitorID: "v1", Sender: domain.SenderUser, Text: "new question", CreatedAt: base.Add(2 * time.Second)},
		{SessionID: "s2", VisitorID: "v1", Sender: domain.SenderBot, Text: "new answer", CreatedAt: base.Add(3 * time.Second)},
	}
	for _, message := range messages {
		if err := store.InsertMessage(ctx, message); err != nil {
			t.Fatalf("InsertMessage: %v", err)
		}
	}

	got, err := store.ListRecentMessages(ctx, "v1")
	if err != nil {
		t.Fatalf("ListRecentMessages: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("messages = %d, want only the latest session", len(got))
	}
	if got[0].Text != "new question" || got[1].Text != "new answer" {
		t.Errorf("messages = %q, %q", got[0].Text, got[1].Text)
	}
}

func TestMessagesNoHistory(t *testing.T) {
	store := newTestStore(t)

	got, err := store.ListRecentMessages(context.Background(), "v1")
	if err != nil {
		t.Fatalf("ListRecentMessages: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("messages = %v, want empty non-nil slice", got)
	}
}
