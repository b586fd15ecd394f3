// Package supabase implements repository.Store against the Supabase
// PostgREST API. It is the production backend; the serving code never
// talks SQL to Supabase directly.
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/vilahaus/concierge/internal/domain"
)

// Store is a REST client for the Supabase tables backing the service.
type Store struct {
	baseURL    string
	serviceKey string
	client     *http.Client
}

// Config configures the Supabase client.
type Config struct {
	URL        string
	ServiceKey string
	Timeout    time.Duration
}

// New creates a Supabase-backed store. Both the project URL and the
// service key are required; missing values fail fast here rather than
// as opaque 401s mid-request.
func New(cfg Config) (*Store, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("supabase URL is required")
	}
	if cfg.ServiceKey == "" {
		return nil, fmt.Errorf("supabase service key is required")
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &Store{
		baseURL:    cfg.URL,
		serviceKey: cfg.ServiceKey,
		client:     &http.Client{Timeout: timeout},
	}, nil
}

// Close implements repository.Store; there is no connection to release.
func (s *Store) Close() error { return nil }

func (s *Store) do(ctx context.Context, method, path string, prefer string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+"/rest/v1"+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("apikey", s.serviceKey)
	req.Header.Set("Authorization", "Bearer "+s.serviceKey)
	req.Header.Set("Content-Type", "application/json")
	if prefer != "" {
		req.Header.Set("Prefer", prefer)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("supabase %s %s: %s: %s", method, path, resp.Status, detail)
	}

	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

// Timestamp fields are pointers: a zero time.Time never hits json
// omitempty, and a merge-duplicates upsert or PATCH carrying
// "0001-01-01..." would overwrite the database-assigned created_at.
type visitorRow struct {
	ID                  string     `json:"id"`
	SessionID           string     `json:"session_id,omitempty"`
	Name                string     `json:"name,omitempty"`
	Email               string     `json:"email,omitempty"`
	Phone               string     `json:"phone,omitempty"`
	MessageCount        int        `json:"message_count"`
	ConversationStarted bool       `json:"conversation_started"`
	LeadCaptured        bool       `json:"lead_captured"`
	CreatedAt           *time.Time `json:"created_at,omitempty"`
	UpdatedAt           *time.Time `json:"updated_at,omitempty"`
}

func timeValue(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

// GetVisitor retrieves a visitor by id
func (s *Store) GetVisitor(ctx context.Context, id string) (*domain.Visitor, error) {
	var rows []visitorRow
	path := "/visitors?id=eq." + url.QueryEscape(id) + "&limit=1"
	if err := s.do(ctx, http.MethodGet, path, "", nil, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	r := rows[0]
	return &domain.Visitor{
		ID:                  r.ID,
		SessionID:           r.SessionID,
		Name:                r.Name,
		Email:               r.Email,
		Phone:               r.Phone,
		MessageCount:        r.MessageCount,
		ConversationStarted: r.ConversationStarted,
		LeadCaptured:        r.LeadCaptured,
		CreatedAt:           timeValue(r.CreatedAt),
		UpdatedAt:           timeValue(r.UpdatedAt),
	}, nil
}

// UpsertVisitor inserts or merges the visitor row by primary key.
// created_at is never sent: the database assigns it on insert and the
// merge path must not touch it.
func (s *Store) UpsertVisitor(ctx context.Context, visitor *domain.Visitor) error {
	visitor.UpdatedAt = time.Now()
	row := visitorRow{
		ID:                  visitor.ID,
		SessionID:           visitor.SessionID,
		Name:                visitor.Name,
		Email:               visitor.Email,
		Phone:               visitor.Phone,
		MessageCount:        visitor.MessageCount,
		ConversationStarted: visitor.ConversationStarted,
		LeadCaptured:        visitor.LeadCaptured,
		UpdatedAt:           timePtr(visitor.UpdatedAt),
	}
	return s.do(ctx, http.MethodPost, "/visitors", "resolution=merge-duplicates", row, nil)
}

type leadRow struct {
	ID                string            `json:"id,omitempty"`
	VisitorID         string            `json:"visitor_id"`
	Name              string            `json:"name,omitempty"`
	Email             string            `json:"email,omitempty"`
	Phone             string            `json:"phone,omitempty"`
	Message           string            `json:"message,omitempty"`
	FlatID            string            `json:"flat_id,omitempty"`
	PurchaseTimeframe string            `json:"purchase_timeframe,omitempty"`
	Qualification     map[string]string `json:"qualification,omitempty"`
	Consent           bool              `json:"consent"`
	ConsentAt         *time.Time        `json:"consent_at,omitempty"`
	Score             int               `json:"score"`
	CreatedAt         *time.Time        `json:"created_at,omitempty"`
	UpdatedAt         *time.Time        `json:"updated_at,omitempty"`
}

func (r leadRow) toDomain() *domain.Lead {
	return &domain.Lead{
		ID:                r.ID,
		VisitorID:         r.VisitorID,
		Name:              r.Name,
		Email:             r.Email,
		Phone:             r.Phone,
		Message:           r.Message,
		FlatID:            r.FlatID,
		PurchaseTimeframe: r.PurchaseTimeframe,
		Qualification:     r.Qualification,
		Consent:           r.Consent,
		ConsentAt:         r.ConsentAt,
		Score:             r.Score,
		CreatedAt:         timeValue(r.CreatedAt),
		UpdatedAt:         timeValue(r.UpdatedAt),
	}
}

func leadToRow(lead *domain.Lead) leadRow {
	return leadRow{
		ID:                lead.ID,
		VisitorID:         lead.VisitorID,
		Name:              lead.Name,
		Email:             lead.Email,
		Phone:             lead.Phone,
		Message:           lead.Message,
		FlatID:            lead.FlatID,
		PurchaseTimeframe: lead.PurchaseTimeframe,
		Qualification:     lead.Qualification,
		Consent:           lead.Consent,
		ConsentAt:         lead.ConsentAt,
		Score:             lead.Score,
		CreatedAt:         timePtr(lead.CreatedAt),
		UpdatedAt:         timePtr(lead.UpdatedAt),
	}
}

// GetLeadByVisitor retrieves the most recent lead row for a visitor
func (s *Store) GetLeadByVisitor(ctx context.Context, visitorID string) (*domain.Lead, error) {
	var rows []leadRow
	path := "/leads?visitor_id=eq." + url.QueryEscape(visitorID) + "&order=created_at.desc&limit=1"
	if err := s.do(ctx, http.MethodGet, path, "", nil, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0].toDomain(), nil
}

// GetLead retrieves a lead by id
func (s *Store) GetLead(ctx context.Context, id string) (*domain.Lead, error) {
	var rows []leadRow
	path := "/leads?id=eq." + url.QueryEscape(id) + "&limit=1"
	if err := s.do(ctx, http.MethodGet, path, "", nil, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0].toDomain(), nil
}

// InsertLead creates a new lead row
func (s *Store) InsertLead(ctx context.Context, lead *domain.Lead) error {
	if lead.ID == "" {
		lead.ID = uuid.New().String()
	}
	now := time.Now()
	lead.CreatedAt = now
	lead.UpdatedAt = now
	return s.do(ctx, http.MethodPost, "/leads", "", leadToRow(lead), nil)
}

// UpdateLead updates contact fields, qualification and consent
func (s *Store) UpdateLead(ctx context.Context, lead *domain.Lead) error {
	lead.UpdatedAt = time.Now()
	row := leadToRow(lead)
	row.ID = ""         // primary key is the filter, not the payload
	row.CreatedAt = nil // immutable once inserted
	path := "/leads?id=eq." + url.QueryEscape(lead.ID)
	return s.do(ctx, http.MethodPatch, path, "", row, nil)
}

// UpdateLeadScore persists a recomputed score
func (s *Store) UpdateLeadScore(ctx context.Context, leadID string, score int) error {
	path := "/leads?id=eq." + url.QueryEscape(leadID)
	body := map[string]any{"score": score, "updated_at": time.Now()}
	return s.do(ctx, http.MethodPatch, path, "", body, nil)
}

type interactionRow struct {
	ID        string         `json:"id"`
	LeadID    string         `json:"lead_id,omitempty"`
	VisitorID string         `json:"visitor_id"`
	Type      string         `json:"type"`
	Points    int            `json:"points"`
	Details   map[string]any `json:"details,omitempty"`
	CreatedAt time.Time      `json:"created_at,omitempty"`
}

// InsertInteraction appends a tracked event
func (s *Store) InsertInteraction(ctx context.Context, interaction *domain.Interaction) error {
	if interaction.ID == "" {
		interaction.ID = uuid.New().String()
	}
	if interaction.CreatedAt.IsZero() {
		interaction.CreatedAt = time.Now()
	}
	row := interactionRow{
		ID:        interaction.ID,
		LeadID:    interaction.LeadID,
		VisitorID: interaction.VisitorID,
		Type:      interaction.Type,
		Points:    interaction.Points,
		Details:   interaction.Details,
		CreatedAt: interaction.CreatedAt,
	}
	return s.do(ctx, http.MethodPost, "/interactions", "", row, nil)
}

// ListInteractionsByLead returns all interactions recorded for a lead
func (s *Store) ListInteractionsByLead(ctx context.Context, leadID string) ([]*domain.Interaction, error) {
	var rows []interactionRow
	path := "/interactions?lead_id=eq." + url.QueryEscape(leadID) + "&order=created_at.asc"
	if err := s.do(ctx, http.MethodGet, path, "", nil, &rows); err != nil {
		return nil, err
	}
	interactions := make([]*domain.Interaction, 0, len(rows))
	for _, r := range rows {
		interactions = append(interactions, &domain.Interaction{
			ID:        r.ID,
			LeadID:    r.LeadID,
			VisitorID: r.VisitorID,
			Type:      r.Type,
			Points:    r.Points,
			Details:   r.Details,
			CreatedAt: r.CreatedAt,
		})
	}
	return interactions, nil
}

type messageRow struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	VisitorID string    `json:"visitor_id"`
	Sender    string    `json:"sender"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// InsertMessage appends a chat message
func (s *Store) InsertMessage(ctx context.Context, message *domain.Message) error {
	if message.ID == "" {
		message.ID = uuid.New().String()
	}
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now()
	}
	row := messageRow{
		ID:        message.ID,
		SessionID: message.SessionID,
		VisitorID: message.VisitorID,
		Sender:    message.Sender,
		Text:      message.Text,
		CreatedAt: message.CreatedAt,
	}
	return s.do(ctx, http.MethodPost, "/messages", "", row, nil)
}

// ListRecentMessages returns the visitor's most recent session, oldest first
func (s *Store) ListRecentMessages(ctx context.Context, visitorID string) ([]*domain.Message, error) {
	var latest []messageRow
	path := "/messages?visitor_id=eq." + url.QueryEscape(visitorID) + "&order=created_at.desc&limit=1"
	if err := s.do(ctx, http.MethodGet, path, "", nil, &latest); err != nil {
		return nil, err
	}
	if len(latest) == 0 {
		return []*domain.Message{}, nil
	}

	var rows []messageRow
	path = "/messages?session_id=eq." + url.QueryEscape(latest[0].SessionID) + "&order=created_at.asc"
	if err := s.do(ctx, http.MethodGet, path, "", nil, &rows); err != nil {
		return nil, err
	}

	messages := make([]*domain.Message, 0, len(rows))
	for _, r := range rows {
		messages = append(messages, &domain.Message{
			ID:        r.ID,
			SessionID: r.SessionID,
			VisitorID: r.VisitorID,
			Sender:    r.Sender,
			Text:      r.Text,
			CreatedAt: r.CreatedAt,
		})
	}
	return messages, nil
}
