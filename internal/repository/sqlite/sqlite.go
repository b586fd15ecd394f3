// Package sqlite implements repository.Store on a local SQLite file.
// It is the default backend for single-instance deployments and tests.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/vilahaus/concierge/internal/domain"
)

// Store wraps the database connection
type Store struct {
	db *sql.DB
}

// New opens (creating if needed) the database at dbPath and runs migrations.
func New(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if err := runMigrations(db); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Store{db: db}, nil
}

func runMigrations(db *sql.DB) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS visitors (
			id TEXT PRIMARY KEY,
			session_id TEXT,
			name TEXT,
			email TEXT,
			phone TEXT,
			message_count INTEGER DEFAULT 0,
			conversation_started INTEGER DEFAULT 0,
			lead_captured INTEGER DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS leads (
			id TEXT PRIMARY KEY,
			visitor_id TEXT NOT NULL,
			name TEXT,
			email TEXT,
			phone TEXT,
			message TEXT,
			flat_id TEXT,
			purchase_timeframe TEXT,
			qualification TEXT,
			consent INTEGER DEFAULT 0,
			consent_at DATETIME,
			score INTEGER DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_leads_visitor ON leads(visitor_id)`,
		`CREATE TABLE IF NOT EXISTS interactions (
			id TEXT PRIMARY KEY,
			lead_id TEXT,
			visitor_id TEXT NOT NULL,
			type TEXT NOT NULL,
			points INTEGER DEFAULT 0,
			details TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_interactions_lead ON interactions(lead_id)`,
		`CREATE INDEX IF NOT EXISTS idx_interactions_visitor ON interactions(visitor_id)`,
		`CREATE TABLE IF NOT EXISTS messages (
			id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL,
			visitor_id TEXT NOT NULL,
			sender TEXT NOT NULL,
			text TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_messages_visitor ON messages(visitor_id)`,
		`CREATE INDEX IF NOT EXISTS idx_messages_session ON messages(session_id)`,
	}

	for _, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}

	return nil
}

// Close closes the underlying connection
func (s *Store) Close() error {
	return s.db.Close()
}

// GetVisitor retrieves a visitor by id
func (s *Store) GetVisitor(ctx context.Context, id string) (*domain.Visitor, error) {
	visitor := &domain.Visitor{}
	var sessionID, name, email, phone sql.NullString

	err := s.db.QueryRowContext(ctx, `
		SELECT id, session_id, name, email, phone, message_count,
		       conversation_started, lead_captured, created_at, updated_at
		FROM visitors WHERE id = ?
	`, id).Scan(&visitor.ID, &sessionID, &name, &email, &phone,
		&visitor.MessageCount, &visitor.ConversationStarted, &visitor.LeadCaptured,
		&visitor.CreatedAt, &visitor.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	visitor.SessionID = sessionID.String
	visitor.Name = name.String
	visitor.Email = email.String
	visitor.Phone = phone.String

	return visitor, nil
}

// UpsertVisitor inserts the visitor or replaces its mutable fields
func (s *Store) UpsertVisitor(ctx context.Context, visitor *domain.Visitor) error {
	now := time.Now()
	if visitor.CreatedAt.IsZero() {
		visitor.CreatedAt = now
	}
	visitor.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO visitors (id, session_id, name, email, phone, message_count,
			conversation_started, lead_captured, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			session_id = excluded.session_id,
			name = excluded.name,
			email = excluded.email,
			phone = excluded.phone,
			message_count = excluded.message_count,
			conversation_started = excluded.conversation_started,
			lead_captured = excluded.lead_captured,
			updated_at = excluded.updated_at
	`, visitor.ID, visitor.SessionID, visitor.Name, visitor.Email, visitor.Phone,
		visitor.MessageCount, visitor.ConversationStarted, visitor.LeadCaptured,
		visitor.CreatedAt, visitor.UpdatedAt)

	return err
}

// GetLeadByVisitor retrieves the lead row for a visitor, if any
func (s *Store) GetLeadByVisitor(ctx context.Context, visitorID string) (*domain.Lead, error) {
	return s.getLead(ctx, `WHERE visitor_id = ? ORDER BY created_at DESC LIMIT 1`, visitorID)
}

// GetLead retrieves a lead by id
func (s *Store) GetLead(ctx context.Context, id string) (*domain.Lead, error) {
	return s.getLead(ctx, `WHERE id = ?`, id)
}

func (s *Store) getLead(ctx context.Context, where string, arg any) (*domain.Lead, error) {
	lead := &domain.Lead{}
	var phone, message, flatID, timeframe, qualificationJSON sql.NullString
	var consentAt sql.NullTime

	err := s.db.QueryRowContext(ctx, `
		SELECT id, visitor_id, name, email, phone, message, flat_id,
		       purchase_timeframe, qualification, consent, consent_at, score,
		       created_at, updated_at
		FROM leads `+where, arg).Scan(
		&lead.ID, &lead.VisitorID, &lead.Name, &lead.Email, &phone, &message,
		&flatID, &timeframe, &qualificationJSON, &lead.Consent, &consentAt,
		&lead.Score, &lead.CreatedAt, &lead.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	lead.Phone = phone.String
	lead.Message = message.String
	lead.FlatID = flatID.String
	lead.PurchaseTimeframe = timeframe.String
	if qualificationJSON.Valid && qualificationJSON.String != "" {
		json.Unmarshal([]byte(qualificationJSON.String), &lead.Qualification)
	}
	if consentAt.Valid {
		t := consentAt.Time
		lead.ConsentAt = &t
	}

	return lead, nil
}

// InsertLead creates a new lead row
func (s *Store) InsertLead(ctx context.Context, lead *domain.Lead) error {
	if lead.ID == "" {
		lead.ID = uuid.New().String()
	}
	now := time.Now()
	lead.CreatedAt = now
	lead.UpdatedAt = now

	qualificationJSON, _ := json.Marshal(lead.Qualification)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO leads (id, visitor_id, name, email, phone, message, flat_id,
			purchase_timeframe, qualification, consent, consent_at, score,
			created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, lead.ID, lead.VisitorID, lead.Name, lead.Email, lead.Phone, lead.Message,
		lead.FlatID, lead.PurchaseTimeframe, string(qualificationJSON),
		lead.Consent, lead.ConsentAt, lead.Score, lead.CreatedAt, lead.UpdatedAt)

	return err
}

// UpdateLead updates contact fields, qualification and consent
func (s *Store) UpdateLead(ctx context.Context, lead *domain.Lead) error {
	lead.UpdatedAt = time.Now()
	qualificationJSON, _ := json.Marshal(lead.Qualification)

	result, err := s.db.ExecContext(ctx, `
		UPDATE leads SET name = ?, email = ?, phone = ?, message = ?, flat_id = ?,
			purchase_timeframe = ?, qualification = ?, consent = ?, consent_at = ?,
			score = ?, updated_at = ?
		WHERE id = ?
	`, lead.Name, lead.Email, lead.Phone, lead.Message, lead.FlatID,
		lead.PurchaseTimeframe, string(qualificationJSON), lead.Consent,
		lead.ConsentAt, lead.Score, lead.UpdatedAt, lead.ID)

	if err != nil {
		return err
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return fmt.Errorf("lead not found: %s", lead.ID)
	}

	return nil
}

// UpdateLeadScore persists a recomputed score
func (s *Store) UpdateLeadScore(ctx context.Context, leadID string, score int) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE leads SET score = ?, updated_at = ? WHERE id = ?
	`, score, time.Now(), leadID)
	return err
}

// InsertInteraction appends a tracked event
func (s *Store) InsertInteraction(ctx context.Context, interaction *domain.Interaction) error {
	if interaction.ID == "" {
		interaction.ID = uuid.New().String()
	}
	if interaction.CreatedAt.IsZero() {
		interaction.CreatedAt = time.Now()
	}

	detailsJSON, _ := json.Marshal(interaction.Details)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO interactions (id, lead_id, visitor_id, type, points, details, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, interaction.ID, interaction.LeadID, interaction.VisitorID,
		interaction.Type, interaction.Points, string(detailsJSON), interaction.CreatedAt)

	return err
}

// ListInteractionsByLead returns all interactions recorded for a lead
func (s *Store) ListInteractionsByLead(ctx context.Context, leadID string) ([]*domain.Interaction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, lead_id, visitor_id, type, points, details, created_at
		FROM interactions WHERE lead_id = ?
		ORDER BY created_at ASC
	`, leadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var interactions []*domain.Interaction
	for rows.Next() {
		interaction := &domain.Interaction{}
		var leadIDCol, detailsJSON sql.NullString

		if err := rows.Scan(&interaction.ID, &leadIDCol, &interaction.VisitorID,
			&interaction.Type, &interaction.Points, &detailsJSON, &interaction.CreatedAt); err != nil {
			return nil, err
		}

		interaction.LeadID = leadIDCol.String
		if detailsJSON.Valid && detailsJSON.String != "" {
			json.Unmarshal([]byte(detailsJSON.String), &interaction.Details)
		}
		interactions = append(interactions, interaction)
	}

	return interactions, rows.Err()
}

// InsertMessage appends a chat message
func (s *Store) InsertMessage(ctx context.Context, message *domain.Message) error {
	if message.ID == "" {
		message.ID = uuid.New().String()
	}
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO messages (id, session_id, visitor_id, sender, text, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, message.ID, message.SessionID, message.VisitorID, message.Sender,
		message.Text, message.CreatedAt)

	return err
}

// ListRecentMessages returns the visitor's most recent session, oldest first
func (s *Store) ListRecentMessages(ctx context.Context, visitorID string) ([]*domain.Message, error) {
	var sessionID string
	err := s.db.QueryRowContext(ctx, `
		SELECT session_id FROM messages WHERE visitor_id = ?
		ORDER BY created_at DESC LIMIT 1
	`, visitorID).Scan(&sessionID)

	if err == sql.ErrNoRows {
		return []*domain.Message{}, nil
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session_id, visitor_id, sender, text, created_at
		FROM messages WHERE session_id = ?
		ORDER BY created_at ASC
	`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := []*domain.Message{}
	for rows.Next() {
		message := &domain.Message{}
		if err := rows.Scan(&message.ID, &message.SessionID, &message.VisitorID,
			&message.Sender, &message.Text, &message.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, message)
	}

	return messages, rows.Err()
}
