package domain

import "time"

// Interaction types and the points each contributes to a lead score.
// Scoring is a plain additive sum with no recency decay, so recomputing
// over the same interaction set always yields the same value.
const (
	InteractionPageView        = "page_view"
	InteractionChatOpened      = "chat_opened"
	InteractionChatMessage     = "chat_message"
	InteractionTTSPlayed       = "tts_played"
	InteractionPropertyInquiry = "property_inquiry"
	InteractionQualification   = "lead_qualification"
	InteractionLeadSubmission  = "lead_submission"
)

// PointsFor returns the score contribution for a tracked event type.
// Unknown event types are recorded with zero points.
func PointsFor(interactionType string) int {
	switch interactionType {
	case InteractionPageView:
		return 1
	case InteractionTTSPlayed:
		return 2
	case InteractionChatOpened:
		return 5
	case InteractionPropertyInquiry:
		return 15
	case InteractionQualification:
		return 20
	case InteractionLeadSubmission:
		return 30
	default:
		return 0
	}
}

// Visitor is a tracked browser identity, keyed by a client-generated token
type Visitor struct {
	ID                  string    `json:"id"`
	SessionID           string    `json:"session_id,omitempty"`
	Name                string    `json:"name,omitempty"`
	Email               string    `json:"email,omitempty"`
	Phone               string    `json:"phone,omitempty"`
	MessageCount        int       `json:"message_count"`
	ConversationStarted bool      `json:"conversation_started"`
	LeadCaptured        bool      `json:"lead_captured"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// Lead is a captured prospect record, keyed on visitor id for upserts
type Lead struct {
	ID                string            `json:"id"`
	VisitorID         string            `json:"visitor_id"`
	Name              string            `json:"name"`
	Email             string            `json:"email"`
	Phone             string            `json:"phone,omitempty"`
	Message           string            `json:"message,omitempty"`
	FlatID            string            `json:"flat_id,omitempty"`
	PurchaseTimeframe string            `json:"purchase_timeframe,omitempty"`
	Qualification     map[string]string `json:"qualification,omitempty"`
	Consent           bool              `json:"consent"`
	ConsentAt         *time.Time        `json:"consent_at,omitempty"`
	Score             int               `json:"score"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

// Interaction is an append-only tracked event; rows are never mutated
type Interaction struct {
	ID        string         `json:"id"`
	LeadID    string         `json:"lead_id,omitempty"`
	VisitorID string         `json:"visitor_id"`
	Type      string         `json:"type"`
	Points    int            `json:"points"`
	Details   map[string]any `json:"details,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// CreateLeadRequest is the body of POST /api/leads
type CreateLeadRequest struct {
	Name              string `json:"name"`
	Email             string `json:"email"`
	Phone             string `json:"phone"`
	Message           string `json:"message"`
	FlatID            string `json:"flatId"`
	PurchaseTimeframe string `json:"purchaseTimeframe"`
	VisitorID         string `json:"visitorId"`
	Consent           bool   `json:"consent"`
}

// QualifyLeadRequest is the body of PATCH /api/leads
type QualifyLeadRequest struct {
	VisitorID string            `json:"visitorId" binding:"required"`
	LeadData  map[string]string `json:"leadData"`
	LeadScore int               `json:"leadScore"`
	FlatID    string            `json:"flatId"`
}

// TrackRequest is the body of POST /api/track
type TrackRequest struct {
	VisitorID string         `json:"visitorId" binding:"required"`
	EventName string         `json:"eventName" binding:"required"`
	Details   map[string]any `json:"details"`
	Path      string         `json:"path"`
}
