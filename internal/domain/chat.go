package domain

import "time"

// Turn senders
const (
	SenderUser = "user"
	SenderBot  = "bot"
)

// Turn is a single exchange entry in a conversation
type Turn struct {
	Sender    string    `json:"sender"` // user, bot
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// ConversationContext holds the per-session chat state tracked in memory
type ConversationContext struct {
	SessionID    string    `json:"session_id"`
	VisitorID    string    `json:"visitor_id"`
	Turns        []Turn    `json:"turns"`
	FlatsViewed  []string  `json:"flats_viewed,omitempty"`
	LastActivity time.Time `json:"last_activity"`
}

// Message is a persisted chat message row
type Message struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	VisitorID string    `json:"visitor_id"`
	Sender    string    `json:"sender"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// Source is a retrieved document citation included in a chat response
type Source struct {
	ID      string  `json:"id"`
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}

// NavigationCommand tells the widget to navigate the host page
type NavigationCommand struct {
	Target string `json:"target"`
}

// HistoryTurn is a prior turn supplied by the widget in a chat request
type HistoryTurn struct {
	Sender string `json:"sender"`
	Text   string `json:"text"`
}

// ChatRequest is the body of POST /api/rag-chat
type ChatRequest struct {
	Message             string        `json:"message" binding:"required"`
	Context             string        `json:"context,omitempty"` // page the visitor is viewing
	VisitorID           string        `json:"visitorId"`
	SessionID           string        `json:"sessionId"`
	ConversationHistory []HistoryTurn `json:"conversationHistory,omitempty"`
	RAGEnabled          bool          `json:"ragEnabled"`
}

// ChatResponse is the structured reply returned to the widget
type ChatResponse struct {
	SessionID         string             `json:"sessionId"`
	Message           string             `json:"message"`
	Sources           []Source           `json:"sources,omitempty"`
	Confidence        float64            `json:"confidence"`
	Intent            string             `json:"intent"`
	Entities          Entities           `json:"entities"`
	NavigationCommand *NavigationCommand `json:"navigationCommand,omitempty"`
	HighIntent        bool               `json:"highIntent"`
}

// Entities are named entities detected in a chat turn
type Entities struct {
	Units      []string `json:"units,omitempty"`
	Dates      []string `json:"dates,omitempty"`
	Timeframes []string `json:"timeframes,omitempty"`
}

// HistoryResponse is the body of GET /api/chat/history
type HistoryResponse struct {
	Messages []*Message `json:"messages"`
}
