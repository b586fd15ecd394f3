package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/vilahaus/concierge/internal/domain"
	"github.com/vilahaus/concierge/internal/repository"
)

// MemoryService keeps per-session conversation state in process, with a
// best-effort write-through of turns to the message store. Losing the
// map on restart loses context, not data the widget depends on; the
// store keeps the durable history.
type MemoryService struct {
	mu             sync.RWMutex
	contexts       map[string]*domain.ConversationContext
	flatsByVisitor map[string][]string

	messages repository.MessageStore
	logger   *zap.Logger
}

// NewMemoryService creates a memory service. messages may be nil; the
// service then runs purely in process.
func NewMemoryService(messages repository.MessageStore, logger *zap.Logger) *MemoryService {
	return &MemoryService{
		contexts:       make(map[string]*domain.ConversationContext),
		flatsByVisitor: make(map[string][]string),
		messages:       messages,
		logger:         logger,
	}
}

func contextKey(sessionID, visitorID string) string {
	return sessionID + "|" + visitorID
}

// GetConversationContext returns a snapshot of the context for the
// session, creating an empty one on first use.
func (s *MemoryService) GetConversationContext(sessionID, visitorID string) domain.ConversationContext {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := contextKey(sessionID, visitorID)
	cc, ok := s.contexts[key]
	if !ok {
		cc = &domain.ConversationContext{
			SessionID:    sessionID,
			VisitorID:    visitorID,
			LastActivity: time.Now(),
		}
		s.contexts[key] = cc
	}

	snapshot := *cc
	snapshot.Turns = append([]domain.Turn(nil), cc.Turns...)
	snapshot.FlatsViewed = append([]string(nil), cc.FlatsViewed...)
	return snapshot
}

// UpdateConversationContext appends a turn and bumps last activity.
// A failing store write is logged and never blocks the caller.
func (s *MemoryService) UpdateConversationContext(ctx context.Context, sessionID, visitorID string, turn domain.Turn) {
	if turn.Timestamp.IsZero() {
		turn.Timestamp = time.Now()
	}

	s.mu.Lock()
	key := contextKey(sessionID, visitorID)
	cc, ok := s.contexts[key]
	if !ok {
		cc = &domain.ConversationContext{SessionID: sessionID, VisitorID: visitorID}
		s.contexts[key] = cc
	}
	cc.Turns = append(cc.Turns, turn)
	cc.LastActivity = turn.Timestamp
	s.mu.Unlock()

	if s.messages == nil {
		return
	}
	message := &domain.Message{
		SessionID: sessionID,
		VisitorID: visitorID,
		Sender:    turn.Sender,
		Text:      turn.Text,
		CreatedAt: turn.Timestamp,
	}
	if err := s.messages.InsertMessage(ctx, message); err != nil {
		s.logger.Warn("conversation write-through failed",
			zap.String("session_id", sessionID),
			zap.Error(err))
	}
}

// AddPropertyInteraction appends a flat id to the visitor's viewed log.
func (s *MemoryService) AddPropertyInteraction(visitorID, flatID string) {
	if flatID == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.flatsByVisitor[visitorID] {
		if existing == flatID {
			return
		}
	}
	s.flatsByVisitor[visitorID] = append(s.flatsByVisitor[visitorID], flatID)
}

// RecentTurns returns up to n most recent turns for the session.
func (s *MemoryService) RecentTurns(sessionID, visitorID string, n int) []domain.Turn {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cc, ok := s.contexts[contextKey(sessionID, visitorID)]
	if !ok {
		return nil
	}
	turns := cc.Turns
	if len(turns) > n {
		turns = turns[len(turns)-n:]
	}
	return append([]domain.Turn(nil), turns...)
}

// History returns the visitor's most recent persisted session, oldest
// first. Always an empty slice, never nil, when there is no history.
func (s *MemoryService) History(ctx context.Context, visitorID string) ([]*domain.Message, error) {
	if s.messages == nil {
		return []*domain.Message{}, nil
	}
	messages, err := s.messages.ListRecentMessages(ctx, visitorID)
	if err != nil {
		return nil, err
	}
	if messages == nil {
		messages = []*domain.Message{}
	}
	return messages, nil
}
