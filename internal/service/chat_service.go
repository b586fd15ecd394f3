package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vilahaus/concierge/internal/config"
	"github.com/vilahaus/concierge/internal/domain"
	"github.com/vilahaus/concierge/internal/llm"
	"github.com/vilahaus/concierge/internal/nlu"
	"github.com/vilahaus/concierge/internal/vectorstore"
)

const (
	maxHistoryTurns = 10

	fallbackReply = "I'm sorry, I'm having trouble answering right now. " +
		"Please try again in a moment, or leave your contact details and we'll get back to you."

	systemPrompt = `You are the on-site assistant for a residential real-estate project.
Answer questions about the apartments, prices, availability and viewings.
Be concise and helpful. When listing details are provided below, ground your
answer in them and do not invent numbers. If you don't know, say so and
offer to arrange a viewing.`
)

// Embedder turns text into an embedding vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Generator produces a completion for a prompt.
type Generator interface {
	Complete(ctx context.Context, messages []llm.ChatMessage) (string, error)
}

// Retriever finds nearest listing chunks for a query vector.
type Retriever interface {
	Query(ctx context.Context, vector []float32, topK int) ([]vectorstore.Match, error)
}

// ChatService is the retrieval-augmented chat orchestrator. It owns no
// persistence; turns are handed to the memory service and everything
// else is returned to the caller.
type ChatService struct {
	cfg       *config.Config
	embedder  Embedder
	retriever Retriever
	generator Generator
	memory    *MemoryService
	logger    *zap.Logger
}

// NewChatService creates the chat orchestrator. embedder and retriever
// may be nil, which disables retrieval regardless of the request flag.
func NewChatService(
	cfg *config.Config,
	embedder Embedder,
	retriever Retriever,
	generator Generator,
	memory *MemoryService,
	logger *zap.Logger,
) *ChatService {
	return &ChatService{
		cfg:       cfg,
		embedder:  embedder,
		retriever: retriever,
		generator: generator,
		memory:    memory,
		logger:    logger,
	}
}

// Chat handles one conversational turn. A completion failure degrades
// to an apologetic reply rather than an error; the raw cause stays in
// the server log.
func (s *ChatService) Chat(ctx context.Context, req *domain.ChatRequest) (*domain.ChatResponse, error) {
	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.New().String()
	}

	sources := s.retrieve(ctx, req)
	reply, failed := s.generate(ctx, req, sources)

	intent := nlu.IntentUnknown
	var entities domain.Entities
	var navigation *domain.NavigationCommand
	highIntent := false
	if !failed {
		intent = nlu.DetectIntent(req.Message)
		entities = nlu.ExtractEntities(req.Message)
		if target := nlu.NavigationTarget(intent, entities); target != "" {
			navigation = &domain.NavigationCommand{Target: target}
		}
		highIntent = nlu.HighIntent(req.Message, intent, entities)
	}

	confidence := 0.0
	if !failed {
		confidence = 0.5
		if len(sources) > 0 {
			confidence = sources[0].Score
		}
	}

	now := time.Now()
	s.memory.UpdateConversationContext(ctx, sessionID, req.VisitorID, domain.Turn{
		Sender: domain.SenderUser, Text: req.Message, Timestamp: now,
	})
	s.memory.UpdateConversationContext(ctx, sessionID, req.VisitorID, domain.Turn{
		Sender: domain.SenderBot, Text: reply, Timestamp: now.Add(time.Millisecond),
	})
	for _, unit := range entities.Units {
		s.memory.AddPropertyInteraction(req.VisitorID, unit)
	}

	return &domain.ChatResponse{
		SessionID:         sessionID,
		Message:           reply,
		Sources:           sources,
		Confidence:        confidence,
		Intent:            intent,
		Entities:          entities,
		NavigationCommand: navigation,
		HighIntent:        highIntent,
	}, nil
}

// retrieve embeds the message and queries the vector index. Retrieval
// is best-effort: any failure logs a warning and the turn proceeds
// without sources.
func (s *ChatService) retrieve(ctx context.Context, req *domain.ChatRequest) []domain.Source {
	if !req.RAGEnabled || s.embedder == nil || s.retriever == nil {
		return nil
	}

	vector, err := s.embedder.Embed(ctx, req.Message)
	if err != nil {
		s.logger.Warn("embedding failed, continuing without retrieval", zap.Error(err))
		return nil
	}

	matches, err := s.retriever.Query(ctx, vector, s.cfg.Pinecone.TopK)
	if err != nil {
		s.logger.Warn("vector query failed, continuing without retrieval", zap.Error(err))
		return nil
	}

	var sources []domain.Source
	for _, m := range matches {
		if m.Score < s.cfg.Pinecone.MinScore {
			continue
		}
		sources = append(sources, domain.Source{
			ID:      m.ID,
			Content: m.Content,
			Score:   m.Score,
		})
	}
	return sources
}

func (s *ChatService) generate(ctx context.Context, req *domain.ChatRequest, sources []domain.Source) (reply string, failed bool) {
	if s.generator == nil {
		s.logger.Warn("no generator configured, serving fallback reply")
		return fallbackReply, true
	}

	reply, err := s.generator.Complete(ctx, s.buildPrompt(req, sources))
	if err != nil {
		s.logger.Error("completion failed", zap.Error(err))
		return fallbackReply, true
	}
	return strings.TrimSpace(reply), false
}

func (s *ChatService) buildPrompt(req *domain.ChatRequest, sources []domain.Source) []llm.ChatMessage {
	var sb strings.Builder
	sb.WriteString(systemPrompt)

	if len(sources) > 0 {
		sb.WriteString("\n\nListing details:\n")
		for i, src := range sources {
			fmt.Fprintf(&sb, "[%d] %s\n", i+1, src.Content)
		}
	}
	if req.Context != "" {
		fmt.Fprintf(&sb, "\nThe visitor is currently viewing: %s\n", req.Context)
	}

	messages := []llm.ChatMessage{{Role: "system", Content: sb.String()}}

	history := req.ConversationHistory
	if len(history) == 0 {
		for _, turn := range s.memory.RecentTurns(req.SessionID, req.VisitorID, maxHistoryTurns) {
			history = append(history, domain.HistoryTurn{Sender: turn.Sender, Text: turn.Text})
		}
	}
	if len(history) > maxHistoryTurns {
		history = history[len(history)-maxHistoryTurns:]
	}
	for _, turn := range history {
		role := "user"
		if turn.Sender == domain.SenderBot {
			role = "assistant"
		}
		messages = append(messages, llm.ChatMessage{Role: role, Content: turn.Text})
	}

	return append(messages, llm.ChatMessage{Role: "user", Content: req.Message})
}

// History returns the visitor's most recent persisted session.
func (s *ChatService) History(ctx context.Context, visitorID string) ([]*domain.Message, error) {
	return s.memory.History(ctx, visitorID)
}
