// Package chat exposes the conversational endpoints the widget calls.
package chat

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vilahaus/concierge/internal/domain"
	"github.com/vilahaus/concierge/internal/service"
	"github.com/vilahaus/concierge/internal/tts"
)

// Handler handles chat, history and speech requests.
type Handler struct {
	chatService *service.ChatService
	ttsClient   *tts.Client
	logger      *zap.Logger
}

// NewHandler creates a chat handler. ttsClient may be nil.
func NewHandler(chatService *service.ChatService, ttsClient *tts.Client, logger *zap.Logger) *Handler {
	return &Handler{
		chatService: chatService,
		ttsClient:   ttsClient,
		logger:      logger,
	}
}

// RegisterRoutes registers chat routes
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/rag-chat", h.Chat)
	r.GET("/chat/history", h.History)
	r.POST("/tts", h.Speak)
}

// Chat handles one conversational turn
func (h *Handler) Chat(c *gin.Context) {
	var req domain.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message is required"})
		return
	}

	resp, err := h.chatService.Chat(c.Request.Context(), &req)
	if err != nil {
		h.logger.Error("chat failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not generate a reply"})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// History returns the visitor's most recent session messages.
// No history is an empty list, never an error.
func (h *Handler) History(c *gin.Context) {
	visitorID := c.Query("visitorId")
	if visitorID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "visitorId is required"})
		return
	}

	messages, err := h.chatService.History(c.Request.Context(), visitorID)
	if err != nil {
		h.logger.Error("history lookup failed", zap.String("visitor_id", visitorID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load history"})
		return
	}

	c.JSON(http.StatusOK, domain.HistoryResponse{Messages: messages})
}

// Speak synthesizes the given text and streams MPEG audio back
func (h *Handler) Speak(c *gin.Context) {
	var req struct {
		Text string `json:"text" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text is required"})
		return
	}

	if h.ttsClient == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "text-to-speech is not configured"})
		return
	}

	stream, err := h.ttsClient.Synthesize(c.Request.Context(), req.Text)
	if err != nil {
		h.logger.Error("tts synthesis failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not synthesize audio"})
		return
	}
	defer stream.Close()

	c.Header("Content-Type", "audio/mpeg")
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, stream); err != nil {
		h.logger.Warn("tts stream interrupted", zap.Error(err))
	}
}
