// Package leads exposes lead capture and visitor tracking endpoints.
package leads

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vilahaus/concierge/internal/domain"
	"github.com/vilahaus/concierge/internal/service"
)

// Handler handles lead and tracking requests.
type Handler struct {
	leadService *service.LeadService
	logger      *zap.Logger
}

// NewHandler creates a leads handler
func NewHandler(leadService *service.LeadService, logger *zap.Logger) *Handler {
	return &Handler{
		leadService: leadService,
		logger:      logger,
	}
}

// RegisterRoutes registers lead routes
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/leads", h.Create)
	r.PATCH("/leads", h.Qualify)
	r.POST("/track", h.Track)
}

// Create handles a lead-capture form submission
func (h *Handler) Create(c *gin.Context) {
	var req domain.CreateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}
	if req.Email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email is required"})
		return
	}

	if _, err := h.leadService.CaptureLead(c.Request.Context(), &req); err != nil {
		h.logger.Error("lead capture failed", zap.String("visitor_id", req.VisitorID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not save your request, please try again"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Thank you! We will be in touch shortly."})
}

// Qualify handles progressive qualification updates
func (h *Handler) Qualify(c *gin.Context) {
	var req domain.QualifyLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "visitorId is required"})
		return
	}

	lead, err := h.leadService.Qualify(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no lead found for this visitor"})
			return
		}
		h.logger.Error("lead qualification failed", zap.String("visitor_id", req.VisitorID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update lead"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "lead updated", "leadScore": lead.Score})
}

// Track records a visitor event. Best-effort from the widget's point
// of view; it never retries.
func (h *Handler) Track(c *gin.Context) {
	var req domain.TrackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "visitorId and eventName are required"})
		return
	}

	if err := h.leadService.Track(c.Request.Context(), &req); err != nil {
		h.logger.Error("event tracking failed",
			zap.String("visitor_id", req.VisitorID),
			zap.String("event", req.EventName),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not record event"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"status": "recorded"})
}
