// Package calendar exposes the viewing-appointment endpoint.
package calendar

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vilahaus/concierge/internal/domain"
	"github.com/vilahaus/concierge/internal/service"
)

// Handler handles calendar requests.
type Handler struct {
	calendarService *service.CalendarService
	logger          *zap.Logger
}

// NewHandler creates a calendar handler
func NewHandler(calendarService *service.CalendarService, logger *zap.Logger) *Handler {
	return &Handler{
		calendarService: calendarService,
		logger:          logger,
	}
}

// RegisterRoutes registers calendar routes
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/calendar", h.Schedule)
}

// Schedule produces a calendar artifact for the requested action:
// an ICS download, a prefilled calendar URL, or a Calendly invite link.
func (h *Handler) Schedule(c *gin.Context) {
	var req domain.CalendarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "scheduleData and action are required"})
		return
	}

	artifact, err := h.calendarService.Handle(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidRequest):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, domain.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "no matching scheduling event was found"})
		default:
			h.logger.Error("calendar action failed", zap.String("action", req.Action), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not prepare the calendar invite"})
		}
		return
	}

	if artifact.URL != "" {
		c.JSON(http.StatusOK, gin.H{"url": artifact.URL})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+artifact.Filename+`"`)
	c.Data(http.StatusOK, artifact.ContentType, artifact.Body)
}
