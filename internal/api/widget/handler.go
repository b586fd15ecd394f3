// Package widget serves bootstrap configuration for the embed loader.
package widget

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vilahaus/concierge/internal/service"
)

// Handler handles widget API requests
type Handler struct {
	widgetService *service.WidgetService
}

// NewHandler creates a widget handler
func NewHandler(widgetService *service.WidgetService) *Handler {
	return &Handler{widgetService: widgetService}
}

// RegisterRoutes registers widget routes
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/widget/config", h.GetConfig)
}

// GetConfig returns the widget configuration
func (h *Handler) GetConfig(c *gin.Context) {
	c.JSON(http.StatusOK, h.widgetService.GetConfig())
}
