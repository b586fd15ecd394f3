package service

import (
	"github.com/vilahaus/concierge/internal/config"
)

// WidgetConfigResponse is what the embed loader fetches before
// rendering the chat widget.
type WidgetConfigResponse struct {
	Config  config.WidgetConfig `json:"config"`
	BaseURL string              `json:"base_url"`
}

// WidgetService serves widget bootstrap configuration.
type WidgetService struct {
	cfg *config.Config
}

// NewWidgetService creates a widget service.
func NewWidgetService(cfg *config.Config) *WidgetService {
	return &WidgetService{cfg: cfg}
}

// GetConfig returns the widget UI configuration and API base URL.
func (s *WidgetService) GetConfig() *WidgetConfigResponse {
	return &WidgetConfigResponse{
		Config:  s.cfg.Widget,
		BaseURL: s.cfg.Server.BaseURL,
	}
}
