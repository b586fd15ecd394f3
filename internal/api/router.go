package api

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	calendarapi "github.com/vilahaus/concierge/internal/api/calendar"
	chatapi "github.com/vilahaus/concierge/internal/api/chat"
	leadsapi "github.com/vilahaus/concierge/internal/api/leads"
	"github.com/vilahaus/concierge/internal/api/middleware"
	widgetapi "github.com/vilahaus/concierge/internal/api/widget"
	"github.com/vilahaus/concierge/internal/service"
	"github.com/vilahaus/concierge/internal/tts"
)

// RouterConfig holds configuration for the router
type RouterConfig struct {
	AllowOrigins []string
}

// SetupRouter sets up the Gin router
func SetupRouter(
	chatService *service.ChatService,
	leadService *service.LeadService,
	calendarService *service.CalendarService,
	widgetService *service.WidgetService,
	ttsClient *tts.Client,
	logger *zap.Logger,
	cfg RouterConfig,
) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.CORS(cfg.AllowOrigins))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	apiGroup := r.Group("/api")

	chatHandler := chatapi.NewHandler(chatService, ttsClient, logger)
	chatHandler.RegisterRoutes(apiGroup)

	leadsHandler := leadsapi.NewHandler(leadService, logger)
	leadsHandler.RegisterRoutes(apiGroup)

	calendarHandler := calendarapi.NewHandler(calendarService, logger)
	calendarHandler.RegisterRoutes(apiGroup)

	widgetHandler := widgetapi.NewHandler(widgetService)
	widgetHandler.RegisterRoutes(apiGroup)

	return r
}
