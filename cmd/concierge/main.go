package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/vilahaus/concierge/internal/api"
	"github.com/vilahaus/concierge/internal/calendar"
	"github.com/vilahaus/concierge/internal/config"
	"github.com/vilahaus/concierge/internal/llm"
	"github.com/vilahaus/concierge/internal/notify"
	"github.com/vilahaus/concierge/internal/repository"
	"github.com/vilahaus/concierge/internal/repository/sqlite"
	"github.com/vilahaus/concierge/internal/repository/supabase"
	"github.com/vilahaus/concierge/internal/service"
	"github.com/vilahaus/concierge/internal/tts"
	"github.com/vilahaus/concierge/internal/vectorstore"
	"github.com/vilahaus/concierge/internal/vectorstore/memory"
	"github.com/vilahaus/concierge/internal/vectorstore/pinecone"
)

var (
	configPath = flag.String("config", "", "Path to config file")
)

func main() {
	flag.Parse()
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	store, err := newStore(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize store", zap.Error(err))
	}
	defer store.Close()

	// Collaborators are optional at startup; a missing key disables the
	// feature with a loud warning and the affected route reports the
	// collaborator as unavailable instead of silently no-oping.
	var embedder service.Embedder
	var generator service.Generator
	openaiClient, err := llm.NewClient(llm.Config{
		APIKey:         cfg.OpenAI.APIKey,
		BaseURL:        cfg.OpenAI.BaseURL,
		ChatModel:      cfg.OpenAI.ChatModel,
		EmbeddingModel: cfg.OpenAI.EmbeddingModel,
		Timeout:        time.Duration(cfg.OpenAI.TimeoutSeconds) * time.Second,
	})
	if err != nil {
		logger.Warn("OpenAI disabled, chat will serve fallback replies", zap.Error(err))
	} else {
		embedder = openaiClient
		generator = openaiClient
	}

	var retriever vectorstore.Store
	pineconeStore, err := pinecone.New(pinecone.Config{
		APIKey:    cfg.Pinecone.APIKey,
		IndexHost: cfg.Pinecone.IndexHost,
	})
	if err != nil {
		logger.Warn("Pinecone disabled, using in-memory vector store", zap.Error(err))
		retriever = memory.New()
	} else {
		retriever = pineconeStore
	}

	ttsClient, err := tts.NewClient(tts.Config{
		APIKey:  cfg.ElevenLabs.APIKey,
		VoiceID: cfg.ElevenLabs.VoiceID,
	})
	if err != nil {
		logger.Warn("ElevenLabs disabled, /api/tts will be unavailable", zap.Error(err))
		ttsClient = nil
	}

	calendlyClient, err := calendar.NewCalendlyClient(calendar.CalendlyConfig{
		APIKey:  cfg.Calendly.APIKey,
		UserURI: cfg.Calendly.UserURI,
	})
	if err != nil {
		logger.Warn("Calendly disabled, send_invite will be unavailable", zap.Error(err))
		calendlyClient = nil
	}

	notifier := notify.NewNotifier(cfg.Webhook.LeadURL, logger)
	if cfg.Webhook.LeadURL == "" {
		logger.Warn("lead webhook URL not set, notifications disabled")
	}

	memoryService := service.NewMemoryService(store, logger)
	chatService := service.NewChatService(cfg, embedder, retriever, generator, memoryService, logger)
	leadService := service.NewLeadService(store, notifier, logger)
	calendarService := service.NewCalendarService(calendlyClient, cfg.Calendly.EventName, logger)
	widgetService := service.NewWidgetService(cfg)

	router := api.SetupRouter(
		chatService, leadService, calendarService, widgetService,
		ttsClient, logger,
		api.RouterConfig{AllowOrigins: []string{"*"}},
	)

	srv := &http.Server{
		Addr:         cfg.Address(),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("Starting concierge server",
			zap.String("address", cfg.Address()),
			zap.String("store", cfg.Store.Driver),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

func newStore(cfg *config.Config) (repository.Store, error) {
	switch cfg.Store.Driver {
	case "supabase":
		return supabase.New(supabase.Config{
			URL:        cfg.Store.SupabaseURL,
			ServiceKey: cfg.Store.ServiceKey,
		})
	default:
		return sqlite.New(cfg.Store.SQLitePath)
	}
}
