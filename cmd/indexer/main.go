// The indexer embeds listing copy and writes it to the vector index.
// It runs offline, typically after the listings file changes:
//
//	indexer -listings ./data/listings.json
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/vilahaus/concierge/internal/config"
	"github.com/vilahaus/concierge/internal/domain"
	"github.com/vilahaus/concierge/internal/llm"
	"github.com/vilahaus/concierge/internal/service"
	"github.com/vilahaus/concierge/internal/vectorstore/pinecone"
)

var (
	configPath   = flag.String("config", "", "Path to config file")
	listingsPath = flag.String("listings", "./data/listings.json", "Path to listings JSON file")
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

	data, err := os.ReadFile(*listingsPath)
	if err != nil {
		logger.Fatal("Failed to read listings file", zap.String("path", *listingsPath), zap.Error(err))
	}
	var listings []domain.Listing
	if err := json.Unmarshal(data, &listings); err != nil {
		logger.Fatal("Failed to parse listings file", zap.Error(err))
	}

	openaiClient, err := llm.NewClient(llm.Config{
		APIKey:         cfg.OpenAI.APIKey,
		BaseURL:        cfg.OpenAI.BaseURL,
		EmbeddingModel: cfg.OpenAI.EmbeddingModel,
		Timeout:        60 * time.Second,
	})
	if err != nil {
		logger.Fatal("OpenAI is required for indexing", zap.Error(err))
	}

	pineconeStore, err := pinecone.New(pinecone.Config{
		APIKey:    cfg.Pinecone.APIKey,
		IndexHost: cfg.Pinecone.IndexHost,
		Timeout:   60 * time.Second,
	})
	if err != nil {
		logger.Fatal("Pinecone is required for indexing", zap.Error(err))
	}

	indexService := service.NewIndexService(openaiClient, pineconeStore, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	count, err := indexService.IndexListings(ctx, listings)
	if err != nil {
		logger.Fatal("Indexing failed", zap.Error(err))
	}

	logger.Info("Indexing complete", zap.Int("chunks", count))
}
