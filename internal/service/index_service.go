package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/vilahaus/concierge/internal/domain"
	"github.com/vilahaus/concierge/internal/vectorstore"
)

// BatchEmbedder embeds many texts in one call.
type BatchEmbedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// IndexService embeds listing copy and writes it to the vector index.
// It runs offline (cmd/indexer); the serving path only reads.
type IndexService struct {
	embedder BatchEmbedder
	store    vectorstore.Store
	logger   *zap.Logger
}

// NewIndexService creates an index service.
func NewIndexService(embedder BatchEmbedder, store vectorstore.Store, logger *zap.Logger) *IndexService {
	return &IndexService{
		embedder: embedder,
		store:    store,
		logger:   logger,
	}
}

// IndexListings embeds one chunk per listing and upserts them.
// Returns the number of chunks written.
func (s *IndexService) IndexListings(ctx context.Context, listings []domain.Listing) (int, error) {
	if len(listings) == 0 {
		return 0, nil
	}

	texts := make([]string, len(listings))
	for i, listing := range listings {
		texts[i] = listingText(listing)
	}

	vectors, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("failed to embed listings: %w", err)
	}

	chunks := make([]domain.DocumentChunk, len(listings))
	for i, listing := range listings {
		chunks[i] = domain.DocumentChunk{
			ID:      "listing-" + strings.ToLower(listing.ID),
			Content: texts[i],
			Metadata: map[string]any{
				"flat_id": listing.ID,
				"status":  listing.Status,
			},
			Embedding: vectors[i],
		}
	}

	if err := s.store.Upsert(ctx, chunks); err != nil {
		return 0, fmt.Errorf("failed to upsert chunks: %w", err)
	}

	s.logger.Info("indexed listings", zap.Int("count", len(chunks)))
	return len(chunks), nil
}

func listingText(listing domain.Listing) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Unit %s: %s.", listing.ID, listing.Title)
	if listing.Description != "" {
		sb.WriteString(" " + listing.Description)
	}
	if listing.Rooms > 0 {
		fmt.Fprintf(&sb, " %.1f rooms.", listing.Rooms)
	}
	if listing.AreaM2 > 0 {
		fmt.Fprintf(&sb, " %.0f m2.", listing.AreaM2)
	}
	if listing.Floor != 0 {
		fmt.Fprintf(&sb, " Floor %d.", listing.Floor)
	}
	if listing.Price != "" {
		fmt.Fprintf(&sb, " Price %s.", listing.Price)
	}
	if listing.Status != "" {
		fmt.Fprintf(&sb, " Status: %s.", listing.Status)
	}
	return sb.String()
}
