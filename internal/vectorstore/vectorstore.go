// Package vectorstore abstracts the nearest-neighbor index over listing
// chunks. The pinecone implementation serves production; the memory
// implementation serves tests and keyless development.
package vectorstore

import (
	"context"

	"github.com/vilahaus/concierge/internal/domain"
)

// Match is a scored nearest-neighbor result
type Match struct {
	ID       string
	Score    float64
	Content  string
	Metadata map[string]any
}

// Store indexes and queries document chunks by embedding vector
type Store interface {
	Upsert(ctx context.Context, chunks []domain.DocumentChunk) error
	Query(ctx context.Context, vector []float32, topK int) ([]Match, error)
}
