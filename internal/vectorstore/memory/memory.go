// Package memory is an in-process vector store used in tests and when
// no Pinecone credentials are configured.
package memory

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/vilahaus/concierge/internal/domain"
	"github.com/vilahaus/concierge/internal/vectorstore"
)

// Store keeps chunks and their vectors in a slice behind a mutex.
type Store struct {
	mu     sync.RWMutex
	chunks []domain.DocumentChunk
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{}
}

// Upsert replaces chunks with matching ids and appends the rest
func (s *Store) Upsert(ctx context.Context, chunks []domain.DocumentChunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, chunk := range chunks {
		replaced := false
		for i := range s.chunks {
			if s.chunks[i].ID == chunk.ID {
				s.chunks[i] = chunk
				replaced = true
				break
			}
		}
		if !replaced {
			s.chunks = append(s.chunks, chunk)
		}
	}
	return nil
}

// Query returns the topK chunks by cosine similarity
func (s *Store) Query(ctx context.Context, vector []float32, topK int) ([]vectorstore.Match, error) {
	if topK <= 0 {
		topK = 4
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	matches := make([]vectorstore.Match, 0, len(s.chunks))
	for _, chunk := range s.chunks {
		matches = append(matches, vectorstore.Match{
			ID:       chunk.ID,
			Score:    cosine(vector, chunk.Embedding),
			Content:  chunk.Content,
			Metadata: chunk.Metadata,
		})
	}

	sort.Slice(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })
	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

func cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
