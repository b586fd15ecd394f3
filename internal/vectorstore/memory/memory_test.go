package memory

import (
	"context"
	"testing"

	"github.com/vilahaus/concierge/internal/domain"
)

func TestQueryRanksBySimilarity(t *testing.T) {
	store := New()
	ctx := context.Background()

	err := store.Upsert(ctx, []domain.DocumentChunk{
		{ID: "a", Content: "unit A02", Embedding: []float32{1, 0}},
		{ID: "b", Content: "unit B14", Embedding: []float32{0, 1}},
		{ID: "c", Content: "amenities", Embedding: []float32{0.9, 0.1}},
	})
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	matches, err := store.Query(ctx, []float32{1, 0}, 2)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}

	if len(matches) != 2 {
		t.Fatalf("matches = %d, want topK 2", len(matches))
	}
	if matches[0].ID != "a" || matches[1].ID != "c" {
		t.Errorf("order = %s, %s; want a, c", matches[0].ID, matches[1].ID)
	}
	if matches[0].Score <= matches[1].Score {
		t.Errorf("scores not descending: %v, %v", matches[0].Score, matches[1].Score)
	}
}

func TestUpsertReplacesByID(t *testing.T) {
	store := New()
	ctx := context.Background()

	store.Upsert(ctx, []domain.DocumentChunk{{ID: "a", Content: "old", Embedding: []float32{1, 0}}})
	store.Upsert(ctx, []domain.DocumentChunk{{ID: "a", Content: "new", Embedding: []float32{1, 0}}})

	matches, err := store.Query(ctx, []float32{1, 0}, 10)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("matches = %d, want 1 (replaced, not appended)", len(matches))
	}
	if matches[0].Content != "new" {
		t.Errorf("Content = %q, want new", matches[0].Content)
	}
}

func TestQueryEmptyStore(t *testing.T) {
	matches, err := New().Query(context.Background(), []float32{1, 0}, 4)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(matches) != 0 {
		t.Errorf("matches = %d, want none", len(matches))
	}
}

func TestCosineMismatchedLengths(t *testing.T) {
	if got := cosine([]float32{1, 0}, []float32{1}); got != 0 {
		t.Errorf("cosine of mismatched vectors = %v, want 0", got)
	}
	if got := cosine([]float32{0, 0}, []float32{0, 0}); got != 0 {
		t.Errorf("cosine of zero vectors = %v, want 0", got)
	}
}
