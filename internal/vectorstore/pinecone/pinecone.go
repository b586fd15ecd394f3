// Package pinecone is a minimal REST client for a Pinecone serverless
// index. It speaks to the data-plane host directly (https://<index>.svc...).
package pinecone

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/vilahaus/concierge/internal/domain"
	"github.com/vilahaus/concierge/internal/vectorstore"
)

// Store is a REST client to one Pinecone index.
type Store struct {
	indexHost string
	apiKey    string
	client    *http.Client
}

// Config configures the Pinecone client.
type Config struct {
	APIKey    string
	IndexHost string
	Timeout   time.Duration
}

// New creates a Pinecone store; key and index host are both required.
func New(cfg Config) (*Store, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("pinecone API key is required")
	}
	if cfg.IndexHost == "" {
		return nil, fmt.Errorf("pinecone index host is required")
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &Store{
		indexHost: cfg.IndexHost,
		apiKey:    cfg.APIKey,
		client:    &http.Client{Timeout: timeout},
	}, nil
}

func (s *Store) postJSON(ctx context.Context, path string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.indexHost+path, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Api-Key", s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("pinecone %s: %s: %s", path, resp.Status, detail)
	}

	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

// Upsert writes chunk vectors with their text and metadata as payload
func (s *Store) Upsert(ctx context.Context, chunks []domain.DocumentChunk) error {
	if len(chunks) == 0 {
		return nil
	}
	vectors := make([]map[string]any, len(chunks))
	for i, chunk := range chunks {
		metadata := map[string]any{"text": chunk.Content}
		for k, v := range chunk.Metadata {
			metadata[k] = v
		}
		vectors[i] = map[string]any{
			"id":       chunk.ID,
			"values":   chunk.Embedding,
			"metadata": metadata,
		}
	}
	return s.postJSON(ctx, "/vectors/upsert", map[string]any{"vectors": vectors}, nil)
}

// Query returns the topK nearest chunks for the given vector
func (s *Store) Query(ctx context.Context, vector []float32, topK int) ([]vectorstore.Match, error) {
	if topK <= 0 {
		topK = 4
	}
	body := map[string]any{
		"vector":          vector,
		"topK":            topK,
		"includeMetadata": true,
	}
	var out struct {
		Matches []struct {
			ID       string         `json:"id"`
			Score    float64        `json:"score"`
			Metadata map[string]any `json:"metadata"`
		} `json:"matches"`
	}
	if err := s.postJSON(ctx, "/query", body, &out); err != nil {
		return nil, err
	}

	matches := make([]vectorstore.Match, 0, len(out.Matches))
	for _, m := range out.Matches {
		match := vectorstore.Match{
			ID:       m.ID,
			Score:    m.Score,
			Metadata: m.Metadata,
		}
		if text, ok := m.Metadata["text"].(string); ok {
			match.Content = text
		}
		matches = append(matches, match)
	}
	return matches, nil
}
