// Package tts is a client for the ElevenLabs text-to-speech streaming
// endpoint. The handler pipes the returned body straight to the widget.
package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultBaseURL = "https://api.elevenlabs.io/v1"

// Client talks to the ElevenLabs API.
type Client struct {
	baseURL string
	apiKey  string
	voiceID string
	client  *http.Client
}

// Config configures the ElevenLabs client.
type Config struct {
	APIKey  string
	VoiceID string
	BaseURL string
	Timeout time.Duration
}

// NewClient creates an ElevenLabs client; the API key is required.
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("elevenlabs API key is required")
	}
	if cfg.VoiceID == "" {
		return nil, fmt.Errorf("elevenlabs voice id is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		voiceID: cfg.VoiceID,
		client:  &http.Client{Timeout: timeout},
	}, nil
}

// Synthesize converts text to speech and returns the MPEG audio stream.
// The caller owns closing the returned body.
func (c *Client) Synthesize(ctx context.Context, text string) (io.ReadCloser, error) {
	body := map[string]any{
		"text":     text,
		"model_id": "eleven_multilingual_v2",
		"voice_settings": map[string]any{
			"stability":        0.5,
			"similarity_boost": 0.75,
		},
	}
	data, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/text-to-speech/%s/stream", c.baseURL, c.voiceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")
	req.Header.Set("xi-api-key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		resp.Body.Close()
		return nil, fmt.Errorf("elevenlabs synthesis: %s: %s", resp.Status, detail)
	}

	return resp.Body, nil
}
