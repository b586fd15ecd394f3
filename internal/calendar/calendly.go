package calendar

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/vilahaus/concierge/internal/domain"
)

const calendlyBaseURL = "https://api.calendly.com"

// CalendlyClient talks to the Calendly v2 API.
type CalendlyClient struct {
	baseURL string
	apiKey  string
	userURI string
	client  *http.Client
}

// CalendlyConfig configures the Calendly client.
type CalendlyConfig struct {
	APIKey  string
	UserURI string
	BaseURL string
	Timeout time.Duration
}

// NewCalendlyClient creates a Calendly client; key and user URI are required.
func NewCalendlyClient(cfg CalendlyConfig) (*CalendlyClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("calendly API key is required")
	}
	if cfg.UserURI == "" {
		return nil, fmt.Errorf("calendly user URI is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = calendlyBaseURL
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &CalendlyClient{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		userURI: cfg.UserURI,
		client:  &http.Client{Timeout: timeout},
	}, nil
}

func (c *CalendlyClient) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("calendly %s %s: %s: %s", method, path, resp.Status, detail)
	}

	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

// FindEventType looks up the user's active event type by display name.
// Returns domain.ErrNotFound when no event type matches.
func (c *CalendlyClient) FindEventType(ctx context.Context, name string) (string, error) {
	path := "/event_types?user=" + url.QueryEscape(c.userURI) + "&active=true"
	var out struct {
		Collection []struct {
			URI  string `json:"uri"`
			Name string `json:"name"`
		} `json:"collection"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return "", err
	}

	for _, et := range out.Collection {
		if et.Name == name {
			return et.URI, nil
		}
	}
	return "", fmt.Errorf("event type %q: %w", name, domain.ErrNotFound)
}

// CreateInviteLink creates a single-use scheduling link for the event
// type and returns its booking URL.
func (c *CalendlyClient) CreateInviteLink(ctx context.Context, eventTypeURI string) (string, error) {
	body := map[string]any{
		"max_event_count": 1,
		"owner":           eventTypeURI,
		"owner_type":      "EventType",
	}
	var out struct {
		Resource struct {
			BookingURL string `json:"booking_url"`
		} `json:"resource"`
	}
	if err := c.do(ctx, http.MethodPost, "/scheduling_links", body, &out); err != nil {
		return "", err
	}
	if out.Resource.BookingURL == "" {
		return "", fmt.Errorf("calendly returned no booking url")
	}
	return out.Resource.BookingURL, nil
}
