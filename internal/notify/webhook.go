// Package notify delivers lead payloads to the outbound automation
// webhook. Delivery is fire-and-forget: the HTTP response to the
// visitor never waits on it, and failures only reach the log.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/vilahaus/concierge/internal/domain"
)

// Notifier posts lead events to an automation endpoint (n8n).
type Notifier struct {
	url    string
	client *http.Client
	logger *zap.Logger
}

// NewNotifier creates a webhook notifier. An empty URL disables it.
func NewNotifier(url string, logger *zap.Logger) *Notifier {
	return &Notifier{
		url:    url,
		client: &http.Client{Timeout: 5 * time.Second},
		logger: logger,
	}
}

// LeadCaptured dispatches the lead payload in a detached goroutine.
func (n *Notifier) LeadCaptured(lead *domain.Lead) {
	if n == nil || n.url == "" {
		return
	}
	payload := *lead
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := n.deliver(ctx, &payload); err != nil {
			n.logger.Warn("lead webhook delivery failed",
				zap.String("lead_id", payload.ID),
				zap.Error(err))
		}
	}()
}

func (n *Notifier) deliver(ctx context.Context, lead *domain.Lead) error {
	body, err := json.Marshal(map[string]any{
		"event": "lead_captured",
		"lead":  lead,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return &DeliveryError{Status: resp.Status}
	}
	return nil
}

// DeliveryError reports a non-2xx webhook response.
type DeliveryError struct {
	Status string
}

func (e *DeliveryError) Error() string {
	return "webhook responded " + e.Status
}
