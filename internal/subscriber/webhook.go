package subscriber

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// WebhookConfig points sign-ups at a mailing-list provider's intake
// endpoint.
type WebhookConfig struct {
	URL     string            `yaml:"url" env:"SUBSCRIBE_WEBHOOK_URL"`
	Headers map[string]string `yaml:"headers"`
}

// WebhookRecorder forwards each subscription as JSON to a webhook URL.
type WebhookRecorder struct {
	config WebhookConfig
	http   *http.Client
}

// NewWebhookRecorder creates a recorder that posts to cfg.URL.
func NewWebhookRecorder(cfg WebhookConfig) *WebhookRecorder {
	return &WebhookRecorder{
		config: cfg,
		http:   &http.Client{Timeout: 10 * time.Second},
	}
}

type webhookPayload struct {
	Email        string `json:"email"`
	ID           string `json:"id"`
	SubscribedAt string `json:"subscribedAt"`
}

// Record implements Recorder. Any non-2xx response is an error.
func (w *WebhookRecorder) Record(ctx context.Context, sub Subscription) error {
	body, err := json.Marshal(webhookPayload{
		Email:        sub.Email,
		ID:           sub.ID.String(),
		SubscribedAt: sub.CreatedAt.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("marshal subscription: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.config.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range w.config.Headers {
		req.Header.Set(k, v)
	}

	resp, err := w.http.Do(req)
	if err != nil {
		return fmt.Errorf("send webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}

// MultiRecorder records to every recorder in order. A failure does not
// stop later recorders; all failures are joined.
type MultiRecorder []Recorder

// Record implements Recorder.
func (m MultiRecorder) Record(ctx context.Context, sub Subscription) error {
	var errs []error
	for _, r := range m {
		if err := r.Record(ctx, sub); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
