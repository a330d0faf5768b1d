package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

type webhookPayload struct {
	Text string `json:"text"`
}

// Webhook posts notification messages to a single HTTP sink. Delivery is
// best-effort: the caller logs failures and moves on.
type Webhook struct {
	logger *slog.Logger
	url    string
	client *http.Client
}

func NewWebhook(logger *slog.Logger, url string) *Webhook {
	return &Webhook{
		logger: logger,
		url:    url,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (w *Webhook) Send(ctx context.Context, message string) error {
	payload, err := json.Marshal(webhookPayload{Text: message})
	if err != nil {
		return fmt.Errorf("fail to serialize the notification payload: %w", err)
	}
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("fail to build the webhook request: %w", err)
	}
	request.Header.Set("Content-Type", "application/json")
	response, err := w.client.Do(request)
	if err != nil {
		return fmt.Errorf("fail to call the webhook: %w", err)
	}
	defer response.Body.Close()
	_, _ = io.Copy(io.Discard, response.Body)
	if response.StatusCode >= 400 {
		return fmt.Errorf("the webhook returned HTTP %d", response.StatusCode)
	}
	w.logger.Debug(fmt.Sprintf("notification delivered to %s", w.url))
	return nil
}
