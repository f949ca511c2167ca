package alerting

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
)

const defaultWebhookTimeout = 10 * time.Second

// WebhookPublisher posts a Slack-compatible JSON payload to a URL.
type WebhookPublisher struct {
	url    string
	client *http.Client
}

func NewWebhookPublisher(url string, client *http.Client) *WebhookPublisher {
	if client == nil {
		client = &http.Client{Timeout: defaultWebhookTimeout}
	}
	return &WebhookPublisher{url: url, client: client}
}

type webhookPayload struct {
	ID      string `json:"id"`
	Subject string `json:"subject"`
	Text    string `json:"text"`
}

func (p *WebhookPublisher) Publish(ctx context.Context, subject, body string) (string, error) {
	id := uuid.NewString()
	payload, err := json.Marshal(webhookPayload{
		ID:      id,
		Subject: subject,
		Text:    fmt.Sprintf("*%s*\n%s", subject, body),
	})
	if err != nil {
		return "", fmt.Errorf("encode webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Message-Id", id)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("webhook post: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("webhook returned %s", resp.Status)
	}
	return id, nil
}
