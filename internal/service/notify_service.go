package service

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"gmail-marketplace/internal/core/domain"

	"github.com/rs/zerolog"
)

const notifyTimeout = 5 * time.Second

// HTTPClient interface for testability.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// WebhookNotifier implements ports.Notifier by posting admin events to
// a configured webhook. Delivery is best-effort: failures are logged
// and never surface to the operation that raised the event.
type WebhookNotifier struct {
	webhookURL string
	httpClient HTTPClient
	log        zerolog.Logger
}

// NewWebhookNotifier creates a notifier. An empty URL disables
// notifications entirely.
func NewWebhookNotifier(webhookURL string, httpClient HTTPClient, log zerolog.Logger) *WebhookNotifier {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: notifyTimeout}
	}
	return &WebhookNotifier{
		webhookURL: webhookURL,
		httpClient: httpClient,
		log:        log,
	}
}

type notifyEvent struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
	At    int64       `json:"at"`
}

// BatchSubmitted announces a new credential batch in the review queue.
func (n *WebhookNotifier) BatchSubmitted(ctx context.Context, batch *domain.BatchSummary) {
	n.post(ctx, "batch.submitted", batch)
}

// WithdrawalRequested announces a new payout request.
func (n *WebhookNotifier) WithdrawalRequested(ctx context.Context, w *domain.Withdrawal) {
	n.post(ctx, "withdrawal.requested", w)
}

func (n *WebhookNotifier) post(ctx context.Context, event string, data interface{}) {
	if n.webhookURL == "" {
		return
	}

	payload, err := json.Marshal(notifyEvent{
		Event: event,
		Data:  data,
		At:    time.Now().Unix(),
	})
	if err != nil {
		n.log.Error().Err(err).Str("event", event).Msg("Notification marshal failed")
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(payload))
	if err != nil {
		n.log.Error().Err(err).Str("event", event).Msg("Notification request build failed")
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		n.log.Warn().Err(err).Str("event", event).Msg("Notification delivery failed")
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		n.log.Warn().Int("status", resp.StatusCode).Str("event", event).Msg("Notification rejected")
	}
}
