package notifiers

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"time"

	"github.com/oparinlab/protocell/internal/chem"
)

// SignatureHeader carries the hex HMAC-SHA256 of the request body when a
// webhook secret is configured.
const SignatureHeader = "X-Protocell-Signature"

// WebhookNotifier delivers events as HTTP POSTs to a fixed URL.
type WebhookNotifier struct {
	id      string
	url     string
	secret  []byte
	client  *http.Client
	headers map[string]string
}

// NewWebhookNotifier creates a webhook notifier with a 5 second request
// timeout.
func NewWebhookNotifier(id, url string) *WebhookNotifier {
	return &WebhookNotifier{
		id:      id,
		url:     url,
		client:  &http.Client{Timeout: 5 * time.Second},
		headers: make(map[string]string),
	}
}

// SetSecret enables HMAC-SHA256 signing of every delivery.
func (wn *WebhookNotifier) SetSecret(secret string) {
	wn.secret = []byte(secret)
}

// SetHeader adds a custom header to every delivery.
func (wn *WebhookNotifier) SetHeader(key, value string) {
	wn.headers[key] = value
}

// ID returns the notifier ID.
func (wn *WebhookNotifier) ID() string { return wn.id }

// Type returns "webhook".
func (wn *WebhookNotifier) Type() string { return "webhook" }

// Notify POSTs the event to the webhook URL. Any non-2xx response is an
// error, so the manager's retry policy applies.
func (wn *WebhookNotifier) Notify(ctx context.Context, event chem.Event) error {
	body, err := event.JSON()
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, wn.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for key, value := range wn.headers {
		req.Header.Set(key, value)
	}
	if len(wn.secret) > 0 {
		mac := hmac.New(sha256.New, wn.secret)
		mac.Write(body)
		req.Header.Set(SignatureHeader, hex.EncodeToString(mac.Sum(nil)))
	}

	resp, err := wn.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}

// Close is a no-op for webhooks.
func (wn *WebhookNotifier) Close() error { return nil }
