package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/jovoneybrown2-dot/inspection-powered-by-zo-zi/internal/alerting"
	"github.com/jovoneybrown2-dot/inspection-powered-by-zo-zi/internal/errors"
	"github.com/jovoneybrown2-dot/inspection-powered-by-zo-zi/internal/httpclient"
)

const (
	// ProviderWebhook is the provider name used in logs and metrics.
	ProviderWebhook = "webhook"

	defaultWebhookTimeout = 10 * time.Second

	// maxErrorBodySize limits how much of an error response is read.
	maxErrorBodySize = 1024

	headerInstallationID = "X-Installation-ID"
	headerDeliveryID     = "X-Delivery-ID"
)

// WebhookPayload is the JSON body posted to the monitoring server.
type WebhookPayload struct {
	Type           string          `json:"type"`
	InstallationID string          `json:"installation_id,omitzero"`
	Title          string          `json:"title"`
	Message        string          `json:"message"`
	Alert          *alerting.Alert `json:"alert"`
}

// WebhookProvider forwards alerts to a monitoring server over HTTP.
type WebhookProvider struct {
	url            string
	installationID string
	timeout        time.Duration
	client         *httpclient.Client
}

// NewWebhookProvider creates a provider posting to url.
func NewWebhookProvider(url, installationID string, timeout time.Duration) *WebhookProvider {
	if timeout <= 0 {
		timeout = defaultWebhookTimeout
	}
	return &WebhookProvider{
		url:            url,
		installationID: installationID,
		timeout:        timeout,
		client:         httpclient.New(httpclient.Config{Timeout: timeout}),
	}
}

func (w *WebhookProvider) Name() string { return ProviderWebhook }

// Send posts the alert once. Non-2xx responses are errors.
func (w *WebhookProvider) Send(ctx context.Context, alert *alerting.Alert) error {
	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	body, err := json.Marshal(WebhookPayload{
		Type:           "threshold_alert",
		InstallationID: w.installationID,
		Title:          alertTitle(alert),
		Message:        alertMessage(alert),
		Alert:          alert,
	})
	if err != nil {
		return errors.New(err).
			Component("notification").
			Category(errors.CategoryNotification).
			Context("operation", "encode_webhook_payload").
			Build()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return errors.New(err).
			Component("notification").
			Category(errors.CategoryConfiguration).
			Context("operation", "build_webhook_request").
			Build()
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(headerDeliveryID, uuid.NewString())
	if w.installationID != "" {
		req.Header.Set(headerInstallationID, w.installationID)
	}

	resp, err := w.client.Do(ctx, req)
	if err != nil {
		return errors.New(err).
			Component("notification").
			Category(errors.CategoryNetwork).
			Context("alert_id", alert.ID).
			Build()
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		return errors.New(fmt.Errorf("webhook returned status %d: %s", resp.StatusCode, bytes.TrimSpace(snippet))).
			Component("notification").
			Category(errors.CategoryHTTP).
			Context("status_code", resp.StatusCode).
			Context("alert_id", alert.ID).
			Build()
	}

	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
