package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/reviewradar/reviewradar/api/types"
)

// Notifier dispatches an alert once per orchestration pass, after the
// rendering sinks have been updated. Payload construction beyond this shape
// is up to the receiver.
type Notifier interface {
	Notify(ctx context.Context, results []types.ReviewSet, errors []types.HostError) error
}

// LogNotifier logs a one-line summary of the pass.
type LogNotifier struct{}

func (LogNotifier) Notify(_ context.Context, results []types.ReviewSet, errors []types.HostError) error {
	reviews := 0
	for _, set := range results {
		reviews += len(set.Reviews)
	}
	logrus.WithFields(logrus.Fields{
		"hosts_ok":     len(results),
		"hosts_failed": len(errors),
		"reviews":      reviews,
	}).Info("pass complete")
	return nil
}

// WebhookNotifier POSTs a small JSON summary to a configured URL.
type WebhookNotifier struct {
	URL        string
	HTTPClient *http.Client
}

func NewWebhookNotifier(url string) *WebhookNotifier {
	return &WebhookNotifier{
		URL:        url,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type webhookPayload struct {
	Results []types.ReviewSet `json:"results"`
	Errors  []webhookError    `json:"errors"`
}

type webhookError struct {
	Host  string `json:"host"`
	Error string `json:"error"`
}

func (n *WebhookNotifier) Notify(ctx context.Context, results []types.ReviewSet, hostErrors []types.HostError) error {
	payload := webhookPayload{Results: results, Errors: make([]webhookError, 0, len(hostErrors))}
	for _, he := range hostErrors {
		payload.Errors = append(payload.Errors, webhookError{Host: he.Host, Error: he.Message()})
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("error marshaling webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("error building webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("error sending webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}

// Multi dispatches to several notifiers, logging individual failures and
// returning the first one.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, results []types.ReviewSet, errors []types.HostError) error {
	var first error
	for _, n := range m {
		if err := n.Notify(ctx, results, errors); err != nil {
			logrus.Warnf("notifier failed: %v", err)
			if first == nil {
				first = err
			}
		}
	}
	return first
}
