// Package notify posts daemon lifecycle events to an optional webhook.
//
// Delivery is best-effort: failures are logged and never fatal, so a dead
// webhook endpoint cannot take the daemon down with it.
package notify

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"tools.zach/dev/sigact/internal/config"
)

// ///////////////////////////////////////////////
// Event Types
// ///////////////////////////////////////////////

// Lifecycle event names sent to the webhook.
const (
	// EventStarted fires once the daemon is up and dispatching.
	EventStarted = "started"
	// EventStopped fires when the daemon shuts down cleanly.
	EventStopped = "stopped"
	// EventAborted fires when the daemon exits abruptly.
	EventAborted = "aborted"
	// EventReloaded fires after a successful config reload.
	EventReloaded = "reloaded"
)

// Event is the JSON payload POSTed to the configured webhook URL.
type Event struct {
	// Event is the lifecycle event name: started, stopped, aborted, or reloaded.
	Event string `json:"event"`
	// Status is the daemon's lifecycle status after the event.
	Status string `json:"status"`
	// Signal names the signal that caused the event, if any.
	Signal string `json:"signal,omitempty"`
	// PID is the daemon process ID.
	PID int `json:"pid"`
	// Version is the daemon version string.
	Version string `json:"version,omitempty"`
	// Time is the Unix timestamp of the event.
	Time int64 `json:"time"`
}

// ///////////////////////////////////////////////
// Notifier
// ///////////////////////////////////////////////

// Notifier delivers lifecycle events to the webhook configured in [config.NotifyConfig].
// A Notifier with an empty URL is valid and silently drops all events.
type Notifier struct {
	// cfg holds the webhook URL, per-attempt timeout, and retry budget.
	cfg config.NotifyConfig
	// version is stamped into every event payload.
	version string
	// client is the lazily-initialized retryable HTTP client, built on the
	// first send so disabled notifiers never allocate one.
	client     *retryablehttp.Client
	clientOnce sync.Once
}

// New creates a Notifier for the given webhook configuration.
// The version string is included in every payload.
func New(cfg config.NotifyConfig, version string) *Notifier {
	return &Notifier{cfg: cfg, version: version}
}

// Enabled reports whether a webhook URL is configured.
func (n *Notifier) Enabled() bool {
	return n.cfg.URL != ""
}

// Send delivers one lifecycle event to the webhook. It blocks until the
// request completes or the retry budget is exhausted, so callers that exit
// afterwards (stop, abort) still get their final event out. Failures are
// logged, never returned.
func (n *Notifier) Send(event, status, signal string) {
	if !n.Enabled() {
		return
	}

	payload := Event{
		Event:   event,
		Status:  status,
		Signal:  signal,
		PID:     os.Getpid(),
		Version: n.version,
		Time:    time.Now().Unix(),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		slog.Warn("marshalling webhook payload", "event", event, "error", err)
		return
	}

	resp, err := n.httpClient().Post(n.cfg.URL, "application/json", body)
	if err != nil {
		slog.Warn("webhook notification failed", "event", event, "url", n.cfg.URL, "error", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		slog.Warn("webhook notification rejected", "event", event, "status", resp.StatusCode)
		return
	}
	slog.Debug("webhook notification sent", "event", event, "status", resp.StatusCode)
}

// httpClient returns the notifier's retryable HTTP client, initializing it on
// first call from the notify configuration.
func (n *Notifier) httpClient() *retryablehttp.Client {
	n.clientOnce.Do(func() {
		n.client = retryablehttp.NewClient()
		n.client.RetryMax = n.cfg.Retries
		n.client.RetryWaitMin = 500 * time.Millisecond
		n.client.RetryWaitMax = 2 * time.Second
		n.client.HTTPClient = &http.Client{Timeout: time.Duration(n.cfg.TimeoutSeconds) * time.Second}
		n.client.Logger = nil // suppress retryablehttp's default logging
	})
	return n.client
}
