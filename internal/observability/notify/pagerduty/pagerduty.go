// Package pagerduty pages on emergency halts and resolves the incident on resume.
package pagerduty

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/target/control-panel-ui/internal/observability/notify"
)

// APIEndpoint is the PagerDuty Events API v2 ingest URL.
const APIEndpoint = "https://events.pagerduty.com/v2/enqueue"

// Config captures runtime configuration for the PagerDuty sink.
type Config struct {
	RoutingKey string
	Source     string
	Component  string
	Endpoint   string
	Timeout    time.Duration
	RetryLimit int
	Client     *http.Client
}

// Client publishes events via PagerDuty's Events API v2.
type Client struct {
	routingKey string
	source     string
	component  string
	endpoint   string
	retryLimit int
	client     *http.Client
}

var _ notify.Sink = (*Client)(nil)

// NewClient constructs a PagerDuty events client. A routing key is required.
func NewClient(cfg Config) (*Client, error) {
	key := strings.TrimSpace(cfg.RoutingKey)
	if key == "" {
		return nil, errors.New("pagerduty routing key is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	hc := cfg.Client
	if hc == nil {
		hc = &http.Client{Timeout: timeout}
	}

	return &Client{
		routingKey: key,
		source:     fallbackString(cfg.Source, "control-panel"),
		component:  fallbackString(cfg.Component, "emergency-override"),
		endpoint:   fallbackString(cfg.Endpoint, APIEndpoint),
		retryLimit: max(cfg.RetryLimit, 0),
		client:     hc,
	}, nil
}

// SendOverride triggers an incident for a halt and resolves it for a resume.
func (c *Client) SendOverride(ctx context.Context, event notify.OverrideEvent) error {
	body, err := json.Marshal(c.buildEvent(event))
	if err != nil {
		return fmt.Errorf("encode pagerduty payload: %w", err)
	}
	return notify.Retry(ctx, c.retryLimit, func(ctx context.Context) error {
		if postErr := notify.PostJSON(ctx, c.client, c.endpoint, body); postErr != nil {
			return fmt.Errorf("pagerduty api: %w", postErr)
		}
		return nil
	})
}

// dedupKey is shared by halt and resume so a resume resolves the open halt incident.
func (c *Client) dedupKey() string {
	return c.source + ":system-halt"
}

func (c *Client) buildEvent(event notify.OverrideEvent) map[string]any {
	if !event.Halt() {
		return map[string]any{
			"routing_key":  c.routingKey,
			"event_action": "resolve",
			"dedup_key":    c.dedupKey(),
		}
	}

	at := event.OccurredAt.UTC()
	if event.OccurredAt.IsZero() {
		at = time.Now().UTC()
	}

	return map[string]any{
		"routing_key":  c.routingKey,
		"event_action": "trigger",
		"dedup_key":    c.dedupKey(),
		"payload": map[string]any{
			"summary":   fmt.Sprintf("Emergency halt initiated by %s", fallbackString(event.InitiatedBy, "unknown")),
			"severity":  event.Severity(),
			"source":    c.source,
			"component": c.component,
			"timestamp": at.Format(time.RFC3339),
			"custom_details": map[string]any{
				"reason":       event.Reason,
				"status":       event.Status,
				"message":      event.Message,
				"initiated_by": event.InitiatedBy,
			},
		},
	}
}

func fallbackString(value, fallback string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return fallback
}
