// Package slack announces emergency overrides on a Slack incoming webhook.
package slack

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

// Config captures the subset of Slack webhook behaviour we need.
type Config struct {
	WebhookURL   string
	Channel      string
	Username     string
	DashboardURL string
	Timeout      time.Duration
	RetryLimit   int
	Client       *http.Client
}

// Client delivers override announcements to a Slack webhook.
type Client struct {
	webhookURL   string
	channel      string
	username     string
	dashboardURL string
	retryLimit   int
	client       *http.Client
}

var _ notify.Sink = (*Client)(nil)

// NewClient builds a Slack webhook client.
func NewClient(cfg Config) (*Client, error) {
	webhookURL := strings.TrimSpace(cfg.WebhookURL)
	if webhookURL == "" {
		return nil, errors.New("slack webhook url is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	hc := cfg.Client
	if hc == nil {
		hc = &http.Client{Timeout: timeout}
	}

	username := strings.TrimSpace(cfg.Username)
	if username == "" {
		username = "control-panel"
	}

	return &Client{
		webhookURL:   webhookURL,
		channel:      strings.TrimSpace(cfg.Channel),
		username:     username,
		dashboardURL: strings.TrimSpace(cfg.DashboardURL),
		retryLimit:   max(cfg.RetryLimit, 0),
		client:       hc,
	}, nil
}

// SendOverride posts a formatted message to Slack.
func (c *Client) SendOverride(ctx context.Context, event notify.OverrideEvent) error {
	body, err := json.Marshal(c.formatMessage(event))
	if err != nil {
		return fmt.Errorf("encode slack payload: %w", err)
	}
	return notify.Retry(ctx, c.retryLimit, func(ctx context.Context) error {
		if postErr := notify.PostJSON(ctx, c.client, c.webhookURL, body); postErr != nil {
			return fmt.Errorf("slack webhook: %w", postErr)
		}
		return nil
	})
}

func (c *Client) formatMessage(event notify.OverrideEvent) map[string]any {
	at := event.OccurredAt
	if at.IsZero() {
		at = time.Now()
	}

	var text strings.Builder
	if event.Halt() {
		text.WriteString(":rotating_light: *Emergency halt accepted*")
	} else {
		text.WriteString(":white_check_mark: *System resume accepted*")
	}
	text.WriteByte('\n')

	fields := []struct{ label, value string }{
		{"Initiated by", event.InitiatedBy},
		{"Status", event.Status},
		{"Reason", event.Reason},
		{"Response", event.Message},
		{"Dashboard", c.dashboardURL},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			continue
		}
		text.WriteString("• ")
		text.WriteString(f.label)
		text.WriteString(": ")
		text.WriteString(escapeSlackText(f.value))
		text.WriteByte('\n')
	}
	text.WriteString("• Timestamp: ")
	text.WriteString(at.UTC().Format(time.RFC3339))

	msg := map[string]any{
		"text":     text.String(),
		"username": c.username,
	}
	if c.channel != "" {
		msg["channel"] = c.channel
	}
	return msg
}

func escapeSlackText(value string) string {
	return strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
	).Replace(value)
}
