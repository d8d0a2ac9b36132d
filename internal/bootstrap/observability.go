package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/target/control-panel-ui/config"
	"github.com/target/control-panel-ui/internal/observability/notify"
	"github.com/target/control-panel-ui/internal/observability/notify/pagerduty"
	"github.com/target/control-panel-ui/internal/observability/notify/slack"
	"github.com/target/control-panel-ui/internal/observability/statsd"
)

// ConnectMetrics dials the StatsD sink. It returns nil when metrics are disabled.
func ConnectMetrics(ctx context.Context, cfg config.ObservabilityMetricsConfig, logger *slog.Logger) (*statsd.Client, error) {
	if !cfg.IsEnabled() {
		return nil, nil
	}
	client, err := statsd.Dial(ctx, statsd.Config{
		Address:    cfg.StatsdAddress,
		Prefix:     cfg.Prefix,
		Logger:     logger,
		GlobalTags: map[string]string{"service": "control-panel-ui"},
	})
	if err != nil {
		return nil, fmt.Errorf("connect metrics: %w", err)
	}
	if logger != nil {
		logger.InfoContext(ctx, "statsd metrics enabled", "addr", cfg.StatsdAddress, "prefix", cfg.Prefix)
	}
	return client, nil
}

// BuildNotifier fans accepted overrides out to the configured Slack and PagerDuty sinks.
// It returns nil when no sink is configured. A sink that fails to build is skipped.
//
//nolint:ireturn // the fan-out is consumed through notify.Sink.
func BuildNotifier(cfg config.ObservabilityNotificationsConfig, logger *slog.Logger) notify.Sink {
	if !cfg.Enabled {
		return nil
	}
	if logger == nil {
		logger = slog.Default()
	}

	var sinks notify.Fanout
	if cfg.Slack.Enabled {
		c, err := slack.NewClient(slack.Config{
			WebhookURL:   cfg.Slack.WebhookURL,
			Channel:      cfg.Slack.Channel,
			Username:     cfg.Slack.Username,
			DashboardURL: cfg.Slack.DashboardURL,
			Timeout:      cfg.Timeout,
			RetryLimit:   cfg.RetryLimit,
		})
		if err != nil {
			logger.Warn("slack notifications disabled", "error", err)
		} else {
			sinks = append(sinks, c)
		}
	}
	if cfg.PagerDuty.Enabled {
		c, err := pagerduty.NewClient(pagerduty.Config{
			RoutingKey: cfg.PagerDuty.RoutingKey,
			Source:     cfg.PagerDuty.Source,
			Component:  cfg.PagerDuty.Component,
			Timeout:    cfg.Timeout,
			RetryLimit: cfg.RetryLimit,
		})
		if err != nil {
			logger.Warn("pagerduty notifications disabled", "error", err)
		} else {
			sinks = append(sinks, c)
		}
	}

	if len(sinks) == 0 {
		return nil
	}
	logger.Info("override notifications enabled", "sinks", len(sinks))
	return sinks
}
