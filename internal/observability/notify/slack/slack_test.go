package slack

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/target/control-panel-ui/internal/observability/notify"
)

func TestNewClientValidation(t *testing.T) {
	_, err := NewClient(Config{})
	require.Error(t, err)
}

func TestFormatMessage_Halt(t *testing.T) {
	client, err := NewClient(Config{
		WebhookURL:   "https://hooks.slack.com/services/test",
		Channel:      "#ops",
		DashboardURL: "https://panel.example.com",
	})
	require.NoError(t, err)

	msg := client.formatMessage(notify.OverrideEvent{
		Action:      "HALT",
		Status:      "HALT",
		Reason:      "agent loop <critical>",
		InitiatedBy: "user@example.com",
		OccurredAt:  time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC),
	})

	assert.Equal(t, "control-panel", msg["username"])
	assert.Equal(t, "#ops", msg["channel"])
	text, ok := msg["text"].(string)
	require.True(t, ok)
	for _, want := range []string{
		"Emergency halt accepted",
		"user@example.com",
		"agent loop &lt;critical&gt;",
		"https://panel.example.com",
		"2026-01-01T12:00:00Z",
	} {
		assert.Contains(t, text, want)
	}
}

func TestFormatMessage_ResumeOmitsEmptyFields(t *testing.T) {
	client, err := NewClient(Config{WebhookURL: "https://hooks.slack.com/services/test"})
	require.NoError(t, err)

	msg := client.formatMessage(notify.OverrideEvent{Action: "RESUME"})
	text := msg["text"].(string)
	assert.Contains(t, text, "System resume accepted")
	assert.NotContains(t, text, "Reason")
	_, hasChannel := msg["channel"]
	assert.False(t, hasChannel)
}

func TestSendOverride_RetriesUntilSuccess(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		if !strings.Contains(body["text"].(string), "Emergency halt") {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	t.Cleanup(srv.Close)

	client, err := NewClient(Config{WebhookURL: srv.URL, RetryLimit: 1})
	require.NoError(t, err)

	require.NoError(t, client.SendOverride(context.Background(), notify.OverrideEvent{Action: "HALT"}))
	assert.Equal(t, int32(2), hits.Load())
}

func TestSendOverride_ReportsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "invalid_token", http.StatusForbidden)
	}))
	t.Cleanup(srv.Close)

	client, err := NewClient(Config{WebhookURL: srv.URL})
	require.NoError(t, err)

	err = client.SendOverride(context.Background(), notify.OverrideEvent{Action: "RESUME"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid_token")
}
