package main

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/target/control-panel-ui/internal/domain/model"
	"github.com/target/control-panel-ui/internal/mocks"
	"github.com/target/control-panel-ui/internal/service"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestContext(in string) (*commandContext, *bytes.Buffer) {
	var out bytes.Buffer
	return &commandContext{
		Ctx:    context.Background(),
		Logger: discardLogger(),
		Out:    &out,
		In:     strings.NewReader(in),
	}, &out
}

func TestRunCLI_Usage(t *testing.T) {
	var out bytes.Buffer
	assert.Equal(t, 2, runCLI(nil, &out, strings.NewReader(""), discardLogger()))
	usage := out.String()
	assert.Contains(t, usage, "Usage: control-panel-admin <command> [flags]")
	for name := range commands() {
		assert.Contains(t, usage, name)
	}
	assert.Less(t, strings.Index(usage, "audit-log"), strings.Index(usage, "revoke-session"), "commands are listed in order")

	out.Reset()
	assert.Equal(t, 2, runCLI([]string{"db-reset"}, &out, strings.NewReader(""), discardLogger()))
	assert.Contains(t, out.String(), `unknown command "db-reset"`)
}

func TestGenSecret(t *testing.T) {
	var out bytes.Buffer
	require.Equal(t, 0, runCLI([]string{"gen-secret"}, &out, strings.NewReader(""), discardLogger()))

	secret := strings.TrimSpace(out.String())
	assert.Len(t, secret, 64)
	_, err := hex.DecodeString(secret)
	require.NoError(t, err)

	out.Reset()
	assert.Equal(t, 1, runCLI([]string{"gen-secret", "-bytes", "8"}, &out, strings.NewReader(""), discardLogger()))
}

func TestParseAuditLogFlags(t *testing.T) {
	opts, err := parseAuditLogFlags(nil, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, auditLogOptions{Limit: defaultAuditLimit}, opts)

	opts, err = parseAuditLogFlags([]string{"-limit", "5", "-json"}, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, auditLogOptions{Limit: 5, JSON: true}, opts)

	for _, bad := range []string{"0", "501", "x"} {
		_, err = parseAuditLogFlags([]string{"-limit", bad}, io.Discard)
		assert.Error(t, err, bad)
	}
}

func TestPrintAuditLog(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	entries := []*model.AuditEntry{
		{ActorEmail: "user@example.com", Action: model.AuditActionHalt, Outcome: "accepted", CreatedAt: at},
		{ActorEmail: "ops@example.com", Action: model.AuditActionSignIn, Outcome: "failed", CreatedAt: at.Add(-time.Hour)},
	}

	t.Run("table", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		audit := mocks.NewMockAuditLog(ctrl)
		audit.EXPECT().ListRecent(gomock.Any(), 10).Return(entries, nil)

		var out bytes.Buffer
		require.NoError(t, printAuditLog(context.Background(), &out, audit, auditLogOptions{Limit: 10}))

		lines := strings.Split(strings.TrimSpace(out.String()), "\n")
		require.Len(t, lines, 3)
		assert.Equal(t, []string{"TIME", "ACTOR", "ACTION", "OUTCOME"}, strings.Fields(lines[0]))
		assert.Equal(t, []string{"2026-03-01T12:00:00Z", "user@example.com", "system_halt", "accepted"}, strings.Fields(lines[1]))
	})

	t.Run("json", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		audit := mocks.NewMockAuditLog(ctrl)
		audit.EXPECT().ListRecent(gomock.Any(), 2).Return(entries, nil)

		var out bytes.Buffer
		require.NoError(t, printAuditLog(context.Background(), &out, audit, auditLogOptions{Limit: 2, JSON: true}))

		dec := json.NewDecoder(&out)
		var got []model.AuditEntry
		for dec.More() {
			var e model.AuditEntry
			require.NoError(t, dec.Decode(&e))
			got = append(got, e)
		}
		require.Len(t, got, 2)
		assert.Equal(t, model.AuditActionSignIn, got[1].Action)
	})

	t.Run("empty", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		audit := mocks.NewMockAuditLog(ctrl)
		audit.EXPECT().ListRecent(gomock.Any(), gomock.Any()).Return(nil, nil)

		var out bytes.Buffer
		require.NoError(t, printAuditLog(context.Background(), &out, audit, auditLogOptions{Limit: 1}))
		assert.Equal(t, "No audit entries.\n", out.String())
	})

	t.Run("error", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		audit := mocks.NewMockAuditLog(ctrl)
		audit.EXPECT().ListRecent(gomock.Any(), gomock.Any()).Return(nil, errors.New("db down"))

		assert.Error(t, printAuditLog(context.Background(), io.Discard, audit, auditLogOptions{Limit: 1}))
	})
}

func TestClearStatusCache(t *testing.T) {
	tests := []struct {
		name    string
		deleted bool
		err     error
		want    string
	}{
		{name: "cleared", deleted: true, want: "Status cache cleared.\n"},
		{name: "already empty", want: "Status cache was already empty.\n"},
		{name: "redis error", err: errors.New("redis down")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			cache := mocks.NewMockCacheRepository(ctrl)
			cache.EXPECT().Delete(gomock.Any(), service.StatusCacheKey).Return(tt.deleted, tt.err)

			var out bytes.Buffer
			err := clearStatusCache(context.Background(), &out, cache)
			if tt.err != nil {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, out.String())
		})
	}
}

func TestRevokeSession(t *testing.T) {
	cmdCtx, _ := newTestContext("")
	require.EqualError(t, runRevokeSession(cmdCtx, nil), "--id is required")

	cmdCtx, out := newTestContext("n\n")
	require.EqualError(t, runRevokeSession(cmdCtx, []string{"-id", "abc"}), "aborted by user")
	assert.Contains(t, out.String(), `About to revoke session "abc".`)

	cmdCtx, _ = newTestContext("yes\n")
	require.ErrorIs(t, runRevokeSession(cmdCtx, []string{"-id", "abc"}), errRedisDisabled)

	cmdCtx, _ = newTestContext("")
	require.ErrorIs(t, runRevokeSession(cmdCtx, []string{"-id", "abc", "-yes"}), errRedisDisabled)
}

func TestConfirm(t *testing.T) {
	for in, wantErr := range map[string]bool{"y\n": false, "YES\n": false, "n\n": true, "": true, "y": false} {
		cmdCtx, _ := newTestContext(in)
		err := confirm(cmdCtx, "About to do a thing.")
		assert.Equal(t, wantErr, err != nil, "input %q", in)
	}
}
