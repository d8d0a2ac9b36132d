package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/target/control-panel-ui/config"
	"github.com/target/control-panel-ui/internal/bootstrap"
)

type commandFn func(ctx *commandContext, args []string) error

type command struct {
	name        string
	description string
	// needsConfig is false for commands that work without any environment.
	needsConfig bool
	run         commandFn
}

type commandContext struct {
	Ctx    context.Context
	Logger *slog.Logger
	Config config.AppConfig
	Out    io.Writer
	In     io.Reader
}

func main() {
	logger := bootstrap.InitLogger("info")
	os.Exit(runCLI(os.Args[1:], os.Stdout, os.Stdin, logger)) //nolint:forbidigo // CLI exit status
}

func runCLI(args []string, out io.Writer, in io.Reader, logger *slog.Logger) int {
	if len(args) < 1 {
		_ = printUsage(out)
		return 2
	}

	cmdName := args[0]
	cmd, ok := commands()[cmdName]
	if !ok {
		_ = writef(out, "unknown command %q\n\n", cmdName)
		_ = printUsage(out)
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmdCtx := &commandContext{Ctx: ctx, Logger: logger, Out: out, In: in}
	if cmd.needsConfig {
		cfg, err := bootstrap.LoadConfig()
		if err != nil {
			logger.ErrorContext(ctx, "load config", "error", err)
			return 1
		}
		cmdCtx.Config = cfg
	}

	if err := cmd.run(cmdCtx, args[1:]); err != nil {
		logger.ErrorContext(ctx, "command failed", "command", cmdName, "error", err)
		return 1
	}
	return 0
}

func commands() map[string]command {
	return map[string]command{
		"migrate": {
			name:        "migrate",
			description: "Apply the audit database migrations",
			needsConfig: true,
			run:         runMigrations,
		},
		"audit-log": {
			name:        "audit-log",
			description: "Print the most recent audited sign-ins and overrides",
			needsConfig: true,
			run:         runAuditLog,
		},
		"revoke-session": {
			name:        "revoke-session",
			description: "Revoke a live session by id (requires Redis)",
			needsConfig: true,
			run:         runRevokeSession,
		},
		"clear-status-cache": {
			name:        "clear-status-cache",
			description: "Drop the cached system status so the next dashboard load reads it fresh",
			needsConfig: true,
			run:         runClearStatusCache,
		},
		"gen-secret": {
			name:        "gen-secret",
			description: "Print a random value for SESSION_SECRET or SESSION_ENCRYPTION_KEY",
			run:         runGenSecret,
		},
	}
}

func printUsage(w io.Writer) error {
	if err := writef(w, "Usage: control-panel-admin <command> [flags]\n\n"); err != nil {
		return err
	}
	if err := writef(w, "Available commands:\n"); err != nil {
		return err
	}
	cmds := commands()
	names := make([]string, 0, len(cmds))
	for name := range cmds {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := writef(w, "  %-20s %s\n", name, cmds[name].description); err != nil {
			return err
		}
	}
	return nil
}

func writef(w io.Writer, format string, args ...any) error {
	_, err := fmt.Fprintf(w, format, args...)
	return err
}
