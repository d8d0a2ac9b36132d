package main

import (
	"bufio"
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	redisadapter "github.com/target/control-panel-ui/internal/adapters/redis"
	"github.com/target/control-panel-ui/internal/bootstrap"
	"github.com/target/control-panel-ui/internal/data"
	"github.com/target/control-panel-ui/internal/ports"
	"github.com/target/control-panel-ui/internal/service"
)

const (
	defaultMigrationTimeout = 5 * time.Minute
	defaultCommandTimeout   = 30 * time.Second
	defaultAuditLimit       = 20
	maxAuditLimit           = 500
)

var errRedisDisabled = errors.New("redis is not enabled (set REDIS_ENABLED=true)")

func runMigrations(cmdCtx *commandContext, args []string) error {
	fs := newFlagSet("migrate", cmdCtx.Out)
	timeout := fs.Duration("timeout", defaultMigrationTimeout, "Maximum duration to wait for migrations to complete")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *timeout <= 0 {
		return errors.New("--timeout must be greater than zero")
	}

	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, *timeout)
	defer cancel()

	return withDatabase(ctx, cmdCtx, func(db *sql.DB) error {
		cmdCtx.Logger.Info("running database migrations")
		if err := bootstrap.RunMigrations(ctx, db, cmdCtx.Logger); err != nil {
			return err
		}
		cmdCtx.Logger.Info("migrations completed successfully")
		return nil
	})
}

type auditLogOptions struct {
	Limit int
	JSON  bool
}

func parseAuditLogFlags(args []string, out io.Writer) (auditLogOptions, error) {
	fs := newFlagSet("audit-log", out)
	opts := auditLogOptions{}
	fs.IntVar(&opts.Limit, "limit", defaultAuditLimit, "Number of entries to print")
	fs.BoolVar(&opts.JSON, "json", false, "Print entries as JSON lines")
	if err := fs.Parse(args); err != nil {
		return auditLogOptions{}, err
	}
	if opts.Limit < 1 || opts.Limit > maxAuditLimit {
		return auditLogOptions{}, fmt.Errorf("--limit must be between 1 and %d", maxAuditLimit)
	}
	return opts, nil
}

func runAuditLog(cmdCtx *commandContext, args []string) error {
	opts, err := parseAuditLogFlags(args, cmdCtx.Out)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, defaultCommandTimeout)
	defer cancel()

	return withDatabase(ctx, cmdCtx, func(db *sql.DB) error {
		return printAuditLog(ctx, cmdCtx.Out, data.NewAuditRepo(db), opts)
	})
}

func printAuditLog(ctx context.Context, out io.Writer, audit ports.AuditLog, opts auditLogOptions) error {
	entries, err := audit.ListRecent(ctx, opts.Limit)
	if err != nil {
		return err
	}

	if opts.JSON {
		enc := json.NewEncoder(out)
		for _, e := range entries {
			if encErr := enc.Encode(e); encErr != nil {
				return fmt.Errorf("encode audit entry: %w", encErr)
			}
		}
		return nil
	}

	if len(entries) == 0 {
		return writef(out, "No audit entries.\n")
	}
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	if err = writef(tw, "TIME\tACTOR\tACTION\tOUTCOME\n"); err != nil {
		return err
	}
	for _, e := range entries {
		if err = writef(tw, "%s\t%s\t%s\t%s\n",
			e.CreatedAt.UTC().Format(time.RFC3339), e.ActorEmail, e.Action, e.Outcome); err != nil {
			return err
		}
	}
	return tw.Flush()
}

func runRevokeSession(cmdCtx *commandContext, args []string) error {
	fs := newFlagSet("revoke-session", cmdCtx.Out)
	id := fs.String("id", "", "Session id (the jti claim of the session token)")
	yes := fs.Bool("yes", false, "Skip the confirmation prompt")
	if err := fs.Parse(args); err != nil {
		return err
	}
	sessionID := strings.TrimSpace(*id)
	if sessionID == "" {
		return errors.New("--id is required")
	}
	if !*yes {
		if err := confirm(cmdCtx, fmt.Sprintf("About to revoke session %q.", sessionID)); err != nil {
			return err
		}
	}

	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, defaultCommandTimeout)
	defer cancel()

	return withRedis(ctx, cmdCtx, func(registry ports.SessionRegistry, _ ports.CacheRepository) error {
		if err := registry.Revoke(ctx, sessionID); err != nil {
			return fmt.Errorf("revoke session: %w", err)
		}
		return writef(cmdCtx.Out, "Session %s revoked.\n", sessionID)
	})
}

func runClearStatusCache(cmdCtx *commandContext, args []string) error {
	fs := newFlagSet("clear-status-cache", cmdCtx.Out)
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, defaultCommandTimeout)
	defer cancel()

	return withRedis(ctx, cmdCtx, func(_ ports.SessionRegistry, cache ports.CacheRepository) error {
		return clearStatusCache(ctx, cmdCtx.Out, cache)
	})
}

func clearStatusCache(ctx context.Context, out io.Writer, cache ports.CacheRepository) error {
	deleted, err := cache.Delete(ctx, service.StatusCacheKey)
	if err != nil {
		return fmt.Errorf("clear status cache: %w", err)
	}
	if !deleted {
		return writef(out, "Status cache was already empty.\n")
	}
	return writef(out, "Status cache cleared.\n")
}

func runGenSecret(cmdCtx *commandContext, args []string) error {
	fs := newFlagSet("gen-secret", cmdCtx.Out)
	size := fs.Int("bytes", 32, "Number of random bytes (hex encoded)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *size < 32 {
		return errors.New("--bytes must be at least 32")
	}
	b := make([]byte, *size)
	if _, err := rand.Read(b); err != nil {
		return fmt.Errorf("read random bytes: %w", err)
	}
	return writef(cmdCtx.Out, "%s\n", hex.EncodeToString(b))
}

func newFlagSet(name string, out io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(out)
	return fs
}

func withDatabase(ctx context.Context, cmdCtx *commandContext, fn func(*sql.DB) error) error {
	db, err := bootstrap.ConnectDB(ctx, cmdCtx.Config.Postgres, cmdCtx.Logger)
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			cmdCtx.Logger.Warn("db close failed", "error", closeErr)
		}
	}()
	return fn(db)
}

func withRedis(
	ctx context.Context,
	cmdCtx *commandContext,
	fn func(ports.SessionRegistry, ports.CacheRepository) error,
) error {
	if !cmdCtx.Config.Redis.Enabled {
		return errRedisDisabled
	}
	client, err := bootstrap.ConnectRedis(ctx, cmdCtx.Config.Redis, cmdCtx.Logger)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	defer func() {
		if closeErr := client.Close(); closeErr != nil {
			cmdCtx.Logger.Warn("redis close failed", "error", closeErr)
		}
	}()
	return fn(
		redisadapter.NewSessionRegistry(client),
		data.NewRedisCacheRepo(client, bootstrap.CacheKeyPrefix),
	)
}

func confirm(cmdCtx *commandContext, intro string) error {
	if err := writef(cmdCtx.Out, "%s\nContinue? [y/N]: ", intro); err != nil {
		return fmt.Errorf("print confirmation prompt: %w", err)
	}
	resp, err := bufio.NewReader(cmdCtx.In).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("read confirmation: %w", err)
	}
	resp = strings.ToLower(strings.TrimSpace(resp))
	if resp == "y" || resp == "yes" {
		return nil
	}
	return errors.New("aborted by user")
}
