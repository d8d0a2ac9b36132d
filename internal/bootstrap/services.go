package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/target/control-panel-ui/config"
	redisadapter "github.com/target/control-panel-ui/internal/adapters/redis"
	"github.com/target/control-panel-ui/internal/adapters/sessiontoken"
	"github.com/target/control-panel-ui/internal/data"
	httpx "github.com/target/control-panel-ui/internal/http"
	"github.com/target/control-panel-ui/internal/observability/statsd"
	"github.com/target/control-panel-ui/internal/ports"
	"github.com/target/control-panel-ui/internal/service"
)

// CacheKeyPrefix namespaces the panel's cache entries in Redis.
const CacheKeyPrefix = "control-panel:"

// ServiceDeps contains the shared infrastructure the services are built from.
// DB, RedisClient and Metrics are optional.
type ServiceDeps struct {
	Config      *config.AppConfig
	DB          *sql.DB
	RedisClient redis.UniversalClient
	Metrics     statsd.Sink
	Logger      *slog.Logger
}

// ServiceContainer holds the services behind the HTTP router.
type ServiceContainer struct {
	Auth     *service.AuthService
	Override *service.OverrideService
	Status   *service.StatusService
	Activity *service.ActivityService
	Health   httpx.HealthChecks
}

// NewServices wires the control panel services. ctx bounds the mock Control API, if one is started.
func NewServices(ctx context.Context, deps *ServiceDeps) (ServiceContainer, error) {
	if deps == nil || deps.Config == nil {
		return ServiceContainer{}, errors.New("service deps missing AppConfig")
	}
	cfg := deps.Config
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	client, err := BuildControlAPI(ctx, cfg.API, logger)
	if err != nil {
		return ServiceContainer{}, err
	}

	codec, err := sessiontoken.NewCodec(sessiontoken.Options{
		Secret: []byte(cfg.Session.Secret),
		Issuer: cfg.Session.Issuer,
		Sealer: NewSessionSealer(cfg.Session.EncryptionKey, logger),
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("session codec: %w", err)
	}

	var (
		audit    ports.AuditLog
		registry ports.SessionRegistry
		cache    ports.CacheRepository
		health   = httpx.HealthChecks{}
	)
	if deps.DB != nil {
		audit = data.NewAuditRepo(deps.DB)
		health["postgres"] = deps.DB.PingContext
	}
	if deps.RedisClient != nil {
		registry = redisadapter.NewSessionRegistry(deps.RedisClient)
		repo := data.NewRedisCacheRepo(deps.RedisClient, CacheKeyPrefix)
		cache = repo
		health["redis"] = repo.Health
	}

	obs := service.Observers{Audit: audit, Metrics: deps.Metrics, Logger: logger}

	override := service.NewOverrideService(service.OverrideServiceOptions{
		Client:    client,
		Notifier:  BuildNotifier(cfg.Observability.Notifications, logger),
		Observers: obs,
	})
	override.StatusCache = cache

	return ServiceContainer{
		Auth: service.NewAuthService(service.AuthServiceOptions{
			Exchanger: client,
			Sessions:  service.SessionDeps{Codec: codec, Registry: registry, TTL: cfg.Session.TTL},
			Observers: obs,
		}),
		Override: override,
		Status: service.NewStatusService(service.StatusServiceOptions{
			Client:    client,
			Cache:     service.StatusCache{Repo: cache, TTL: cfg.Redis.StatusCacheTTL},
			Observers: obs,
		}),
		Activity: service.NewActivityService(audit),
		Health:   health,
	}, nil
}
