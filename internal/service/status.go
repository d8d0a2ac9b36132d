package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	domainauth "github.com/target/control-panel-ui/internal/domain/auth"
	"github.com/target/control-panel-ui/internal/domain/model"
	"github.com/target/control-panel-ui/internal/observability/metrics"
	"github.com/target/control-panel-ui/internal/ports"
)

// StatusCacheKey is the cache key of the last status read.
const StatusCacheKey = "status:current"

const defaultStatusCacheTTL = 15 * time.Second

// StatusCache configures the optional status cache. A zero TTL uses the default.
type StatusCache struct {
	Repo ports.CacheRepository
	TTL  time.Duration
}

// StatusServiceOptions groups dependencies for StatusService.
type StatusServiceOptions struct {
	Client    ports.StatusClient
	Cache     StatusCache
	Observers Observers
}

// StatusService reads the platform status for the dashboard widget.
type StatusService struct {
	client ports.StatusClient
	cache  ports.CacheRepository
	ttl    time.Duration
	obs    Observers
	logger *slog.Logger
}

// NewStatusService constructs a new StatusService.
func NewStatusService(opts StatusServiceOptions) *StatusService {
	if opts.Client == nil {
		panic("status service: client is required")
	}
	ttl := opts.Cache.TTL
	if ttl <= 0 {
		ttl = defaultStatusCacheTTL
	}
	return &StatusService{
		client: opts.Client,
		cache:  opts.Cache.Repo,
		ttl:    ttl,
		obs:    opts.Observers,
		logger: loggerOrDefault(opts.Observers.Logger).With("component", "status_service"),
	}
}

// Current returns the platform status, from cache when fresh.
// Cache failures are logged and fall through to the Control API.
func (s *StatusService) Current(ctx context.Context, sess domainauth.Session) (*model.SystemStatus, error) {
	if cached := s.fromCache(ctx); cached != nil {
		metrics.EmitStatusFetch(s.obs.Metrics, "cache", metrics.ResultSuccess)
		return cached, nil
	}

	status, err := s.client.SystemStatus(ctx, sess.AccessToken)
	if err != nil {
		metrics.EmitStatusFetch(s.obs.Metrics, "api", metrics.ResultError)
		s.logger.WarnContext(ctx, "system status unavailable", "error", err)
		return nil, err
	}
	metrics.EmitStatusFetch(s.obs.Metrics, "api", metrics.ResultSuccess)
	s.store(ctx, status)
	return &status, nil
}

func (s *StatusService) fromCache(ctx context.Context) *model.SystemStatus {
	if s.cache == nil {
		return nil
	}
	raw, err := s.cache.Get(ctx, StatusCacheKey)
	if err != nil {
		s.logger.WarnContext(ctx, "status cache read failed", "error", err)
		return nil
	}
	if raw == nil {
		return nil
	}
	var status model.SystemStatus
	if err = json.Unmarshal(raw, &status); err != nil {
		s.logger.WarnContext(ctx, "status cache entry is corrupt", "error", err)
		return nil
	}
	return &status
}

func (s *StatusService) store(ctx context.Context, status model.SystemStatus) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(status)
	if err != nil {
		return
	}
	if err = s.cache.Set(ctx, StatusCacheKey, raw, s.ttl); err != nil {
		s.logger.WarnContext(ctx, "status cache write failed", "error", err)
	}
}
