package ports

import (
	"context"
	"time"

	"github.com/target/control-panel-ui/internal/domain/model"
)

// AuditLog records operator actions and lists the most recent ones.
type AuditLog interface {
	Record(ctx context.Context, req model.CreateAuditEntryRequest) (*model.AuditEntry, error)
	ListRecent(ctx context.Context, limit int) ([]*model.AuditEntry, error)
}

// CacheRepository defines the small key/value surface used for short-lived caching.
type CacheRepository interface {
	// Set stores a value with the given TTL. A TTL of 0 never expires.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Get returns nil, nil when the key does not exist or has expired.
	Get(ctx context.Context, key string) ([]byte, error)
	// Delete reports whether a key was removed.
	Delete(ctx context.Context, key string) (bool, error)
	Health(ctx context.Context) error
}
