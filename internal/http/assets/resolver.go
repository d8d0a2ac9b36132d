// Package assets maps logical static asset names to cache-busting URLs.
package assets

import (
	"crypto/sha256"
	"encoding/hex"
	"io/fs"
	"log/slog"
	"strings"
	"sync"
)

const (
	urlPrefix  = "/static/"
	hashLength = 10
)

// AssetResolver appends a content hash to static asset URLs ("/static/css/app.css?v=1a2b3c4d5e").
// Hashes are computed once per asset unless the resolver is in dev mode.
type AssetResolver struct {
	fsys    fs.FS
	devMode bool
	logger  *slog.Logger

	mu     sync.RWMutex
	hashes map[string]string
}

// NewAssetResolver creates a resolver over the static asset filesystem.
func NewAssetResolver(fsys fs.FS, devMode bool, logger *slog.Logger) *AssetResolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &AssetResolver{
		fsys:    fsys,
		devMode: devMode,
		logger:  logger,
		hashes:  make(map[string]string),
	}
}

// Resolve returns the public URL for a logical asset name. Missing assets resolve
// to the bare path so the page still renders.
func (ar *AssetResolver) Resolve(logicalName string) string {
	name := strings.TrimPrefix(logicalName, "/")
	path := urlPrefix + name
	if ar == nil || ar.fsys == nil {
		return path
	}

	if !ar.devMode {
		ar.mu.RLock()
		hash, ok := ar.hashes[name]
		ar.mu.RUnlock()
		if ok {
			return withVersion(path, hash)
		}
	}

	hash, err := ar.hash(name)
	if err != nil {
		ar.logger.Warn("static asset not found",
			slog.String("asset", name),
			slog.Any("error", err),
		)
		return path
	}

	if !ar.devMode {
		ar.mu.Lock()
		ar.hashes[name] = hash
		ar.mu.Unlock()
	}
	return withVersion(path, hash)
}

func (ar *AssetResolver) hash(name string) (string, error) {
	data, err := fs.ReadFile(ar.fsys, name)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])[:hashLength], nil
}

func withVersion(path, hash string) string {
	return path + "?v=" + hash
}
