package bootstrap

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"

	"github.com/target/control-panel-ui/internal/data/cryptoutil"
)

// NewSessionSealer builds the sealer protecting bearer tokens inside session tokens.
// A hex key of 32 bytes is used as is; any other string is hashed to 32 bytes.
// An empty key disables sealing.
//
//nolint:ireturn // callers only need the Sealer behaviour.
func NewSessionSealer(key string, logger *slog.Logger) cryptoutil.Sealer {
	if key == "" {
		if logger != nil {
			logger.Warn("SESSION_ENCRYPTION_KEY is empty, bearer tokens are signed but not encrypted")
		}
		return cryptoutil.NoopSealer{}
	}

	sealer, err := cryptoutil.NewAESGCMSealer(sessionKeyBytes(key))
	if err != nil {
		if logger != nil {
			logger.Warn("failed to create session sealer, using noop sealer", "error", err)
		}
		return cryptoutil.NoopSealer{}
	}
	return sealer
}

func sessionKeyBytes(key string) []byte {
	if decoded, err := hex.DecodeString(key); err == nil && len(decoded) == 32 {
		return decoded
	}
	sum := sha256.Sum256([]byte(key))
	return sum[:]
}
