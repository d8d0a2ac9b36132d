package ports_test

import (
	"testing"

	"github.com/target/control-panel-ui/internal/mocks"
	"github.com/target/control-panel-ui/internal/ports"
)

// This test only verifies that our mocks conform to the ports at compile time.
func TestMocksImplementPorts(t *testing.T) {
	t.Helper()

	var _ ports.CredentialExchanger = (*mocks.MockCredentialExchanger)(nil)
	var _ ports.SessionRegistry = (*mocks.MockSessionRegistry)(nil)
	var _ ports.OverrideClient = (*mocks.MockOverrideClient)(nil)
	var _ ports.StatusClient = (*mocks.MockStatusClient)(nil)
	var _ ports.AuditLog = (*mocks.MockAuditLog)(nil)
	var _ ports.CacheRepository = (*mocks.MockCacheRepository)(nil)
}
