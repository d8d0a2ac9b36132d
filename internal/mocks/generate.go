// Package mocks provides mock implementations of the control panel ports.
//
// The mocks are generated with go.uber.org/mock (gomock). To regenerate after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	api := mocks.NewMockCredentialExchanger(ctrl)
//	api.EXPECT().Exchange(gomock.Any(), gomock.Any()).Return(identity, nil)
package mocks

//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=credential_exchanger_mock.go github.com/target/control-panel-ui/internal/ports CredentialExchanger
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=session_registry_mock.go github.com/target/control-panel-ui/internal/ports SessionRegistry
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=override_client_mock.go github.com/target/control-panel-ui/internal/ports OverrideClient
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=status_client_mock.go github.com/target/control-panel-ui/internal/ports StatusClient
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=audit_log_mock.go github.com/target/control-panel-ui/internal/ports AuditLog
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=cache_repository_mock.go github.com/target/control-panel-ui/internal/ports CacheRepository
