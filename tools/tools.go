//go:build tools

// Package tools documents development tool dependencies.
// These tools are installed via `go install` or run with `go run` and are not tracked in go.mod.
package tools

// Development tools:
//
// Air - live reload while editing templates and handlers (run with DEV=true)
//   Install: go install github.com/air-verse/air@v1.63.0
//   Docs: https://github.com/air-verse/air
//
// mockgen - regenerates internal/mocks from the ports interfaces
//   Run: go generate ./internal/mocks
//   Docs: https://github.com/uber-go/mock
