//go:build tools
// +build tools

// Package tools pins the development tooling this repo expects.
// Nothing here is a runtime dependency; install each tool globally
// with `go install` at the version below.
package tools

// Air - live reload during local development
//   go install github.com/air-verse/air@v1.63.0
//   https://github.com/air-verse/air
//
// mockgen - regenerates the repository/port mocks
//   go install go.uber.org/mock/mockgen@v0.6.0
//   go generate ./internal/mocks
