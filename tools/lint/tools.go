//go:build tools

// Package lint pins the linters used on this repository in a module of its
// own, so the main go.mod carries no tool dependencies.
//
// Only the two tool modules are required here. Fill in their dependency
// graph and go.sum once with:
//
//	cd tools/lint && go mod tidy
//
// Then, from the project root:
//
//	go tool -modfile=tools/lint/go.mod golangci-lint run ./...
//	go tool -modfile=tools/lint/go.mod staticcheck ./...
package lint
