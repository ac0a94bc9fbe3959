package server

import (
	"context"
	"net/http"
)

// Server defines the lifecycle contract of the service.
type Server interface {
	// RunServer serves requests until SIGTERM, SIGINT or SIGQUIT arrives and
	// then shuts down gracefully. Errors are logged.
	RunServer()

	// Run serves requests until ctx is done or Shutdown is called, then
	// shuts down gracefully.
	Run(ctx context.Context) error

	// Shutdown asks a running server to stop. It does not wait.
	Shutdown()
}

// Pipeline is the part of the HTTP handler the server drives.
type Pipeline interface {
	// Init builds the route table and returns the entry point.
	Init(ctx context.Context) (http.Handler, error)

	// Shutdown makes the readiness probe fail.
	Shutdown()
}
