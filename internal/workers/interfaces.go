// Package workers provides abstractions for managing and running
// background workers in the application.
// It defines the Worker interface and a Workers aggregate that runs
// multiple workers side by side until their context is done.
package workers

import (
	"context"

	"github.com/getkin/kin-openapi/openapi3"
)

// Worker is the interface that must be implemented by any background worker.
//
// Run blocks until ctx is done or the worker fails. Returning nil after ctx
// is done is a clean stop.
//
// Example implementation:
//
//	type MyWorker struct{}
//
//	func (w *MyWorker) Run(ctx context.Context) error {
//	    <-ctx.Done()
//	    return nil
//	}
type Worker interface {
	Run(ctx context.Context) error
}

// Reloader swaps in a new route table. A nil schema means the configured
// schema source is read again.
type Reloader interface {
	Reload(ctx context.Context, schema *openapi3.T) error
}
