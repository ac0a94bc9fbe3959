// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package routing holds the swappable part of the request pipeline: the
// route table made of the docs endpoint, schema validation, and the caller's
// routes.
//
// A [Table] publishes immutable [Version] values through an atomic pointer.
// Every request loads the current version exactly once and is served by it
// to completion, so a reload never changes the routes a request in flight
// sees. Reloads are serialized; a failed reload leaves the previous version
// in place.
package routing

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"

	"github.com/MKhiriev/go-service-bootstrap/internal/apperr"
	"github.com/MKhiriev/go-service-bootstrap/internal/logger"
)

// Builder registers the routes of one table version on router. schema is nil
// when schema validation is disabled.
type Builder func(ctx context.Context, router chi.Router, schema *openapi3.T) error

// SchemaSource loads the schema document when a reload is not given one.
type SchemaSource func(ctx context.Context) (*openapi3.T, error)

// Version is one immutable build of the route table.
type Version struct {
	number  uint64
	router  *chi.Mux
	schema  *openapi3.T
	builtAt time.Time
}

// Number is the monotonic version number, starting at 1.
func (v *Version) Number() uint64 {
	return v.number
}

// Schema is the document the version was built from.
func (v *Version) Schema() *openapi3.T {
	return v.schema
}

// BuiltAt is when the version was published.
func (v *Version) BuiltAt() time.Time {
	return v.builtAt
}

// ServeHTTP dispatches r on this version with a fresh chi routing context,
// so state left by an outer chi router does not leak into route matching.
func (v *Version) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rctx := chi.NewRouteContext()
	rctx.Routes = v.router
	v.router.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx)))
}

// Table is the dynamic route table.
type Table struct {
	build  Builder
	source SchemaSource
	logger *logger.Logger

	current atomic.Pointer[Version]

	mu      sync.Mutex
	version uint64
}

// NewTable returns an empty table. source may be nil when every reload is
// given a schema or validation is disabled.
func NewTable(build Builder, source SchemaSource, log *logger.Logger) *Table {
	return &Table{
		build:  build,
		source: source,
		logger: log,
	}
}

// Reload builds a new version and publishes it. When schema is nil it is
// loaded from the table's schema source, if any. On error the current
// version is kept.
func (t *Table) Reload(ctx context.Context, schema *openapi3.T) (*Version, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if schema == nil && t.source != nil {
		loaded, err := t.source(ctx)
		if err != nil {
			return nil, fmt.Errorf("error loading schema: %w", err)
		}
		schema = loaded
	}

	router := chi.NewRouter()
	if err := t.build(ctx, router, schema); err != nil {
		return nil, fmt.Errorf("error building route table: %w", err)
	}

	t.version++
	v := &Version{
		number:  t.version,
		router:  router,
		schema:  schema,
		builtAt: time.Now(),
	}
	t.current.Store(v)

	t.logger.Info().Uint64("version", v.number).Time("built_at", v.builtAt).Msg("route table published")
	return v, nil
}

// Current returns the published version, or an IllegalStateError if the
// table has never been built.
func (t *Table) Current() (*Version, error) {
	v := t.current.Load()
	if v == nil {
		return nil, apperr.IllegalState("route table used before it was built")
	}
	return v, nil
}

// Version is the number of the published version, 0 before the first build.
func (t *Table) Version() uint64 {
	if v := t.current.Load(); v != nil {
		return v.number
	}
	return 0
}

// ServeHTTP serves r with the version current at the time of the call. It
// panics with an IllegalStateError if the table was never built.
func (t *Table) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	v, err := t.Current()
	if err != nil {
		panic(err)
	}
	v.ServeHTTP(w, r)
}
