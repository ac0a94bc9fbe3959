package http

import (
	"context"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MKhiriev/go-service-bootstrap/internal/apperr"
	"github.com/MKhiriev/go-service-bootstrap/internal/openapi"
)

// buildPipeline registers the fixed stages on the outer router. Anything the
// probes do not answer falls through to the route table.
func (h *Handler) buildPipeline() http.Handler {
	router := chi.NewRouter()

	router.Use(h.withCORS())
	router.Use(h.bodyStages()...)
	router.Use(h.withTraceID, h.withLogging)
	if h.metrics != nil {
		router.Use(h.metrics.middleware)
	}
	router.Use(withSecurityHeaders)

	router.Get("/health-check", h.healthCheck)
	router.Get("/ready-check", h.readyCheck)
	router.Get("/", h.root)
	if h.metrics != nil {
		router.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(h.metrics.registry, promhttp.HandlerOpts{}))
	}

	dispatch := h.withEnvelopeEncryption(h.table)
	router.NotFound(dispatch.ServeHTTP)
	router.MethodNotAllowed(dispatch.ServeHTTP)

	return router
}

// buildRoutes registers one route table version: docs first, then the
// recovering and validating group holding the caller's routes.
func (h *Handler) buildRoutes(_ context.Context, router chi.Router, schema *openapi3.T) error {
	router.NotFound(h.handle(func(http.ResponseWriter, *http.Request) error {
		return apperr.NotFound("")
	}))
	router.MethodNotAllowed(h.handle(func(_ http.ResponseWriter, r *http.Request) error {
		return apperr.MethodNotAllowed(r.Method + " method not allowed")
	}))

	if schema != nil {
		docs, err := openapi.NewDocs(schema, h.opts.DocsPath)
		if err != nil {
			return err
		}
		router.Get(docs.SpecPath(), docs.ServeSpec)
		router.Get(docs.BasePath(), func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, docs.BasePath()+"/", http.StatusMovedPermanently)
		})
		router.Get(docs.BasePath()+"/*", docs.ServeUI)
	}

	var validator *openapi.Validator
	if !h.opts.DisableValidation {
		v, err := openapi.NewValidator(schema, h.opts.TokenValidator)
		if err != nil {
			return err
		}
		validator = v
	}

	router.Group(func(r chi.Router) {
		r.Use(h.withRecover)
		if validator != nil {
			r.Use(validator.Middleware(h.handleError))
		}
		for _, route := range h.opts.Routes {
			r.With(route.Middlewares...).Method(route.Method, route.Pattern, h.handle(route.Handler))
		}
	})

	return nil
}
