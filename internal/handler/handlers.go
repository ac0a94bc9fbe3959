package handler

import (
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/MKhiriev/go-service-bootstrap/internal/auth"
	"github.com/MKhiriev/go-service-bootstrap/internal/config"
	"github.com/MKhiriev/go-service-bootstrap/internal/handler/http"
	"github.com/MKhiriev/go-service-bootstrap/internal/logger"
	"github.com/MKhiriev/go-service-bootstrap/models"
)

type Handlers struct {
	HTTP *http.Handler
}

// NewHandlers builds the HTTP pipeline for routes from the merged
// configuration.
func NewHandlers(cfg *config.StructuredConfig, routes []models.Route, logger *logger.Logger) (*Handlers, error) {
	logger.Info().Msg("creating new handlers...")

	if cfg.Server.HTTPAddress == "" {
		return nil, errNoHandlersAreCreated
	}

	opts, err := httpOptions(cfg, routes, logger)
	if err != nil {
		return nil, err
	}

	h, err := http.NewHandler(opts)
	if err != nil {
		return nil, err
	}

	return &Handlers{HTTP: h}, nil
}

func httpOptions(cfg *config.StructuredConfig, routes []models.Route, logger *logger.Logger) (http.Options, error) {
	if routes == nil {
		routes = []models.Route{}
	}
	ignored := cfg.App.IgnoredLogPaths
	if ignored == nil {
		ignored = []string{}
	}

	opts := http.Options{
		Routes:            routes,
		Logger:            logger,
		IgnoredLogPaths:   ignored,
		SchemaPath:        cfg.Schema.Path,
		DisableValidation: cfg.Schema.DisableValidation,
		Environment:       models.Environment(cfg.App.Environment),
		RequestSizeLimit:  cfg.App.RequestSizeLimit,
		EncryptionKey:     cfg.App.EncryptionKey,
		DocsPath:          cfg.Schema.DocsPath,
	}

	if !cfg.CORS.IsZero() {
		opts.CORS = &cors.Options{
			AllowedOrigins:   cfg.CORS.AllowedOrigins,
			AllowedMethods:   cfg.CORS.AllowedMethods,
			AllowedHeaders:   cfg.CORS.AllowedHeaders,
			AllowCredentials: cfg.CORS.AllowCredentials,
			MaxAge:           cfg.CORS.MaxAge,
		}
	}

	if cfg.Auth.TokenSignKey != "" {
		validator, err := auth.NewJWTValidator(cfg.Auth.TokenSignKey, cfg.Auth.TokenIssuer)
		if err != nil {
			return http.Options{}, err
		}
		opts.TokenValidator = validator
	}

	if cfg.App.Metrics {
		registry := prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		opts.Metrics = registry
	}

	return opts, nil
}
