package http

import (
	"context"
	"net/http"
	"strings"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/MKhiriev/go-service-bootstrap/internal/apperr"
	"github.com/MKhiriev/go-service-bootstrap/internal/crypto"
	"github.com/MKhiriev/go-service-bootstrap/internal/health"
	"github.com/MKhiriev/go-service-bootstrap/internal/logger"
	"github.com/MKhiriev/go-service-bootstrap/internal/openapi"
	"github.com/MKhiriev/go-service-bootstrap/internal/routing"
	"github.com/MKhiriev/go-service-bootstrap/internal/utils"
	"github.com/MKhiriev/go-service-bootstrap/models"
)

// DefaultDocsPath is where the Swagger UI is mounted unless Options.DocsPath
// says otherwise.
const DefaultDocsPath = "/api-docs"

// Options configures the pipeline. They are validated once by [NewHandler].
type Options struct {
	// Routes is the caller's route table. Required, may be empty.
	Routes []models.Route

	// Logger is the base logger. Required.
	Logger *logger.Logger

	// IgnoredLogPaths are paths (or path.Match patterns) excluded from the
	// access log. Required, may be empty.
	IgnoredLogPaths []string

	// SchemaPath and Schema are the two schema sources. Exactly one must be
	// set unless DisableValidation is true.
	SchemaPath        string
	Schema            *openapi3.T
	DisableValidation bool

	// Environment selects stack traces in error bodies (development),
	// silences error-chain logging (test) and gates the payload envelope.
	// Required.
	Environment models.Environment

	// RequestSizeLimit caps request bodies in bytes. Zero means no limit.
	RequestSizeLimit int64

	// CORS is the CORS policy. Nil allows every origin for simple methods.
	CORS *cors.Options

	// EncryptionKey enables the payload envelope outside development.
	EncryptionKey string

	// Codec overrides the envelope codec.
	Codec crypto.EnvelopeCodec

	// BodyDecoder, when set, replaces the default size limit, gzip, and JSON
	// syntax stages. Envelope decryption still runs after it.
	BodyDecoder func(http.Handler) http.Handler

	// DocsPath is where the docs UI and openapi.json are served.
	DocsPath string

	// TokenValidator verifies bearer tokens for operations with an HTTP
	// bearer security requirement.
	TokenValidator openapi.TokenValidator

	// Metrics, when set, records request metrics and serves GET /metrics.
	Metrics *prometheus.Registry

	// OnUnhandledError receives errors that cannot be rendered because the
	// response has already started. The default logs them.
	OnUnhandledError func(r *http.Request, err error)
}

// Handler assembles the request pipeline.
type Handler struct {
	opts      Options
	logger    *logger.Logger
	codec     crypto.EnvelopeCodec
	traceIDs  *utils.UUIDGenerator
	readiness *health.Readiness
	table     *routing.Table
	metrics   *metrics

	mu    sync.Mutex
	entry http.Handler
}

// NewHandler validates opts and prepares a pipeline. Nothing is served until
// [Handler.Init] is called.
func NewHandler(opts Options) (*Handler, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	if opts.DocsPath == "" {
		opts.DocsPath = DefaultDocsPath
	}
	if opts.Codec == nil {
		opts.Codec = crypto.NewEnvelopeCodec()
	}

	h := &Handler{
		opts:      opts,
		logger:    opts.Logger,
		codec:     opts.Codec,
		traceIDs:  utils.NewUUIDGenerator(),
		readiness: &health.Readiness{},
	}

	if opts.Metrics != nil {
		m, err := newMetrics(opts.Metrics)
		if err != nil {
			return nil, apperr.Wrap(apperr.KindConfiguration, err, "error registering metrics")
		}
		h.metrics = m
	}

	h.table = routing.NewTable(h.buildRoutes, h.schemaSource(), opts.Logger)

	h.logger.Info().
		Str("environment", string(opts.Environment)).
		Int("routes", len(opts.Routes)).
		Bool("validation", !opts.DisableValidation).
		Bool("envelope", h.envelopeEnabled()).
		Msg("http handler created")

	return h, nil
}

// Init builds the first route table version, marks the service ready, and
// returns the pipeline entry point. Calling Init again only rebuilds the
// route table and returns the same entry point.
func (h *Handler) Init(ctx context.Context) (http.Handler, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.reload(ctx, nil); err != nil {
		return nil, err
	}

	if h.entry == nil {
		h.entry = h.buildPipeline()
		h.readiness.MarkReady()
	}
	return h.entry, nil
}

// Reload rebuilds the route table from schema, or from the configured schema
// source when schema is nil, and swaps it in. Requests already in flight
// finish on the previous version.
func (h *Handler) Reload(ctx context.Context, schema *openapi3.T) error {
	return h.reload(ctx, schema)
}

func (h *Handler) reload(ctx context.Context, schema *openapi3.T) error {
	v, err := h.table.Reload(ctx, schema)
	if err != nil {
		h.logger.Err(err).Msg("route table reload failed")
		return err
	}
	if h.metrics != nil {
		h.metrics.tableVersion.Set(float64(v.Number()))
		h.metrics.tablePublished.Set(float64(v.BuiltAt().Unix()))
	}
	return nil
}

// Shutdown makes the readiness probe fail. It is idempotent and cannot be
// undone.
func (h *Handler) Shutdown() {
	h.readiness.Shutdown()
	h.logger.Info().Msg("readiness switched off")
}

// Ready reports whether the readiness probe succeeds.
func (h *Handler) Ready() bool {
	return h.readiness.Ready()
}

// Version is the number of the route table version serving new requests.
func (h *Handler) Version() uint64 {
	return h.table.Version()
}

func (h *Handler) schemaSource() routing.SchemaSource {
	switch {
	case h.opts.Schema != nil:
		schema := h.opts.Schema
		return func(context.Context) (*openapi3.T, error) { return schema, nil }
	case h.opts.SchemaPath != "":
		path := h.opts.SchemaPath
		return func(ctx context.Context) (*openapi3.T, error) { return openapi.Load(ctx, path) }
	default:
		return nil
	}
}

func (h *Handler) envelopeEnabled() bool {
	return h.opts.EncryptionKey != "" && !h.opts.Environment.IsDevelopment()
}

var routeMethods = map[string]bool{
	http.MethodGet:     true,
	http.MethodHead:    true,
	http.MethodPost:    true,
	http.MethodPut:     true,
	http.MethodPatch:   true,
	http.MethodDelete:  true,
	http.MethodOptions: true,
	http.MethodConnect: true,
	http.MethodTrace:   true,
}

func (o Options) validate() error {
	var details []apperr.Detail
	add := func(target, message string) {
		details = append(details, apperr.Detail{Target: target, Message: message, Code: apperr.CodeConfiguration})
	}

	if o.Logger == nil {
		add("Logger", "logger is required")
	}
	if o.Routes == nil {
		add("Routes", "route table is required")
	}
	if o.IgnoredLogPaths == nil {
		add("IgnoredLogPaths", "ignored log paths are required")
	}
	if !o.Environment.IsValid() {
		add("Environment", "environment must be one of development, test, production")
	}
	if o.SchemaPath != "" && o.Schema != nil {
		add("Schema", "only one of SchemaPath and Schema may be set")
	}
	if !o.DisableValidation && o.SchemaPath == "" && o.Schema == nil {
		add("Schema", "SchemaPath or Schema is required unless validation is disabled")
	}
	if o.RequestSizeLimit < 0 {
		add("RequestSizeLimit", "request size limit must not be negative")
	}
	if o.DocsPath != "" && !strings.HasPrefix(o.DocsPath, "/") {
		add("DocsPath", "docs path must start with /")
	}

	for _, route := range o.Routes {
		target := "Routes[" + route.Method + " " + route.Pattern + "]"
		if !routeMethods[route.Method] {
			add(target, "unsupported HTTP method")
		}
		if !strings.HasPrefix(route.Pattern, "/") {
			add(target, "pattern must start with /")
		}
		if route.Handler == nil {
			add(target, "handler is required")
		}
	}

	if len(details) == 0 {
		return nil
	}

	messages := make([]string, 0, len(details))
	for _, d := range details {
		messages = append(messages, d.Target+": "+d.Message)
	}
	return apperr.New(apperr.KindConfiguration, "invalid handler options: "+strings.Join(messages, "; "),
		apperr.WithDetails(details...))
}
