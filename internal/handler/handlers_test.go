package handler

import (
	"context"
	nethttp "net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-service-bootstrap/internal/apperr"
	"github.com/MKhiriev/go-service-bootstrap/internal/auth"
	"github.com/MKhiriev/go-service-bootstrap/internal/config"
	"github.com/MKhiriev/go-service-bootstrap/internal/logger"
	"github.com/MKhiriev/go-service-bootstrap/models"
)

func newTestConfig() *config.StructuredConfig {
	return &config.StructuredConfig{
		Server: config.Server{HTTPAddress: ":8080"},
		App: config.App{
			Environment: string(models.EnvironmentTest),
			LogLevel:    "info",
		},
		Schema: config.Schema{
			Path:     "../openapi/testdata/api.yaml",
			DocsPath: "/api-docs",
		},
	}
}

func TestNewHandlers_CreatesHTTPHandler(t *testing.T) {
	h, err := NewHandlers(newTestConfig(), nil, logger.Nop())

	require.NoError(t, err)
	require.NotNil(t, h)
	assert.NotNil(t, h.HTTP)

	entry, err := h.HTTP.Init(context.Background())
	require.NoError(t, err)
	rr := httptest.NewRecorder()
	entry.ServeHTTP(rr, httptest.NewRequest(nethttp.MethodGet, "/metrics", nil))
	assert.Equal(t, nethttp.StatusNotFound, rr.Code, "metrics are off by default")
}

func TestNewHandlers_NoAddress(t *testing.T) {
	cfg := newTestConfig()
	cfg.Server.HTTPAddress = ""

	h, err := NewHandlers(cfg, nil, logger.Nop())

	require.ErrorIs(t, err, errNoHandlersAreCreated)
	assert.Nil(t, h)
}

func TestNewHandlers_InvalidOptions(t *testing.T) {
	cfg := newTestConfig()
	cfg.App.Environment = "staging"

	h, err := NewHandlers(cfg, nil, logger.Nop())

	assert.Nil(t, h)
	assert.True(t, apperr.IsKind(err, apperr.KindConfiguration))
}

func TestNewHandlers_Metrics(t *testing.T) {
	cfg := newTestConfig()
	cfg.App.Metrics = true

	h, err := NewHandlers(cfg, nil, logger.Nop())
	require.NoError(t, err)

	entry, err := h.HTTP.Init(context.Background())
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	entry.ServeHTTP(rr, httptest.NewRequest(nethttp.MethodGet, "/metrics", nil))
	assert.Equal(t, nethttp.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "route_table_version 1")
	assert.Contains(t, rr.Body.String(), "go_goroutines")
	assert.Contains(t, rr.Body.String(), "route_table_published_timestamp_seconds")
}

func TestNewHandlers_AuthFromConfig(t *testing.T) {
	cfg := newTestConfig()
	cfg.Auth = config.Auth{TokenSignKey: "sign-key", TokenIssuer: "issuer"}

	routes := []models.Route{{
		Method:  nethttp.MethodGet,
		Pattern: "/reports",
		Handler: func(w nethttp.ResponseWriter, r *nethttp.Request) error {
			w.Header().Set("Content-Type", "application/json")
			_, err := w.Write([]byte(`{}`))
			return err
		},
	}}

	h, err := NewHandlers(cfg, routes, logger.Nop())
	require.NoError(t, err)
	entry, err := h.HTTP.Init(context.Background())
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	entry.ServeHTTP(rr, httptest.NewRequest(nethttp.MethodGet, "/reports", nil))
	assert.Equal(t, nethttp.StatusUnauthorized, rr.Code)

	token, err := auth.IssueToken("sign-key", "issuer", "user-1", time.Minute, "reports:read")
	require.NoError(t, err)

	req := httptest.NewRequest(nethttp.MethodGet, "/reports", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr = httptest.NewRecorder()
	entry.ServeHTTP(rr, req)
	assert.Equal(t, nethttp.StatusOK, rr.Code)
}

func TestHTTPOptions(t *testing.T) {
	cfg := newTestConfig()
	cfg.App.EncryptionKey = "key"
	cfg.App.RequestSizeLimit = 512
	cfg.CORS = config.CORS{
		AllowedOrigins:   []string{"https://app.example.com"},
		AllowCredentials: true,
		MaxAge:           60,
	}

	opts, err := httpOptions(cfg, nil, logger.Nop())
	require.NoError(t, err)

	assert.NotNil(t, opts.Routes, "nil routes become an empty table")
	assert.NotNil(t, opts.IgnoredLogPaths)
	assert.Equal(t, models.EnvironmentTest, opts.Environment)
	assert.Equal(t, "key", opts.EncryptionKey)
	assert.Equal(t, int64(512), opts.RequestSizeLimit)
	assert.Equal(t, "/api-docs", opts.DocsPath)
	assert.Nil(t, opts.TokenValidator)

	require.NotNil(t, opts.CORS)
	assert.Equal(t, []string{"https://app.example.com"}, opts.CORS.AllowedOrigins)
	assert.True(t, opts.CORS.AllowCredentials)
	assert.Equal(t, 60, opts.CORS.MaxAge)

	cfg.CORS = config.CORS{}
	opts, err = httpOptions(cfg, nil, logger.Nop())
	require.NoError(t, err)
	assert.Nil(t, opts.CORS, "an empty policy keeps the default")
}
