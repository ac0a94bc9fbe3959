package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-service-bootstrap/internal/logger"
	"github.com/MKhiriev/go-service-bootstrap/internal/utils"
	"github.com/MKhiriev/go-service-bootstrap/models"
)

func accessLogEntries(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var entries []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		if _, ok := entry["uri"]; ok {
			entries = append(entries, entry)
		}
	}
	return entries
}

// ---- trace id ----

func TestWithTraceID(t *testing.T) {
	tests := []struct {
		name          string
		requestHeader string
		wantReused    bool
	}{
		{name: "reuses caller trace id", requestHeader: "my-custom-trace-id", wantReused: true},
		{name: "generates UUIDv7 when absent"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			h := &Handler{logger: logger.NewLogger("test", logger.WithOutput(&buf)), traceIDs: utils.NewUUIDGenerator()}

			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				logger.FromRequest(r).Info().Msg("inside")
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tt.requestHeader != "" {
				req.Header.Set(traceIDHeader, tt.requestHeader)
			}
			rr := httptest.NewRecorder()
			h.withTraceID(next).ServeHTTP(rr, req)

			traceID := rr.Header().Get(traceIDHeader)
			if tt.wantReused {
				assert.Equal(t, tt.requestHeader, traceID)
			} else {
				parsed, err := uuid.Parse(traceID)
				require.NoError(t, err)
				assert.Equal(t, uuid.Version(7), parsed.Version())
			}

			var entry map[string]any
			require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
			assert.Equal(t, traceID, entry["trace_id"])
		})
	}
}

func TestWithTraceID_DoesNotLeakIntoBaseLogger(t *testing.T) {
	var buf bytes.Buffer
	base := logger.NewLogger("test", logger.WithOutput(&buf))
	h := &Handler{logger: base, traceIDs: utils.NewUUIDGenerator()}

	h.withTraceID(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})).
		ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	base.Info().Msg("after")
	assert.NotContains(t, buf.String(), "trace_id")
}

// ---- access log ----

func TestWithLogging(t *testing.T) {
	var buf bytes.Buffer
	_, entry := newTestPipeline(t, func(o *Options) {
		o.Logger = logger.NewLogger("test", logger.WithOutput(&buf))
		o.IgnoredLogPaths = []string{"/health-check", "/api-docs/*"}
	})
	buf.Reset()

	serve(entry, httptest.NewRequest(http.MethodGet, "/health-check", nil))
	serve(entry, httptest.NewRequest(http.MethodGet, "/api-docs/openapi.json", nil))
	assert.Empty(t, accessLogEntries(t, &buf), "ignored paths are not logged")

	serve(entry, httptest.NewRequest(http.MethodGet, "/items?limit=5", nil))
	serve(entry, httptest.NewRequest(http.MethodGet, "/missing", nil))

	entries := accessLogEntries(t, &buf)
	require.Len(t, entries, 2)

	assert.Equal(t, "/items?limit=5", entries[0]["uri"])
	assert.Equal(t, http.MethodGet, entries[0]["method"])
	assert.Equal(t, float64(http.StatusOK), entries[0]["status"])
	assert.Greater(t, entries[0]["size"], float64(0))
	assert.Contains(t, entries[0], "duration")
	assert.Contains(t, entries[0], "trace_id")

	assert.Equal(t, float64(http.StatusNotFound), entries[1]["status"])
}

func TestIgnoredForLogging(t *testing.T) {
	h := &Handler{opts: Options{IgnoredLogPaths: []string{"/health-check", "/static/*", "[bad"}}}

	tests := map[string]bool{
		"/health-check":      true,
		"/static/app.js":     true,
		"/static/nested/app": false,
		"/items":             false,
		"[bad":               true,
	}
	for path, want := range tests {
		assert.Equal(t, want, h.ignoredForLogging(path), path)
	}
}

// ---- security headers ----

func TestWithSecurityHeaders(t *testing.T) {
	_, entry := newTestPipeline(t)

	for _, target := range []string{"/health-check", "/items", "/missing"} {
		rr := serve(entry, httptest.NewRequest(http.MethodGet, target, nil))
		for name, value := range securityHeaders {
			assert.Equal(t, value, rr.Header().Get(name), "%s on %s", name, target)
		}
		assert.Empty(t, rr.Header().Get("Content-Security-Policy"))
	}
}

// ---- CORS ----

func TestWithCORS(t *testing.T) {
	t.Run("default policy allows any origin", func(t *testing.T) {
		_, entry := newTestPipeline(t)

		req := httptest.NewRequest(http.MethodGet, "/items", nil)
		req.Header.Set("Origin", "https://example.com")

		rr := serve(entry, req)
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("configured policy", func(t *testing.T) {
		_, entry := newTestPipeline(t, func(o *Options) {
			o.CORS = &cors.Options{
				AllowedOrigins: []string{"https://app.example.com"},
				AllowedMethods: []string{http.MethodGet, http.MethodPost},
			}
		})

		preflight := httptest.NewRequest(http.MethodOptions, "/items", nil)
		preflight.Header.Set("Origin", "https://app.example.com")
		preflight.Header.Set("Access-Control-Request-Method", http.MethodPost)

		rr := serve(entry, preflight)
		assert.Equal(t, "https://app.example.com", rr.Header().Get("Access-Control-Allow-Origin"))
		assert.Contains(t, rr.Header().Get("Access-Control-Allow-Methods"), http.MethodPost)

		req := httptest.NewRequest(http.MethodGet, "/items", nil)
		req.Header.Set("Origin", "https://evil.example.com")
		rr = serve(entry, req)
		assert.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))
	})
}

// ---- response writer ----

func TestResponseWriter(t *testing.T) {
	rr := httptest.NewRecorder()
	w := &responseWriter{ResponseWriter: rr}

	assert.False(t, w.Written())
	assert.Equal(t, http.StatusOK, w.Status())

	w.WriteHeader(http.StatusCreated)
	w.WriteHeader(http.StatusInternalServerError)
	n, err := w.Write([]byte("hello"))
	require.NoError(t, err)

	assert.Equal(t, 5, n)
	assert.True(t, w.Written())
	assert.Equal(t, http.StatusCreated, w.Status())
	assert.Equal(t, 5, w.size)
	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Same(t, rr, w.Unwrap())
}

func TestResponseWriter_ImplicitHeader(t *testing.T) {
	w := &responseWriter{ResponseWriter: httptest.NewRecorder()}
	_, _ = w.Write([]byte("x"))
	assert.True(t, w.Written())
	assert.Equal(t, http.StatusOK, w.Status())
}

func TestResponseStarted(t *testing.T) {
	rr := httptest.NewRecorder()

	inner := &responseWriter{ResponseWriter: rr}
	outer := &responseWriter{ResponseWriter: &envelopeWriter{ResponseWriter: inner}}
	assert.False(t, responseStarted(outer))
	assert.False(t, responseStarted(rr))

	inner.WriteHeader(http.StatusAccepted)
	assert.True(t, responseStarted(outer), "a started inner writer is found through the chain")

	gz := &gzipResponseWriter{ResponseWriter: rr}
	assert.False(t, responseStarted(gz))
	gz.WriteHeader(http.StatusOK)
	assert.True(t, responseStarted(gz))
}

// ---- body stages ----

func TestBodyStages(t *testing.T) {
	h := &Handler{opts: Options{Environment: models.EnvironmentTest}, logger: logger.Nop()}
	assert.Len(t, h.bodyStages(), 3, "gzip, JSON, envelope")

	h.opts.RequestSizeLimit = 1024
	assert.Len(t, h.bodyStages(), 4)

	h.opts.BodyDecoder = func(next http.Handler) http.Handler { return next }
	assert.Len(t, h.bodyStages(), 2, "custom decoder replaces the default stages")
}

func TestIsJSONMediaType(t *testing.T) {
	tests := map[string]bool{
		"application/json":                true,
		"application/json; charset=utf-8": true,
		"application/problem+json":        true,
		"text/plain":                      false,
		"":                                false,
		"not a media type;;":              false,
	}
	for contentType, want := range tests {
		assert.Equal(t, want, isJSONMediaType(contentType), contentType)
	}
}
