package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-service-bootstrap/internal/utils"
	"github.com/MKhiriev/go-service-bootstrap/models"
)

// TestE2E drives the pipeline over a real connection with the resty client,
// including transparent gzip on responses.
func TestE2E(t *testing.T) {
	h, entry := newTestPipeline(t)

	srv := httptest.NewServer(entry)
	t.Cleanup(srv.Close)

	client := utils.NewHTTPClient()
	client.SetBaseURL(srv.URL)

	t.Run("create item", func(t *testing.T) {
		var created map[string]any
		var apiErr models.ErrorResponse

		resp, err := client.R().
			SetBody(map[string]any{"name": "saw", "price": 9.99}).
			SetResult(&created).
			SetError(&apiErr).
			Post("/items")
		require.NoError(t, err)

		assert.Equal(t, http.StatusCreated, resp.StatusCode())
		assert.Equal(t, "saw", created["name"])
		assert.Equal(t, float64(1), created["id"])
		assert.NotEmpty(t, resp.Header().Get(traceIDHeader))
	})

	t.Run("validation error", func(t *testing.T) {
		var apiErr models.ErrorResponse

		resp, err := client.R().
			SetBody(map[string]any{"price": 1}).
			SetError(&apiErr).
			Post("/items")
		require.NoError(t, err)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode())
		assert.Equal(t, "error.request.invalid", apiErr.Code)
		require.NotEmpty(t, apiErr.Details)
		assert.Equal(t, "/body/name", apiErr.Details[0].Target)
	})

	t.Run("not found", func(t *testing.T) {
		var apiErr models.ErrorResponse

		resp, err := client.R().SetError(&apiErr).Get("/invalid/resource")
		require.NoError(t, err)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode())
		assert.Equal(t, models.ErrorResponse{Message: "API endpoint not found", Code: "error.endpoint.not-found"}, apiErr)
	})

	t.Run("compressed response", func(t *testing.T) {
		// the transport asks for gzip and decompresses transparently
		resp, err := client.R().Get("/items")
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, resp.StatusCode())
		assert.JSONEq(t, `[{"id":1,"name":"hammer"}]`, resp.String())
		assert.True(t, resp.RawResponse.Uncompressed)
	})

	t.Run("readiness after shutdown", func(t *testing.T) {
		resp, err := client.R().Get("/ready-check")
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode())

		h.Shutdown()

		resp, err = client.R().Get("/ready-check")
		require.NoError(t, err)
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode())
		assert.Equal(t, "Service Unavailable", resp.String())
	})
}
