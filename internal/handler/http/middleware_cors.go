package http

import (
	"net/http"

	"github.com/go-chi/cors"
)

// withCORS answers preflight requests and sets the CORS response headers.
// Without a configured policy every origin is allowed for simple methods.
func (h *Handler) withCORS() func(http.Handler) http.Handler {
	if h.opts.CORS == nil {
		return cors.Handler(cors.Options{})
	}
	return cors.Handler(*h.opts.CORS)
}
