package http

import (
	"net/http"
	"path"
	"time"

	"github.com/MKhiriev/go-service-bootstrap/internal/logger"
)

// withLogging writes one access log line per request, except for paths
// matching an entry of IgnoredLogPaths.
func (h *Handler) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.ignoredForLogging(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		log := logger.FromRequest(r)

		start := time.Now()
		uri := r.RequestURI
		method := r.Method

		lw := &responseWriter{ResponseWriter: w}
		next.ServeHTTP(lw, r)

		log.Info().
			Str("uri", uri).
			Str("method", method).
			Int("status", lw.Status()).
			Dur("duration", time.Since(start)).
			Int("size", lw.size).
			Send()
	})
}

func (h *Handler) ignoredForLogging(requestPath string) bool {
	for _, pattern := range h.opts.IgnoredLogPaths {
		if pattern == requestPath {
			return true
		}
		if ok, err := path.Match(pattern, requestPath); err == nil && ok {
			return true
		}
	}
	return false
}
