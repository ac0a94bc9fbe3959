package http

import (
	"io"
	"net/http"
)

// healthCheck is the liveness probe.
func (h *Handler) healthCheck(w http.ResponseWriter, _ *http.Request) {
	writeText(w, http.StatusOK, "OK")
}

// readyCheck is the readiness probe. It fails before Init and after
// Shutdown.
func (h *Handler) readyCheck(w http.ResponseWriter, _ *http.Request) {
	if !h.readiness.Ready() {
		writeText(w, http.StatusServiceUnavailable, http.StatusText(http.StatusServiceUnavailable))
		return
	}
	writeText(w, http.StatusOK, "OK")
}

// root answers load balancers probing "/".
func (h *Handler) root(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}
