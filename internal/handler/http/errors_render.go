package http

import (
	"net/http"

	"github.com/MKhiriev/go-service-bootstrap/internal/apperr"
	"github.com/MKhiriev/go-service-bootstrap/internal/utils"
	"github.com/MKhiriev/go-service-bootstrap/models"
)

// handle adapts an error-returning route handler to http.HandlerFunc. The
// writer is tracked so that an error returned after the handler has started
// the response is not rendered over it.
func (h *Handler) handle(fn models.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tw := &responseWriter{ResponseWriter: w}
		if err := fn(tw, r); err != nil {
			h.handleError(tw, r, err)
		}
	}
}

// handleError is the single exit for failed requests: every stage hands its
// error here instead of writing a response itself.
func (h *Handler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}
	h.render(w, r, h.translate(r, err))
}

// render writes e as a JSON error body. When the response has already
// started the error goes to the unhandled-error hook instead.
func (h *Handler) render(w http.ResponseWriter, r *http.Request, e *apperr.Error) {
	if responseStarted(w) {
		h.unhandledError(r, e)
		return
	}

	body := models.ErrorResponse{
		Message: e.VisibleMessage(),
		Code:    e.Code,
	}
	if e.Public {
		for _, d := range e.Details {
			body.Details = append(body.Details, models.ErrorDetail{Target: d.Target, Message: d.Message, Code: d.Code})
		}
	}
	if h.opts.Environment.IsDevelopment() {
		body.Stack = e.Stack()
	}

	if e.Status >= http.StatusInternalServerError {
		h.requestLogger(r).Error().Err(e).Str("code", e.Code).Int("status", e.Status).Msg("request failed")
	}

	if _, err := utils.WriteJSON(w, body, e.Status); err != nil {
		h.unhandledError(r, err)
	}
}

func (h *Handler) unhandledError(r *http.Request, err error) {
	if h.opts.OnUnhandledError != nil {
		h.opts.OnUnhandledError(r, err)
		return
	}
	h.requestLogger(r).Error().Err(err).Str("uri", r.RequestURI).Msg("error after response started")
}
