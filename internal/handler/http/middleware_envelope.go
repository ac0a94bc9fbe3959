package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/MKhiriev/go-service-bootstrap/internal/apperr"
	"github.com/MKhiriev/go-service-bootstrap/internal/utils"
	"github.com/MKhiriev/go-service-bootstrap/models"
)

const randNumHeader = models.RandNumHeader

// withEnvelopeDecryption unwraps request bodies of the form {"data": "..."}.
// The decrypted actualData becomes the request body and randNum is stashed
// in the request context. Bodies without a top-level data field pass
// through.
func (h *Handler) withEnvelopeDecryption(next http.Handler) http.Handler {
	if !h.envelopeEnabled() {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !hasBody(r) || !isJSONMediaType(r.Header.Get("Content-Type")) {
			next.ServeHTTP(w, r)
			return
		}

		data, err := readBody(r)
		if err != nil {
			h.handleError(w, r, err)
			return
		}

		var fields map[string]json.RawMessage
		if json.Unmarshal(data, &fields) != nil {
			replaceBody(r, data)
			next.ServeHTTP(w, r)
			return
		}

		raw, ok := fields["data"]
		if !ok {
			replaceBody(r, data)
			next.ServeHTTP(w, r)
			return
		}

		var ciphertext string
		if err = json.Unmarshal(raw, &ciphertext); err != nil {
			h.handleError(w, r, err)
			return
		}

		var plain models.EnvelopeRequest
		if err = h.codec.OpenInto(ciphertext, h.opts.EncryptionKey, &plain); err != nil {
			h.requestLogger(r).Warn().Err(err).Msg("payload envelope rejected")
			h.handleError(w, r, apperr.Wrap(apperr.KindValidation,
				fmt.Errorf("%w: %w", ErrInvalidEnvelope, err), ErrInvalidEnvelope.Error()))
			return
		}

		replaceBody(r, plain.ActualData)
		ctx := r.Context()
		if plain.RandNum != nil {
			ctx = utils.WithRandNum(ctx, plain.RandNum)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// withEnvelopeEncryption wraps successful JSON responses into an envelope.
// Error responses and non-JSON bodies are sent as they are.
func (h *Handler) withEnvelopeEncryption(next http.Handler) http.Handler {
	if !h.envelopeEnabled() {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ew := &envelopeWriter{ResponseWriter: w}
		next.ServeHTTP(ew, r)
		h.sealResponse(w, r, ew)
	})
}

func (h *Handler) sealResponse(w http.ResponseWriter, r *http.Request, ew *envelopeWriter) {
	if !ew.wroteHeader {
		return
	}

	body := ew.buf.Bytes()
	if ew.status >= http.StatusBadRequest || !isJSONContainer(body) {
		w.WriteHeader(ew.status)
		_, _ = w.Write(body)
		return
	}

	ciphertext, err := h.codec.Encrypt(models.EnvelopeResponse{
		ResponseData: json.RawMessage(body),
		RandNum:      correlationToken(r),
	}, h.opts.EncryptionKey)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	w.Header().Del("Content-Length")
	if _, err = utils.WriteJSON(w, models.Envelope{Data: ciphertext}, ew.status); err != nil {
		h.unhandledError(r, err)
	}
}

// correlationToken returns the token echoed in the response envelope: the
// X-Rand-Num header for GET requests, the value stashed by decryption
// otherwise, 0 when neither exists.
func correlationToken(r *http.Request) any {
	if r.Method == http.MethodGet {
		header := r.Header.Get(randNumHeader)
		if header == "" {
			return 0
		}
		if n, err := strconv.ParseInt(header, 10, 64); err == nil {
			return n
		}
		return header
	}

	if v, ok := utils.GetRandNumFromContext(r.Context()); ok {
		return v
	}
	return 0
}

func isJSONContainer(body []byte) bool {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || (trimmed[0] != '{' && trimmed[0] != '[') {
		return false
	}
	return json.Valid(trimmed)
}

// envelopeWriter holds the response back until the handler is done so that
// it can be replaced by its envelope.
type envelopeWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
	buf         bytes.Buffer
}

func (w *envelopeWriter) WriteHeader(statusCode int) {
	if w.wroteHeader {
		return
	}
	w.status = statusCode
	w.wroteHeader = true
}

func (w *envelopeWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	return w.buf.Write(b)
}

// Written reports whether the handler has produced a response.
func (w *envelopeWriter) Written() bool {
	return w.wroteHeader
}

// Unwrap returns the wrapped writer.
func (w *envelopeWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
