package http

import (
	"bytes"
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
)

// bodyStages returns the body decoding stages in order. A caller-supplied
// BodyDecoder replaces the size limit, gzip and JSON stages; envelope
// decryption always runs last.
func (h *Handler) bodyStages() []func(http.Handler) http.Handler {
	var stages []func(http.Handler) http.Handler

	if h.opts.BodyDecoder != nil {
		stages = append(stages, h.opts.BodyDecoder)
	} else {
		stages = append(stages, h.withGZip)
		if h.opts.RequestSizeLimit > 0 {
			stages = append(stages, middleware.RequestSize(h.opts.RequestSizeLimit))
		}
		stages = append(stages, h.withJSONBody)
	}

	return append(stages, h.withEnvelopeDecryption)
}

// withJSONBody buffers JSON request bodies and rejects malformed ones before
// any handler sees them. Non-JSON bodies are left untouched.
func (h *Handler) withJSONBody(next http.Handler) http.Handler {
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

		if len(bytes.TrimSpace(data)) > 0 {
			var probe json.RawMessage
			if err = json.Unmarshal(data, &probe); err != nil {
				h.handleError(w, r, err)
				return
			}
		}

		replaceBody(r, data)
		next.ServeHTTP(w, r)
	})
}

func hasBody(r *http.Request) bool {
	return r.Body != nil && r.Body != http.NoBody && r.ContentLength != 0
}

func isJSONMediaType(contentType string) bool {
	if contentType == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}

func readBody(r *http.Request) ([]byte, error) {
	defer r.Body.Close()
	return io.ReadAll(r.Body)
}

func replaceBody(r *http.Request, data []byte) {
	r.Body = io.NopCloser(bytes.NewReader(data))
	r.ContentLength = int64(len(data))
	if len(data) == 0 {
		r.Body = http.NoBody
	}
}
