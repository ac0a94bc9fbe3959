// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import "net/http"

// responseWriter records the status code and body size of a response for the
// access log and metrics, without buffering it.
//
// WriteHeader is forwarded to the underlying writer exactly once; later
// calls are ignored, as the [http.ResponseWriter] contract requires.
type responseWriter struct {
	http.ResponseWriter

	status      int
	wroteHeader bool
	size        int
}

func (w *responseWriter) WriteHeader(statusCode int) {
	if w.wroteHeader {
		return
	}
	w.status = statusCode
	w.wroteHeader = true
	w.ResponseWriter.WriteHeader(statusCode)
}

// Write implicitly sends a 200 header first, like the standard writer.
func (w *responseWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	n, err := w.ResponseWriter.Write(b)
	w.size += n
	return n, err
}

// Written reports whether the response has started.
func (w *responseWriter) Written() bool {
	return w.wroteHeader
}

// Unwrap returns the wrapped writer. It lets [http.ResponseController] reach
// the connection.
func (w *responseWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// Status is the recorded status, 200 when the handler wrote nothing.
func (w *responseWriter) Status() int {
	if w.status == 0 {
		return http.StatusOK
	}
	return w.status
}

// writeTracker is implemented by writer decorators that know whether the
// response has started.
type writeTracker interface {
	Written() bool
}

type writerUnwrapper interface {
	Unwrap() http.ResponseWriter
}

// responseStarted walks the writer decorators and reports whether any of
// them has already started the response.
func responseStarted(w http.ResponseWriter) bool {
	for w != nil {
		if t, ok := w.(writeTracker); ok && t.Written() {
			return true
		}
		u, ok := w.(writerUnwrapper)
		if !ok {
			return false
		}
		w = u.Unwrap()
	}
	return false
}
