package http

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/MKhiriev/go-service-bootstrap/internal/apperr"
)

// withRecover turns a panic in a caller route into an error handed to the
// translation chain. [http.ErrAbortHandler] is re-raised so that net/http
// can abort the connection.
func (h *Handler) withRecover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tw := &responseWriter{ResponseWriter: w}
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
				panic(rec)
			}

			h.handleError(tw, r, panicError(rec))
		}()

		next.ServeHTTP(tw, r)
	})
}

func panicError(rec any) error {
	err, ok := rec.(error)
	if !ok {
		err = fmt.Errorf("%v", rec)
	}
	if _, canonical := apperr.As(err); canonical {
		return err
	}
	return apperr.Wrap(apperr.KindUnexpected, err, "panic: "+err.Error())
}
