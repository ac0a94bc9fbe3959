package http

import (
	"compress/gzip"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/MKhiriev/go-service-bootstrap/internal/apperr"
	"github.com/MKhiriev/go-service-bootstrap/internal/auth"
	"github.com/MKhiriev/go-service-bootstrap/internal/logger"
	"github.com/MKhiriev/go-service-bootstrap/internal/openapi"
)

// translationRule converts err into a canonical error, or returns nil when
// the rule does not apply.
type translationRule func(err error) *apperr.Error

// translationRules are tried in order; the first match wins. Errors no rule
// matches become unexpected errors.
var translationRules = []translationRule{
	fromValidationError,
	fromAuthError,
	fromBodyError,
	fromCodedError,
}

// jwtErrors are the golang-jwt sentinels that mean a rejected credential.
var jwtErrors = []error{
	jwt.ErrTokenMalformed,
	jwt.ErrTokenUnverifiable,
	jwt.ErrTokenSignatureInvalid,
	jwt.ErrTokenRequiredClaimMissing,
	jwt.ErrTokenInvalidAudience,
	jwt.ErrTokenExpired,
	jwt.ErrTokenUsedBeforeIssued,
	jwt.ErrTokenInvalidIssuer,
	jwt.ErrTokenInvalidSubject,
	jwt.ErrTokenNotValidYet,
	jwt.ErrTokenInvalidId,
	jwt.ErrTokenInvalidClaims,
}

// translate normalizes err. Canonical errors pass through unchanged; any
// other error is logged once with its cause chain (outside the test
// environment) and run through the rules.
func (h *Handler) translate(r *http.Request, err error) *apperr.Error {
	if e, ok := apperr.As(err); ok {
		return e
	}

	if !h.opts.Environment.IsTest() {
		h.requestLogger(r).Error().
			Err(err).
			Strs("causes", causeChain(err)).
			Str("type", fmt.Sprintf("%T", err)).
			Msg("translating error")
	}

	for _, rule := range translationRules {
		if e := rule(err); e != nil {
			return e
		}
	}
	return apperr.Unexpected(err)
}

func fromValidationError(err error) *apperr.Error {
	vErr, ok := openapi.AsError(err)
	if !ok {
		return nil
	}

	var e *apperr.Error
	switch vErr.Kind {
	case openapi.BadRequest:
		details := make([]apperr.Detail, 0, len(vErr.Issues))
		for _, issue := range vErr.Issues {
			details = append(details, apperr.Detail{Target: issue.Path, Message: issue.Message, Code: issue.Code})
		}
		e = apperr.Validation(vErr.Message, details...)
	case openapi.Unauthorized:
		return apperr.Unauthorized(vErr.Message, vErr)
	case openapi.NotFound:
		e = apperr.NotFound("")
	case openapi.MethodNotAllowed:
		e = apperr.MethodNotAllowed(vErr.Message)
	case openapi.NotAcceptable:
		e = apperr.NotAcceptable(vErr.Message)
	case openapi.UnsupportedMediaType:
		e = apperr.UnsupportedMediaType(vErr.Message)
	default:
		return nil
	}

	e.Cause = vErr
	return e
}

func fromAuthError(err error) *apperr.Error {
	if errors.Is(err, auth.ErrUnauthorized) {
		return apperr.Unauthorized(http.StatusText(http.StatusUnauthorized), err)
	}
	for _, target := range jwtErrors {
		if errors.Is(err, target) {
			return apperr.Unauthorized(http.StatusText(http.StatusUnauthorized), err)
		}
	}
	return nil
}

func fromBodyError(err error) *apperr.Error {
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return apperr.Wrap(apperr.KindValidation, err,
			fmt.Sprintf("%s at position %d", syntaxErr.Error(), syntaxErr.Offset))
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return apperr.Wrap(apperr.KindValidation, err,
			fmt.Sprintf("%s at position %d", typeErr.Error(), typeErr.Offset))
	}

	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		return apperr.Wrap(apperr.KindPayloadTooLarge, err,
			fmt.Sprintf("request body exceeds %d bytes", maxBytesErr.Limit))
	}

	if errors.Is(err, ErrInvalidGzipBody) || errors.Is(err, gzip.ErrHeader) || errors.Is(err, gzip.ErrChecksum) {
		return apperr.Wrap(apperr.KindValidation, err, ErrInvalidGzipBody.Error())
	}

	return nil
}

// publicError is the optional visibility method of [apperr.Coded] errors.
type publicError interface {
	Public() bool
}

func fromCodedError(err error) *apperr.Error {
	var coded apperr.Coded
	if !errors.As(err, &coded) {
		return nil
	}

	status := coded.HTTPStatus()
	public := status < http.StatusInternalServerError
	if p, ok := coded.(publicError); ok {
		public = p.Public()
	}

	return apperr.Wrap(kindForStatus(status), err, coded.Error(),
		apperr.WithStatus(status),
		apperr.WithCode(coded.ErrorCode()),
		apperr.WithPublic(public),
	)
}

func kindForStatus(status int) apperr.Kind {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return apperr.KindValidation
	case http.StatusUnauthorized, http.StatusForbidden:
		return apperr.KindAuth
	case http.StatusNotFound, http.StatusMethodNotAllowed, http.StatusNotAcceptable, http.StatusUnsupportedMediaType:
		return apperr.KindEndpointNotFound
	case http.StatusRequestEntityTooLarge:
		return apperr.KindPayloadTooLarge
	default:
		return apperr.KindUnexpected
	}
}

// causeChain lists the messages of err and everything it wraps, depth first.
func causeChain(err error) []string {
	var chain []string
	var walk func(error)
	walk = func(e error) {
		if e == nil {
			return
		}
		chain = append(chain, e.Error())
		switch u := e.(type) {
		case interface{ Unwrap() []error }:
			for _, inner := range u.Unwrap() {
				walk(inner)
			}
		case interface{ Unwrap() error }:
			walk(u.Unwrap())
		}
	}
	walk(err)
	return chain
}

// requestLogger is the request-scoped logger, or the handler's logger when
// the trace-id stage has not run yet.
func (h *Handler) requestLogger(r *http.Request) *logger.Logger {
	l := logger.FromRequest(r)
	if l.GetLevel() == zerolog.Disabled {
		return h.logger
	}
	return l
}
