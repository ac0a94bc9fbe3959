package apperr

import "net/http"

// Coded is implemented by application errors that carry their own code and
// status. The translation chain copies both into the canonical error.
// Implementations may also provide a Public() bool method; when absent, the
// error is public iff its status is below 500.
type Coded interface {
	error
	ErrorCode() string
	HTTPStatus() int
}

// Validation returns a 400 error.
func Validation(message string, details ...Detail) *Error {
	return New(KindValidation, message, WithDetails(details...))
}

// Unauthorized returns a 401 error wrapping cause.
func Unauthorized(message string, cause error) *Error {
	return New(KindAuth, message, WithCause(cause))
}

// NotFound returns the 404 endpoint-not-found error.
func NotFound(message string) *Error {
	if message == "" {
		message = EndpointNotFoundMessage
	}
	return New(KindEndpointNotFound, message)
}

// MethodNotAllowed returns a 405 error.
func MethodNotAllowed(message string) *Error {
	if message == "" {
		message = http.StatusText(http.StatusMethodNotAllowed)
	}
	return New(KindEndpointNotFound, message,
		WithStatus(http.StatusMethodNotAllowed), WithCode(CodeMethodNotAllowed))
}

// NotAcceptable returns a 406 error.
func NotAcceptable(message string) *Error {
	if message == "" {
		message = http.StatusText(http.StatusNotAcceptable)
	}
	return New(KindEndpointNotFound, message,
		WithStatus(http.StatusNotAcceptable), WithCode(CodeNotAcceptable))
}

// UnsupportedMediaType returns a 415 error.
func UnsupportedMediaType(message string) *Error {
	if message == "" {
		message = http.StatusText(http.StatusUnsupportedMediaType)
	}
	return New(KindEndpointNotFound, message,
		WithStatus(http.StatusUnsupportedMediaType), WithCode(CodeUnsupportedMediaType))
}

// Unexpected wraps err as a non-public 500 error.
func Unexpected(err error) *Error {
	return Wrap(KindUnexpected, err, "")
}

// Configuration returns a construction-time error.
func Configuration(message string) *Error {
	return New(KindConfiguration, message)
}

// IllegalState returns a programming-error error.
func IllegalState(message string) *Error {
	return New(KindIllegalState, message)
}
