package openapi

import "errors"

// ErrorKind classifies a validation failure.
type ErrorKind uint8

const (
	BadRequest ErrorKind = iota
	Unauthorized
	NotFound
	MethodNotAllowed
	NotAcceptable
	UnsupportedMediaType
)

var errorKindNames = [...]string{
	BadRequest:           "bad_request",
	Unauthorized:         "unauthorized",
	NotFound:             "not_found",
	MethodNotAllowed:     "method_not_allowed",
	NotAcceptable:        "not_acceptable",
	UnsupportedMediaType: "unsupported_media_type",
}

func (k ErrorKind) String() string {
	if int(k) < len(errorKindNames) {
		return errorKindNames[k]
	}
	return "unknown"
}

// Issue is one violated constraint. Path is a JSON-pointer-like location
// such as "/body/name" or "/query/limit".
type Issue struct {
	Path    string
	Message string
	Code    string
}

// Error is returned by [Validator.Validate].
type Error struct {
	Kind    ErrorKind
	Message string
	Issues  []Issue
	Err     error
}

func (e *Error) Error() string {
	return e.Kind.String() + ": " + e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// AsError returns the first validation error in err's chain.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

var (
	ErrNoSchema          = errors.New("no OpenAPI document")
	ErrNoTokenValidator  = errors.New("operation requires bearer authentication but no token validator is configured")
	ErrUnsupportedScheme = errors.New("unsupported security scheme")
)
