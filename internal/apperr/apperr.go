// Package apperr defines the canonical error shape shared by every stage of
// the request pipeline.
//
// All errors that reach the HTTP boundary are normalized into an [*Error]
// carrying an explicit [Kind], a stable code, an HTTP status, a visibility
// flag, optional per-field details, and an optional wrapped cause. Defaults
// for status, code, and visibility are resolved per kind at construction, so
// callers never inspect concrete error types to decide how to render them.
package apperr

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

// Kind is the discriminant of a canonical error.
type Kind uint8

const (
	// KindUnexpected is the catch-all for plain runtime failures.
	KindUnexpected Kind = iota
	// KindConfiguration is a construction-time failure. It never reaches the
	// HTTP pipeline.
	KindConfiguration
	// KindValidation is a malformed or schema-invalid request.
	KindValidation
	// KindAuth is a missing or rejected credential.
	KindAuth
	// KindEndpointNotFound covers the 404/405/406/415 family.
	KindEndpointNotFound
	// KindPayloadTooLarge is a request body over the configured size limit.
	KindPayloadTooLarge
	// KindIllegalState is a programming error, e.g. dispatching on a route
	// table that was never built.
	KindIllegalState
)

var kindNames = map[Kind]string{
	KindUnexpected:       "unexpected",
	KindConfiguration:    "configuration",
	KindValidation:       "validation",
	KindAuth:             "auth",
	KindEndpointNotFound: "endpoint_not_found",
	KindPayloadTooLarge:  "payload_too_large",
	KindIllegalState:     "illegal_state",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Stable error codes rendered in the "code" field of error bodies.
const (
	CodeUnexpected           = "error.unexpected"
	CodeConfiguration        = "error.configuration"
	CodeIllegalState         = "error.illegal-state"
	CodeRequestInvalid       = "error.request.invalid"
	CodeUnauthorized         = "error.auth.unauthorized"
	CodeEndpointNotFound     = "error.endpoint.not-found"
	CodeMethodNotAllowed     = "error.endpoint.method-not-allowed"
	CodeNotAcceptable        = "error.request.not-acceptable"
	CodeUnsupportedMediaType = "error.request.unsupported-media-type"
	CodeRequestTooLarge      = "error.request.too-large"
)

// GenericMessage replaces the message of every non-public error.
const GenericMessage = "An unexpected error has occurred"

// EndpointNotFoundMessage is the message of the 404 fallback.
const EndpointNotFoundMessage = "API endpoint not found"

type defaults struct {
	status int
	code   string
	public bool
}

var kindDefaults = map[Kind]defaults{
	KindUnexpected:       {status: 500, code: CodeUnexpected},
	KindConfiguration:    {status: 500, code: CodeConfiguration},
	KindIllegalState:     {status: 500, code: CodeIllegalState},
	KindValidation:       {status: 400, code: CodeRequestInvalid, public: true},
	KindAuth:             {status: 401, code: CodeUnauthorized, public: true},
	KindEndpointNotFound: {status: 404, code: CodeEndpointNotFound, public: true},
	KindPayloadTooLarge:  {status: 413, code: CodeRequestTooLarge, public: true},
}

// Detail is a single per-field issue attached to a canonical error.
type Detail struct {
	Target  string
	Message string
	Code    string
}

// Error is the canonical error.
type Error struct {
	Kind    Kind
	Message string
	Code    string
	Status  int
	Public  bool
	Details []Detail
	Cause   error

	stack []uintptr
}

// Option customizes an [*Error] at construction.
type Option func(*Error)

// WithCode overrides the kind's default code.
func WithCode(code string) Option {
	return func(e *Error) {
		if code != "" {
			e.Code = code
		}
	}
}

// WithStatus overrides the kind's default status. Values outside 100–599 are
// ignored.
func WithStatus(status int) Option {
	return func(e *Error) {
		if status >= 100 && status <= 599 {
			e.Status = status
		}
	}
}

// WithPublic overrides the kind's default visibility.
func WithPublic(public bool) Option {
	return func(e *Error) {
		e.Public = public
	}
}

// WithDetails appends per-field issues.
func WithDetails(details ...Detail) Option {
	return func(e *Error) {
		e.Details = append(e.Details, details...)
	}
}

// WithCause sets the wrapped cause.
func WithCause(err error) Option {
	return func(e *Error) {
		e.Cause = err
	}
}

// New returns a canonical error of the given kind with the kind's default
// status, code, and visibility, then applies opts.
func New(kind Kind, message string, opts ...Option) *Error {
	d, ok := kindDefaults[kind]
	if !ok {
		d = kindDefaults[KindUnexpected]
	}

	e := &Error{
		Kind:    kind,
		Message: message,
		Code:    d.code,
		Status:  d.status,
		Public:  d.public,
		stack:   callers(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Wrap is New with err as the cause. An empty message takes the cause's text.
func Wrap(kind Kind, err error, message string, opts ...Option) *Error {
	if message == "" && err != nil {
		message = err.Error()
	}
	return New(kind, message, append([]Option{WithCause(err)}, opts...)...)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil && e.Cause.Error() != e.Message {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

// Unwrap returns the wrapped cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// VisibleMessage returns the message that may be shown to clients.
func (e *Error) VisibleMessage() string {
	if e.Public {
		return e.Message
	}
	return GenericMessage
}

// Stack returns the call stack captured when the error was created, one
// "function\n\tfile:line" pair per frame.
func (e *Error) Stack() string {
	if len(e.stack) == 0 {
		return ""
	}

	var sb strings.Builder
	frames := runtime.CallersFrames(e.stack)
	for {
		frame, more := frames.Next()
		fmt.Fprintf(&sb, "%s\n\t%s:%d\n", frame.Function, frame.File, frame.Line)
		if !more {
			break
		}
	}
	return sb.String()
}

func callers() []uintptr {
	var pcs [32]uintptr
	// skip runtime.Callers, callers and New
	n := runtime.Callers(3, pcs[:])
	return pcs[:n]
}

// As returns the first canonical error in err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsKind reports whether err's chain contains a canonical error of kind.
func IsKind(err error, kind Kind) bool {
	e, ok := As(err)
	return ok && e.Kind == kind
}
