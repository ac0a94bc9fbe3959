package models

import "net/http"

// HandlerFunc is the signature of caller route handlers. A non-nil error is
// handed to the error translation chain; handlers must not render errors
// themselves.
type HandlerFunc func(w http.ResponseWriter, r *http.Request) error

// Route is a single entry of the caller-supplied route table.
type Route struct {
	// Method is the HTTP method the route answers to (e.g. http.MethodGet).
	Method string

	// Pattern is a chi route pattern, e.g. "/users/{id}".
	Pattern string

	// Handler serves the route.
	Handler HandlerFunc

	// Middlewares are applied to this route only, after schema validation.
	Middlewares []func(http.Handler) http.Handler
}
