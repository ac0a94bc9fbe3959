package models

// ErrorResponse is the wire format of every error produced by the pipeline.
type ErrorResponse struct {
	// Message is the canonical message for public errors, or a fixed generic
	// string otherwise.
	Message string `json:"message"`

	// Code is a stable, machine-readable error code, e.g. "error.request.invalid".
	Code string `json:"code"`

	// Details lists per-field issues. Omitted when empty.
	Details []ErrorDetail `json:"details,omitempty"`

	// Stack is the captured call stack, only present in development.
	Stack string `json:"stack,omitempty"`
}

// ErrorDetail describes one issue of a failed request.
type ErrorDetail struct {
	// Target is the location of the issue, e.g. "/body/name".
	Target string `json:"target"`

	Message string `json:"message"`

	Code string `json:"code"`
}
