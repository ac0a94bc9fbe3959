// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package adapter provides a client for services built on the HTTP pipeline
// of this module.
//
// The client speaks the same wire conventions the pipeline enforces: when an
// encryption key is configured, request bodies are sealed into a payload
// envelope, GET requests carry their correlation token in the X-Rand-Num
// header, and envelope responses are opened and checked for the echoed
// token. Error bodies are decoded into [*APIError], which unwraps to the
// sentinel values defined in errors.go so callers can use [errors.Is].
package adapter

import "context"

// ServiceClient calls a service exposed through the HTTP pipeline.
type ServiceClient interface {
	// SetToken stores the bearer token attached to every subsequent request.
	// An empty token removes the Authorization header.
	SetToken(token string)

	// Token returns the bearer token currently stored, or an empty string.
	Token() string

	// Do sends a request and decodes the response payload into out. body
	// and out may be nil. When payload encryption is enabled the body is
	// sealed and the response is opened transparently.
	Do(ctx context.Context, method, path string, body, out any) error

	// Health calls the liveness probe.
	Health(ctx context.Context) error

	// Ready calls the readiness probe. A draining service yields
	// [ErrServiceUnavailable].
	Ready(ctx context.Context) error
}
