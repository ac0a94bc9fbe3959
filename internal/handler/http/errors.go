// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import "errors"

// Sentinel errors raised by the pipeline stages. The translation chain maps
// them to canonical errors; callers can match them with [errors.Is].
var (
	// ErrInvalidGzipBody is raised when a request declares gzip encoding but
	// its body is not a gzip stream.
	ErrInvalidGzipBody = errors.New("invalid gzip request body")

	// ErrInvalidEnvelope is raised when an inbound payload envelope cannot be
	// decrypted with the configured key.
	ErrInvalidEnvelope = errors.New("invalid payload envelope")
)
