package models

import "encoding/json"

// RandNumHeader carries the correlation token of GET requests, which have no
// body to put it in.
const RandNumHeader = "X-Rand-Num"

// Envelope is the wire object that replaces a plaintext request or response
// body when payload encryption is enabled.
type Envelope struct {
	// Data is the opaque ciphertext produced by the envelope codec.
	Data string `json:"data"`
}

// EnvelopeRequest is the plaintext carried inside an inbound [Envelope].
type EnvelopeRequest struct {
	// ActualData replaces the request body once decrypted.
	ActualData json.RawMessage `json:"actualData"`

	// RandNum is the caller-supplied correlation token (number or string).
	RandNum any `json:"randNum"`
}

// EnvelopeResponse is the plaintext carried inside an outbound [Envelope].
type EnvelopeResponse struct {
	// ResponseData is the original response payload.
	ResponseData json.RawMessage `json:"responseData"`

	// RandNum echoes the correlation token of the originating request.
	RandNum any `json:"randNum"`
}
