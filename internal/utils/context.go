// Package utils provides general-purpose helper utilities
// used across different parts of the application.
// Includes tools for working with context, type-safe keys,
// HTTP response writing, HTTP client initialization, and identifier
// generation.
package utils

import (
	"context"
	"sync"

	"github.com/MKhiriev/go-service-bootstrap/models"
)

// contextKey is a private type for context keys.
// Using a dedicated type instead of a plain string prevents key collisions
// with other packages that may use string-based keys in the context.
type contextKey string

// String returns the string representation of the context key.
// Implements the fmt.Stringer interface.
func (c contextKey) String() string {
	return string(c)
}

// RandNumCtxKey is the key under which the inbound envelope stage stashes
// the correlation token of the current request.
var RandNumCtxKey = contextKey("randNum")

// ClaimsCtxKey is the key of the per-request claims slot filled by bearer
// token authentication during schema validation.
var ClaimsCtxKey = contextKey("claims")

// WithRandNum returns a copy of ctx carrying the correlation token.
func WithRandNum(ctx context.Context, randNum any) context.Context {
	return context.WithValue(ctx, RandNumCtxKey, randNum)
}

// GetRandNumFromContext retrieves the correlation token stashed for the
// current request.
//
// Returns ok == false when no token was stashed (the inbound payload was not
// an envelope, or payload encryption is disabled).
func GetRandNumFromContext(ctx context.Context) (any, bool) {
	v := ctx.Value(RandNumCtxKey)
	if v == nil {
		return nil, false
	}
	return v, true
}

// claimsSlot is installed before authentication runs so that an
// authentication callback, which cannot replace the request context, can
// still hand verified claims to downstream handlers.
type claimsSlot struct {
	mu     sync.Mutex
	claims *models.Claims
}

// WithClaimsSlot returns a copy of ctx with an empty claims slot.
func WithClaimsSlot(ctx context.Context) context.Context {
	return context.WithValue(ctx, ClaimsCtxKey, &claimsSlot{})
}

// SetClaims stores claims in the slot installed by [WithClaimsSlot]. It
// reports false when ctx has no slot.
func SetClaims(ctx context.Context, claims models.Claims) bool {
	slot, ok := ctx.Value(ClaimsCtxKey).(*claimsSlot)
	if !ok {
		return false
	}
	slot.mu.Lock()
	defer slot.mu.Unlock()
	slot.claims = &claims
	return true
}

// GetClaimsFromContext returns the verified bearer token claims of the
// current request, if any.
func GetClaimsFromContext(ctx context.Context) (models.Claims, bool) {
	slot, ok := ctx.Value(ClaimsCtxKey).(*claimsSlot)
	if !ok {
		return models.Claims{}, false
	}
	slot.mu.Lock()
	defer slot.mu.Unlock()
	if slot.claims == nil {
		return models.Claims{}, false
	}
	return *slot.claims, true
}
