package models

import (
	"github.com/golang-jwt/jwt/v5"
)

// Claims is the verified claim set of a bearer token accepted by the JWT
// validator.
//
// It embeds [jwt.RegisteredClaims] for standard claim access (subject, expiry,
// issuer) and adds the optional "scope" claim used by OpenAPI security
// requirements.
type Claims struct {
	jwt.RegisteredClaims

	// Scope is the space-separated list of scopes granted to the token.
	Scope string `json:"scope,omitempty"`
}
