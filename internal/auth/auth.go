// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package auth verifies the bearer tokens presented to operations protected
// by an HTTP bearer security scheme.
//
// Tokens are HMAC-SHA256 signed JWTs. A token is accepted when its signature
// verifies against the configured sign key, its issuer matches, and it has
// not expired. Verified claims are returned as [models.Claims].
package auth

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/MKhiriev/go-service-bootstrap/models"
)

// Sentinel errors. Every error returned by [JWTValidator.Validate] wraps
// ErrUnauthorized so callers can match the whole family with [errors.Is].
var (
	ErrUnauthorized               = errors.New("unauthorized")
	ErrEmptyAuthorizationHeader   = errors.New("empty `Authorization` header")
	ErrInvalidAuthorizationHeader = errors.New("invalid `Authorization` header")
	ErrEmptyToken                 = errors.New("empty token")
	ErrMissingScope               = errors.New("token lacks required scope")
	ErrInvalidValidatorParams     = errors.New("invalid params for token validator")
)

const bearerScheme = "Bearer"

// JWTValidator validates HMAC-SHA256 signed JWTs.
type JWTValidator struct {
	signKey []byte
	issuer  string
}

// NewJWTValidator returns a validator for tokens signed with signKey. An
// empty issuer disables the issuer check.
func NewJWTValidator(signKey, issuer string) (*JWTValidator, error) {
	if signKey == "" {
		return nil, ErrInvalidValidatorParams
	}
	return &JWTValidator{signKey: []byte(signKey), issuer: issuer}, nil
}

// Validate parses tokenString and returns its claims.
func (v *JWTValidator) Validate(_ context.Context, tokenString string) (models.Claims, error) {
	if tokenString == "" {
		return models.Claims{}, fmt.Errorf("%w: %w", ErrUnauthorized, ErrEmptyToken)
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	var claims models.Claims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(*jwt.Token) (any, error) {
		return v.signKey, nil
	}, opts...)
	if err != nil {
		return models.Claims{}, fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}

	return claims, nil
}

// IssueToken signs a token for subject that is valid for ttl. Scopes are
// stored space-separated in the "scope" claim.
func IssueToken(signKey, issuer, subject string, ttl time.Duration, scopes ...string) (string, error) {
	if signKey == "" || ttl <= 0 {
		return "", ErrInvalidValidatorParams
	}

	now := time.Now()
	claims := models.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Scope: strings.Join(scopes, " "),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(signKey))
	if err != nil {
		return "", fmt.Errorf("error occurred during signing JWT token: %w", err)
	}
	return signed, nil
}

// ParseBearerToken extracts the token from an "Authorization: Bearer <token>"
// header value. The scheme is matched case-insensitively.
func ParseBearerToken(authorizationHeader string) (string, error) {
	header := strings.TrimSpace(authorizationHeader)
	if header == "" {
		return "", fmt.Errorf("%w: %w", ErrUnauthorized, ErrEmptyAuthorizationHeader)
	}

	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, bearerScheme) {
		return "", fmt.Errorf("%w: %w", ErrUnauthorized, ErrInvalidAuthorizationHeader)
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return "", fmt.Errorf("%w: %w", ErrUnauthorized, ErrEmptyToken)
	}
	return token, nil
}

// RequireScopes reports an error unless claims grant every scope in required.
func RequireScopes(claims models.Claims, required []string) error {
	granted := strings.Fields(claims.Scope)
	for _, scope := range required {
		if !slices.Contains(granted, scope) {
			return fmt.Errorf("%w: %w %q", ErrUnauthorized, ErrMissingScope, scope)
		}
	}
	return nil
}
