// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"time"
)

// StructuredConfig is the top-level configuration of the service. It is
// populated by merging values from environment variables, command-line
// flags, and an optional JSON or YAML file.
//
// Struct tags:
//   - envPrefix: prefix applied to all nested env tag lookups (caarlos0/env).
//   - env: direct environment variable name for scalar fields.
type StructuredConfig struct {
	// Server holds the listening address and the timeouts of the HTTP
	// server.
	Server Server `envPrefix:"SERVER_"`

	// App holds settings of the request pipeline itself.
	App App `envPrefix:"APP_"`

	// Schema holds the OpenAPI document settings.
	Schema Schema `envPrefix:"SCHEMA_"`

	// CORS holds the cross-origin policy. An empty policy allows every
	// origin.
	CORS CORS `envPrefix:"CORS_"`

	// Auth holds the bearer token verification settings.
	Auth Auth `envPrefix:"AUTH_"`

	// Store selects the item storage of the sample service.
	Store Store `envPrefix:"STORE_"`

	// FilePath is the optional path to a JSON or YAML configuration file.
	// Populated via the CONFIG environment variable or the -c / -config flag.
	FilePath string `env:"CONFIG"`
}

// Server holds network and timeout settings of the HTTP server.
type Server struct {
	// HTTPAddress is the TCP address the server listens on, in "host:port"
	// format.
	// Env: SERVER_ADDRESS
	HTTPAddress string `env:"ADDRESS"`

	// ReadTimeout bounds reading an entire request, body included.
	// Env: SERVER_READ_TIMEOUT
	ReadTimeout time.Duration `env:"READ_TIMEOUT"`

	// WriteTimeout bounds writing a response.
	// Env: SERVER_WRITE_TIMEOUT
	WriteTimeout time.Duration `env:"WRITE_TIMEOUT"`

	// IdleTimeout bounds keep-alive connections waiting for a request.
	// Env: SERVER_IDLE_TIMEOUT
	IdleTimeout time.Duration `env:"IDLE_TIMEOUT"`

	// ShutdownTimeout bounds draining in-flight requests on shutdown.
	// Env: SERVER_SHUTDOWN_TIMEOUT
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT"`

	// DrainDelay is how long the readiness probe fails before the listener
	// is closed, so load balancers stop routing new traffic first.
	// Env: SERVER_DRAIN_DELAY
	DrainDelay time.Duration `env:"DRAIN_DELAY"`
}

// App holds the request pipeline settings.
type App struct {
	// Environment is one of development, test, production.
	// Env: APP_ENVIRONMENT
	Environment string `env:"ENVIRONMENT"`

	// LogLevel is a zerolog level name.
	// Env: APP_LOG_LEVEL
	LogLevel string `env:"LOG_LEVEL"`

	// EncryptionKey enables the payload envelope outside development.
	// Env: APP_ENCRYPTION_KEY
	EncryptionKey string `env:"ENCRYPTION_KEY"`

	// RequestSizeLimit caps request bodies in bytes. Zero disables the cap.
	// Env: APP_REQUEST_SIZE_LIMIT
	RequestSizeLimit int64 `env:"REQUEST_SIZE_LIMIT"`

	// IgnoredLogPaths are excluded from the access log.
	// Env: APP_IGNORED_LOG_PATHS (comma separated)
	IgnoredLogPaths []string `env:"IGNORED_LOG_PATHS" envSeparator:","`

	// Metrics enables the /metrics endpoint.
	// Env: APP_METRICS
	Metrics bool `env:"METRICS"`
}

// Schema holds the OpenAPI document settings.
type Schema struct {
	// Path is the OpenAPI document, JSON or YAML.
	// Env: SCHEMA_PATH
	Path string `env:"PATH"`

	// DocsPath is where the Swagger UI and openapi.json are served.
	// Env: SCHEMA_DOCS_PATH
	DocsPath string `env:"DOCS_PATH"`

	// Watch reloads the route table when the document changes on disk.
	// Env: SCHEMA_WATCH
	Watch bool `env:"WATCH"`

	// WatchDebounce coalesces bursts of file events into one reload.
	// Env: SCHEMA_WATCH_DEBOUNCE
	WatchDebounce time.Duration `env:"WATCH_DEBOUNCE"`

	// DisableValidation turns request validation off. Path may then be
	// empty.
	// Env: SCHEMA_DISABLE_VALIDATION
	DisableValidation bool `env:"DISABLE_VALIDATION"`
}

// CORS is the cross-origin policy.
type CORS struct {
	// Env: CORS_ALLOWED_ORIGINS (comma separated)
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:","`

	// Env: CORS_ALLOWED_METHODS (comma separated)
	AllowedMethods []string `env:"ALLOWED_METHODS" envSeparator:","`

	// Env: CORS_ALLOWED_HEADERS (comma separated)
	AllowedHeaders []string `env:"ALLOWED_HEADERS" envSeparator:","`

	// Env: CORS_ALLOW_CREDENTIALS
	AllowCredentials bool `env:"ALLOW_CREDENTIALS"`

	// MaxAge is how long, in seconds, preflight results may be cached.
	// Env: CORS_MAX_AGE
	MaxAge int `env:"MAX_AGE"`
}

// IsZero reports whether no CORS setting was provided.
func (c CORS) IsZero() bool {
	return len(c.AllowedOrigins) == 0 &&
		len(c.AllowedMethods) == 0 &&
		len(c.AllowedHeaders) == 0 &&
		!c.AllowCredentials &&
		c.MaxAge == 0
}

// Auth holds the bearer token settings used by the JWT validator.
type Auth struct {
	// TokenSignKey is the HMAC key tokens are signed with.
	// Env: AUTH_TOKEN_SIGN_KEY
	TokenSignKey string `env:"TOKEN_SIGN_KEY"`

	// TokenIssuer, when set, must match the "iss" claim.
	// Env: AUTH_TOKEN_ISSUER
	TokenIssuer string `env:"TOKEN_ISSUER"`
}

// Store drivers accepted by [Store.Driver].
const (
	StoreDriverMemory   = "memory"
	StoreDriverPostgres = "postgres"
	StoreDriverSQLite   = "sqlite"
)

// Store holds the database settings.
type Store struct {
	// Driver is one of memory, postgres, sqlite.
	// Env: STORE_DRIVER
	Driver string `env:"DRIVER"`

	// DSN is the connection string, or the database file for sqlite.
	// Env: STORE_DSN
	DSN string `env:"DSN"`

	// MaxOpenConns caps the connection pool.
	// Env: STORE_MAX_OPEN_CONNS
	MaxOpenConns int `env:"MAX_OPEN_CONNS"`

	// Migrate applies the embedded migrations on startup.
	// Env: STORE_MIGRATE
	Migrate bool `env:"MIGRATE"`
}

// GetStructuredConfig loads, merges, and validates the configuration from
// all available sources. For every field the first non-zero value wins, in
// this order:
//  1. Environment variables
//  2. Command-line flags
//  3. Configuration file (path resolved from sources 1 and 2)
//  4. Defaults
func GetStructuredConfig() (*StructuredConfig, error) {
	return newConfigBuilder().
		withEnv().
		withFlags(osArgs()).
		withFile().
		build()
}
