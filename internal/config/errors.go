package config

import "errors"

// Validation errors returned by [StructuredConfig.validate]. Several may be
// joined into one error.
var (
	// ErrInvalidServerConfigs indicates an empty address or a negative
	// timeout.
	ErrInvalidServerConfigs = errors.New("invalid server configuration")
	// ErrInvalidAppConfigs indicates an unknown environment or log level, or
	// a negative request size limit.
	ErrInvalidAppConfigs = errors.New("invalid app configuration")
	// ErrInvalidSchemaConfigs indicates a missing schema path while
	// validation is enabled, or a docs path not starting with "/".
	ErrInvalidSchemaConfigs = errors.New("invalid schema configuration")
	// ErrInvalidCORSConfigs indicates a negative max age.
	ErrInvalidCORSConfigs = errors.New("invalid cors configuration")
	// ErrInvalidStoreConfigs indicates an unknown driver or a missing dsn.
	ErrInvalidStoreConfigs = errors.New("invalid store configuration")
)
