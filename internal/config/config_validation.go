// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/MKhiriev/go-service-bootstrap/internal/logger"
	"github.com/MKhiriev/go-service-bootstrap/models"
)

// validate checks that the final merged [StructuredConfig] can start the
// server. All violations are reported together.
func (cfg *StructuredConfig) validate() error {
	var errs []error

	s := cfg.Server
	if s.HTTPAddress == "" {
		errs = append(errs, fmt.Errorf("%w: empty address", ErrInvalidServerConfigs))
	}
	if s.ReadTimeout < 0 || s.WriteTimeout < 0 || s.IdleTimeout < 0 || s.ShutdownTimeout < 0 || s.DrainDelay < 0 {
		errs = append(errs, fmt.Errorf("%w: negative timeout", ErrInvalidServerConfigs))
	}

	if !models.Environment(cfg.App.Environment).IsValid() {
		errs = append(errs, fmt.Errorf("%w: unknown environment %q", ErrInvalidAppConfigs, cfg.App.Environment))
	}
	if _, err := logger.ParseLevel(cfg.App.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("%w: unknown log level %q", ErrInvalidAppConfigs, cfg.App.LogLevel))
	}
	if cfg.App.RequestSizeLimit < 0 {
		errs = append(errs, fmt.Errorf("%w: negative request size limit", ErrInvalidAppConfigs))
	}

	if cfg.Schema.Path == "" && !cfg.Schema.DisableValidation {
		errs = append(errs, fmt.Errorf("%w: schema path is required unless validation is disabled", ErrInvalidSchemaConfigs))
	}
	if !strings.HasPrefix(cfg.Schema.DocsPath, "/") {
		errs = append(errs, fmt.Errorf("%w: docs path must start with /", ErrInvalidSchemaConfigs))
	}
	if cfg.Schema.WatchDebounce < 0 {
		errs = append(errs, fmt.Errorf("%w: negative watch debounce", ErrInvalidSchemaConfigs))
	}

	if cfg.CORS.MaxAge < 0 {
		errs = append(errs, fmt.Errorf("%w: negative max age", ErrInvalidCORSConfigs))
	}

	switch cfg.Store.Driver {
	case StoreDriverMemory:
	case StoreDriverPostgres, StoreDriverSQLite:
		if cfg.Store.DSN == "" {
			errs = append(errs, fmt.Errorf("%w: %s requires a dsn", ErrInvalidStoreConfigs, cfg.Store.Driver))
		}
	default:
		errs = append(errs, fmt.Errorf("%w: unknown driver %q", ErrInvalidStoreConfigs, cfg.Store.Driver))
	}
	if cfg.Store.MaxOpenConns < 0 {
		errs = append(errs, fmt.Errorf("%w: negative max open conns", ErrInvalidStoreConfigs))
	}

	return errors.Join(errs...)
}
