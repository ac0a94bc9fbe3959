// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps [time.Duration] so it can be written as "15s" in config
// files.
type Duration struct {
	time.Duration
}

// UnmarshalJSON accepts either a duration string or a number of
// nanoseconds.
func (d *Duration) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	return d.set(v)
}

// MarshalJSON writes the duration in its string form.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalYAML accepts either a duration string or a number of
// nanoseconds.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var v any
	if err := node.Decode(&v); err != nil {
		return err
	}
	return d.set(v)
}

func (d *Duration) set(v any) error {
	switch value := v.(type) {
	case float64:
		d.Duration = time.Duration(value)
	case int:
		d.Duration = time.Duration(value)
	case string:
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		d.Duration = parsed
	default:
		return errors.New("invalid duration")
	}
	return nil
}

// fileConfig mirrors [StructuredConfig] in the shape of a config file.
type fileConfig struct {
	Server struct {
		Address         string   `json:"address" yaml:"address"`
		ReadTimeout     Duration `json:"read_timeout" yaml:"read_timeout"`
		WriteTimeout    Duration `json:"write_timeout" yaml:"write_timeout"`
		IdleTimeout     Duration `json:"idle_timeout" yaml:"idle_timeout"`
		ShutdownTimeout Duration `json:"shutdown_timeout" yaml:"shutdown_timeout"`
		DrainDelay      Duration `json:"drain_delay" yaml:"drain_delay"`
	} `json:"server" yaml:"server"`

	App struct {
		Environment      string   `json:"environment" yaml:"environment"`
		LogLevel         string   `json:"log_level" yaml:"log_level"`
		EncryptionKey    string   `json:"encryption_key" yaml:"encryption_key"`
		RequestSizeLimit int64    `json:"request_size_limit" yaml:"request_size_limit"`
		IgnoredLogPaths  []string `json:"ignored_log_paths" yaml:"ignored_log_paths"`
		Metrics          bool     `json:"metrics" yaml:"metrics"`
	} `json:"app" yaml:"app"`

	Schema struct {
		Path              string   `json:"path" yaml:"path"`
		DocsPath          string   `json:"docs_path" yaml:"docs_path"`
		Watch             bool     `json:"watch" yaml:"watch"`
		WatchDebounce     Duration `json:"watch_debounce" yaml:"watch_debounce"`
		DisableValidation bool     `json:"disable_validation" yaml:"disable_validation"`
	} `json:"schema" yaml:"schema"`

	CORS struct {
		AllowedOrigins   []string `json:"allowed_origins" yaml:"allowed_origins"`
		AllowedMethods   []string `json:"allowed_methods" yaml:"allowed_methods"`
		AllowedHeaders   []string `json:"allowed_headers" yaml:"allowed_headers"`
		AllowCredentials bool     `json:"allow_credentials" yaml:"allow_credentials"`
		MaxAge           int      `json:"max_age" yaml:"max_age"`
	} `json:"cors" yaml:"cors"`

	Auth struct {
		TokenSignKey string `json:"token_sign_key" yaml:"token_sign_key"`
		TokenIssuer  string `json:"token_issuer" yaml:"token_issuer"`
	} `json:"auth" yaml:"auth"`

	Store struct {
		Driver       string `json:"driver" yaml:"driver"`
		DSN          string `json:"dsn" yaml:"dsn"`
		MaxOpenConns int    `json:"max_open_conns" yaml:"max_open_conns"`
		Migrate      bool   `json:"migrate" yaml:"migrate"`
	} `json:"store" yaml:"store"`
}

// parseFile reads path and decodes it as YAML when the extension is .yaml
// or .yml, and as JSON otherwise.
func parseFile(path string) (*StructuredConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var fc fileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &fc)
	default:
		err = json.Unmarshal(data, &fc)
	}
	if err != nil {
		return nil, fmt.Errorf("error decoding config file %s: %w", path, err)
	}

	return fc.toStructured(path), nil
}

func (fc *fileConfig) toStructured(path string) *StructuredConfig {
	return &StructuredConfig{
		Server: Server{
			HTTPAddress:     fc.Server.Address,
			ReadTimeout:     fc.Server.ReadTimeout.Duration,
			WriteTimeout:    fc.Server.WriteTimeout.Duration,
			IdleTimeout:     fc.Server.IdleTimeout.Duration,
			ShutdownTimeout: fc.Server.ShutdownTimeout.Duration,
			DrainDelay:      fc.Server.DrainDelay.Duration,
		},
		App: App{
			Environment:      fc.App.Environment,
			LogLevel:         fc.App.LogLevel,
			EncryptionKey:    fc.App.EncryptionKey,
			RequestSizeLimit: fc.App.RequestSizeLimit,
			IgnoredLogPaths:  fc.App.IgnoredLogPaths,
			Metrics:          fc.App.Metrics,
		},
		Schema: Schema{
			Path:              fc.Schema.Path,
			DocsPath:          fc.Schema.DocsPath,
			Watch:             fc.Schema.Watch,
			WatchDebounce:     fc.Schema.WatchDebounce.Duration,
			DisableValidation: fc.Schema.DisableValidation,
		},
		CORS: CORS{
			AllowedOrigins:   fc.CORS.AllowedOrigins,
			AllowedMethods:   fc.CORS.AllowedMethods,
			AllowedHeaders:   fc.CORS.AllowedHeaders,
			AllowCredentials: fc.CORS.AllowCredentials,
			MaxAge:           fc.CORS.MaxAge,
		},
		Auth: Auth{
			TokenSignKey: fc.Auth.TokenSignKey,
			TokenIssuer:  fc.Auth.TokenIssuer,
		},
		Store: Store{
			Driver:       fc.Store.Driver,
			DSN:          fc.Store.DSN,
			MaxOpenConns: fc.Store.MaxOpenConns,
			Migrate:      fc.Store.Migrate,
		},
		FilePath: path,
	}
}
