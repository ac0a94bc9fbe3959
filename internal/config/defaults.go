package config

import "time"

// Defaults fill every field no source has set.
const (
	DefaultHTTPAddress     = "localhost:8080"
	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 15 * time.Second
	DefaultEnvironment     = "production"
	DefaultLogLevel        = "info"
	DefaultDocsPath        = "/api-docs"
	DefaultWatchDebounce   = 500 * time.Millisecond
	DefaultStoreDriver     = StoreDriverMemory
	DefaultMaxOpenConns    = 10
)

func defaultConfig() *StructuredConfig {
	return &StructuredConfig{
		Server: Server{
			HTTPAddress:     DefaultHTTPAddress,
			ReadTimeout:     DefaultReadTimeout,
			WriteTimeout:    DefaultWriteTimeout,
			IdleTimeout:     DefaultIdleTimeout,
			ShutdownTimeout: DefaultShutdownTimeout,
		},
		App: App{
			Environment:     DefaultEnvironment,
			LogLevel:        DefaultLogLevel,
			IgnoredLogPaths: []string{"/health-check", "/ready-check", "/metrics"},
		},
		Schema: Schema{
			DocsPath:      DefaultDocsPath,
			WatchDebounce: DefaultWatchDebounce,
		},
		Store: Store{
			Driver:       DefaultStoreDriver,
			MaxOpenConns: DefaultMaxOpenConns,
		},
	}
}
