package config

import (
	"errors"
	"flag"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"
)

// NetAddress holds structured network address data for host and port.
// It implements the flag.Value interface.
type NetAddress struct {
	Host string
	Port int
}

// stringList is a comma separated flag.Value.
type stringList []string

func (l *stringList) String() string {
	if l == nil {
		return ""
	}
	return strings.Join(*l, ",")
}

func (l *stringList) Set(s string) error {
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			*l = append(*l, item)
		}
	}
	return nil
}

func osArgs() []string {
	return os.Args[1:]
}

// parseFlags parses all configuration flags from args.
//
// Flags:
//
//	-a server address in format [host]:[port]
//	-c/-config JSON or YAML file path with configs
//	-env runtime environment (development, test, production)
//	-log-level zerolog level
//	-encryption-key payload envelope key
//	-request-size-limit request body cap in bytes
//	-ignored-log-paths comma separated paths excluded from the access log
//	-metrics expose /metrics
//	-schema OpenAPI document path
//	-docs-path Swagger UI mount path
//	-watch-schema reload routes when the schema changes
//	-disable-validation skip request validation
//	-token-sign-key token signing key
//	-token-issuer token issuer name
//	-shutdown-timeout graceful shutdown timeout (e.g., "15s")
//	-drain-delay readiness drain delay before shutdown (e.g., "5s")
//	-store-driver memory, postgres or sqlite
//	-d database dsn
//	-migrate apply migrations on startup
func parseFlags(args []string) (*StructuredConfig, error) {
	fs := flag.NewFlagSet("server", flag.ContinueOnError)

	var (
		serverAddress     NetAddress
		configPath        string
		environment       string
		logLevel          string
		encryptionKey     string
		requestSizeLimit  int64
		ignoredLogPaths   stringList
		metrics           bool
		schemaPath        string
		docsPath          string
		watchSchema       bool
		disableValidation bool
		tokenSignKey      string
		tokenIssuer       string
		shutdownTimeout   time.Duration
		drainDelay        time.Duration
		storeDriver       string
		databaseDSN       string
		migrate           bool
	)

	fs.Var(&serverAddress, "a", "Net address host:port")
	fs.StringVar(&configPath, "c", "", "Config file path (JSON or YAML)")
	fs.StringVar(&configPath, "config", "", "Config file path (alias)")
	fs.StringVar(&environment, "env", "", "Runtime environment")
	fs.StringVar(&logLevel, "log-level", "", "Log level")
	fs.StringVar(&encryptionKey, "encryption-key", "", "Payload envelope key")
	fs.Int64Var(&requestSizeLimit, "request-size-limit", 0, "Request body limit in bytes")
	fs.Var(&ignoredLogPaths, "ignored-log-paths", "Comma separated paths excluded from the access log")
	fs.BoolVar(&metrics, "metrics", false, "Expose /metrics")
	fs.StringVar(&schemaPath, "schema", "", "OpenAPI document path")
	fs.StringVar(&docsPath, "docs-path", "", "API docs mount path")
	fs.BoolVar(&watchSchema, "watch-schema", false, "Reload routes when the schema changes")
	fs.BoolVar(&disableValidation, "disable-validation", false, "Skip request validation")
	fs.StringVar(&tokenSignKey, "token-sign-key", "", "Token signing key")
	fs.StringVar(&tokenIssuer, "token-issuer", "", "Token issuer")
	fs.DurationVar(&shutdownTimeout, "shutdown-timeout", 0, "Graceful shutdown timeout (e.g., 15s)")
	fs.DurationVar(&drainDelay, "drain-delay", 0, "Readiness drain delay (e.g., 5s)")
	fs.StringVar(&storeDriver, "store-driver", "", "Item store driver")
	fs.StringVar(&databaseDSN, "d", "", "Database DSN")
	fs.BoolVar(&migrate, "migrate", false, "Apply migrations on startup")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("error parsing flags: %w", err)
	}

	return &StructuredConfig{
		Server: Server{
			HTTPAddress:     serverAddress.String(),
			ShutdownTimeout: shutdownTimeout,
			DrainDelay:      drainDelay,
		},
		App: App{
			Environment:      environment,
			LogLevel:         logLevel,
			EncryptionKey:    encryptionKey,
			RequestSizeLimit: requestSizeLimit,
			IgnoredLogPaths:  ignoredLogPaths,
			Metrics:          metrics,
		},
		Schema: Schema{
			Path:              schemaPath,
			DocsPath:          docsPath,
			Watch:             watchSchema,
			DisableValidation: disableValidation,
		},
		Auth: Auth{
			TokenSignKey: tokenSignKey,
			TokenIssuer:  tokenIssuer,
		},
		Store: Store{
			Driver:  storeDriver,
			DSN:     databaseDSN,
			Migrate: migrate,
		},
		FilePath: configPath,
	}, nil
}

// String returns a canonical host:port string for a NetAddress.
// If neither Host nor Port are set, it returns an empty string.
func (a *NetAddress) String() string {
	if a.Host == "" && a.Port == 0 {
		return ""
	}

	return a.Host + ":" + strconv.Itoa(a.Port)
}

// Set parses the input string of form host:port and populates the NetAddress.
// It validates the port range, checks IP correctness unless host is "localhost",
// and returns an error if the format or values are invalid.
func (a *NetAddress) Set(s string) error {
	hostAndPort := strings.Split(s, ":")
	if len(hostAndPort) != 2 {
		return errors.New("need address in a form `host:port`")
	}

	host := hostAndPort[0]
	port, err := strconv.Atoi(hostAndPort[1])
	if err != nil {
		return err
	}

	if port < 1 {
		return errors.New("port number is a positive integer")
	}

	if host != "localhost" && host != "" {
		ip := net.ParseIP(hostAndPort[0])
		if ip == nil {
			return errors.New("incorrect IP-address provided")
		}
	}

	a.Host = host
	a.Port = port
	return nil
}
