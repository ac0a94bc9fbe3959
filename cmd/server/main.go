package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/MKhiriev/go-service-bootstrap/internal/app"
	"github.com/MKhiriev/go-service-bootstrap/internal/config"
	"github.com/MKhiriev/go-service-bootstrap/internal/handler"
	"github.com/MKhiriev/go-service-bootstrap/internal/logger"
	"github.com/MKhiriev/go-service-bootstrap/internal/server"
	"github.com/MKhiriev/go-service-bootstrap/internal/store"
	"github.com/MKhiriev/go-service-bootstrap/internal/workers"
	"github.com/MKhiriev/go-service-bootstrap/models"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	_ = models.NewAppBuildInfo(buildVersion, buildDate, buildCommit).WriteBanner(os.Stdout)

	cfg, err := config.GetStructuredConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error getting configs: %v\n", err)
		os.Exit(1)
	}

	// validated by the config layer
	level, _ := logger.ParseLevel(cfg.App.LogLevel)
	log := logger.NewLogger("inventory-server", logger.WithLevel(level))
	log.Debug().Any("server", cfg.Server).Any("schema", cfg.Schema).Msg("received configs")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
	defer stop()

	storages, err := store.NewStorages(ctx, cfg.Store, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating storages")
	}
	defer storages.Close()

	handlers, err := handler.NewHandlers(cfg, app.NewInventory(storages.ItemRepository).Routes(), log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating handlers")
	}

	srv, err := server.NewServer(handlers, cfg.Server, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating server")
	}

	jobs := []workers.Worker{srv}
	if cfg.Schema.Watch && cfg.Schema.Path != "" {
		jobs = append(jobs, workers.NewSchemaWatcher(cfg.Schema.Path, cfg.Schema.WatchDebounce, handlers.HTTP, log))
	}

	if err = workers.NewWorkers(jobs...).Run(ctx); err != nil {
		log.Err(err).Msg("server stopped with error")
		stop()
		storages.Close()
		os.Exit(1)
	}
}
