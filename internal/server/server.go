package server

import (
	"context"
	"fmt"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/MKhiriev/go-service-bootstrap/internal/config"
	"github.com/MKhiriev/go-service-bootstrap/internal/handler"
	"github.com/MKhiriev/go-service-bootstrap/internal/logger"
)

type server struct {
	httpServer *httpServer
	pipeline   Pipeline
	cfg        config.Server
	logger     *logger.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	bound  chan struct{}
}

// NewServer initializes the pipeline of handlers and prepares the HTTP
// server. Nothing listens until Run or RunServer is called.
func NewServer(handlers *handler.Handlers, cfg config.Server, logger *logger.Logger) (Server, error) {
	if handlers == nil || handlers.HTTP == nil {
		return nil, errNoServersAreCreated
	}
	return newServer(context.Background(), handlers.HTTP, cfg, logger)
}

func newServer(ctx context.Context, pipeline Pipeline, cfg config.Server, logger *logger.Logger) (*server, error) {
	logger.Info().Msg("creating new server...")

	entry, err := pipeline.Init(ctx)
	if err != nil {
		return nil, fmt.Errorf("error initializing http pipeline: %w", err)
	}

	return &server{
		httpServer: newHTTPServer(entry, cfg),
		pipeline:   pipeline,
		cfg:        cfg,
		logger:     logger,
		bound:      make(chan struct{}),
	}, nil
}

func (s *server) RunServer() {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGTERM,
		syscall.SIGINT,
		syscall.SIGQUIT,
	)
	defer stop()

	if err := s.Run(ctx); err != nil {
		s.logger.Err(err).Msg("error running server")
	}
}

func (s *server) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.mu.Lock()
	if s.cancel != nil {
		s.mu.Unlock()
		return errAlreadyRunning
	}
	s.cancel = cancel
	s.mu.Unlock()

	if err := s.httpServer.listen(); err != nil {
		return fmt.Errorf("error binding %s: %w", s.cfg.HTTPAddress, err)
	}
	close(s.bound)
	s.logger.Info().Str("address", s.httpServer.Addr()).Msg("Launching HTTP server")

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- s.httpServer.RunServer()
	}()

	select {
	case err := <-serveErr:
		return fmt.Errorf("http server stopped unexpectedly: %w", err)
	case <-ctx.Done():
	}

	return s.shutdown(serveErr)
}

func (s *server) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
}

// shutdown fails readiness, waits out the drain delay and drains in-flight
// requests.
func (s *server) shutdown(serveErr <-chan error) error {
	s.logger.Info().Msg("shutting down")
	s.pipeline.Shutdown()

	if s.cfg.DrainDelay > 0 {
		s.logger.Info().Dur("drain_delay", s.cfg.DrainDelay).Msg("waiting for load balancers to drain")
		time.Sleep(s.cfg.DrainDelay)
	}

	ctx := context.Background()
	if s.cfg.ShutdownTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.ShutdownTimeout)
		defer cancel()
	}

	err := s.httpServer.Shutdown(ctx)
	if serr := <-serveErr; serr != nil {
		s.logger.Err(serr).Msg("http server Serve")
	}
	if err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}

	s.logger.Info().Msg("server Shutdown gracefully")
	return nil
}
