// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package workers

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/MKhiriev/go-service-bootstrap/internal/logger"
)

// DefaultDebounce coalesces the burst of events a single save produces.
const DefaultDebounce = 500 * time.Millisecond

// SchemaWatcher reloads the route table whenever the OpenAPI document
// changes on disk. A failed reload is logged and the previous route table
// keeps serving.
type SchemaWatcher struct {
	path     string
	debounce time.Duration
	reloader Reloader
	logger   *logger.Logger

	// test hooks
	started  func()
	reloaded func(error)
}

// NewSchemaWatcher returns a watcher for the document at path. A debounce of
// zero or less uses [DefaultDebounce].
func NewSchemaWatcher(path string, debounce time.Duration, reloader Reloader, log *logger.Logger) *SchemaWatcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &SchemaWatcher{
		path:     path,
		debounce: debounce,
		reloader: reloader,
		logger:   &logger.Logger{Logger: log.With().Str("worker", "schema-watcher").Logger()},
	}
}

// Run watches until ctx is done.
func (w *SchemaWatcher) Run(ctx context.Context) error {
	target, err := filepath.Abs(w.path)
	if err != nil {
		return fmt.Errorf("error resolving schema path: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("error creating schema watcher: %w", err)
	}
	defer watcher.Close()

	// editors often save by writing a temp file and renaming it over the
	// original, so the directory is watched rather than the file
	if err = watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("error watching %s: %w", filepath.Dir(target), err)
	}
	w.logger.Info().Str("path", target).Dur("debounce", w.debounce).Msg("schema watcher started")
	if w.started != nil {
		w.started()
	}

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info().Msg("schema watcher stopped")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event, target) {
				continue
			}
			w.logger.Debug().Str("event", event.Op.String()).Str("file", event.Name).Msg("schema file event")
			timer.Reset(w.debounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Err(err).Msg("schema watcher error")

		case <-timer.C:
			w.reload(ctx)
		}
	}
}

func (w *SchemaWatcher) relevant(event fsnotify.Event, target string) bool {
	name, err := filepath.Abs(event.Name)
	if err != nil || name != target {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename)
}

func (w *SchemaWatcher) reload(ctx context.Context) {
	start := time.Now()
	err := w.reloader.Reload(ctx, nil)
	if err != nil {
		w.logger.Err(err).Dur("duration", time.Since(start)).Msg("schema reload failed, previous routes stay active")
	} else {
		w.logger.Info().Dur("duration", time.Since(start)).Msg("schema reloaded")
	}
	if w.reloaded != nil {
		w.reloaded(err)
	}
}
