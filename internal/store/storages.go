package store

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-service-bootstrap/internal/config"
	"github.com/MKhiriev/go-service-bootstrap/internal/logger"
)

// Storages groups the repositories of the sample service.
type Storages struct {
	ItemRepository ItemRepository

	db *DB
}

// NewStorages opens the store selected by cfg.Driver and applies the
// migrations when cfg.Migrate is set. The memory driver needs neither.
func NewStorages(ctx context.Context, cfg config.Store, log *logger.Logger) (*Storages, error) {
	var (
		db  *DB
		err error
	)

	switch cfg.Driver {
	case config.StoreDriverMemory, "":
		log.Info().Msg("using in-memory item store")
		return &Storages{ItemRepository: NewMemoryItemRepository()}, nil
	case config.StoreDriverPostgres:
		db, err = NewConnectPostgres(ctx, cfg, log)
	case config.StoreDriverSQLite:
		db, err = NewConnectSQLite(ctx, cfg, log)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}
	if err != nil {
		return nil, err
	}

	if cfg.Migrate {
		if err = db.Migrate(ctx); err != nil {
			db.Close()
			return nil, err
		}
		log.Info().Str("dialect", db.dialect).Msg("migrations applied")
	}

	return &Storages{
		ItemRepository: NewItemRepository(db, log),
		db:             db,
	}, nil
}

// Close releases the database connection, if any.
func (s *Storages) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
