package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/MKhiriev/go-service-bootstrap/internal/logger"
	"github.com/MKhiriev/go-service-bootstrap/models"
)

// itemRepository is the SQL implementation of [ItemRepository]. Queries are
// built with squirrel in the placeholder format of the connection's dialect,
// so the same code serves PostgreSQL and SQLite.
type itemRepository struct {
	*DB
	logger *logger.Logger
}

// NewItemRepository constructs an [ItemRepository] backed by db.
func NewItemRepository(db *DB, logger *logger.Logger) ItemRepository {
	logger.Debug().Str("dialect", db.dialect).Msg("creating item repository")
	return &itemRepository{
		DB:     db,
		logger: logger,
	}
}

// CreateItem inserts item and returns it with the id assigned by the
// database. A unique violation on the name becomes [ErrItemExists].
func (r *itemRepository) CreateItem(ctx context.Context, item models.Item) (models.Item, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildInsertItemQuery(r.builder(), item)
	if err != nil {
		return models.Item{}, err
	}

	err = r.withRetry(ctx, func() error {
		return r.QueryRowContext(ctx, query, args...).Scan(&item.ID)
	})
	if err != nil {
		if r.isUniqueViolation(err) {
			return models.Item{}, ErrItemExists
		}
		log.Err(err).Str("func", "*itemRepository.CreateItem").Str("name", item.Name).Msg("error inserting item")
		return models.Item{}, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return item, nil
}

// ListItems returns items ordered by id, at most limit of them when limit
// is positive.
func (r *itemRepository) ListItems(ctx context.Context, limit int) ([]models.Item, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildListItemsQuery(r.builder(), limit)
	if err != nil {
		return nil, err
	}

	var items []models.Item
	err = r.withRetry(ctx, func() error {
		rows, err := r.QueryContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrExecutingQuery, err)
		}
		defer rows.Close()

		items = make([]models.Item, 0, max(limit, 16))
		for rows.Next() {
			var item models.Item
			if err = rows.Scan(&item.ID, &item.Name, &item.Price); err != nil {
				return fmt.Errorf("%w: %w", ErrScanningRow, err)
			}
			items = append(items, item)
		}
		if err = rows.Err(); err != nil {
			return fmt.Errorf("%w: %w", ErrScanningRows, err)
		}
		return nil
	})
	if err != nil {
		log.Err(err).Str("func", "*itemRepository.ListItems").Int("limit", limit).Msg("error listing items")
		return nil, err
	}

	return items, nil
}

func (r *itemRepository) GetItem(ctx context.Context, id int64) (models.Item, error) {
	query, args, err := buildGetItemQuery(r.builder(), id)
	if err != nil {
		return models.Item{}, err
	}

	var item models.Item
	err = r.withRetry(ctx, func() error {
		return r.QueryRowContext(ctx, query, args...).Scan(&item.ID, &item.Name, &item.Price)
	})
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return models.Item{}, ErrItemNotFound
	case err != nil:
		logger.FromContext(ctx).Err(err).Str("func", "*itemRepository.GetItem").Int64("item_id", id).Msg("error getting item")
		return models.Item{}, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	return item, nil
}

func (r *itemRepository) DeleteItem(ctx context.Context, id int64) error {
	query, args, err := buildDeleteItemQuery(r.builder(), id)
	if err != nil {
		return err
	}

	var affected int64
	err = r.withRetry(ctx, func() error {
		res, err := r.ExecContext(ctx, query, args...)
		if err != nil {
			return err
		}
		affected, err = res.RowsAffected()
		return err
	})
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*itemRepository.DeleteItem").Int64("item_id", id).Msg("error deleting item")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	if affected == 0 {
		return ErrItemNotFound
	}

	return nil
}

// Summary counts the items and sums their prices.
func (r *itemRepository) Summary(ctx context.Context) (models.ItemSummary, error) {
	query, args, err := buildSummaryQuery(r.builder())
	if err != nil {
		return models.ItemSummary{}, err
	}

	var summary models.ItemSummary
	err = r.withRetry(ctx, func() error {
		return r.QueryRowContext(ctx, query, args...).Scan(&summary.Count, &summary.TotalValue)
	})
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*itemRepository.Summary").Msg("error summarizing items")
		return models.ItemSummary{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	return summary, nil
}
