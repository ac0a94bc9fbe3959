//go:generate mockgen -source=interfaces.go -destination=../mock/item_repository_mock.go -package=mock

package store

import (
	"context"

	"github.com/MKhiriev/go-service-bootstrap/models"
)

// ItemRepository persists inventory items. Names are unique without regard
// to case.
type ItemRepository interface {
	// CreateItem stores item and returns it with the assigned id.
	CreateItem(ctx context.Context, item models.Item) (models.Item, error)
	// ListItems returns items ordered by id. A positive limit caps the result.
	ListItems(ctx context.Context, limit int) ([]models.Item, error)
	GetItem(ctx context.Context, id int64) (models.Item, error)
	DeleteItem(ctx context.Context, id int64) error
	Summary(ctx context.Context) (models.ItemSummary, error)
}

// ErrorClassificator decides whether a failed database call may be retried.
type ErrorClassificator interface {
	Classify(err error) ErrorClassification
	// IsUniqueViolation reports whether err is a unique constraint failure.
	IsUniqueViolation(err error) bool
}
