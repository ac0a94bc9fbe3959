package store

import (
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/MKhiriev/go-service-bootstrap/models"
)

const itemsTable = "items"

var itemColumns = []string{"id", "name", "price"}

func buildInsertItemQuery(b sq.StatementBuilderType, item models.Item) (string, []any, error) {
	query, args, err := b.Insert(itemsTable).
		Columns("name", "price").
		Values(item.Name, item.Price).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	return query, args, nil
}

func buildListItemsQuery(b sq.StatementBuilderType, limit int) (string, []any, error) {
	q := b.Select(itemColumns...).From(itemsTable).OrderBy("id")
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}

	query, args, err := q.ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	return query, args, nil
}

func buildGetItemQuery(b sq.StatementBuilderType, id int64) (string, []any, error) {
	query, args, err := b.Select(itemColumns...).
		From(itemsTable).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	return query, args, nil
}

func buildDeleteItemQuery(b sq.StatementBuilderType, id int64) (string, []any, error) {
	query, args, err := b.Delete(itemsTable).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	return query, args, nil
}

func buildSummaryQuery(b sq.StatementBuilderType) (string, []any, error) {
	query, args, err := b.Select("COUNT(*)", "COALESCE(SUM(price), 0)").
		From(itemsTable).
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	return query, args, nil
}
