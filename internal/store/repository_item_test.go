package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-service-bootstrap/internal/logger"
	"github.com/MKhiriev/go-service-bootstrap/migrations"
	"github.com/MKhiriev/go-service-bootstrap/models"
)

func newTestItemRepo(t *testing.T) (*itemRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})

	l := logger.Nop()
	repo := &itemRepository{
		DB: &DB{
			DB:                 db,
			dialect:            migrations.DialectPostgres,
			errorClassificator: NewPostgresErrorClassifier(),
			logger:             l,
		},
		logger: l,
	}
	return repo, mock
}

func pgError(code string) error {
	return &pgconn.PgError{Code: code}
}

func TestCreateItem_Success(t *testing.T) {
	repo, mock := newTestItemRepo(t)

	mock.ExpectQuery("INSERT INTO items").
		WithArgs("hammer", 12.5).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))

	created, err := repo.CreateItem(context.Background(), models.Item{Name: "hammer", Price: 12.5})
	require.NoError(t, err)
	assert.Equal(t, models.Item{ID: 1, Name: "hammer", Price: 12.5}, created)
}

func TestCreateItem_UniqueViolation(t *testing.T) {
	repo, mock := newTestItemRepo(t)

	mock.ExpectQuery("INSERT INTO items").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnError(pgError(pgerrcode.UniqueViolation))

	_, err := repo.CreateItem(context.Background(), models.Item{Name: "hammer"})
	assert.ErrorIs(t, err, ErrItemExists)
}

func TestCreateItem_UnexpectedDBError(t *testing.T) {
	repo, mock := newTestItemRepo(t)

	mock.ExpectQuery("INSERT INTO items").
		WillReturnError(errors.New("db network error"))

	_, err := repo.CreateItem(context.Background(), models.Item{Name: "hammer"})
	assert.ErrorIs(t, err, ErrExecutingStatement)
	assert.ErrorContains(t, err, "db network error")
}

func TestCreateItem_RetriesSerializationFailure(t *testing.T) {
	repo, mock := newTestItemRepo(t)

	mock.ExpectQuery("INSERT INTO items").
		WillReturnError(pgError(pgerrcode.SerializationFailure))
	mock.ExpectQuery("INSERT INTO items").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(9))

	created, err := repo.CreateItem(context.Background(), models.Item{Name: "saw"})
	require.NoError(t, err)
	assert.Equal(t, int64(9), created.ID)
}

func TestCreateItem_GivesUpAfterMaxAttempts(t *testing.T) {
	repo, mock := newTestItemRepo(t)

	for range maxAttempts {
		mock.ExpectQuery("INSERT INTO items").
			WillReturnError(pgError(pgerrcode.DeadlockDetected))
	}

	_, err := repo.CreateItem(context.Background(), models.Item{Name: "saw"})
	assert.ErrorIs(t, err, ErrExecutingStatement)
}

func TestListItems(t *testing.T) {
	repo, mock := newTestItemRepo(t)

	rows := sqlmock.NewRows([]string{"id", "name", "price"}).
		AddRow(1, "hammer", 12.5).
		AddRow(2, "saw", 0)
	mock.ExpectQuery(`SELECT id, name, price FROM items ORDER BY id LIMIT 2`).
		WillReturnRows(rows)

	items, err := repo.ListItems(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, []models.Item{{ID: 1, Name: "hammer", Price: 12.5}, {ID: 2, Name: "saw"}}, items)
}

func TestListItems_Empty(t *testing.T) {
	repo, mock := newTestItemRepo(t)

	mock.ExpectQuery("SELECT id, name, price FROM items").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "price"}))

	items, err := repo.ListItems(context.Background(), 0)
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestListItems_Errors(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(mock sqlmock.Sqlmock)
		wantErr error
	}{
		{
			name: "query fails",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT").WillReturnError(errors.New("boom"))
			},
			wantErr: ErrExecutingQuery,
		},
		{
			name: "scan fails",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT").WillReturnRows(
					sqlmock.NewRows([]string{"id", "name", "price"}).AddRow("not-a-number", "x", 1))
			},
			wantErr: ErrScanningRow,
		},
		{
			name: "iteration fails",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT").WillReturnRows(
					sqlmock.NewRows([]string{"id", "name", "price"}).
						AddRow(1, "x", 1).
						RowError(0, errors.New("connection reset")))
			},
			wantErr: ErrScanningRows,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newTestItemRepo(t)
			tt.setup(mock)

			_, err := repo.ListItems(context.Background(), 0)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestGetItem(t *testing.T) {
	repo, mock := newTestItemRepo(t)

	mock.ExpectQuery("SELECT id, name, price FROM items WHERE id = \\$1").
		WithArgs(int64(4)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "price"}).AddRow(4, "drill", 99.9))

	item, err := repo.GetItem(context.Background(), 4)
	require.NoError(t, err)
	assert.Equal(t, models.Item{ID: 4, Name: "drill", Price: 99.9}, item)
}

func TestGetItem_NotFound(t *testing.T) {
	repo, mock := newTestItemRepo(t)

	mock.ExpectQuery("SELECT").WithArgs(int64(4)).WillReturnError(sql.ErrNoRows)

	_, err := repo.GetItem(context.Background(), 4)
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestGetItem_DBError(t *testing.T) {
	repo, mock := newTestItemRepo(t)

	mock.ExpectQuery("SELECT").WillReturnError(pgError(pgerrcode.UndefinedTable))

	_, err := repo.GetItem(context.Background(), 4)
	assert.ErrorIs(t, err, ErrExecutingQuery)
	assert.NotErrorIs(t, err, ErrItemNotFound)
}

func TestDeleteItem(t *testing.T) {
	tests := []struct {
		name    string
		result  sql.Result
		execErr error
		wantErr error
	}{
		{name: "deleted", result: sqlmock.NewResult(0, 1)},
		{name: "missing", result: sqlmock.NewResult(0, 0), wantErr: ErrItemNotFound},
		{name: "exec fails", execErr: errors.New("boom"), wantErr: ErrExecutingStatement},
		{name: "rows affected fails", result: sqlmock.NewErrorResult(errors.New("unsupported")), wantErr: ErrExecutingStatement},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newTestItemRepo(t)

			exp := mock.ExpectExec("DELETE FROM items WHERE id = \\$1").WithArgs(int64(3))
			if tt.execErr != nil {
				exp.WillReturnError(tt.execErr)
			} else {
				exp.WillReturnResult(tt.result)
			}

			err := repo.DeleteItem(context.Background(), 3)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestSummary(t *testing.T) {
	repo, mock := newTestItemRepo(t)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\), COALESCE\\(SUM\\(price\\), 0\\) FROM items").
		WillReturnRows(sqlmock.NewRows([]string{"count", "sum"}).AddRow(3, 20.5))

	summary, err := repo.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.ItemSummary{Count: 3, TotalValue: 20.5}, summary)
}

func TestSummary_Error(t *testing.T) {
	repo, mock := newTestItemRepo(t)

	mock.ExpectQuery("SELECT COUNT").WillReturnError(errors.New("boom"))

	_, err := repo.Summary(context.Background())
	assert.ErrorIs(t, err, ErrScanningRow)
}

func TestWithRetry_StopsOnContextCancel(t *testing.T) {
	db := &DB{errorClassificator: NewPostgresErrorClassifier()}
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	err := db.withRetry(ctx, func() error {
		calls++
		cancel()
		return pgError(pgerrcode.ConnectionFailure)
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestWithRetry_NoClassifier(t *testing.T) {
	db := &DB{}
	calls := 0
	err := db.withRetry(context.Background(), func() error {
		calls++
		return pgError(pgerrcode.ConnectionFailure)
	})
	assert.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.False(t, db.isUniqueViolation(pgError(pgerrcode.UniqueViolation)))
}
