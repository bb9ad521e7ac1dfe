package repository_test

import (
	"context"
	"marketplace/infras/otel/mocks"
	"marketplace/infras/postgres"
	"marketplace/shared"
	"marketplace/shared/dto"
	"marketplace/shared/failure"
	"marketplace/shared/repository"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type row struct {
	ID     string  `db:"id"`
	Status string  `db:"status"`
	Price  float64 `db:"price"`
}

func newRepository(t *testing.T) (repository.Repository[row], sqlmock.Sqlmock, *postgres.Connection) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	t.Cleanup(func() { db.Close() })

	sqlxDB := sqlx.NewDb(db, "postgres")
	conn := &postgres.Connection{Read: sqlxDB, Write: sqlxDB}

	return repository.NewRepository[row]("booking", "bookings", "id", conn, mocks.NewOtel()), mock, conn
}

func TestCompareAndSet(t *testing.T) {
	tests := []struct {
		name     string
		affected int64
		want     bool
	}{
		{name: "row still in expected state", affected: 1, want: true},
		{name: "row already moved on", affected: 0, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, _ := newRepository(t)

			mock.ExpectExec(`UPDATE bookings SET status = \$1 +WHERE \(bookings\.id = \$2 AND bookings\.status IN \(\$3, \$4\)`).
				WithArgs("completed", "b-1", "accepted", "in_progress").
				WillReturnResult(sqlmock.NewResult(0, tt.affected))

			ok, err := repo.CompareAndSet(
				context.Background(),
				map[string]any{"status": "completed"},
				shared.FilterByIDAndStatus("b-1", "id", "status", "bookings", "accepted", "in_progress"),
			)

			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUpdate_SetAndFilterSameColumn(t *testing.T) {
	repo, mock, _ := newRepository(t)

	mock.ExpectExec(`UPDATE bookings SET price = \$1, status = \$2 +WHERE \(bookings\.status = \$3\)`).
		WithArgs(10.0, "cancelled", "pending").
		WillReturnResult(sqlmock.NewResult(0, 3))

	err := repo.Update(
		context.Background(),
		map[string]any{"status": "cancelled", "price": 10.0},
		shared.FilterBy("status", "pending", "bookings"),
	)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdate_RequiresFilter(t *testing.T) {
	repo, _, _ := newRepository(t)

	err := repo.Update(context.Background(), map[string]any{"status": "cancelled"}, dto.FilterGroup{})

	assert.Error(t, err)
}

func TestGetForUpdateTx(t *testing.T) {
	repo, mock, conn := newRepository(t)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectPrepare(`SELECT bookings\.id, bookings\.status, bookings\.price FROM bookings .*WHERE \(bookings\.id = \$1\) +FOR UPDATE OF bookings`).
		ExpectQuery().
		WithArgs("b-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "status", "price"}).AddRow("b-1", "accepted", 300.0))
	mock.ExpectCommit()

	var got row

	err := conn.WithTx(ctx, func(tx *sqlx.Tx) error {
		var err error

		got, err = repo.GetForUpdateTx(ctx, tx, shared.FilterByID("b-1", "id", "bookings"))

		return err
	})

	require.NoError(t, err)
	assert.Equal(t, row{ID: "b-1", Status: "accepted", Price: 300}, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGet_NotFoundReturnsZero(t *testing.T) {
	repo, mock, _ := newRepository(t)

	mock.ExpectPrepare(`SELECT .* FROM bookings`).
		ExpectQuery().
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id", "status", "price"}))

	got, err := repo.Get(context.Background(), shared.FilterByID("missing", "id", "bookings"))

	require.NoError(t, err)
	assert.Equal(t, row{}, got)
}

func TestGetAll_IgnoresUnknownSortColumn(t *testing.T) {
	repo, mock, _ := newRepository(t)

	mock.ExpectPrepare(`^SELECT bookings\.id, bookings\.status, bookings\.price FROM bookings +LIMIT \$1 OFFSET \$2$`).
		ExpectQuery().
		WithArgs(10, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id", "status", "price"}).AddRow("b-1", "pending", 10.0))

	got, err := repo.GetAll(context.Background(), dto.QueryParams{Page: 1, Limit: 10, SortBy: "nope", SortDir: "ASC"}, dto.FilterGroup{})

	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTx_RollsBackOnError(t *testing.T) {
	_, mock, conn := newRepository(t)

	mock.ExpectBegin()
	mock.ExpectRollback()

	err := conn.WithTx(context.Background(), func(*sqlx.Tx) error {
		return assert.AnError
	})

	assert.ErrorIs(t, err, assert.AnError)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsert_ConstraintViolations(t *testing.T) {
	tests := []struct {
		name     string
		dbErr    error
		wantKind failure.Kind
	}{
		{name: "unique violation", dbErr: &pq.Error{Code: "23505"}, wantKind: failure.KindConflict},
		{name: "foreign key violation", dbErr: &pq.Error{Code: "23503"}, wantKind: failure.KindValidation},
		{name: "check violation", dbErr: &pq.Error{Code: "23514", Constraint: "payments_amount_check"}, wantKind: failure.KindValidation},
		{name: "other database error", dbErr: &pq.Error{Code: "57014"}, wantKind: failure.KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, _ := newRepository(t)

			mock.ExpectExec(`INSERT INTO bookings`).WillReturnError(tt.dbErr)

			err := repo.Insert(context.Background(), row{ID: "b-1", Status: "pending", Price: 300})

			require.Error(t, err)
			assert.Equal(t, tt.wantKind, failure.GetKind(err))
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
