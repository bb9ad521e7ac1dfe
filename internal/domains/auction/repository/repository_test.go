package repository_test

import (
	"context"
	"errors"
	"marketplace/infras/otel/mocks"
	"marketplace/infras/postgres"
	"marketplace/internal/domains/auction/repository"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var maxQuery = regexp.QuoteMeta("SELECT MAX(amount) FROM auction_bids WHERE auction_id = $1 AND status IN ($2, $3)")

func newBidRepo(t *testing.T) (repository.Bid, *postgres.Connection, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	t.Cleanup(func() { _ = db.Close() })

	sqlxDB := sqlx.NewDb(db, "postgres")
	conn := &postgres.Connection{Read: sqlxDB, Write: sqlxDB}

	return repository.NewBid(conn, mocks.NewOtel()), conn, mock
}

func TestMaxAmountTx(t *testing.T) {
	t.Run("highest live bid", func(t *testing.T) {
		repo, conn, mock := newBidRepo(t)

		mock.ExpectBegin()
		mock.ExpectQuery(maxQuery).
			WithArgs("a-1", "pending", "accepted").
			WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(150.0))
		mock.ExpectCommit()

		var (
			amount float64
			ok     bool
		)

		err := conn.WithTx(context.Background(), func(tx *sqlx.Tx) error {
			var err error

			amount, ok, err = repo.MaxAmountTx(context.Background(), tx, "a-1")

			return err
		})

		require.NoError(t, err)
		assert.True(t, ok)
		assert.InDelta(t, 150.0, amount, 1e-9)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no bids yet", func(t *testing.T) {
		repo, conn, mock := newBidRepo(t)

		mock.ExpectBegin()
		mock.ExpectQuery(maxQuery).
			WithArgs("a-2", "pending", "accepted").
			WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(nil))
		mock.ExpectCommit()

		var ok bool

		err := conn.WithTx(context.Background(), func(tx *sqlx.Tx) error {
			var err error

			_, ok, err = repo.MaxAmountTx(context.Background(), tx, "a-2")

			return err
		})

		require.NoError(t, err)
		assert.False(t, ok)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("query failure rolls back", func(t *testing.T) {
		repo, conn, mock := newBidRepo(t)

		mock.ExpectBegin()
		mock.ExpectQuery(maxQuery).WillReturnError(errors.New("relation does not exist"))
		mock.ExpectRollback()

		err := conn.WithTx(context.Background(), func(tx *sqlx.Tx) error {
			_, _, err := repo.MaxAmountTx(context.Background(), tx, "a-3")

			return err
		})

		require.Error(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
