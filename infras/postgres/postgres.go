package postgres

//go:generate go run go.uber.org/mock/mockgen -source=./postgres.go -destination=./mocks/postgres_mock.go -package=mocks

//nolint:revive
import (
	"context"
	"fmt"
	"marketplace/config"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

const (
	driverName         = "postgres"
	maxIdleConnections = 10
	maxOpenConnections = 25
	connMaxIdleTime    = 5 * time.Minute
)

// Transactor runs fn inside one write transaction. fn's error rolls everything back.
type Transactor interface {
	WithTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error
}

// Connection pairs the replica used for read models with the primary that takes every write
// and every transaction.
type Connection struct {
	Read  *sqlx.DB
	Write *sqlx.DB
}

func (c *Connection) WithTx(ctx context.Context, fn func(tx *sqlx.Tx) error) (err error) {
	tx, err := c.Write.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()

			panic(p)
		}
	}()

	if err = fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Error().Err(rbErr).Msg("failed to rollback transaction")
		}

		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func New(cfg *config.Config) *Connection {
	pg := cfg.DB.Postgres
	wait := time.Duration(pg.RetryWaitTime) * time.Second

	return &Connection{
		Read:  Connect("read", pg.Read.URL(pg.Prefix+pg.Read.Name, nil), max(pg.MaxRetry, 1), wait),
		Write: Connect("write", pg.Write.URL(pg.Prefix+pg.Write.Name, nil), max(pg.MaxRetry, 1), wait),
	}
}

// Connect dials dsn up to attempts times, sleeping wait between tries. The process exits
// when every attempt fails.
func Connect(role, dsn string, attempts int, wait time.Duration) *sqlx.DB {
	var err error

	for attempt := 1; attempt <= attempts; attempt++ {
		var db *sqlx.DB

		db, err = sqlx.Connect(driverName, dsn)
		if err == nil {
			db.SetMaxIdleConns(maxIdleConnections)
			db.SetMaxOpenConns(maxOpenConnections)
			db.SetConnMaxIdleTime(connMaxIdleTime)

			log.Info().Str("role", role).Int("attempt", attempt).Msg("Connected to Postgres")

			return db
		}

		log.Warn().Err(err).Str("role", role).Int("attempt", attempt).Msg("Postgres not reachable yet")

		if attempt < attempts {
			time.Sleep(wait)
		}
	}

	log.Fatal().Err(err).Str("role", role).Msg("Giving up connecting to Postgres")

	return nil
}
