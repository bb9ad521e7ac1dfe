package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"database/sql"
	"fmt"
	"marketplace/infras/otel"
	"marketplace/infras/postgres"
	"marketplace/internal/domains/auction/model"
	"marketplace/shared/constant"
	gDto "marketplace/shared/dto"
	"marketplace/shared/logger"
	gRepo "marketplace/shared/repository"

	"github.com/jmoiron/sqlx"
)

type Auction interface {
	Insert(ctx context.Context, mod model.Auction) error
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Auction, error)
	GetForUpdateTx(ctx context.Context, sqltx *sqlx.Tx, filter gDto.FilterGroup) (model.Auction, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.Auction, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	CompareAndSetTx(ctx context.Context, sqltx *sqlx.Tx, mod map[string]any, filter gDto.FilterGroup) (bool, error)
}

type Bid interface {
	InsertTx(ctx context.Context, sqltx *sqlx.Tx, mod model.Bid) error
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Bid, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.Bid, error)
	UpdateTx(ctx context.Context, sqltx *sqlx.Tx, mod map[string]any, filter gDto.FilterGroup) error
	CompareAndSetTx(ctx context.Context, sqltx *sqlx.Tx, mod map[string]any, filter gDto.FilterGroup) (bool, error)
	// MaxAmountTx returns the highest live bid of an auction; ok is false when there is none.
	MaxAmountTx(ctx context.Context, sqltx *sqlx.Tx, auctionID string) (amount float64, ok bool, err error)
}

type auctionRepositoryImpl struct {
	gRepo.Repository[model.Auction]
}

func NewAuction(db *postgres.Connection, otel otel.Otel) Auction {
	return &auctionRepositoryImpl{
		Repository: gRepo.NewRepository[model.Auction](model.EntityName, model.TableName, model.FieldID, db, otel),
	}
}

type bidRepositoryImpl struct {
	gRepo.Repository[model.Bid]
	otel otel.Otel
}

func NewBid(db *postgres.Connection, otel otel.Otel) Bid {
	return &bidRepositoryImpl{
		Repository: gRepo.NewRepository[model.Bid](model.BidEntityName, model.BidTableName, model.BidFieldID, db, otel),
		otel:       otel,
	}
}

var maxAmountQuery = fmt.Sprintf(
	"SELECT MAX(%s) FROM %s WHERE %s = $1 AND %s IN ($2, $3)",
	model.BidFieldAmount,
	model.BidTableName,
	model.BidFieldAuctionID,
	model.BidFieldStatus,
)

func (repo *bidRepositoryImpl) MaxAmountTx(ctx context.Context, sqltx *sqlx.Tx, auctionID string) (float64, bool, error) {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".auction_bid.MaxAmountTx")
	defer scope.End()

	scope.SetAttribute(constant.OtelQueryAttributeKey, maxAmountQuery)

	var highest sql.NullFloat64

	err := sqltx.GetContext(ctx, &highest, maxAmountQuery, auctionID, model.BidStatusPending, model.BidStatusAccepted)
	if err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return 0, false, fmt.Errorf("failed to get highest bid: %w", err)
	}

	return highest.Float64, highest.Valid, nil
}
