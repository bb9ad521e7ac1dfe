package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=./mocks/service_mock.go -package=mocks

import (
	"context"
	"fmt"
	"marketplace/config"
	"marketplace/infras/otel"
	"marketplace/infras/postgres"
	"marketplace/internal/domains/auction/model"
	"marketplace/internal/domains/auction/model/dto"
	"marketplace/internal/domains/auction/repository"
	bookingModel "marketplace/internal/domains/booking/model"
	bookingDto "marketplace/internal/domains/booking/model/dto"
	userModel "marketplace/internal/domains/user/model"
	userRepository "marketplace/internal/domains/user/repository"
	"marketplace/internal/relay"
	"marketplace/shared"
	"marketplace/shared/cache"
	"marketplace/shared/commission"
	"marketplace/shared/constant"
	gDto "marketplace/shared/dto"
	"marketplace/shared/failure"
	"marketplace/shared/timezone"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

type Auction interface {
	Create(ctx context.Context, req dto.CreateAuctionRequest) (dto.AuctionResponse, error)
	PlaceBid(ctx context.Context, auctionID string, req dto.PlaceBidRequest) (dto.BidResponse, error)
	ListBids(ctx context.Context, auctionID string) ([]dto.BidResponse, error)
	AcceptBid(ctx context.Context, bidID string) (dto.AcceptBidResponse, error)
	Cancel(ctx context.Context, auctionID string) error
	Get(ctx context.Context, id string) (dto.AuctionResponse, error)
	GetAll(ctx context.Context, params gDto.QueryParams, status, category string) (dto.GetAuctionsResponse, error)
}

// BookingCreator opens the service order for a winning bid inside the caller's transaction.
type BookingCreator interface {
	CreateFromBidTx(ctx context.Context, sqltx *sqlx.Tx, req bookingDto.FromBid) (string, error)
}

type serviceImpl struct {
	repo     repository.Auction
	bidRepo  repository.Bid
	userRepo userRepository.User
	bookings BookingCreator
	tx       postgres.Transactor
	relay    relay.Publisher
	cfg      *config.Config
	cache    cache.RedisCache
	otel     otel.Otel
}

func New(
	repo repository.Auction,
	bidRepo repository.Bid,
	userRepo userRepository.User,
	bookings BookingCreator,
	tx postgres.Transactor,
	relay relay.Publisher,
	cfg *config.Config,
	cache cache.RedisCache,
	otel otel.Otel,
) Auction {
	return &serviceImpl{
		repo:     repo,
		bidRepo:  bidRepo,
		userRepo: userRepo,
		bookings: bookings,
		tx:       tx,
		relay:    relay,
		cfg:      cfg,
		cache:    cache,
		otel:     otel,
	}
}

func (s *serviceImpl) Create(ctx context.Context, req dto.CreateAuctionRequest) (res dto.AuctionResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".auction.Create")
	defer scope.End()
	defer scope.TraceIfError(err)

	creatorID, _ := shared.Caller(ctx)

	if !req.EndDate.After(timezone.Now()) {
		return res, failure.Validation("end_date must be in the future") //nolint:wrapcheck
	}

	auction := req.ToModel(creatorID)

	if err = s.repo.Insert(ctx, auction); err != nil {
		log.Error().Err(err).Msg("failed to insert auction")

		return res, fmt.Errorf("failed to create auction: %w", err)
	}

	s.relay.Publish(ctx, model.TableName, auction.ID, relay.OpInsert, nil)

	res.FromModel(auction)

	return res, nil
}

// PlaceBid re-checks every bidding rule while holding the auction row lock, so two bids
// on one auction are ordered and neither can undercut the other.
func (s *serviceImpl) PlaceBid(ctx context.Context, auctionID string, req dto.PlaceBidRequest) (res dto.BidResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".auction.PlaceBid")
	defer scope.End()
	defer scope.TraceIfError(err)

	bidderID, _ := shared.Caller(ctx)

	if req.Amount <= 0 {
		return res, failure.Validation("amount must be greater than 0") //nolint:wrapcheck
	}

	var bid model.Bid

	err = s.tx.WithTx(ctx, func(sqltx *sqlx.Tx) error {
		auction, err := s.repo.GetForUpdateTx(ctx, sqltx, shared.FilterByID(auctionID, model.FieldID, model.TableName))
		if err != nil {
			return fmt.Errorf("failed to lock auction: %w", err)
		}

		if auction.ID == constant.Empty {
			return failure.NotFound("auction not found") //nolint:wrapcheck
		}

		now := timezone.Now()

		if !auction.OpenAt(now) {
			return failure.AlreadyClosed("auction is no longer accepting bids") //nolint:wrapcheck
		}

		if auction.CreatorID == bidderID {
			return failure.NotAuthorized("you cannot bid on your own auction") //nolint:wrapcheck
		}

		if err = s.checkEligibility(ctx, sqltx, bidderID); err != nil {
			return err
		}

		highest, hasBids, err := s.bidRepo.MaxAmountTx(ctx, sqltx, auctionID)
		if err != nil {
			return fmt.Errorf("failed to get highest bid: %w", err)
		}

		amount := commission.Round(req.Amount)

		if hasBids && amount <= highest {
			return failure.BidTooLow(fmt.Sprintf("bid must be greater than %.2f", highest)) //nolint:wrapcheck
		}

		if !hasBids && amount < auction.InitialPrice {
			return failure.BidTooLow(fmt.Sprintf("bid must be at least %.2f", auction.InitialPrice)) //nolint:wrapcheck
		}

		fee, total := commission.BidFee(amount, s.cfg.Auction.ServiceFeeRate)

		bid = model.Bid{
			ID:          uuid.NewString(),
			AuctionID:   auctionID,
			BidderID:    bidderID,
			Amount:      amount,
			ServiceFee:  fee,
			TotalAmount: total,
			Status:      model.BidStatusPending,
			CreatedAt:   now,
		}

		if err = s.bidRepo.InsertTx(ctx, sqltx, bid); err != nil {
			return fmt.Errorf("failed to insert bid: %w", err)
		}

		return nil
	})
	if err != nil {
		log.Error().Err(err).Str("auction_id", auctionID).Str("bidder_id", bidderID).Float64("amount", req.Amount).Msg("bid rejected")

		return res, err
	}

	s.relay.Publish(ctx, model.BidTableName, bid.ID, relay.OpInsert, bid)

	res.FromModel(bid)

	return res, nil
}

func (s *serviceImpl) checkEligibility(ctx context.Context, sqltx *sqlx.Tx, bidderID string) error {
	bidder, err := s.userRepo.GetTx(ctx, sqltx, shared.FilterByID(bidderID, userModel.FieldID, userModel.TableName))
	if err != nil {
		return fmt.Errorf("failed to get bidder: %w", err)
	}

	if bidder.ID == constant.Empty {
		return failure.NotFound("bidder not found") //nolint:wrapcheck
	}

	if bidder.IsProfessional() && bidder.AverageRating < s.cfg.Auction.MinBidderRating {
		return failure.IneligibleBidder(fmt.Sprintf("a rating of at least %.1f is required to bid", s.cfg.Auction.MinBidderRating)) //nolint:wrapcheck
	}

	return nil
}

func (s *serviceImpl) ListBids(ctx context.Context, auctionID string) (res []dto.BidResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".auction.ListBids")
	defer scope.End()
	defer scope.TraceIfError(err)

	if _, err = s.load(ctx, auctionID); err != nil {
		return nil, err
	}

	bids, err := s.bidRepo.GetAll(
		ctx,
		gDto.QueryParams{SortBy: model.BidFieldAmount, SortDir: gDto.SortDirAsc},
		shared.FilterBy(model.BidFieldAuctionID, auctionID, model.BidTableName),
	)
	if err != nil {
		log.Error().Err(err).Str("auction_id", auctionID).Msg("failed to list bids")

		return nil, fmt.Errorf("failed to list bids: %w", err)
	}

	return dto.FromBids(bids), nil
}

// AcceptBid closes the auction on one bid. The auction row's status update decides the race:
// a second acceptance finds it no longer active and rolls back.
func (s *serviceImpl) AcceptBid(ctx context.Context, bidID string) (res dto.AcceptBidResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".auction.AcceptBid")
	defer scope.End()
	defer scope.TraceIfError(err)

	caller, _ := shared.Caller(ctx)

	bid, err := s.bidRepo.Get(ctx, shared.FilterByID(bidID, model.BidFieldID, model.BidTableName))
	if err != nil {
		log.Error().Err(err).Str("bid_id", bidID).Msg("failed to get bid")

		return res, fmt.Errorf("failed to get bid: %w", err)
	}

	if bid.ID == constant.Empty {
		return res, failure.NotFound("bid not found") //nolint:wrapcheck
	}

	auction, err := s.load(ctx, bid.AuctionID)
	if err != nil {
		return res, err
	}

	if auction.CreatorID != caller {
		return res, failure.NotAuthorized("only the auction creator can accept a bid") //nolint:wrapcheck
	}

	if auction.Status != model.StatusActive {
		return res, failure.AlreadyClosed("auction is already closed") //nolint:wrapcheck
	}

	if bid.Status != model.BidStatusPending {
		return res, failure.Conflict("bid is no longer pending") //nolint:wrapcheck
	}

	res.AuctionID = auction.ID
	res.BidID = bid.ID

	err = s.tx.WithTx(ctx, func(sqltx *sqlx.Tx) error {
		won, err := s.repo.CompareAndSetTx(
			ctx,
			sqltx,
			shared.Touch(map[string]any{model.FieldStatus: model.StatusCompleted, model.FieldWinningBidID: bid.ID}, caller),
			shared.FilterByIDAndStatus(auction.ID, model.FieldID, model.FieldStatus, model.TableName, model.StatusActive),
		)
		if err != nil {
			return fmt.Errorf("failed to close auction: %w", err)
		}

		if !won {
			return failure.AlreadyClosed("auction is already closed") //nolint:wrapcheck
		}

		accepted, err := s.bidRepo.CompareAndSetTx(
			ctx,
			sqltx,
			map[string]any{model.BidFieldStatus: model.BidStatusAccepted},
			shared.FilterByIDAndStatus(bid.ID, model.BidFieldID, model.BidFieldStatus, model.BidTableName, model.BidStatusPending),
		)
		if err != nil {
			return fmt.Errorf("failed to accept bid: %w", err)
		}

		if !accepted {
			return failure.Conflict("bid is no longer pending") //nolint:wrapcheck
		}

		if err = s.rejectPending(ctx, sqltx, auction.ID, bid.ID); err != nil {
			return err
		}

		res.BookingID, err = s.bookings.CreateFromBidTx(ctx, sqltx, bookingDto.FromBid{
			AuctionID:      auction.ID,
			ClientID:       auction.CreatorID,
			ProfessionalID: bid.BidderID,
			Description:    auction.Title,
			Price:          bid.TotalAmount,
			ScheduledDate:  auction.EndDate,
		})
		if err != nil {
			return fmt.Errorf("failed to create booking: %w", err)
		}

		return nil
	})
	if err != nil {
		log.Error().Err(err).Str("bid_id", bidID).Str("auction_id", auction.ID).Msg("failed to accept bid")

		return dto.AcceptBidResponse{}, err
	}

	log.Info().Str("auction_id", auction.ID).Str("bid_id", bid.ID).Str("booking_id", res.BookingID).Msg("bid accepted")

	s.relay.Publish(ctx, model.TableName, auction.ID, relay.OpUpdate, map[string]any{model.FieldStatus: model.StatusCompleted})
	s.relay.Publish(ctx, model.BidTableName, bid.ID, relay.OpUpdate, map[string]any{model.BidFieldStatus: model.BidStatusAccepted})
	s.relay.Publish(ctx, bookingModel.TableName, res.BookingID, relay.OpInsert, nil)

	return res, nil
}

// rejectPending rejects every other pending bid of the auction.
func (s *serviceImpl) rejectPending(ctx context.Context, sqltx *sqlx.Tx, auctionID, exceptBidID string) error {
	filters := []gDto.Clause{
		gDto.Filter{Field: model.BidFieldAuctionID, Value: auctionID, Operator: gDto.FilterOperatorEq, Table: model.BidTableName},
		gDto.Filter{Field: model.BidFieldStatus, Value: model.BidStatusPending, Operator: gDto.FilterOperatorEq, Table: model.BidTableName},
	}

	if exceptBidID != constant.Empty {
		filters = append(filters, gDto.Filter{Field: model.BidFieldID, Value: exceptBidID, Operator: gDto.FilterOperatorNotEq, Table: model.BidTableName})
	}

	err := s.bidRepo.UpdateTx(
		ctx,
		sqltx,
		map[string]any{model.BidFieldStatus: model.BidStatusRejected},
		gDto.FilterGroup{Operator: gDto.FilterGroupOperatorAnd, Filters: filters},
	)
	if err != nil {
		return fmt.Errorf("failed to reject bids: %w", err)
	}

	return nil
}

func (s *serviceImpl) Cancel(ctx context.Context, auctionID string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".auction.Cancel")
	defer scope.End()
	defer scope.TraceIfError(err)

	caller, _ := shared.Caller(ctx)

	auction, err := s.load(ctx, auctionID)
	if err != nil {
		return err
	}

	if auction.CreatorID != caller {
		return failure.NotAuthorized("only the auction creator can cancel it") //nolint:wrapcheck
	}

	err = s.tx.WithTx(ctx, func(sqltx *sqlx.Tx) error {
		won, err := s.repo.CompareAndSetTx(
			ctx,
			sqltx,
			shared.Touch(map[string]any{model.FieldStatus: model.StatusCancelled}, caller),
			shared.FilterByIDAndStatus(auctionID, model.FieldID, model.FieldStatus, model.TableName, model.StatusActive),
		)
		if err != nil {
			return fmt.Errorf("failed to cancel auction: %w", err)
		}

		if !won {
			return failure.AlreadyClosed("auction is already closed") //nolint:wrapcheck
		}

		return s.rejectPending(ctx, sqltx, auctionID, constant.Empty)
	})
	if err != nil {
		log.Error().Err(err).Str("auction_id", auctionID).Msg("failed to cancel auction")

		return err
	}

	s.relay.Publish(ctx, model.TableName, auctionID, relay.OpUpdate, map[string]any{model.FieldStatus: model.StatusCancelled})

	return nil
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.AuctionResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".auction.Get")
	defer scope.End()
	defer scope.TraceIfError(err)

	cacheKey := shared.BuildCacheKey(constant.CacheKeyAuction, id)

	if err = s.cache.Get(ctx, cacheKey, &res); err == nil {
		return res, nil
	}

	auction, err := s.load(ctx, id)
	if err != nil {
		return res, err
	}

	res.FromModel(auction)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save auction to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) GetAll(ctx context.Context, params gDto.QueryParams, status, category string) (res dto.GetAuctionsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".auction.GetAll")
	defer scope.End()
	defer scope.TraceIfError(err)

	cacheKey := shared.BuildCacheKeyWithQuery(constant.CacheKeyAuction, constant.Asterix, params, "status="+status, "category="+category)

	if err = s.cache.Get(ctx, cacheKey, &res); err == nil {
		return res, nil
	}

	filter := gDto.FilterGroup{Operator: gDto.FilterGroupOperatorAnd}

	if status != constant.Empty {
		filter.Filters = append(filter.Filters, gDto.Filter{Field: model.FieldStatus, Value: status, Operator: gDto.FilterOperatorEq, Table: model.TableName})
	}

	if category != constant.Empty {
		filter.Filters = append(filter.Filters, gDto.Filter{Field: model.FieldCategory, Value: category, Operator: gDto.FilterOperatorEq, Table: model.TableName})
	}

	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count auctions")

		return res, fmt.Errorf("failed to count auctions: %w", err)
	}

	auctions, err := s.repo.GetAll(ctx, params, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get auctions")

		return res, fmt.Errorf("failed to get auctions: %w", err)
	}

	res.FromModels(auctions, total, params.Limit)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save auctions to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) load(ctx context.Context, id string) (model.Auction, error) {
	auction, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Str("auction_id", id).Msg("failed to get auction")

		return auction, fmt.Errorf("failed to get auction: %w", err)
	}

	if auction.ID == constant.Empty {
		return auction, failure.NotFound("auction not found") //nolint:wrapcheck
	}

	return auction, nil
}
