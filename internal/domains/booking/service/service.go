package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=./mocks/service_mock.go -package=mocks

import (
	"context"
	"fmt"
	"marketplace/config"
	"marketplace/infras/otel"
	"marketplace/infras/postgres"
	"marketplace/internal/domains/booking/model"
	"marketplace/internal/domains/booking/model/dto"
	"marketplace/internal/domains/booking/repository"
	userModel "marketplace/internal/domains/user/model"
	userRepository "marketplace/internal/domains/user/repository"
	"marketplace/internal/relay"
	"marketplace/shared"
	"marketplace/shared/cache"
	"marketplace/shared/constant"
	gDto "marketplace/shared/dto"
	"marketplace/shared/failure"
	"marketplace/shared/timezone"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

type Booking interface {
	CreateOffer(ctx context.Context, req dto.CreateOfferRequest) (dto.BookingResponse, error)
	Accept(ctx context.Context, id string) error
	Decline(ctx context.Context, id string) error
	Cancel(ctx context.Context, id string) error
	RegisterProviderCheckin(ctx context.Context, id string) (dto.ConfirmationResponse, error)
	RegisterClientCheckin(ctx context.Context, id string) (dto.ConfirmationResponse, error)
	CheckConfirmation(ctx context.Context, id string) (dto.ConfirmationResponse, error)
	Get(ctx context.Context, id string) (dto.BookingResponse, error)
	GetAll(ctx context.Context, params gDto.QueryParams, status string) (dto.GetBookingsResponse, error)
	CreateFromBidTx(ctx context.Context, sqltx *sqlx.Tx, req dto.FromBid) (string, error)
}

// Escrow releases the held funds of a booking inside the caller's transaction.
type Escrow interface {
	ReleaseForBookingTx(ctx context.Context, sqltx *sqlx.Tx, bookingID, actor string) error
}

type serviceImpl struct {
	repo     repository.Booking
	userRepo userRepository.User
	tx       postgres.Transactor
	escrow   Escrow
	relay    relay.Publisher
	cfg      *config.Config
	cache    cache.RedisCache
	otel     otel.Otel
}

func New(
	repo repository.Booking,
	userRepo userRepository.User,
	tx postgres.Transactor,
	escrow Escrow,
	relay relay.Publisher,
	cfg *config.Config,
	cache cache.RedisCache,
	otel otel.Otel,
) Booking {
	return &serviceImpl{
		repo:     repo,
		userRepo: userRepo,
		tx:       tx,
		escrow:   escrow,
		relay:    relay,
		cfg:      cfg,
		cache:    cache,
		otel:     otel,
	}
}

func (s *serviceImpl) CreateOffer(ctx context.Context, req dto.CreateOfferRequest) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.CreateOffer")
	defer scope.End()
	defer scope.TraceIfError(err)

	clientID, _ := shared.Caller(ctx)

	if clientID == req.ProfessionalID {
		return res, failure.Validation("a client cannot hire themselves") //nolint:wrapcheck
	}

	professional, err := s.userRepo.Get(ctx, shared.FilterByID(req.ProfessionalID, userModel.FieldID, userModel.TableName))
	if err != nil {
		log.Error().Err(err).Str("professional_id", req.ProfessionalID).Msg("failed to get professional")

		return res, fmt.Errorf("failed to get professional: %w", err)
	}

	if professional.ID == constant.Empty {
		return res, failure.NotFound("professional not found") //nolint:wrapcheck
	}

	if !professional.IsProfessional() {
		return res, failure.Validation("professional_id does not belong to a professional") //nolint:wrapcheck
	}

	booking, err := req.ToModel(clientID)
	if err != nil {
		return res, failure.Validation(err.Error()) //nolint:wrapcheck
	}

	if err = s.repo.Insert(ctx, booking); err != nil {
		log.Error().Err(err).Msg("failed to insert booking")

		return res, fmt.Errorf("failed to create booking: %w", err)
	}

	s.relay.Publish(ctx, model.TableName, booking.ID, relay.OpInsert, nil)

	res.FromModel(booking)

	return res, nil
}

func (s *serviceImpl) Accept(ctx context.Context, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.Accept")
	defer scope.End()
	defer scope.TraceIfError(err)

	caller, _ := shared.Caller(ctx)

	booking, err := s.load(ctx, id)
	if err != nil {
		return err
	}

	if caller != booking.ProfessionalID {
		return failure.NotAuthorized("only the professional can accept this booking") //nolint:wrapcheck
	}

	return s.transition(ctx, booking, model.StatusAwaitingPayment, model.OpenStatuses)
}

func (s *serviceImpl) Decline(ctx context.Context, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.Decline")
	defer scope.End()
	defer scope.TraceIfError(err)

	caller, _ := shared.Caller(ctx)

	booking, err := s.load(ctx, id)
	if err != nil {
		return err
	}

	if !booking.IsParty(caller) {
		return failure.NotAuthorized("only the booking parties can decline it") //nolint:wrapcheck
	}

	return s.transition(ctx, booking, model.StatusDeclined, model.OpenStatuses)
}

// Cancel leaves any held funds untouched. Refunds go through the gateway.
func (s *serviceImpl) Cancel(ctx context.Context, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.Cancel")
	defer scope.End()
	defer scope.TraceIfError(err)

	caller, _ := shared.Caller(ctx)

	booking, err := s.load(ctx, id)
	if err != nil {
		return err
	}

	if !booking.IsParty(caller) {
		return failure.NotAuthorized("only the booking parties can cancel it") //nolint:wrapcheck
	}

	return s.transition(ctx, booking, model.StatusCancelled, model.CancellableStatuses)
}

func (s *serviceImpl) transition(ctx context.Context, booking model.Booking, to string, from []string) error {
	caller, _ := shared.Caller(ctx)

	changed, err := s.repo.CompareAndSet(
		ctx,
		shared.Touch(map[string]any{model.FieldStatus: to}, caller),
		shared.FilterByIDAndStatus(booking.ID, model.FieldID, model.FieldStatus, model.TableName, from...),
	)
	if err != nil {
		log.Error().Err(err).Str("booking_id", booking.ID).Str("to", to).Msg("failed to update booking status")

		return fmt.Errorf("failed to update booking status: %w", err)
	}

	if !changed {
		log.Warn().Str("booking_id", booking.ID).Str("status", booking.Status).Str("to", to).Msg("booking status changed concurrently")

		return failure.Conflict(fmt.Sprintf("booking can no longer move to %s", to)) //nolint:wrapcheck
	}

	s.relay.Publish(ctx, model.TableName, booking.ID, relay.OpUpdate, map[string]any{model.FieldStatus: to})

	return nil
}

type checkinSide struct {
	name      string
	flagField string
	atField   string
	party     func(model.Booking) string
}

var (
	providerSide = checkinSide{
		name:      "provider",
		flagField: model.FieldProviderCheckedIn,
		atField:   model.FieldProviderCheckedInAt,
		party:     func(b model.Booking) string { return b.ProfessionalID },
	}
	clientSide = checkinSide{
		name:      "client",
		flagField: model.FieldClientCheckedIn,
		atField:   model.FieldClientCheckedInAt,
		party:     func(b model.Booking) string { return b.ClientID },
	}
)

func (s *serviceImpl) RegisterProviderCheckin(ctx context.Context, id string) (res dto.ConfirmationResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.RegisterProviderCheckin")
	defer scope.End()
	defer scope.TraceIfError(err)

	return s.checkin(ctx, id, providerSide)
}

func (s *serviceImpl) RegisterClientCheckin(ctx context.Context, id string) (res dto.ConfirmationResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.RegisterClientCheckin")
	defer scope.End()
	defer scope.TraceIfError(err)

	return s.checkin(ctx, id, clientSide)
}

// checkin sets the caller's own flag once, then tries to settle. Repeating a check-in is harmless.
func (s *serviceImpl) checkin(ctx context.Context, id string, side checkinSide) (res dto.ConfirmationResponse, err error) {
	caller, _ := shared.Caller(ctx)

	booking, err := s.load(ctx, id)
	if err != nil {
		return res, err
	}

	if caller != side.party(booking) {
		return res, failure.NotAuthorized(fmt.Sprintf("only the %s of this booking can register this check-in", side.name)) //nolint:wrapcheck
	}

	changed, err := s.repo.CompareAndSet(
		ctx,
		shared.Touch(map[string]any{side.flagField: true, side.atField: timezone.Now()}, caller),
		gDto.FilterGroup{
			Operator: gDto.FilterGroupOperatorAnd,
			Filters: []gDto.Clause{
				gDto.Filter{Field: model.FieldID, Value: id, Operator: gDto.FilterOperatorEq, Table: model.TableName},
				gDto.Filter{Field: model.FieldStatus, Value: model.ServiceStatuses, Operator: gDto.FilterOperatorIn, Table: model.TableName},
				gDto.Filter{Field: side.flagField, Value: false, Operator: gDto.FilterOperatorEq, Table: model.TableName},
			},
		},
	)
	if err != nil {
		log.Error().Err(err).Str("booking_id", id).Str("side", side.name).Msg("failed to register check-in")

		return res, fmt.Errorf("failed to register %s check-in: %w", side.name, err)
	}

	if changed {
		s.relay.Publish(ctx, model.TableName, id, relay.OpUpdate, map[string]any{side.flagField: true})
	} else {
		current, err := s.load(ctx, id)
		if err != nil {
			return res, err
		}

		if current.Status == model.StatusCompleted {
			res.FromModel(current)

			return res, nil
		}

		if !current.InService() {
			return res, failure.Conflict(fmt.Sprintf("booking in status %s does not accept check-ins", current.Status)) //nolint:wrapcheck
		}
	}

	if _, err = s.attemptSettle(ctx, id, caller); err != nil {
		return res, err
	}

	booking, err = s.load(ctx, id)
	if err != nil {
		return res, err
	}

	res.FromModel(booking)

	return res, nil
}

// attemptSettle completes the booking and releases its escrow in one transaction once both
// parties checked in. Only the caller that wins the status update releases funds.
func (s *serviceImpl) attemptSettle(ctx context.Context, id, actor string) (settled bool, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.attemptSettle")
	defer scope.End()
	defer scope.TraceIfError(err)

	err = s.tx.WithTx(ctx, func(sqltx *sqlx.Tx) error {
		now := timezone.Now()

		won, err := s.repo.CompareAndSetTx(
			ctx,
			sqltx,
			shared.Touch(map[string]any{model.FieldStatus: model.StatusCompleted, model.FieldCompletedAt: now}, actor),
			gDto.FilterGroup{
				Operator: gDto.FilterGroupOperatorAnd,
				Filters: []gDto.Clause{
					gDto.Filter{Field: model.FieldID, Value: id, Operator: gDto.FilterOperatorEq, Table: model.TableName},
					gDto.Filter{Field: model.FieldStatus, Value: model.ServiceStatuses, Operator: gDto.FilterOperatorIn, Table: model.TableName},
					gDto.Filter{Field: model.FieldProviderCheckedIn, Value: true, Operator: gDto.FilterOperatorEq, Table: model.TableName},
					gDto.Filter{Field: model.FieldClientCheckedIn, Value: true, Operator: gDto.FilterOperatorEq, Table: model.TableName},
				},
			},
		)
		if err != nil {
			return fmt.Errorf("failed to complete booking: %w", err)
		}

		if !won {
			return nil
		}

		err = s.escrow.ReleaseForBookingTx(ctx, sqltx, id, actor)
		if failure.IsKind(err, failure.KindAlreadyReleased) {
			log.Warn().Str("booking_id", id).Msg("escrow already released for booking")

			err = nil
		}

		if err != nil {
			return fmt.Errorf("failed to release escrow: %w", err)
		}

		settled = true

		return nil
	})
	if err != nil {
		log.Error().Err(err).Str("booking_id", id).Msg("failed to settle booking")

		return false, fmt.Errorf("failed to settle booking: %w", err)
	}

	if settled {
		log.Info().Str("booking_id", id).Msg("booking completed and escrow released")
		s.relay.Publish(ctx, model.TableName, id, relay.OpUpdate, map[string]any{model.FieldStatus: model.StatusCompleted})
	}

	return settled, nil
}

func (s *serviceImpl) CheckConfirmation(ctx context.Context, id string) (res dto.ConfirmationResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.CheckConfirmation")
	defer scope.End()
	defer scope.TraceIfError(err)

	booking, err := s.load(ctx, id)
	if err != nil {
		return res, err
	}

	if err = authorizeRead(ctx, booking); err != nil {
		return res, err
	}

	res.FromModel(booking)

	return res, nil
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.Get")
	defer scope.End()
	defer scope.TraceIfError(err)

	cacheKey := shared.BuildCacheKey(constant.CacheKeyBooking, id)

	if err = s.cache.Get(ctx, cacheKey, &res); err == nil {
		if err = authorizeRead(ctx, model.Booking{ClientID: res.ClientID, ProfessionalID: res.ProfessionalID}); err != nil {
			return dto.BookingResponse{}, err
		}

		return res, nil
	}

	booking, err := s.load(ctx, id)
	if err != nil {
		return res, err
	}

	if err = authorizeRead(ctx, booking); err != nil {
		return res, err
	}

	res.FromModel(booking)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save booking to cache")
		}
	}()

	return res, nil
}

// GetAll lists the caller's bookings. Admins see everything.
func (s *serviceImpl) GetAll(ctx context.Context, params gDto.QueryParams, status string) (res dto.GetBookingsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.GetAll")
	defer scope.End()
	defer scope.TraceIfError(err)

	caller, role := shared.Caller(ctx)

	owner := caller
	if role == constant.RoleAdmin {
		owner = constant.RoleAdmin
	}

	cacheKey := shared.BuildCacheKeyWithQuery(constant.CacheKeyBooking, owner, params, status)

	if err = s.cache.Get(ctx, cacheKey, &res); err == nil {
		return res, nil
	}

	filter := gDto.FilterGroup{Operator: gDto.FilterGroupOperatorAnd}

	if role != constant.RoleAdmin {
		filter.Filters = append(filter.Filters, gDto.FilterGroup{
			Operator: gDto.FilterGroupOperatorOr,
			Filters: []gDto.Clause{
				gDto.Filter{Field: model.FieldClientID, Value: caller, Operator: gDto.FilterOperatorEq, Table: model.TableName},
				gDto.Filter{Field: model.FieldProfessionalID, Value: caller, Operator: gDto.FilterOperatorEq, Table: model.TableName},
			},
		})
	}

	if status != constant.Empty {
		filter.Filters = append(filter.Filters, gDto.Filter{Field: model.FieldStatus, Value: status, Operator: gDto.FilterOperatorEq, Table: model.TableName})
	}

	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count bookings")

		return res, fmt.Errorf("failed to count bookings: %w", err)
	}

	bookings, err := s.repo.GetAll(ctx, params, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get bookings")

		return res, fmt.Errorf("failed to get bookings: %w", err)
	}

	res.FromModels(bookings, total, params.Limit)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save bookings to cache")
		}
	}()

	return res, nil
}

// CreateFromBidTx inserts the service order for an accepted bid. It joins the caller's
// transaction and leaves publishing to the caller, after commit.
func (s *serviceImpl) CreateFromBidTx(ctx context.Context, sqltx *sqlx.Tx, req dto.FromBid) (id string, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.CreateFromBidTx")
	defer scope.End()
	defer scope.TraceIfError(err)

	booking := req.ToModel()

	if err = s.repo.InsertTx(ctx, sqltx, booking); err != nil {
		log.Error().Err(err).Str("auction_id", req.AuctionID).Msg("failed to insert booking from bid")

		return "", fmt.Errorf("failed to create booking from bid: %w", err)
	}

	return booking.ID, nil
}

func (s *serviceImpl) load(ctx context.Context, id string) (model.Booking, error) {
	booking, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Str("booking_id", id).Msg("failed to get booking")

		return booking, fmt.Errorf("failed to get booking: %w", err)
	}

	if booking.ID == constant.Empty {
		return booking, failure.NotFound("booking not found") //nolint:wrapcheck
	}

	return booking, nil
}

var errNotParty = failure.NotAuthorized("only the booking parties can view it")

func authorizeRead(ctx context.Context, booking model.Booking) error {
	caller, role := shared.Caller(ctx)

	if role == constant.RoleAdmin || booking.IsParty(caller) {
		return nil
	}

	return errNotParty
}
