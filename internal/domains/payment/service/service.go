package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=./mocks/service_mock.go -package=mocks

import (
	"context"
	"fmt"
	"marketplace/config"
	"marketplace/infras/gateway"
	"marketplace/infras/otel"
	"marketplace/infras/postgres"
	bookingModel "marketplace/internal/domains/booking/model"
	bookingRepository "marketplace/internal/domains/booking/repository"
	"marketplace/internal/domains/payment/model"
	"marketplace/internal/domains/payment/model/dto"
	"marketplace/internal/domains/payment/repository"
	"marketplace/internal/relay"
	"marketplace/shared"
	"marketplace/shared/cache"
	"marketplace/shared/commission"
	"marketplace/shared/constant"
	gDto "marketplace/shared/dto"
	"marketplace/shared/failure"
	"marketplace/shared/logger"
	"marketplace/shared/timezone"
	"marketplace/shared/validator"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

const (
	// reconcile queue entries never expire; they are removed once recorded
	reconcileQueueTTL = 0

	msgGatewayFailed = "payment failed, try again"
)

var gatewayMethods = map[string]string{
	model.MethodPix:        "pix",
	model.MethodCreditCard: "credit_card",
	model.MethodDebitCard:  "debit_card",
	model.MethodBoleto:     "bolbradesco",
}

type Payment interface {
	Capture(ctx context.Context, req dto.CaptureRequest) (dto.CaptureResponse, error)
	PollStatus(ctx context.Context, id string) (dto.PaymentStatusResponse, error)
	Release(ctx context.Context, id string) error
	ReleaseForBookingTx(ctx context.Context, sqltx *sqlx.Tx, bookingID, actor string) error
	Get(ctx context.Context, id string) (dto.PaymentResponse, error)
	Reconcile(ctx context.Context, batch int) (dto.ReconcileReport, error)
}

type serviceImpl struct {
	repo        repository.Payment
	bookingRepo bookingRepository.Booking
	gateway     gateway.Gateway
	tx          postgres.Transactor
	relay       relay.Publisher
	cfg         *config.Config
	cache       cache.RedisCache
	otel        otel.Otel
}

func New(
	repo repository.Payment,
	bookingRepo bookingRepository.Booking,
	gateway gateway.Gateway,
	tx postgres.Transactor,
	relay relay.Publisher,
	cfg *config.Config,
	cache cache.RedisCache,
	otel otel.Otel,
) Payment {
	return &serviceImpl{
		repo:        repo,
		bookingRepo: bookingRepo,
		gateway:     gateway,
		tx:          tx,
		relay:       relay,
		cfg:         cfg,
		cache:       cache,
		otel:        otel,
	}
}

func (s *serviceImpl) defaultSchedule() commission.Schedule {
	return commission.Schedule{
		PlatformFeePercentage: s.cfg.Commission.PlatformFeePercentage,
		ProviderPercentage:    s.cfg.Commission.ProviderPercentage,
	}
}

// Capture opens a payment with the gateway and records it as held. A gateway call is never
// followed by a blind retry: if recording fails the capture is queued for reconciliation.
func (s *serviceImpl) Capture(ctx context.Context, req dto.CaptureRequest) (res dto.CaptureResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".payment.Capture")
	defer scope.End()
	defer scope.TraceIfError(err)

	if err = validator.ValidateStruct(&req); err != nil {
		return res, err
	}

	if !commission.Chargeable(req.Amount) {
		return res, failure.Validation(fmt.Sprintf("amount must be at least %.2f", commission.MinAmount)) //nolint:wrapcheck
	}

	schedule := s.defaultSchedule()

	if req.Commission != nil {
		if err = req.Commission.Validate(); err != nil {
			return res, failure.Validation(err.Error()) //nolint:wrapcheck
		}

		schedule = *req.Commission
	}

	caller, _ := shared.Caller(ctx)

	if req.BookingID != nil {
		if err = s.claimBooking(ctx, *req.BookingID, caller); err != nil {
			return res, err
		}
	}

	paymentID := uuid.NewString()

	var (
		reference  string
		redeemCode *string
		ticketURL  string
	)

	if req.Method == model.MethodBitcoin {
		reference = model.BitcoinReferencePrefix + uuid.NewString()
	} else {
		created, err := s.gateway.CreatePayment(ctx, paymentID, gateway.CreatePaymentRequest{
			TransactionAmount: commission.Round(req.Amount),
			Description:       req.Description,
			PaymentMethodID:   gatewayMethods[req.Method],
			Payer:             gateway.Payer{Email: req.PayerEmail, FirstName: req.PayerName},
			ExternalReference: paymentID,
		})
		if err != nil {
			log.Error().Err(err).Str("payment_id", paymentID).Str("method", req.Method).Msg("gateway capture failed")

			if req.BookingID != nil {
				s.unclaimBooking(context.WithoutCancel(ctx), *req.BookingID, caller)
			}

			return res, failure.Gateway(msgGatewayFailed) //nolint:wrapcheck
		}

		reference = created.Reference()
		ticketURL = created.PointOfInteraction.TransactionData.TicketURL

		if qr := created.PointOfInteraction.TransactionData.QRCode; qr != constant.Empty {
			redeemCode = &qr
		}
	}

	payment := req.ToModel(paymentID, reference, redeemCode, schedule, caller)

	err = s.tx.WithTx(ctx, func(sqltx *sqlx.Tx) error {
		return s.record(ctx, sqltx, payment)
	})
	if err != nil {
		logger.ErrorWithStack(err)
		s.enqueueCapture(ctx, payment)

		return res, failure.PartialFailure("payment captured but not yet recorded, it will be reconciled") //nolint:wrapcheck
	}

	s.relay.Publish(ctx, model.TableName, payment.ID, relay.OpInsert, nil)

	if payment.BookingID != nil {
		s.relay.Publish(ctx, bookingModel.TableName, *payment.BookingID, relay.OpUpdate, map[string]any{bookingModel.FieldPaymentStatus: bookingModel.PaymentStatusPending})
	}

	res.FromModel(payment, ticketURL)

	return res, nil
}

// claimBooking checks that the booking is the caller's and awaiting payment, then moves its
// payment_status from unpaid to pending. The claim is taken before the gateway is called so
// that only one charge per booking can be in flight.
func (s *serviceImpl) claimBooking(ctx context.Context, bookingID, caller string) error {
	booking, err := s.bookingRepo.Get(ctx, shared.FilterByID(bookingID, bookingModel.FieldID, bookingModel.TableName))
	if err != nil {
		log.Error().Err(err).Str("booking_id", bookingID).Msg("failed to get booking for payment")

		return fmt.Errorf("failed to get booking: %w", err)
	}

	if booking.ID == constant.Empty {
		return failure.NotFound("booking not found") //nolint:wrapcheck
	}

	if booking.ClientID != caller {
		return failure.NotAuthorized("only the booking's client can pay for it") //nolint:wrapcheck
	}

	if booking.Status != bookingModel.StatusAwaitingPayment {
		return failure.Conflict(fmt.Sprintf("booking in status %s is not awaiting payment", booking.Status)) //nolint:wrapcheck
	}

	switch booking.PaymentStatus {
	case bookingModel.PaymentStatusPaid:
		return failure.Conflict("booking is already paid") //nolint:wrapcheck
	case bookingModel.PaymentStatusPending:
		return failure.Conflict("booking already has a pending payment") //nolint:wrapcheck
	}

	won, err := s.bookingRepo.CompareAndSet(
		ctx,
		shared.Touch(map[string]any{bookingModel.FieldPaymentStatus: bookingModel.PaymentStatusPending}, caller),
		claimFilter(bookingID, bookingModel.PaymentStatusUnpaid),
	)
	if err != nil {
		log.Error().Err(err).Str("booking_id", bookingID).Msg("failed to claim booking for payment")

		return fmt.Errorf("failed to claim booking: %w", err)
	}

	if !won {
		return failure.Conflict("booking already has a payment in progress") //nolint:wrapcheck
	}

	return nil
}

// unclaimBooking hands a pending claim back so the client can pay again.
func (s *serviceImpl) unclaimBooking(ctx context.Context, bookingID, actor string) {
	_, err := s.bookingRepo.CompareAndSet(
		ctx,
		shared.Touch(map[string]any{bookingModel.FieldPaymentStatus: bookingModel.PaymentStatusUnpaid}, actor),
		claimFilter(bookingID, bookingModel.PaymentStatusPending),
	)
	if err != nil {
		log.Error().Err(err).Str("booking_id", bookingID).Msg("failed to release payment claim on booking")
	}
}

func claimFilter(bookingID, paymentStatus string) gDto.FilterGroup {
	return gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []gDto.Clause{
			gDto.Filter{Field: bookingModel.FieldID, Value: bookingID, Operator: gDto.FilterOperatorEq, Table: bookingModel.TableName},
			gDto.Filter{Field: bookingModel.FieldStatus, Value: bookingModel.StatusAwaitingPayment, Operator: gDto.FilterOperatorEq, Table: bookingModel.TableName},
			gDto.Filter{Field: bookingModel.FieldPaymentStatus, Value: paymentStatus, Operator: gDto.FilterOperatorEq, Table: bookingModel.TableName},
		},
	}
}

// record inserts the payment and marks its booking as pending payment.
func (s *serviceImpl) record(ctx context.Context, sqltx *sqlx.Tx, payment model.Payment) error {
	if err := s.repo.InsertTx(ctx, sqltx, payment); err != nil {
		return fmt.Errorf("failed to insert payment: %w", err)
	}

	if payment.BookingID == nil {
		return nil
	}

	err := s.bookingRepo.UpdateTx(
		ctx,
		sqltx,
		shared.Touch(map[string]any{bookingModel.FieldPaymentStatus: bookingModel.PaymentStatusPending}, payment.CreatedBy),
		shared.FilterByID(*payment.BookingID, bookingModel.FieldID, bookingModel.TableName),
	)
	if err != nil {
		return fmt.Errorf("failed to mark booking payment pending: %w", err)
	}

	return nil
}

func (s *serviceImpl) enqueueCapture(ctx context.Context, payment model.Payment) {
	key := shared.BuildCacheKey(constant.CacheKeyReconcileCapture, payment.ExternalReference)

	if err := s.cache.Save(context.WithoutCancel(ctx), key, payment, reconcileQueueTTL); err != nil {
		log.Error().
			Err(err).
			Str("payment_id", payment.ID).
			Str("external_reference", payment.ExternalReference).
			Float64("amount", payment.Amount).
			Str("payer_email", payment.PayerEmail).
			Msg("captured payment lost: record manually")

		return
	}

	log.Warn().Str("payment_id", payment.ID).Str("external_reference", payment.ExternalReference).Msg("captured payment queued for reconciliation")
}

func (s *serviceImpl) PollStatus(ctx context.Context, id string) (res dto.PaymentStatusResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".payment.PollStatus")
	defer scope.End()
	defer scope.TraceIfError(err)

	payment, err := s.load(ctx, id)
	if err != nil {
		return res, err
	}

	if err = s.authorizeRead(ctx, payment); err != nil {
		return res, err
	}

	actor, _ := shared.Caller(ctx)

	payment, changed, err := s.poll(ctx, payment, actor)
	if err != nil {
		return res, err
	}

	res.FromModel(payment, changed)

	return res, nil
}

// poll asks the gateway for a pending payment's status and applies a transition out of pending.
func (s *serviceImpl) poll(ctx context.Context, payment model.Payment, actor string) (model.Payment, bool, error) {
	if payment.IsTerminal() || !payment.GatewayTracked() {
		return payment, false, nil
	}

	remote, err := s.gateway.GetPayment(ctx, payment.ExternalReference)
	if err != nil {
		log.Error().Err(err).Str("payment_id", payment.ID).Msg("failed to poll gateway")

		return payment, false, failure.Gateway("payment status unavailable, try again") //nolint:wrapcheck
	}

	status := model.MapGatewayStatus(remote.Status)
	if status == model.StatusPending {
		return payment, false, nil
	}

	now := timezone.Now()
	changed := false

	err = s.tx.WithTx(ctx, func(sqltx *sqlx.Tx) error {
		mod := map[string]any{model.FieldStatus: status}
		if status == model.StatusCompleted {
			mod[model.FieldCompletedAt] = now
		}

		won, err := s.repo.CompareAndSetTx(
			ctx,
			sqltx,
			shared.Touch(mod, actor),
			shared.FilterByIDAndStatus(payment.ID, model.FieldID, model.FieldStatus, model.TableName, model.StatusPending),
		)
		if err != nil {
			return fmt.Errorf("failed to update payment status: %w", err)
		}

		if !won || payment.BookingID == nil {
			changed = won

			return nil
		}

		if status != model.StatusCompleted {
			changed = true

			return s.reopenBooking(ctx, sqltx, *payment.BookingID, actor)
		}

		if err = s.settleBooking(ctx, sqltx, payment, actor); err != nil {
			return err
		}

		changed = true

		return nil
	})
	if err != nil {
		log.Error().Err(err).Str("payment_id", payment.ID).Str("status", status).Msg("failed to apply payment status")

		return payment, false, fmt.Errorf("failed to apply payment status: %w", err)
	}

	if !changed {
		current, err := s.load(ctx, payment.ID)

		return current, false, err
	}

	payment.Status = status
	if status == model.StatusCompleted {
		payment.CompletedAt = &now
	}

	log.Info().Str("payment_id", payment.ID).Str("status", status).Msg("payment status changed")

	s.relay.Publish(ctx, model.TableName, payment.ID, relay.OpUpdate, map[string]any{model.FieldStatus: status})

	if payment.BookingID != nil && status == model.StatusCompleted {
		s.relay.Publish(ctx, bookingModel.TableName, *payment.BookingID, relay.OpUpdate, map[string]any{bookingModel.FieldPaymentStatus: bookingModel.PaymentStatusPaid})
	}

	return payment, true, nil
}

// reopenBooking clears the pending claim left by a payment that did not complete.
func (s *serviceImpl) reopenBooking(ctx context.Context, sqltx *sqlx.Tx, bookingID, actor string) error {
	_, err := s.bookingRepo.CompareAndSetTx(
		ctx,
		sqltx,
		shared.Touch(map[string]any{bookingModel.FieldPaymentStatus: bookingModel.PaymentStatusUnpaid}, actor),
		gDto.FilterGroup{
			Operator: gDto.FilterGroupOperatorAnd,
			Filters: []gDto.Clause{
				gDto.Filter{Field: bookingModel.FieldID, Value: bookingID, Operator: gDto.FilterOperatorEq, Table: bookingModel.TableName},
				gDto.Filter{Field: bookingModel.FieldPaymentStatus, Value: bookingModel.PaymentStatusPending, Operator: gDto.FilterOperatorEq, Table: bookingModel.TableName},
			},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to reopen booking for payment: %w", err)
	}

	return nil
}

// settleBooking marks the booking paid and moves an awaiting_payment booking on to accepted.
// Advance and full payments both reserve the booking.
func (s *serviceImpl) settleBooking(ctx context.Context, sqltx *sqlx.Tx, payment model.Payment, actor string) error {
	bookingID := *payment.BookingID

	err := s.bookingRepo.UpdateTx(
		ctx,
		sqltx,
		shared.Touch(map[string]any{bookingModel.FieldPaymentStatus: bookingModel.PaymentStatusPaid}, actor),
		shared.FilterByID(bookingID, bookingModel.FieldID, bookingModel.TableName),
	)
	if err != nil {
		return fmt.Errorf("failed to mark booking paid: %w", err)
	}

	_, err = s.bookingRepo.CompareAndSetTx(
		ctx,
		sqltx,
		shared.Touch(map[string]any{bookingModel.FieldStatus: bookingModel.StatusAccepted}, actor),
		shared.FilterByIDAndStatus(bookingID, bookingModel.FieldID, bookingModel.FieldStatus, bookingModel.TableName, bookingModel.StatusAwaitingPayment),
	)
	if err != nil {
		return fmt.Errorf("failed to accept paid booking: %w", err)
	}

	return nil
}

// Release frees held funds once the owning booking is completed.
func (s *serviceImpl) Release(ctx context.Context, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".payment.Release")
	defer scope.End()
	defer scope.TraceIfError(err)

	payment, err := s.load(ctx, id)
	if err != nil {
		return err
	}

	if payment.FundsStatus == model.FundsReleased {
		return failure.AlreadyReleased("funds already released") //nolint:wrapcheck
	}

	if payment.BookingID == nil {
		return failure.Conflict("payment is not tied to a booking") //nolint:wrapcheck
	}

	booking, err := s.bookingRepo.Get(ctx, shared.FilterByID(*payment.BookingID, bookingModel.FieldID, bookingModel.TableName))
	if err != nil {
		return fmt.Errorf("failed to get booking: %w", err)
	}

	if booking.Status != bookingModel.StatusCompleted {
		return failure.Conflict("funds are released only for completed bookings") //nolint:wrapcheck
	}

	actor, _ := shared.Caller(ctx)

	won, err := s.repo.CompareAndSet(ctx, releaseMod(actor), releaseFilter(model.FieldID, id))
	if err != nil {
		log.Error().Err(err).Str("payment_id", id).Msg("failed to release funds")

		return fmt.Errorf("failed to release funds: %w", err)
	}

	if !won {
		current, err := s.load(ctx, id)
		if err != nil {
			return err
		}

		if current.FundsStatus == model.FundsReleased {
			return failure.AlreadyReleased("funds already released") //nolint:wrapcheck
		}

		return failure.Conflict("payment is not completed") //nolint:wrapcheck
	}

	log.Info().Str("payment_id", id).Msg("escrow funds released")
	s.relay.Publish(ctx, model.TableName, id, relay.OpUpdate, map[string]any{model.FieldFundsStatus: model.FundsReleased})

	return nil
}

// ReleaseForBookingTx releases the booking's completed payment inside the completion transaction.
// A booking without a completed payment completes without a release.
func (s *serviceImpl) ReleaseForBookingTx(ctx context.Context, sqltx *sqlx.Tx, bookingID, actor string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".payment.ReleaseForBookingTx")
	defer scope.End()
	defer scope.TraceIfError(err)

	won, err := s.repo.CompareAndSetTx(ctx, sqltx, releaseMod(actor), releaseFilter(model.FieldBookingID, bookingID))
	if err != nil {
		return fmt.Errorf("failed to release funds: %w", err)
	}

	if won {
		log.Info().Str("booking_id", bookingID).Msg("escrow funds released for booking")

		return nil
	}

	payment, err := s.repo.GetTx(ctx, sqltx, gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []gDto.Clause{
			gDto.Filter{Field: model.FieldBookingID, Value: bookingID, Operator: gDto.FilterOperatorEq, Table: model.TableName},
			gDto.Filter{Field: model.FieldStatus, Value: model.StatusCompleted, Operator: gDto.FilterOperatorEq, Table: model.TableName},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to get booking payment: %w", err)
	}

	if payment.FundsStatus == model.FundsReleased {
		return failure.AlreadyReleased("funds already released") //nolint:wrapcheck
	}

	log.Warn().Str("booking_id", bookingID).Msg("no completed payment held for booking, completing without release")

	return nil
}

func releaseMod(actor string) map[string]any {
	return shared.Touch(map[string]any{
		model.FieldFundsStatus: model.FundsReleased,
		model.FieldReleasedAt:  timezone.Now(),
	}, actor)
}

func releaseFilter(field, value string) gDto.FilterGroup {
	return gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []gDto.Clause{
			gDto.Filter{Field: field, Value: value, Operator: gDto.FilterOperatorEq, Table: model.TableName},
			gDto.Filter{Field: model.FieldFundsStatus, Value: model.FundsHeld, Operator: gDto.FilterOperatorEq, Table: model.TableName},
			gDto.Filter{Field: model.FieldStatus, Value: model.StatusCompleted, Operator: gDto.FilterOperatorEq, Table: model.TableName},
		},
	}
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.PaymentResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".payment.Get")
	defer scope.End()
	defer scope.TraceIfError(err)

	payment, err := s.load(ctx, id)
	if err != nil {
		return res, err
	}

	if err = s.authorizeRead(ctx, payment); err != nil {
		return res, err
	}

	res.FromModel(payment)

	return res, nil
}

// Reconcile records queued captures, then polls up to batch pending gateway payments.
func (s *serviceImpl) Reconcile(ctx context.Context, batch int) (report dto.ReconcileReport, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".payment.Reconcile")
	defer scope.End()
	defer scope.TraceIfError(err)

	keys, err := s.cache.Keys(ctx, shared.BuildCacheKey(constant.CacheKeyReconcileCapture, constant.Asterix))
	if err != nil {
		return report, fmt.Errorf("failed to list queued captures: %w", err)
	}

	for _, key := range keys {
		recovered, err := s.recoverCapture(ctx, key)
		if err != nil {
			log.Error().Err(err).Str("key", key).Msg("failed to reconcile queued capture")

			report.Errors++

			continue
		}

		if recovered {
			report.Recovered++
		}
	}

	if batch <= 0 {
		return report, nil
	}

	pending, err := s.repo.GetAll(
		ctx,
		gDto.QueryParams{Page: 1, Limit: batch, SortBy: constant.FieldCreatedAt, SortDir: gDto.SortDirAsc},
		gDto.FilterGroup{
			Operator: gDto.FilterGroupOperatorAnd,
			Filters: []gDto.Clause{
				gDto.Filter{Field: model.FieldStatus, Value: model.StatusPending, Operator: gDto.FilterOperatorEq, Table: model.TableName},
				gDto.Filter{Field: model.FieldMethod, Value: model.MethodBitcoin, Operator: gDto.FilterOperatorNotEq, Table: model.TableName},
			},
		},
	)
	if err != nil {
		return report, fmt.Errorf("failed to list pending payments: %w", err)
	}

	for _, payment := range pending {
		report.Polled++

		_, changed, err := s.poll(ctx, payment, constant.SystemActor)
		if err != nil {
			report.Errors++

			continue
		}

		if changed {
			report.Transitioned++
		}
	}

	log.Info().
		Int("recovered", report.Recovered).
		Int("polled", report.Polled).
		Int("transitioned", report.Transitioned).
		Int("errors", report.Errors).
		Msg("payment reconciliation finished")

	return report, nil
}

// recoverCapture records one queued capture unless a row with its reference already exists.
// A capture the store rejects for good (another active payment, a broken reference) is kept
// as a cancelled attempt so the charge stays on record and the queue drains.
func (s *serviceImpl) recoverCapture(ctx context.Context, key string) (bool, error) {
	var payment model.Payment

	if err := s.cache.Get(ctx, key, &payment); err != nil {
		return false, fmt.Errorf("failed to read queued capture: %w", err)
	}

	exist, err := s.repo.Exist(ctx, shared.FilterBy(model.FieldExternalReference, payment.ExternalReference, model.TableName))
	if err != nil {
		return false, fmt.Errorf("failed to check recorded capture: %w", err)
	}

	if !exist {
		err = s.tx.WithTx(ctx, func(sqltx *sqlx.Tx) error {
			return s.record(ctx, sqltx, payment)
		})

		switch {
		case err == nil:
		case rejectedByStore(err):
			if err = s.supersede(ctx, payment, err); err != nil {
				return false, err
			}
		default:
			return false, err
		}

		s.relay.Publish(ctx, model.TableName, payment.ID, relay.OpInsert, nil)
	}

	if err = s.cache.Delete(ctx, key); err != nil {
		return !exist, fmt.Errorf("failed to dequeue capture: %w", err)
	}

	return !exist, nil
}

func rejectedByStore(err error) bool {
	return failure.IsKind(err, failure.KindConflict) || failure.IsKind(err, failure.KindValidation)
}

// supersede stores a capture that lost its booking slot as a cancelled attempt. A reference the
// store still rejects is logged for manual recording and dropped from the queue.
func (s *serviceImpl) supersede(ctx context.Context, payment model.Payment, cause error) error {
	log.Warn().
		Err(cause).
		Str("payment_id", payment.ID).
		Str("external_reference", payment.ExternalReference).
		Msg("queued capture rejected by the store, recording it as cancelled")

	payment.Status = model.StatusCancelled
	if failure.IsKind(cause, failure.KindValidation) {
		payment.BookingID = nil
	}

	err := s.tx.WithTx(ctx, func(sqltx *sqlx.Tx) error {
		return s.repo.InsertTx(ctx, sqltx, payment)
	})
	if err == nil {
		return nil
	}

	if !rejectedByStore(err) {
		return fmt.Errorf("failed to record superseded capture: %w", err)
	}

	log.Error().
		Err(err).
		Str("payment_id", payment.ID).
		Str("external_reference", payment.ExternalReference).
		Float64("amount", payment.Amount).
		Str("payer_email", payment.PayerEmail).
		Msg("captured payment lost: record manually")

	return nil
}

// authorizeRead admits admins, the payer and the parties of the payment's booking.
func (s *serviceImpl) authorizeRead(ctx context.Context, payment model.Payment) error {
	caller, role := shared.Caller(ctx)

	if role == constant.RoleAdmin {
		return nil
	}

	if caller == constant.Empty {
		return failure.NotAuthorized("payment belongs to another user") //nolint:wrapcheck
	}

	if payment.CreatedBy == caller {
		return nil
	}

	if payment.BookingID != nil {
		booking, err := s.bookingRepo.Get(ctx, shared.FilterByID(*payment.BookingID, bookingModel.FieldID, bookingModel.TableName))
		if err != nil {
			return fmt.Errorf("failed to get booking: %w", err)
		}

		if booking.IsParty(caller) {
			return nil
		}
	}

	return failure.NotAuthorized("payment belongs to another user") //nolint:wrapcheck
}

func (s *serviceImpl) load(ctx context.Context, id string) (model.Payment, error) {
	payment, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Str("payment_id", id).Msg("failed to get payment")

		return payment, fmt.Errorf("failed to get payment: %w", err)
	}

	if payment.ID == constant.Empty {
		return payment, failure.NotFound("payment not found") //nolint:wrapcheck
	}

	return payment, nil
}
