package booking

import (
	"context"
	"marketplace/infras/otel"
	"marketplace/internal/domains/booking/model"
	"marketplace/internal/domains/booking/model/dto"
	"marketplace/internal/domains/booking/service"
	"marketplace/shared/constant"
	gDto "marketplace/shared/dto"
	"marketplace/shared/validator"
	"marketplace/transport/http/response"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	service service.Booking
	otel    otel.Otel
}

func New(service service.Booking, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/bookings", func(routerGroup chi.Router) {
		routerGroup.Post("/", handler.CreateOffer)
		routerGroup.Get("/", handler.GetBookings)
		routerGroup.Get("/{id}", handler.GetBookingByID)
		routerGroup.Post("/{id}/accept", handler.AcceptOffer)
		routerGroup.Post("/{id}/decline", handler.DeclineOffer)
		routerGroup.Post("/{id}/cancel", handler.CancelBooking)
		routerGroup.Post("/{id}/checkin/provider", handler.ProviderCheckin)
		routerGroup.Post("/{id}/checkin/client", handler.ClientCheckin)
		routerGroup.Get("/{id}/confirmation", handler.CheckConfirmation)
	})
}

// CreateOffer handles a client's service offer to a professional.
// @Summary Create a service offer
// @Description Create a pending booking offer for a professional.
// @Tags Booking
// @Accept json
// @Produce json
// @Param request body dto.CreateOfferRequest true "Create Offer Request"
// @Success 201 {object} response.Data[dto.BookingResponse]
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/bookings [post]
// @Security BearerAuth
func (handler *Handler) CreateOffer(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CreateOffer")
	defer scope.End()

	req := dto.CreateOfferRequest{}

	if err := validator.Validate(request.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(writer, err)

		return
	}

	res, err := handler.service.CreateOffer(ctx, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to create offer")

		response.WithError(writer, err)

		return
	}

	scope.AddEvent("Offer created")

	response.WithJSON(writer, http.StatusCreated, res)
}

// GetBookings lists the caller's bookings.
// @Summary Get bookings
// @Description Retrieve the bookings the caller is a party to. Admins see every booking.
// @Tags Booking
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Param status query string false "Filter by status"
// @Success 200 {object} response.Data[dto.GetBookingsResponse]
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/bookings [get]
// @Security BearerAuth
func (handler *Handler) GetBookings(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetBookings")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(request, true)

	status := request.URL.Query().Get(model.FieldStatus)

	if status != "" {
		if err := validator.ValidateVar(status, "oneof="+model.StatusOneOf); err != nil {
			response.WithError(writer, err)

			return
		}
	}

	res, err := handler.service.GetAll(ctx, queryParams, status)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get bookings")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusOK, res)
}

// GetBookingByID retrieves a booking.
// @Summary Get booking by ID
// @Tags Booking
// @Produce json
// @Param id path string true "Booking ID"
// @Success 200 {object} response.Data[dto.BookingResponse]
// @Failure 403 {object} response.Error
// @Failure 404 {object} response.Error
// @Router /v1/bookings/{id} [get]
// @Security BearerAuth
func (handler *Handler) GetBookingByID(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetBookingByID")
	defer scope.End()

	res, err := handler.service.Get(ctx, chi.URLParam(request, "id"))
	if err != nil {
		scope.TraceError(err)

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusOK, res)
}

// AcceptOffer lets the professional accept a pending offer.
// @Summary Accept offer
// @Tags Booking
// @Produce json
// @Param id path string true "Booking ID"
// @Success 200 {object} response.Message
// @Failure 403 {object} response.Error
// @Failure 409 {object} response.Error
// @Router /v1/bookings/{id}/accept [post]
// @Security BearerAuth
func (handler *Handler) AcceptOffer(writer http.ResponseWriter, request *http.Request) {
	handler.transition(writer, request, ".AcceptOffer", handler.service.Accept, "Offer accepted")
}

// DeclineOffer lets either party decline an offer that has not been accepted yet.
// @Summary Decline offer
// @Tags Booking
// @Produce json
// @Param id path string true "Booking ID"
// @Success 200 {object} response.Message
// @Failure 403 {object} response.Error
// @Failure 409 {object} response.Error
// @Router /v1/bookings/{id}/decline [post]
// @Security BearerAuth
func (handler *Handler) DeclineOffer(writer http.ResponseWriter, request *http.Request) {
	handler.transition(writer, request, ".DeclineOffer", handler.service.Decline, "Offer declined")
}

// CancelBooking lets either party cancel before service starts.
// @Summary Cancel booking
// @Tags Booking
// @Produce json
// @Param id path string true "Booking ID"
// @Success 200 {object} response.Message
// @Failure 403 {object} response.Error
// @Failure 409 {object} response.Error
// @Router /v1/bookings/{id}/cancel [post]
// @Security BearerAuth
func (handler *Handler) CancelBooking(writer http.ResponseWriter, request *http.Request) {
	handler.transition(writer, request, ".CancelBooking", handler.service.Cancel, "Booking cancelled")
}

func (handler *Handler) transition(writer http.ResponseWriter, request *http.Request, span string, apply func(ctx context.Context, id string) error, message string) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+span)
	defer scope.End()

	id := chi.URLParam(request, "id")

	if err := apply(ctx, id); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("booking_id", id).Msg("booking transition failed")

		response.WithError(writer, err)

		return
	}

	scope.AddEvent(message)

	response.WithMessage(writer, http.StatusOK, message)
}

// ProviderCheckin records the professional's check-in.
// @Summary Register provider check-in
// @Tags Booking
// @Produce json
// @Param id path string true "Booking ID"
// @Success 200 {object} response.Data[dto.ConfirmationResponse]
// @Failure 403 {object} response.Error
// @Failure 409 {object} response.Error
// @Router /v1/bookings/{id}/checkin/provider [post]
// @Security BearerAuth
func (handler *Handler) ProviderCheckin(writer http.ResponseWriter, request *http.Request) {
	handler.confirmation(writer, request, ".ProviderCheckin", handler.service.RegisterProviderCheckin)
}

// ClientCheckin records the client's check-in.
// @Summary Register client check-in
// @Tags Booking
// @Produce json
// @Param id path string true "Booking ID"
// @Success 200 {object} response.Data[dto.ConfirmationResponse]
// @Failure 403 {object} response.Error
// @Failure 409 {object} response.Error
// @Router /v1/bookings/{id}/checkin/client [post]
// @Security BearerAuth
func (handler *Handler) ClientCheckin(writer http.ResponseWriter, request *http.Request) {
	handler.confirmation(writer, request, ".ClientCheckin", handler.service.RegisterClientCheckin)
}

// CheckConfirmation reports both check-in flags and whether the service is confirmed.
// @Summary Check confirmation
// @Tags Booking
// @Produce json
// @Param id path string true "Booking ID"
// @Success 200 {object} response.Data[dto.ConfirmationResponse]
// @Failure 403 {object} response.Error
// @Failure 404 {object} response.Error
// @Router /v1/bookings/{id}/confirmation [get]
// @Security BearerAuth
func (handler *Handler) CheckConfirmation(writer http.ResponseWriter, request *http.Request) {
	handler.confirmation(writer, request, ".CheckConfirmation", handler.service.CheckConfirmation)
}

func (handler *Handler) confirmation(
	writer http.ResponseWriter,
	request *http.Request,
	span string,
	fetch func(ctx context.Context, id string) (dto.ConfirmationResponse, error),
) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+span)
	defer scope.End()

	id := chi.URLParam(request, "id")

	res, err := fetch(ctx, id)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("booking_id", id).Msg("failed to register check-in")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusOK, res)
}
