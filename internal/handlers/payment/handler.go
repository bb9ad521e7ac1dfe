package payment

import (
	"marketplace/infras/otel"
	"marketplace/internal/domains/payment/model/dto"
	"marketplace/internal/domains/payment/service"
	"marketplace/shared/constant"
	"marketplace/shared/validator"
	"marketplace/transport/http/response"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	service service.Payment
	otel    otel.Otel
}

func New(service service.Payment, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/payments", func(routerGroup chi.Router) {
		routerGroup.Post("/", handler.CapturePayment)
		routerGroup.Get("/{id}", handler.GetPaymentByID)
		routerGroup.Post("/{id}/poll", handler.PollPaymentStatus)
		routerGroup.Post("/{id}/release", handler.ReleasePayment)
	})
}

// CapturePayment charges the payer and holds the funds in escrow.
// @Summary Capture payment
// @Description Create a gateway charge and record a pending, held payment.
// @Tags Payment
// @Accept json
// @Produce json
// @Param request body dto.CaptureRequest true "Capture Request"
// @Success 201 {object} response.Data[dto.CaptureResponse]
// @Failure 400 {object} response.Error "validation"
// @Failure 409 {object} response.Error
// @Failure 500 {object} response.Error "partial_failure"
// @Failure 502 {object} response.Error "gateway"
// @Router /v1/payments [post]
// @Security BearerAuth
func (handler *Handler) CapturePayment(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CapturePayment")
	defer scope.End()

	req := dto.CaptureRequest{}

	if err := validator.Validate(request.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(writer, err)

		return
	}

	res, err := handler.service.Capture(ctx, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to capture payment")

		response.WithError(writer, err)

		return
	}

	scope.AddEvent("Payment captured")

	response.WithJSON(writer, http.StatusCreated, res)
}

// GetPaymentByID retrieves a payment.
// @Summary Get payment by ID
// @Tags Payment
// @Produce json
// @Param id path string true "Payment ID"
// @Success 200 {object} response.Data[dto.PaymentResponse]
// @Failure 404 {object} response.Error
// @Router /v1/payments/{id} [get]
// @Security BearerAuth
func (handler *Handler) GetPaymentByID(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetPaymentByID")
	defer scope.End()

	res, err := handler.service.Get(ctx, chi.URLParam(request, "id"))
	if err != nil {
		scope.TraceError(err)

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusOK, res)
}

// PollPaymentStatus refreshes a pending payment from the gateway.
// @Summary Poll payment status
// @Tags Payment
// @Produce json
// @Param id path string true "Payment ID"
// @Success 200 {object} response.Data[dto.PaymentStatusResponse]
// @Failure 404 {object} response.Error
// @Failure 502 {object} response.Error "gateway"
// @Router /v1/payments/{id}/poll [post]
// @Security BearerAuth
func (handler *Handler) PollPaymentStatus(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".PollPaymentStatus")
	defer scope.End()

	id := chi.URLParam(request, "id")

	res, err := handler.service.PollStatus(ctx, id)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("payment_id", id).Msg("failed to poll payment status")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusOK, res)
}

// ReleasePayment releases held funds of a completed booking.
// @Summary Release payment
// @Tags Payment
// @Produce json
// @Param id path string true "Payment ID"
// @Success 200 {object} response.Message
// @Failure 409 {object} response.Error "already_released or conflict"
// @Router /v1/payments/{id}/release [post]
// @Security BearerAuth
func (handler *Handler) ReleasePayment(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".ReleasePayment")
	defer scope.End()

	id := chi.URLParam(request, "id")

	if err := handler.service.Release(ctx, id); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("payment_id", id).Msg("failed to release payment")

		response.WithError(writer, err)

		return
	}

	response.WithMessage(writer, http.StatusOK, "Payment released")
}
