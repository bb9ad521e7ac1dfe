package auction

import (
	"marketplace/infras/otel"
	"marketplace/internal/domains/auction/model"
	"marketplace/internal/domains/auction/model/dto"
	"marketplace/internal/domains/auction/service"
	"marketplace/shared/constant"
	gDto "marketplace/shared/dto"
	"marketplace/shared/validator"
	"marketplace/transport/http/response"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	service service.Auction
	otel    otel.Otel
}

func New(service service.Auction, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/auctions", func(routerGroup chi.Router) {
		routerGroup.Post("/", handler.CreateAuction)
		routerGroup.Get("/", handler.GetAuctions)
		routerGroup.Get("/{id}", handler.GetAuctionByID)
		routerGroup.Post("/{id}/cancel", handler.CancelAuction)
		routerGroup.Post("/{id}/bids", handler.PlaceBid)
		routerGroup.Get("/{id}/bids", handler.GetAuctionBids)
	})

	router.Post("/bids/{id}/accept", handler.AcceptBid)
}

// CreateAuction opens a reverse auction for a service request.
// @Summary Create auction
// @Tags Auction
// @Accept json
// @Produce json
// @Param request body dto.CreateAuctionRequest true "Create Auction Request"
// @Success 201 {object} response.Data[dto.AuctionResponse]
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/auctions [post]
// @Security BearerAuth
func (handler *Handler) CreateAuction(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CreateAuction")
	defer scope.End()

	req := dto.CreateAuctionRequest{}

	if err := validator.Validate(request.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(writer, err)

		return
	}

	res, err := handler.service.Create(ctx, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to create auction")

		response.WithError(writer, err)

		return
	}

	scope.AddEvent("Auction created")

	response.WithJSON(writer, http.StatusCreated, res)
}

// GetAuctions lists auctions.
// @Summary Get auctions
// @Tags Auction
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Param status query string false "Filter by status (active, completed, cancelled)"
// @Param category query string false "Filter by category"
// @Success 200 {object} response.Data[dto.GetAuctionsResponse]
// @Failure 400 {object} response.Error
// @Router /v1/auctions [get]
// @Security BearerAuth
func (handler *Handler) GetAuctions(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetAuctions")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(request, true)

	status := request.URL.Query().Get(model.FieldStatus)
	category := request.URL.Query().Get(model.FieldCategory)

	if status != "" {
		if err := validator.ValidateVar(status, "oneof="+model.StatusOneOf); err != nil {
			response.WithError(writer, err)

			return
		}
	}

	res, err := handler.service.GetAll(ctx, queryParams, status, category)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get auctions")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusOK, res)
}

// GetAuctionByID retrieves an auction.
// @Summary Get auction by ID
// @Tags Auction
// @Produce json
// @Param id path string true "Auction ID"
// @Success 200 {object} response.Data[dto.AuctionResponse]
// @Failure 404 {object} response.Error
// @Router /v1/auctions/{id} [get]
// @Security BearerAuth
func (handler *Handler) GetAuctionByID(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetAuctionByID")
	defer scope.End()

	res, err := handler.service.Get(ctx, chi.URLParam(request, "id"))
	if err != nil {
		scope.TraceError(err)

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusOK, res)
}

// CancelAuction closes an active auction without a winner.
// @Summary Cancel auction
// @Tags Auction
// @Produce json
// @Param id path string true "Auction ID"
// @Success 200 {object} response.Message
// @Failure 403 {object} response.Error
// @Failure 409 {object} response.Error
// @Router /v1/auctions/{id}/cancel [post]
// @Security BearerAuth
func (handler *Handler) CancelAuction(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CancelAuction")
	defer scope.End()

	id := chi.URLParam(request, "id")

	if err := handler.service.Cancel(ctx, id); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("auction_id", id).Msg("failed to cancel auction")

		response.WithError(writer, err)

		return
	}

	response.WithMessage(writer, http.StatusOK, "Auction cancelled")
}

// PlaceBid submits a bid on an active auction.
// @Summary Place bid
// @Tags Auction
// @Accept json
// @Produce json
// @Param id path string true "Auction ID"
// @Param request body dto.PlaceBidRequest true "Place Bid Request"
// @Success 201 {object} response.Data[dto.BidResponse]
// @Failure 400 {object} response.Error
// @Failure 403 {object} response.Error "not_authorized or ineligible_bidder"
// @Failure 409 {object} response.Error "bid_too_low or already_closed"
// @Router /v1/auctions/{id}/bids [post]
// @Security BearerAuth
func (handler *Handler) PlaceBid(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".PlaceBid")
	defer scope.End()

	req := dto.PlaceBidRequest{}

	if err := validator.Validate(request.Body, &req); err != nil {
		scope.TraceError(err)

		response.WithError(writer, err)

		return
	}

	res, err := handler.service.PlaceBid(ctx, chi.URLParam(request, "id"), req)
	if err != nil {
		scope.TraceError(err)

		response.WithError(writer, err)

		return
	}

	scope.AddEvent("Bid placed")

	response.WithJSON(writer, http.StatusCreated, res)
}

// GetAuctionBids lists the bids of an auction, lowest amount first.
// @Summary Get auction bids
// @Tags Auction
// @Produce json
// @Param id path string true "Auction ID"
// @Success 200 {object} response.Data[[]dto.BidResponse]
// @Failure 404 {object} response.Error
// @Router /v1/auctions/{id}/bids [get]
// @Security BearerAuth
func (handler *Handler) GetAuctionBids(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetAuctionBids")
	defer scope.End()

	res, err := handler.service.ListBids(ctx, chi.URLParam(request, "id"))
	if err != nil {
		scope.TraceError(err)

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusOK, res)
}

// AcceptBid closes the auction on the given bid and opens its booking.
// @Summary Accept bid
// @Tags Auction
// @Produce json
// @Param id path string true "Bid ID"
// @Success 200 {object} response.Data[dto.AcceptBidResponse]
// @Failure 403 {object} response.Error
// @Failure 409 {object} response.Error "already_closed"
// @Router /v1/bids/{id}/accept [post]
// @Security BearerAuth
func (handler *Handler) AcceptBid(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".AcceptBid")
	defer scope.End()

	id := chi.URLParam(request, "id")

	res, err := handler.service.AcceptBid(ctx, id)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("bid_id", id).Msg("failed to accept bid")

		response.WithError(writer, err)

		return
	}

	scope.AddEvent("Bid accepted")

	response.WithJSON(writer, http.StatusOK, res)
}
