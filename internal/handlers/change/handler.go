package change

import (
	"encoding/json"
	"fmt"
	"marketplace/infras/otel"
	"marketplace/internal/domains/user/model"
	"marketplace/internal/relay"
	"marketplace/shared"
	"marketplace/shared/constant"
	"marketplace/shared/failure"
	"marketplace/shared/validator"
	"marketplace/transport/http/response"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

const (
	heartbeatInterval = 15 * time.Second
	eventName         = "change"
	watchableTables   = "bookings auctions auction_bids"
)

type Handler struct {
	hub  *relay.Hub
	otel otel.Otel
}

func New(hub *relay.Hub, otel otel.Otel) Handler {
	return Handler{
		hub:  hub,
		otel: otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Get("/changes", handler.StreamChanges)
}

// StreamChanges streams change hints as Server-Sent Events until the client disconnects.
// @Summary Stream change hints
// @Description Hints only name the changed row; clients re-fetch it. Row payloads are sent to admins only.
// @Tags Change
// @Produce text/event-stream
// @Param table query string false "Filter by table (bookings, auctions, auction_bids)"
// @Param id query string false "Filter by row ID"
// @Success 200 {string} string "event stream"
// @Failure 400 {object} response.Error
// @Router /v1/changes [get]
// @Security BearerAuth
func (handler *Handler) StreamChanges(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".StreamChanges")
	defer scope.End()

	filter := relay.Filter{
		Table: request.URL.Query().Get("table"),
		ID:    request.URL.Query().Get("id"),
	}

	if filter.Table != "" {
		if err := validator.ValidateVar(filter.Table, "oneof="+watchableTables); err != nil {
			response.WithError(writer, err)

			return
		}
	}

	flusher, ok := writer.(http.Flusher)
	if !ok {
		response.WithError(writer, failure.Unimplemented("streaming"))

		return
	}

	_, role := shared.Caller(ctx)
	withRows := role == model.RoleAdmin

	events, cancel := handler.hub.Subscribe(filter)
	defer cancel()

	writer.Header().Set(constant.RequestHeaderContentType, constant.ContentTypeEventStream)
	writer.Header().Set("Cache-Control", "no-cache")
	writer.Header().Set("Connection", "keep-alive")
	writer.WriteHeader(http.StatusOK)
	flusher.Flush()

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	sent := 0

	for {
		select {
		case <-ctx.Done():
			scope.SetAttribute("sse.sent", sent)

			return
		case <-heartbeat.C:
			if _, err := fmt.Fprint(writer, ": ping\n\n"); err != nil {
				return
			}

			flusher.Flush()
		case event, open := <-events:
			if !open {
				return
			}

			if !withRows {
				event.Row = nil
			}

			payload, err := json.Marshal(event)
			if err != nil {
				log.Warn().Err(err).Str("table", event.Table).Msg("failed to encode change hint")

				continue
			}

			if _, err = fmt.Fprintf(writer, "event: %s\ndata: %s\n\n", eventName, payload); err != nil {
				return
			}

			flusher.Flush()

			sent++
		}
	}
}
