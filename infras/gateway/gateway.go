package gateway

//go:generate go run go.uber.org/mock/mockgen -source=./gateway.go -destination=./mocks/gateway_mock.go -package=mocks

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"marketplace/config"
	"marketplace/infras/otel"
	"marketplace/shared/constant"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	paymentsPath      = "/v1/payments"
	defaultTimeout    = 15 * time.Second
	maxErrorBodyBytes = 4 << 10
)

type Payer struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name,omitempty"`
}

type CreatePaymentRequest struct {
	TransactionAmount float64 `json:"transaction_amount"`
	Description       string  `json:"description"`
	PaymentMethodID   string  `json:"payment_method_id"`
	Payer             Payer   `json:"payer"`
	ExternalReference string  `json:"external_reference,omitempty"`
	NotificationURL   string  `json:"notification_url,omitempty"`
}

type TransactionData struct {
	QRCode    string `json:"qr_code"`
	TicketURL string `json:"ticket_url"`
}

type Payment struct {
	ID                 json.Number `json:"id"`
	Status             string      `json:"status"`
	StatusDetail       string      `json:"status_detail"`
	PointOfInteraction struct {
		TransactionData TransactionData `json:"transaction_data"`
	} `json:"point_of_interaction"`
}

func (p Payment) Reference() string {
	return p.ID.String()
}

// Error is a non-2xx answer from the gateway.
type Error struct {
	StatusCode int
	Body       string
}

func (e *Error) Error() string {
	return fmt.Sprintf("gateway responded %d: %s", e.StatusCode, e.Body)
}

// Gateway talks to the external payment processor. Calls are never retried here.
type Gateway interface {
	CreatePayment(ctx context.Context, idempotencyKey string, req CreatePaymentRequest) (Payment, error)
	GetPayment(ctx context.Context, reference string) (Payment, error)
}

type gatewayImpl struct {
	client  *http.Client
	baseURL string
	token   string
	notify  string
	otel    otel.Otel
}

func New(cfg *config.Config, otel otel.Otel) Gateway {
	timeout := time.Duration(cfg.External.Gateway.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &gatewayImpl{
		client:  &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(cfg.External.Gateway.BaseURL, "/"),
		token:   cfg.External.Gateway.AccessToken,
		notify:  cfg.External.Gateway.NotificationURL,
		otel:    otel,
	}
}

func (g *gatewayImpl) CreatePayment(ctx context.Context, idempotencyKey string, req CreatePaymentRequest) (res Payment, err error) {
	ctx, scope := g.otel.NewScope(ctx, constant.OtelExternalScopeName, constant.OtelExternalScopeName+".gateway.CreatePayment")
	defer scope.End()
	defer scope.TraceIfError(err)

	if req.NotificationURL == "" {
		req.NotificationURL = g.notify
	}

	body, err := json.Marshal(req)
	if err != nil {
		return res, fmt.Errorf("failed to encode payment request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+paymentsPath, bytes.NewReader(body))
	if err != nil {
		return res, fmt.Errorf("failed to build payment request: %w", err)
	}

	httpReq.Header.Set(constant.RequestHeaderContentType, constant.ContentTypeJSON)
	httpReq.Header.Set(constant.RequestHeaderIdempotencyKey, idempotencyKey)

	scope.SetAttribute("payment.method", req.PaymentMethodID)

	if err = g.do(httpReq, &res); err != nil {
		log.Error().Err(err).Str("idempotency_key", idempotencyKey).Msg("gateway rejected payment creation")

		return res, err
	}

	return res, nil
}

func (g *gatewayImpl) GetPayment(ctx context.Context, reference string) (res Payment, err error) {
	ctx, scope := g.otel.NewScope(ctx, constant.OtelExternalScopeName, constant.OtelExternalScopeName+".gateway.GetPayment")
	defer scope.End()
	defer scope.TraceIfError(err)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+paymentsPath+"/"+url.PathEscape(reference), nil)
	if err != nil {
		return res, fmt.Errorf("failed to build payment lookup: %w", err)
	}

	if err = g.do(httpReq, &res); err != nil {
		log.Error().Err(err).Str("reference", reference).Msg("failed to look up gateway payment")

		return res, err
	}

	return res, nil
}

func (g *gatewayImpl) do(req *http.Request, out any) error {
	req.Header.Set(constant.RequestHeaderAuthorization, "Bearer "+g.token)

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call gateway: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))

		return &Error{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}

	decoder := json.NewDecoder(resp.Body)
	decoder.UseNumber()

	if err := decoder.Decode(out); err != nil {
		return fmt.Errorf("failed to decode gateway response: %w", err)
	}

	return nil
}
