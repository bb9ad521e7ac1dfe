package middleware_test

import (
	"context"
	"errors"
	"marketplace/config"
	otelMocks "marketplace/infras/otel/mocks"
	cacheMocks "marketplace/shared/cache/mocks"
	"marketplace/transport/http/middleware"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

func newLimited(t *testing.T, enable bool) (http.Handler, *cacheMocks.MockRedisCache) {
	t.Helper()

	ctrl := gomock.NewController(t)
	cache := cacheMocks.NewMockRedisCache(ctrl)

	cfg := &config.Config{}
	cfg.App.RateLimiter.Enable = enable
	cfg.App.RateLimiter.MaxRequests = 2
	cfg.App.RateLimiter.WindowSeconds = 60

	app := middleware.NewAppMiddleware(otelMocks.NewOtel(), cfg, cache)

	handler := app.RateLimit()(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	return handler, cache
}

func serve(handler http.Handler, headers map[string]string) *httptest.ResponseRecorder {
	request := httptest.NewRequestWithContext(context.Background(), http.MethodGet, "/v1/auctions", nil)
	request.RemoteAddr = "10.0.0.7:5123"

	for k, v := range headers {
		request.Header.Set(k, v)
	}

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)

	return recorder
}

func TestRateLimit(t *testing.T) {
	tests := []struct {
		name          string
		count         int64
		err           error
		wantStatus    int
		wantRemaining string
	}{
		{name: "first request", count: 1, wantStatus: http.StatusNoContent, wantRemaining: "1"},
		{name: "at the limit", count: 2, wantStatus: http.StatusNoContent, wantRemaining: "0"},
		{name: "over the limit", count: 3, wantStatus: http.StatusTooManyRequests, wantRemaining: "0"},
		{name: "redis down", err: errors.New("dial tcp: refused"), wantStatus: http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, cache := newLimited(t, true)

			cache.EXPECT().Incr(gomock.Any(), "limiter:10.0.0.7|unknown", 60).Return(tt.count, tt.err)

			recorder := serve(handler, nil)

			assert.Equal(t, tt.wantStatus, recorder.Code)
			assert.Equal(t, tt.wantRemaining, recorder.Header().Get("X-RateLimit-Remaining"))
		})
	}
}

func TestRateLimit_KeyUsesForwardedHop(t *testing.T) {
	handler, cache := newLimited(t, true)

	cache.EXPECT().Incr(gomock.Any(), "limiter:203.0.113.9|curl/8", 60).Return(int64(1), nil)

	recorder := serve(handler, map[string]string{
		"X-Forwarded-For": "203.0.113.9, 10.0.0.1",
		"User-Agent":      "curl/8",
	})

	assert.Equal(t, http.StatusNoContent, recorder.Code)
}

func TestRateLimit_Disabled(t *testing.T) {
	handler, _ := newLimited(t, false)

	assert.Equal(t, http.StatusNoContent, serve(handler, nil).Code)
}
