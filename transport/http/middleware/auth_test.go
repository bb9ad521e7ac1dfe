package middleware_test

import (
	"context"
	"marketplace/config"
	"marketplace/infras/jwt"
	jwtMocks "marketplace/infras/jwt/mocks"
	otelMocks "marketplace/infras/otel/mocks"
	"marketplace/permissions"
	"marketplace/shared"
	"marketplace/transport/http/middleware"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

func newRouter(t *testing.T, validator jwt.JWT, apiKey string) http.Handler {
	t.Helper()

	cfg := &config.Config{}
	cfg.App.APIKey = apiKey

	perms := &permissions.PermissionData{
		Endpoints: []permissions.Permission{
			{Path: "/v1/payments/{id}/release", Method: http.MethodPost, Roles: []string{"admin"}},
			{Path: "/v1/payments/{id}", Method: http.MethodGet, Roles: []string{"client", "admin"}},
			{Path: "/v1/open", Method: http.MethodGet, Public: true},
		},
	}

	authRole := middleware.NewAuthRoleMiddleware(validator, otelMocks.NewOtel(), perms, cfg)

	ok := func(w http.ResponseWriter, r *http.Request) {
		id, role := shared.Caller(r.Context())
		w.Header().Set("X-Caller", id+"/"+role)
		w.WriteHeader(http.StatusOK)
	}

	router := chi.NewRouter()
	router.Use(authRole.APIKey, authRole.Auth, authRole.RBAC)
	router.Post("/v1/payments/{id}/release", ok)
	router.Get("/v1/payments/{id}", ok)
	router.Get("/v1/open", ok)
	router.Get("/v1/unlisted", ok)

	return router
}

func TestAuth(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		path       string
		header     string
		apiKey     string
		claims     *jwt.Claims
		err        error
		wantStatus int
		wantCaller string
	}{
		{name: "missing header", method: http.MethodGet, path: "/v1/payments/p-1", wantStatus: http.StatusUnauthorized},
		{name: "malformed header", method: http.MethodGet, path: "/v1/payments/p-1", header: "Token x", wantStatus: http.StatusUnauthorized},
		{name: "expired token", method: http.MethodGet, path: "/v1/payments/p-1", header: "Bearer t", err: jwt.ErrExpiredToken, wantStatus: http.StatusUnauthorized},
		{name: "empty claims", method: http.MethodGet, path: "/v1/payments/p-1", header: "Bearer t", claims: &jwt.Claims{}, wantStatus: http.StatusUnauthorized},
		{
			name: "valid token", method: http.MethodGet, path: "/v1/payments/p-1", header: "Bearer t",
			claims: &jwt.Claims{UserID: "u-1", Role: "client"}, wantStatus: http.StatusOK, wantCaller: "u-1/client",
		},
		{
			name: "role not allowed", method: http.MethodPost, path: "/v1/payments/p-1/release", header: "Bearer t",
			claims: &jwt.Claims{UserID: "u-1", Role: "client"}, wantStatus: http.StatusForbidden,
		},
		{
			name: "admin allowed", method: http.MethodPost, path: "/v1/payments/p-1/release", header: "Bearer t",
			claims: &jwt.Claims{UserID: "u-9", Role: "admin"}, wantStatus: http.StatusOK, wantCaller: "u-9/admin",
		},
		{
			name: "route missing from table", method: http.MethodGet, path: "/v1/unlisted", header: "Bearer t",
			claims: &jwt.Claims{UserID: "u-1", Role: "admin"}, wantStatus: http.StatusForbidden,
		},
		{name: "public route", method: http.MethodGet, path: "/v1/open", wantStatus: http.StatusOK, wantCaller: "/"},
		{name: "internal api key runs as admin", method: http.MethodPost, path: "/v1/payments/p-1/release", apiKey: "k-1", wantStatus: http.StatusOK, wantCaller: "/admin"},
		{name: "wrong api key", method: http.MethodGet, path: "/v1/payments/p-1", apiKey: "nope", wantStatus: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)

			validator := jwtMocks.NewMockJWT(ctrl)
			if tt.claims != nil || tt.err != nil {
				validator.EXPECT().ValidateToken(gomock.Any(), "t", jwt.AccessToken).Return(tt.claims, tt.err)
			}

			request := httptest.NewRequestWithContext(context.Background(), tt.method, tt.path, nil)
			if tt.header != "" {
				request.Header.Set("Authorization", tt.header)
			}

			if tt.apiKey != "" {
				request.Header.Set("X-API-Key", tt.apiKey)
			}

			recorder := httptest.NewRecorder()

			newRouter(t, validator, "k-1").ServeHTTP(recorder, request)

			assert.Equal(t, tt.wantStatus, recorder.Code)

			if tt.wantCaller != "" {
				assert.Equal(t, tt.wantCaller, recorder.Header().Get("X-Caller"))
			}
		})
	}
}
