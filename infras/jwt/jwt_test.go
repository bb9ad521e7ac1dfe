package jwt_test

import (
	"context"
	"marketplace/config"
	"marketplace/infras/jwt"
	otelMocks "marketplace/infras/otel/mocks"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(secret string, expireMin int) jwt.JWT {
	cfg := &config.Config{}
	cfg.App.Name = "marketplace"
	cfg.JWT.AccessSecret = secret
	cfg.JWT.AccessExpireMin = expireMin

	return jwt.New(cfg, otelMocks.NewOtel())
}

func TestValidateToken(t *testing.T) {
	service := newService("secret", 15)

	token, err := service.GenerateToken("u-1", "pro@example.com", "professional")
	require.NoError(t, err)

	claims, err := service.ValidateToken(context.Background(), token, jwt.AccessToken)

	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, "professional", claims.Role)
}

func TestValidateToken_Rejections(t *testing.T) {
	expired, err := newService("secret", -1).GenerateToken("u-1", "a@example.com", "client")
	require.NoError(t, err)

	foreign, err := newService("other", 15).GenerateToken("u-1", "a@example.com", "client")
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
		err   error
	}{
		{name: "expired", token: expired, err: jwt.ErrExpiredToken},
		{name: "wrong secret", token: foreign, err: jwt.ErrInvalidToken},
		{name: "garbage", token: "not.a.token", err: jwt.ErrInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newService("secret", 15).ValidateToken(context.Background(), tt.token, jwt.AccessToken)

			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestExtractTokenFromHeader(t *testing.T) {
	token, err := jwt.ExtractTokenFromHeader("Bearer abc.def")
	require.NoError(t, err)
	assert.Equal(t, "abc.def", token)

	for _, header := range []string{"", "Basic abc", "Bearer "} {
		_, err := jwt.ExtractTokenFromHeader(header)
		assert.Error(t, err, header)
	}
}
