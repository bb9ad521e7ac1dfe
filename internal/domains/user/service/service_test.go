package service_test

import (
	"context"
	"errors"
	"marketplace/config"
	otelMocks "marketplace/infras/otel/mocks"
	"marketplace/internal/domains/user/mocks"
	"marketplace/internal/domains/user/model"
	"marketplace/internal/domains/user/model/dto"
	"marketplace/internal/domains/user/service"
	cacheMocks "marketplace/shared/cache/mocks"
	"marketplace/shared/constant"
	"marketplace/shared/failure"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestGet(t *testing.T) {
	ctx := context.Background()
	cfg := &config.Config{}

	t.Run("cache hit", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := mocks.NewMockUser(ctrl)
		redisCache := cacheMocks.NewMockRedisCache(ctrl)

		redisCache.EXPECT().Get(gomock.Any(), "user:u-1", gomock.Any()).
			DoAndReturn(func(_ context.Context, _ string, value any) error {
				*value.(*dto.UserResponse) = dto.UserResponse{ID: "u-1", Role: model.RoleProfessional}

				return nil
			})

		res, err := service.New(repo, cfg, redisCache, otelMocks.NewOtel()).Get(ctx, "u-1")

		require.NoError(t, err)
		assert.Equal(t, model.RoleProfessional, res.Role)
	})

	t.Run("not found", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := mocks.NewMockUser(ctrl)
		redisCache := cacheMocks.NewMockRedisCache(ctrl)

		redisCache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("miss"))
		repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.User{}, nil)

		_, err := service.New(repo, cfg, redisCache, otelMocks.NewOtel()).Get(ctx, "u-404")

		assert.True(t, failure.IsKind(err, failure.KindNotFound))
	})

	t.Run("loaded from store", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := mocks.NewMockUser(ctrl)
		redisCache := cacheMocks.NewMockRedisCache(ctrl)

		redisCache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("miss"))
		repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.User{ID: "u-2", Role: model.RoleClient, AverageRating: 4.2}, nil)
		redisCache.EXPECT().Save(gomock.Any(), "user:u-2", gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

		res, err := service.New(repo, cfg, redisCache, otelMocks.NewOtel()).Get(ctx, "u-2")

		require.NoError(t, err)
		assert.InDelta(t, 4.2, res.AverageRating, 1e-9)
	})
}

func TestGet_EmailVisibility(t *testing.T) {
	stored := dto.UserResponse{ID: "u-2", Email: "pro@example.com", Role: model.RoleProfessional}

	tests := []struct {
		name      string
		ctx       context.Context
		wantEmail string
	}{
		{name: "owner", ctx: callerCtx("u-2", model.RoleProfessional), wantEmail: "pro@example.com"},
		{name: "admin", ctx: callerCtx("u-9", model.RoleAdmin), wantEmail: "pro@example.com"},
		{name: "other client", ctx: callerCtx("u-1", model.RoleClient)},
		{name: "anonymous", ctx: context.Background()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			repo := mocks.NewMockUser(ctrl)
			redisCache := cacheMocks.NewMockRedisCache(ctrl)

			redisCache.EXPECT().Get(gomock.Any(), "user:u-2", gomock.Any()).
				DoAndReturn(func(_ context.Context, _ string, value any) error {
					*value.(*dto.UserResponse) = stored

					return nil
				})

			res, err := service.New(repo, &config.Config{}, redisCache, otelMocks.NewOtel()).Get(tt.ctx, "u-2")

			require.NoError(t, err)
			assert.Equal(t, tt.wantEmail, res.Email)
		})
	}
}

func TestMe(t *testing.T) {
	t.Run("anonymous", func(t *testing.T) {
		ctrl := gomock.NewController(t)

		_, err := service.New(mocks.NewMockUser(ctrl), &config.Config{}, cacheMocks.NewMockRedisCache(ctrl), otelMocks.NewOtel()).
			Me(context.Background())

		assert.True(t, failure.IsKind(err, failure.KindUnauthorized))
	})

	t.Run("caller profile keeps email", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := mocks.NewMockUser(ctrl)
		redisCache := cacheMocks.NewMockRedisCache(ctrl)

		redisCache.EXPECT().Get(gomock.Any(), "user:u-1", gomock.Any()).Return(errors.New("miss"))
		repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.User{ID: "u-1", Email: "me@example.com", Role: model.RoleClient}, nil)
		redisCache.EXPECT().Save(gomock.Any(), "user:u-1", gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

		res, err := service.New(repo, &config.Config{}, redisCache, otelMocks.NewOtel()).Me(callerCtx("u-1", model.RoleClient))

		require.NoError(t, err)
		assert.Equal(t, "me@example.com", res.Email)
	})
}

func callerCtx(id, role string) context.Context {
	ctx := context.WithValue(context.Background(), constant.ContextKeyUserID, id)

	return context.WithValue(ctx, constant.ContextKeyUserRole, role)
}

