package service

import (
	"context"
	"fmt"
	"marketplace/config"
	"marketplace/infras/otel"
	"marketplace/internal/domains/user/model"
	"marketplace/internal/domains/user/model/dto"
	"marketplace/internal/domains/user/repository"
	"marketplace/shared"
	"marketplace/shared/cache"
	"marketplace/shared/constant"
	"marketplace/shared/failure"

	"github.com/rs/zerolog/log"
)

// User serves party profiles. Profiles are owned by the identity service; this side only reads them.
type User interface {
	Get(ctx context.Context, id string) (dto.UserResponse, error)
	Me(ctx context.Context) (dto.UserResponse, error)
}

type serviceImpl struct {
	repo  repository.User
	cfg   *config.Config
	cache cache.RedisCache
	otel  otel.Otel
}

func New(repo repository.User, cfg *config.Config, cache cache.RedisCache, otel otel.Otel) User {
	return &serviceImpl{
		repo:  repo,
		cfg:   cfg,
		cache: cache,
		otel:  otel,
	}
}

// Get returns a profile. The email address is only shown to its owner and to admins.
func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.UserResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".user.Get")
	defer scope.End()
	defer scope.TraceIfError(err)

	res, err = s.profile(ctx, id)
	if err != nil {
		return res, err
	}

	callerID, role := shared.Caller(ctx)
	if callerID != res.ID && role != model.RoleAdmin {
		res.Email = constant.Empty
	}

	return res, nil
}

func (s *serviceImpl) Me(ctx context.Context) (res dto.UserResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".user.Me")
	defer scope.End()
	defer scope.TraceIfError(err)

	callerID, _ := shared.Caller(ctx)
	if callerID == constant.Empty {
		return res, failure.Unauthorized("no authenticated user") //nolint:wrapcheck
	}

	return s.profile(ctx, callerID)
}

func (s *serviceImpl) profile(ctx context.Context, id string) (res dto.UserResponse, err error) {
	cacheKey := shared.BuildCacheKey(constant.CacheKeyUser, id)

	if err = s.cache.Get(ctx, cacheKey, &res); err == nil {
		return res, nil
	}

	user, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Str("user_id", id).Msg("failed to get user")

		return res, fmt.Errorf("failed to get user: %w", err)
	}

	if user.ID == constant.Empty {
		return res, failure.NotFound("user not found") //nolint:wrapcheck
	}

	res.FromModel(user)

	go func(res dto.UserResponse) {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Str("user_id", id).Msg("failed to cache user")
		}
	}(res)

	return res, nil
}
