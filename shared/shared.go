package shared

import (
	"context"
	"fmt"
	"maps"
	"marketplace/shared/cache"
	"marketplace/shared/constant"
	"marketplace/shared/dto"
	"marketplace/shared/timezone"
	"math"
	"slices"
	"strings"

	"github.com/rs/zerolog/log"
)

func CalculateTotalPage(total, limit int) (res int) {
	if total == 0 || limit <= 0 {
		res = 1
	} else {
		res = int(math.Ceil(float64(total) / float64(limit)))
	}

	return res
}

// Touch copies mod and stamps it with the modification audit columns.
func Touch(mod map[string]any, actor string) map[string]any {
	updated := make(map[string]any, len(mod)+2)
	maps.Copy(updated, mod)

	updated[constant.FieldModifiedAt] = timezone.Now()
	updated[constant.FieldModifiedBy] = actor

	return updated
}

func FilterByID(id, fieldID, table string) dto.FilterGroup {
	return FilterBy(fieldID, id, table)
}

func FilterBy(field string, value any, table string) dto.FilterGroup {
	return dto.FilterGroup{
		Filters: []dto.Clause{
			dto.Filter{
				Field:    field,
				Value:    value,
				Operator: dto.FilterOperatorEq,
				Table:    table,
			},
		},
	}
}

// FilterByIDAndStatus matches a row only while it is still in one of the given states.
func FilterByIDAndStatus(id, fieldID, fieldStatus, table string, statuses ...string) dto.FilterGroup {
	return dto.FilterGroup{
		Operator: dto.FilterGroupOperatorAnd,
		Filters: []dto.Clause{
			dto.Filter{Field: fieldID, Value: id, Operator: dto.FilterOperatorEq, Table: table},
			dto.Filter{Field: fieldStatus, Value: statuses, Operator: dto.FilterOperatorIn, Table: table},
		},
	}
}

func BuildCacheKey(prefix, id string) string {
	return fmt.Sprintf("%s:%s", prefix, id)
}

// BuildCacheKeyWithQuery derives a list cache key. The owner scopes the entry to one caller.
func BuildCacheKeyWithQuery(prefix, owner string, params dto.QueryParams, extras ...string) string {
	parts := []string{
		prefix,
		"list",
		owner,
		fmt.Sprintf("p%d", params.Page),
		fmt.Sprintf("l%d", params.Limit),
		params.SortBy,
		params.SortDir,
	}

	sorted := slices.Clone(extras)
	slices.Sort(sorted)

	parts = append(parts, sorted...)

	return strings.Join(parts, ":")
}

// InvalidateCaches drops a single entity key and every list under its prefix.
func InvalidateCaches(ctx context.Context, redisCache cache.RedisCache, prefix, id string) {
	if id != "" {
		if err := redisCache.Delete(ctx, BuildCacheKey(prefix, id)); err != nil {
			log.Warn().Err(err).Str("prefix", prefix).Str("id", id).Msg("failed to invalidate cache")
		}
	}

	if err := redisCache.Clear(ctx, fmt.Sprintf("%s:list:%s", prefix, constant.Asterix)); err != nil {
		log.Warn().Err(err).Str("prefix", prefix).Msg("failed to invalidate list caches")
	}
}

// Caller returns the user id and role the auth middleware stored on ctx.
func Caller(ctx context.Context) (id, role string) {
	id, _ = ctx.Value(constant.ContextKeyUserID).(string)
	role, _ = ctx.Value(constant.ContextKeyUserRole).(string)

	return id, role
}
