package shared_test

import (
	"context"
	"errors"
	"marketplace/shared"
	"marketplace/shared/cache/mocks"
	"marketplace/shared/constant"
	"marketplace/shared/dto"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

func TestCalculateTotalPage(t *testing.T) {
	tests := []struct {
		name     string
		total    int
		limit    int
		expected int
	}{
		{name: "zero total", total: 0, limit: 10, expected: 1},
		{name: "exact division", total: 20, limit: 10, expected: 2},
		{name: "remainder rounds up", total: 21, limit: 10, expected: 3},
		{name: "invalid limit", total: 5, limit: 0, expected: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, shared.CalculateTotalPage(tt.total, tt.limit))
		})
	}
}

func TestTouch(t *testing.T) {
	mod := map[string]any{"status": "accepted"}

	result := shared.Touch(mod, "user-1")

	assert.Equal(t, "accepted", result["status"])
	assert.Equal(t, "user-1", result[constant.FieldModifiedBy])
	assert.IsType(t, time.Time{}, result[constant.FieldModifiedAt])
	assert.Len(t, mod, 1, "input map must not be mutated")
}

func TestFilterByIDAndStatus(t *testing.T) {
	filter := shared.FilterByIDAndStatus("b-1", "id", "status", "bookings", "accepted", "in_progress")

	where, args := filter.GetWhereClause()

	assert.Equal(t, "(bookings.id = :id AND bookings.status IN (:status_0, :status_1))", where)
	assert.Equal(t, map[string]any{"id": "b-1", "status_0": "accepted", "status_1": "in_progress"}, args)
}

func TestFilterByID(t *testing.T) {
	filter := shared.FilterByID("123", "id", "payments")

	where, args := filter.GetWhereClause()

	assert.Equal(t, "(payments.id = :id)", where)
	assert.Equal(t, map[string]any{"id": "123"}, args)
}

func TestBuildCacheKeyWithQuery(t *testing.T) {
	params := dto.QueryParams{Page: 2, Limit: 10, SortBy: "created_at", SortDir: "DESC"}

	first := shared.BuildCacheKeyWithQuery("booking", "user-1", params, "status=accepted", "role=client")
	second := shared.BuildCacheKeyWithQuery("booking", "user-1", params, "role=client", "status=accepted")

	assert.Equal(t, first, second, "extras order must not change the key")
	assert.Equal(t, "booking:list:user-1:p2:l10:created_at:DESC:role=client:status=accepted", first)
	assert.Equal(t, "booking:b-1", shared.BuildCacheKey("booking", "b-1"))
}

func TestInvalidateCaches(t *testing.T) {
	ctrl := gomock.NewController(t)
	redisCache := mocks.NewMockRedisCache(ctrl)
	ctx := context.Background()

	redisCache.EXPECT().Delete(ctx, "payment:p-1").Return(errors.New("redis down"))
	redisCache.EXPECT().Clear(ctx, "payment:list:*").Return(nil)

	shared.InvalidateCaches(ctx, redisCache, "payment", "p-1")
}
