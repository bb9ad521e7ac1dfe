package dto_test

import (
	"marketplace/shared/constant"
	"marketplace/shared/dto"
	"marketplace/shared/model"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMetadata_FromModel(t *testing.T) {
	createdAt := time.Date(2023, 1, 1, 12, 0, 0, 0, time.UTC)
	modifiedAt := time.Date(2023, 1, 2, 12, 0, 0, 0, time.UTC)

	metadata := &dto.Metadata{}
	metadata.FromModel(model.Metadata{
		CreatedAt:  createdAt,
		ModifiedAt: modifiedAt,
		CreatedBy:  "creator",
		ModifiedBy: "modifier",
	})

	assert.Equal(t, createdAt.Format(constant.DateFormat), metadata.CreatedAt)
	assert.Equal(t, modifiedAt.Format(constant.DateFormat), metadata.ModifiedAt)
	assert.Equal(t, "creator", metadata.CreatedBy)
	assert.Equal(t, "modifier", metadata.ModifiedBy)
}

func TestMetadata_FromModel_ZeroTimes(t *testing.T) {
	metadata := &dto.Metadata{CreatedAt: "stale"}
	metadata.FromModel(model.Metadata{})

	assert.Equal(t, dto.Metadata{}, *metadata)
}

func TestQueryParams_FromRequest(t *testing.T) {
	sortable := []string{"created_at", "price"}

	tests := []struct {
		name           string
		rawQuery       string
		defaultRequest bool
		expected       dto.QueryParams
	}{
		{
			name:     "all parameters",
			rawQuery: "page=2&limit=20&sort_by=price&sort_dir=asc",
			expected: dto.QueryParams{Page: 2, Limit: 20, SortBy: "price", SortDir: "ASC"},
		},
		{
			name:           "defaults",
			defaultRequest: true,
			expected: dto.QueryParams{
				Page:    constant.DefaultValuePage,
				Limit:   constant.DefaultValueLimit,
				SortBy:  constant.DefaultValueSortBy,
				SortDir: constant.DefaultValueSortDir,
			},
		},
		{
			name:     "no defaults",
			expected: dto.QueryParams{},
		},
		{
			name:           "invalid paging falls back",
			rawQuery:       "page=-1&limit=abc",
			defaultRequest: true,
			expected: dto.QueryParams{
				Page:    constant.DefaultValuePage,
				Limit:   constant.DefaultValueLimit,
				SortBy:  constant.DefaultValueSortBy,
				SortDir: constant.DefaultValueSortDir,
			},
		},
		{
			name:     "limit is capped",
			rawQuery: "limit=5000",
			expected: dto.QueryParams{Limit: dto.MaxLimit},
		},
		{
			name:     "unknown sort column is dropped",
			rawQuery: "sort_by=price%3BDROP%20TABLE%20bookings&sort_dir=desc",
			expected: dto.QueryParams{SortDir: "DESC"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/v1/bookings?"+tt.rawQuery, nil)

			params := dto.QueryParams{}
			params.FromRequest(req, tt.defaultRequest, sortable...)

			assert.Equal(t, tt.expected, params)
		})
	}
}

func TestFilterGroup_GetWhereClause(t *testing.T) {
	group := dto.FilterGroup{
		Operator: dto.FilterGroupOperatorAnd,
		Filters: []dto.Clause{
			dto.Filter{Field: "auction_id", Value: "a-1", Operator: dto.FilterOperatorEq, Table: "auction_bids"},
			dto.Filter{Field: "status", ArgName: "bid_status", Value: []string{"pending", "accepted"}, Operator: dto.FilterOperatorIn},
			dto.Filter{Field: "amount", Value: 100.0, Operator: dto.FilterOperatorGreaterEq},
		},
	}

	where, args := group.GetWhereClause()

	assert.Equal(t, "(auction_bids.auction_id = :auction_id AND status IN (:bid_status_0, :bid_status_1) AND amount >= :amount)", where)
	assert.Equal(t, map[string]any{
		"auction_id":   "a-1",
		"bid_status_0": "pending",
		"bid_status_1": "accepted",
		"amount":       100.0,
	}, args)
}

func TestFilter_GetWhereClause(t *testing.T) {
	tests := []struct {
		name      string
		filter    dto.Filter
		wantWhere string
		wantArgs  map[string]any
	}{
		{
			name:      "empty set matches nothing",
			filter:    dto.Filter{Field: "status", Value: []string{}, Operator: dto.FilterOperatorIn},
			wantWhere: "FALSE",
			wantArgs:  map[string]any{},
		},
		{
			name:      "scalar in",
			filter:    dto.Filter{Field: "status", Value: "pending", Operator: dto.FilterOperatorIn},
			wantWhere: "status IN (:status_0)",
			wantArgs:  map[string]any{"status_0": "pending"},
		},
		{
			name:      "is null",
			filter:    dto.Filter{Field: "winning_bid_id", Operator: dto.FilterIsNull, Table: "auctions"},
			wantWhere: "auctions.winning_bid_id IS NULL",
			wantArgs:  map[string]any{},
		},
		{
			name:      "unknown operator",
			filter:    dto.Filter{Field: "title", Value: "x", Operator: "like"},
			wantWhere: "",
			wantArgs:  map[string]any{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			where, args := tt.filter.GetWhereClause()

			assert.Equal(t, tt.wantWhere, where)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestFilterGroup_Nested(t *testing.T) {
	group := dto.FilterGroup{
		Filters: []dto.Clause{
			dto.Filter{Field: "status", Value: "accepted", Operator: dto.FilterOperatorEq},
			nil,
			dto.FilterGroup{
				Operator: dto.FilterGroupOperatorOr,
				Filters: []dto.Clause{
					dto.Filter{Field: "client_id", ArgName: "party_a", Value: "u-1", Operator: dto.FilterOperatorEq},
					dto.Filter{Field: "professional_id", ArgName: "party_b", Value: "u-1", Operator: dto.FilterOperatorEq},
				},
			},
			dto.FilterGroup{},
		},
	}

	where, args := group.GetWhereClause()

	assert.Equal(t, "(status = :status AND (client_id = :party_a OR professional_id = :party_b))", where)
	assert.Len(t, args, 3)
}
