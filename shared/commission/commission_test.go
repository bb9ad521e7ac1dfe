package commission_test

import (
	"marketplace/shared/commission"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

var defaultSchedule = commission.Schedule{PlatformFeePercentage: 10, ProviderPercentage: 90}

func TestSplit(t *testing.T) {
	tests := []struct {
		name         string
		amount       float64
		schedule     commission.Schedule
		wantFee      float64
		wantProvider float64
	}{
		{name: "advance payment of 300", amount: 300, schedule: defaultSchedule, wantFee: 30, wantProvider: 270},
		{name: "zero amount", amount: 0, schedule: defaultSchedule, wantFee: 0, wantProvider: 0},
		{name: "cents are rounded", amount: 99.99, schedule: defaultSchedule, wantFee: 10, wantProvider: 89.99},
		{name: "custom schedule", amount: 250, schedule: commission.Schedule{PlatformFeePercentage: 15, ProviderPercentage: 85}, wantFee: 37.5, wantProvider: 212.5},
		{name: "all to provider", amount: 42.42, schedule: commission.Schedule{PlatformFeePercentage: 0, ProviderPercentage: 100}, wantFee: 0, wantProvider: 42.42},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fee, provider := commission.Split(tt.amount, tt.schedule)

			assert.InDelta(t, tt.wantFee, fee, 1e-9)
			assert.InDelta(t, tt.wantProvider, provider, 1e-9)
		})
	}
}

func TestSplit_SharesWithinOneCent(t *testing.T) {
	schedules := []commission.Schedule{
		defaultSchedule,
		{PlatformFeePercentage: 12.5, ProviderPercentage: 87.5},
		{PlatformFeePercentage: 33.3, ProviderPercentage: 66.7},
		{PlatformFeePercentage: 100, ProviderPercentage: 0},
	}

	for _, schedule := range schedules {
		for cents := 0; cents <= 200000; cents += 7 {
			amount := float64(cents) / 100

			fee, provider := commission.Split(amount, schedule)

			if diff := math.Abs(fee + provider - amount); diff > 0.01+1e-9 {
				t.Fatalf("split(%.2f, %+v) = %.2f + %.2f, off by %.4f", amount, schedule, fee, provider, diff)
			}
		}
	}
}

func TestSchedule_Validate(t *testing.T) {
	tests := []struct {
		name     string
		schedule commission.Schedule
		wantErr  error
	}{
		{name: "default", schedule: defaultSchedule},
		{name: "fractional", schedule: commission.Schedule{PlatformFeePercentage: 12.5, ProviderPercentage: 87.5}},
		{name: "sum below 100", schedule: commission.Schedule{PlatformFeePercentage: 10, ProviderPercentage: 80}, wantErr: commission.ErrPercentageSum},
		{name: "negative", schedule: commission.Schedule{PlatformFeePercentage: -10, ProviderPercentage: 110}, wantErr: commission.ErrPercentageRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.schedule.Validate(), tt.wantErr)
		})
	}
}

func TestBidFee(t *testing.T) {
	tests := []struct {
		amount    float64
		wantFee   float64
		wantTotal float64
	}{
		{amount: 120, wantFee: 12, wantTotal: 132},
		{amount: 150, wantFee: 15, wantTotal: 165},
		{amount: 33.33, wantFee: 3.33, wantTotal: 36.66},
		{amount: 1000, wantFee: 100, wantTotal: 1100},
	}

	for _, tt := range tests {
		fee, total := commission.BidFee(tt.amount, 0.10)

		assert.InDelta(t, tt.wantFee, fee, 1e-9)
		assert.InDelta(t, tt.wantTotal, total, 1e-9)
	}
}

func TestChargeable(t *testing.T) {
	tests := []struct {
		amount float64
		want   bool
	}{
		{amount: 0.004, want: false},
		{amount: 0.005, want: true},
		{amount: 0.01, want: true},
		{amount: 0, want: false},
		{amount: -5, want: false},
		{amount: 300, want: true},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, commission.Chargeable(tt.amount), "amount %v", tt.amount)
	}
}
