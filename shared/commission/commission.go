// Package commission splits gross amounts between the platform and the provider.
//
// All results are rounded to two decimal places, half away from zero. Because each
// share is rounded independently the two shares may differ from the gross amount by
// one cent; callers accept that approximation.
package commission

import (
	"errors"
	"math"
)

const (
	hundred   = 100.0
	tolerance = 1e-9

	// MinAmount is the smallest chargeable amount, one cent.
	MinAmount = 0.01
)

var (
	ErrPercentageRange = errors.New("commission percentages must be between 0 and 100")
	ErrPercentageSum   = errors.New("commission percentages must add up to 100")
)

// Schedule is the platform/provider split in percent.
type Schedule struct {
	PlatformFeePercentage float64 `json:"platform_fee_percentage" validate:"gte=0,lte=100"`
	ProviderPercentage    float64 `json:"provider_percentage"     validate:"gte=0,lte=100"`
}

func (s Schedule) Validate() error {
	if s.PlatformFeePercentage < 0 || s.PlatformFeePercentage > hundred ||
		s.ProviderPercentage < 0 || s.ProviderPercentage > hundred {
		return ErrPercentageRange
	}

	if math.Abs(s.PlatformFeePercentage+s.ProviderPercentage-hundred) > tolerance {
		return ErrPercentageSum
	}

	return nil
}

// Round rounds v to two decimal places.
func Round(v float64) float64 {
	return math.Round(v*hundred) / hundred
}

// Chargeable reports whether amount is at least one cent once rounded.
func Chargeable(amount float64) bool {
	return Round(amount) >= MinAmount
}

// Split returns the platform fee and the provider's net amount for amount.
func Split(amount float64, schedule Schedule) (platformFee, providerAmount float64) {
	platformFee = Round(amount * schedule.PlatformFeePercentage / hundred)
	providerAmount = Round(amount * schedule.ProviderPercentage / hundred)

	return platformFee, providerAmount
}

// BidFee returns the service fee charged on an auction bid and the bid total.
func BidFee(amount, rate float64) (serviceFee, total float64) {
	serviceFee = Round(amount * rate)
	total = Round(amount + serviceFee)

	return serviceFee, total
}
