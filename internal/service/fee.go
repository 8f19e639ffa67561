package service

import (
	"math"

	"taskpay/internal/domain"
	"taskpay/internal/models"
)

// FeeSchedule is the fee rule for one payout method: a percentage of the
// requested amount plus a fixed charge, and the method's own floor on
// request size.
type FeeSchedule struct {
	Percentage float64
	FixedCents int64
	MinCents   int64
}

var methodSchedules = map[string]FeeSchedule{
	domain.MethodBkash:  {Percentage: 1.5, FixedCents: 0, MinCents: 5000},
	domain.MethodNagad:  {Percentage: 1.5, FixedCents: 0, MinCents: 5000},
	domain.MethodRocket: {Percentage: 1.8, FixedCents: 0, MinCents: 5000},
	domain.MethodPaypal: {Percentage: 2.5, FixedCents: 30, MinCents: 10000},
	domain.MethodBank:   {Percentage: 0, FixedCents: 200, MinCents: 50000},
}

func SupportedMethod(method string) bool {
	_, ok := methodSchedules[method]
	return ok
}

// MethodSchedule returns the fee schedule for a supported method.
func MethodSchedule(method string) (FeeSchedule, bool) {
	s, ok := methodSchedules[method]
	return s, ok
}

// FeeQuote is a deterministic fee computation, frozen onto the withdrawal at
// request time.
type FeeQuote struct {
	FeeCents            int64
	NetAmountCents      int64
	EffectivePercentage float64
}

// QuoteFee computes the fee and net amount for a request. The package tier's
// discount comes off the method percentage, floored at zero — fees never go
// negative. Pure function, no side effects.
func QuoteFee(method string, amountCents int64, pkg *models.Package) (FeeQuote, error) {
	schedule, ok := methodSchedules[method]
	if !ok {
		return FeeQuote{}, domain.Validationf("unsupported withdrawal method: %s", method)
	}
	effective := schedule.Percentage
	if pkg != nil {
		effective -= pkg.FeeDiscount
	}
	if effective < 0 {
		effective = 0
	}
	fee := int64(math.Round(float64(amountCents)*effective/100)) + schedule.FixedCents
	return FeeQuote{
		FeeCents:            fee,
		NetAmountCents:      amountCents - fee,
		EffectivePercentage: effective,
	}, nil
}

// CheckWithdrawalMinimums applies the two independent floors on a request:
// the method minimum first, then the package-tier minimum.
func CheckWithdrawalMinimums(method string, amountCents int64, pkg *models.Package) error {
	schedule, ok := methodSchedules[method]
	if !ok {
		return domain.Validationf("unsupported withdrawal method: %s", method)
	}
	if amountCents < schedule.MinCents {
		return domain.Validationf("minimum withdrawal for %s is %d.%02d", method, schedule.MinCents/100, schedule.MinCents%100)
	}
	if pkg != nil && amountCents < pkg.MinWithdrawalCents {
		return domain.Validationf("minimum withdrawal for your package is %d.%02d", pkg.MinWithdrawalCents/100, pkg.MinWithdrawalCents%100)
	}
	return nil
}

// HoldPoints converts a requested cash amount to the points debited at hold
// time, rounding up: ceil(amount * pointsPerUnit).
func HoldPoints(amountCents, pointsPerUnit int64) int64 {
	return (amountCents*pointsPerUnit + 99) / 100
}
