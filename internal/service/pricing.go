// Package service holds the business rules of the revenue API: pricing,
// contract lifecycle, revenue aggregation and currency conversion. The
// rules themselves are pure functions where possible; the service structs
// wrap them with repository access and transactions.
package service

import (
	"context"
	"math"
	"time"

	"github.com/licensedesk/revenue-api/internal/model"
	"github.com/licensedesk/revenue-api/internal/repository"
)

// ReturningClientBonus is the flat percentage added for clients who
// already signed at least one contract.
const ReturningClientBonus = 5.0

// ResolvePrice applies the discount rules to a base price in grosz:
// among the discounts active at now and applicable to the software filter,
// the single highest percentage wins (the slice is expected ordered by
// percentage descending, id ascending, so the first applicable entry is
// the winner and ties resolve to the lowest id). Returning clients get a
// flat 5-point bonus on top. The combined percentage is clamped to
// [0,100] and the result rounded to the nearest grosz.
func ResolvePrice(basePriceGrosz int64, discounts []model.Discount, now time.Time, softwareID *uint64, returningClient bool) int64 {
	var pct float64
	for _, d := range discounts {
		if d.ActiveAt(now) && d.AppliesTo(softwareID) {
			pct = d.Percentage
			break
		}
	}
	if returningClient {
		pct += ReturningClientBonus
	}
	if pct > 100 {
		pct = 100
	}
	if pct < 0 {
		pct = 0
	}
	return int64(math.Round(float64(basePriceGrosz) * (1 - pct/100)))
}

// PricingService resolves final contract prices from the discount table.
type PricingService struct {
	Discounts *repository.DiscountRepo
}

// NewPricingService returns a PricingService over the given repository.
func NewPricingService(d *repository.DiscountRepo) *PricingService {
	return &PricingService{Discounts: d}
}

// FinalPrice loads the currently active discounts and resolves the final
// price for a base price and software, honoring returning-client status.
func (s *PricingService) FinalPrice(ctx context.Context, basePriceGrosz int64, softwareID *uint64, returningClient bool) (int64, error) {
	now := time.Now().UTC()
	active, err := s.Discounts.ActiveAt(ctx, now)
	if err != nil {
		return 0, err
	}
	return ResolvePrice(basePriceGrosz, active, now, softwareID, returningClient), nil
}
