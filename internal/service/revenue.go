package service

import "context"

// RevenueSource supplies the two aggregates behind the revenue figures.
// Implemented by repository.RevenueRepo; declared here so the composition
// can be tested without a database.
type RevenueSource interface {
	RecognizedGrosz(ctx context.Context, softwareID *uint64) (int64, error)
	OpenContractPricesGrosz(ctx context.Context, softwareID *uint64) (int64, error)
}

// AmountConverter converts a home-currency amount into a target currency.
// Implemented by CurrencyConverter.
type AmountConverter interface {
	Convert(ctx context.Context, amountGrosz int64, targetCurrency string) int64
}

// RevenueService computes the recognized and predicted revenue figures,
// optionally converted into another currency.
type RevenueService struct {
	Revenue   RevenueSource
	Converter AmountConverter
}

// NewRevenueService wires a RevenueService from its dependencies.
func NewRevenueService(r RevenueSource, cc AmountConverter) *RevenueService {
	return &RevenueService{Revenue: r, Converter: cc}
}

// Current returns the recognized revenue: the sum of non-refunded payments
// on signed contracts, filtered by software when softwareID is non-nil,
// converted into the requested currency.
func (s *RevenueService) Current(ctx context.Context, softwareID *uint64, currency string) (int64, error) {
	sum, err := s.Revenue.RecognizedGrosz(ctx, softwareID)
	if err != nil {
		return 0, err
	}
	return s.Converter.Convert(ctx, sum, currency), nil
}

// Predicted returns recognized revenue plus the face value of still-open
// (unsigned, non-cancelled) contracts. The two terms are summed in the
// home currency and converted once; converting each term separately would
// fetch and round twice for the same figure.
func (s *RevenueService) Predicted(ctx context.Context, softwareID *uint64, currency string) (int64, error) {
	recognized, err := s.Revenue.RecognizedGrosz(ctx, softwareID)
	if err != nil {
		return 0, err
	}
	open, err := s.Revenue.OpenContractPricesGrosz(ctx, softwareID)
	if err != nil {
		return 0, err
	}
	return s.Converter.Convert(ctx, recognized+open, currency), nil
}
