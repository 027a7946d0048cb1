package model

import "time"

// Contract is a time-boxed sales agreement between a client and one
// software product. It starts open, becomes signed once cumulative
// non-refunded payments reach the price, or cancelled when the expiry
// sweep finds it unpaid past its end date. Signed and cancelled are both
// terminal.
//
// Fields:
//  ID              – primary key identifier.
//  ClientID        – owning client.
//  SoftwareID      – software being licensed.
//  StartDate       – beginning of the contract period (UTC).
//  EndDate         – end of the payment window (UTC).
//  PriceGrosz      – discounted total price in grosz, fixed at creation.
//  SoftwareVersion – version label snapshotted from the catalog.
//  SupportYears    – additional support years bought (0..3).
//  IsSigned        – terminal signed flag.
//  IsCancelled     – terminal cancelled flag.
//  CreatedAt       – creation timestamp.
//  Payments        – payments recorded against the contract, when loaded.
type Contract struct {
	ID              uint64    // contracts.id
	ClientID        uint64    // contracts.client_id
	SoftwareID      uint64    // contracts.software_id
	StartDate       time.Time // contracts.start_date
	EndDate         time.Time // contracts.end_date
	PriceGrosz      int64     // contracts.price_grosz
	SoftwareVersion string    // contracts.software_version
	SupportYears    int       // contracts.support_years
	IsSigned        bool      // contracts.is_signed
	IsCancelled     bool      // contracts.is_cancelled
	CreatedAt       time.Time // contracts.created_at

	Payments []Payment // loaded by ContractRepo.GetByID / ListByClient
}

// TotalPaidGrosz sums the non-refunded payments loaded on the contract.
func (c *Contract) TotalPaidGrosz() int64 {
	var sum int64
	for _, p := range c.Payments {
		if !p.IsRefunded {
			sum += p.AmountGrosz
		}
	}
	return sum
}

// FullyPaid reports whether non-refunded payments cover the price.
func (c *Contract) FullyPaid() bool {
	return c.TotalPaidGrosz() >= c.PriceGrosz
}

// RemainingGrosz returns the outstanding balance, never negative.
func (c *Contract) RemainingGrosz() int64 {
	if rem := c.PriceGrosz - c.TotalPaidGrosz(); rem > 0 {
		return rem
	}
	return 0
}

// PaymentWindowOpen reports whether a payment may still be recorded at the
// given instant: the contract must not be cancelled and the instant must
// not be past the end date.
func (c *Contract) PaymentWindowOpen(now time.Time) bool {
	return !c.IsCancelled && !now.After(c.EndDate)
}

// Payment is a single installment recorded against a contract. Refunded
// payments keep their row; only the flag and refund timestamp change.
//
// Fields:
//  ID          – primary key identifier.
//  ContractID  – owning contract.
//  AmountGrosz – paid amount in grosz, always positive.
//  PaymentDate – when the payment was recorded (UTC).
//  IsRefunded  – set when the expiry sweep refunds the payment.
//  RefundDate  – refund timestamp, nil while not refunded.
type Payment struct {
	ID          uint64     // payments.id
	ContractID  uint64     // payments.contract_id
	AmountGrosz int64      // payments.amount_grosz
	PaymentDate time.Time  // payments.payment_date
	IsRefunded  bool       // payments.is_refunded
	RefundDate  *time.Time // payments.refund_date (nullable)
}
