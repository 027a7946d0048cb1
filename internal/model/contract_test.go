package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestContractBalances(t *testing.T) {
	c := Contract{
		PriceGrosz: 100_000,
		Payments: []Payment{
			{AmountGrosz: 30_000},
			{AmountGrosz: 20_000, IsRefunded: true},
			{AmountGrosz: 50_000},
		},
	}

	assert.Equal(t, int64(80_000), c.TotalPaidGrosz())
	assert.Equal(t, int64(20_000), c.RemainingGrosz())
	assert.False(t, c.FullyPaid())

	c.Payments = append(c.Payments, Payment{AmountGrosz: 20_000})
	assert.True(t, c.FullyPaid())
	assert.Equal(t, int64(0), c.RemainingGrosz())
}

func TestContractRemainingNeverNegative(t *testing.T) {
	c := Contract{
		PriceGrosz: 10_000,
		Payments:   []Payment{{AmountGrosz: 15_000}},
	}
	assert.Equal(t, int64(0), c.RemainingGrosz())
}

func TestPaymentWindowOpen(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c := Contract{EndDate: now}

	assert.True(t, c.PaymentWindowOpen(now), "end date is inclusive")
	assert.True(t, c.PaymentWindowOpen(now.Add(-time.Hour)))
	assert.False(t, c.PaymentWindowOpen(now.Add(time.Second)))

	c.IsCancelled = true
	assert.False(t, c.PaymentWindowOpen(now))
}
