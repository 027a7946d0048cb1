package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/licensedesk/revenue-api/internal/model"
)

func uintPtr(v uint64) *uint64 { return &v }

// active returns a discount whose window contains now.
func active(id uint64, pct float64, softwareID *uint64, now time.Time) model.Discount {
	return model.Discount{
		ID:         id,
		Percentage: pct,
		StartDate:  now.Add(-time.Hour),
		EndDate:    now.Add(time.Hour),
		SoftwareID: softwareID,
	}
}

func TestResolvePrice(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	swA := uintPtr(1)
	swB := uintPtr(2)

	tests := []struct {
		name      string
		base      int64
		discounts []model.Discount
		software  *uint64
		returning bool
		want      int64
	}{
		{
			name: "highest percentage wins, no stacking",
			base: 100_000,
			discounts: []model.Discount{
				active(2, 20, nil, now),
				active(1, 10, nil, now),
			},
			want: 80_000,
		},
		{
			name: "returning client adds flat five points",
			base: 100_000,
			discounts: []model.Discount{
				active(2, 20, nil, now),
				active(1, 10, nil, now),
			},
			returning: true,
			want:      75_000,
		},
		{
			name:      "no discounts, new client",
			base:      100_000,
			discounts: nil,
			want:      100_000,
		},
		{
			name:      "no discounts, returning client still gets the bonus",
			base:      100_000,
			discounts: nil,
			returning: true,
			want:      95_000,
		},
		{
			name: "software-specific discount beats lower global one",
			base: 100_000,
			discounts: []model.Discount{
				active(2, 30, swA, now),
				active(1, 10, nil, now),
			},
			software: swA,
			want:     70_000,
		},
		{
			name: "other software's discount is ignored",
			base: 100_000,
			discounts: []model.Discount{
				active(2, 30, swB, now),
				active(1, 10, nil, now),
			},
			software: swA,
			want:     90_000,
		},
		{
			name: "nil software filter only matches global discounts",
			base: 100_000,
			discounts: []model.Discount{
				active(2, 30, swA, now),
				active(1, 10, nil, now),
			},
			software: nil,
			want:     90_000,
		},
		{
			name: "combined percentage clamps at 100",
			base: 100_000,
			discounts: []model.Discount{
				active(1, 98, nil, now),
			},
			returning: true,
			want:      0,
		},
		{
			name: "expired discount does not apply",
			base: 100_000,
			discounts: []model.Discount{
				{ID: 1, Percentage: 50, StartDate: now.Add(-48 * time.Hour), EndDate: now.Add(-24 * time.Hour)},
			},
			want: 100_000,
		},
		{
			name: "window bounds are inclusive",
			base: 100_000,
			discounts: []model.Discount{
				{ID: 1, Percentage: 10, StartDate: now, EndDate: now},
			},
			want: 90_000,
		},
		{
			name: "fractional percentage rounds to the nearest grosz",
			base: 99_999,
			discounts: []model.Discount{
				active(1, 12.5, nil, now),
			},
			want: 87_499, // 99999 * 0.875 = 87499.125
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolvePrice(tt.base, tt.discounts, now, tt.software, tt.returning)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolvePriceTieBreak(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	// The repository orders by percentage desc, id asc; with equal
	// percentages the first (lowest-id) entry must win and the result must
	// be identical either way.
	discounts := []model.Discount{
		active(1, 20, nil, now),
		active(2, 20, nil, now),
	}
	assert.Equal(t, int64(80_000), ResolvePrice(100_000, discounts, now, nil, false))
}

func TestResolvePriceNeverNegative(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	got := ResolvePrice(100, []model.Discount{active(1, 100, nil, now)}, now, nil, true)
	assert.Equal(t, int64(0), got)
}
