package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDiscountActiveAt(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	d := Discount{Percentage: 10, StartDate: now.Add(-time.Hour), EndDate: now.Add(time.Hour)}

	assert.True(t, d.ActiveAt(now))
	assert.True(t, d.ActiveAt(d.StartDate), "window start is inclusive")
	assert.True(t, d.ActiveAt(d.EndDate), "window end is inclusive")
	assert.False(t, d.ActiveAt(d.StartDate.Add(-time.Second)))
	assert.False(t, d.ActiveAt(d.EndDate.Add(time.Second)))
}

func TestDiscountAppliesTo(t *testing.T) {
	sw := uint64(3)
	other := uint64(4)

	scoped := Discount{Percentage: 10, SoftwareID: &sw}
	assert.True(t, scoped.AppliesTo(&sw))
	assert.False(t, scoped.AppliesTo(&other))
	assert.False(t, scoped.AppliesTo(nil))

	global := Discount{Percentage: 5}
	assert.True(t, global.AppliesTo(&sw))
	assert.True(t, global.AppliesTo(nil))
}
