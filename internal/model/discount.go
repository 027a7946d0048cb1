package model

import "time"

// Discount is a promotional percentage valid inside an inclusive time
// window. A nil SoftwareID makes the discount global; otherwise it applies
// only to contracts for that software. Discounts never stack: pricing picks
// the single highest applicable percentage.
//
// Fields:
//  ID         – primary key identifier.
//  Name       – campaign name.
//  Percentage – discount percentage, 0.01..100.
//  StartDate  – first instant the discount is active (inclusive).
//  EndDate    – last instant the discount is active (inclusive).
//  SoftwareID – optional software restriction (nil = all software).
type Discount struct {
	ID         uint64    // discounts.id
	Name       string    // discounts.name
	Percentage float64   // discounts.percentage
	StartDate  time.Time // discounts.start_date
	EndDate    time.Time // discounts.end_date
	SoftwareID *uint64   // discounts.software_id (nullable)
}

// ActiveAt reports whether the instant falls inside the inclusive window.
func (d *Discount) ActiveAt(t time.Time) bool {
	return !t.Before(d.StartDate) && !t.After(d.EndDate)
}

// AppliesTo reports whether the discount may be used for the given software
// filter. A nil filter matches only global discounts' semantics in pricing;
// see service.ResolvePrice.
func (d *Discount) AppliesTo(softwareID *uint64) bool {
	if d.SoftwareID == nil {
		return true
	}
	return softwareID != nil && *d.SoftwareID == *softwareID
}
