package models

import "bellissimo/internal/domain"

// Target is what a payment pays for: a residential unit or an Airbnb booking, never both.
// The zero value is no target.
type Target struct {
	kind string
	id   uint
}

func UnitTarget(unitID uint) Target {
	return Target{kind: domain.TargetKindUnit, id: unitID}
}

func BookingTarget(bookingID uint) Target {
	return Target{kind: domain.TargetKindBooking, id: bookingID}
}

func (t Target) Kind() string { return t.kind }
func (t Target) ID() uint     { return t.id }
func (t Target) IsZero() bool { return t.kind == "" || t.id == 0 }
func (t Target) IsUnit() bool { return t.kind == domain.TargetKindUnit }

func (t Target) IsBooking() bool { return t.kind == domain.TargetKindBooking }
