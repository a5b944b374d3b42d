package models

import "testing"

func TestPaymentTargetRoundTrip(t *testing.T) {
	var p Payment

	p.SetTarget(UnitTarget(12))
	if p.ResidentialUnitID == nil || *p.ResidentialUnitID != 12 || p.AirbnbBookingID != nil {
		t.Fatalf("unit target stored wrong: %+v", p)
	}
	if got := p.Target(); !got.IsUnit() || got.ID() != 12 {
		t.Errorf("Target() = %+v, want unit 12", got)
	}

	p.SetTarget(BookingTarget(4))
	if p.ResidentialUnitID != nil {
		t.Error("switching to a booking must clear the unit reference")
	}
	if got := p.Target(); !got.IsBooking() || got.ID() != 4 {
		t.Errorf("Target() = %+v, want booking 4", got)
	}

	p.SetTarget(Target{})
	if !p.Target().IsZero() {
		t.Error("expected zero target after clearing")
	}
}

func TestTargetIsZero(t *testing.T) {
	if !UnitTarget(0).IsZero() {
		t.Error("unit target with id 0 should be zero")
	}
	if BookingTarget(1).IsZero() {
		t.Error("booking 1 should not be zero")
	}
}

func TestPaymentDetailsFields(t *testing.T) {
	d := PaymentDetails{Data: map[string]interface{}{"phone_number": "+254700000000", "attempts": 2}}
	f := d.Fields()
	if f["phone_number"] != "+254700000000" {
		t.Errorf("phone_number = %q", f["phone_number"])
	}
	if _, ok := f["attempts"]; ok {
		t.Error("non-string values should be dropped")
	}
}
