package models

import (
	"time"

	"bellissimo/internal/domain"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Payment is money moving from a payer to a landlord for one unit or booking.
// Storage keeps two nullable target columns; use Target/SetTarget to read and write them.
type Payment struct {
	ID                   uint            `gorm:"primaryKey" json:"id"`
	PayerID              uint            `gorm:"not null;index" json:"payer_id"`
	LandlordID           uint            `gorm:"not null;index" json:"landlord_id"`
	ResidentialUnitID    *uint           `gorm:"index" json:"residential_unit_id,omitempty"`
	AirbnbBookingID      *uint           `gorm:"index" json:"airbnb_booking_id,omitempty"`
	Amount               decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	Currency             string          `gorm:"size:3;not null;default:'KES'" json:"currency"`
	MethodID             uint            `gorm:"not null;index" json:"method_id"`
	Status               string          `gorm:"size:20;not null;index" json:"status"` // pending, completed, failed
	TransactionReference string          `gorm:"size:255;index" json:"transaction_reference"`
	FailureReason        string          `gorm:"size:255" json:"failure_reason,omitempty"`
	PaymentDate          *time.Time      `json:"payment_date"`
	NotifiedAdmin        bool            `gorm:"not null" json:"notified_admin"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
	DeletedAt            gorm.DeletedAt  `gorm:"index" json:"-"`

	Method          *PaymentMethod   `gorm:"foreignKey:MethodID" json:"method,omitempty"`
	ResidentialUnit *ResidentialUnit `gorm:"foreignKey:ResidentialUnitID" json:"-"`
	AirbnbBooking   *AirbnbBooking   `gorm:"foreignKey:AirbnbBookingID" json:"-"`
	Details         *PaymentDetails  `gorm:"foreignKey:PaymentID;constraint:OnDelete:CASCADE" json:"details,omitempty"`
	RevenueStream   *RevenueStream   `gorm:"foreignKey:PaymentID" json:"revenue_stream,omitempty"`
}

func (Payment) TableName() string {
	return "payments"
}

// Target returns the unit or booking this payment is for.
func (p *Payment) Target() Target {
	switch {
	case p.ResidentialUnitID != nil:
		return UnitTarget(*p.ResidentialUnitID)
	case p.AirbnbBookingID != nil:
		return BookingTarget(*p.AirbnbBookingID)
	}
	return Target{}
}

// SetTarget stores t, clearing the other reference.
func (p *Payment) SetTarget(t Target) {
	p.ResidentialUnitID, p.AirbnbBookingID = nil, nil
	id := t.ID()
	switch {
	case t.IsUnit():
		p.ResidentialUnitID = &id
	case t.IsBooking():
		p.AirbnbBookingID = &id
	}
}

func (p *Payment) IsPending() bool { return p.Status == domain.PaymentStatusPending }
