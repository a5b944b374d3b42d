package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ResidentialUnit is a long-let unit; UnitType selects its platform fee.
type ResidentialUnit struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	PropertyID uint            `gorm:"not null;index" json:"property_id"`
	LandlordID uint            `gorm:"not null;index" json:"landlord_id"`
	UnitNumber string          `gorm:"size:50;not null" json:"unit_number"`
	UnitType   string          `gorm:"size:20;not null" json:"unit_type"` // bedsitter, 1br, 2br
	RentAmount decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"rent_amount"`
	TenantID   *uint           `gorm:"index" json:"tenant_id"`
	Status     string          `gorm:"size:20;not null;default:'vacant'" json:"status"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
	DeletedAt  gorm.DeletedAt  `gorm:"index" json:"-"`
}

func (ResidentialUnit) TableName() string {
	return "residential_units"
}

// AirbnbBooking is a short-stay booking; all bookings are priced as the airbnb category.
type AirbnbBooking struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	AirbnbUnitID uint            `gorm:"not null;index" json:"airbnb_unit_id"`
	LandlordID   uint            `gorm:"not null;index" json:"landlord_id"`
	GuestName    string          `gorm:"size:255" json:"guest_name"`
	GuestPhone   string          `gorm:"size:50" json:"guest_phone"`
	CheckIn      time.Time       `json:"check_in"`
	CheckOut     time.Time       `json:"check_out"`
	Amount       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	Status       string          `gorm:"size:20;not null;default:'pending'" json:"status"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	DeletedAt    gorm.DeletedAt  `gorm:"index" json:"-"`
}

func (AirbnbBooking) TableName() string {
	return "airbnb_bookings"
}
