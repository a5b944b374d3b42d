package models

import (
	"time"

	"bellissimo/internal/domain"

	"github.com/shopspring/decimal"
)

// RevenueStream is the platform's fee claim against a landlord, one per completed payment.
// FeeAmount is copied from AppFeeConfig at creation and never recomputed.
type RevenueStream struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	PaymentID  uint            `gorm:"not null;uniqueIndex" json:"payment_id"`
	LandlordID uint            `gorm:"not null;index" json:"landlord_id"`
	UnitType   string          `gorm:"size:20;not null" json:"unit_type"`
	FeeAmount  decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"fee_amount"`
	Status     string          `gorm:"size:20;not null;index" json:"status"` // pending, paid
	PaidAt     *time.Time      `json:"paid_at"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`

	Transactions []RentPaymentTransaction `gorm:"foreignKey:RevenueStreamID" json:"transactions,omitempty"`
}

func (RevenueStream) TableName() string {
	return "revenue_streams"
}

func (r *RevenueStream) IsPaid() bool { return r.Status == domain.RevenueStatusPaid }

// RentPaymentTransaction is one landlord settlement against a revenue stream. Append-only.
type RentPaymentTransaction struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	RevenueStreamID uint            `gorm:"not null;index" json:"revenue_stream_id"`
	Amount          decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	PaidAt          time.Time       `gorm:"not null" json:"paid_at"`
	Reference       string          `gorm:"size:128" json:"reference"`
	RecordedBy      uint            `json:"recorded_by"`
	CreatedAt       time.Time       `json:"created_at"`
}

func (RentPaymentTransaction) TableName() string {
	return "rent_payment_transactions"
}
