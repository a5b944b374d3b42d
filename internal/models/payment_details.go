package models

import (
	"time"

	"gorm.io/datatypes"
)

// PaymentDetails is the method-specific payload of a payment (e.g. phone_number for M-Pesa).
// It has no DeletedAt: a soft-deleted payment keeps its details, and the FK cascade only
// applies when a payment row is hard-deleted.
type PaymentDetails struct {
	ID        uint              `gorm:"primaryKey" json:"id"`
	PaymentID uint              `gorm:"not null;uniqueIndex" json:"payment_id"`
	Data      datatypes.JSONMap `gorm:"not null" json:"data"`
	Verified  bool              `gorm:"not null" json:"verified"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

func (PaymentDetails) TableName() string {
	return "payment_details"
}

// Fields returns the payload as strings; non-string values are dropped.
func (d *PaymentDetails) Fields() map[string]string {
	out := make(map[string]string, len(d.Data))
	for k, v := range d.Data {
		if s, ok := v.(string); ok {
			out[k] = s
		}
	}
	return out
}
