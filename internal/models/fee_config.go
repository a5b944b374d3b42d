package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AppFeeConfig is the fixed platform fee charged per payment for a unit-type category.
type AppFeeConfig struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	UnitType  string          `gorm:"size:20;uniqueIndex;not null" json:"unit_type"`
	FixedFee  decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"fixed_fee"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func (AppFeeConfig) TableName() string {
	return "app_fee_configs"
}
