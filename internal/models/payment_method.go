package models

import "time"

// PaymentMethod is a user-selectable way to pay (M-Pesa, bank transfer, ...).
type PaymentMethod struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Code        string    `gorm:"size:50;uniqueIndex;not null" json:"code"`
	Name        string    `gorm:"size:100;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	LogoURL     string    `gorm:"size:512" json:"logo_url"`
	IsActive    bool      `gorm:"not null;index" json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Fields []PaymentFieldConfig `gorm:"foreignKey:MethodID;constraint:OnDelete:CASCADE" json:"fields,omitempty"`
}

func (PaymentMethod) TableName() string {
	return "payment_methods"
}

// PaymentFieldConfig declares one detail field a method accepts. FieldName is unique per method.
type PaymentFieldConfig struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	MethodID          uint      `gorm:"not null;uniqueIndex:idx_method_field" json:"method_id"`
	FieldName         string    `gorm:"size:64;not null;uniqueIndex:idx_method_field" json:"field_name"`
	Label             string    `gorm:"size:100" json:"label"`
	Placeholder       string    `gorm:"size:255" json:"placeholder"`
	Required          bool      `gorm:"not null" json:"required"`
	ValidationPattern string    `gorm:"size:255" json:"validation_pattern,omitempty"`
	ValidationMessage string    `gorm:"size:255" json:"validation_message,omitempty"`
	Position          int       `gorm:"not null" json:"position"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func (PaymentFieldConfig) TableName() string {
	return "payment_field_configs"
}
