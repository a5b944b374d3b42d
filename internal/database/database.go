package database

import (
	"fmt"
	"log/slog"

	"bellissimo/config"
	"bellissimo/internal/domain"
	"bellissimo/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func NewDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "", "mysql":
		dialector = mysql.Open(cfg.DSN)
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Error), // Only log errors, not every SQL query
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	return db, nil
}

// AutoMigrate runs Gorm auto-migration for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.PaymentMethod{},
		&models.PaymentFieldConfig{},
		&models.ResidentialUnit{},
		&models.AirbnbBooking{},
		&models.Payment{},
		&models.PaymentDetails{},
		&models.AppFeeConfig{},
		&models.RevenueStream{},
		&models.RentPaymentTransaction{},
		&models.AuditLog{},
	)
}

// DefaultFees are the platform fees seeded for unit types that have none.
var DefaultFees = map[string]decimal.Decimal{
	domain.UnitTypeBedsitter:  decimal.NewFromInt(500),
	domain.UnitTypeOneBedroom: decimal.NewFromInt(800),
	domain.UnitTypeTwoBedroom: decimal.NewFromInt(1000),
	domain.UnitTypeAirbnb:     decimal.NewFromInt(300),
}

// DefaultMethods are the payment methods seeded when their code is absent.
func DefaultMethods() []models.PaymentMethod {
	return []models.PaymentMethod{
		{
			Code:        domain.MethodCodeMpesa,
			Name:        "M-Pesa",
			Description: "Pay from an M-Pesa wallet via STK push",
			IsActive:    true,
			Fields: []models.PaymentFieldConfig{
				{
					FieldName:         "phone_number",
					Label:             "Phone number",
					Placeholder:       "+254700000000",
					Required:          true,
					ValidationPattern: `^\+?254\d{9}$`,
					ValidationMessage: "Enter a Safaricom number in the form +2547XXXXXXXX",
					Position:          0,
				},
				{FieldName: "account_name", Label: "Account name", Position: 1},
			},
		},
		{
			Code:        domain.MethodCodeBank,
			Name:        "Bank Transfer",
			Description: "Direct transfer to the landlord's bank account",
			IsActive:    true,
			Fields: []models.PaymentFieldConfig{
				{
					FieldName:         "account_number",
					Label:             "Account number",
					Required:          true,
					ValidationPattern: `^\d{6,20}$`,
					ValidationMessage: "Account number must be 6 to 20 digits",
					Position:          0,
				},
				{FieldName: "bank_name", Label: "Bank", Required: true, Position: 1},
				{FieldName: "branch", Label: "Branch", Position: 2},
			},
		},
	}
}

// SeedDefaults inserts default payment methods and fee configs that don't already exist.
func SeedDefaults(db *gorm.DB) error {
	for _, m := range DefaultMethods() {
		var count int64
		if err := db.Model(&models.PaymentMethod{}).Where("code = ?", m.Code).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}
		if err := db.Create(&m).Error; err != nil {
			return fmt.Errorf("seed method %s: %w", m.Code, err)
		}
		slog.Info("seeded payment method", "code", m.Code)
	}
	for unitType, fee := range DefaultFees {
		var count int64
		if err := db.Model(&models.AppFeeConfig{}).Where("unit_type = ?", unitType).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}
		if err := db.Create(&models.AppFeeConfig{UnitType: unitType, FixedFee: fee}).Error; err != nil {
			return fmt.Errorf("seed fee %s: %w", unitType, err)
		}
		slog.Info("seeded fee config", "unit_type", unitType, "fee", fee.String())
	}
	return nil
}
