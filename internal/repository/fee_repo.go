package repository

import (
	"context"

	"bellissimo/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type FeeRepository struct {
	db *gorm.DB
}

func NewFeeRepository(db *gorm.DB) *FeeRepository {
	return &FeeRepository{db: db}
}

func (r *FeeRepository) GetByUnitType(ctx context.Context, unitType string) (*models.AppFeeConfig, error) {
	var f models.AppFeeConfig
	if err := r.db.WithContext(ctx).Where("unit_type = ?", unitType).First(&f).Error; err != nil {
		return nil, translate(err, "get fee config", "fee config for "+unitType)
	}
	return &f, nil
}

// Upsert sets the fixed fee for a unit type, creating the row if needed.
func (r *FeeRepository) Upsert(ctx context.Context, unitType string, fee decimal.Decimal) error {
	return translate(r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "unit_type"}},
		DoUpdates: clause.AssignmentColumns([]string{"fixed_fee", "updated_at"}),
	}).Create(&models.AppFeeConfig{UnitType: unitType, FixedFee: fee}).Error, "upsert fee config", "fee config")
}

func (r *FeeRepository) List(ctx context.Context) ([]models.AppFeeConfig, error) {
	var list []models.AppFeeConfig
	err := r.db.WithContext(ctx).Order("unit_type ASC").Find(&list).Error
	return list, err
}
