package repository

import (
	"context"

	"bellissimo/internal/models"

	"gorm.io/gorm"
)

// UnitRepository reads the units and bookings payments point at.
type UnitRepository struct {
	db *gorm.DB
}

func NewUnitRepository(db *gorm.DB) *UnitRepository {
	return &UnitRepository{db: db}
}

func (r *UnitRepository) scoped(ctx context.Context, includeDeleted bool) *gorm.DB {
	db := r.db.WithContext(ctx)
	if includeDeleted {
		return db.Unscoped()
	}
	return db
}

func (r *UnitRepository) GetUnit(ctx context.Context, id uint, includeDeleted bool) (*models.ResidentialUnit, error) {
	var u models.ResidentialUnit
	if err := r.scoped(ctx, includeDeleted).First(&u, id).Error; err != nil {
		return nil, translate(err, "get residential unit", "residential unit")
	}
	return &u, nil
}

func (r *UnitRepository) GetBooking(ctx context.Context, id uint, includeDeleted bool) (*models.AirbnbBooking, error) {
	var b models.AirbnbBooking
	if err := r.scoped(ctx, includeDeleted).First(&b, id).Error; err != nil {
		return nil, translate(err, "get booking", "booking")
	}
	return &b, nil
}

func (r *UnitRepository) CreateUnit(ctx context.Context, u *models.ResidentialUnit) error {
	return translate(r.db.WithContext(ctx).Create(u).Error, "create residential unit", "residential unit")
}

func (r *UnitRepository) CreateBooking(ctx context.Context, b *models.AirbnbBooking) error {
	return translate(r.db.WithContext(ctx).Create(b).Error, "create booking", "booking")
}

// DeleteUnit soft-deletes a unit.
func (r *UnitRepository) DeleteUnit(ctx context.Context, id uint) error {
	return translate(r.db.WithContext(ctx).Delete(&models.ResidentialUnit{}, id).Error, "delete residential unit", "residential unit")
}
