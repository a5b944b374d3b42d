package repository

import (
	"context"

	"bellissimo/internal/models"

	"gorm.io/gorm"
)

type PaymentMethodRepository struct {
	db *gorm.DB
}

func NewPaymentMethodRepository(db *gorm.DB) *PaymentMethodRepository {
	return &PaymentMethodRepository{db: db}
}

func orderedFields(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC, id ASC")
}

// Create inserts the method together with its field configs.
func (r *PaymentMethodRepository) Create(ctx context.Context, m *models.PaymentMethod) error {
	return translate(r.db.WithContext(ctx).Create(m).Error, "create payment method", "payment method "+m.Code)
}

func (r *PaymentMethodRepository) GetByID(ctx context.Context, id uint) (*models.PaymentMethod, error) {
	var m models.PaymentMethod
	err := r.db.WithContext(ctx).Preload("Fields", orderedFields).First(&m, id).Error
	if err != nil {
		return nil, translate(err, "get payment method", "payment method")
	}
	return &m, nil
}

func (r *PaymentMethodRepository) GetByCode(ctx context.Context, code string) (*models.PaymentMethod, error) {
	var m models.PaymentMethod
	err := r.db.WithContext(ctx).Preload("Fields", orderedFields).Where("code = ?", code).First(&m).Error
	if err != nil {
		return nil, translate(err, "get payment method", "payment method "+code)
	}
	return &m, nil
}

func (r *PaymentMethodRepository) ListActive(ctx context.Context) ([]models.PaymentMethod, error) {
	var list []models.PaymentMethod
	err := r.db.WithContext(ctx).Preload("Fields", orderedFields).
		Where("is_active = ?", true).Order("name ASC").Find(&list).Error
	return list, err
}

// ActiveFieldNames returns every field name declared by any active method.
func (r *PaymentMethodRepository) ActiveFieldNames(ctx context.Context) ([]string, error) {
	var names []string
	err := r.db.WithContext(ctx).Model(&models.PaymentFieldConfig{}).
		Joins("JOIN payment_methods ON payment_methods.id = payment_field_configs.method_id").
		Where("payment_methods.is_active = ?", true).
		Distinct().Order("field_name ASC").
		Pluck("payment_field_configs.field_name", &names).Error
	return names, err
}

// ReplaceFields swaps the method's field configs for fields. Run it inside a UnitOfWork.
func (r *PaymentMethodRepository) ReplaceFields(ctx context.Context, methodID uint, fields []models.PaymentFieldConfig) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("method_id = ?", methodID).Delete(&models.PaymentFieldConfig{}).Error; err != nil {
		return translate(err, "delete field configs", "field config")
	}
	if len(fields) == 0 {
		return nil
	}
	for i := range fields {
		fields[i].ID = 0
		fields[i].MethodID = methodID
	}
	return translate(db.Create(&fields).Error, "create field configs", "field config")
}

func (r *PaymentMethodRepository) SetActive(ctx context.Context, id uint, active bool) error {
	res := r.db.WithContext(ctx).Model(&models.PaymentMethod{}).Where("id = ?", id).Update("is_active", active)
	if res.Error != nil {
		return translate(res.Error, "update payment method", "payment method")
	}
	if res.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, "", "payment method")
	}
	return nil
}

// ListIDs returns the id of every method, active or not.
func (r *PaymentMethodRepository) ListIDs(ctx context.Context) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.PaymentMethod{}).Order("id ASC").Pluck("id", &ids).Error
	return ids, err
}
