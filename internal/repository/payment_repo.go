package repository

import (
	"context"
	"time"

	"bellissimo/internal/domain"
	"bellissimo/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// Create inserts the payment and, when set, its Details.
func (r *PaymentRepository) Create(ctx context.Context, p *models.Payment) error {
	return translate(r.db.WithContext(ctx).Omit("Method", "ResidentialUnit", "AirbnbBooking", "RevenueStream").Create(p).Error,
		"create payment", "payment")
}

// GetByID loads a payment with its details and revenue stream. Soft-deleted rows
// are only returned when includeDeleted is set.
func (r *PaymentRepository) GetByID(ctx context.Context, id uint, includeDeleted bool) (*models.Payment, error) {
	db := r.db.WithContext(ctx)
	if includeDeleted {
		db = db.Unscoped()
	}
	var p models.Payment
	err := db.Preload("Details").Preload("RevenueStream").Preload("Method").First(&p, id).Error
	if err != nil {
		return nil, translate(err, "get payment", "payment")
	}
	return &p, nil
}

// GetForUpdate reads the payment row with a write lock held until the transaction ends.
func (r *PaymentRepository) GetForUpdate(ctx context.Context, id uint) (*models.Payment, error) {
	var p models.Payment
	err := r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).First(&p, id).Error
	if err != nil {
		return nil, translate(err, "lock payment", "payment")
	}
	return &p, nil
}

// Transition moves a payment from one status to another, applying updates in the same
// statement. It returns false when the payment was no longer in from.
func (r *PaymentRepository) Transition(ctx context.Context, id uint, from, to string, updates map[string]interface{}) (bool, error) {
	values := map[string]interface{}{"status": to}
	for k, v := range updates {
		values[k] = v
	}
	res := r.db.WithContext(ctx).Model(&models.Payment{}).
		Where("id = ? AND status = ?", id, from).
		Updates(values)
	if res.Error != nil {
		return false, translate(res.Error, "update payment status", "payment")
	}
	return res.RowsAffected == 1, nil
}

func (r *PaymentRepository) MarkNotified(ctx context.Context, id uint) error {
	return translate(r.db.WithContext(ctx).Model(&models.Payment{}).Where("id = ?", id).
		Update("notified_admin", true).Error, "mark payment notified", "payment")
}

// ListStalePending returns pending payments created before cutoff, oldest first.
func (r *PaymentRepository) ListStalePending(ctx context.Context, cutoff time.Time, limit int) ([]models.Payment, error) {
	var list []models.Payment
	err := r.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", domain.PaymentStatusPending, cutoff).
		Order("created_at ASC").Limit(limit).Find(&list).Error
	return list, err
}

func (r *PaymentRepository) ListByLandlord(ctx context.Context, landlordID uint, includeDeleted bool) ([]models.Payment, error) {
	db := r.db.WithContext(ctx)
	if includeDeleted {
		db = db.Unscoped()
	}
	var list []models.Payment
	err := db.Where("landlord_id = ?", landlordID).Order("created_at DESC").Find(&list).Error
	return list, err
}
