package repository

import (
	"context"
	"time"

	"bellissimo/internal/domain"
	"bellissimo/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RevenueRepository struct {
	db *gorm.DB
}

func NewRevenueRepository(db *gorm.DB) *RevenueRepository {
	return &RevenueRepository{db: db}
}

func (r *RevenueRepository) Create(ctx context.Context, rs *models.RevenueStream) error {
	return translate(r.db.WithContext(ctx).Create(rs).Error, "create revenue stream", "revenue stream")
}

func (r *RevenueRepository) ExistsForPayment(ctx context.Context, paymentID uint) (bool, error) {
	var c int64
	err := r.db.WithContext(ctx).Model(&models.RevenueStream{}).Where("payment_id = ?", paymentID).Count(&c).Error
	return c > 0, err
}

func (r *RevenueRepository) GetByID(ctx context.Context, id uint) (*models.RevenueStream, error) {
	var rs models.RevenueStream
	err := r.db.WithContext(ctx).Preload("Transactions", func(db *gorm.DB) *gorm.DB {
		return db.Order("paid_at ASC, id ASC")
	}).First(&rs, id).Error
	if err != nil {
		return nil, translate(err, "get revenue stream", "revenue stream")
	}
	return &rs, nil
}

// GetForUpdate reads the revenue stream row with a write lock held until the transaction ends.
func (r *RevenueRepository) GetForUpdate(ctx context.Context, id uint) (*models.RevenueStream, error) {
	var rs models.RevenueStream
	err := r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).First(&rs, id).Error
	if err != nil {
		return nil, translate(err, "lock revenue stream", "revenue stream")
	}
	return &rs, nil
}

func (r *RevenueRepository) AppendTransaction(ctx context.Context, t *models.RentPaymentTransaction) error {
	return translate(r.db.WithContext(ctx).Create(t).Error, "append settlement", "settlement")
}

// SettledTotal sums every settlement recorded against the stream.
func (r *RevenueRepository) SettledTotal(ctx context.Context, id uint) (decimal.Decimal, error) {
	var txs []models.RentPaymentTransaction
	err := r.db.WithContext(ctx).Select("amount").Where("revenue_stream_id = ?", id).Find(&txs).Error
	if err != nil {
		return decimal.Zero, translate(err, "sum settlements", "settlement")
	}
	total := decimal.Zero
	for _, t := range txs {
		total = total.Add(t.Amount)
	}
	return total, nil
}

// MarkPaid flips a pending stream to paid. It returns false if the stream was not pending.
func (r *RevenueRepository) MarkPaid(ctx context.Context, id uint, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.RevenueStream{}).
		Where("id = ? AND status = ?", id, domain.RevenueStatusPending).
		Updates(map[string]interface{}{"status": domain.RevenueStatusPaid, "paid_at": at})
	if res.Error != nil {
		return false, translate(res.Error, "mark revenue stream paid", "revenue stream")
	}
	return res.RowsAffected == 1, nil
}

// ListByLandlord returns a landlord's streams with their settlements; status "" means all.
func (r *RevenueRepository) ListByLandlord(ctx context.Context, landlordID uint, status string) ([]models.RevenueStream, error) {
	db := r.db.WithContext(ctx).Preload("Transactions").Where("landlord_id = ?", landlordID)
	if status != "" {
		db = db.Where("status = ?", status)
	}
	var list []models.RevenueStream
	err := db.Order("created_at ASC, id ASC").Find(&list).Error
	return list, err
}

// ListPending returns every unpaid stream with its settlements.
func (r *RevenueRepository) ListPending(ctx context.Context) ([]models.RevenueStream, error) {
	var list []models.RevenueStream
	err := r.db.WithContext(ctx).Preload("Transactions").
		Where("status = ?", domain.RevenueStatusPending).
		Order("landlord_id ASC, id ASC").Find(&list).Error
	return list, err
}
