package service

import (
	"context"
	"log/slog"

	"bellissimo/internal/domain"
	"bellissimo/internal/models"
	"bellissimo/internal/repository"

	"github.com/shopspring/decimal"
)

// FeeService prices unit types and derives revenue streams from completed payments.
type FeeService struct {
	fees *repository.FeeRepository
	uow  *repository.UnitOfWork
}

func NewFeeService(fees *repository.FeeRepository, uow *repository.UnitOfWork) *FeeService {
	return &FeeService{fees: fees, uow: uow}
}

// ComputeFee returns the fixed platform fee for unitType. A unit type with no
// configured fee is a configuration error.
func (s *FeeService) ComputeFee(ctx context.Context, unitType string) (decimal.Decimal, error) {
	return computeFee(ctx, s.fees, unitType)
}

func computeFee(ctx context.Context, fees *repository.FeeRepository, unitType string) (decimal.Decimal, error) {
	if !domain.IsUnitType(unitType) {
		return decimal.Zero, domain.Validation("unit_type", "unknown unit type %q", unitType)
	}
	cfg, err := fees.GetByUnitType(ctx, unitType)
	if err != nil {
		if domain.KindOf(err) == domain.KindNotFound {
			return decimal.Zero, domain.WrapConfiguration(err, "no platform fee configured for %s", unitType)
		}
		return decimal.Zero, err
	}
	return cfg.FixedFee, nil
}

func (s *FeeService) ListFees(ctx context.Context) ([]models.AppFeeConfig, error) {
	return s.fees.List(ctx)
}

// SetFee changes the fee for future revenue streams; existing streams keep their amount.
func (s *FeeService) SetFee(ctx context.Context, unitType string, fee decimal.Decimal) (*models.AppFeeConfig, error) {
	if !domain.IsUnitType(unitType) {
		return nil, domain.Validation("unit_type", "unknown unit type %q", unitType)
	}
	if fee.IsNegative() {
		return nil, domain.Validation("fixed_fee", "must not be negative")
	}
	if err := s.fees.Upsert(ctx, unitType, fee.Round(2)); err != nil {
		return nil, err
	}
	slog.Info("platform fee updated", "unit_type", unitType, "fee", fee.StringFixed(2))
	return s.fees.GetByUnitType(ctx, unitType)
}

// DeriveRevenueStream creates the revenue stream for a completed payment that has none.
func (s *FeeService) DeriveRevenueStream(ctx context.Context, paymentID uint) (*models.RevenueStream, error) {
	var rs *models.RevenueStream
	err := s.uow.Do(ctx, func(tx *repository.Repos) error {
		p, err := tx.Payments.GetForUpdate(ctx, paymentID)
		if err != nil {
			return err
		}
		if p.Status != domain.PaymentStatusCompleted {
			return domain.InvalidState("payment %d is %s, not completed", p.ID, p.Status)
		}
		rs, err = deriveRevenueStream(ctx, tx, p)
		return err
	})
	return rs, err
}

// deriveRevenueStream must run inside the transaction that completed p.
func deriveRevenueStream(ctx context.Context, tx *repository.Repos, p *models.Payment) (*models.RevenueStream, error) {
	exists, err := tx.Revenue.ExistsForPayment(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.AlreadyExists("revenue stream for payment %d already exists", p.ID)
	}

	unitType, err := unitTypeOf(ctx, tx, p.Target())
	if err != nil {
		return nil, err
	}
	fee, err := computeFee(ctx, tx.Fees, unitType)
	if err != nil {
		return nil, err
	}
	rs := &models.RevenueStream{
		PaymentID:  p.ID,
		LandlordID: p.LandlordID,
		UnitType:   unitType,
		FeeAmount:  fee,
		Status:     domain.RevenueStatusPending,
	}
	if err := tx.Revenue.Create(ctx, rs); err != nil {
		return nil, err
	}
	return rs, nil
}

// unitTypeOf resolves the fee category of a target. Bookings are always airbnb.
// Deleted units still resolve so history can be priced.
func unitTypeOf(ctx context.Context, tx *repository.Repos, t models.Target) (string, error) {
	switch {
	case t.IsBooking():
		return domain.UnitTypeAirbnb, nil
	case t.IsUnit():
		u, err := tx.Units.GetUnit(ctx, t.ID(), true)
		if err != nil {
			return "", err
		}
		return u.UnitType, nil
	}
	return "", domain.InvalidState("payment has no unit or booking")
}
