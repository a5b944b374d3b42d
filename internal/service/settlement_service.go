package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"bellissimo/internal/domain"
	"bellissimo/internal/metrics"
	"bellissimo/internal/models"
	"bellissimo/internal/repository"

	"github.com/shopspring/decimal"
)

type SettlementInput struct {
	RevenueStreamID uint
	Amount          decimal.Decimal
	PaidAt          time.Time // zero means now
	Reference       string
}

// LedgerBalance is a revenue stream's fee against what the landlord has settled.
// Outstanding never goes below zero; any excess shows as Overpaid.
type LedgerBalance struct {
	RevenueStreamID uint            `json:"revenue_stream_id"`
	Status          string          `json:"status"`
	FeeAmount       decimal.Decimal `json:"fee_amount"`
	Settled         decimal.Decimal `json:"settled"`
	Outstanding     decimal.Decimal `json:"outstanding"`
	Overpaid        decimal.Decimal `json:"overpaid"`
}

func newBalance(rs *models.RevenueStream, settled decimal.Decimal) *LedgerBalance {
	b := &LedgerBalance{
		RevenueStreamID: rs.ID,
		Status:          rs.Status,
		FeeAmount:       rs.FeeAmount,
		Settled:         settled,
		Outstanding:     decimal.Zero,
		Overpaid:        decimal.Zero,
	}
	diff := rs.FeeAmount.Sub(settled)
	if diff.IsPositive() {
		b.Outstanding = diff
	} else {
		b.Overpaid = diff.Neg()
	}
	return b
}

// StreamSummary is one revenue stream with its balance, for landlord listings and statements.
type StreamSummary struct {
	models.RevenueStream
	Settled     decimal.Decimal `json:"settled"`
	Outstanding decimal.Decimal `json:"outstanding"`
}

// SettlementService records landlord settlements against revenue streams.
type SettlementService struct {
	db  *repository.Repos
	uow *repository.UnitOfWork
	now func() time.Time
}

func NewSettlementService(db *repository.Repos, uow *repository.UnitOfWork) *SettlementService {
	return &SettlementService{db: db, uow: uow, now: time.Now}
}

func (s *SettlementService) GetRevenueStream(ctx context.Context, id uint) (*models.RevenueStream, error) {
	return s.db.Revenue.GetByID(ctx, id)
}

// RecordSettlement appends a settlement and marks the stream paid once settlements
// cover the fee. Paid streams accept no further settlements. Overpayment is kept, not refunded.
func (s *SettlementService) RecordSettlement(ctx context.Context, in SettlementInput) (*models.RentPaymentTransaction, *LedgerBalance, error) {
	if !in.Amount.IsPositive() {
		return nil, nil, domain.Validation("amount", "must be greater than zero")
	}
	if !in.Amount.Equal(in.Amount.Round(2)) {
		return nil, nil, domain.Validation("amount", "must have at most two decimal places")
	}
	now := s.now().UTC()
	paidAt := in.PaidAt
	if paidAt.IsZero() {
		paidAt = now
	}
	if paidAt.After(now.Add(time.Minute)) {
		return nil, nil, domain.Validation("paid_at", "cannot be in the future")
	}

	txn := &models.RentPaymentTransaction{
		RevenueStreamID: in.RevenueStreamID,
		Amount:          in.Amount,
		PaidAt:          paidAt,
		Reference:       strings.TrimSpace(in.Reference),
	}
	if actor := ActorFrom(ctx); actor != nil {
		txn.RecordedBy = *actor
	}

	var balance *LedgerBalance
	flipped := false
	err := s.uow.Do(ctx, func(tx *repository.Repos) error {
		rs, err := tx.Revenue.GetForUpdate(ctx, in.RevenueStreamID)
		if err != nil {
			return err
		}
		if rs.IsPaid() {
			return domain.InvalidState("revenue stream %d is already paid", rs.ID)
		}
		if err := tx.Revenue.AppendTransaction(ctx, txn); err != nil {
			return err
		}
		settled, err := tx.Revenue.SettledTotal(ctx, rs.ID)
		if err != nil {
			return err
		}
		if settled.GreaterThanOrEqual(rs.FeeAmount) {
			ok, err := tx.Revenue.MarkPaid(ctx, rs.ID, now)
			if err != nil {
				return err
			}
			if !ok {
				return domain.InvalidState("revenue stream %d is already paid", rs.ID)
			}
			rs.Status = domain.RevenueStatusPaid
			rs.PaidAt = &now
			flipped = true
		}
		balance = newBalance(rs, settled)
		return audit(ctx, tx, domain.AuditSettlementRecorded, "revenue_stream", rs.ID, map[string]interface{}{
			"amount": in.Amount.StringFixed(2), "settled": settled.StringFixed(2), "status": rs.Status,
		})
	})
	if err != nil {
		return nil, nil, err
	}

	metrics.ObserveSettlement(in.Amount)
	if flipped {
		metrics.RevenueStreamsPaid.Inc()
	}
	slog.Info("settlement recorded", "revenue_stream_id", in.RevenueStreamID, "amount", in.Amount.StringFixed(2),
		"outstanding", balance.Outstanding.StringFixed(2), "status", balance.Status)
	return txn, balance, nil
}

// Balance returns the stream's fee, settled total, and remaining amount.
func (s *SettlementService) Balance(ctx context.Context, revenueStreamID uint) (*LedgerBalance, error) {
	rs, err := s.db.Revenue.GetByID(ctx, revenueStreamID)
	if err != nil {
		return nil, err
	}
	settled, err := s.db.Revenue.SettledTotal(ctx, rs.ID)
	if err != nil {
		return nil, err
	}
	return newBalance(rs, settled), nil
}

// BalanceOf computes the balance from a stream loaded with its transactions.
func BalanceOf(rs *models.RevenueStream) *LedgerBalance {
	settled := decimal.Zero
	for _, t := range rs.Transactions {
		settled = settled.Add(t.Amount)
	}
	return newBalance(rs, settled)
}

// OutstandingBalance is max(0, fee - settled).
func (s *SettlementService) OutstandingBalance(ctx context.Context, revenueStreamID uint) (decimal.Decimal, error) {
	b, err := s.Balance(ctx, revenueStreamID)
	if err != nil {
		return decimal.Zero, err
	}
	return b.Outstanding, nil
}

// ListByLandlord returns a landlord's streams with balances; status "" lists all.
func (s *SettlementService) ListByLandlord(ctx context.Context, landlordID uint, status string) ([]StreamSummary, error) {
	if status != "" && status != domain.RevenueStatusPending && status != domain.RevenueStatusPaid {
		return nil, domain.Validation("status", "must be pending or paid")
	}
	streams, err := s.db.Revenue.ListByLandlord(ctx, landlordID, status)
	if err != nil {
		return nil, err
	}
	return summarize(streams), nil
}

func summarize(streams []models.RevenueStream) []StreamSummary {
	out := make([]StreamSummary, 0, len(streams))
	for _, rs := range streams {
		settled := decimal.Zero
		for _, t := range rs.Transactions {
			settled = settled.Add(t.Amount)
		}
		b := newBalance(&rs, settled)
		out = append(out, StreamSummary{RevenueStream: rs, Settled: settled, Outstanding: b.Outstanding})
	}
	return out
}

// OutstandingByLandlord groups every unpaid stream by landlord.
func (s *SettlementService) OutstandingByLandlord(ctx context.Context) (map[uint][]StreamSummary, error) {
	streams, err := s.db.Revenue.ListPending(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[uint][]StreamSummary)
	for _, sum := range summarize(streams) {
		out[sum.LandlordID] = append(out[sum.LandlordID], sum)
	}
	return out, nil
}
