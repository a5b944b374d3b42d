package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"bellissimo/internal/domain"
	"bellissimo/internal/metrics"
	"bellissimo/internal/models"
	"bellissimo/internal/repository"
	"bellissimo/pkg/payment"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

const orderIDPrefix = "pay-"

// OrderID is the provider order id for a payment; callbacks echo it back.
func OrderID(paymentID uint) string {
	return orderIDPrefix + strconv.FormatUint(uint64(paymentID), 10)
}

// ParseOrderID extracts the payment id from an order id built by OrderID.
func ParseOrderID(orderID string) (uint, error) {
	raw, ok := strings.CutPrefix(orderID, orderIDPrefix)
	if !ok {
		return 0, domain.Validation("order_id", "unknown order id %q", orderID)
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, domain.Validation("order_id", "unknown order id %q", orderID)
	}
	return uint(id), nil
}

type CreatePaymentInput struct {
	PayerID    uint
	LandlordID uint
	Target     models.Target
	Amount     decimal.Decimal
	Currency   string
	MethodID   uint
	Details    map[string]string
}

// PaymentService owns the payment lifecycle: pending, then completed or failed, never back.
type PaymentService struct {
	db        *repository.Repos
	uow       *repository.UnitOfWork
	registry  *PaymentMethodRegistry
	notifier  Notifier
	collector payment.Provider // nil disables STK push
	currency  string
	now       func() time.Time
	wg        sync.WaitGroup
}

func NewPaymentService(db *repository.Repos, uow *repository.UnitOfWork, registry *PaymentMethodRegistry,
	notifier Notifier, collector payment.Provider, currency string) *PaymentService {
	if notifier == nil {
		notifier = disabledNotifier{}
	}
	if currency == "" {
		currency = "KES"
	}
	return &PaymentService{
		db:        db,
		uow:       uow,
		registry:  registry,
		notifier:  notifier,
		collector: collector,
		currency:  currency,
		now:       time.Now,
	}
}

// CreatePayment validates the details against the method's field configuration and
// records a pending payment with its details in one transaction.
func (s *PaymentService) CreatePayment(ctx context.Context, in CreatePaymentInput) (*models.Payment, error) {
	if in.PayerID == 0 {
		return nil, domain.Validation("payer_id", "is required")
	}
	if in.LandlordID == 0 {
		return nil, domain.Validation("landlord_id", "is required")
	}
	if in.Target.IsZero() {
		return nil, domain.Validation("target", "exactly one of residential_unit_id or airbnb_booking_id is required")
	}
	if !in.Amount.IsPositive() {
		return nil, domain.Validation("amount", "must be greater than zero")
	}
	if !in.Amount.Equal(in.Amount.Round(2)) {
		return nil, domain.Validation("amount", "must have at most two decimal places")
	}
	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	if currency == "" {
		currency = s.currency
	}
	if len(currency) != 3 {
		return nil, domain.Validation("currency", "must be a 3-letter code")
	}

	cfg, err := s.registry.GetFieldConfiguration(ctx, in.MethodID)
	if err != nil {
		return nil, err
	}
	if err := ValidateDetails(cfg, in.Details); err != nil {
		return nil, err
	}

	data := make(datatypes.JSONMap, len(in.Details))
	for k, v := range in.Details {
		data[k] = strings.TrimSpace(v)
	}
	p := &models.Payment{
		PayerID:    in.PayerID,
		LandlordID: in.LandlordID,
		Amount:     in.Amount,
		Currency:   currency,
		MethodID:   in.MethodID,
		Status:     domain.PaymentStatusPending,
		Details:    &models.PaymentDetails{Data: data},
	}
	p.SetTarget(in.Target)

	err = s.uow.Do(ctx, func(tx *repository.Repos) error {
		if err := checkTarget(ctx, tx, in.Target, in.LandlordID); err != nil {
			return err
		}
		if err := tx.Payments.Create(ctx, p); err != nil {
			return err
		}
		return audit(ctx, tx, domain.AuditPaymentCreated, "payment", p.ID, map[string]interface{}{
			"amount": p.Amount.StringFixed(2), "method": cfg.MethodCode, "target": in.Target.Kind(),
		})
	})
	if err != nil {
		return nil, err
	}
	metrics.PaymentsCreated.WithLabelValues(cfg.MethodCode).Inc()
	slog.Info("payment created", "payment_id", p.ID, "method", cfg.MethodCode, "amount", p.Amount.StringFixed(2))

	if cfg.MethodCode == domain.MethodCodeMpesa {
		s.requestCollection(ctx, p)
	}
	return p, nil
}

// checkTarget verifies the unit or booking exists, is not deleted, and belongs to the landlord.
func checkTarget(ctx context.Context, tx *repository.Repos, t models.Target, landlordID uint) error {
	var owner uint
	switch {
	case t.IsUnit():
		u, err := tx.Units.GetUnit(ctx, t.ID(), false)
		if err != nil {
			return err
		}
		owner = u.LandlordID
	case t.IsBooking():
		b, err := tx.Units.GetBooking(ctx, t.ID(), false)
		if err != nil {
			return err
		}
		owner = b.LandlordID
	}
	if owner != landlordID {
		return domain.Validation("landlord_id", "does not own the %s", t.Kind())
	}
	return nil
}

// requestCollection pushes an STK prompt to the payer. Failures leave the payment
// pending; it expires if no callback arrives.
func (s *PaymentService) requestCollection(ctx context.Context, p *models.Payment) {
	if s.collector == nil {
		return
	}
	resp, err := s.collector.InitiatePayment(ctx, payment.PaymentRequest{
		Amount:        p.Amount,
		Currency:      p.Currency,
		Description:   fmt.Sprintf("Rent payment #%d", p.ID),
		OrderID:       OrderID(p.ID),
		CustomerPhone: p.Details.Fields()["phone_number"],
		CustomerName:  p.Details.Fields()["account_name"],
	})
	if err != nil {
		slog.Warn("stk push failed", "payment_id", p.ID, "error", err)
		return
	}
	slog.Info("stk push sent", "payment_id", p.ID, "reference", resp.Reference, "checkout_request_id", resp.CheckoutRequestID)
}

// GetPayment loads a payment. Soft-deleted payments are only visible with includeDeleted.
func (s *PaymentService) GetPayment(ctx context.Context, id uint, includeDeleted bool) (*models.Payment, error) {
	return s.db.Payments.GetByID(ctx, id, includeDeleted)
}

// MarkCompleted confirms a pending payment and creates its revenue stream atomically.
// The admin is notified after commit without blocking the caller.
func (s *PaymentService) MarkCompleted(ctx context.Context, paymentID uint, transactionReference string) (*models.Payment, error) {
	ref := strings.TrimSpace(transactionReference)
	if ref == "" {
		return nil, domain.Validation("transaction_reference", "is required")
	}
	now := s.now().UTC()
	var rs *models.RevenueStream
	err := s.uow.Do(ctx, func(tx *repository.Repos) error {
		p, err := tx.Payments.GetForUpdate(ctx, paymentID)
		if err != nil {
			return err
		}
		if !p.IsPending() {
			return domain.InvalidState("payment %d is already %s", p.ID, p.Status)
		}
		ok, err := tx.Payments.Transition(ctx, p.ID, domain.PaymentStatusPending, domain.PaymentStatusCompleted,
			map[string]interface{}{"transaction_reference": ref, "payment_date": now})
		if err != nil {
			return err
		}
		if !ok {
			return domain.InvalidState("payment %d is no longer pending", p.ID)
		}
		p.Status = domain.PaymentStatusCompleted

		rs, err = deriveRevenueStream(ctx, tx, p)
		if err != nil {
			return err
		}
		return audit(ctx, tx, domain.AuditPaymentCompleted, "payment", p.ID, map[string]interface{}{
			"reference": ref, "revenue_stream_id": rs.ID, "fee": rs.FeeAmount.StringFixed(2),
		})
	})
	if err != nil {
		return nil, err
	}

	p, err := s.db.Payments.GetByID(ctx, paymentID, false)
	if err != nil {
		return nil, err
	}
	metrics.PaymentsCompleted.WithLabelValues(rs.UnitType).Inc()
	slog.Info("payment completed", "payment_id", p.ID, "reference", ref, "revenue_stream_id", rs.ID)

	s.notifyCompleted(PaymentNotice{
		PaymentID:   p.ID,
		PayerID:     p.PayerID,
		LandlordID:  p.LandlordID,
		Amount:      p.Amount,
		Currency:    p.Currency,
		Reference:   ref,
		UnitType:    rs.UnitType,
		FeeAmount:   rs.FeeAmount,
		CompletedAt: now,
	})
	return p, nil
}

func (s *PaymentService) notifyCompleted(n PaymentNotice) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := s.notifier.PaymentCompleted(ctx, n); err != nil {
			if !errors.Is(err, ErrNotifierDisabled) {
				metrics.NotificationsFailed.Inc()
				slog.Warn("payment notification failed", "payment_id", n.PaymentID, "error", err)
			}
			return
		}
		if err := s.db.Payments.MarkNotified(ctx, n.PaymentID); err != nil {
			slog.Warn("failed to flag payment notified", "payment_id", n.PaymentID, "error", err)
		}
	}()
}

// Wait blocks until in-flight notifications finish.
func (s *PaymentService) Wait() {
	s.wg.Wait()
}

// MarkFailed moves a pending payment to failed. No revenue stream is created.
func (s *PaymentService) MarkFailed(ctx context.Context, paymentID uint, reason string) (*models.Payment, error) {
	reason = truncateRunes(strings.TrimSpace(reason), 255)
	err := s.uow.Do(ctx, func(tx *repository.Repos) error {
		p, err := tx.Payments.GetForUpdate(ctx, paymentID)
		if err != nil {
			return err
		}
		if !p.IsPending() {
			return domain.InvalidState("payment %d is already %s", p.ID, p.Status)
		}
		ok, err := tx.Payments.Transition(ctx, p.ID, domain.PaymentStatusPending, domain.PaymentStatusFailed,
			map[string]interface{}{"failure_reason": reason})
		if err != nil {
			return err
		}
		if !ok {
			return domain.InvalidState("payment %d is no longer pending", p.ID)
		}
		return audit(ctx, tx, domain.AuditPaymentFailed, "payment", p.ID, map[string]interface{}{"reason": reason})
	})
	if err != nil {
		return nil, err
	}
	metrics.PaymentsFailed.Inc()
	slog.Info("payment failed", "payment_id", paymentID, "reason", reason)
	return s.db.Payments.GetByID(ctx, paymentID, false)
}

// ExpireStale fails payments left pending longer than maxAge. It returns how many it failed.
func (s *PaymentService) ExpireStale(ctx context.Context, maxAge time.Duration) (int, error) {
	cutoff := s.now().Add(-maxAge)
	stale, err := s.db.Payments.ListStalePending(ctx, cutoff, 200)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, p := range stale {
		if _, err := s.MarkFailed(ctx, p.ID, "expired"); err != nil {
			if errors.Is(err, domain.ErrInvalidState) {
				continue
			}
			return n, err
		}
		n++
	}
	return n, nil
}

// ListLandlordPayments returns payments made to a landlord, newest first.
func (s *PaymentService) ListLandlordPayments(ctx context.Context, landlordID uint, includeDeleted bool) ([]models.Payment, error) {
	return s.db.Payments.ListByLandlord(ctx, landlordID, includeDeleted)
}

// AuditTrail returns the audit rows for one payment or revenue stream.
func (s *PaymentService) AuditTrail(ctx context.Context, resource string, id uint) ([]models.AuditLog, error) {
	if resource != "payment" && resource != "revenue_stream" {
		return nil, domain.Validation("resource", "must be payment or revenue_stream")
	}
	return s.db.Audit.ListByResource(ctx, resource, strconv.FormatUint(uint64(id), 10))
}

// truncateRunes cuts s to at most max bytes without splitting a UTF-8 sequence.
func truncateRunes(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
