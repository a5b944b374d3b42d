package service

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"time"

	"bellissimo/config"

	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"
)

// Scheduler runs the periodic jobs: failing stale pending payments and reminding
// the admin of landlords' unpaid fees.
type Scheduler struct {
	cron          *cron.Cron
	payments      *PaymentService
	ledger        *SettlementService
	notifier      Notifier
	paymentExpiry time.Duration
	currency      string
}

func NewScheduler(cfg config.SchedulerConfig, paymentExpiry time.Duration, currency string,
	payments *PaymentService, ledger *SettlementService, notifier Notifier) (*Scheduler, error) {
	if notifier == nil {
		notifier = disabledNotifier{}
	}
	s := &Scheduler{
		cron:          cron.New(),
		payments:      payments,
		ledger:        ledger,
		notifier:      notifier,
		paymentExpiry: paymentExpiry,
		currency:      currency,
	}
	if _, err := s.cron.AddFunc(cfg.SweepSpec, s.runSweep); err != nil {
		return nil, err
	}
	if _, err := s.cron.AddFunc(cfg.ReminderSpec, s.runReminders); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	slog.Info("scheduler started", "jobs", len(s.cron.Entries()))
}

// Stop prevents new runs and waits for running jobs up to ctx's deadline.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		slog.Warn("scheduler stop timed out")
	}
}

func (s *Scheduler) runSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	n, err := s.SweepStalePayments(ctx)
	if err != nil {
		slog.Error("stale payment sweep failed", "error", err)
		return
	}
	if n > 0 {
		slog.Info("expired stale payments", "count", n)
	}
}

func (s *Scheduler) runReminders() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	n, err := s.SendFeeReminders(ctx)
	if err != nil {
		slog.Error("fee reminders failed", "error", err)
		return
	}
	slog.Info("fee reminders sent", "landlords", n)
}

// SweepStalePayments fails payments pending longer than the configured expiry.
func (s *Scheduler) SweepStalePayments(ctx context.Context) (int, error) {
	return s.payments.ExpireStale(ctx, s.paymentExpiry)
}

// SendFeeReminders sends one reminder per landlord with unpaid revenue streams and
// returns how many were delivered.
func (s *Scheduler) SendFeeReminders(ctx context.Context) (int, error) {
	byLandlord, err := s.ledger.OutstandingByLandlord(ctx)
	if err != nil {
		return 0, err
	}
	landlords := make([]uint, 0, len(byLandlord))
	for id := range byLandlord {
		landlords = append(landlords, id)
	}
	sort.Slice(landlords, func(i, j int) bool { return landlords[i] < landlords[j] })

	sent := 0
	for _, id := range landlords {
		total := decimal.Zero
		for _, sum := range byLandlord[id] {
			total = total.Add(sum.Outstanding)
		}
		if !total.IsPositive() {
			continue
		}
		err := s.notifier.FeeReminder(ctx, FeeReminder{
			LandlordID:  id,
			Streams:     len(byLandlord[id]),
			Outstanding: total,
			Currency:    s.currency,
		})
		if errors.Is(err, ErrNotifierDisabled) {
			return sent, nil
		}
		if err != nil {
			slog.Warn("fee reminder failed", "landlord_id", id, "error", err)
			continue
		}
		sent++
	}
	return sent, nil
}
