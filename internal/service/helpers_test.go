package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"bellissimo/internal/domain"
	"bellissimo/internal/models"
	"bellissimo/internal/repository"
	"bellissimo/internal/testutil"
	"bellissimo/pkg/cache"
	"bellissimo/pkg/payment"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type recordingNotifier struct {
	mu        sync.Mutex
	completed []PaymentNotice
	reminders []FeeReminder
}

func (n *recordingNotifier) PaymentCompleted(_ context.Context, p PaymentNotice) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.completed = append(n.completed, p)
	return nil
}

func (n *recordingNotifier) FeeReminder(_ context.Context, r FeeReminder) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.reminders = append(n.reminders, r)
	return nil
}

// failingNotifier rejects every send.
type failingNotifier struct{}

func (failingNotifier) PaymentCompleted(context.Context, PaymentNotice) error {
	return errors.New("smtp: connection refused")
}

func (failingNotifier) FeeReminder(context.Context, FeeReminder) error {
	return errors.New("smtp: connection refused")
}

type fixture struct {
	db       *gorm.DB
	repos    *repository.Repos
	registry *PaymentMethodRegistry
	fees     *FeeService
	payments *PaymentService
	ledger   *SettlementService
	notifier *recordingNotifier
	stk      *payment.StubProvider
	mpesa    *models.PaymentMethod
	bank     *models.PaymentMethod
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDB(t)
	repos := repository.NewRepos(db)
	uow := repository.NewUnitOfWork(db)
	f := &fixture{
		db:       db,
		repos:    repos,
		notifier: &recordingNotifier{},
		stk:      &payment.StubProvider{},
	}
	f.registry = NewPaymentMethodRegistry(repos.Methods, uow, cache.NewMemory(), 0)
	f.fees = NewFeeService(repos.Fees, uow)
	f.payments = NewPaymentService(repos, uow, f.registry, f.notifier, f.stk, "KES")
	f.ledger = NewSettlementService(repos, uow)
	t.Cleanup(f.payments.Wait)

	ctx := context.Background()
	var err error
	if f.mpesa, err = repos.Methods.GetByCode(ctx, domain.MethodCodeMpesa); err != nil {
		t.Fatalf("load mpesa: %v", err)
	}
	if f.bank, err = repos.Methods.GetByCode(ctx, domain.MethodCodeBank); err != nil {
		t.Fatalf("load bank: %v", err)
	}
	return f
}

const (
	tenantID   uint = 10
	landlordID uint = 20
)

func (f *fixture) unit(t *testing.T, unitType string) *models.ResidentialUnit {
	t.Helper()
	u := &models.ResidentialUnit{
		PropertyID: 1, LandlordID: landlordID, UnitNumber: "A1", UnitType: unitType,
		RentAmount: decimal.NewFromInt(12000), TenantID: ptr(tenantID),
	}
	if err := f.repos.Units.CreateUnit(context.Background(), u); err != nil {
		t.Fatalf("create unit: %v", err)
	}
	return u
}

func (f *fixture) booking(t *testing.T) *models.AirbnbBooking {
	t.Helper()
	b := &models.AirbnbBooking{AirbnbUnitID: 3, LandlordID: landlordID, GuestName: "Guest", Amount: decimal.NewFromInt(4500)}
	if err := f.repos.Units.CreateBooking(context.Background(), b); err != nil {
		t.Fatalf("create booking: %v", err)
	}
	return b
}

func (f *fixture) mpesaInput(target models.Target, amount int64) CreatePaymentInput {
	return CreatePaymentInput{
		PayerID:    tenantID,
		LandlordID: landlordID,
		Target:     target,
		Amount:     decimal.NewFromInt(amount),
		MethodID:   f.mpesa.ID,
		Details:    map[string]string{"phone_number": "+254712345678"},
	}
}

// completedPayment creates a payment on a fresh unit of unitType and completes it.
func (f *fixture) completedPayment(t *testing.T, unitType string) (*models.Payment, *models.RevenueStream) {
	t.Helper()
	ctx := context.Background()
	u := f.unit(t, unitType)
	p, err := f.payments.CreatePayment(ctx, f.mpesaInput(models.UnitTarget(u.ID), 12000))
	if err != nil {
		t.Fatalf("CreatePayment failed: %v", err)
	}
	p, err = f.payments.MarkCompleted(ctx, p.ID, "MPESA-REF-"+OrderID(p.ID))
	if err != nil {
		t.Fatalf("MarkCompleted failed: %v", err)
	}
	if p.RevenueStream == nil {
		t.Fatal("completed payment has no revenue stream")
	}
	return p, p.RevenueStream
}

func ptr[T any](v T) *T { return &v }

func assertKind(t *testing.T, err error, want *domain.Error) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", want.Kind)
	}
	if domain.KindOf(err) != want.Kind {
		t.Fatalf("expected %s error, got %v", want.Kind, err)
	}
}
