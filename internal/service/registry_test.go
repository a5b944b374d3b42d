package service

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"bellissimo/internal/domain"
	"bellissimo/internal/models"

	"github.com/shopspring/decimal"
)

func TestGetFieldConfiguration(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cfg, err := f.registry.GetFieldConfiguration(ctx, f.mpesa.ID)
	if err != nil {
		t.Fatalf("GetFieldConfiguration failed: %v", err)
	}
	if !reflect.DeepEqual(cfg.Required, []string{"phone_number"}) {
		t.Errorf("required: %v", cfg.Required)
	}
	if !reflect.DeepEqual(cfg.Optional, []string{"account_name"}) {
		t.Errorf("optional: %v", cfg.Optional)
	}
	if !reflect.DeepEqual(cfg.Disallowed, []string{"account_number", "bank_name", "branch"}) {
		t.Errorf("disallowed: %v", cfg.Disallowed)
	}
	if cfg.Validation["phone_number"].Pattern == "" {
		t.Error("expected phone_number pattern")
	}

	if _, err := f.registry.GetFieldConfiguration(ctx, 999); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("unknown method: got %v", err)
	}
}

func TestReplaceFieldsInvalidatesCache(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.registry.GetFieldConfiguration(ctx, f.bank.ID); err != nil {
		t.Fatalf("warm cache: %v", err)
	}
	_, err := f.registry.ReplaceFields(ctx, f.mpesa.ID, []models.PaymentFieldConfig{
		{FieldName: "phone_number", Required: true},
		{FieldName: "till_number"},
	})
	if err != nil {
		t.Fatalf("ReplaceFields failed: %v", err)
	}

	mpesa, _ := f.registry.GetFieldConfiguration(ctx, f.mpesa.ID)
	if !reflect.DeepEqual(mpesa.Optional, []string{"till_number"}) || len(mpesa.Validation) != 0 {
		t.Errorf("mpesa after replace: %+v", mpesa)
	}
	bank, _ := f.registry.GetFieldConfiguration(ctx, f.bank.ID)
	if !reflect.DeepEqual(bank.Disallowed, []string{"phone_number", "till_number"}) {
		t.Errorf("bank disallowed should reflect mpesa change: %v", bank.Disallowed)
	}
}

func TestReplaceFieldsRejectsBadConfig(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cases := [][]models.PaymentFieldConfig{
		{{FieldName: "Phone Number"}},
		{{FieldName: "a"}, {FieldName: "a"}},
		{{FieldName: "a", ValidationPattern: "("}},
	}
	for _, fields := range cases {
		if _, err := f.registry.ReplaceFields(ctx, f.mpesa.ID, fields); !errors.Is(err, domain.ErrValidation) {
			t.Errorf("ReplaceFields(%+v) = %v, want validation error", fields, err)
		}
	}
	if _, err := f.registry.ReplaceFields(ctx, 999, nil); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("unknown method: got %v", err)
	}
}

func TestCreateMethod(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	m := &models.PaymentMethod{Code: " Card ", Name: "Card", IsActive: true, Fields: []models.PaymentFieldConfig{
		{FieldName: "card_last4", Required: true, ValidationPattern: `^\d{4}$`},
	}}
	if err := f.registry.CreateMethod(ctx, m); err != nil {
		t.Fatalf("CreateMethod failed: %v", err)
	}
	if m.Code != "card" {
		t.Errorf("code not normalized: %q", m.Code)
	}
	err := f.registry.CreateMethod(ctx, &models.PaymentMethod{Code: "card", Name: "Card again", IsActive: true})
	if !errors.Is(err, domain.ErrAlreadyExists) {
		t.Errorf("duplicate code: got %v", err)
	}
}

func TestValidateDetails(t *testing.T) {
	cfg := &FieldConfiguration{
		MethodCode: "bank",
		Required:   []string{"account_number", "bank_name"},
		Optional:   []string{"branch"},
		Validation: map[string]FieldRule{"account_number": {Pattern: `^\d{6,20}$`, Message: "bad account"}},
	}
	tests := []struct {
		name    string
		details map[string]string
		field   string
	}{
		{"valid", map[string]string{"account_number": "123456", "bank_name": "KCB"}, ""},
		{"valid with optional", map[string]string{"account_number": "123456", "bank_name": "KCB", "branch": "Moi Ave"}, ""},
		{"missing required", map[string]string{"bank_name": "KCB"}, "account_number"},
		{"undeclared", map[string]string{"account_number": "123456", "bank_name": "KCB", "phone_number": "+254712345678"}, "phone_number"},
		{"pattern", map[string]string{"account_number": "12ab", "bank_name": "KCB"}, "account_number"},
		{"padded value matches trimmed", map[string]string{"account_number": " 123456 ", "bank_name": "KCB"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDetails(cfg, tt.details)
			if tt.field == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, domain.ErrValidation) || domain.FieldOf(err) != tt.field {
				t.Errorf("got %v, want validation error on %s", err, tt.field)
			}
		})
	}

	err := ValidateDetails(cfg, map[string]string{"account_number": "12ab", "bank_name": "KCB"})
	if got := err.Error(); got != "account_number: bad account" {
		t.Errorf("message: got %q", got)
	}
}

func TestValidateDetailsBadPattern(t *testing.T) {
	cfg := &FieldConfiguration{
		MethodCode: "bank",
		Optional:   []string{"branch"},
		Validation: map[string]FieldRule{"branch": {Pattern: `([a-z`}},
	}
	err := ValidateDetails(cfg, map[string]string{"branch": "Moi Ave"})
	if !errors.Is(err, domain.ErrConfiguration) {
		t.Errorf("got %v, want configuration error", err)
	}
}

func TestComputeFee(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	fee, err := f.fees.ComputeFee(ctx, domain.UnitTypeOneBedroom)
	if err != nil || !fee.Equal(decimal.NewFromInt(800)) {
		t.Errorf("ComputeFee(1br) = %s, %v", fee, err)
	}
	if _, err := f.fees.ComputeFee(ctx, "penthouse"); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("unknown type: got %v", err)
	}

	f.db.Where("unit_type = ?", domain.UnitTypeAirbnb).Delete(&models.AppFeeConfig{})
	_, err = f.fees.ComputeFee(ctx, domain.UnitTypeAirbnb)
	if !errors.Is(err, domain.ErrConfiguration) {
		t.Errorf("missing fee: got %v", err)
	}
}

func TestDeriveRevenueStreamOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p, _ := f.completedPayment(t, domain.UnitTypeBedsitter)

	_, err := f.fees.DeriveRevenueStream(ctx, p.ID)
	assertKind(t, err, domain.ErrAlreadyExists)

	u := f.unit(t, domain.UnitTypeBedsitter)
	pending, _ := f.payments.CreatePayment(ctx, f.mpesaInput(models.UnitTarget(u.ID), 12000))
	_, err = f.fees.DeriveRevenueStream(ctx, pending.ID)
	assertKind(t, err, domain.ErrInvalidState)
}
