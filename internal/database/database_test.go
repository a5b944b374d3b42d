package database

import (
	"path/filepath"
	"testing"

	"bellissimo/config"
	"bellissimo/internal/models"
)

func TestSeedDefaultsIsIdempotent(t *testing.T) {
	db, err := NewDB(&config.DatabaseConfig{
		Driver:       "sqlite",
		DSN:          filepath.Join(t.TempDir(), "seed.db") + "?_pragma=foreign_keys(1)",
		MaxOpenConns: 1,
	})
	if err != nil {
		t.Fatalf("NewDB failed: %v", err)
	}
	if err := AutoMigrate(db); err != nil {
		t.Fatalf("AutoMigrate failed: %v", err)
	}

	for i := 0; i < 2; i++ {
		if err := SeedDefaults(db); err != nil {
			t.Fatalf("SeedDefaults run %d failed: %v", i+1, err)
		}
	}

	var methods int64
	db.Model(&models.PaymentMethod{}).Count(&methods)
	if methods != int64(len(DefaultMethods())) {
		t.Errorf("methods: got %d, want %d", methods, len(DefaultMethods()))
	}
	var fees int64
	db.Model(&models.AppFeeConfig{}).Count(&fees)
	if fees != int64(len(DefaultFees)) {
		t.Errorf("fee configs: got %d, want %d", fees, len(DefaultFees))
	}

	var mpesa models.PaymentMethod
	if err := db.Preload("Fields").Where("code = ?", "mpesa").First(&mpesa).Error; err != nil {
		t.Fatalf("load mpesa: %v", err)
	}
	if len(mpesa.Fields) != 2 {
		t.Errorf("mpesa fields: got %d, want 2", len(mpesa.Fields))
	}
}

func TestNewDBRejectsUnknownDriver(t *testing.T) {
	if _, err := NewDB(&config.DatabaseConfig{Driver: "oracle"}); err == nil {
		t.Error("expected error for unsupported driver")
	}
}
