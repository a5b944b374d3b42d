package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repos is the set of repositories bound to one database handle or transaction.
type Repos struct {
	Methods  *PaymentMethodRepository
	Payments *PaymentRepository
	Fees     *FeeRepository
	Revenue  *RevenueRepository
	Units    *UnitRepository
	Audit    *AuditLogRepository
}

func NewRepos(db *gorm.DB) *Repos {
	return &Repos{
		Methods:  NewPaymentMethodRepository(db),
		Payments: NewPaymentRepository(db),
		Fees:     NewFeeRepository(db),
		Revenue:  NewRevenueRepository(db),
		Units:    NewUnitRepository(db),
		Audit:    NewAuditLogRepository(db),
	}
}

// UnitOfWork runs a function against repositories sharing one transaction.
// The transaction commits when fn returns nil and rolls back otherwise.
type UnitOfWork struct {
	db *gorm.DB
}

func NewUnitOfWork(db *gorm.DB) *UnitOfWork {
	return &UnitOfWork{db: db}
}

func (u *UnitOfWork) Do(ctx context.Context, fn func(tx *Repos) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepos(tx))
	})
}
