package persistence

import (
	"context"

	appcashier "github.com/clinicore/backend/internal/application/cashier"
	"github.com/clinicore/backend/internal/domain/cashier"
	"gorm.io/gorm"
)

// GormCashierTransactionScope implements the cashier TransactionScope using
// GORM database transactions
type GormCashierTransactionScope struct {
	db *gorm.DB
}

// NewGormCashierTransactionScope creates a new GormCashierTransactionScope
func NewGormCashierTransactionScope(db *gorm.DB) *GormCashierTransactionScope {
	return &GormCashierTransactionScope{db: db}
}

// Execute runs the given function within a database transaction
func (s *GormCashierTransactionScope) Execute(ctx context.Context, fn func(repos appcashier.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := &gormCashierTransactionalRepositories{tx: tx}
		return fn(repos)
	})
}

// gormCashierTransactionalRepositories provides repositories scoped to a transaction
type gormCashierTransactionalRepositories struct {
	tx *gorm.DB
}

// LedgerRepo returns a debt ledger repository using the transaction
func (r *gormCashierTransactionalRepositories) LedgerRepo() cashier.DebtLedgerRepository {
	return NewGormDebtLedgerRepository(r.tx)
}

// PaymentRepo returns a payment repository using the transaction
func (r *gormCashierTransactionalRepositories) PaymentRepo() cashier.PaymentRepository {
	return NewGormPaymentRepository(r.tx)
}

// ChangeLogRepo returns an audit trail repository using the transaction
func (r *gormCashierTransactionalRepositories) ChangeLogRepo() cashier.ChangeLogRepository {
	return NewGormChangeLogRepository(r.tx)
}

// Ensure interface compliance
var _ appcashier.TransactionScope = (*GormCashierTransactionScope)(nil)
var _ appcashier.TransactionalRepositories = (*gormCashierTransactionalRepositories)(nil)
