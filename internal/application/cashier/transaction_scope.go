package cashier

import (
	"context"

	"github.com/clinicore/backend/internal/domain/cashier"
)

// TransactionScope provides transactional access to cashier repositories.
// When a function is executed within a transaction scope, all repository operations
// will be part of the same database transaction and will be committed or rolled back atomically.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	// If the function succeeds, the transaction is committed.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the cashier repositories within
// a transaction. All repositories returned share the same underlying database
// transaction.
//
// Settlement is the multi-aggregate write here: the debt ledger balance, the
// payment record and the audit entry must land together or not at all. The
// same applies to payment cancellation with its reversal record.
type TransactionalRepositories interface {
	// LedgerRepo returns the debt ledger repository scoped to the current transaction
	LedgerRepo() cashier.DebtLedgerRepository
	// PaymentRepo returns the payment repository scoped to the current transaction
	PaymentRepo() cashier.PaymentRepository
	// ChangeLogRepo returns the audit trail repository scoped to the current transaction
	ChangeLogRepo() cashier.ChangeLogRepository
}

// NoOpTransactionScope is a transaction scope that doesn't actually use transactions.
// This is useful for testing or when transaction support is not required.
type NoOpTransactionScope struct {
	ledgerRepo    cashier.DebtLedgerRepository
	paymentRepo   cashier.PaymentRepository
	changeLogRepo cashier.ChangeLogRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	ledgerRepo cashier.DebtLedgerRepository,
	paymentRepo cashier.PaymentRepository,
	changeLogRepo cashier.ChangeLogRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		ledgerRepo:    ledgerRepo,
		paymentRepo:   paymentRepo,
		changeLogRepo: changeLogRepo,
	}
}

// Execute runs the function without a real transaction (for testing/compatibility).
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// LedgerRepo returns the debt ledger repository.
func (s *NoOpTransactionScope) LedgerRepo() cashier.DebtLedgerRepository {
	return s.ledgerRepo
}

// PaymentRepo returns the payment repository.
func (s *NoOpTransactionScope) PaymentRepo() cashier.PaymentRepository {
	return s.paymentRepo
}

// ChangeLogRepo returns the audit trail repository.
func (s *NoOpTransactionScope) ChangeLogRepo() cashier.ChangeLogRepository {
	return s.changeLogRepo
}

// Ensure NoOpTransactionScope implements both interfaces
var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
