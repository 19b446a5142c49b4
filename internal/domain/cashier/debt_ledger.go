package cashier

import (
	"fmt"
	"time"

	"github.com/clinicore/backend/internal/domain/shared"
	"github.com/clinicore/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DebtStatus represents the status of a debt ledger
type DebtStatus string

const (
	DebtStatusOpen      DebtStatus = "OPEN"      // Nothing collected yet
	DebtStatusPartial   DebtStatus = "PARTIAL"   // 0 < paid < original
	DebtStatusSettled   DebtStatus = "SETTLED"   // Fully collected, pending = 0
	DebtStatusCancelled DebtStatus = "CANCELLED" // Ticket voided before full collection
)

// IsValid checks if the status is a valid DebtStatus
func (s DebtStatus) IsValid() bool {
	switch s {
	case DebtStatusOpen, DebtStatusPartial, DebtStatusSettled, DebtStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of DebtStatus
func (s DebtStatus) String() string {
	return string(s)
}

// IsTerminal returns true if the debt is in a terminal state
func (s DebtStatus) IsTerminal() bool {
	return s == DebtStatusSettled || s == DebtStatusCancelled
}

// CanSettle returns true if settlements can be applied in this status
func (s DebtStatus) CanSettle() bool {
	return s == DebtStatusOpen || s == DebtStatusPartial
}

// DebtLedger tracks the outstanding balance of a ticket paid with a deferred
// or partial method. At all times paid + pending == original and
// 0 <= paid <= original; every mutation goes through settlement or reversal.
type DebtLedger struct {
	shared.TenantAggregateRoot
	TicketID       uuid.UUID
	ClinicID       uuid.UUID
	ClientID       *uuid.UUID
	OriginalAmount decimal.Decimal
	PaidAmount     decimal.Decimal
	PendingAmount  decimal.Decimal
	Status         DebtStatus
	CancelledAt    *time.Time
	CancelReason   string
}

// NewDebtLedger creates a new open debt ledger for a ticket
func NewDebtLedger(
	tenantID uuid.UUID,
	ticketID uuid.UUID,
	clinicID uuid.UUID,
	originalAmount valueobject.Money,
) (*DebtLedger, error) {
	if ticketID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TICKET", "Ticket ID cannot be empty")
	}
	if clinicID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CLINIC", "Clinic ID cannot be empty")
	}
	if originalAmount.IsNegative() || originalAmount.IsZero() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Original amount must be positive")
	}

	dl := &DebtLedger{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		TicketID:            ticketID,
		ClinicID:            clinicID,
		OriginalAmount:      originalAmount.Amount(),
		PaidAmount:          decimal.Zero,
		PendingAmount:       originalAmount.Amount(),
		Status:              DebtStatusOpen,
	}

	dl.AddDomainEvent(NewDebtLedgerCreatedEvent(dl))

	return dl, nil
}

// WithClient attaches the debtor client reference
func (dl *DebtLedger) WithClient(clientID uuid.UUID) *DebtLedger {
	dl.ClientID = &clientID
	return dl
}

// ApplySettlement applies a collected amount to the ledger. Rejects without
// mutating anything when the amount would overdraw the pending balance; no
// silent clamping.
func (dl *DebtLedger) ApplySettlement(amount valueobject.Money) error {
	if !dl.Status.CanSettle() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot settle debt ledger in %s status", dl.Status))
	}
	if amount.IsNegative() || amount.IsZero() {
		return shared.NewDomainError("INVALID_AMOUNT", "Settlement amount must be positive")
	}
	if amount.Amount().GreaterThan(dl.PendingAmount) {
		return shared.NewDomainError("INSUFFICIENT_PENDING",
			fmt.Sprintf("Settlement amount %s exceeds pending amount %s",
				amount.Amount().StringFixed(2), dl.PendingAmount.StringFixed(2)))
	}

	dl.PaidAmount = dl.PaidAmount.Add(amount.Amount())
	dl.PendingAmount = dl.OriginalAmount.Sub(dl.PaidAmount)
	dl.recomputeStatus()

	dl.UpdatedAt = time.Now()
	dl.IncrementVersion()

	if dl.Status == DebtStatusSettled {
		dl.AddDomainEvent(NewDebtLedgerSettledEvent(dl))
	} else {
		dl.AddDomainEvent(NewDebtLedgerPartiallySettledEvent(dl, amount.Amount()))
	}

	return nil
}

// RevertSettlement undoes a previously applied settlement when its payment is
// cancelled, restoring the pending balance.
func (dl *DebtLedger) RevertSettlement(amount valueobject.Money) error {
	if dl.Status == DebtStatusCancelled {
		return shared.NewDomainError("INVALID_STATE", "Cannot revert settlement on a cancelled debt ledger")
	}
	if amount.IsNegative() || amount.IsZero() {
		return shared.NewDomainError("INVALID_AMOUNT", "Reverted amount must be positive")
	}
	if amount.Amount().GreaterThan(dl.PaidAmount) {
		return shared.NewDomainError("INVALID_AMOUNT",
			fmt.Sprintf("Reverted amount %s exceeds paid amount %s",
				amount.Amount().StringFixed(2), dl.PaidAmount.StringFixed(2)))
	}

	dl.PaidAmount = dl.PaidAmount.Sub(amount.Amount())
	dl.PendingAmount = dl.OriginalAmount.Sub(dl.PaidAmount)
	dl.recomputeStatus()

	dl.UpdatedAt = time.Now()
	dl.IncrementVersion()

	dl.AddDomainEvent(NewDebtLedgerSettlementRevertedEvent(dl, amount.Amount()))

	return nil
}

// Cancel cancels the ledger when the underlying ticket is voided. Allowed
// only from OPEN or PARTIAL; already-applied payments stay visible for audit.
func (dl *DebtLedger) Cancel(reason string) error {
	if !dl.Status.CanSettle() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot cancel debt ledger in %s status", dl.Status))
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Cancel reason is required")
	}

	now := time.Now()
	dl.Status = DebtStatusCancelled
	dl.CancelledAt = &now
	dl.CancelReason = reason
	dl.UpdatedAt = now
	dl.IncrementVersion()

	dl.AddDomainEvent(NewDebtLedgerCancelledEvent(dl))

	return nil
}

// recomputeStatus derives the status from the amounts. Never called for
// CANCELLED ledgers.
func (dl *DebtLedger) recomputeStatus() {
	switch {
	case dl.PendingAmount.IsZero():
		dl.Status = DebtStatusSettled
	case dl.PaidAmount.IsZero():
		dl.Status = DebtStatusOpen
	default:
		dl.Status = DebtStatusPartial
	}
}

// GetOriginalAmountMoney returns original amount as Money
func (dl *DebtLedger) GetOriginalAmountMoney() valueobject.Money {
	return valueobject.NewMoneyEUR(dl.OriginalAmount)
}

// GetPaidAmountMoney returns paid amount as Money
func (dl *DebtLedger) GetPaidAmountMoney() valueobject.Money {
	return valueobject.NewMoneyEUR(dl.PaidAmount)
}

// GetPendingAmountMoney returns pending amount as Money
func (dl *DebtLedger) GetPendingAmountMoney() valueobject.Money {
	return valueobject.NewMoneyEUR(dl.PendingAmount)
}

// IsCancelled returns true if the ledger is cancelled
func (dl *DebtLedger) IsCancelled() bool {
	return dl.Status == DebtStatusCancelled
}

// IsSettled returns true if the ledger is fully settled
func (dl *DebtLedger) IsSettled() bool {
	return dl.Status == DebtStatusSettled
}
