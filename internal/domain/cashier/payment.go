package cashier

import (
	"time"

	"github.com/clinicore/backend/internal/domain/shared"
	"github.com/clinicore/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentDirection indicates whether a payment moves money into (DEBIT) or
// out of (CREDIT) the clinic
type PaymentDirection string

const (
	DirectionDebit  PaymentDirection = "DEBIT"
	DirectionCredit PaymentDirection = "CREDIT"
)

// IsValid checks if the direction is a valid PaymentDirection
func (d PaymentDirection) IsValid() bool {
	return d == DirectionDebit || d == DirectionCredit
}

// Opposite returns the reversing direction
func (d PaymentDirection) Opposite() PaymentDirection {
	if d == DirectionDebit {
		return DirectionCredit
	}
	return DirectionDebit
}

// PaymentStatus represents the lifecycle status of a payment record
type PaymentStatus string

const (
	PaymentStatusCompleted PaymentStatus = "COMPLETED"
	PaymentStatusCancelled PaymentStatus = "CANCELLED"
)

// IsValid checks if the status is a valid PaymentStatus
func (s PaymentStatus) IsValid() bool {
	return s == PaymentStatusCompleted || s == PaymentStatusCancelled
}

// Payment is an append-mostly monetary movement record. Amount is always a
// non-negative magnitude; the signed contribution to any total is derived
// from the direction. Cancellation never deletes or edits the core fields:
// it flips the status and appends a linked reversal record.
type Payment struct {
	shared.TenantAggregateRoot
	ClinicID      uuid.UUID
	Amount        decimal.Decimal
	Direction     PaymentDirection
	MethodID      uuid.UUID
	MethodType    PaymentMethodType
	TicketID      *uuid.UUID
	InvoiceID     *uuid.UUID
	CashSessionID *uuid.UUID
	DebtLedgerID  *uuid.UUID
	PosTerminalID *uuid.UUID
	PaymentDate   time.Time
	Status        PaymentStatus
	CancelledAt   *time.Time
	CancelReason  string
	ReversalOfID  *uuid.UUID
}

// NewPayment creates a new COMPLETED payment record
func NewPayment(
	tenantID uuid.UUID,
	clinicID uuid.UUID,
	amount valueobject.Money,
	direction PaymentDirection,
	methodID uuid.UUID,
	methodType PaymentMethodType,
	paymentDate time.Time,
) (*Payment, error) {
	if clinicID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CLINIC", "Clinic ID cannot be empty")
	}
	if amount.IsNegative() || amount.IsZero() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if !direction.IsValid() {
		return nil, shared.NewDomainError("INVALID_DIRECTION", "Payment direction must be DEBIT or CREDIT")
	}
	if methodID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_METHOD", "Payment method ID cannot be empty")
	}
	if !methodType.IsValid() {
		return nil, shared.NewDomainError("INVALID_METHOD_TYPE", "Payment method type is not valid")
	}
	if paymentDate.IsZero() {
		paymentDate = time.Now()
	}

	p := &Payment{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		ClinicID:            clinicID,
		Amount:              amount.Amount(),
		Direction:           direction,
		MethodID:            methodID,
		MethodType:          methodType,
		PaymentDate:         paymentDate,
		Status:              PaymentStatusCompleted,
	}

	p.AddDomainEvent(NewPaymentRecordedEvent(p))

	return p, nil
}

// WithTicket links the payment to a ticket
func (p *Payment) WithTicket(ticketID uuid.UUID) *Payment {
	p.TicketID = &ticketID
	return p
}

// WithInvoice links the payment to an invoice
func (p *Payment) WithInvoice(invoiceID uuid.UUID) *Payment {
	p.InvoiceID = &invoiceID
	return p
}

// WithCashSession links the payment to the active cash session
func (p *Payment) WithCashSession(sessionID uuid.UUID) *Payment {
	p.CashSessionID = &sessionID
	return p
}

// WithDebtLedger links the payment to a debt ledger settlement
func (p *Payment) WithDebtLedger(debtLedgerID uuid.UUID) *Payment {
	p.DebtLedgerID = &debtLedgerID
	return p
}

// WithPosTerminal links the payment to a POS terminal
func (p *Payment) WithPosTerminal(posTerminalID uuid.UUID) *Payment {
	p.PosTerminalID = &posTerminalID
	return p
}

// SignedAmount returns the contribution of this payment to any total:
// the amount for DEBIT, the negated amount for CREDIT.
func (p *Payment) SignedAmount() decimal.Decimal {
	if p.Direction == DirectionCredit {
		return p.Amount.Neg()
	}
	return p.Amount
}

// GetAmountMoney returns the amount as Money value object
func (p *Payment) GetAmountMoney() valueobject.Money {
	return valueobject.NewMoneyEUR(p.Amount)
}

// IsCompleted returns true if the payment is still effective
func (p *Payment) IsCompleted() bool {
	return p.Status == PaymentStatusCompleted
}

// IsCancelled returns true if the payment has been cancelled
func (p *Payment) IsCancelled() bool {
	return p.Status == PaymentStatusCancelled
}

// IsDeferred returns true if the payment was taken with a deferred method
func (p *Payment) IsDeferred() bool {
	return p.MethodType.IsDeferred()
}

// IsDebtSettlement returns true if the payment settles a debt ledger
func (p *Payment) IsDebtSettlement() bool {
	return p.DebtLedgerID != nil
}

// Cancel flips the payment to CANCELLED and returns the reversal record that
// neutralizes its signed effect. Amount, method and date stay untouched so
// the audit trail remains intact.
func (p *Payment) Cancel(reason string) (*Payment, error) {
	if p.Status == PaymentStatusCancelled {
		return nil, shared.NewDomainError("ALREADY_CANCELLED", "Payment is already cancelled")
	}
	if reason == "" {
		return nil, shared.NewDomainError("INVALID_REASON", "Cancel reason is required")
	}

	now := time.Now()
	p.Status = PaymentStatusCancelled
	p.CancelledAt = &now
	p.CancelReason = reason
	p.UpdatedAt = now
	p.IncrementVersion()

	reversal := &Payment{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(p.TenantID),
		ClinicID:            p.ClinicID,
		Amount:              p.Amount,
		Direction:           p.Direction.Opposite(),
		MethodID:            p.MethodID,
		MethodType:          p.MethodType,
		TicketID:            p.TicketID,
		InvoiceID:           p.InvoiceID,
		CashSessionID:       p.CashSessionID,
		DebtLedgerID:        p.DebtLedgerID,
		PosTerminalID:       p.PosTerminalID,
		PaymentDate:         now,
		Status:              PaymentStatusCompleted,
		CancelReason:        reason,
	}
	originalID := p.ID
	reversal.ReversalOfID = &originalID

	p.AddDomainEvent(NewPaymentCancelledEvent(p, reversal, reason))

	return reversal, nil
}
