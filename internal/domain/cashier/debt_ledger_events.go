package cashier

import (
	"github.com/clinicore/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DebtLedgerCreatedEvent is raised when a new debt ledger is opened
type DebtLedgerCreatedEvent struct {
	shared.BaseDomainEvent
	LedgerID       uuid.UUID       `json:"ledger_id"`
	TicketID       uuid.UUID       `json:"ticket_id"`
	ClinicID       uuid.UUID       `json:"clinic_id"`
	OriginalAmount decimal.Decimal `json:"original_amount"`
}

// EventType returns the event type name
func (e *DebtLedgerCreatedEvent) EventType() string {
	return "DebtLedgerCreated"
}

// NewDebtLedgerCreatedEvent creates a new DebtLedgerCreatedEvent
func NewDebtLedgerCreatedEvent(dl *DebtLedger) *DebtLedgerCreatedEvent {
	return &DebtLedgerCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("DebtLedgerCreated", "DebtLedger", dl.ID, dl.TenantID),
		LedgerID:        dl.ID,
		TicketID:        dl.TicketID,
		ClinicID:        dl.ClinicID,
		OriginalAmount:  dl.OriginalAmount,
	}
}

// DebtLedgerPartiallySettledEvent is raised when a settlement is applied but
// a pending balance remains
type DebtLedgerPartiallySettledEvent struct {
	shared.BaseDomainEvent
	LedgerID      uuid.UUID       `json:"ledger_id"`
	TicketID      uuid.UUID       `json:"ticket_id"`
	SettledAmount decimal.Decimal `json:"settled_amount"`
	PaidAmount    decimal.Decimal `json:"paid_amount"`
	PendingAmount decimal.Decimal `json:"pending_amount"`
}

// EventType returns the event type name
func (e *DebtLedgerPartiallySettledEvent) EventType() string {
	return "DebtLedgerPartiallySettled"
}

// NewDebtLedgerPartiallySettledEvent creates a new DebtLedgerPartiallySettledEvent
func NewDebtLedgerPartiallySettledEvent(dl *DebtLedger, settled decimal.Decimal) *DebtLedgerPartiallySettledEvent {
	return &DebtLedgerPartiallySettledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("DebtLedgerPartiallySettled", "DebtLedger", dl.ID, dl.TenantID),
		LedgerID:        dl.ID,
		TicketID:        dl.TicketID,
		SettledAmount:   settled,
		PaidAmount:      dl.PaidAmount,
		PendingAmount:   dl.PendingAmount,
	}
}

// DebtLedgerSettledEvent is raised when a debt ledger reaches zero pending
type DebtLedgerSettledEvent struct {
	shared.BaseDomainEvent
	LedgerID       uuid.UUID       `json:"ledger_id"`
	TicketID       uuid.UUID       `json:"ticket_id"`
	OriginalAmount decimal.Decimal `json:"original_amount"`
}

// EventType returns the event type name
func (e *DebtLedgerSettledEvent) EventType() string {
	return "DebtLedgerSettled"
}

// NewDebtLedgerSettledEvent creates a new DebtLedgerSettledEvent
func NewDebtLedgerSettledEvent(dl *DebtLedger) *DebtLedgerSettledEvent {
	return &DebtLedgerSettledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("DebtLedgerSettled", "DebtLedger", dl.ID, dl.TenantID),
		LedgerID:        dl.ID,
		TicketID:        dl.TicketID,
		OriginalAmount:  dl.OriginalAmount,
	}
}

// DebtLedgerSettlementRevertedEvent is raised when a settlement payment is
// cancelled and its amount restored to pending
type DebtLedgerSettlementRevertedEvent struct {
	shared.BaseDomainEvent
	LedgerID       uuid.UUID       `json:"ledger_id"`
	TicketID       uuid.UUID       `json:"ticket_id"`
	RevertedAmount decimal.Decimal `json:"reverted_amount"`
	PaidAmount     decimal.Decimal `json:"paid_amount"`
	PendingAmount  decimal.Decimal `json:"pending_amount"`
}

// EventType returns the event type name
func (e *DebtLedgerSettlementRevertedEvent) EventType() string {
	return "DebtLedgerSettlementReverted"
}

// NewDebtLedgerSettlementRevertedEvent creates a new DebtLedgerSettlementRevertedEvent
func NewDebtLedgerSettlementRevertedEvent(dl *DebtLedger, reverted decimal.Decimal) *DebtLedgerSettlementRevertedEvent {
	return &DebtLedgerSettlementRevertedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("DebtLedgerSettlementReverted", "DebtLedger", dl.ID, dl.TenantID),
		LedgerID:        dl.ID,
		TicketID:        dl.TicketID,
		RevertedAmount:  reverted,
		PaidAmount:      dl.PaidAmount,
		PendingAmount:   dl.PendingAmount,
	}
}

// DebtLedgerCancelledEvent is raised when a debt ledger is cancelled
type DebtLedgerCancelledEvent struct {
	shared.BaseDomainEvent
	LedgerID      uuid.UUID       `json:"ledger_id"`
	TicketID      uuid.UUID       `json:"ticket_id"`
	PaidAmount    decimal.Decimal `json:"paid_amount"`
	PendingAmount decimal.Decimal `json:"pending_amount"`
	Reason        string          `json:"reason"`
}

// EventType returns the event type name
func (e *DebtLedgerCancelledEvent) EventType() string {
	return "DebtLedgerCancelled"
}

// NewDebtLedgerCancelledEvent creates a new DebtLedgerCancelledEvent
func NewDebtLedgerCancelledEvent(dl *DebtLedger) *DebtLedgerCancelledEvent {
	return &DebtLedgerCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("DebtLedgerCancelled", "DebtLedger", dl.ID, dl.TenantID),
		LedgerID:        dl.ID,
		TicketID:        dl.TicketID,
		PaidAmount:      dl.PaidAmount,
		PendingAmount:   dl.PendingAmount,
		Reason:          dl.CancelReason,
	}
}
