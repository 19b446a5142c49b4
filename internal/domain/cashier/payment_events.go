package cashier

import (
	"time"

	"github.com/clinicore/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentRecordedEvent is raised when a new payment is recorded
type PaymentRecordedEvent struct {
	shared.BaseDomainEvent
	PaymentID     uuid.UUID         `json:"payment_id"`
	ClinicID      uuid.UUID         `json:"clinic_id"`
	Amount        decimal.Decimal   `json:"amount"`
	Direction     PaymentDirection  `json:"direction"`
	MethodType    PaymentMethodType `json:"method_type"`
	TicketID      *uuid.UUID        `json:"ticket_id,omitempty"`
	CashSessionID *uuid.UUID        `json:"cash_session_id,omitempty"`
	PaymentDate   time.Time         `json:"payment_date"`
}

// EventType returns the event type name
func (e *PaymentRecordedEvent) EventType() string {
	return "PaymentRecorded"
}

// NewPaymentRecordedEvent creates a new PaymentRecordedEvent
func NewPaymentRecordedEvent(p *Payment) *PaymentRecordedEvent {
	return &PaymentRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("PaymentRecorded", "Payment", p.ID, p.TenantID),
		PaymentID:       p.ID,
		ClinicID:        p.ClinicID,
		Amount:          p.Amount,
		Direction:       p.Direction,
		MethodType:      p.MethodType,
		TicketID:        p.TicketID,
		CashSessionID:   p.CashSessionID,
		PaymentDate:     p.PaymentDate,
	}
}

// PaymentCancelledEvent is raised when a payment is cancelled and its
// reversal recorded
type PaymentCancelledEvent struct {
	shared.BaseDomainEvent
	PaymentID  uuid.UUID       `json:"payment_id"`
	ReversalID uuid.UUID       `json:"reversal_id"`
	Amount     decimal.Decimal `json:"amount"`
	Reason     string          `json:"reason"`
}

// EventType returns the event type name
func (e *PaymentCancelledEvent) EventType() string {
	return "PaymentCancelled"
}

// NewPaymentCancelledEvent creates a new PaymentCancelledEvent
func NewPaymentCancelledEvent(p *Payment, reversal *Payment, reason string) *PaymentCancelledEvent {
	return &PaymentCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("PaymentCancelled", "Payment", p.ID, p.TenantID),
		PaymentID:       p.ID,
		ReversalID:      reversal.ID,
		Amount:          p.Amount,
		Reason:          reason,
	}
}

// PaymentVerifiedEvent is raised when a payment is verified against the
// external statement
type PaymentVerifiedEvent struct {
	shared.BaseDomainEvent
	PaymentID  uuid.UUID `json:"payment_id"`
	Verified   bool      `json:"verified"`
	VerifiedBy uuid.UUID `json:"verified_by"`
	VerifiedAt time.Time `json:"verified_at"`
}

// EventType returns the event type name
func (e *PaymentVerifiedEvent) EventType() string {
	return "PaymentVerified"
}

// NewPaymentVerifiedEvent creates a new PaymentVerifiedEvent
func NewPaymentVerifiedEvent(v *PaymentVerification) *PaymentVerifiedEvent {
	return &PaymentVerifiedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("PaymentVerified", "Payment", v.PaymentID, v.TenantID),
		PaymentID:       v.PaymentID,
		Verified:        v.Verified,
		VerifiedBy:      v.VerifiedBy,
		VerifiedAt:      v.VerifiedAt,
	}
}
