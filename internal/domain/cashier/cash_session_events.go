package cashier

import (
	"time"

	"github.com/clinicore/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CashSessionOpenedEvent is raised when a cash session is opened
type CashSessionOpenedEvent struct {
	shared.BaseDomainEvent
	SessionID          uuid.UUID       `json:"session_id"`
	SessionNumber      string          `json:"session_number"`
	ClinicID           uuid.UUID       `json:"clinic_id"`
	PosTerminalID      *uuid.UUID      `json:"pos_terminal_id,omitempty"`
	BusinessDate       time.Time       `json:"business_date"`
	OpeningBalanceCash decimal.Decimal `json:"opening_balance_cash"`
	OpenedBy           uuid.UUID       `json:"opened_by"`
}

// EventType returns the event type name
func (e *CashSessionOpenedEvent) EventType() string {
	return "CashSessionOpened"
}

// NewCashSessionOpenedEvent creates a new CashSessionOpenedEvent
func NewCashSessionOpenedEvent(cs *CashSession) *CashSessionOpenedEvent {
	return &CashSessionOpenedEvent{
		BaseDomainEvent:    shared.NewBaseDomainEvent("CashSessionOpened", "CashSession", cs.ID, cs.TenantID),
		SessionID:          cs.ID,
		SessionNumber:      cs.SessionNumber,
		ClinicID:           cs.ClinicID,
		PosTerminalID:      cs.PosTerminalID,
		BusinessDate:       cs.BusinessDate,
		OpeningBalanceCash: cs.OpeningBalanceCash,
		OpenedBy:           cs.OpenedBy,
	}
}

// CashSessionClosedEvent is raised when a cash session is closed
type CashSessionClosedEvent struct {
	shared.BaseDomainEvent
	SessionID      uuid.UUID       `json:"session_id"`
	SessionNumber  string          `json:"session_number"`
	ClinicID       uuid.UUID       `json:"clinic_id"`
	ExpectedCash   decimal.Decimal `json:"expected_cash"`
	CountedCash    decimal.Decimal `json:"counted_cash"`
	DifferenceCash decimal.Decimal `json:"difference_cash"`
	ClosedBy       uuid.UUID       `json:"closed_by"`
	ClosedAt       time.Time       `json:"closed_at"`
}

// EventType returns the event type name
func (e *CashSessionClosedEvent) EventType() string {
	return "CashSessionClosed"
}

// NewCashSessionClosedEvent creates a new CashSessionClosedEvent
func NewCashSessionClosedEvent(cs *CashSession) *CashSessionClosedEvent {
	var closedBy uuid.UUID
	closedAt := time.Now()
	if cs.ClosedBy != nil {
		closedBy = *cs.ClosedBy
	}
	if cs.ClosedAt != nil {
		closedAt = *cs.ClosedAt
	}
	var expected, counted, difference decimal.Decimal
	if cs.ExpectedCash != nil {
		expected = *cs.ExpectedCash
	}
	if cs.Counted != nil {
		counted = cs.Counted.Cash
	}
	if cs.DifferenceCash != nil {
		difference = *cs.DifferenceCash
	}
	return &CashSessionClosedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("CashSessionClosed", "CashSession", cs.ID, cs.TenantID),
		SessionID:       cs.ID,
		SessionNumber:   cs.SessionNumber,
		ClinicID:        cs.ClinicID,
		ExpectedCash:    expected,
		CountedCash:     counted,
		DifferenceCash:  difference,
		ClosedBy:        closedBy,
		ClosedAt:        closedAt,
	}
}
