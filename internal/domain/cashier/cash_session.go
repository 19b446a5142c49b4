package cashier

import (
	"fmt"
	"time"

	"github.com/clinicore/backend/internal/domain/shared"
	"github.com/clinicore/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CashSessionStatus represents the status of a cash session
type CashSessionStatus string

const (
	CashSessionStatusOpen   CashSessionStatus = "OPEN"
	CashSessionStatusClosed CashSessionStatus = "CLOSED"
)

// IsValid checks if the status is a valid CashSessionStatus
func (s CashSessionStatus) IsValid() bool {
	return s == CashSessionStatusOpen || s == CashSessionStatusClosed
}

// String returns the string representation of CashSessionStatus
func (s CashSessionStatus) String() string {
	return string(s)
}

// CountedAmounts holds the physically counted totals entered at close time,
// one bucket per settlement channel.
type CountedAmounts struct {
	Cash           decimal.Decimal
	Card           decimal.Decimal
	BankTransfer   decimal.Decimal
	Check          decimal.Decimal
	InternalCredit decimal.Decimal
}

// Total sums all counted buckets
func (c CountedAmounts) Total() decimal.Decimal {
	return c.Cash.Add(c.Card).Add(c.BankTransfer).Add(c.Check).Add(c.InternalCredit)
}

// CashSession is the daily working period of a clinic's cash drawer. At most
// one session per (tenant, clinic, POS terminal or none, business day) is
// ever OPEN; payments recorded during the day attach to it and closing it
// freezes the drawer with counted versus expected cash.
type CashSession struct {
	shared.TenantAggregateRoot
	SessionNumber      string
	ClinicID           uuid.UUID
	PosTerminalID      *uuid.UUID
	BusinessDate       time.Time
	Status             CashSessionStatus
	OpeningBalanceCash decimal.Decimal
	OpenedBy           uuid.UUID
	OpenedAt           time.Time
	ClosedBy           *uuid.UUID
	ClosedAt           *time.Time
	Counted            *CountedAmounts
	ExpectedCash       *decimal.Decimal
	DifferenceCash     *decimal.Decimal
	Notes              string
}

// NewCashSession opens a new cash session for a clinic and business day
func NewCashSession(
	tenantID uuid.UUID,
	sessionNumber string,
	clinicID uuid.UUID,
	businessDate time.Time,
	openingBalanceCash valueobject.Money,
	openedBy uuid.UUID,
) (*CashSession, error) {
	if sessionNumber == "" {
		return nil, shared.NewDomainError("INVALID_SESSION_NUMBER", "Session number cannot be empty")
	}
	if clinicID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CLINIC", "Clinic ID cannot be empty")
	}
	if openedBy == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "Opened by user ID cannot be empty")
	}
	if openingBalanceCash.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Opening balance cannot be negative")
	}

	now := time.Now()
	cs := &CashSession{
		TenantAggregateRoot: shared.NewTenantAggregateRootWithCreator(tenantID, openedBy),
		SessionNumber:       sessionNumber,
		ClinicID:            clinicID,
		BusinessDate:        truncateToDay(businessDate),
		Status:              CashSessionStatusOpen,
		OpeningBalanceCash:  openingBalanceCash.Amount(),
		OpenedBy:            openedBy,
		OpenedAt:            now,
	}

	cs.AddDomainEvent(NewCashSessionOpenedEvent(cs))

	return cs, nil
}

// WithPosTerminal scopes the session to a specific POS terminal. Sessions
// without a terminal cover the clinic's shared drawer.
func (cs *CashSession) WithPosTerminal(posTerminalID *uuid.UUID) *CashSession {
	cs.PosTerminalID = posTerminalID
	return cs
}

// IsOpen returns true if the session is still open
func (cs *CashSession) IsOpen() bool {
	return cs.Status == CashSessionStatusOpen
}

// Close closes the session with the physically counted amounts. expectedCash
// is the opening balance plus the signed sum of the session's CASH payments;
// the difference is counted minus expected. Closing a closed session fails,
// there is no reopen.
func (cs *CashSession) Close(
	counted CountedAmounts,
	cashPaymentsSum decimal.Decimal,
	closedBy uuid.UUID,
	notes string,
) error {
	if cs.Status == CashSessionStatusClosed {
		return shared.NewDomainError("SESSION_CLOSED", fmt.Sprintf("Cash session %s is already closed", cs.SessionNumber))
	}
	if closedBy == uuid.Nil {
		return shared.NewDomainError("INVALID_USER", "Closed by user ID cannot be empty")
	}
	if counted.Cash.IsNegative() || counted.Card.IsNegative() || counted.BankTransfer.IsNegative() ||
		counted.Check.IsNegative() || counted.InternalCredit.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "Counted amounts cannot be negative")
	}

	now := time.Now()
	expected := cs.OpeningBalanceCash.Add(cashPaymentsSum)
	difference := counted.Cash.Sub(expected)

	cs.Status = CashSessionStatusClosed
	cs.ClosedBy = &closedBy
	cs.ClosedAt = &now
	cs.Counted = &counted
	cs.ExpectedCash = &expected
	cs.DifferenceCash = &difference
	cs.Notes = notes
	cs.UpdatedAt = now
	cs.IncrementVersion()

	cs.AddDomainEvent(NewCashSessionClosedEvent(cs))

	return nil
}

// HasDiscrepancy returns true if the session closed with a non-zero cash
// difference
func (cs *CashSession) HasDiscrepancy() bool {
	return cs.DifferenceCash != nil && !cs.DifferenceCash.IsZero()
}

// GetOpeningBalanceMoney returns the opening balance as Money
func (cs *CashSession) GetOpeningBalanceMoney() valueobject.Money {
	return valueobject.NewMoneyEUR(cs.OpeningBalanceCash)
}

// truncateToDay normalizes a timestamp to midnight UTC so the business day
// key is stable regardless of the caller's clock
func truncateToDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
