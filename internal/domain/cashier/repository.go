package cashier

import (
	"context"
	"time"

	"github.com/clinicore/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CashSessionFilter defines filtering options for cash session queries
type CashSessionFilter struct {
	shared.Filter
	ClinicID      *uuid.UUID         // Filter by clinic
	PosTerminalID *uuid.UUID         // Filter by POS terminal
	Status        *CashSessionStatus // Filter by status
	FromDate      *time.Time         // Filter by business date range start
	ToDate        *time.Time         // Filter by business date range end
	OpenedBy      *uuid.UUID         // Filter by opener
}

// CashSessionRepository defines the interface for cash session persistence
type CashSessionRepository interface {
	// FindByIDForTenant finds a cash session by ID for a specific tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*CashSession, error)

	// FindOpenByScope finds the open session for a clinic, POS terminal (nil
	// means the clinic's shared drawer) and business day, if any
	FindOpenByScope(ctx context.Context, tenantID, clinicID uuid.UUID, posTerminalID *uuid.UUID, businessDate time.Time) (*CashSession, error)

	// FindAllForTenant finds cash sessions for a tenant with filtering
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter CashSessionFilter) ([]CashSession, error)

	// CountForTenant counts cash sessions for a tenant with optional filters
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter CashSessionFilter) (int64, error)

	// GenerateSessionNumber generates the next session number for a clinic
	// and business day, in the form <clinicPrefix>-YYYYMMDD-NNN
	GenerateSessionNumber(ctx context.Context, tenantID, clinicID uuid.UUID, clinicPrefix string, businessDate time.Time) (string, error)

	// Create inserts a new session. Returns shared.ErrAlreadyExists when an
	// open session for the same scope already exists.
	Create(ctx context.Context, session *CashSession) error

	// Save updates an existing session
	Save(ctx context.Context, session *CashSession) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, session *CashSession) error
}

// PaymentFilter defines filtering options for payment queries
type PaymentFilter struct {
	shared.Filter
	ClinicID      *uuid.UUID         // Filter by clinic
	CashSessionID *uuid.UUID         // Filter by cash session
	TicketID      *uuid.UUID         // Filter by ticket
	MethodType    *PaymentMethodType // Filter by method type
	Status        *PaymentStatus     // Filter by status
	FromDate      *time.Time         // Filter by payment date range start
	ToDate        *time.Time         // Filter by payment date range end
}

// PendingVerificationFilter defines filtering for the verification worklist
type PendingVerificationFilter struct {
	shared.Filter
	ClinicID      *uuid.UUID         // Filter by clinic
	CashSessionID *uuid.UUID         // Filter by cash session
	PosTerminalID *uuid.UUID         // Filter by POS terminal
	MethodType    *PaymentMethodType // Filter by a single verifiable method type
	FromDate      *time.Time         // Filter by payment date range start
	ToDate        *time.Time         // Filter by payment date range end
}

// PaymentRepository defines the interface for payment persistence
type PaymentRepository interface {
	// FindByIDForTenant finds a payment by ID for a specific tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Payment, error)

	// FindAllForTenant finds payments for a tenant with filtering
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter PaymentFilter) ([]Payment, error)

	// CountForTenant counts payments for a tenant with optional filters
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter PaymentFilter) (int64, error)

	// FindByCashSession finds all payments attached to a cash session
	FindByCashSession(ctx context.Context, tenantID, sessionID uuid.UUID) ([]Payment, error)

	// FindByDebtLedger finds all payments applied to a debt ledger
	FindByDebtLedger(ctx context.Context, tenantID, ledgerID uuid.UUID) ([]Payment, error)

	// FindPendingVerification finds completed payments with a verifiable
	// method type that have no verification record yet
	FindPendingVerification(ctx context.Context, tenantID uuid.UUID, filter PendingVerificationFilter) ([]Payment, error)

	// CountPendingVerification counts the verification worklist
	CountPendingVerification(ctx context.Context, tenantID uuid.UUID, filter PendingVerificationFilter) (int64, error)

	// SumCashForSession returns the signed sum of completed CASH payments
	// attached to a session (debits positive, credits negative)
	SumCashForSession(ctx context.Context, tenantID, sessionID uuid.UUID) (decimal.Decimal, error)

	// Create inserts a new payment
	Create(ctx context.Context, payment *Payment) error

	// Save updates an existing payment
	Save(ctx context.Context, payment *Payment) error
}

// DebtLedgerFilter defines filtering options for debt ledger queries
type DebtLedgerFilter struct {
	shared.Filter
	ClinicID *uuid.UUID  // Filter by clinic
	ClientID *uuid.UUID  // Filter by debtor client
	TicketID *uuid.UUID  // Filter by source ticket
	Status   *DebtStatus // Filter by status
	FromDate *time.Time  // Filter by creation date range start
	ToDate   *time.Time  // Filter by creation date range end
}

// DebtLedgerRepository defines the interface for debt ledger persistence
type DebtLedgerRepository interface {
	// FindByIDForTenant finds a debt ledger by ID for a specific tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*DebtLedger, error)

	// FindByIDForUpdate finds a debt ledger by ID with a row lock, for use
	// inside a transaction scope
	FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*DebtLedger, error)

	// FindActiveByTicket finds the OPEN or PARTIAL ledger for a ticket, if any
	FindActiveByTicket(ctx context.Context, tenantID, ticketID uuid.UUID) (*DebtLedger, error)

	// FindAllForTenant finds debt ledgers for a tenant with filtering
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter DebtLedgerFilter) ([]DebtLedger, error)

	// CountForTenant counts debt ledgers for a tenant with optional filters
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter DebtLedgerFilter) (int64, error)

	// Create inserts a new debt ledger
	Create(ctx context.Context, ledger *DebtLedger) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, ledger *DebtLedger) error
}

// PaymentVerificationRepository defines the interface for verification persistence
type PaymentVerificationRepository interface {
	// Create inserts a verification record. Returns shared.ErrAlreadyExists
	// when the payment is already verified.
	Create(ctx context.Context, verification *PaymentVerification) error

	// FindByPayment finds the verification record for a payment, if any
	FindByPayment(ctx context.Context, tenantID, paymentID uuid.UUID) (*PaymentVerification, error)

	// ExistsForPayment reports whether a payment is already verified
	ExistsForPayment(ctx context.Context, tenantID, paymentID uuid.UUID) (bool, error)
}

// ChangeLogRepository defines the interface for the append-only audit trail
type ChangeLogRepository interface {
	// Create appends an audit entry
	Create(ctx context.Context, entry *ChangeLogEntry) error

	// FindByEntity finds audit entries for an entity, newest first
	FindByEntity(ctx context.Context, tenantID, entityID uuid.UUID, filter shared.Filter) ([]ChangeLogEntry, error)
}

// PosTotalsRow is one aggregation bucket of a session's card payments per
// POS terminal, as produced by the reconciliation query
type PosTotalsRow struct {
	PosTerminalID    *uuid.UUID
	ExpectedTickets  decimal.Decimal
	ExpectedDeferred decimal.Decimal
}

// MethodTotalsRow is one aggregation bucket of a session's payments per
// method type, split into ticket-backed and debt-settlement amounts.
// Amounts are signed, credits subtract.
type MethodTotalsRow struct {
	MethodType       PaymentMethodType
	ExpectedTickets  decimal.Decimal
	ExpectedDeferred decimal.Decimal
	Count            int64
}

// ReconciliationRepository defines the read-side aggregation queries used to
// reconcile a session against external statements
type ReconciliationRepository interface {
	// CardTotalsByPos sums completed card payments of a session grouped by
	// POS terminal, split into ticket-backed and deferred-settlement amounts
	CardTotalsByPos(ctx context.Context, tenantID, sessionID uuid.UUID) ([]PosTotalsRow, error)

	// TotalsByMethod sums completed payments of a session grouped by method
	// type, split into ticket-backed and debt-settlement amounts
	TotalsByMethod(ctx context.Context, tenantID, sessionID uuid.UUID) ([]MethodTotalsRow, error)
}
