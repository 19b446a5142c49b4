package cashier

import (
	"time"

	"github.com/clinicore/backend/internal/domain/cashier"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OpenSessionRequest carries the input for opening (or re-joining) a cash session
type OpenSessionRequest struct {
	ClinicID           uuid.UUID       `json:"clinic_id" binding:"required"`
	ClinicPrefix       string          `json:"clinic_prefix"`
	PosTerminalID      *uuid.UUID      `json:"pos_terminal_id"`
	BusinessDate       time.Time       `json:"business_date"`
	OpeningBalanceCash decimal.Decimal `json:"opening_balance_cash"`
	OpenedBy           uuid.UUID       `json:"opened_by" binding:"required"`
}

// CloseSessionRequest carries the physically counted amounts entered at close
type CloseSessionRequest struct {
	CountedCash           decimal.Decimal `json:"counted_cash"`
	CountedCard           decimal.Decimal `json:"counted_card"`
	CountedBankTransfer   decimal.Decimal `json:"counted_bank_transfer"`
	CountedCheck          decimal.Decimal `json:"counted_check"`
	CountedInternalCredit decimal.Decimal `json:"counted_internal_credit"`
	Notes                 string          `json:"notes"`
	ClosedBy              uuid.UUID       `json:"closed_by" binding:"required"`
}

// CashSessionResponse represents a cash session in API responses
type CashSessionResponse struct {
	ID                 uuid.UUID              `json:"id"`
	TenantID           uuid.UUID              `json:"tenant_id"`
	SessionNumber      string                 `json:"session_number"`
	ClinicID           uuid.UUID              `json:"clinic_id"`
	PosTerminalID      *uuid.UUID             `json:"pos_terminal_id,omitempty"`
	BusinessDate       time.Time              `json:"business_date"`
	Status             string                 `json:"status"`
	OpeningBalanceCash decimal.Decimal        `json:"opening_balance_cash"`
	OpenedBy           uuid.UUID              `json:"opened_by"`
	OpenedAt           time.Time              `json:"opened_at"`
	ClosedBy           *uuid.UUID             `json:"closed_by,omitempty"`
	ClosedAt           *time.Time             `json:"closed_at,omitempty"`
	Counted            *CountedAmountsPayload `json:"counted,omitempty"`
	ExpectedCash       *decimal.Decimal       `json:"expected_cash,omitempty"`
	DifferenceCash     *decimal.Decimal       `json:"difference_cash,omitempty"`
	Notes              string                 `json:"notes,omitempty"`
	CreatedAt          time.Time              `json:"created_at"`
	UpdatedAt          time.Time              `json:"updated_at"`
	Version            int                    `json:"version"`
}

// CountedAmountsPayload mirrors the counted close amounts in responses
type CountedAmountsPayload struct {
	Cash           decimal.Decimal `json:"cash"`
	Card           decimal.Decimal `json:"card"`
	BankTransfer   decimal.Decimal `json:"bank_transfer"`
	Check          decimal.Decimal `json:"check"`
	InternalCredit decimal.Decimal `json:"internal_credit"`
}

// CashSessionListFilter defines filtering options for session list queries
type CashSessionListFilter struct {
	ClinicID      *uuid.UUID `form:"clinic_id"`
	PosTerminalID *uuid.UUID `form:"pos_terminal_id"`
	OpenedBy      *uuid.UUID `form:"opened_by"`
	Status        string     `form:"status"`
	FromDate      *time.Time `form:"from_date" time_format:"2006-01-02"`
	ToDate        *time.Time `form:"to_date" time_format:"2006-01-02"`
	Page          int        `form:"page"`
	PageSize      int        `form:"page_size"`
}

func toCashSessionResponse(cs *cashier.CashSession) *CashSessionResponse {
	resp := &CashSessionResponse{
		ID:                 cs.ID,
		TenantID:           cs.TenantID,
		SessionNumber:      cs.SessionNumber,
		ClinicID:           cs.ClinicID,
		PosTerminalID:      cs.PosTerminalID,
		BusinessDate:       cs.BusinessDate,
		Status:             cs.Status.String(),
		OpeningBalanceCash: cs.OpeningBalanceCash,
		OpenedBy:           cs.OpenedBy,
		OpenedAt:           cs.OpenedAt,
		ClosedBy:           cs.ClosedBy,
		ClosedAt:           cs.ClosedAt,
		ExpectedCash:       cs.ExpectedCash,
		DifferenceCash:     cs.DifferenceCash,
		Notes:              cs.Notes,
		CreatedAt:          cs.CreatedAt,
		UpdatedAt:          cs.UpdatedAt,
		Version:            cs.GetVersion(),
	}
	if cs.Counted != nil {
		resp.Counted = &CountedAmountsPayload{
			Cash:           cs.Counted.Cash,
			Card:           cs.Counted.Card,
			BankTransfer:   cs.Counted.BankTransfer,
			Check:          cs.Counted.Check,
			InternalCredit: cs.Counted.InternalCredit,
		}
	}
	return resp
}

// CreateDebtRequest carries the input for opening a debt ledger
type CreateDebtRequest struct {
	TicketID  uuid.UUID       `json:"ticket_id" binding:"required"`
	ClinicID  uuid.UUID       `json:"clinic_id" binding:"required"`
	ClientID  *uuid.UUID      `json:"client_id"`
	Amount    decimal.Decimal `json:"amount" binding:"required"`
	CreatedBy uuid.UUID       `json:"created_by" binding:"required"`
}

// SettleDebtRequest carries the input for collecting against a debt ledger
type SettleDebtRequest struct {
	Amount        decimal.Decimal `json:"amount" binding:"required"`
	MethodID      uuid.UUID       `json:"method_id" binding:"required"`
	MethodType    string          `json:"method_type" binding:"required"`
	PosTerminalID *uuid.UUID      `json:"pos_terminal_id"`
	UserID        uuid.UUID       `json:"user_id" binding:"required"`
}

// DebtLedgerResponse represents a debt ledger in API responses
type DebtLedgerResponse struct {
	ID             uuid.UUID       `json:"id"`
	TenantID       uuid.UUID       `json:"tenant_id"`
	TicketID       uuid.UUID       `json:"ticket_id"`
	ClinicID       uuid.UUID       `json:"clinic_id"`
	ClientID       *uuid.UUID      `json:"client_id,omitempty"`
	OriginalAmount decimal.Decimal `json:"original_amount"`
	PaidAmount     decimal.Decimal `json:"paid_amount"`
	PendingAmount  decimal.Decimal `json:"pending_amount"`
	Status         string          `json:"status"`
	CancelledAt    *time.Time      `json:"cancelled_at,omitempty"`
	CancelReason   string          `json:"cancel_reason,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	Version        int             `json:"version"`
}

// DebtLedgerListFilter defines filtering options for ledger list queries
type DebtLedgerListFilter struct {
	ClinicID *uuid.UUID `form:"clinic_id"`
	ClientID *uuid.UUID `form:"client_id"`
	TicketID *uuid.UUID `form:"ticket_id"`
	Status   string     `form:"status"`
	Page     int        `form:"page"`
	PageSize int        `form:"page_size"`
}

func toDebtLedgerResponse(dl *cashier.DebtLedger) *DebtLedgerResponse {
	return &DebtLedgerResponse{
		ID:             dl.ID,
		TenantID:       dl.TenantID,
		TicketID:       dl.TicketID,
		ClinicID:       dl.ClinicID,
		ClientID:       dl.ClientID,
		OriginalAmount: dl.OriginalAmount,
		PaidAmount:     dl.PaidAmount,
		PendingAmount:  dl.PendingAmount,
		Status:         dl.Status.String(),
		CancelledAt:    dl.CancelledAt,
		CancelReason:   dl.CancelReason,
		CreatedAt:      dl.CreatedAt,
		UpdatedAt:      dl.UpdatedAt,
		Version:        dl.GetVersion(),
	}
}

// PaymentResponse represents a payment in API responses
type PaymentResponse struct {
	ID            uuid.UUID       `json:"id"`
	TenantID      uuid.UUID       `json:"tenant_id"`
	ClinicID      uuid.UUID       `json:"clinic_id"`
	Amount        decimal.Decimal `json:"amount"`
	SignedAmount  decimal.Decimal `json:"signed_amount"`
	Direction     string          `json:"direction"`
	MethodID      uuid.UUID       `json:"method_id"`
	MethodType    string          `json:"method_type"`
	TicketID      *uuid.UUID      `json:"ticket_id,omitempty"`
	InvoiceID     *uuid.UUID      `json:"invoice_id,omitempty"`
	CashSessionID *uuid.UUID      `json:"cash_session_id,omitempty"`
	DebtLedgerID  *uuid.UUID      `json:"debt_ledger_id,omitempty"`
	PosTerminalID *uuid.UUID      `json:"pos_terminal_id,omitempty"`
	PaymentDate   time.Time       `json:"payment_date"`
	Status        string          `json:"status"`
	CancelledAt   *time.Time      `json:"cancelled_at,omitempty"`
	CancelReason  string          `json:"cancel_reason,omitempty"`
	ReversalOfID  *uuid.UUID      `json:"reversal_of_id,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

func toPaymentResponse(p *cashier.Payment) *PaymentResponse {
	return &PaymentResponse{
		ID:            p.ID,
		TenantID:      p.TenantID,
		ClinicID:      p.ClinicID,
		Amount:        p.Amount,
		SignedAmount:  p.SignedAmount(),
		Direction:     string(p.Direction),
		MethodID:      p.MethodID,
		MethodType:    p.MethodType.String(),
		TicketID:      p.TicketID,
		InvoiceID:     p.InvoiceID,
		CashSessionID: p.CashSessionID,
		DebtLedgerID:  p.DebtLedgerID,
		PosTerminalID: p.PosTerminalID,
		PaymentDate:   p.PaymentDate,
		Status:        string(p.Status),
		CancelledAt:   p.CancelledAt,
		CancelReason:  p.CancelReason,
		ReversalOfID:  p.ReversalOfID,
		CreatedAt:     p.CreatedAt,
	}
}

// CancelPaymentResult bundles the cancelled payment with its reversal record
type CancelPaymentResult struct {
	Payment  PaymentResponse `json:"payment"`
	Reversal PaymentResponse `json:"reversal"`
}

// VerifyPaymentRequest carries the back-office verdict for a payment
type VerifyPaymentRequest struct {
	PaymentID     uuid.UUID `json:"payment_id" binding:"required"`
	Verified      bool      `json:"verified"`
	AttachmentURL string    `json:"attachment_url"`
	VerifiedBy    uuid.UUID `json:"verified_by" binding:"required"`
	Notes         string    `json:"notes"`
}

// PaymentVerificationResponse represents a verification record in API responses
type PaymentVerificationResponse struct {
	ID            uuid.UUID `json:"id"`
	PaymentID     uuid.UUID `json:"payment_id"`
	Verified      bool      `json:"verified"`
	AttachmentURL string    `json:"attachment_url,omitempty"`
	VerifiedBy    uuid.UUID `json:"verified_by"`
	VerifiedAt    time.Time `json:"verified_at"`
	Notes         string    `json:"notes,omitempty"`
}

func toVerificationResponse(v *cashier.PaymentVerification) *PaymentVerificationResponse {
	return &PaymentVerificationResponse{
		ID:            v.ID,
		PaymentID:     v.PaymentID,
		Verified:      v.Verified,
		AttachmentURL: v.AttachmentURL,
		VerifiedBy:    v.VerifiedBy,
		VerifiedAt:    v.VerifiedAt,
		Notes:         v.Notes,
	}
}

// PendingVerificationListFilter defines filtering for the verification worklist
type PendingVerificationListFilter struct {
	ClinicID      *uuid.UUID `form:"clinic_id"`
	CashSessionID *uuid.UUID `form:"cash_session_id"`
	PosTerminalID *uuid.UUID `form:"pos_terminal_id"`
	MethodType    string     `form:"method_type"`
	FromDate      *time.Time `form:"from_date" time_format:"2006-01-02"`
	ToDate        *time.Time `form:"to_date" time_format:"2006-01-02"`
	Page          int        `form:"page"`
	PageSize      int        `form:"page_size"`
}

// PosBucket is one POS terminal's expected card totals in a session
type PosBucket struct {
	PosTerminalID    *uuid.UUID      `json:"pos_terminal_id"`
	ExpectedTickets  decimal.Decimal `json:"expected_tickets"`
	ExpectedDeferred decimal.Decimal `json:"expected_deferred"`
	ExpectedTotal    decimal.Decimal `json:"expected_total"`
}

// MethodBucket is one method type's signed totals in a session, split into
// ticket-backed and debt-settlement amounts
type MethodBucket struct {
	MethodType       string          `json:"method_type"`
	ExpectedTickets  decimal.Decimal `json:"expected_tickets"`
	ExpectedDeferred decimal.Decimal `json:"expected_deferred"`
	ExpectedTotal    decimal.Decimal `json:"expected_total"`
	Count            int64           `json:"count"`
}

// SessionTotalsResponse is the reconciliation view of a session
type SessionTotalsResponse struct {
	SessionID     uuid.UUID       `json:"session_id"`
	SessionNumber string          `json:"session_number"`
	CardByPos     []PosBucket     `json:"card_by_pos"`
	ByMethod      []MethodBucket  `json:"by_method"`
	Deferred      decimal.Decimal `json:"deferred"`
}

// ChangeLogEntryResponse represents an audit entry in API responses
type ChangeLogEntryResponse struct {
	ID         uuid.UUID             `json:"id"`
	EntityID   uuid.UUID             `json:"entity_id"`
	EntityType string                `json:"entity_type"`
	Action     string                `json:"action"`
	UserID     uuid.UUID             `json:"user_id"`
	Details    cashier.ChangeDetails `json:"details,omitempty"`
	CreatedAt  time.Time             `json:"created_at"`
}

func toChangeLogResponse(e *cashier.ChangeLogEntry) *ChangeLogEntryResponse {
	return &ChangeLogEntryResponse{
		ID:         e.ID,
		EntityID:   e.EntityID,
		EntityType: e.EntityType,
		Action:     e.Action.String(),
		UserID:     e.UserID,
		Details:    e.Details,
		CreatedAt:  e.CreatedAt,
	}
}
