package models

import (
	"time"

	"github.com/clinicore/backend/internal/domain/cashier"
	"github.com/clinicore/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CashSessionModel is the persistence model for the CashSession aggregate root.
// The partial unique index enforcing one OPEN session per (tenant, clinic,
// business day) lives in the SQL migrations; GORM tags cannot express it.
type CashSessionModel struct {
	TenantAggregateModel
	SessionNumber         string                    `gorm:"type:varchar(50);not null;uniqueIndex:idx_cash_session_tenant_number,priority:2"`
	ClinicID              uuid.UUID                 `gorm:"type:uuid;not null;index"`
	PosTerminalID         *uuid.UUID                `gorm:"type:uuid;index"`
	BusinessDate          time.Time                 `gorm:"type:date;not null;index"`
	Status                cashier.CashSessionStatus `gorm:"type:varchar(10);not null;default:'OPEN';index"`
	OpeningBalanceCash    decimal.Decimal           `gorm:"type:decimal(18,4);not null"`
	OpenedBy              uuid.UUID                 `gorm:"type:uuid;not null"`
	OpenedAt              time.Time                 `gorm:"not null"`
	ClosedBy              *uuid.UUID                `gorm:"type:uuid"`
	ClosedAt              *time.Time
	CountedCash           *decimal.Decimal `gorm:"type:decimal(18,4)"`
	CountedCard           *decimal.Decimal `gorm:"type:decimal(18,4)"`
	CountedBankTransfer   *decimal.Decimal `gorm:"type:decimal(18,4)"`
	CountedCheck          *decimal.Decimal `gorm:"type:decimal(18,4)"`
	CountedInternalCredit *decimal.Decimal `gorm:"type:decimal(18,4)"`
	ExpectedCash          *decimal.Decimal `gorm:"type:decimal(18,4)"`
	DifferenceCash        *decimal.Decimal `gorm:"type:decimal(18,4)"`
	Notes                 string           `gorm:"type:text"`
}

// TableName returns the database table name
func (CashSessionModel) TableName() string {
	return "cash_sessions"
}

// ToDomain converts the persistence model to a domain CashSession entity.
func (m *CashSessionModel) ToDomain() *cashier.CashSession {
	cs := &cashier.CashSession{
		TenantAggregateRoot: shared.TenantAggregateRoot{
			BaseAggregateRoot: shared.BaseAggregateRoot{
				BaseEntity: shared.BaseEntity{
					ID:        m.ID,
					CreatedAt: m.CreatedAt,
					UpdatedAt: m.UpdatedAt,
				},
				Version: m.Version,
			},
			TenantID:  m.TenantID,
			CreatedBy: m.CreatedBy,
		},
		SessionNumber:      m.SessionNumber,
		ClinicID:           m.ClinicID,
		PosTerminalID:      m.PosTerminalID,
		BusinessDate:       m.BusinessDate,
		Status:             m.Status,
		OpeningBalanceCash: m.OpeningBalanceCash,
		OpenedBy:           m.OpenedBy,
		OpenedAt:           m.OpenedAt,
		ClosedBy:           m.ClosedBy,
		ClosedAt:           m.ClosedAt,
		ExpectedCash:       m.ExpectedCash,
		DifferenceCash:     m.DifferenceCash,
		Notes:              m.Notes,
	}
	if m.CountedCash != nil {
		counted := cashier.CountedAmounts{Cash: *m.CountedCash}
		if m.CountedCard != nil {
			counted.Card = *m.CountedCard
		}
		if m.CountedBankTransfer != nil {
			counted.BankTransfer = *m.CountedBankTransfer
		}
		if m.CountedCheck != nil {
			counted.Check = *m.CountedCheck
		}
		if m.CountedInternalCredit != nil {
			counted.InternalCredit = *m.CountedInternalCredit
		}
		cs.Counted = &counted
	}
	return cs
}

// FromDomain populates the persistence model from a domain CashSession entity.
func (m *CashSessionModel) FromDomain(cs *cashier.CashSession) {
	m.FromDomainTenantAggregateRoot(cs.TenantAggregateRoot)
	m.SessionNumber = cs.SessionNumber
	m.ClinicID = cs.ClinicID
	m.PosTerminalID = cs.PosTerminalID
	m.BusinessDate = cs.BusinessDate
	m.Status = cs.Status
	m.OpeningBalanceCash = cs.OpeningBalanceCash
	m.OpenedBy = cs.OpenedBy
	m.OpenedAt = cs.OpenedAt
	m.ClosedBy = cs.ClosedBy
	m.ClosedAt = cs.ClosedAt
	m.ExpectedCash = cs.ExpectedCash
	m.DifferenceCash = cs.DifferenceCash
	m.Notes = cs.Notes
	if cs.Counted != nil {
		m.CountedCash = &cs.Counted.Cash
		m.CountedCard = &cs.Counted.Card
		m.CountedBankTransfer = &cs.Counted.BankTransfer
		m.CountedCheck = &cs.Counted.Check
		m.CountedInternalCredit = &cs.Counted.InternalCredit
	}
}

// CashSessionModelFromDomain creates a new persistence model from a domain CashSession.
func CashSessionModelFromDomain(cs *cashier.CashSession) *CashSessionModel {
	m := &CashSessionModel{}
	m.FromDomain(cs)
	return m
}

// PaymentModel is the persistence model for the Payment aggregate root.
type PaymentModel struct {
	TenantAggregateModel
	ClinicID      uuid.UUID                 `gorm:"type:uuid;not null;index"`
	Amount        decimal.Decimal           `gorm:"type:decimal(18,4);not null"`
	Direction     cashier.PaymentDirection  `gorm:"type:varchar(6);not null"`
	MethodID      uuid.UUID                 `gorm:"type:uuid;not null;index"`
	MethodType    cashier.PaymentMethodType `gorm:"type:varchar(20);not null;index"`
	TicketID      *uuid.UUID                `gorm:"type:uuid;index"`
	InvoiceID     *uuid.UUID                `gorm:"type:uuid;index"`
	CashSessionID *uuid.UUID                `gorm:"type:uuid;index"`
	DebtLedgerID  *uuid.UUID                `gorm:"type:uuid;index"`
	PosTerminalID *uuid.UUID                `gorm:"type:uuid;index"`
	PaymentDate   time.Time                 `gorm:"not null;index"`
	Status        cashier.PaymentStatus     `gorm:"type:varchar(10);not null;default:'COMPLETED';index"`
	CancelledAt   *time.Time
	CancelReason  string     `gorm:"type:varchar(500)"`
	ReversalOfID  *uuid.UUID `gorm:"type:uuid;index"`
}

// TableName returns the database table name
func (PaymentModel) TableName() string {
	return "payments"
}

// ToDomain converts the persistence model to a domain Payment entity.
func (m *PaymentModel) ToDomain() *cashier.Payment {
	return &cashier.Payment{
		TenantAggregateRoot: shared.TenantAggregateRoot{
			BaseAggregateRoot: shared.BaseAggregateRoot{
				BaseEntity: shared.BaseEntity{
					ID:        m.ID,
					CreatedAt: m.CreatedAt,
					UpdatedAt: m.UpdatedAt,
				},
				Version: m.Version,
			},
			TenantID:  m.TenantID,
			CreatedBy: m.CreatedBy,
		},
		ClinicID:      m.ClinicID,
		Amount:        m.Amount,
		Direction:     m.Direction,
		MethodID:      m.MethodID,
		MethodType:    m.MethodType,
		TicketID:      m.TicketID,
		InvoiceID:     m.InvoiceID,
		CashSessionID: m.CashSessionID,
		DebtLedgerID:  m.DebtLedgerID,
		PosTerminalID: m.PosTerminalID,
		PaymentDate:   m.PaymentDate,
		Status:        m.Status,
		CancelledAt:   m.CancelledAt,
		CancelReason:  m.CancelReason,
		ReversalOfID:  m.ReversalOfID,
	}
}

// FromDomain populates the persistence model from a domain Payment entity.
func (m *PaymentModel) FromDomain(p *cashier.Payment) {
	m.FromDomainTenantAggregateRoot(p.TenantAggregateRoot)
	m.ClinicID = p.ClinicID
	m.Amount = p.Amount
	m.Direction = p.Direction
	m.MethodID = p.MethodID
	m.MethodType = p.MethodType
	m.TicketID = p.TicketID
	m.InvoiceID = p.InvoiceID
	m.CashSessionID = p.CashSessionID
	m.DebtLedgerID = p.DebtLedgerID
	m.PosTerminalID = p.PosTerminalID
	m.PaymentDate = p.PaymentDate
	m.Status = p.Status
	m.CancelledAt = p.CancelledAt
	m.CancelReason = p.CancelReason
	m.ReversalOfID = p.ReversalOfID
}

// PaymentModelFromDomain creates a new persistence model from a domain Payment.
func PaymentModelFromDomain(p *cashier.Payment) *PaymentModel {
	m := &PaymentModel{}
	m.FromDomain(p)
	return m
}

// DebtLedgerModel is the persistence model for the DebtLedger aggregate root.
type DebtLedgerModel struct {
	TenantAggregateModel
	TicketID       uuid.UUID          `gorm:"type:uuid;not null;index"`
	ClinicID       uuid.UUID          `gorm:"type:uuid;not null;index"`
	ClientID       *uuid.UUID         `gorm:"type:uuid;index"`
	OriginalAmount decimal.Decimal    `gorm:"type:decimal(18,4);not null"`
	PaidAmount     decimal.Decimal    `gorm:"type:decimal(18,4);not null"`
	PendingAmount  decimal.Decimal    `gorm:"type:decimal(18,4);not null;index"`
	Status         cashier.DebtStatus `gorm:"type:varchar(10);not null;default:'OPEN';index"`
	CancelledAt    *time.Time
	CancelReason   string `gorm:"type:varchar(500)"`
}

// TableName returns the database table name
func (DebtLedgerModel) TableName() string {
	return "debt_ledgers"
}

// ToDomain converts the persistence model to a domain DebtLedger entity.
func (m *DebtLedgerModel) ToDomain() *cashier.DebtLedger {
	return &cashier.DebtLedger{
		TenantAggregateRoot: shared.TenantAggregateRoot{
			BaseAggregateRoot: shared.BaseAggregateRoot{
				BaseEntity: shared.BaseEntity{
					ID:        m.ID,
					CreatedAt: m.CreatedAt,
					UpdatedAt: m.UpdatedAt,
				},
				Version: m.Version,
			},
			TenantID:  m.TenantID,
			CreatedBy: m.CreatedBy,
		},
		TicketID:       m.TicketID,
		ClinicID:       m.ClinicID,
		ClientID:       m.ClientID,
		OriginalAmount: m.OriginalAmount,
		PaidAmount:     m.PaidAmount,
		PendingAmount:  m.PendingAmount,
		Status:         m.Status,
		CancelledAt:    m.CancelledAt,
		CancelReason:   m.CancelReason,
	}
}

// FromDomain populates the persistence model from a domain DebtLedger entity.
func (m *DebtLedgerModel) FromDomain(dl *cashier.DebtLedger) {
	m.FromDomainTenantAggregateRoot(dl.TenantAggregateRoot)
	m.TicketID = dl.TicketID
	m.ClinicID = dl.ClinicID
	m.ClientID = dl.ClientID
	m.OriginalAmount = dl.OriginalAmount
	m.PaidAmount = dl.PaidAmount
	m.PendingAmount = dl.PendingAmount
	m.Status = dl.Status
	m.CancelledAt = dl.CancelledAt
	m.CancelReason = dl.CancelReason
}

// DebtLedgerModelFromDomain creates a new persistence model from a domain DebtLedger.
func DebtLedgerModelFromDomain(dl *cashier.DebtLedger) *DebtLedgerModel {
	m := &DebtLedgerModel{}
	m.FromDomain(dl)
	return m
}

// PaymentVerificationModel is the persistence model for payment verifications.
// The unique index on payment_id makes the record write-once.
type PaymentVerificationModel struct {
	BaseModel
	TenantID      uuid.UUID `gorm:"type:uuid;not null;index"`
	PaymentID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	Verified      bool      `gorm:"not null"`
	AttachmentURL string    `gorm:"type:varchar(1000)"`
	VerifiedBy    uuid.UUID `gorm:"type:uuid;not null"`
	VerifiedAt    time.Time `gorm:"not null"`
	Notes         string    `gorm:"type:text"`
}

// TableName returns the database table name
func (PaymentVerificationModel) TableName() string {
	return "payment_verifications"
}

// ToDomain converts the persistence model to a domain PaymentVerification entity.
func (m *PaymentVerificationModel) ToDomain() *cashier.PaymentVerification {
	return &cashier.PaymentVerification{
		BaseEntity:    m.BaseModel.ToDomain(),
		TenantID:      m.TenantID,
		PaymentID:     m.PaymentID,
		Verified:      m.Verified,
		AttachmentURL: m.AttachmentURL,
		VerifiedBy:    m.VerifiedBy,
		VerifiedAt:    m.VerifiedAt,
		Notes:         m.Notes,
	}
}

// FromDomain populates the persistence model from a domain PaymentVerification entity.
func (m *PaymentVerificationModel) FromDomain(v *cashier.PaymentVerification) {
	m.FromDomainBaseEntity(v.BaseEntity)
	m.TenantID = v.TenantID
	m.PaymentID = v.PaymentID
	m.Verified = v.Verified
	m.AttachmentURL = v.AttachmentURL
	m.VerifiedBy = v.VerifiedBy
	m.VerifiedAt = v.VerifiedAt
	m.Notes = v.Notes
}

// PaymentVerificationModelFromDomain creates a new persistence model from a domain PaymentVerification.
func PaymentVerificationModelFromDomain(v *cashier.PaymentVerification) *PaymentVerificationModel {
	m := &PaymentVerificationModel{}
	m.FromDomain(v)
	return m
}

// ChangeLogModel is the persistence model for the append-only audit trail.
type ChangeLogModel struct {
	BaseModel
	TenantID   uuid.UUID             `gorm:"type:uuid;not null;index"`
	EntityID   uuid.UUID             `gorm:"type:uuid;not null;index"`
	EntityType string                `gorm:"type:varchar(50);not null;index"`
	Action     cashier.ChangeAction  `gorm:"type:varchar(20);not null"`
	UserID     uuid.UUID             `gorm:"type:uuid;not null;index"`
	Details    cashier.ChangeDetails `gorm:"type:jsonb"`
}

// TableName returns the database table name
func (ChangeLogModel) TableName() string {
	return "entity_change_logs"
}

// ToDomain converts the persistence model to a domain ChangeLogEntry entity.
func (m *ChangeLogModel) ToDomain() *cashier.ChangeLogEntry {
	return &cashier.ChangeLogEntry{
		BaseEntity: m.BaseModel.ToDomain(),
		TenantID:   m.TenantID,
		EntityID:   m.EntityID,
		EntityType: m.EntityType,
		Action:     m.Action,
		UserID:     m.UserID,
		Details:    m.Details,
	}
}

// FromDomain populates the persistence model from a domain ChangeLogEntry entity.
func (m *ChangeLogModel) FromDomain(e *cashier.ChangeLogEntry) {
	m.FromDomainBaseEntity(e.BaseEntity)
	m.TenantID = e.TenantID
	m.EntityID = e.EntityID
	m.EntityType = e.EntityType
	m.Action = e.Action
	m.UserID = e.UserID
	m.Details = e.Details
}

// ChangeLogModelFromDomain creates a new persistence model from a domain ChangeLogEntry.
func ChangeLogModelFromDomain(e *cashier.ChangeLogEntry) *ChangeLogModel {
	m := &ChangeLogModel{}
	m.FromDomain(e)
	return m
}
