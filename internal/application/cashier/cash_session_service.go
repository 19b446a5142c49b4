package cashier

import (
	"context"
	"errors"
	"time"

	"github.com/clinicore/backend/internal/domain/cashier"
	"github.com/clinicore/backend/internal/domain/cashier/acl"
	"github.com/clinicore/backend/internal/domain/shared"
	"github.com/clinicore/backend/internal/domain/shared/valueobject"
	"github.com/clinicore/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
)

// maxSessionOpenAttempts bounds the regenerate-and-retry loop when a
// session-number collision comes from a sibling terminal of the same clinic
const maxSessionOpenAttempts = 3

// CashSessionService provides application-level cash session operations
type CashSessionService struct {
	sessionRepo   cashier.CashSessionRepository
	paymentRepo   cashier.PaymentRepository
	changeLogRepo cashier.ChangeLogRepository
}

// NewCashSessionService creates a new CashSessionService
func NewCashSessionService(
	sessionRepo cashier.CashSessionRepository,
	paymentRepo cashier.PaymentRepository,
	changeLogRepo cashier.ChangeLogRepository,
) *CashSessionService {
	return &CashSessionService{
		sessionRepo:   sessionRepo,
		paymentRepo:   paymentRepo,
		changeLogRepo: changeLogRepo,
	}
}

// OpenOrGet returns the open session for the clinic, POS terminal and
// business day, creating it when none exists. The boolean reports whether a
// new session was created. Two staff members opening the drawer at the same
// moment both end up on the same session: the partial unique index on open
// sessions rejects the loser's insert and the existing session is re-read.
func (s *CashSessionService) OpenOrGet(ctx context.Context, tenantID uuid.UUID, req OpenSessionRequest) (*CashSessionResponse, bool, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "cash_session", "open_or_get")
	defer span.End()

	telemetry.SetAttributes(span,
		telemetry.SpanAttrClinicID, req.ClinicID.String(),
	)

	clinicRef, err := acl.NewClinicRef(req.ClinicID, req.ClinicPrefix)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, false, err
	}

	businessDate := req.BusinessDate
	if businessDate.IsZero() {
		businessDate = time.Now().UTC()
	}

	existing, err := s.sessionRepo.FindOpenByScope(ctx, tenantID, clinicRef.ID(), req.PosTerminalID, businessDate)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return toCashSessionResponse(existing), false, nil
	}

	opening := valueobject.NewMoneyEUR(req.OpeningBalanceCash)

	for attempt := 0; attempt < maxSessionOpenAttempts; attempt++ {
		sessionNumber, err := s.sessionRepo.GenerateSessionNumber(ctx, tenantID, clinicRef.ID(), clinicRef.Prefix(), businessDate)
		if err != nil {
			return nil, false, err
		}

		session, err := cashier.NewCashSession(tenantID, sessionNumber, clinicRef.ID(), businessDate, opening, req.OpenedBy)
		if err != nil {
			return nil, false, err
		}
		session.WithPosTerminal(req.PosTerminalID)

		err = s.sessionRepo.Create(ctx, session)
		if err == nil {
			s.appendChangeLog(ctx, tenantID, session.ID, "CashSession", cashier.ChangeActionCreate, req.OpenedBy, cashier.ChangeDetails{
				"session_number":       session.SessionNumber,
				"clinic_id":            session.ClinicID.String(),
				"opening_balance_cash": session.OpeningBalanceCash.String(),
			})
			return toCashSessionResponse(session), true, nil
		}
		if !errors.Is(err, shared.ErrAlreadyExists) {
			telemetry.RecordError(span, err)
			return nil, false, err
		}

		// Two inserts can collide two ways: another opener won this scope,
		// or a sibling terminal of the same clinic took the session number.
		// Join the winner when there is one, otherwise regenerate and retry.
		telemetry.AddEvent(span, "open_session_race_lost")
		winner, findErr := s.sessionRepo.FindOpenByScope(ctx, tenantID, clinicRef.ID(), req.PosTerminalID, businessDate)
		if findErr != nil {
			return nil, false, findErr
		}
		if winner != nil {
			return toCashSessionResponse(winner), false, nil
		}
	}

	return nil, false, shared.ErrConcurrencyConflict
}

// Close closes a session with the counted amounts. The expected cash is the
// opening balance plus the signed sum of the session's completed CASH
// payments, computed from the payment records at close time.
func (s *CashSessionService) Close(ctx context.Context, tenantID, sessionID uuid.UUID, req CloseSessionRequest) (*CashSessionResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "cash_session", "close")
	defer span.End()

	telemetry.SetAttributes(span,
		telemetry.SpanAttrSessionID, sessionID.String(),
	)

	session, err := s.sessionRepo.FindByIDForTenant(ctx, tenantID, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Cash session not found")
	}

	cashSum, err := s.paymentRepo.SumCashForSession(ctx, tenantID, sessionID)
	if err != nil {
		return nil, err
	}

	counted := cashier.CountedAmounts{
		Cash:           req.CountedCash,
		Card:           req.CountedCard,
		BankTransfer:   req.CountedBankTransfer,
		Check:          req.CountedCheck,
		InternalCredit: req.CountedInternalCredit,
	}

	if err := session.Close(counted, cashSum, req.ClosedBy, req.Notes); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := s.sessionRepo.SaveWithLock(ctx, session); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.appendChangeLog(ctx, tenantID, session.ID, "CashSession", cashier.ChangeActionClose, req.ClosedBy, cashier.ChangeDetails{
		"expected_cash":   session.ExpectedCash.String(),
		"counted_cash":    counted.Cash.String(),
		"difference_cash": session.DifferenceCash.String(),
	})

	return toCashSessionResponse(session), nil
}

// GetByID gets a cash session by ID
func (s *CashSessionService) GetByID(ctx context.Context, tenantID, sessionID uuid.UUID) (*CashSessionResponse, error) {
	session, err := s.sessionRepo.FindByIDForTenant(ctx, tenantID, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Cash session not found")
	}
	return toCashSessionResponse(session), nil
}

// List lists cash sessions with filtering
func (s *CashSessionService) List(ctx context.Context, tenantID uuid.UUID, filter CashSessionListFilter) ([]CashSessionResponse, int64, error) {
	domainFilter := cashier.CashSessionFilter{
		ClinicID:      filter.ClinicID,
		PosTerminalID: filter.PosTerminalID,
		OpenedBy:      filter.OpenedBy,
		FromDate:      filter.FromDate,
		ToDate:        filter.ToDate,
	}
	domainFilter.Page = filter.Page
	domainFilter.PageSize = filter.PageSize

	if filter.Status != "" {
		status := cashier.CashSessionStatus(filter.Status)
		if !status.IsValid() {
			return nil, 0, shared.NewDomainError("INVALID_STATUS", "Invalid cash session status filter")
		}
		domainFilter.Status = &status
	}

	sessions, err := s.sessionRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.sessionRepo.CountForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]CashSessionResponse, len(sessions))
	for i := range sessions {
		responses[i] = *toCashSessionResponse(&sessions[i])
	}

	return responses, total, nil
}

// ListPayments lists the payments attached to a session
func (s *CashSessionService) ListPayments(ctx context.Context, tenantID, sessionID uuid.UUID) ([]PaymentResponse, error) {
	session, err := s.sessionRepo.FindByIDForTenant(ctx, tenantID, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Cash session not found")
	}

	payments, err := s.paymentRepo.FindByCashSession(ctx, tenantID, sessionID)
	if err != nil {
		return nil, err
	}

	responses := make([]PaymentResponse, len(payments))
	for i := range payments {
		responses[i] = *toPaymentResponse(&payments[i])
	}
	return responses, nil
}

// GetChangeLog lists the audit entries of a session
func (s *CashSessionService) GetChangeLog(ctx context.Context, tenantID, sessionID uuid.UUID) ([]ChangeLogEntryResponse, error) {
	entries, err := s.changeLogRepo.FindByEntity(ctx, tenantID, sessionID, shared.DefaultFilter())
	if err != nil {
		return nil, err
	}
	responses := make([]ChangeLogEntryResponse, len(entries))
	for i := range entries {
		responses[i] = *toChangeLogResponse(&entries[i])
	}
	return responses, nil
}

// appendChangeLog records an audit entry. Audit failures do not fail the
// primary operation.
func (s *CashSessionService) appendChangeLog(ctx context.Context, tenantID, entityID uuid.UUID, entityType string, action cashier.ChangeAction, userID uuid.UUID, details cashier.ChangeDetails) {
	entry, err := cashier.NewChangeLogEntry(tenantID, entityID, entityType, action, userID, details)
	if err != nil {
		return
	}
	_ = s.changeLogRepo.Create(ctx, entry)
}
