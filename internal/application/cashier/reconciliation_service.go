package cashier

import (
	"context"

	"github.com/clinicore/backend/internal/domain/cashier"
	"github.com/clinicore/backend/internal/domain/shared"
	"github.com/clinicore/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReconciliationService provides the read-side aggregation views used to
// reconcile a session against card terminal and bank statements
type ReconciliationService struct {
	sessionRepo        cashier.CashSessionRepository
	reconciliationRepo cashier.ReconciliationRepository
}

// NewReconciliationService creates a new ReconciliationService
func NewReconciliationService(
	sessionRepo cashier.CashSessionRepository,
	reconciliationRepo cashier.ReconciliationRepository,
) *ReconciliationService {
	return &ReconciliationService{
		sessionRepo:        sessionRepo,
		reconciliationRepo: reconciliationRepo,
	}
}

// SessionTotals aggregates a session's completed payments: card totals per
// POS terminal split into ticket-backed and deferred-settlement buckets,
// signed totals per method type, and the overall deferred amount.
func (s *ReconciliationService) SessionTotals(ctx context.Context, tenantID, sessionID uuid.UUID) (*SessionTotalsResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "reconciliation", "session_totals")
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

	posRows, err := s.reconciliationRepo.CardTotalsByPos(ctx, tenantID, sessionID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	methodRows, err := s.reconciliationRepo.TotalsByMethod(ctx, tenantID, sessionID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	resp := &SessionTotalsResponse{
		SessionID:     session.ID,
		SessionNumber: session.SessionNumber,
		CardByPos:     make([]PosBucket, len(posRows)),
		ByMethod:      make([]MethodBucket, len(methodRows)),
		Deferred:      decimal.Zero,
	}

	for i, row := range posRows {
		resp.CardByPos[i] = PosBucket{
			PosTerminalID:    row.PosTerminalID,
			ExpectedTickets:  row.ExpectedTickets,
			ExpectedDeferred: row.ExpectedDeferred,
			ExpectedTotal:    row.ExpectedTickets.Add(row.ExpectedDeferred),
		}
	}

	for i, row := range methodRows {
		total := row.ExpectedTickets.Add(row.ExpectedDeferred)
		resp.ByMethod[i] = MethodBucket{
			MethodType:       row.MethodType.String(),
			ExpectedTickets:  row.ExpectedTickets,
			ExpectedDeferred: row.ExpectedDeferred,
			ExpectedTotal:    total,
			Count:            row.Count,
		}
		// Signed, so a cancelled deferred payment's reversal subtracts
		if row.MethodType == cashier.MethodTypeDeferredPayment {
			resp.Deferred = resp.Deferred.Add(total)
		}
	}

	return resp, nil
}
