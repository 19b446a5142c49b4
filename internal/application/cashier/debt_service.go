package cashier

import (
	"context"
	"time"

	"github.com/clinicore/backend/internal/domain/cashier"
	"github.com/clinicore/backend/internal/domain/cashier/acl"
	"github.com/clinicore/backend/internal/domain/shared"
	"github.com/clinicore/backend/internal/domain/shared/valueobject"
	"github.com/clinicore/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
)

// DebtService provides application-level debt ledger operations
type DebtService struct {
	ledgerRepo  cashier.DebtLedgerRepository
	paymentRepo cashier.PaymentRepository
	sessionRepo cashier.CashSessionRepository
	txScope     TransactionScope
}

// NewDebtService creates a new DebtService
func NewDebtService(
	ledgerRepo cashier.DebtLedgerRepository,
	paymentRepo cashier.PaymentRepository,
	sessionRepo cashier.CashSessionRepository,
	txScope TransactionScope,
) *DebtService {
	return &DebtService{
		ledgerRepo:  ledgerRepo,
		paymentRepo: paymentRepo,
		sessionRepo: sessionRepo,
		txScope:     txScope,
	}
}

// CreateDebt opens a debt ledger for a ticket. A ticket carries at most one
// active ledger at a time.
func (s *DebtService) CreateDebt(ctx context.Context, tenantID uuid.UUID, req CreateDebtRequest) (*DebtLedgerResponse, error) {
	ticketRef, err := acl.NewTicketRef(req.TicketID)
	if err != nil {
		return nil, err
	}

	active, err := s.ledgerRepo.FindActiveByTicket(ctx, tenantID, ticketRef.UUID())
	if err != nil {
		return nil, err
	}
	if active != nil {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Ticket already has an active debt ledger")
	}

	amount := valueobject.NewMoneyEUR(req.Amount)
	ledger, err := cashier.NewDebtLedger(tenantID, ticketRef.UUID(), req.ClinicID, amount)
	if err != nil {
		return nil, err
	}
	if req.ClientID != nil {
		ledger.WithClient(*req.ClientID)
	}
	ledger.SetCreatedBy(req.CreatedBy)

	if err := s.ledgerRepo.Create(ctx, ledger); err != nil {
		return nil, err
	}

	return toDebtLedgerResponse(ledger), nil
}

// SettleDebt collects an amount against a debt ledger. The ledger balance
// move, the payment record and the audit entry are committed atomically; the
// ledger row is locked for the duration so concurrent settlements serialize
// and the second overdraw attempt is rejected on the reloaded balance.
func (s *DebtService) SettleDebt(ctx context.Context, tenantID, ledgerID uuid.UUID, req SettleDebtRequest) (*DebtLedgerResponse, *PaymentResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "debt_ledger", "settle")
	defer span.End()

	telemetry.SetAttributes(span,
		telemetry.SpanAttrLedgerID, ledgerID.String(),
		telemetry.SpanAttrAmount, req.Amount.String(),
		telemetry.SpanAttrMethodType, req.MethodType,
	)

	methodType := cashier.PaymentMethodType(req.MethodType)
	if !methodType.IsValid() {
		return nil, nil, shared.NewDomainError("INVALID_METHOD_TYPE", "Payment method type is not valid")
	}

	var ledger *cashier.DebtLedger
	var payment *cashier.Payment

	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		ledger, err = repos.LedgerRepo().FindByIDForUpdate(ctx, tenantID, ledgerID)
		if err != nil {
			return err
		}
		if ledger == nil {
			return shared.NewDomainError("NOT_FOUND", "Debt ledger not found")
		}

		amount := valueobject.NewMoneyEUR(req.Amount)
		if err := ledger.ApplySettlement(amount); err != nil {
			return err
		}

		payment, err = cashier.NewPayment(tenantID, ledger.ClinicID, amount,
			cashier.DirectionDebit, req.MethodID, methodType, time.Now())
		if err != nil {
			return err
		}
		payment.WithTicket(ledger.TicketID).WithDebtLedger(ledger.ID)
		if req.PosTerminalID != nil {
			payment.WithPosTerminal(*req.PosTerminalID)
		}
		payment.SetCreatedBy(req.UserID)

		// Attach to the clinic's open session when the drawer is open
		session, err := s.sessionRepo.FindOpenByScope(ctx, tenantID, ledger.ClinicID, req.PosTerminalID, time.Now().UTC())
		if err != nil {
			return err
		}
		if session != nil {
			payment.WithCashSession(session.ID)
		}

		if err := repos.LedgerRepo().SaveWithLock(ctx, ledger); err != nil {
			return err
		}
		if err := repos.PaymentRepo().Create(ctx, payment); err != nil {
			return err
		}

		entry, err := cashier.NewChangeLogEntry(tenantID, ledger.ID, "DebtLedger", cashier.ChangeActionUpdate, req.UserID, cashier.ChangeDetails{
			"settled_amount": req.Amount.String(),
			"paid_amount":    ledger.PaidAmount.String(),
			"pending_amount": ledger.PendingAmount.String(),
			"payment_id":     payment.ID.String(),
		})
		if err != nil {
			return err
		}
		return repos.ChangeLogRepo().Create(ctx, entry)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, nil, err
	}

	return toDebtLedgerResponse(ledger), toPaymentResponse(payment), nil
}

// CancelPayment cancels a payment and records its reversal. When the payment
// is linked to a debt ledger, its signed contribution is removed from the
// ledger's paid balance in the same transaction.
func (s *DebtService) CancelPayment(ctx context.Context, tenantID, paymentID uuid.UUID, reason string, userID uuid.UUID) (*CancelPaymentResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment", "cancel")
	defer span.End()

	telemetry.SetAttributes(span,
		telemetry.SpanAttrPaymentID, paymentID.String(),
	)

	var payment *cashier.Payment
	var reversal *cashier.Payment

	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		payment, err = repos.PaymentRepo().FindByIDForTenant(ctx, tenantID, paymentID)
		if err != nil {
			return err
		}
		if payment == nil {
			return shared.NewDomainError("NOT_FOUND", "Payment not found")
		}

		reversal, err = payment.Cancel(reason)
		if err != nil {
			return err
		}
		reversal.SetCreatedBy(userID)

		if payment.DebtLedgerID != nil {
			ledger, err := repos.LedgerRepo().FindByIDForUpdate(ctx, tenantID, *payment.DebtLedgerID)
			if err != nil {
				return err
			}
			if ledger == nil {
				return shared.NewDomainError("NOT_FOUND", "Debt ledger not found")
			}
			// A DEBIT added to the paid balance, a CREDIT backed it out;
			// cancelling undoes the payment's signed contribution
			if payment.Direction == cashier.DirectionCredit {
				if err := ledger.ApplySettlement(payment.GetAmountMoney()); err != nil {
					return err
				}
			} else if err := ledger.RevertSettlement(payment.GetAmountMoney()); err != nil {
				return err
			}
			if err := repos.LedgerRepo().SaveWithLock(ctx, ledger); err != nil {
				return err
			}
		}

		if err := repos.PaymentRepo().Save(ctx, payment); err != nil {
			return err
		}
		if err := repos.PaymentRepo().Create(ctx, reversal); err != nil {
			return err
		}

		entry, err := cashier.NewChangeLogEntry(tenantID, payment.ID, "Payment", cashier.ChangeActionCancel, userID, cashier.ChangeDetails{
			"reason":      reason,
			"reversal_id": reversal.ID.String(),
		})
		if err != nil {
			return err
		}
		return repos.ChangeLogRepo().Create(ctx, entry)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	return &CancelPaymentResult{
		Payment:  *toPaymentResponse(payment),
		Reversal: *toPaymentResponse(reversal),
	}, nil
}

// CancelLedger cancels a debt ledger when its ticket is voided. Payments
// already applied stay untouched for audit.
func (s *DebtService) CancelLedger(ctx context.Context, tenantID, ledgerID uuid.UUID, reason string, userID uuid.UUID) (*DebtLedgerResponse, error) {
	var ledger *cashier.DebtLedger

	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		ledger, err = repos.LedgerRepo().FindByIDForUpdate(ctx, tenantID, ledgerID)
		if err != nil {
			return err
		}
		if ledger == nil {
			return shared.NewDomainError("NOT_FOUND", "Debt ledger not found")
		}

		if err := ledger.Cancel(reason); err != nil {
			return err
		}
		if err := repos.LedgerRepo().SaveWithLock(ctx, ledger); err != nil {
			return err
		}

		entry, err := cashier.NewChangeLogEntry(tenantID, ledger.ID, "DebtLedger", cashier.ChangeActionCancel, userID, cashier.ChangeDetails{
			"reason":         reason,
			"paid_amount":    ledger.PaidAmount.String(),
			"pending_amount": ledger.PendingAmount.String(),
		})
		if err != nil {
			return err
		}
		return repos.ChangeLogRepo().Create(ctx, entry)
	})
	if err != nil {
		return nil, err
	}

	return toDebtLedgerResponse(ledger), nil
}

// GetByID gets a debt ledger by ID
func (s *DebtService) GetByID(ctx context.Context, tenantID, ledgerID uuid.UUID) (*DebtLedgerResponse, error) {
	ledger, err := s.ledgerRepo.FindByIDForTenant(ctx, tenantID, ledgerID)
	if err != nil {
		return nil, err
	}
	if ledger == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Debt ledger not found")
	}
	return toDebtLedgerResponse(ledger), nil
}

// List lists debt ledgers with filtering
func (s *DebtService) List(ctx context.Context, tenantID uuid.UUID, filter DebtLedgerListFilter) ([]DebtLedgerResponse, int64, error) {
	domainFilter := cashier.DebtLedgerFilter{
		ClinicID: filter.ClinicID,
		ClientID: filter.ClientID,
		TicketID: filter.TicketID,
	}
	domainFilter.Page = filter.Page
	domainFilter.PageSize = filter.PageSize

	if filter.Status != "" {
		status := cashier.DebtStatus(filter.Status)
		if !status.IsValid() {
			return nil, 0, shared.NewDomainError("INVALID_STATUS", "Invalid debt ledger status filter")
		}
		domainFilter.Status = &status
	}

	ledgers, err := s.ledgerRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.ledgerRepo.CountForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]DebtLedgerResponse, len(ledgers))
	for i := range ledgers {
		responses[i] = *toDebtLedgerResponse(&ledgers[i])
	}

	return responses, total, nil
}

// ListPayments lists the payments applied to a debt ledger
func (s *DebtService) ListPayments(ctx context.Context, tenantID, ledgerID uuid.UUID) ([]PaymentResponse, error) {
	ledger, err := s.ledgerRepo.FindByIDForTenant(ctx, tenantID, ledgerID)
	if err != nil {
		return nil, err
	}
	if ledger == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Debt ledger not found")
	}

	payments, err := s.paymentRepo.FindByDebtLedger(ctx, tenantID, ledgerID)
	if err != nil {
		return nil, err
	}

	responses := make([]PaymentResponse, len(payments))
	for i := range payments {
		responses[i] = *toPaymentResponse(&payments[i])
	}
	return responses, nil
}
