package cashier

import (
	"context"
	"errors"

	"github.com/clinicore/backend/internal/domain/cashier"
	"github.com/clinicore/backend/internal/domain/shared"
	"github.com/clinicore/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
)

// VerificationService provides the back-office payment verification worklist
type VerificationService struct {
	paymentRepo      cashier.PaymentRepository
	verificationRepo cashier.PaymentVerificationRepository
	changeLogRepo    cashier.ChangeLogRepository
}

// NewVerificationService creates a new VerificationService
func NewVerificationService(
	paymentRepo cashier.PaymentRepository,
	verificationRepo cashier.PaymentVerificationRepository,
	changeLogRepo cashier.ChangeLogRepository,
) *VerificationService {
	return &VerificationService{
		paymentRepo:      paymentRepo,
		verificationRepo: verificationRepo,
		changeLogRepo:    changeLogRepo,
	}
}

// ListPending lists completed card, transfer and check payments that have no
// verification record yet
func (s *VerificationService) ListPending(ctx context.Context, tenantID uuid.UUID, filter PendingVerificationListFilter) ([]PaymentResponse, int64, error) {
	domainFilter := cashier.PendingVerificationFilter{
		ClinicID:      filter.ClinicID,
		CashSessionID: filter.CashSessionID,
		PosTerminalID: filter.PosTerminalID,
		FromDate:      filter.FromDate,
		ToDate:        filter.ToDate,
	}
	domainFilter.Page = filter.Page
	domainFilter.PageSize = filter.PageSize

	if filter.MethodType != "" {
		methodType := cashier.PaymentMethodType(filter.MethodType)
		if !methodType.IsVerifiable() {
			return nil, 0, shared.NewDomainError("INVALID_METHOD_TYPE", "Method type filter must be a verifiable type")
		}
		domainFilter.MethodType = &methodType
	}

	payments, err := s.paymentRepo.FindPendingVerification(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.paymentRepo.CountPendingVerification(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]PaymentResponse, len(payments))
	for i := range payments {
		responses[i] = *toPaymentResponse(&payments[i])
	}

	return responses, total, nil
}

// Verify records the write-once verification of a payment against the
// external statement. Verifying the same payment twice is a conflict.
func (s *VerificationService) Verify(ctx context.Context, tenantID, paymentID uuid.UUID, req VerifyPaymentRequest) (*PaymentVerificationResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment_verification", "verify")
	defer span.End()

	telemetry.SetAttributes(span,
		telemetry.SpanAttrPaymentID, paymentID.String(),
	)

	payment, err := s.paymentRepo.FindByIDForTenant(ctx, tenantID, paymentID)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Payment not found")
	}

	verification, err := cashier.NewPaymentVerification(tenantID, payment, req.Verified, req.AttachmentURL, req.VerifiedBy, req.Notes)
	if err != nil {
		return nil, err
	}

	if err := s.verificationRepo.Create(ctx, verification); err != nil {
		// The unique index on payment_id is the arbiter under concurrency
		if errors.Is(err, shared.ErrAlreadyExists) {
			return nil, shared.ErrAlreadyVerified
		}
		telemetry.RecordError(span, err)
		return nil, err
	}

	entry, err := cashier.NewChangeLogEntry(tenantID, payment.ID, "Payment", cashier.ChangeActionVerify, req.VerifiedBy, cashier.ChangeDetails{
		"verification_id": verification.ID.String(),
		"verified":        verification.Verified,
		"notes":           req.Notes,
	})
	if err == nil {
		_ = s.changeLogRepo.Create(ctx, entry)
	}

	return toVerificationResponse(verification), nil
}

// GetForPayment returns the verification record of a payment, if any
func (s *VerificationService) GetForPayment(ctx context.Context, tenantID, paymentID uuid.UUID) (*PaymentVerificationResponse, error) {
	verification, err := s.verificationRepo.FindByPayment(ctx, tenantID, paymentID)
	if err != nil {
		return nil, err
	}
	if verification == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Payment has no verification record")
	}
	return toVerificationResponse(verification), nil
}
