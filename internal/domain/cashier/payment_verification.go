package cashier

import (
	"time"

	"github.com/clinicore/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// PaymentVerification is the write-once record of a back-office operator's
// verdict on a card, transfer or check payment against the external
// statement. One record per payment; a second verification attempt is a
// conflict, a verdict is never silently overwritten.
type PaymentVerification struct {
	shared.BaseEntity
	TenantID      uuid.UUID
	PaymentID     uuid.UUID
	Verified      bool
	AttachmentURL string
	VerifiedBy    uuid.UUID
	VerifiedAt    time.Time
	Notes         string
}

// NewPaymentVerification creates a verification record for a payment. Only
// completed payments with a verifiable method type can be verified.
func NewPaymentVerification(
	tenantID uuid.UUID,
	payment *Payment,
	verified bool,
	attachmentURL string,
	verifiedBy uuid.UUID,
	notes string,
) (*PaymentVerification, error) {
	if payment == nil {
		return nil, shared.NewDomainError("INVALID_PAYMENT", "Payment cannot be nil")
	}
	if verifiedBy == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "Verified by user ID cannot be empty")
	}
	if payment.TenantID != tenantID {
		return nil, shared.NewDomainError("UNAUTHORIZED", "Payment does not belong to tenant")
	}
	if !payment.MethodType.IsVerifiable() {
		return nil, shared.NewDomainError("INVALID_METHOD",
			"Payment method type "+payment.MethodType.String()+" is not verifiable")
	}
	if payment.Status != PaymentStatusCompleted {
		return nil, shared.NewDomainError("INVALID_STATE", "Only completed payments can be verified")
	}

	return &PaymentVerification{
		BaseEntity:    shared.NewBaseEntity(),
		TenantID:      tenantID,
		PaymentID:     payment.ID,
		Verified:      verified,
		AttachmentURL: attachmentURL,
		VerifiedBy:    verifiedBy,
		VerifiedAt:    time.Now(),
		Notes:         notes,
	}, nil
}
