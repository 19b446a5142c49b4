package persistence

import (
	"context"
	"errors"

	"github.com/clinicore/backend/internal/domain/cashier"
	"github.com/clinicore/backend/internal/domain/shared"
	"github.com/clinicore/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormPaymentVerificationRepository implements PaymentVerificationRepository using GORM
type GormPaymentVerificationRepository struct {
	db *gorm.DB
}

// NewGormPaymentVerificationRepository creates a new GormPaymentVerificationRepository
func NewGormPaymentVerificationRepository(db *gorm.DB) *GormPaymentVerificationRepository {
	return &GormPaymentVerificationRepository{db: db}
}

// Create inserts a verification record. The unique index on payment_id turns
// a concurrent double verify into shared.ErrAlreadyExists.
func (r *GormPaymentVerificationRepository) Create(ctx context.Context, verification *cashier.PaymentVerification) error {
	model := models.PaymentVerificationModelFromDomain(verification)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// FindByPayment finds the verification record for a payment, if any
func (r *GormPaymentVerificationRepository) FindByPayment(ctx context.Context, tenantID, paymentID uuid.UUID) (*cashier.PaymentVerification, error) {
	var model models.PaymentVerificationModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND payment_id = ?", tenantID, paymentID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// ExistsForPayment reports whether a payment is already verified
func (r *GormPaymentVerificationRepository) ExistsForPayment(ctx context.Context, tenantID, paymentID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.PaymentVerificationModel{}).
		Where("tenant_id = ? AND payment_id = ?", tenantID, paymentID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Ensure GormPaymentVerificationRepository implements PaymentVerificationRepository
var _ cashier.PaymentVerificationRepository = (*GormPaymentVerificationRepository)(nil)
