package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/clinicore/backend/internal/domain/cashier"
	"github.com/clinicore/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormPaymentRepository implements PaymentRepository using GORM
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// FindByIDForTenant finds a payment by ID for a specific tenant
func (r *GormPaymentRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*cashier.Payment, error) {
	var model models.PaymentModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllForTenant finds payments for a tenant with filtering
func (r *GormPaymentRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter cashier.PaymentFilter) ([]cashier.Payment, error) {
	var paymentModels []models.PaymentModel
	query := r.db.WithContext(ctx).Model(&models.PaymentModel{}).
		Where("tenant_id = ?", tenantID)
	query = r.applyPaymentFilter(query, filter, true)

	if err := query.Find(&paymentModels).Error; err != nil {
		return nil, err
	}
	return toDomainPayments(paymentModels), nil
}

// CountForTenant counts payments for a tenant with optional filters
func (r *GormPaymentRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter cashier.PaymentFilter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.PaymentModel{}).
		Where("tenant_id = ?", tenantID)
	query = r.applyPaymentFilter(query, filter, false)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// FindByCashSession finds all payments attached to a cash session
func (r *GormPaymentRepository) FindByCashSession(ctx context.Context, tenantID, sessionID uuid.UUID) ([]cashier.Payment, error) {
	var paymentModels []models.PaymentModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND cash_session_id = ?", tenantID, sessionID).
		Order("payment_date ASC").
		Find(&paymentModels).Error; err != nil {
		return nil, err
	}
	return toDomainPayments(paymentModels), nil
}

// FindByDebtLedger finds all payments applied to a debt ledger
func (r *GormPaymentRepository) FindByDebtLedger(ctx context.Context, tenantID, ledgerID uuid.UUID) ([]cashier.Payment, error) {
	var paymentModels []models.PaymentModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND debt_ledger_id = ?", tenantID, ledgerID).
		Order("payment_date ASC").
		Find(&paymentModels).Error; err != nil {
		return nil, err
	}
	return toDomainPayments(paymentModels), nil
}

// FindPendingVerification finds completed payments with a verifiable method
// type that have no verification record yet
func (r *GormPaymentRepository) FindPendingVerification(ctx context.Context, tenantID uuid.UUID, filter cashier.PendingVerificationFilter) ([]cashier.Payment, error) {
	var paymentModels []models.PaymentModel
	query := r.pendingVerificationQuery(ctx, tenantID, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}
	query = query.Order("payment_date ASC")

	if err := query.Find(&paymentModels).Error; err != nil {
		return nil, err
	}
	return toDomainPayments(paymentModels), nil
}

// CountPendingVerification counts the verification worklist
func (r *GormPaymentRepository) CountPendingVerification(ctx context.Context, tenantID uuid.UUID, filter cashier.PendingVerificationFilter) (int64, error) {
	var count int64
	if err := r.pendingVerificationQuery(ctx, tenantID, filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// SumCashForSession returns the signed sum of completed CASH payments attached
// to a session (debits positive, credits negative)
func (r *GormPaymentRepository) SumCashForSession(ctx context.Context, tenantID, sessionID uuid.UUID) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := r.db.WithContext(ctx).
		Model(&models.PaymentModel{}).
		Select("COALESCE(SUM(CASE WHEN direction = ? THEN amount ELSE -amount END), 0)", cashier.DirectionDebit).
		Where("tenant_id = ? AND cash_session_id = ? AND method_type = ? AND status = ?",
			tenantID, sessionID, cashier.MethodTypeCash, cashier.PaymentStatusCompleted).
		Scan(&sum).Error
	if err != nil {
		return decimal.Zero, err
	}
	return sum, nil
}

// Create inserts a new payment
func (r *GormPaymentRepository) Create(ctx context.Context, payment *cashier.Payment) error {
	model := models.PaymentModelFromDomain(payment)
	return r.db.WithContext(ctx).Create(model).Error
}

// Save updates an existing payment
func (r *GormPaymentRepository) Save(ctx context.Context, payment *cashier.Payment) error {
	model := models.PaymentModelFromDomain(payment)
	return r.db.WithContext(ctx).Save(model).Error
}

// pendingVerificationQuery builds the worklist base query: completed payments
// on verifiable methods without a verification row
func (r *GormPaymentRepository) pendingVerificationQuery(ctx context.Context, tenantID uuid.UUID, filter cashier.PendingVerificationFilter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&models.PaymentModel{}).
		Where("payments.tenant_id = ?", tenantID).
		Where("payments.status = ?", cashier.PaymentStatusCompleted).
		Where("NOT EXISTS (SELECT 1 FROM payment_verifications pv WHERE pv.payment_id = payments.id)")

	if filter.MethodType != nil {
		query = query.Where("payments.method_type = ?", *filter.MethodType)
	} else {
		query = query.Where("payments.method_type IN ?", []cashier.PaymentMethodType{
			cashier.MethodTypeCard,
			cashier.MethodTypeBankTransfer,
			cashier.MethodTypeCheck,
		})
	}
	if filter.ClinicID != nil {
		query = query.Where("payments.clinic_id = ?", *filter.ClinicID)
	}
	if filter.CashSessionID != nil {
		query = query.Where("payments.cash_session_id = ?", *filter.CashSessionID)
	}
	if filter.PosTerminalID != nil {
		query = query.Where("payments.pos_terminal_id = ?", *filter.PosTerminalID)
	}
	if filter.FromDate != nil {
		query = query.Where("payments.payment_date >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		query = query.Where("payments.payment_date <= ?", *filter.ToDate)
	}
	return query
}

// applyPaymentFilter applies filter options to the query
func (r *GormPaymentRepository) applyPaymentFilter(query *gorm.DB, filter cashier.PaymentFilter, paginate bool) *gorm.DB {
	if filter.ClinicID != nil {
		query = query.Where("clinic_id = ?", *filter.ClinicID)
	}
	if filter.CashSessionID != nil {
		query = query.Where("cash_session_id = ?", *filter.CashSessionID)
	}
	if filter.TicketID != nil {
		query = query.Where("ticket_id = ?", *filter.TicketID)
	}
	if filter.MethodType != nil {
		query = query.Where("method_type = ?", *filter.MethodType)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.FromDate != nil {
		query = query.Where("payment_date >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		query = query.Where("payment_date <= ?", *filter.ToDate)
	}

	if !paginate {
		return query
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	// Apply sorting with whitelist validation to prevent SQL injection
	sortField := ValidateSortField(filter.OrderBy, PaymentSortFields, "payment_date")
	sortOrder := ValidateSortOrder(filter.OrderDir)
	query = query.Order(fmt.Sprintf("%s %s", sortField, sortOrder))

	return query
}

func toDomainPayments(paymentModels []models.PaymentModel) []cashier.Payment {
	payments := make([]cashier.Payment, len(paymentModels))
	for i, model := range paymentModels {
		payments[i] = *model.ToDomain()
	}
	return payments
}

// Ensure GormPaymentRepository implements PaymentRepository
var _ cashier.PaymentRepository = (*GormPaymentRepository)(nil)
