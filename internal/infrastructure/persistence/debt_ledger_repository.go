package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/clinicore/backend/internal/domain/cashier"
	"github.com/clinicore/backend/internal/domain/shared"
	"github.com/clinicore/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormDebtLedgerRepository implements DebtLedgerRepository using GORM
type GormDebtLedgerRepository struct {
	db *gorm.DB
}

// NewGormDebtLedgerRepository creates a new GormDebtLedgerRepository
func NewGormDebtLedgerRepository(db *gorm.DB) *GormDebtLedgerRepository {
	return &GormDebtLedgerRepository{db: db}
}

// FindByIDForTenant finds a debt ledger by ID for a specific tenant
func (r *GormDebtLedgerRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*cashier.DebtLedger, error) {
	var model models.DebtLedgerModel
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

// FindByIDForUpdate finds a debt ledger by ID with a row lock, for use inside
// a transaction scope
func (r *GormDebtLedgerRepository) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*cashier.DebtLedger, error) {
	var model models.DebtLedgerModel
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindActiveByTicket finds the OPEN or PARTIAL ledger for a ticket, if any
func (r *GormDebtLedgerRepository) FindActiveByTicket(ctx context.Context, tenantID, ticketID uuid.UUID) (*cashier.DebtLedger, error) {
	var model models.DebtLedgerModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND ticket_id = ? AND status IN ?",
			tenantID, ticketID, []cashier.DebtStatus{cashier.DebtStatusOpen, cashier.DebtStatusPartial}).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllForTenant finds debt ledgers for a tenant with filtering
func (r *GormDebtLedgerRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter cashier.DebtLedgerFilter) ([]cashier.DebtLedger, error) {
	var ledgerModels []models.DebtLedgerModel
	query := r.db.WithContext(ctx).Model(&models.DebtLedgerModel{}).
		Where("tenant_id = ?", tenantID)
	query = r.applyLedgerFilter(query, filter, true)

	if err := query.Find(&ledgerModels).Error; err != nil {
		return nil, err
	}
	ledgers := make([]cashier.DebtLedger, len(ledgerModels))
	for i, model := range ledgerModels {
		ledgers[i] = *model.ToDomain()
	}
	return ledgers, nil
}

// CountForTenant counts debt ledgers for a tenant with optional filters
func (r *GormDebtLedgerRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter cashier.DebtLedgerFilter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.DebtLedgerModel{}).
		Where("tenant_id = ?", tenantID)
	query = r.applyLedgerFilter(query, filter, false)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Create inserts a new debt ledger
func (r *GormDebtLedgerRepository) Create(ctx context.Context, ledger *cashier.DebtLedger) error {
	model := models.DebtLedgerModelFromDomain(ledger)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// SaveWithLock saves with optimistic locking (version check)
func (r *GormDebtLedgerRepository) SaveWithLock(ctx context.Context, ledger *cashier.DebtLedger) error {
	model := models.DebtLedgerModelFromDomain(ledger)
	// Select("*") forces zero-valued columns through; a reverted ledger can
	// return paid_amount to zero.
	result := r.db.WithContext(ctx).
		Model(model).
		Where("id = ? AND version = ?", ledger.ID, ledger.Version-1).
		Select("*").
		Updates(model)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("OPTIMISTIC_LOCK_ERROR", "The record has been modified by another transaction")
	}
	return nil
}

// applyLedgerFilter applies filter options to the query
func (r *GormDebtLedgerRepository) applyLedgerFilter(query *gorm.DB, filter cashier.DebtLedgerFilter, paginate bool) *gorm.DB {
	if filter.ClinicID != nil {
		query = query.Where("clinic_id = ?", *filter.ClinicID)
	}
	if filter.ClientID != nil {
		query = query.Where("client_id = ?", *filter.ClientID)
	}
	if filter.TicketID != nil {
		query = query.Where("ticket_id = ?", *filter.TicketID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.FromDate != nil {
		query = query.Where("created_at >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		query = query.Where("created_at <= ?", *filter.ToDate)
	}

	if !paginate {
		return query
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	// Apply sorting with whitelist validation to prevent SQL injection
	sortField := ValidateSortField(filter.OrderBy, DebtLedgerSortFields, "created_at")
	sortOrder := ValidateSortOrder(filter.OrderDir)
	query = query.Order(fmt.Sprintf("%s %s", sortField, sortOrder))

	return query
}

// Ensure GormDebtLedgerRepository implements DebtLedgerRepository
var _ cashier.DebtLedgerRepository = (*GormDebtLedgerRepository)(nil)
