package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/clinicore/backend/internal/domain/cashier"
	"github.com/clinicore/backend/internal/domain/shared"
	"github.com/clinicore/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormCashSessionRepository implements CashSessionRepository using GORM
type GormCashSessionRepository struct {
	db *gorm.DB
}

// NewGormCashSessionRepository creates a new GormCashSessionRepository
func NewGormCashSessionRepository(db *gorm.DB) *GormCashSessionRepository {
	return &GormCashSessionRepository{db: db}
}

// FindByIDForTenant finds a cash session by ID for a specific tenant
func (r *GormCashSessionRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*cashier.CashSession, error) {
	var model models.CashSessionModel
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

// FindOpenByScope finds the open session for a clinic, POS terminal and
// business day, if any. A nil terminal matches the clinic's shared drawer.
func (r *GormCashSessionRepository) FindOpenByScope(ctx context.Context, tenantID, clinicID uuid.UUID, posTerminalID *uuid.UUID, businessDate time.Time) (*cashier.CashSession, error) {
	query := r.db.WithContext(ctx).
		Where("tenant_id = ? AND clinic_id = ? AND business_date = ? AND status = ?",
			tenantID, clinicID, businessDate.UTC().Format("2006-01-02"), cashier.CashSessionStatusOpen)
	if posTerminalID != nil {
		query = query.Where("pos_terminal_id = ?", *posTerminalID)
	} else {
		query = query.Where("pos_terminal_id IS NULL")
	}

	var model models.CashSessionModel
	if err := query.First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllForTenant finds cash sessions for a tenant with filtering
func (r *GormCashSessionRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter cashier.CashSessionFilter) ([]cashier.CashSession, error) {
	var sessionModels []models.CashSessionModel
	query := r.db.WithContext(ctx).Model(&models.CashSessionModel{}).
		Where("tenant_id = ?", tenantID)
	query = r.applySessionFilter(query, filter, true)

	if err := query.Find(&sessionModels).Error; err != nil {
		return nil, err
	}
	sessions := make([]cashier.CashSession, len(sessionModels))
	for i, model := range sessionModels {
		sessions[i] = *model.ToDomain()
	}
	return sessions, nil
}

// CountForTenant counts cash sessions for a tenant with optional filters
func (r *GormCashSessionRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter cashier.CashSessionFilter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.CashSessionModel{}).
		Where("tenant_id = ?", tenantID)
	query = r.applySessionFilter(query, filter, false)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// GenerateSessionNumber generates a unique session number for a clinic and day
func (r *GormCashSessionRepository) GenerateSessionNumber(ctx context.Context, tenantID, clinicID uuid.UUID, clinicPrefix string, businessDate time.Time) (string, error) {
	// Format: <clinicPrefix>-YYYYMMDD-NNN
	if clinicPrefix == "" {
		clinicPrefix = "CS"
	}
	date := businessDate.UTC().Format("20060102")
	prefix := fmt.Sprintf("%s-%s-", clinicPrefix, date)

	// Sequences past 999 grow a digit, so order by length before value
	var maxNumber string
	if err := r.db.WithContext(ctx).
		Model(&models.CashSessionModel{}).
		Select("session_number").
		Where("tenant_id = ? AND clinic_id = ? AND session_number LIKE ?", tenantID, clinicID, prefix+"%").
		Order("length(session_number) DESC, session_number DESC").
		Limit(1).
		Pluck("session_number", &maxNumber).Error; err != nil {
		return "", err
	}

	var nextNum int
	if maxNumber != "" {
		parts := strings.Split(maxNumber, "-")
		fmt.Sscanf(parts[len(parts)-1], "%d", &nextNum)
	}
	nextNum++

	return fmt.Sprintf("%s%03d", prefix, nextNum), nil
}

// Create inserts a new session. The partial unique index on open sessions
// turns a concurrent double open into shared.ErrAlreadyExists.
func (r *GormCashSessionRepository) Create(ctx context.Context, session *cashier.CashSession) error {
	model := models.CashSessionModelFromDomain(session)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// Save updates an existing session
func (r *GormCashSessionRepository) Save(ctx context.Context, session *cashier.CashSession) error {
	model := models.CashSessionModelFromDomain(session)
	return r.db.WithContext(ctx).Save(model).Error
}

// SaveWithLock saves with optimistic locking (version check)
func (r *GormCashSessionRepository) SaveWithLock(ctx context.Context, session *cashier.CashSession) error {
	model := models.CashSessionModelFromDomain(session)
	result := r.db.WithContext(ctx).
		Model(model).
		Where("id = ? AND version = ?", session.ID, session.Version-1).
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

// applySessionFilter applies filter options to the query
func (r *GormCashSessionRepository) applySessionFilter(query *gorm.DB, filter cashier.CashSessionFilter, paginate bool) *gorm.DB {
	if filter.ClinicID != nil {
		query = query.Where("clinic_id = ?", *filter.ClinicID)
	}
	if filter.PosTerminalID != nil {
		query = query.Where("pos_terminal_id = ?", *filter.PosTerminalID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.OpenedBy != nil {
		query = query.Where("opened_by = ?", *filter.OpenedBy)
	}
	if filter.FromDate != nil {
		query = query.Where("business_date >= ?", filter.FromDate.UTC().Format("2006-01-02"))
	}
	if filter.ToDate != nil {
		query = query.Where("business_date <= ?", filter.ToDate.UTC().Format("2006-01-02"))
	}

	if !paginate {
		return query
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	// Apply sorting with whitelist validation to prevent SQL injection
	sortField := ValidateSortField(filter.OrderBy, CashSessionSortFields, "business_date")
	sortOrder := ValidateSortOrder(filter.OrderDir)
	query = query.Order(fmt.Sprintf("%s %s", sortField, sortOrder))

	return query
}

// Ensure GormCashSessionRepository implements CashSessionRepository
var _ cashier.CashSessionRepository = (*GormCashSessionRepository)(nil)
