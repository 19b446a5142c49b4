package persistence

import (
	"context"

	"github.com/clinicore/backend/internal/domain/cashier"
	"github.com/clinicore/backend/internal/domain/shared"
	"github.com/clinicore/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormChangeLogRepository implements ChangeLogRepository using GORM
type GormChangeLogRepository struct {
	db *gorm.DB
}

// NewGormChangeLogRepository creates a new GormChangeLogRepository
func NewGormChangeLogRepository(db *gorm.DB) *GormChangeLogRepository {
	return &GormChangeLogRepository{db: db}
}

// Create appends an audit entry
func (r *GormChangeLogRepository) Create(ctx context.Context, entry *cashier.ChangeLogEntry) error {
	model := models.ChangeLogModelFromDomain(entry)
	return r.db.WithContext(ctx).Create(model).Error
}

// FindByEntity finds audit entries for an entity, newest first
func (r *GormChangeLogRepository) FindByEntity(ctx context.Context, tenantID, entityID uuid.UUID, filter shared.Filter) ([]cashier.ChangeLogEntry, error) {
	var entryModels []models.ChangeLogModel
	query := r.db.WithContext(ctx).
		Where("tenant_id = ? AND entity_id = ?", tenantID, entityID).
		Order("created_at DESC")

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if err := query.Find(&entryModels).Error; err != nil {
		return nil, err
	}
	entries := make([]cashier.ChangeLogEntry, len(entryModels))
	for i, model := range entryModels {
		entries[i] = *model.ToDomain()
	}
	return entries, nil
}

// Ensure GormChangeLogRepository implements ChangeLogRepository
var _ cashier.ChangeLogRepository = (*GormChangeLogRepository)(nil)
