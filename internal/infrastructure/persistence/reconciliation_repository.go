package persistence

import (
	"context"

	"github.com/clinicore/backend/internal/domain/cashier"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormReconciliationRepository implements the read-side aggregation queries
// used to reconcile a session against external statements
type GormReconciliationRepository struct {
	db *gorm.DB
}

// NewGormReconciliationRepository creates a new GormReconciliationRepository
func NewGormReconciliationRepository(db *gorm.DB) *GormReconciliationRepository {
	return &GormReconciliationRepository{db: db}
}

// CardTotalsByPos sums completed card payments of a session grouped by POS
// terminal, split into ticket-backed and deferred-settlement amounts. Amounts
// are signed, credits subtract.
func (r *GormReconciliationRepository) CardTotalsByPos(ctx context.Context, tenantID, sessionID uuid.UUID) ([]cashier.PosTotalsRow, error) {
	var rows []cashier.PosTotalsRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT
			pos_terminal_id,
			COALESCE(SUM(CASE WHEN debt_ledger_id IS NULL
				THEN (CASE WHEN direction = ? THEN amount ELSE -amount END)
				ELSE 0 END), 0) AS expected_tickets,
			COALESCE(SUM(CASE WHEN debt_ledger_id IS NOT NULL
				THEN (CASE WHEN direction = ? THEN amount ELSE -amount END)
				ELSE 0 END), 0) AS expected_deferred
		FROM payments
		WHERE tenant_id = ?
		  AND cash_session_id = ?
		  AND method_type = ?
		  AND status = ?
		GROUP BY pos_terminal_id
		ORDER BY pos_terminal_id`,
		cashier.DirectionDebit, cashier.DirectionDebit,
		tenantID, sessionID,
		cashier.MethodTypeCard, cashier.PaymentStatusCompleted,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// TotalsByMethod sums completed payments of a session grouped by method type,
// split into ticket-backed and debt-settlement amounts. Amounts are signed,
// credits subtract.
func (r *GormReconciliationRepository) TotalsByMethod(ctx context.Context, tenantID, sessionID uuid.UUID) ([]cashier.MethodTotalsRow, error) {
	var rows []cashier.MethodTotalsRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT
			method_type,
			COALESCE(SUM(CASE WHEN debt_ledger_id IS NULL
				THEN (CASE WHEN direction = ? THEN amount ELSE -amount END)
				ELSE 0 END), 0) AS expected_tickets,
			COALESCE(SUM(CASE WHEN debt_ledger_id IS NOT NULL
				THEN (CASE WHEN direction = ? THEN amount ELSE -amount END)
				ELSE 0 END), 0) AS expected_deferred,
			COUNT(*) AS count
		FROM payments
		WHERE tenant_id = ?
		  AND cash_session_id = ?
		  AND status = ?
		GROUP BY method_type
		ORDER BY method_type`,
		cashier.DirectionDebit, cashier.DirectionDebit,
		tenantID, sessionID, cashier.PaymentStatusCompleted,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Ensure GormReconciliationRepository implements ReconciliationRepository
var _ cashier.ReconciliationRepository = (*GormReconciliationRepository)(nil)
