package persistence

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/clinicore/backend/internal/domain/cashier"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockPaymentRepository creates a GormPaymentRepository with a mocked SQL connection
func newMockPaymentRepository(t *testing.T) (*GormPaymentRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormPaymentRepository(gormDB), mock, mockDB
}

func TestGormPaymentRepository_SumCashForSession(t *testing.T) {
	t.Run("returns the signed cash total", func(t *testing.T) {
		repo, mock, mockDB := newMockPaymentRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()
		sessionID := uuid.New()

		mock.ExpectQuery(`SELECT COALESCE\(SUM\(CASE WHEN direction = \$1 THEN amount ELSE -amount END\), 0\) FROM "payments"`).
			WithArgs("DEBIT", tenantID, sessionID, "CASH", "COMPLETED").
			WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(decimal.NewFromInt(220)))

		sum, err := repo.SumCashForSession(context.Background(), tenantID, sessionID)

		assert.NoError(t, err)
		assert.True(t, sum.Equal(decimal.NewFromInt(220)))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns zero for a session without cash payments", func(t *testing.T) {
		repo, mock, mockDB := newMockPaymentRepository(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT COALESCE\(SUM\(CASE WHEN direction = \$1 THEN amount ELSE -amount END\), 0\) FROM "payments"`).
			WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(decimal.Zero))

		sum, err := repo.SumCashForSession(context.Background(), uuid.New(), uuid.New())

		assert.NoError(t, err)
		assert.True(t, sum.IsZero())
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormPaymentRepository_FindPendingVerification(t *testing.T) {
	t.Run("excludes payments that already have a verification row", func(t *testing.T) {
		repo, mock, mockDB := newMockPaymentRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()
		paymentID := uuid.New()

		rows := sqlmock.NewRows([]string{"id", "tenant_id", "version", "clinic_id", "amount", "direction", "method_type", "status"}).
			AddRow(paymentID, tenantID, 1, uuid.New(), decimal.NewFromInt(80), "DEBIT", "CARD", "COMPLETED")

		mock.ExpectQuery(`SELECT \* FROM "payments" WHERE .* NOT EXISTS \(SELECT 1 FROM payment_verifications pv WHERE pv\.payment_id = payments\.id\) .* ORDER BY payment_date ASC`).
			WillReturnRows(rows)

		payments, err := repo.FindPendingVerification(context.Background(), tenantID, cashier.PendingVerificationFilter{})

		assert.NoError(t, err)
		require.Len(t, payments, 1)
		assert.Equal(t, paymentID, payments[0].ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns empty worklist", func(t *testing.T) {
		repo, mock, mockDB := newMockPaymentRepository(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT \* FROM "payments" WHERE .* NOT EXISTS .*`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		payments, err := repo.FindPendingVerification(context.Background(), uuid.New(), cashier.PendingVerificationFilter{})

		assert.NoError(t, err)
		assert.Empty(t, payments)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
