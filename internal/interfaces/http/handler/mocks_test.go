package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/clinicore/backend/internal/domain/cashier"
	"github.com/clinicore/backend/internal/domain/shared"
	"github.com/clinicore/backend/internal/interfaces/http/dto"
	"github.com/clinicore/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

// =============================================================================
// Mock Repositories
// =============================================================================

// MockCashSessionRepository is a mock implementation of cashier.CashSessionRepository
type MockCashSessionRepository struct {
	mock.Mock
}

func (m *MockCashSessionRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*cashier.CashSession, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cashier.CashSession), args.Error(1)
}

func (m *MockCashSessionRepository) FindOpenByScope(ctx context.Context, tenantID, clinicID uuid.UUID, posTerminalID *uuid.UUID, businessDate time.Time) (*cashier.CashSession, error) {
	args := m.Called(ctx, tenantID, clinicID, posTerminalID, businessDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cashier.CashSession), args.Error(1)
}

func (m *MockCashSessionRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter cashier.CashSessionFilter) ([]cashier.CashSession, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]cashier.CashSession), args.Error(1)
}

func (m *MockCashSessionRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter cashier.CashSessionFilter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCashSessionRepository) GenerateSessionNumber(ctx context.Context, tenantID, clinicID uuid.UUID, clinicPrefix string, businessDate time.Time) (string, error) {
	args := m.Called(ctx, tenantID, clinicID, clinicPrefix, businessDate)
	return args.String(0), args.Error(1)
}

func (m *MockCashSessionRepository) Create(ctx context.Context, session *cashier.CashSession) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockCashSessionRepository) Save(ctx context.Context, session *cashier.CashSession) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockCashSessionRepository) SaveWithLock(ctx context.Context, session *cashier.CashSession) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

// MockPaymentRepository is a mock implementation of cashier.PaymentRepository
type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*cashier.Payment, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cashier.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter cashier.PaymentFilter) ([]cashier.Payment, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]cashier.Payment), args.Error(1)
}

func (m *MockPaymentRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter cashier.PaymentFilter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPaymentRepository) FindByCashSession(ctx context.Context, tenantID, sessionID uuid.UUID) ([]cashier.Payment, error) {
	args := m.Called(ctx, tenantID, sessionID)
	return args.Get(0).([]cashier.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindByDebtLedger(ctx context.Context, tenantID, ledgerID uuid.UUID) ([]cashier.Payment, error) {
	args := m.Called(ctx, tenantID, ledgerID)
	return args.Get(0).([]cashier.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindPendingVerification(ctx context.Context, tenantID uuid.UUID, filter cashier.PendingVerificationFilter) ([]cashier.Payment, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]cashier.Payment), args.Error(1)
}

func (m *MockPaymentRepository) CountPendingVerification(ctx context.Context, tenantID uuid.UUID, filter cashier.PendingVerificationFilter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPaymentRepository) SumCashForSession(ctx context.Context, tenantID, sessionID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, tenantID, sessionID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockPaymentRepository) Create(ctx context.Context, payment *cashier.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *MockPaymentRepository) Save(ctx context.Context, payment *cashier.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

// MockDebtLedgerRepository is a mock implementation of cashier.DebtLedgerRepository
type MockDebtLedgerRepository struct {
	mock.Mock
}

func (m *MockDebtLedgerRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*cashier.DebtLedger, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cashier.DebtLedger), args.Error(1)
}

func (m *MockDebtLedgerRepository) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*cashier.DebtLedger, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cashier.DebtLedger), args.Error(1)
}

func (m *MockDebtLedgerRepository) FindActiveByTicket(ctx context.Context, tenantID, ticketID uuid.UUID) (*cashier.DebtLedger, error) {
	args := m.Called(ctx, tenantID, ticketID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cashier.DebtLedger), args.Error(1)
}

func (m *MockDebtLedgerRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter cashier.DebtLedgerFilter) ([]cashier.DebtLedger, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]cashier.DebtLedger), args.Error(1)
}

func (m *MockDebtLedgerRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter cashier.DebtLedgerFilter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockDebtLedgerRepository) Create(ctx context.Context, ledger *cashier.DebtLedger) error {
	args := m.Called(ctx, ledger)
	return args.Error(0)
}

func (m *MockDebtLedgerRepository) SaveWithLock(ctx context.Context, ledger *cashier.DebtLedger) error {
	args := m.Called(ctx, ledger)
	return args.Error(0)
}

// MockPaymentVerificationRepository is a mock implementation of cashier.PaymentVerificationRepository
type MockPaymentVerificationRepository struct {
	mock.Mock
}

func (m *MockPaymentVerificationRepository) Create(ctx context.Context, verification *cashier.PaymentVerification) error {
	args := m.Called(ctx, verification)
	return args.Error(0)
}

func (m *MockPaymentVerificationRepository) FindByPayment(ctx context.Context, tenantID, paymentID uuid.UUID) (*cashier.PaymentVerification, error) {
	args := m.Called(ctx, tenantID, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cashier.PaymentVerification), args.Error(1)
}

func (m *MockPaymentVerificationRepository) ExistsForPayment(ctx context.Context, tenantID, paymentID uuid.UUID) (bool, error) {
	args := m.Called(ctx, tenantID, paymentID)
	return args.Bool(0), args.Error(1)
}

// MockChangeLogRepository is a mock implementation of cashier.ChangeLogRepository
type MockChangeLogRepository struct {
	mock.Mock
}

func (m *MockChangeLogRepository) Create(ctx context.Context, entry *cashier.ChangeLogEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockChangeLogRepository) FindByEntity(ctx context.Context, tenantID, entityID uuid.UUID, filter shared.Filter) ([]cashier.ChangeLogEntry, error) {
	args := m.Called(ctx, tenantID, entityID, filter)
	return args.Get(0).([]cashier.ChangeLogEntry), args.Error(1)
}

// MockReconciliationRepository is a mock implementation of cashier.ReconciliationRepository
type MockReconciliationRepository struct {
	mock.Mock
}

func (m *MockReconciliationRepository) CardTotalsByPos(ctx context.Context, tenantID, sessionID uuid.UUID) ([]cashier.PosTotalsRow, error) {
	args := m.Called(ctx, tenantID, sessionID)
	return args.Get(0).([]cashier.PosTotalsRow), args.Error(1)
}

func (m *MockReconciliationRepository) TotalsByMethod(ctx context.Context, tenantID, sessionID uuid.UUID) ([]cashier.MethodTotalsRow, error) {
	args := m.Called(ctx, tenantID, sessionID)
	return args.Get(0).([]cashier.MethodTotalsRow), args.Error(1)
}

// Interface compliance checks
var (
	_ cashier.CashSessionRepository         = (*MockCashSessionRepository)(nil)
	_ cashier.PaymentRepository             = (*MockPaymentRepository)(nil)
	_ cashier.DebtLedgerRepository          = (*MockDebtLedgerRepository)(nil)
	_ cashier.PaymentVerificationRepository = (*MockPaymentVerificationRepository)(nil)
	_ cashier.ChangeLogRepository           = (*MockChangeLogRepository)(nil)
	_ cashier.ReconciliationRepository      = (*MockReconciliationRepository)(nil)
)

// =============================================================================
// Test Helpers
// =============================================================================

// newTestContext builds a gin test context with the tenant already resolved,
// the way the tenant middleware leaves it for handlers
func newTestContext(t *testing.T, tenantID uuid.UUID, method, target string, body interface{}) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	if tenantID != uuid.Nil {
		c.Set(middleware.TenantIDKey, tenantID.String())
	}

	return c, w
}

// decodeResponse unmarshals the recorded body into a dto.Response envelope
func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

// dataField re-marshals the envelope's data into the given struct
func dataField(t *testing.T, resp dto.Response, out interface{}) {
	t.Helper()

	raw, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, out))
}

func assertErrorCode(t *testing.T, w *httptest.ResponseRecorder, status int, code string) {
	t.Helper()

	require.Equal(t, status, w.Code)
	resp := decodeResponse(t, w)
	require.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	require.Equal(t, code, resp.Error.Code)
}
