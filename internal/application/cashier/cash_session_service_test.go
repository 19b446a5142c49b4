package cashier

import (
	"context"
	"testing"
	"time"

	"github.com/clinicore/backend/internal/domain/cashier"
	"github.com/clinicore/backend/internal/domain/shared"
	"github.com/clinicore/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newOpenSession(t *testing.T, tenantID, clinicID uuid.UUID, opening float64) *cashier.CashSession {
	t.Helper()
	cs, err := cashier.NewCashSession(
		tenantID,
		"CS-20250115-001",
		clinicID,
		time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
		valueobject.NewMoneyEURFromFloat(opening),
		uuid.New(),
	)
	require.NoError(t, err)
	cs.ClearDomainEvents()
	return cs
}

func TestCashSessionService_OpenOrGet_CreatesNew(t *testing.T) {
	sessionRepo := new(MockCashSessionRepository)
	paymentRepo := new(MockPaymentRepository)
	changeLogRepo := new(MockChangeLogRepository)
	svc := NewCashSessionService(sessionRepo, paymentRepo, changeLogRepo)

	tenantID := uuid.New()
	clinicID := uuid.New()
	posTerminalID := uuid.New()
	openedBy := uuid.New()

	sessionRepo.On("FindOpenByScope", mock.Anything, tenantID, clinicID, &posTerminalID, mock.Anything).Return(nil, nil).Once()
	sessionRepo.On("GenerateSessionNumber", mock.Anything, tenantID, clinicID, "MAD", mock.Anything).Return("MAD-20250115-001", nil)
	sessionRepo.On("Create", mock.Anything, mock.AnythingOfType("*cashier.CashSession")).Return(nil)
	changeLogRepo.On("Create", mock.Anything, mock.AnythingOfType("*cashier.ChangeLogEntry")).Return(nil)

	resp, created, err := svc.OpenOrGet(context.Background(), tenantID, OpenSessionRequest{
		ClinicID:           clinicID,
		ClinicPrefix:       "MAD",
		PosTerminalID:      &posTerminalID,
		OpeningBalanceCash: decimal.NewFromInt(100),
		OpenedBy:           openedBy,
	})
	require.NoError(t, err)

	assert.True(t, created)
	assert.Equal(t, "MAD-20250115-001", resp.SessionNumber)
	assert.Equal(t, "OPEN", resp.Status)
	require.NotNil(t, resp.PosTerminalID)
	assert.Equal(t, posTerminalID, *resp.PosTerminalID)
	assert.True(t, resp.OpeningBalanceCash.Equal(decimal.NewFromInt(100)))
	sessionRepo.AssertExpectations(t)
}

func TestCashSessionService_OpenOrGet_ReturnsExisting(t *testing.T) {
	sessionRepo := new(MockCashSessionRepository)
	paymentRepo := new(MockPaymentRepository)
	changeLogRepo := new(MockChangeLogRepository)
	svc := NewCashSessionService(sessionRepo, paymentRepo, changeLogRepo)

	tenantID := uuid.New()
	clinicID := uuid.New()
	existing := newOpenSession(t, tenantID, clinicID, 50)

	sessionRepo.On("FindOpenByScope", mock.Anything, tenantID, clinicID, (*uuid.UUID)(nil), mock.Anything).Return(existing, nil)

	resp, created, err := svc.OpenOrGet(context.Background(), tenantID, OpenSessionRequest{
		ClinicID: clinicID,
		OpenedBy: uuid.New(),
	})
	require.NoError(t, err)

	assert.False(t, created)
	assert.Equal(t, existing.ID, resp.ID)
	sessionRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCashSessionService_OpenOrGet_LosesRace(t *testing.T) {
	sessionRepo := new(MockCashSessionRepository)
	paymentRepo := new(MockPaymentRepository)
	changeLogRepo := new(MockChangeLogRepository)
	svc := NewCashSessionService(sessionRepo, paymentRepo, changeLogRepo)

	tenantID := uuid.New()
	clinicID := uuid.New()
	winner := newOpenSession(t, tenantID, clinicID, 80)

	// First read sees no session, the insert collides with a concurrent
	// opener, the re-read joins the winner's session
	sessionRepo.On("FindOpenByScope", mock.Anything, tenantID, clinicID, (*uuid.UUID)(nil), mock.Anything).Return(nil, nil).Once()
	sessionRepo.On("GenerateSessionNumber", mock.Anything, tenantID, clinicID, "", mock.Anything).Return("CS-20250115-002", nil)
	sessionRepo.On("Create", mock.Anything, mock.AnythingOfType("*cashier.CashSession")).Return(shared.ErrAlreadyExists)
	sessionRepo.On("FindOpenByScope", mock.Anything, tenantID, clinicID, (*uuid.UUID)(nil), mock.Anything).Return(winner, nil).Once()

	resp, created, err := svc.OpenOrGet(context.Background(), tenantID, OpenSessionRequest{
		ClinicID: clinicID,
		OpenedBy: uuid.New(),
	})
	require.NoError(t, err)

	assert.False(t, created)
	assert.Equal(t, winner.ID, resp.ID)
	sessionRepo.AssertExpectations(t)
}

func TestCashSessionService_OpenOrGet_RetriesNumberCollision(t *testing.T) {
	sessionRepo := new(MockCashSessionRepository)
	paymentRepo := new(MockPaymentRepository)
	changeLogRepo := new(MockChangeLogRepository)
	svc := NewCashSessionService(sessionRepo, paymentRepo, changeLogRepo)

	tenantID := uuid.New()
	clinicID := uuid.New()
	posTerminalID := uuid.New()

	// A sibling terminal of the same clinic takes 001 first. The insert
	// fails the session-number index, the scope re-read finds nothing, and
	// the number is regenerated instead of surfacing a conflict.
	sessionRepo.On("FindOpenByScope", mock.Anything, tenantID, clinicID, &posTerminalID, mock.Anything).Return(nil, nil)
	sessionRepo.On("GenerateSessionNumber", mock.Anything, tenantID, clinicID, "", mock.Anything).Return("CS-20250115-001", nil).Once()
	sessionRepo.On("GenerateSessionNumber", mock.Anything, tenantID, clinicID, "", mock.Anything).Return("CS-20250115-002", nil).Once()
	sessionRepo.On("Create", mock.Anything, mock.MatchedBy(func(s *cashier.CashSession) bool {
		return s.SessionNumber == "CS-20250115-001"
	})).Return(shared.ErrAlreadyExists).Once()
	sessionRepo.On("Create", mock.Anything, mock.MatchedBy(func(s *cashier.CashSession) bool {
		return s.SessionNumber == "CS-20250115-002"
	})).Return(nil).Once()
	changeLogRepo.On("Create", mock.Anything, mock.AnythingOfType("*cashier.ChangeLogEntry")).Return(nil)

	resp, created, err := svc.OpenOrGet(context.Background(), tenantID, OpenSessionRequest{
		ClinicID:      clinicID,
		PosTerminalID: &posTerminalID,
		OpenedBy:      uuid.New(),
	})
	require.NoError(t, err)

	assert.True(t, created)
	assert.Equal(t, "CS-20250115-002", resp.SessionNumber)
	sessionRepo.AssertExpectations(t)
}

func TestCashSessionService_Close(t *testing.T) {
	sessionRepo := new(MockCashSessionRepository)
	paymentRepo := new(MockPaymentRepository)
	changeLogRepo := new(MockChangeLogRepository)
	svc := NewCashSessionService(sessionRepo, paymentRepo, changeLogRepo)

	tenantID := uuid.New()
	clinicID := uuid.New()
	session := newOpenSession(t, tenantID, clinicID, 100)
	closedBy := uuid.New()

	sessionRepo.On("FindByIDForTenant", mock.Anything, tenantID, session.ID).Return(session, nil)
	paymentRepo.On("SumCashForSession", mock.Anything, tenantID, session.ID).Return(decimal.NewFromInt(250), nil)
	sessionRepo.On("SaveWithLock", mock.Anything, session).Return(nil)
	changeLogRepo.On("Create", mock.Anything, mock.AnythingOfType("*cashier.ChangeLogEntry")).Return(nil)

	resp, err := svc.Close(context.Background(), tenantID, session.ID, CloseSessionRequest{
		CountedCash: decimal.NewFromInt(340),
		CountedCard: decimal.NewFromInt(200),
		ClosedBy:    closedBy,
	})
	require.NoError(t, err)

	assert.Equal(t, "CLOSED", resp.Status)
	require.NotNil(t, resp.ExpectedCash)
	require.NotNil(t, resp.DifferenceCash)
	assert.True(t, resp.ExpectedCash.Equal(decimal.NewFromInt(350)))
	assert.True(t, resp.DifferenceCash.Equal(decimal.NewFromInt(-10)))
	sessionRepo.AssertExpectations(t)
}

func TestCashSessionService_Close_AlreadyClosed(t *testing.T) {
	sessionRepo := new(MockCashSessionRepository)
	paymentRepo := new(MockPaymentRepository)
	changeLogRepo := new(MockChangeLogRepository)
	svc := NewCashSessionService(sessionRepo, paymentRepo, changeLogRepo)

	tenantID := uuid.New()
	session := newOpenSession(t, tenantID, uuid.New(), 0)
	require.NoError(t, session.Close(cashier.CountedAmounts{}, decimal.Zero, uuid.New(), ""))

	sessionRepo.On("FindByIDForTenant", mock.Anything, tenantID, session.ID).Return(session, nil)
	paymentRepo.On("SumCashForSession", mock.Anything, tenantID, session.ID).Return(decimal.Zero, nil)

	_, err := svc.Close(context.Background(), tenantID, session.ID, CloseSessionRequest{
		ClosedBy: uuid.New(),
	})
	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "SESSION_CLOSED", domainErr.Code)
	sessionRepo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
}

func TestCashSessionService_Close_NotFound(t *testing.T) {
	sessionRepo := new(MockCashSessionRepository)
	paymentRepo := new(MockPaymentRepository)
	changeLogRepo := new(MockChangeLogRepository)
	svc := NewCashSessionService(sessionRepo, paymentRepo, changeLogRepo)

	tenantID := uuid.New()
	sessionID := uuid.New()

	sessionRepo.On("FindByIDForTenant", mock.Anything, tenantID, sessionID).Return(nil, nil)

	_, err := svc.Close(context.Background(), tenantID, sessionID, CloseSessionRequest{ClosedBy: uuid.New()})
	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "NOT_FOUND", domainErr.Code)
}

func TestCashSessionService_List(t *testing.T) {
	sessionRepo := new(MockCashSessionRepository)
	paymentRepo := new(MockPaymentRepository)
	changeLogRepo := new(MockChangeLogRepository)
	svc := NewCashSessionService(sessionRepo, paymentRepo, changeLogRepo)

	tenantID := uuid.New()
	clinicID := uuid.New()
	sessions := []cashier.CashSession{*newOpenSession(t, tenantID, clinicID, 10)}

	sessionRepo.On("FindAllForTenant", mock.Anything, tenantID, mock.AnythingOfType("cashier.CashSessionFilter")).Return(sessions, nil)
	sessionRepo.On("CountForTenant", mock.Anything, tenantID, mock.AnythingOfType("cashier.CashSessionFilter")).Return(int64(1), nil)

	resps, total, err := svc.List(context.Background(), tenantID, CashSessionListFilter{
		ClinicID: &clinicID,
		Status:   "OPEN",
		Page:     1,
		PageSize: 20,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(1), total)
	require.Len(t, resps, 1)
	assert.Equal(t, sessions[0].SessionNumber, resps[0].SessionNumber)
}

func TestCashSessionService_List_InvalidStatus(t *testing.T) {
	svc := NewCashSessionService(new(MockCashSessionRepository), new(MockPaymentRepository), new(MockChangeLogRepository))

	_, _, err := svc.List(context.Background(), uuid.New(), CashSessionListFilter{Status: "REOPENED"})
	assert.Error(t, err)
}

func TestCashSessionService_ListPayments(t *testing.T) {
	sessionRepo := new(MockCashSessionRepository)
	paymentRepo := new(MockPaymentRepository)
	changeLogRepo := new(MockChangeLogRepository)
	svc := NewCashSessionService(sessionRepo, paymentRepo, changeLogRepo)

	tenantID := uuid.New()
	session := newOpenSession(t, tenantID, uuid.New(), 0)

	p, err := cashier.NewPayment(tenantID, session.ClinicID, valueobject.NewMoneyEURFromFloat(30),
		cashier.DirectionDebit, uuid.New(), cashier.MethodTypeCash, time.Now())
	require.NoError(t, err)
	p.WithCashSession(session.ID)

	sessionRepo.On("FindByIDForTenant", mock.Anything, tenantID, session.ID).Return(session, nil)
	paymentRepo.On("FindByCashSession", mock.Anything, tenantID, session.ID).Return([]cashier.Payment{*p}, nil)

	resps, err := svc.ListPayments(context.Background(), tenantID, session.ID)
	require.NoError(t, err)
	require.Len(t, resps, 1)
	assert.True(t, resps[0].SignedAmount.Equal(decimal.NewFromInt(30)))
}
