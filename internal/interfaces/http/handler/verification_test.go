package handler

import (
	"net/http"
	"testing"
	"time"

	cashierapp "github.com/clinicore/backend/internal/application/cashier"
	"github.com/clinicore/backend/internal/domain/cashier"
	"github.com/clinicore/backend/internal/domain/shared"
	"github.com/clinicore/backend/internal/domain/shared/valueobject"
	"github.com/clinicore/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type verificationTestEnv struct {
	paymentRepo      *MockPaymentRepository
	verificationRepo *MockPaymentVerificationRepository
	changeLogRepo    *MockChangeLogRepository
	handler          *VerificationHandler
}

func newVerificationTestEnv() *verificationTestEnv {
	paymentRepo := new(MockPaymentRepository)
	verificationRepo := new(MockPaymentVerificationRepository)
	changeLogRepo := new(MockChangeLogRepository)

	verifications := cashierapp.NewVerificationService(paymentRepo, verificationRepo, changeLogRepo)

	return &verificationTestEnv{
		paymentRepo:      paymentRepo,
		verificationRepo: verificationRepo,
		changeLogRepo:    changeLogRepo,
		handler:          NewVerificationHandler(verifications),
	}
}

func newCardPayment(t *testing.T, tenantID uuid.UUID, amount float64) *cashier.Payment {
	t.Helper()

	p, err := cashier.NewPayment(tenantID, uuid.New(), valueobject.NewMoneyEURFromFloat(amount),
		cashier.DirectionDebit, uuid.New(), cashier.MethodTypeCard, time.Now())
	require.NoError(t, err)
	p.ClearDomainEvents()
	return p
}

func TestVerificationHandler_Verify(t *testing.T) {
	env := newVerificationTestEnv()
	tenantID := uuid.New()
	payment := newCardPayment(t, tenantID, 75)
	verifiedBy := uuid.New()

	env.paymentRepo.On("FindByIDForTenant", mock.Anything, tenantID, payment.ID).
		Return(payment, nil).Once()
	env.verificationRepo.On("Create", mock.Anything, mock.AnythingOfType("*cashier.PaymentVerification")).
		Return(nil).Once()
	env.changeLogRepo.On("Create", mock.Anything, mock.AnythingOfType("*cashier.ChangeLogEntry")).
		Return(nil).Once()

	c, w := newTestContext(t, tenantID, http.MethodPost, "/api/v1/cashier/verifications", cashierapp.VerifyPaymentRequest{
		PaymentID:     payment.ID,
		Verified:      true,
		AttachmentURL: "https://files.example.com/statements/2025-01.pdf",
		VerifiedBy:    verifiedBy,
	})
	env.handler.Verify(c)

	require.Equal(t, http.StatusCreated, w.Code)
	var verification cashierapp.PaymentVerificationResponse
	dataField(t, decodeResponse(t, w), &verification)
	assert.Equal(t, payment.ID, verification.PaymentID)
	assert.True(t, verification.Verified)
	assert.Equal(t, verifiedBy, verification.VerifiedBy)
	env.verificationRepo.AssertExpectations(t)
}

func TestVerificationHandler_Verify_AlreadyVerified(t *testing.T) {
	env := newVerificationTestEnv()
	tenantID := uuid.New()
	payment := newCardPayment(t, tenantID, 75)

	env.paymentRepo.On("FindByIDForTenant", mock.Anything, tenantID, payment.ID).
		Return(payment, nil).Once()
	env.verificationRepo.On("Create", mock.Anything, mock.AnythingOfType("*cashier.PaymentVerification")).
		Return(shared.ErrAlreadyExists).Once()

	c, w := newTestContext(t, tenantID, http.MethodPost, "/api/v1/cashier/verifications", cashierapp.VerifyPaymentRequest{
		PaymentID:  payment.ID,
		Verified:   true,
		VerifiedBy: uuid.New(),
	})
	env.handler.Verify(c)

	assertErrorCode(t, w, http.StatusConflict, dto.ErrCodeAlreadyVerified)
}

func TestVerificationHandler_Verify_CashNotVerifiable(t *testing.T) {
	env := newVerificationTestEnv()
	tenantID := uuid.New()

	payment, err := cashier.NewPayment(tenantID, uuid.New(), valueobject.NewMoneyEURFromFloat(20),
		cashier.DirectionDebit, uuid.New(), cashier.MethodTypeCash, time.Now())
	require.NoError(t, err)

	env.paymentRepo.On("FindByIDForTenant", mock.Anything, tenantID, payment.ID).
		Return(payment, nil).Once()

	c, w := newTestContext(t, tenantID, http.MethodPost, "/api/v1/cashier/verifications", cashierapp.VerifyPaymentRequest{
		PaymentID:  payment.ID,
		Verified:   true,
		VerifiedBy: uuid.New(),
	})
	env.handler.Verify(c)

	assertErrorCode(t, w, http.StatusBadRequest, dto.ErrCodeInvalidInput)
}

func TestVerificationHandler_Verify_PaymentNotFound(t *testing.T) {
	env := newVerificationTestEnv()
	tenantID := uuid.New()
	paymentID := uuid.New()

	env.paymentRepo.On("FindByIDForTenant", mock.Anything, tenantID, paymentID).
		Return(nil, nil).Once()

	c, w := newTestContext(t, tenantID, http.MethodPost, "/api/v1/cashier/verifications", cashierapp.VerifyPaymentRequest{
		PaymentID:  paymentID,
		Verified:   true,
		VerifiedBy: uuid.New(),
	})
	env.handler.Verify(c)

	assertErrorCode(t, w, http.StatusNotFound, dto.ErrCodeNotFound)
}

func TestVerificationHandler_ListPending(t *testing.T) {
	env := newVerificationTestEnv()
	tenantID := uuid.New()
	payment := newCardPayment(t, tenantID, 75)

	env.paymentRepo.On("FindPendingVerification", mock.Anything, tenantID, mock.AnythingOfType("cashier.PendingVerificationFilter")).
		Return([]cashier.Payment{*payment}, nil).Once()
	env.paymentRepo.On("CountPendingVerification", mock.Anything, tenantID, mock.AnythingOfType("cashier.PendingVerificationFilter")).
		Return(int64(1), nil).Once()

	c, w := newTestContext(t, tenantID, http.MethodGet, "/api/v1/cashier/verifications/pending?method_type=CARD", nil)
	env.handler.ListPending(c)

	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(1), resp.Meta.Total)

	var payments []cashierapp.PaymentResponse
	dataField(t, resp, &payments)
	require.Len(t, payments, 1)
	assert.Equal(t, "CARD", payments[0].MethodType)
	env.paymentRepo.AssertExpectations(t)
}

func TestVerificationHandler_GetForPayment_NotFound(t *testing.T) {
	env := newVerificationTestEnv()
	tenantID := uuid.New()
	paymentID := uuid.New()

	env.verificationRepo.On("FindByPayment", mock.Anything, tenantID, paymentID).
		Return(nil, nil).Once()

	c, w := newTestContext(t, tenantID, http.MethodGet, "/api/v1/cashier/payments/"+paymentID.String()+"/verification", nil)
	c.Params = gin.Params{{Key: "id", Value: paymentID.String()}}
	env.handler.GetForPayment(c)

	assertErrorCode(t, w, http.StatusNotFound, dto.ErrCodeNotFound)
}
