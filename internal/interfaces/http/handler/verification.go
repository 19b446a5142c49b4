package handler

import (
	cashierapp "github.com/clinicore/backend/internal/application/cashier"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// VerificationHandler handles payment verification API endpoints
type VerificationHandler struct {
	BaseHandler
	verifications *cashierapp.VerificationService
}

// NewVerificationHandler creates a new VerificationHandler
func NewVerificationHandler(verifications *cashierapp.VerificationService) *VerificationHandler {
	return &VerificationHandler{verifications: verifications}
}

// PendingVerificationQuery represents filter parameters for the
// back-office verification worklist
type PendingVerificationQuery struct {
	ClinicID      string `form:"clinic_id"`
	CashSessionID string `form:"cash_session_id"`
	PosTerminalID string `form:"pos_terminal_id"`
	MethodType    string `form:"method_type"`
	FromDate      string `form:"from_date"`
	ToDate        string `form:"to_date"`
	Page          int    `form:"page,omitempty" binding:"omitempty,min=1"`
	PageSize      int    `form:"page_size,omitempty" binding:"omitempty,min=1,max=100"`
}

// ListPending returns non-cash payments that still lack a verification verdict
func (h *VerificationHandler) ListPending(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid tenant")
		return
	}

	var query PendingVerificationQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.ValidationError(c, err)
		return
	}

	filter := cashierapp.PendingVerificationListFilter{
		MethodType: query.MethodType,
		Page:       query.Page,
		PageSize:   query.PageSize,
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	var ok bool
	if filter.ClinicID, ok = parseOptionalUUID(query.ClinicID); !ok {
		h.BadRequest(c, "Invalid clinic ID")
		return
	}
	if filter.CashSessionID, ok = parseOptionalUUID(query.CashSessionID); !ok {
		h.BadRequest(c, "Invalid session ID")
		return
	}
	if filter.PosTerminalID, ok = parseOptionalUUID(query.PosTerminalID); !ok {
		h.BadRequest(c, "Invalid POS terminal ID")
		return
	}
	filter.FromDate = parseOptionalDate(query.FromDate, false)
	filter.ToDate = parseOptionalDate(query.ToDate, true)

	payments, total, err := h.verifications.ListPending(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, payments, total, filter.Page, filter.PageSize)
}

// Verify records the back-office verdict for a payment. The record is
// write-once: a second verdict for the same payment returns a conflict.
func (h *VerificationHandler) Verify(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid tenant")
		return
	}

	var req cashierapp.VerifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	verification, err := h.verifications.Verify(c.Request.Context(), tenantID, req.PaymentID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, verification)
}

// GetForPayment returns the verification record of a payment, if any
func (h *VerificationHandler) GetForPayment(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid tenant")
		return
	}

	paymentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid payment ID")
		return
	}

	verification, err := h.verifications.GetForPayment(c.Request.Context(), tenantID, paymentID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, verification)
}

// RegisterRoutes registers payment verification routes
func (h *VerificationHandler) RegisterRoutes(rg *gin.RouterGroup) {
	verifications := rg.Group("/cashier/verifications")
	{
		verifications.GET("/pending", h.ListPending)
		verifications.POST("", h.Verify)
	}

	rg.GET("/cashier/payments/:id/verification", h.GetForPayment)
}
