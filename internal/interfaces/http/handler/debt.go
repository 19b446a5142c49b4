package handler

import (
	cashierapp "github.com/clinicore/backend/internal/application/cashier"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// DebtHandler handles debt ledger and payment API endpoints
type DebtHandler struct {
	BaseHandler
	debts *cashierapp.DebtService
}

// NewDebtHandler creates a new DebtHandler
func NewDebtHandler(debts *cashierapp.DebtService) *DebtHandler {
	return &DebtHandler{debts: debts}
}

// DebtLedgerListQuery represents filter parameters for the ledger list
type DebtLedgerListQuery struct {
	ClinicID string `form:"clinic_id"`
	ClientID string `form:"client_id"`
	TicketID string `form:"ticket_id"`
	Status   string `form:"status"`
	Page     int    `form:"page,omitempty" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size,omitempty" binding:"omitempty,min=1,max=100"`
}

// CancelRequest carries the reason and actor for a cancellation
type CancelRequest struct {
	Reason string    `json:"reason" binding:"required"`
	UserID uuid.UUID `json:"user_id" binding:"required"`
}

// Create opens a debt ledger for the unpaid remainder of a ticket
func (h *DebtHandler) Create(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid tenant")
		return
	}

	var req cashierapp.CreateDebtRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	ledger, err := h.debts.CreateDebt(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, ledger)
}

// List returns a paginated list of debt ledgers
func (h *DebtHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid tenant")
		return
	}

	var query DebtLedgerListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.ValidationError(c, err)
		return
	}

	filter := cashierapp.DebtLedgerListFilter{
		Status:   query.Status,
		Page:     query.Page,
		PageSize: query.PageSize,
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
	if filter.ClientID, ok = parseOptionalUUID(query.ClientID); !ok {
		h.BadRequest(c, "Invalid client ID")
		return
	}
	if filter.TicketID, ok = parseOptionalUUID(query.TicketID); !ok {
		h.BadRequest(c, "Invalid ticket ID")
		return
	}

	ledgers, total, err := h.debts.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, ledgers, total, filter.Page, filter.PageSize)
}

// Get returns a single debt ledger by ID
func (h *DebtHandler) Get(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid tenant")
		return
	}

	ledgerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid ledger ID")
		return
	}

	ledger, err := h.debts.GetByID(c.Request.Context(), tenantID, ledgerID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, ledger)
}

// SettleResponse bundles the updated ledger with the payment it produced
type SettleResponse struct {
	Ledger  *cashierapp.DebtLedgerResponse `json:"ledger"`
	Payment *cashierapp.PaymentResponse    `json:"payment"`
}

// Settle collects an amount against a debt ledger, producing a credit
// payment attached to the clinic's open cash session when one exists
func (h *DebtHandler) Settle(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid tenant")
		return
	}

	ledgerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid ledger ID")
		return
	}

	var req cashierapp.SettleDebtRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	ledger, payment, err := h.debts.SettleDebt(c.Request.Context(), tenantID, ledgerID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, SettleResponse{Ledger: ledger, Payment: payment})
}

// Cancel cancels a debt ledger that has no settlements yet
func (h *DebtHandler) Cancel(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid tenant")
		return
	}

	ledgerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid ledger ID")
		return
	}

	var req CancelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	ledger, err := h.debts.CancelLedger(c.Request.Context(), tenantID, ledgerID, req.Reason, req.UserID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, ledger)
}

// ListPayments returns the settlement history of a ledger
func (h *DebtHandler) ListPayments(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid tenant")
		return
	}

	ledgerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid ledger ID")
		return
	}

	payments, err := h.debts.ListPayments(c.Request.Context(), tenantID, ledgerID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, payments)
}

// CancelPayment cancels a payment by writing a compensating reversal,
// rolling back any debt ledger progress it had produced
func (h *DebtHandler) CancelPayment(c *gin.Context) {
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

	var req CancelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	result, err := h.debts.CancelPayment(c.Request.Context(), tenantID, paymentID, req.Reason, req.UserID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}

// RegisterRoutes registers debt ledger and payment routes
func (h *DebtHandler) RegisterRoutes(rg *gin.RouterGroup) {
	debts := rg.Group("/cashier/debts")
	{
		debts.POST("", h.Create)
		debts.GET("", h.List)
		debts.GET("/:id", h.Get)
		debts.POST("/:id/settle", h.Settle)
		debts.POST("/:id/cancel", h.Cancel)
		debts.GET("/:id/payments", h.ListPayments)
	}

	payments := rg.Group("/cashier/payments")
	{
		payments.POST("/:id/cancel", h.CancelPayment)
	}
}
