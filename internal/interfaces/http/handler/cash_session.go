package handler

import (
	"time"

	cashierapp "github.com/clinicore/backend/internal/application/cashier"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CashSessionHandler handles cash session API endpoints
type CashSessionHandler struct {
	BaseHandler
	sessions       *cashierapp.CashSessionService
	reconciliation *cashierapp.ReconciliationService
}

// NewCashSessionHandler creates a new CashSessionHandler
func NewCashSessionHandler(sessions *cashierapp.CashSessionService, reconciliation *cashierapp.ReconciliationService) *CashSessionHandler {
	return &CashSessionHandler{
		sessions:       sessions,
		reconciliation: reconciliation,
	}
}

// CashSessionListQuery represents filter parameters for the session list
type CashSessionListQuery struct {
	ClinicID      string `form:"clinic_id"`
	PosTerminalID string `form:"pos_terminal_id"`
	OpenedBy      string `form:"opened_by"`
	Status        string `form:"status"`
	FromDate      string `form:"from_date"`
	ToDate        string `form:"to_date"`
	Page          int    `form:"page,omitempty" binding:"omitempty,min=1"`
	PageSize      int    `form:"page_size,omitempty" binding:"omitempty,min=1,max=100"`
}

// Open opens a cash session for a clinic scope, or joins the one already
// open for the same clinic, POS terminal and business day. A fresh session
// returns 201, an existing one 200.
func (h *CashSessionHandler) Open(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid tenant")
		return
	}

	var req cashierapp.OpenSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	session, created, err := h.sessions.OpenOrGet(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	if created {
		h.Created(c, session)
		return
	}
	h.Success(c, session)
}

// List returns a paginated list of cash sessions
func (h *CashSessionHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid tenant")
		return
	}

	var query CashSessionListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.ValidationError(c, err)
		return
	}

	filter := cashierapp.CashSessionListFilter{
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
	if filter.PosTerminalID, ok = parseOptionalUUID(query.PosTerminalID); !ok {
		h.BadRequest(c, "Invalid POS terminal ID")
		return
	}
	if filter.OpenedBy, ok = parseOptionalUUID(query.OpenedBy); !ok {
		h.BadRequest(c, "Invalid user ID")
		return
	}
	filter.FromDate = parseOptionalDate(query.FromDate, false)
	filter.ToDate = parseOptionalDate(query.ToDate, true)

	sessions, total, err := h.sessions.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, sessions, total, filter.Page, filter.PageSize)
}

// Get returns a single cash session by ID
func (h *CashSessionHandler) Get(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid tenant")
		return
	}

	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid session ID")
		return
	}

	session, err := h.sessions.GetByID(c.Request.Context(), tenantID, sessionID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, session)
}

// Close closes an open cash session with the physically counted amounts
func (h *CashSessionHandler) Close(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid tenant")
		return
	}

	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid session ID")
		return
	}

	var req cashierapp.CloseSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	session, err := h.sessions.Close(c.Request.Context(), tenantID, sessionID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, session)
}

// Totals returns the reconciliation view of a session: expected card totals
// per POS terminal and signed totals per payment method.
func (h *CashSessionHandler) Totals(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid tenant")
		return
	}

	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid session ID")
		return
	}

	totals, err := h.reconciliation.SessionTotals(c.Request.Context(), tenantID, sessionID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, totals)
}

// ListPayments returns all payments recorded in a session
func (h *CashSessionHandler) ListPayments(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid tenant")
		return
	}

	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid session ID")
		return
	}

	payments, err := h.sessions.ListPayments(c.Request.Context(), tenantID, sessionID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, payments)
}

// ChangeLog returns the audit trail of a session
func (h *CashSessionHandler) ChangeLog(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid tenant")
		return
	}

	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid session ID")
		return
	}

	entries, err := h.sessions.GetChangeLog(c.Request.Context(), tenantID, sessionID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, entries)
}

// RegisterRoutes registers cash session routes
func (h *CashSessionHandler) RegisterRoutes(rg *gin.RouterGroup) {
	sessions := rg.Group("/cashier/sessions")
	{
		sessions.POST("", h.Open)
		sessions.GET("", h.List)
		sessions.GET("/:id", h.Get)
		sessions.POST("/:id/close", h.Close)
		sessions.GET("/:id/totals", h.Totals)
		sessions.GET("/:id/payments", h.ListPayments)
		sessions.GET("/:id/change-log", h.ChangeLog)
	}
}

// parseOptionalUUID parses an optional UUID query parameter. The second
// return value is false when a value was supplied but is not a valid UUID.
func parseOptionalUUID(s string) (*uuid.UUID, bool) {
	if s == "" {
		return nil, true
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return nil, false
	}
	return &id, true
}

// parseOptionalDate parses an optional YYYY-MM-DD query parameter,
// extending to end of day for upper bounds.
func parseOptionalDate(s string, endOfDay bool) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Second)
	}
	return &t
}
