package handler

import (
	"time"

	billingapp "github.com/shulesync/backend/internal/application/billing"
	"github.com/shulesync/backend/internal/domain/billing"
	"github.com/shulesync/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ExpenseHandler handles expense ledger API endpoints
type ExpenseHandler struct {
	BaseHandler
	expenses *billingapp.ExpenseService
}

// NewExpenseHandler creates a new ExpenseHandler
func NewExpenseHandler(expenses *billingapp.ExpenseService) *ExpenseHandler {
	return &ExpenseHandler{expenses: expenses}
}

// CreateExpenseRequest records a manual expense
type CreateExpenseRequest struct {
	Category     string     `json:"category" binding:"required,expense_category"`
	Amount       float64    `json:"amount" binding:"required,gt=0"`
	Description  string     `json:"description" binding:"required"`
	PaidTo       string     `json:"paid_to"`
	DateOccurred *time.Time `json:"date_occurred"`
}

// ApproveExpenseRequest identifies the approver
type ApproveExpenseRequest struct {
	ApprovedBy string `json:"approved_by" binding:"required,uuid"`
}

// ListExpensesQuery narrows expense listings
type ListExpensesQuery struct {
	dto.ListRequest
	Category *string    `form:"category"`
	Status   *string    `form:"status"`
	From     *time.Time `form:"from" time_format:"2006-01-02"`
	To       *time.Time `form:"to" time_format:"2006-01-02"`
}

// Create records a manual expense
func (h *ExpenseHandler) Create(c *gin.Context) {
	var req CreateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	serviceReq := billingapp.CreateExpenseRequest{
		Category:    billing.ExpenseCategory(req.Category),
		Amount:      decimal.NewFromFloat(req.Amount),
		Description: req.Description,
		PaidTo:      req.PaidTo,
	}
	if req.DateOccurred != nil {
		serviceReq.DateOccurred = *req.DateOccurred
	}

	expense, err := h.expenses.Create(c.Request.Context(), serviceReq)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, expense)
}

// Get returns one expense
func (h *ExpenseHandler) Get(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	expense, err := h.expenses.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, expense)
}

// List returns expenses matching the filter
func (h *ExpenseHandler) List(c *gin.Context) {
	var query ListExpensesQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	query.Normalize()

	filter := billing.ExpenseFilter{
		Search:   query.Search,
		From:     query.From,
		To:       query.To,
		Page:     query.Page,
		PageSize: query.PageSize,
	}
	if query.Category != nil {
		category := billing.ExpenseCategory(*query.Category)
		filter.Category = &category
	}
	if query.Status != nil {
		status := billing.ExpenseStatus(*query.Status)
		filter.Status = &status
	}

	expenses, total, err := h.expenses.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, expenses, total, filter.Page, filter.PageSize)
}

// Approve marks an expense approved
func (h *ExpenseHandler) Approve(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req ApproveExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	expense, err := h.expenses.Approve(c.Request.Context(), id, uuid.MustParse(req.ApprovedBy))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, expense)
}

// Decline marks an expense declined
func (h *ExpenseHandler) Decline(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req ApproveExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	expense, err := h.expenses.Decline(c.Request.Context(), id, uuid.MustParse(req.ApprovedBy))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, expense)
}

// Delete removes an expense
func (h *ExpenseHandler) Delete(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.expenses.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// RegisterRoutes registers the expense routes
func (h *ExpenseHandler) RegisterRoutes(rg *gin.RouterGroup) {
	expenses := rg.Group("/expenses")
	{
		expenses.GET("", h.List)
		expenses.GET("/:id", h.Get)
		expenses.POST("", h.Create)
		expenses.POST("/:id/approve", h.Approve)
		expenses.POST("/:id/decline", h.Decline)
		expenses.DELETE("/:id", h.Delete)
	}
}
