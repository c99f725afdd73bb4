package handler

import (
	"context"
	"time"

	billingapp "github.com/shulesync/backend/internal/application/billing"
	"github.com/shulesync/backend/internal/domain/billing"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// BillingHandler handles the invoice ledger API endpoints
type BillingHandler struct {
	BaseHandler
	billing       *billingapp.BillingService
	batch         *billingapp.BatchInvoiceService
	reconciler    *billingapp.ReconciliationService
	reminders     *billingapp.ReminderService
	logger        *zap.Logger
	backgroundCtx context.Context
}

// NewBillingHandler creates a new BillingHandler. backgroundCtx bounds the
// async sweeps so they stop on shutdown rather than on request completion.
func NewBillingHandler(
	billingService *billingapp.BillingService,
	batch *billingapp.BatchInvoiceService,
	reconciler *billingapp.ReconciliationService,
	reminders *billingapp.ReminderService,
	backgroundCtx context.Context,
	logger *zap.Logger,
) *BillingHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if backgroundCtx == nil {
		backgroundCtx = context.Background()
	}
	return &BillingHandler{
		billing:       billingService,
		batch:         batch,
		reconciler:    reconciler,
		reminders:     reminders,
		logger:        logger,
		backgroundCtx: backgroundCtx,
	}
}

// ===================== Request DTOs =====================

// StudentInvoiceQuery selects the invoice period; empty means current
type StudentInvoiceQuery struct {
	Year *string `form:"year" binding:"omitempty,uuid"`
	Term *int    `form:"term" binding:"omitempty,min=1,max=3"`
}

// ListInvoicesQuery narrows invoice listings
type ListInvoicesQuery struct {
	StudentID *string `form:"student_id" binding:"omitempty,uuid"`
	YearID    *string `form:"year_id" binding:"omitempty,uuid"`
	Term      *int    `form:"term" binding:"omitempty,min=1,max=3"`
	Status    *string `form:"status"`
	Page      int     `form:"page" binding:"omitempty,min=1"`
	PageSize  int     `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// RecordPaymentRequest posts a payment against an invoice
type RecordPaymentRequest struct {
	Amount     float64 `json:"amount" binding:"required,gt=0"`
	Method     string  `json:"method" binding:"required,payment_method"`
	Reference  string  `json:"reference"`
	ReceivedBy *string `json:"received_by" binding:"omitempty,uuid"`
	Notes      string  `json:"notes"`
}

// AddAdjustmentRequest posts a manual credit or debit
type AddAdjustmentRequest struct {
	Type       string  `json:"type" binding:"required,oneof=CREDIT DEBIT"`
	Amount     float64 `json:"amount" binding:"required,gt=0"`
	Reason     string  `json:"reason" binding:"required"`
	ApprovedBy *string `json:"approved_by" binding:"omitempty,uuid"`
}

// GenerateBatchRequest scopes a batch invoice run
type GenerateBatchRequest struct {
	ClassID *string    `json:"class_id" binding:"omitempty,uuid"`
	Level   string     `json:"level"`
	YearID  *string    `json:"year_id" binding:"omitempty,uuid"`
	Term    *int       `json:"term" binding:"omitempty,min=1,max=3"`
	DueDate *time.Time `json:"due_date"`
}

// SendRemindersRequest selects invoices for the reminder batch
type SendRemindersRequest struct {
	InvoiceIDs []string `json:"invoice_ids" binding:"required,min=1,dive,uuid"`
	Template   string   `json:"template"`
}

// ===================== Handlers =====================

// GetStudentInvoice returns a student's invoice for the requested or
// current period, with items, payments and adjustments
func (h *BillingHandler) GetStudentInvoice(c *gin.Context) {
	studentID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var query StudentInvoiceQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	var yearID *uuid.UUID
	if query.Year != nil {
		id := uuid.MustParse(*query.Year)
		yearID = &id
	}

	inv, err := h.billing.GetStudentInvoice(c.Request.Context(), studentID, yearID, query.Term)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, inv)
}

// ListInvoices lists invoices matching the filter
func (h *BillingHandler) ListInvoices(c *gin.Context) {
	var query ListInvoicesQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	if query.Page < 1 {
		query.Page = 1
	}
	if query.PageSize < 1 {
		query.PageSize = 20
	}

	filter := billing.InvoiceFilter{
		Term:     query.Term,
		Page:     query.Page,
		PageSize: query.PageSize,
	}
	if query.StudentID != nil {
		id := uuid.MustParse(*query.StudentID)
		filter.StudentID = &id
	}
	if query.YearID != nil {
		id := uuid.MustParse(*query.YearID)
		filter.AcademicYearID = &id
	}
	if query.Status != nil {
		status := billing.InvoiceStatus(*query.Status)
		if !status.IsValid() {
			h.BadRequest(c, "invalid status: "+*query.Status)
			return
		}
		filter.Status = &status
	}

	invoices, total, err := h.billing.ListInvoices(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, invoices, total, filter.Page, filter.PageSize)
}

// GetInvoice returns one invoice with its children
func (h *BillingHandler) GetInvoice(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	inv, err := h.billing.GetInvoice(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, inv)
}

// RecordPayment posts a payment; a duplicate electronic (method, reference)
// pair is rejected with 409
func (h *BillingHandler) RecordPayment(c *gin.Context) {
	invoiceID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	serviceReq := billingapp.RecordPaymentRequest{
		Amount:    decimal.NewFromFloat(req.Amount),
		Method:    billing.PaymentMethod(req.Method),
		Reference: req.Reference,
		Notes:     req.Notes,
	}
	if req.ReceivedBy != nil {
		id := uuid.MustParse(*req.ReceivedBy)
		serviceReq.ReceivedBy = &id
	}

	inv, err := h.billing.RecordPayment(c.Request.Context(), invoiceID, serviceReq)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, inv)
}

// RemovePayment deletes a payment and recomputes the owning invoice
func (h *BillingHandler) RemovePayment(c *gin.Context) {
	paymentID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	inv, err := h.billing.RemovePayment(c.Request.Context(), paymentID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, inv)
}

// AddAdjustment posts a manual credit or debit against an invoice
func (h *BillingHandler) AddAdjustment(c *gin.Context) {
	invoiceID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req AddAdjustmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	serviceReq := billingapp.AddAdjustmentRequest{
		Type:   billing.AdjustmentType(req.Type),
		Amount: decimal.NewFromFloat(req.Amount),
		Reason: req.Reason,
	}
	if req.ApprovedBy != nil {
		id := uuid.MustParse(*req.ApprovedBy)
		serviceReq.ApprovedBy = &id
	}

	inv, err := h.billing.AddAdjustment(c.Request.Context(), invoiceID, serviceReq)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, inv)
}

// ListAdjustments returns an invoice's adjustments
func (h *BillingHandler) ListAdjustments(c *gin.Context) {
	invoiceID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	adjustments, err := h.billing.ListAdjustments(c.Request.Context(), invoiceID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, adjustments)
}

// RemoveAdjustment deletes an adjustment and recomputes the owning invoice
func (h *BillingHandler) RemoveAdjustment(c *gin.Context) {
	adjustmentID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	inv, err := h.billing.RemoveAdjustment(c.Request.Context(), adjustmentID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, inv)
}

// GenerateBatch creates invoices for a scope of students and returns counts
func (h *BillingHandler) GenerateBatch(c *gin.Context) {
	var req GenerateBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	serviceReq := billingapp.BatchGenerateRequest{
		Level:   req.Level,
		Term:    req.Term,
		DueDate: req.DueDate,
	}
	if req.ClassID != nil {
		id := uuid.MustParse(*req.ClassID)
		serviceReq.ClassID = &id
	}
	if req.YearID != nil {
		id := uuid.MustParse(*req.YearID)
		serviceReq.AcademicYearID = &id
	}

	result, err := h.batch.Generate(c.Request.Context(), serviceReq)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// SyncAll kicks off the reconciliation sweep off the request path
func (h *BillingHandler) SyncAll(c *gin.Context) {
	go func() {
		if _, err := h.reconciler.SyncAll(h.backgroundCtx); err != nil {
			h.logger.Error("reconciliation sweep failed", zap.Error(err))
		}
	}()
	h.Accepted(c, gin.H{"status": "reconciliation started"})
}

// SendReminders dispatches payment reminders off the request path
func (h *BillingHandler) SendReminders(c *gin.Context) {
	var req SendRemindersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	invoiceIDs := make([]uuid.UUID, 0, len(req.InvoiceIDs))
	for _, raw := range req.InvoiceIDs {
		invoiceIDs = append(invoiceIDs, uuid.MustParse(raw))
	}

	go func() {
		result, err := h.reminders.SendReminders(h.backgroundCtx, invoiceIDs, req.Template)
		if err != nil {
			h.logger.Error("reminder batch failed", zap.Error(err))
			return
		}
		h.logger.Info("reminder batch finished",
			zap.Int("sent", result.Sent),
			zap.Int("skipped", result.Skipped),
			zap.Int("failed", result.Failed),
		)
	}()
	h.Accepted(c, gin.H{"status": "reminders queued", "count": len(invoiceIDs)})
}

// Dashboard returns the cached finance aggregates
func (h *BillingHandler) Dashboard(c *gin.Context) {
	allTime := c.Query("all_time") == "true"
	stats, err := h.billing.Dashboard(c.Request.Context(), allTime)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stats)
}

// RegisterRoutes registers the billing routes
func (h *BillingHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/students/:id/invoice", h.GetStudentInvoice)

	invoices := rg.Group("/invoices")
	{
		invoices.GET("", h.ListInvoices)
		invoices.GET("/:id", h.GetInvoice)
		invoices.POST("/:id/payments", h.RecordPayment)
		invoices.POST("/:id/adjustments", h.AddAdjustment)
		invoices.GET("/:id/adjustments", h.ListAdjustments)
		invoices.POST("/generate-batch", h.GenerateBatch)
		invoices.POST("/sync-all", h.SyncAll)
		invoices.POST("/send-reminders", h.SendReminders)
	}

	rg.DELETE("/payments/:id", h.RemovePayment)
	rg.DELETE("/adjustments/:id", h.RemoveAdjustment)
	rg.GET("/finance/dashboard", h.Dashboard)
}
