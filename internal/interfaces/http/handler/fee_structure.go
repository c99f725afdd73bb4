package handler

import (
	billingapp "github.com/shulesync/backend/internal/application/billing"
	"github.com/shulesync/backend/internal/domain/billing"
	"github.com/shulesync/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// FeeStructureHandler handles fee catalog API endpoints
type FeeStructureHandler struct {
	BaseHandler
	catalog *billingapp.FeeCatalogService
}

// NewFeeStructureHandler creates a new FeeStructureHandler
func NewFeeStructureHandler(catalog *billingapp.FeeCatalogService) *FeeStructureHandler {
	return &FeeStructureHandler{catalog: catalog}
}

// CreateFeeStructureRequest defines one catalog fee
type CreateFeeStructureRequest struct {
	Name        string  `json:"name" binding:"required"`
	Amount      float64 `json:"amount" binding:"required,gt=0"`
	YearID      string  `json:"year_id" binding:"required,uuid"`
	Term        int     `json:"term" binding:"required,min=1,max=3"`
	ClassID     *string `json:"class_id" binding:"omitempty,uuid"`
	Kind        string  `json:"kind" binding:"omitempty,fee_kind"`
	Description string  `json:"description"`
}

// UpdateFeeStructureRequest patches a catalog fee; nil fields stay unchanged
type UpdateFeeStructureRequest struct {
	Name        *string  `json:"name"`
	Amount      *float64 `json:"amount" binding:"omitempty,gt=0"`
	ClassID     *string  `json:"class_id" binding:"omitempty,uuid"`
	Kind        *string  `json:"kind" binding:"omitempty,fee_kind"`
	Description *string  `json:"description"`
	IsActive    *bool    `json:"is_active"`
}

// ListFeeStructuresQuery narrows catalog listings
type ListFeeStructuresQuery struct {
	dto.ListRequest
	YearID     *string `form:"year_id" binding:"omitempty,uuid"`
	Term       *int    `form:"term" binding:"omitempty,min=1,max=3"`
	ClassID    *string `form:"class_id" binding:"omitempty,uuid"`
	Kind       *string `form:"kind" binding:"omitempty,fee_kind"`
	ActiveOnly bool    `form:"active_only"`
}

// Create adds a fee definition
func (h *FeeStructureHandler) Create(c *gin.Context) {
	var req CreateFeeStructureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	serviceReq := billingapp.CreateFeeRequest{
		Name:           req.Name,
		Amount:         decimal.NewFromFloat(req.Amount),
		AcademicYearID: uuid.MustParse(req.YearID),
		Term:           req.Term,
		Kind:           billing.FeeKind(req.Kind),
		Description:    req.Description,
	}
	if req.ClassID != nil {
		id := uuid.MustParse(*req.ClassID)
		serviceReq.ClassID = &id
	}

	entry, err := h.catalog.Create(c.Request.Context(), serviceReq)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, entry)
}

// Update edits a fee definition
func (h *FeeStructureHandler) Update(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req UpdateFeeStructureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	serviceReq := billingapp.UpdateFeeRequest{
		Name:        req.Name,
		Description: req.Description,
		IsActive:    req.IsActive,
	}
	if req.Amount != nil {
		amount := decimal.NewFromFloat(*req.Amount)
		serviceReq.Amount = &amount
	}
	if req.ClassID != nil {
		classID := uuid.MustParse(*req.ClassID)
		serviceReq.ClassID = &classID
	}
	if req.Kind != nil {
		kind := billing.FeeKind(*req.Kind)
		serviceReq.Kind = &kind
	}

	entry, err := h.catalog.Update(c.Request.Context(), id, serviceReq)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, entry)
}

// Get returns one fee definition
func (h *FeeStructureHandler) Get(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	entry, err := h.catalog.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, entry)
}

// List returns fee definitions matching the filter
func (h *FeeStructureHandler) List(c *gin.Context) {
	var query ListFeeStructuresQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	query.Normalize()

	filter := billing.FeeCatalogFilter{
		Term:       query.Term,
		ActiveOnly: query.ActiveOnly,
		Search:     query.Search,
		Page:       query.Page,
		PageSize:   query.PageSize,
	}
	if query.YearID != nil {
		id := uuid.MustParse(*query.YearID)
		filter.AcademicYearID = &id
	}
	if query.ClassID != nil {
		id := uuid.MustParse(*query.ClassID)
		filter.ClassID = &id
	}
	if query.Kind != nil {
		kind := billing.FeeKind(*query.Kind)
		filter.Kind = &kind
	}

	entries, total, err := h.catalog.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, entries, total, filter.Page, filter.PageSize)
}

// Delete removes a fee definition
func (h *FeeStructureHandler) Delete(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.catalog.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// RegisterRoutes registers the fee catalog routes
func (h *FeeStructureHandler) RegisterRoutes(rg *gin.RouterGroup) {
	fees := rg.Group("/fee-structures")
	{
		fees.GET("", h.List)
		fees.GET("/:id", h.Get)
		fees.POST("", h.Create)
		fees.PUT("/:id", h.Update)
		fees.DELETE("/:id", h.Delete)
	}
}
