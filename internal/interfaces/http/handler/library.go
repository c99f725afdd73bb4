package handler

import (
	libraryapp "github.com/shulesync/backend/internal/application/library"
	"github.com/shulesync/backend/internal/domain/shared/valueobject"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LibraryHandler handles library fine API endpoints
type LibraryHandler struct {
	BaseHandler
	fines *libraryapp.FineService
}

// NewLibraryHandler creates a new LibraryHandler
func NewLibraryHandler(fines *libraryapp.FineService) *LibraryHandler {
	return &LibraryHandler{fines: fines}
}

// IssueFineRequest charges a student for a lost or overdue book
type IssueFineRequest struct {
	StudentID string  `json:"student_id" binding:"required,uuid"`
	BookTitle string  `json:"book_title"`
	Reason    string  `json:"reason" binding:"required"`
	Amount    float64 `json:"amount" binding:"required,gt=0"`
}

// IssueFine charges a student
func (h *LibraryHandler) IssueFine(c *gin.Context) {
	var req IssueFineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	fine, err := h.fines.Issue(c.Request.Context(), uuid.MustParse(req.StudentID),
		req.BookTitle, req.Reason, valueobject.NewMoneyKES(decimal.NewFromFloat(req.Amount)))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, fine)
}

// WaiveFine cancels a pending fine
func (h *LibraryHandler) WaiveFine(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	fine, err := h.fines.Waive(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, fine)
}

// GetFine returns one fine
func (h *LibraryHandler) GetFine(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	fine, err := h.fines.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, fine)
}

// ListStudentFines returns a student's fines
func (h *LibraryHandler) ListStudentFines(c *gin.Context) {
	studentID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	fines, err := h.fines.ListByStudent(c.Request.Context(), studentID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, fines)
}

// RegisterRoutes registers the library routes
func (h *LibraryHandler) RegisterRoutes(rg *gin.RouterGroup) {
	library := rg.Group("/library")
	{
		library.POST("/fines", h.IssueFine)
		library.GET("/fines/:id", h.GetFine)
		library.POST("/fines/:id/waive", h.WaiveFine)
		library.GET("/students/:id/fines", h.ListStudentFines)
	}
}
