package handler

import (
	studentapp "github.com/shulesync/backend/internal/application/student"
	"github.com/shulesync/backend/internal/domain/student"
	"github.com/shulesync/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// StudentHandler handles student API endpoints
type StudentHandler struct {
	BaseHandler
	students *studentapp.StudentService
}

// NewStudentHandler creates a new StudentHandler
func NewStudentHandler(students *studentapp.StudentService) *StudentHandler {
	return &StudentHandler{students: students}
}

// CreateStudentRequest admits a student
type CreateStudentRequest struct {
	AdmissionNumber string  `json:"admission_number" binding:"required"`
	FirstName       string  `json:"first_name" binding:"required"`
	LastName        string  `json:"last_name" binding:"required"`
	Gender          string  `json:"gender" binding:"omitempty,oneof=MALE FEMALE"`
	Category        string  `json:"category" binding:"required,oneof=DAY BOARDING"`
	ClassID         *string `json:"class_id" binding:"omitempty,uuid"`
	GuardianName    string  `json:"guardian_name"`
	GuardianPhone   string  `json:"guardian_phone"`
}

// UpdateStudentRequest patches a student; omitted fields stay unchanged
type UpdateStudentRequest struct {
	FirstName     *string `json:"first_name"`
	LastName      *string `json:"last_name"`
	Category      *string `json:"category" binding:"omitempty,oneof=DAY BOARDING"`
	Status        *string `json:"status"`
	ClassID       *string `json:"class_id" binding:"omitempty,uuid"`
	GuardianName  *string `json:"guardian_name"`
	GuardianPhone *string `json:"guardian_phone"`
}

// ListStudentsQuery narrows student listings
type ListStudentsQuery struct {
	dto.ListRequest
	ClassID  *string `form:"class_id" binding:"omitempty,uuid"`
	Level    string  `form:"level"`
	Category *string `form:"category" binding:"omitempty,oneof=DAY BOARDING"`
	Status   *string `form:"status"`
}

// Create admits a student
func (h *StudentHandler) Create(c *gin.Context) {
	var req CreateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	input := studentapp.CreateStudentInput{
		AdmissionNumber: req.AdmissionNumber,
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Gender:          req.Gender,
		Category:        student.Category(req.Category),
		GuardianName:    req.GuardianName,
		GuardianPhone:   req.GuardianPhone,
	}
	if req.ClassID != nil {
		id := uuid.MustParse(*req.ClassID)
		input.ClassID = &id
	}

	st, err := h.students.Create(c.Request.Context(), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, st)
}

// Update patches a student; category and status transitions ripple into
// billing and hostel allocations through events
func (h *StudentHandler) Update(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req UpdateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	input := studentapp.UpdateStudentInput{
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		GuardianName:  req.GuardianName,
		GuardianPhone: req.GuardianPhone,
	}
	if req.Category != nil {
		category := student.Category(*req.Category)
		input.Category = &category
	}
	if req.Status != nil {
		status := student.Status(*req.Status)
		input.Status = &status
	}
	if req.ClassID != nil {
		classID := uuid.MustParse(*req.ClassID)
		input.ClassID = &classID
	}

	st, err := h.students.Update(c.Request.Context(), id, input)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, st)
}

// Get returns one student
func (h *StudentHandler) Get(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	st, err := h.students.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, st)
}

// List returns students matching the filter
func (h *StudentHandler) List(c *gin.Context) {
	var query ListStudentsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	query.Normalize()

	filter := student.StudentFilter{
		Level:    query.Level,
		Search:   query.Search,
		Page:     query.Page,
		PageSize: query.PageSize,
	}
	if query.ClassID != nil {
		id := uuid.MustParse(*query.ClassID)
		filter.ClassID = &id
	}
	if query.Category != nil {
		category := student.Category(*query.Category)
		filter.Category = &category
	}
	if query.Status != nil {
		status := student.Status(*query.Status)
		filter.Status = &status
	}

	students, total, err := h.students.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, students, total, filter.Page, filter.PageSize)
}

// RegisterRoutes registers the student routes
func (h *StudentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	students := rg.Group("/students")
	{
		students.GET("", h.List)
		students.GET("/:id", h.Get)
		students.POST("", h.Create)
		students.PATCH("/:id", h.Update)
	}
}
