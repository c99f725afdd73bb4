package handler

import (
	hostelapp "github.com/shulesync/backend/internal/application/hostel"
	"github.com/shulesync/backend/internal/domain/shared/valueobject"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// HostelHandler handles hostel and bed allocation API endpoints
type HostelHandler struct {
	BaseHandler
	hostels     *hostelapp.HostelService
	allocations *hostelapp.AllocationService
}

// NewHostelHandler creates a new HostelHandler
func NewHostelHandler(hostels *hostelapp.HostelService, allocations *hostelapp.AllocationService) *HostelHandler {
	return &HostelHandler{hostels: hostels, allocations: allocations}
}

// CreateHostelRequest registers a boarding house
type CreateHostelRequest struct {
	Name   string `json:"name" binding:"required"`
	Gender string `json:"gender" binding:"omitempty,oneof=MALE FEMALE MIXED"`
	Warden string `json:"warden"`
}

// CreateRoomRequest adds a room to a hostel
type CreateRoomRequest struct {
	Number   string `json:"number" binding:"required"`
	Capacity int    `json:"capacity" binding:"required,gt=0"`
}

// CreateBedRequest adds a bed to a room
type CreateBedRequest struct {
	Number string `json:"number" binding:"required"`
}

// AllocateBedRequest claims a bed for a student
type AllocateBedRequest struct {
	StudentID string `json:"student_id" binding:"required,uuid"`
	BedID     string `json:"bed_id" binding:"required,uuid"`
}

// TransferBedRequest moves an allocation to another bed
type TransferBedRequest struct {
	BedID string `json:"bed_id" binding:"required,uuid"`
}

// ReleaseBedRequest optionally voids instead of completing
type ReleaseBedRequest struct {
	Cancelled bool `json:"cancelled"`
}

// RecordMaintenanceRequest logs hostel upkeep
type RecordMaintenanceRequest struct {
	Description string  `json:"description" binding:"required"`
	Cost        float64 `json:"cost" binding:"required,gte=0"`
	ReportedBy  string  `json:"reported_by"`
}

// RecordAssetRequest registers hostel property
type RecordAssetRequest struct {
	Name     string  `json:"name" binding:"required"`
	Value    float64 `json:"value" binding:"required,gte=0"`
	Quantity int     `json:"quantity" binding:"required,gt=0"`
}

// CreateHostel registers a boarding house
func (h *HostelHandler) CreateHostel(c *gin.Context) {
	var req CreateHostelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	created, err := h.hostels.CreateHostel(c.Request.Context(), req.Name, req.Gender, req.Warden)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, created)
}

// ListHostels returns all hostels
func (h *HostelHandler) ListHostels(c *gin.Context) {
	hostels, err := h.hostels.ListHostels(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, hostels)
}

// CreateRoom adds a room to a hostel
func (h *HostelHandler) CreateRoom(c *gin.Context) {
	hostelID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	room, err := h.hostels.CreateRoom(c.Request.Context(), hostelID, req.Number, req.Capacity)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, room)
}

// ListRooms returns the rooms of a hostel
func (h *HostelHandler) ListRooms(c *gin.Context) {
	hostelID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	rooms, err := h.hostels.ListRooms(c.Request.Context(), hostelID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rooms)
}

// CreateBed adds a bed to a room
func (h *HostelHandler) CreateBed(c *gin.Context) {
	roomID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req CreateBedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	bed, err := h.hostels.CreateBed(c.Request.Context(), roomID, req.Number)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, bed)
}

// ListBeds returns the beds of a room
func (h *HostelHandler) ListBeds(c *gin.Context) {
	roomID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	beds, err := h.hostels.ListBeds(c.Request.Context(), roomID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, beds)
}

// Allocate claims a bed for a boarding student
func (h *HostelHandler) Allocate(c *gin.Context) {
	var req AllocateBedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	allocation, err := h.allocations.Allocate(c.Request.Context(),
		uuid.MustParse(req.StudentID), uuid.MustParse(req.BedID))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, allocation)
}

// Transfer moves an allocation to a different bed
func (h *HostelHandler) Transfer(c *gin.Context) {
	allocationID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req TransferBedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	allocation, err := h.allocations.Transfer(c.Request.Context(), allocationID, uuid.MustParse(req.BedID))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, allocation)
}

// Release ends an allocation and frees its bed
func (h *HostelHandler) Release(c *gin.Context) {
	allocationID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	// body is optional; default is a normal completion
	var req ReleaseBedRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.BadRequest(c, err.Error())
			return
		}
	}
	allocation, err := h.allocations.Release(c.Request.Context(), allocationID, req.Cancelled)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, allocation)
}

// ListAllocations returns all active bed allocations
func (h *HostelHandler) ListAllocations(c *gin.Context) {
	allocations, err := h.allocations.ListActive(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, allocations)
}

// RecordMaintenance logs hostel upkeep
func (h *HostelHandler) RecordMaintenance(c *gin.Context) {
	hostelID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req RecordMaintenanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	m, err := h.hostels.RecordMaintenance(c.Request.Context(), hostelID,
		req.Description, valueobject.NewMoneyKES(decimal.NewFromFloat(req.Cost)), req.ReportedBy)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, m)
}

// RecordAsset registers hostel property
func (h *HostelHandler) RecordAsset(c *gin.Context) {
	hostelID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req RecordAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	a, err := h.hostels.RecordAsset(c.Request.Context(), hostelID,
		req.Name, valueobject.NewMoneyKES(decimal.NewFromFloat(req.Value)), req.Quantity)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, a)
}

// RegisterRoutes registers the hostel routes
func (h *HostelHandler) RegisterRoutes(rg *gin.RouterGroup) {
	hostels := rg.Group("/hostel")
	{
		hostels.GET("/hostels", h.ListHostels)
		hostels.POST("/hostels", h.CreateHostel)
		hostels.GET("/hostels/:id/rooms", h.ListRooms)
		hostels.POST("/hostels/:id/rooms", h.CreateRoom)
		hostels.POST("/hostels/:id/maintenance", h.RecordMaintenance)
		hostels.POST("/hostels/:id/assets", h.RecordAsset)
		hostels.GET("/rooms/:id/beds", h.ListBeds)
		hostels.POST("/rooms/:id/beds", h.CreateBed)

		hostels.GET("/allocations", h.ListAllocations)
		hostels.POST("/allocations", h.Allocate)
		hostels.POST("/allocations/:id/transfer", h.Transfer)
		hostels.POST("/allocations/:id/release", h.Release)
	}
}
