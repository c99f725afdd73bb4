package handler

import (
	"time"

	transportapp "github.com/shulesync/backend/internal/application/transport"
	"github.com/shulesync/backend/internal/domain/shared/valueobject"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransportHandler handles fleet and route assignment API endpoints
type TransportHandler struct {
	BaseHandler
	transport *transportapp.TransportService
}

// NewTransportHandler creates a new TransportHandler
func NewTransportHandler(transport *transportapp.TransportService) *TransportHandler {
	return &TransportHandler{transport: transport}
}

// CreateVehicleRequest registers a vehicle
type CreateVehicleRequest struct {
	Registration string `json:"registration" binding:"required"`
	Capacity     int    `json:"capacity" binding:"required,gt=0"`
	Driver       string `json:"driver"`
}

// CreateRouteRequest registers a route
type CreateRouteRequest struct {
	Name      string  `json:"name" binding:"required"`
	VehicleID *string `json:"vehicle_id" binding:"omitempty,uuid"`
	BaseCost  float64 `json:"base_cost" binding:"required,gte=0"`
}

// CreatePickupPointRequest adds a pickup point to a route
type CreatePickupPointRequest struct {
	Name string   `json:"name" binding:"required"`
	Cost *float64 `json:"cost" binding:"omitempty,gte=0"`
}

// AssignTransportRequest puts a student on a route
type AssignTransportRequest struct {
	StudentID     string  `json:"student_id" binding:"required,uuid"`
	RouteID       string  `json:"route_id" binding:"required,uuid"`
	PickupPointID *string `json:"pickup_point_id" binding:"omitempty,uuid"`
}

// RecordFuelRequest logs a fuel purchase
type RecordFuelRequest struct {
	VehicleID string     `json:"vehicle_id" binding:"required,uuid"`
	Liters    float64    `json:"liters" binding:"required,gt=0"`
	Cost      float64    `json:"cost" binding:"required,gt=0"`
	Date      *time.Time `json:"date"`
}

// RecordVehicleMaintenanceRequest opens a maintenance job
type RecordVehicleMaintenanceRequest struct {
	VehicleID   string     `json:"vehicle_id" binding:"required,uuid"`
	Description string     `json:"description" binding:"required"`
	Cost        float64    `json:"cost" binding:"required,gte=0"`
	Date        *time.Time `json:"date"`
}

// CreateVehicle registers a vehicle
func (h *TransportHandler) CreateVehicle(c *gin.Context) {
	var req CreateVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	v, err := h.transport.CreateVehicle(c.Request.Context(), req.Registration, req.Capacity, req.Driver)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, v)
}

// ListVehicles returns all vehicles
func (h *TransportHandler) ListVehicles(c *gin.Context) {
	vehicles, err := h.transport.ListVehicles(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, vehicles)
}

// CreateRoute registers a route
func (h *TransportHandler) CreateRoute(c *gin.Context) {
	var req CreateRouteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	var vehicleID *uuid.UUID
	if req.VehicleID != nil {
		id := uuid.MustParse(*req.VehicleID)
		vehicleID = &id
	}
	r, err := h.transport.CreateRoute(c.Request.Context(), req.Name, vehicleID,
		valueobject.NewMoneyKES(decimal.NewFromFloat(req.BaseCost)))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, r)
}

// ListRoutes returns all routes
func (h *TransportHandler) ListRoutes(c *gin.Context) {
	routes, err := h.transport.ListRoutes(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, routes)
}

// CreatePickupPoint adds a pickup point to a route
func (h *TransportHandler) CreatePickupPoint(c *gin.Context) {
	routeID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req CreatePickupPointRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	var cost *valueobject.Money
	if req.Cost != nil {
		m := valueobject.NewMoneyKES(decimal.NewFromFloat(*req.Cost))
		cost = &m
	}
	p, err := h.transport.CreatePickupPoint(c.Request.Context(), routeID, req.Name, cost)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, p)
}

// Assign puts a student on a route
func (h *TransportHandler) Assign(c *gin.Context) {
	var req AssignTransportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	var pickupPointID *uuid.UUID
	if req.PickupPointID != nil {
		id := uuid.MustParse(*req.PickupPointID)
		pickupPointID = &id
	}
	allocation, err := h.transport.Assign(c.Request.Context(),
		uuid.MustParse(req.StudentID), uuid.MustParse(req.RouteID), pickupPointID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, allocation)
}

// Withdraw takes a student off transport
func (h *TransportHandler) Withdraw(c *gin.Context) {
	allocationID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	allocation, err := h.transport.Withdraw(c.Request.Context(), allocationID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, allocation)
}

// ListAllocations returns all active route assignments
func (h *TransportHandler) ListAllocations(c *gin.Context) {
	allocations, err := h.transport.ListActiveAllocations(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, allocations)
}

// RecordFuel logs a fuel purchase
func (h *TransportHandler) RecordFuel(c *gin.Context) {
	var req RecordFuelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	var date time.Time
	if req.Date != nil {
		date = *req.Date
	}
	record, err := h.transport.RecordFuel(c.Request.Context(), uuid.MustParse(req.VehicleID),
		req.Liters, valueobject.NewMoneyKES(decimal.NewFromFloat(req.Cost)), date)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, record)
}

// DeleteFuel removes a fuel record
func (h *TransportHandler) DeleteFuel(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.transport.DeleteFuel(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// RecordMaintenance opens a vehicle maintenance job
func (h *TransportHandler) RecordMaintenance(c *gin.Context) {
	var req RecordVehicleMaintenanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	var date time.Time
	if req.Date != nil {
		date = *req.Date
	}
	m, err := h.transport.RecordMaintenance(c.Request.Context(), uuid.MustParse(req.VehicleID),
		req.Description, valueobject.NewMoneyKES(decimal.NewFromFloat(req.Cost)), date)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, m)
}

// CompleteMaintenance closes a maintenance job
func (h *TransportHandler) CompleteMaintenance(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	m, err := h.transport.CompleteMaintenance(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, m)
}

// RegisterRoutes registers the transport routes
func (h *TransportHandler) RegisterRoutes(rg *gin.RouterGroup) {
	transport := rg.Group("/transport")
	{
		transport.GET("/vehicles", h.ListVehicles)
		transport.POST("/vehicles", h.CreateVehicle)
		transport.GET("/routes", h.ListRoutes)
		transport.POST("/routes", h.CreateRoute)
		transport.POST("/routes/:id/pickup-points", h.CreatePickupPoint)

		transport.GET("/allocations", h.ListAllocations)
		transport.POST("/allocations", h.Assign)
		transport.DELETE("/allocations/:id", h.Withdraw)

		transport.POST("/fuel", h.RecordFuel)
		transport.DELETE("/fuel/:id", h.DeleteFuel)
		transport.POST("/maintenance", h.RecordMaintenance)
		transport.POST("/maintenance/:id/complete", h.CompleteMaintenance)
	}
}
