package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stationdesk/stationdesk/internal/models"
	"gorm.io/gorm"
)

type StationHandler struct {
	db *gorm.DB
}

func NewStationHandler(db *gorm.DB) *StationHandler {
	return &StationHandler{db: db}
}

// CreateStationRequest is the body for creating a station
type CreateStationRequest struct {
	Name       string `json:"name" binding:"required"`
	DeviceCode string `json:"device_code" binding:"required"`
	Location   string `json:"location"`
	Status     string `json:"status"`
}

// UpdateStationRequest is the body for updating a station
type UpdateStationRequest struct {
	Name     *string `json:"name"`
	Location *string `json:"location"`
	Status   *string `json:"status"`
}

// ListStations godoc
// @Summary List stations
// @Tags stations
// @Security BearerAuth
// @Produce json
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Param status query string false "Filter by status"
// @Param search query string false "Match name or device code"
// @Success 200 {object} map[string]interface{}
// @Failure 500 {object} ErrorResponse
// @Router /stations [get]
func (h *StationHandler) ListStations(c *gin.Context) {
	page, limit := pageParams(c)

	q := h.db.Model(&models.Station{})
	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}
	if search := c.Query("search"); search != "" {
		like := "%" + search + "%"
		q = q.Where("(name LIKE ? OR device_code LIKE ?)", like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to count stations"})
		return
	}

	var stations []models.Station
	err := q.Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&stations).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to fetch stations"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items":      stations,
		"pagination": paginate(page, limit, total),
	})
}

// GetStation godoc
// @Summary Get a station by ID
// @Tags stations
// @Security BearerAuth
// @Produce json
// @Param id path string true "Station UUID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} ErrorResponse
// @Router /stations/{id} [get]
func (h *StationHandler) GetStation(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid station ID"})
		return
	}

	var station models.Station
	if err := h.db.First(&station, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Station not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to fetch station"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"station": station}})
}

// CreateStation godoc
// @Summary Register a new station
// @Tags stations
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param station body CreateStationRequest true "Station details"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} ErrorResponse
// @Router /stations [post]
func (h *StationHandler) CreateStation(c *gin.Context) {
	var req CreateStationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	var existing models.Station
	if err := h.db.First(&existing, "device_code = ?", req.DeviceCode).Error; err == nil {
		c.JSON(http.StatusConflict, ErrorResponse{Error: "Device code already registered"})
		return
	}

	status := req.Status
	if status == "" {
		status = models.StationStatusActive
	}

	station := models.Station{
		Name:       req.Name,
		DeviceCode: req.DeviceCode,
		Location:   req.Location,
		Status:     status,
	}

	if err := h.db.Create(&station).Error; err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to create station"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": gin.H{"station": station}})
}

// UpdateStation godoc
// @Summary Update a station
// @Tags stations
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Station UUID"
// @Param station body UpdateStationRequest true "Fields to update"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} ErrorResponse
// @Router /stations/{id} [put]
func (h *StationHandler) UpdateStation(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid station ID"})
		return
	}

	var req UpdateStationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	var station models.Station
	if err := h.db.First(&station, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Station not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to fetch station"})
		return
	}

	if req.Name != nil {
		station.Name = *req.Name
	}
	if req.Location != nil {
		station.Location = *req.Location
	}
	if req.Status != nil {
		station.Status = *req.Status
	}

	if err := h.db.Save(&station).Error; err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to update station"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"station": station}})
}

// DeleteStation godoc
// @Summary Delete a station
// @Tags stations
// @Security BearerAuth
// @Param id path string true "Station UUID"
// @Success 200 {object} MessageResponse
// @Failure 404 {object} ErrorResponse
// @Router /stations/{id} [delete]
func (h *StationHandler) DeleteStation(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid station ID"})
		return
	}

	result := h.db.Delete(&models.Station{}, "id = ?", id)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to delete station"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Station not found"})
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "Station deleted"})
}

// Heartbeat godoc
// @Summary Record a station heartbeat
// @Tags stations
// @Security BearerAuth
// @Param id path string true "Station UUID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} ErrorResponse
// @Router /stations/{id}/heartbeat [post]
func (h *StationHandler) Heartbeat(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid station ID"})
		return
	}

	var station models.Station
	if err := h.db.First(&station, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Station not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to fetch station"})
		return
	}

	now := time.Now().UTC()
	station.LastSeenAt = &now
	if station.Status == models.StationStatusOffline {
		station.Status = models.StationStatusActive
	}

	if err := h.db.Save(&station).Error; err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to record heartbeat"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"station": station}})
}
