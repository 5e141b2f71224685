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

type BackupHandler struct {
	db *gorm.DB
}

func NewBackupHandler(db *gorm.DB) *BackupHandler {
	return &BackupHandler{db: db}
}

// CreateBackupRequest is the body for registering a backup run
type CreateBackupRequest struct {
	StationID uuid.UUID `json:"station_id" binding:"required"`
}

// UpdateBackupStatusRequest is the body for moving a backup through its lifecycle
type UpdateBackupStatusRequest struct {
	Status    models.BackupStatus `json:"status" binding:"required"`
	SizeBytes int64               `json:"size_bytes"`
	Error     string              `json:"error"`
}

// ListBackups godoc
// @Summary List backup runs
// @Tags backups
// @Security BearerAuth
// @Produce json
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Param stationId query string false "Filter by station"
// @Param status query string false "Filter by status"
// @Success 200 {object} map[string]interface{}
// @Failure 500 {object} ErrorResponse
// @Router /backups [get]
func (h *BackupHandler) ListBackups(c *gin.Context) {
	page, limit := pageParams(c)

	q := h.db.Model(&models.Backup{})
	if stationID := c.Query("stationId"); stationID != "" {
		id, err := uuid.Parse(stationID)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid station ID"})
			return
		}
		q = q.Where("station_id = ?", id)
	}
	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to count backups"})
		return
	}

	var backups []models.Backup
	if err := q.Order("created_at DESC").Offset((page - 1) * limit).Limit(limit).Find(&backups).Error; err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to fetch backups"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items":      backups,
		"pagination": paginate(page, limit, total),
	})
}

// GetBackup godoc
// @Summary Get a backup run by ID
// @Tags backups
// @Security BearerAuth
// @Param id path string true "Backup UUID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} ErrorResponse
// @Router /backups/{id} [get]
func (h *BackupHandler) GetBackup(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid backup ID"})
		return
	}

	var backup models.Backup
	if err := h.db.First(&backup, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Backup not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to fetch backup"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"backup": backup}})
}

// CreateBackup godoc
// @Summary Register a backup run for a station
// @Tags backups
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param backup body CreateBackupRequest true "Backup details"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} ErrorResponse
// @Router /backups [post]
func (h *BackupHandler) CreateBackup(c *gin.Context) {
	var req CreateBackupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	var station models.Station
	if err := h.db.First(&station, "id = ?", req.StationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Station not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to fetch station"})
		return
	}

	backup := models.Backup{
		StationID: req.StationID,
		Status:    models.BackupStatusPending,
	}

	if err := h.db.Create(&backup).Error; err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to create backup"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": gin.H{"backup": backup}})
}

// UpdateBackupStatus godoc
// @Summary Update the status of a backup run
// @Tags backups
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Backup UUID"
// @Param status body UpdateBackupStatusRequest true "New status"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /backups/{id}/status [put]
func (h *BackupHandler) UpdateBackupStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid backup ID"})
		return
	}

	var req UpdateBackupStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	if !req.Status.Valid() {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid backup status"})
		return
	}

	var backup models.Backup
	if err := h.db.First(&backup, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Backup not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to fetch backup"})
		return
	}

	now := time.Now().UTC()
	backup.Status = req.Status
	switch req.Status {
	case models.BackupStatusRunning:
		backup.StartedAt = &now
	case models.BackupStatusCompleted:
		backup.CompletedAt = &now
		backup.SizeBytes = req.SizeBytes
	case models.BackupStatusFailed:
		backup.CompletedAt = &now
		backup.Error = req.Error
	}

	if err := h.db.Save(&backup).Error; err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to update backup"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"backup": backup}})
}

// DeleteBackup godoc
// @Summary Delete a backup run record
// @Tags backups
// @Security BearerAuth
// @Param id path string true "Backup UUID"
// @Success 200 {object} MessageResponse
// @Failure 404 {object} ErrorResponse
// @Router /backups/{id} [delete]
func (h *BackupHandler) DeleteBackup(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid backup ID"})
		return
	}

	result := h.db.Delete(&models.Backup{}, "id = ?", id)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to delete backup"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Backup not found"})
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "Backup deleted"})
}
