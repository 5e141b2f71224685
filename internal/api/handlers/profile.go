package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stationdesk/stationdesk/internal/models"
	"gorm.io/gorm"
)

type ProfileHandler struct {
	db *gorm.DB
}

func NewProfileHandler(db *gorm.DB) *ProfileHandler {
	return &ProfileHandler{db: db}
}

// CreateProfileRequest is the body for creating a station profile
type CreateProfileRequest struct {
	StationID      uuid.UUID `json:"station_id" binding:"required"`
	BackupSchedule string    `json:"backup_schedule"`
	RetentionDays  int       `json:"retention_days"`
	Notify         *bool     `json:"notify"`
}

// UpdateProfileRequest is the body for updating a station profile
type UpdateProfileRequest struct {
	BackupSchedule *string `json:"backup_schedule"`
	RetentionDays  *int    `json:"retention_days"`
	Notify         *bool   `json:"notify"`
}

// GetProfile godoc
// @Summary Get the backup profile of a station
// @Tags profiles
// @Security BearerAuth
// @Param id path string true "Station UUID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} ErrorResponse
// @Router /stations/{id}/profile [get]
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	stationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid station ID"})
		return
	}

	var profile models.StationProfile
	if err := h.db.First(&profile, "station_id = ?", stationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Profile not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to fetch profile"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"profile": profile}})
}

// CreateProfile godoc
// @Summary Create the backup profile for a station
// @Tags profiles
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param profile body CreateProfileRequest true "Profile settings"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} ErrorResponse
// @Router /profiles [post]
func (h *ProfileHandler) CreateProfile(c *gin.Context) {
	var req CreateProfileRequest
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

	profile := models.StationProfile{
		StationID: req.StationID,
	}
	if req.BackupSchedule != "" {
		profile.BackupSchedule = req.BackupSchedule
	}
	if req.RetentionDays > 0 {
		profile.RetentionDays = req.RetentionDays
	}
	if req.Notify != nil {
		profile.Notify = *req.Notify
	}

	if err := h.db.Create(&profile).Error; err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to create profile"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": gin.H{"profile": profile}})
}

// UpdateProfile godoc
// @Summary Update a station profile
// @Tags profiles
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Profile UUID"
// @Param profile body UpdateProfileRequest true "Fields to update"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} ErrorResponse
// @Router /profiles/{id} [put]
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid profile ID"})
		return
	}

	var profile models.StationProfile
	if err := h.db.First(&profile, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Profile not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to fetch profile"})
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	if req.BackupSchedule != nil {
		profile.BackupSchedule = *req.BackupSchedule
	}
	if req.RetentionDays != nil {
		profile.RetentionDays = *req.RetentionDays
	}
	if req.Notify != nil {
		profile.Notify = *req.Notify
	}

	if err := h.db.Save(&profile).Error; err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to update profile"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"profile": profile}})
}

// DeleteProfile godoc
// @Summary Delete a station profile
// @Tags profiles
// @Security BearerAuth
// @Param id path string true "Profile UUID"
// @Success 200 {object} MessageResponse
// @Failure 404 {object} ErrorResponse
// @Router /profiles/{id} [delete]
func (h *ProfileHandler) DeleteProfile(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid profile ID"})
		return
	}

	result := h.db.Delete(&models.StationProfile{}, "id = ?", id)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to delete profile"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Profile not found"})
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "Profile deleted"})
}
