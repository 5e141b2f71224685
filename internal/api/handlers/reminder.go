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

type ReminderHandler struct {
	db *gorm.DB
}

func NewReminderHandler(db *gorm.DB) *ReminderHandler {
	return &ReminderHandler{db: db}
}

type CreateReminderRequest struct {
	StationID  uuid.UUID  `json:"station_id" binding:"required"`
	AssigneeID *uuid.UUID `json:"assignee_id"`
	Message    string     `json:"message" binding:"required"`
	DueAt      time.Time  `json:"due_at" binding:"required"`
}

type UpdateReminderRequest struct {
	AssigneeID *uuid.UUID `json:"assignee_id"`
	Message    *string    `json:"message"`
	DueAt      *time.Time `json:"due_at"`
	Sent       *bool      `json:"sent"`
}

// ListReminders godoc
// @Summary List reminders
// @Tags reminders
// @Security BearerAuth
// @Produce json
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Param stationId query string false "Filter by station"
// @Param pending query bool false "Only reminders not yet sent"
// @Success 200 {object} map[string]interface{}
// @Failure 500 {object} ErrorResponse
// @Router /reminders [get]
func (h *ReminderHandler) ListReminders(c *gin.Context) {
	page, limit := pageParams(c)

	q := h.db.Model(&models.Reminder{})
	if stationID := c.Query("stationId"); stationID != "" {
		id, err := uuid.Parse(stationID)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid station ID"})
			return
		}
		q = q.Where("station_id = ?", id)
	}
	if c.Query("pending") == "true" {
		q = q.Where("sent = ?", false)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to count reminders"})
		return
	}

	var reminders []models.Reminder
	if err := q.Order("due_at ASC").Offset((page - 1) * limit).Limit(limit).Find(&reminders).Error; err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to fetch reminders"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items":      reminders,
		"pagination": paginate(page, limit, total),
	})
}

// GetReminder godoc
// @Summary Get a reminder by ID
// @Tags reminders
// @Security BearerAuth
// @Param id path string true "Reminder UUID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} ErrorResponse
// @Router /reminders/{id} [get]
func (h *ReminderHandler) GetReminder(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid reminder ID"})
		return
	}

	var reminder models.Reminder
	if err := h.db.First(&reminder, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Reminder not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to fetch reminder"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"reminder": reminder}})
}

// CreateReminder godoc
// @Summary Create a reminder for a station
// @Tags reminders
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param reminder body CreateReminderRequest true "Reminder details"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /reminders [post]
func (h *ReminderHandler) CreateReminder(c *gin.Context) {
	var req CreateReminderRequest
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

	reminder := models.Reminder{
		StationID:  req.StationID,
		AssigneeID: req.AssigneeID,
		Message:    req.Message,
		DueAt:      req.DueAt,
	}

	if err := h.db.Create(&reminder).Error; err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to create reminder"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": gin.H{"reminder": reminder}})
}

// UpdateReminder godoc
// @Summary Update a reminder
// @Tags reminders
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Reminder UUID"
// @Param reminder body UpdateReminderRequest true "Fields to update"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /reminders/{id} [put]
func (h *ReminderHandler) UpdateReminder(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid reminder ID"})
		return
	}

	var req UpdateReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	var reminder models.Reminder
	if err := h.db.First(&reminder, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Reminder not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to fetch reminder"})
		return
	}

	if req.AssigneeID != nil {
		reminder.AssigneeID = req.AssigneeID
	}
	if req.Message != nil {
		reminder.Message = *req.Message
	}
	if req.DueAt != nil {
		reminder.DueAt = *req.DueAt
	}
	if req.Sent != nil {
		reminder.Sent = *req.Sent
	}

	if err := h.db.Save(&reminder).Error; err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to update reminder"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"reminder": reminder}})
}

// DeleteReminder godoc
// @Summary Delete a reminder
// @Tags reminders
// @Security BearerAuth
// @Param id path string true "Reminder UUID"
// @Success 200 {object} MessageResponse
// @Failure 404 {object} ErrorResponse
// @Router /reminders/{id} [delete]
func (h *ReminderHandler) DeleteReminder(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid reminder ID"})
		return
	}

	result := h.db.Delete(&models.Reminder{}, "id = ?", id)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to delete reminder"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Reminder not found"})
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "Reminder deleted"})
}
