package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stationdesk/stationdesk/internal/models"
	"gorm.io/gorm"
)

type RoleHandler struct {
	db *gorm.DB
}

func NewRoleHandler(db *gorm.DB) *RoleHandler {
	return &RoleHandler{db: db}
}

type CreateRoleRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

type UpdateRoleRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

type AssignRoleRequest struct {
	UserID uuid.UUID `json:"user_id" binding:"required"`
}

// ListRoles godoc
// @Summary List roles
// @Tags roles
// @Security BearerAuth
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 500 {object} ErrorResponse
// @Router /roles [get]
func (h *RoleHandler) ListRoles(c *gin.Context) {
	var roles []models.Role
	if err := h.db.Order("name ASC").Find(&roles).Error; err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to fetch roles"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"roles": roles}})
}

// GetRole godoc
// @Summary Get a role by ID
// @Tags roles
// @Security BearerAuth
// @Param id path string true "Role UUID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} ErrorResponse
// @Router /roles/{id} [get]
func (h *RoleHandler) GetRole(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid role ID"})
		return
	}

	var role models.Role
	if err := h.db.First(&role, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Role not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to fetch role"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"role": role}})
}

// CreateRole godoc
// @Summary Create a role
// @Tags roles
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param role body CreateRoleRequest true "Role details"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} ErrorResponse
// @Router /roles [post]
func (h *RoleHandler) CreateRole(c *gin.Context) {
	var req CreateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	role := models.Role{
		Name:        req.Name,
		Description: req.Description,
	}

	if err := h.db.Create(&role).Error; err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to create role"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": gin.H{"role": role}})
}

// UpdateRole godoc
// @Summary Update a role
// @Tags roles
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Role UUID"
// @Param role body UpdateRoleRequest true "Fields to update"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} ErrorResponse
// @Router /roles/{id} [put]
func (h *RoleHandler) UpdateRole(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid role ID"})
		return
	}

	var req UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	var role models.Role
	if err := h.db.First(&role, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Role not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to fetch role"})
		return
	}

	if req.Name != nil {
		role.Name = *req.Name
	}
	if req.Description != nil {
		role.Description = *req.Description
	}

	if err := h.db.Save(&role).Error; err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to update role"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"role": role}})
}

// DeleteRole godoc
// @Summary Delete a role
// @Tags roles
// @Security BearerAuth
// @Param id path string true "Role UUID"
// @Success 200 {object} MessageResponse
// @Failure 404 {object} ErrorResponse
// @Router /roles/{id} [delete]
func (h *RoleHandler) DeleteRole(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid role ID"})
		return
	}

	if err := h.db.Where("role_id = ?", id).Delete(&models.UserRole{}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to remove role assignments"})
		return
	}

	result := h.db.Delete(&models.Role{}, "id = ?", id)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to delete role"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Role not found"})
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "Role deleted"})
}

// AssignRole godoc
// @Summary Assign a role to a user
// @Tags roles
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Role UUID"
// @Param assignment body AssignRoleRequest true "User to assign"
// @Success 201 {object} map[string]interface{}
// @Failure 404 {object} ErrorResponse
// @Router /roles/{id}/assignments [post]
func (h *RoleHandler) AssignRole(c *gin.Context) {
	roleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid role ID"})
		return
	}

	var req AssignRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	var role models.Role
	if err := h.db.First(&role, "id = ?", roleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Role not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to fetch role"})
		return
	}

	var user models.User
	if err := h.db.First(&user, "id = ?", req.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to fetch user"})
		return
	}

	assignment := models.UserRole{UserID: req.UserID, RoleID: roleID}
	if err := h.db.Create(&assignment).Error; err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to assign role"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": gin.H{"role": role}})
}

// UnassignRole godoc
// @Summary Remove a role from a user
// @Tags roles
// @Security BearerAuth
// @Param id path string true "Role UUID"
// @Param userId path string true "User UUID"
// @Success 200 {object} MessageResponse
// @Failure 404 {object} ErrorResponse
// @Router /roles/{id}/assignments/{userId} [delete]
func (h *RoleHandler) UnassignRole(c *gin.Context) {
	roleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid role ID"})
		return
	}
	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid user ID"})
		return
	}

	result := h.db.Where("role_id = ? AND user_id = ?", roleID, userID).Delete(&models.UserRole{})
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to remove role assignment"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Role assignment not found"})
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "Role assignment removed"})
}
