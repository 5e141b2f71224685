package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/stationdesk/stationdesk/internal/models"
)

func setupRoleTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Role{}, &models.UserRole{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func TestCreateRole(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := setupRoleTestDB(t)
	handler := NewRoleHandler(db)

	body, _ := json.Marshal(CreateRoleRequest{Name: "operator", Description: "Day-to-day station ops"})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/roles", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.CreateRole(c)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, w.Code, w.Body.String())
	}

	var response struct {
		Data struct {
			Role models.Role `json:"role"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if response.Data.Role.ID == uuid.Nil {
		t.Error("role id was not generated")
	}
	if response.Data.Role.Name != "operator" {
		t.Errorf("name = %q", response.Data.Role.Name)
	}
}

func TestAssignRole(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := setupRoleTestDB(t)
	handler := NewRoleHandler(db)

	role := models.Role{Name: "viewer"}
	if err := db.Create(&role).Error; err != nil {
		t.Fatalf("create role: %v", err)
	}
	user := models.User{Username: "dana", Email: "dana@stationdesk.local", PasswordHash: "x", Active: true}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}

	body, _ := json.Marshal(AssignRoleRequest{UserID: user.ID})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/roles/"+role.ID.String()+"/assignments", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{{Key: "id", Value: role.ID.String()}}

	handler.AssignRole(c)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, w.Code, w.Body.String())
	}

	var assignment models.UserRole
	if err := db.First(&assignment, "user_id = ? AND role_id = ?", user.ID, role.ID).Error; err != nil {
		t.Fatalf("assignment not stored: %v", err)
	}
	if assignment.RoleID != role.ID {
		t.Errorf("assignment role id = %s, want %s", assignment.RoleID, role.ID)
	}
}

func TestUnassignRoleNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := setupRoleTestDB(t)
	handler := NewRoleHandler(db)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodDelete, "/api/v1/roles/x/assignments/y", nil)
	c.Params = gin.Params{
		{Key: "id", Value: uuid.NewString()},
		{Key: "userId", Value: uuid.NewString()},
	}

	handler.UnassignRole(c)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, w.Code)
	}
}
