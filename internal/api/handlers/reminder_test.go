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

func setupReminderTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Station{}, &models.Reminder{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func createReminderStation(t *testing.T, db *gorm.DB) *models.Station {
	t.Helper()
	station := &models.Station{Name: "Back Office", DeviceCode: "BO-001", Status: models.StationStatusActive}
	if err := db.Create(station).Error; err != nil {
		t.Fatalf("create station: %v", err)
	}
	return station
}

func TestCreateReminder(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := setupReminderTestDB(t)
	handler := NewReminderHandler(db)
	station := createReminderStation(t, db)

	t.Run("without assignee", func(t *testing.T) {
		body, _ := json.Marshal(CreateReminderRequest{
			StationID: station.ID,
			Message:   "Swap backup drive",
			DueAt:     time.Now().UTC().Add(24 * time.Hour),
		})

		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/reminders", bytes.NewReader(body))
		c.Request.Header.Set("Content-Type", "application/json")

		handler.CreateReminder(c)

		if w.Code != http.StatusCreated {
			t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, w.Code, w.Body.String())
		}

		var stored models.Reminder
		if err := db.First(&stored, "message = ?", "Swap backup drive").Error; err != nil {
			t.Fatalf("reminder not stored: %v", err)
		}
		if stored.AssigneeID != nil {
			t.Errorf("assignee = %v, want unassigned", stored.AssigneeID)
		}
	})

	t.Run("with assignee", func(t *testing.T) {
		assignee := uuid.New()
		body, _ := json.Marshal(CreateReminderRequest{
			StationID:  station.ID,
			AssigneeID: &assignee,
			Message:    "Check cabling",
			DueAt:      time.Now().UTC().Add(48 * time.Hour),
		})

		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/reminders", bytes.NewReader(body))
		c.Request.Header.Set("Content-Type", "application/json")

		handler.CreateReminder(c)

		if w.Code != http.StatusCreated {
			t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, w.Code, w.Body.String())
		}

		var stored models.Reminder
		if err := db.First(&stored, "message = ?", "Check cabling").Error; err != nil {
			t.Fatalf("reminder not stored: %v", err)
		}
		if stored.AssigneeID == nil || *stored.AssigneeID != assignee {
			t.Errorf("assignee = %v, want %s", stored.AssigneeID, assignee)
		}
	})

	t.Run("unknown station", func(t *testing.T) {
		body, _ := json.Marshal(CreateReminderRequest{
			StationID: uuid.New(),
			Message:   "Orphan",
			DueAt:     time.Now().UTC().Add(time.Hour),
		})

		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/reminders", bytes.NewReader(body))
		c.Request.Header.Set("Content-Type", "application/json")

		handler.CreateReminder(c)

		if w.Code != http.StatusNotFound {
			t.Fatalf("expected status %d, got %d", http.StatusNotFound, w.Code)
		}
	})
}

func TestUpdateReminderAssignee(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := setupReminderTestDB(t)
	handler := NewReminderHandler(db)
	station := createReminderStation(t, db)

	reminder := models.Reminder{
		StationID: station.ID,
		Message:   "Rotate logs",
		DueAt:     time.Now().UTC().Add(time.Hour),
	}
	if err := db.Create(&reminder).Error; err != nil {
		t.Fatalf("create reminder: %v", err)
	}

	assignee := uuid.New()
	body, _ := json.Marshal(UpdateReminderRequest{AssigneeID: &assignee})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPut, "/api/v1/reminders/"+reminder.ID.String(), bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{{Key: "id", Value: reminder.ID.String()}}

	handler.UpdateReminder(c)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
	}

	var stored models.Reminder
	if err := db.First(&stored, "id = ?", reminder.ID).Error; err != nil {
		t.Fatalf("fetch reminder: %v", err)
	}
	if stored.AssigneeID == nil || *stored.AssigneeID != assignee {
		t.Errorf("assignee = %v, want %s", stored.AssigneeID, assignee)
	}
	if stored.Message != "Rotate logs" {
		t.Errorf("message changed to %q", stored.Message)
	}
}
