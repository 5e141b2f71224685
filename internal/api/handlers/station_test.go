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
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/stationdesk/stationdesk/internal/models"
)

func setupStationTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	if err := db.AutoMigrate(&models.Station{}, &models.StationProfile{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func TestCreateStation(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := setupStationTestDB(t)
	handler := NewStationHandler(db)

	body, _ := json.Marshal(CreateStationRequest{
		Name:       "Front Desk",
		DeviceCode: "FD-001",
		Location:   "Lobby",
	})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/stations", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.CreateStation(c)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, w.Code, w.Body.String())
	}

	var response struct {
		Data struct {
			Station models.Station `json:"station"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}

	if response.Data.Station.Name != "Front Desk" {
		t.Errorf("name = %q", response.Data.Station.Name)
	}
	if response.Data.Station.Status != models.StationStatusActive {
		t.Errorf("new station status = %q, want active", response.Data.Station.Status)
	}
}

func TestCreateStation_DuplicateDeviceCode(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := setupStationTestDB(t)
	handler := NewStationHandler(db)

	db.Create(&models.Station{Name: "First", DeviceCode: "DUP-1", Status: models.StationStatusActive})

	body, _ := json.Marshal(CreateStationRequest{Name: "Second", DeviceCode: "DUP-1"})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/stations", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.CreateStation(c)

	if w.Code != http.StatusConflict {
		t.Errorf("expected status %d, got %d", http.StatusConflict, w.Code)
	}
}

func TestListStations_FiltersAndPaginates(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := setupStationTestDB(t)
	handler := NewStationHandler(db)

	for i := 0; i < 3; i++ {
		db.Create(&models.Station{
			Name:       "Kiosk",
			DeviceCode: "K-" + string(rune('A'+i)),
			Status:     models.StationStatusActive,
		})
	}
	db.Create(&models.Station{Name: "Spare", DeviceCode: "S-1", Status: models.StationStatusOffline})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/stations?status=active&limit=2", nil)

	handler.ListStations(c)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var response struct {
		Items      []models.Station `json:"items"`
		Pagination Pagination       `json:"pagination"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}

	if len(response.Items) != 2 {
		t.Errorf("items = %d, want 2", len(response.Items))
	}
	if response.Pagination.TotalItems != 3 {
		t.Errorf("totalItems = %d, want 3", response.Pagination.TotalItems)
	}
	if !response.Pagination.HasNextPage {
		t.Error("expected a next page")
	}
}

func TestGetStation_NotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := setupStationTestDB(t)
	handler := NewStationHandler(db)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/stations/x", nil)
	c.Params = gin.Params{{Key: "id", Value: "93e0e969-5b2a-44c9-b13d-87731eb3b742"}}

	handler.GetStation(c)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestDeleteStation_NotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := setupStationTestDB(t)
	handler := NewStationHandler(db)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodDelete, "/api/v1/stations/x", nil)
	c.Params = gin.Params{{Key: "id", Value: "93e0e969-5b2a-44c9-b13d-87731eb3b742"}}

	handler.DeleteStation(c)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown station, got %d", w.Code)
	}
}

func TestHeartbeat_MarksOfflineStationActive(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := setupStationTestDB(t)
	handler := NewStationHandler(db)

	station := models.Station{Name: "Dock", DeviceCode: "D-1", Status: models.StationStatusOffline}
	db.Create(&station)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/stations/x/heartbeat", nil)
	c.Params = gin.Params{{Key: "id", Value: station.ID.String()}}

	handler.Heartbeat(c)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var reloaded models.Station
	db.First(&reloaded, "id = ?", station.ID)
	if reloaded.Status != models.StationStatusActive {
		t.Errorf("status = %q, want active after heartbeat", reloaded.Status)
	}
	if reloaded.LastSeenAt == nil {
		t.Error("LastSeenAt not set by heartbeat")
	}
}
