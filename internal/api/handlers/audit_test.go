package handlers

import (
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

	"github.com/stationdesk/stationdesk/internal/audit"
	"github.com/stationdesk/stationdesk/internal/models"
)

func setupAuditHandler(t *testing.T) (*AuditHandler, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &audit.Event{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return NewAuditHandler(audit.NewEngine(audit.NewStore(db)), 0), db
}

func seedEvent(t *testing.T, db *gorm.DB, actorID uuid.UUID, action audit.Action, target audit.TargetType) audit.Event {
	t.Helper()
	e := audit.Event{
		ActorID:    actorID,
		Action:     string(action),
		TargetType: string(target),
		TargetID:   "t-1",
		OccurredAt: time.Now().UTC(),
	}
	if err := db.Create(&e).Error; err != nil {
		t.Fatalf("failed to seed event: %v", err)
	}
	return e
}

func TestListEvents_ReturnsEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, db := setupAuditHandler(t)

	actor := uuid.New()
	seedEvent(t, db, actor, audit.ActionStationCreated, audit.TargetStation)
	seedEvent(t, db, actor, audit.ActionStationDeleted, audit.TargetStation)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/audit/events?limit=1", nil)

	handler.ListEvents(c)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var page audit.EventPage
	if err := json.Unmarshal(w.Body.Bytes(), &page); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}
	if len(page.Items) != 1 {
		t.Errorf("items = %d, want 1", len(page.Items))
	}
	if page.Pagination.TotalItems != 2 {
		t.Errorf("totalItems = %d, want 2", page.Pagination.TotalItems)
	}
	if !page.Pagination.HasNextPage {
		t.Error("expected hasNextPage")
	}
}

func TestListEvents_CollectsAllParameterErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, _ := setupAuditHandler(t)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet,
		"/api/v1/audit/events?page=abc&actorId=not-a-uuid&startDate=garbage", nil)

	handler.ListEvents(c)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}

	var response struct {
		Error  string             `json:"error"`
		Fields []audit.FieldError `json:"fields"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}
	if len(response.Fields) != 3 {
		t.Errorf("expected 3 field errors, got %d: %+v", len(response.Fields), response.Fields)
	}
}

func TestListEvents_RejectsOversizedLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, _ := setupAuditHandler(t)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/audit/events?limit=1000", nil)

	handler.ListEvents(c)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for limit above maximum, got %d", w.Code)
	}
}

func TestGetEvent_NotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, _ := setupAuditHandler(t)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/audit/events/x", nil)
	c.Params = gin.Params{{Key: "id", Value: uuid.NewString()}}

	handler.GetEvent(c)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestListUserEvents_UnknownUser(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, _ := setupAuditHandler(t)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/audit/users/x/events", nil)
	c.Params = gin.Params{{Key: "userId", Value: uuid.NewString()}}

	handler.ListUserEvents(c)

	if w.Code != http.StatusNotFound {
		t.Errorf("unknown user must be 404, got %d", w.Code)
	}
}

func TestGetStatistics(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, db := setupAuditHandler(t)

	actor := uuid.New()
	seedEvent(t, db, actor, audit.ActionBackupCreated, audit.TargetBackup)
	seedEvent(t, db, actor, audit.ActionBackupCreated, audit.TargetBackup)
	seedEvent(t, db, actor, audit.ActionStationCreated, audit.TargetStation)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/audit/statistics", nil)

	handler.GetStatistics(c)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var stats audit.Statistics
	if err := json.Unmarshal(w.Body.Bytes(), &stats); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}
	if stats.TotalEvents != 3 {
		t.Errorf("totalEvents = %d, want 3", stats.TotalEvents)
	}
	if len(stats.TopActions) == 0 || stats.TopActions[0].Action != string(audit.ActionBackupCreated) {
		t.Errorf("topActions = %+v", stats.TopActions)
	}
}

func TestGetStatistics_ConfiguredWindow(t *testing.T) {
	gin.SetMode(gin.TestMode)
	_, db := setupAuditHandler(t)
	handler := NewAuditHandler(audit.NewEngine(audit.NewStore(db)), 14)

	t.Run("used when absent", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/audit-events/stats", nil)

		handler.GetStatistics(c)

		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
		}
		var stats audit.Statistics
		if err := json.Unmarshal(w.Body.Bytes(), &stats); err != nil {
			t.Fatalf("failed to unmarshal: %v", err)
		}
		if stats.WindowDays != 14 {
			t.Errorf("windowDays = %d, want 14", stats.WindowDays)
		}
	})

	t.Run("query parameter wins", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/audit-events/stats?windowDays=3", nil)

		handler.GetStatistics(c)

		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
		}
		var stats audit.Statistics
		if err := json.Unmarshal(w.Body.Bytes(), &stats); err != nil {
			t.Fatalf("failed to unmarshal: %v", err)
		}
		if stats.WindowDays != 3 {
			t.Errorf("windowDays = %d, want 3", stats.WindowDays)
		}
	})
}

func TestGetStatistics_RejectsBadWindow(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, _ := setupAuditHandler(t)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/audit/statistics?windowDays=-5", nil)

	handler.GetStatistics(c)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}
