package audit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stationdesk/stationdesk/internal/models"
)

func seedEvents(t *testing.T, db *gorm.DB, actorID uuid.UUID, action Action, target TargetType, n int, at time.Time) {
	t.Helper()
	for i := 0; i < n; i++ {
		e := Event{
			ActorID:    actorID,
			Action:     string(action),
			TargetType: string(target),
			TargetID:   "t-1",
			OccurredAt: at.Add(time.Duration(i) * time.Second),
		}
		if err := db.Create(&e).Error; err != nil {
			t.Fatalf("failed to seed event: %v", err)
		}
	}
}

func TestEngineList_PaginationInvariants(t *testing.T) {
	db := setupAuditTestDB(t)
	engine := NewEngine(NewStore(db))

	actor := uuid.New()
	seedEvents(t, db, actor, ActionStationCreated, TargetStation, 25, time.Now().UTC().Add(-time.Hour))

	seen := 0
	page := 1
	for {
		p, err := engine.List(context.Background(), Filter{Page: page, Limit: 10})
		if err != nil {
			t.Fatalf("List page %d: %v", page, err)
		}

		if p.Pagination.TotalItems != 25 {
			t.Errorf("totalItems = %d, want 25", p.Pagination.TotalItems)
		}
		if p.Pagination.TotalPages != 3 {
			t.Errorf("totalPages = %d, want 3", p.Pagination.TotalPages)
		}
		wantNext := page < p.Pagination.TotalPages
		if p.Pagination.HasNextPage != wantNext {
			t.Errorf("page %d hasNextPage = %v, want %v", page, p.Pagination.HasNextPage, wantNext)
		}
		if p.Pagination.HasPreviousPage != (page > 1) {
			t.Errorf("page %d hasPreviousPage = %v", page, p.Pagination.HasPreviousPage)
		}

		seen += len(p.Items)
		if !p.Pagination.HasNextPage {
			break
		}
		page++
	}

	if seen != 25 {
		t.Errorf("walked pages yield %d items, want 25", seen)
	}
}

func TestEngineList_NewestFirst(t *testing.T) {
	db := setupAuditTestDB(t)
	engine := NewEngine(NewStore(db))

	actor := uuid.New()
	seedEvents(t, db, actor, ActionStationUpdated, TargetStation, 5, time.Now().UTC().Add(-time.Hour))

	p, err := engine.List(context.Background(), Filter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	for i := 1; i < len(p.Items); i++ {
		if p.Items[i].OccurredAt.After(p.Items[i-1].OccurredAt) {
			t.Fatal("listing is not newest first")
		}
	}
}

func TestEngineList_ValidationErrors(t *testing.T) {
	db := setupAuditTestDB(t)
	engine := NewEngine(NewStore(db))

	start := time.Now().UTC()
	end := start.Add(-time.Hour)

	_, err := engine.List(context.Background(), Filter{
		Limit:     500,
		StartDate: &start,
		EndDate:   &end,
	})

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	// Both problems reported at once.
	if len(verr.Fields) != 2 {
		t.Errorf("expected 2 field errors, got %d: %v", len(verr.Fields), verr.Fields)
	}
}

func TestEngineList_FiltersCombineWithAnd(t *testing.T) {
	db := setupAuditTestDB(t)
	engine := NewEngine(NewStore(db))

	a1, a2 := uuid.New(), uuid.New()
	now := time.Now().UTC()
	seedEvents(t, db, a1, ActionStationCreated, TargetStation, 3, now.Add(-time.Hour))
	seedEvents(t, db, a1, ActionUserCreated, TargetUser, 2, now.Add(-time.Hour))
	seedEvents(t, db, a2, ActionStationCreated, TargetStation, 4, now.Add(-time.Hour))

	p, err := engine.List(context.Background(), Filter{
		ActorID:    &a1,
		TargetType: string(TargetStation),
	})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if p.Pagination.TotalItems != 3 {
		t.Errorf("totalItems = %d, want 3", p.Pagination.TotalItems)
	}
}

func TestEngineList_SearchMatchesActorName(t *testing.T) {
	db := setupAuditTestDB(t)
	engine := NewEngine(NewStore(db))

	user := models.User{Username: "jdoe", FirstName: "Jane", LastName: "Doe", Active: true}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	seedEvents(t, db, user.ID, ActionBackupCreated, TargetBackup, 2, time.Now().UTC().Add(-time.Hour))
	seedEvents(t, db, uuid.New(), ActionBackupCreated, TargetBackup, 3, time.Now().UTC().Add(-time.Hour))

	p, err := engine.List(context.Background(), Filter{Search: "Jane"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if p.Pagination.TotalItems != 2 {
		t.Errorf("search by actor name: totalItems = %d, want 2", p.Pagination.TotalItems)
	}
}

func TestEngineGet_NotFound(t *testing.T) {
	db := setupAuditTestDB(t)
	engine := NewEngine(NewStore(db))

	_, err := engine.Get(context.Background(), uuid.New())
	if !errors.Is(err, ErrEventNotFound) {
		t.Errorf("expected ErrEventNotFound, got %v", err)
	}
}

func TestEngineGet_DeletedActorStillReturnsEvent(t *testing.T) {
	db := setupAuditTestDB(t)
	engine := NewEngine(NewStore(db))

	// Actor never existed in the users table at all.
	e := Event{
		ActorID:    uuid.New(),
		Action:     string(ActionStationDeleted),
		TargetType: string(TargetStation),
		TargetID:   "st-1",
		OccurredAt: time.Now().UTC(),
	}
	if err := db.Create(&e).Error; err != nil {
		t.Fatalf("failed to seed: %v", err)
	}

	detail, err := engine.Get(context.Background(), e.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if detail.Actor != nil {
		t.Error("expected nil actor summary for a vanished actor")
	}
}

func TestEngineListByActor_DistinguishesMissingFromEmpty(t *testing.T) {
	db := setupAuditTestDB(t)
	engine := NewEngine(NewStore(db))

	// Unknown actor: not found.
	_, err := engine.ListByActor(context.Background(), uuid.New(), Filter{})
	if !errors.Is(err, ErrActorNotFound) {
		t.Errorf("expected ErrActorNotFound, got %v", err)
	}

	// Existing actor with zero events: empty page, no error.
	user := models.User{Username: "quiet", Active: true}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	p, err := engine.ListByActor(context.Background(), user.ID, Filter{})
	if err != nil {
		t.Fatalf("ListByActor: %v", err)
	}
	if len(p.Items) != 0 || p.Pagination.TotalItems != 0 {
		t.Errorf("expected empty page, got %d items", len(p.Items))
	}
	if p.Actor.Username != "quiet" {
		t.Errorf("actor summary username = %q", p.Actor.Username)
	}
}

func TestEngineStatistics(t *testing.T) {
	db := setupAuditTestDB(t)
	engine := NewEngine(NewStore(db))

	user := models.User{Username: "ops", FirstName: "Olive", LastName: "Price", Active: true}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).Add(time.Minute)
	seedEvents(t, db, user.ID, ActionStationCreated, TargetStation, 5, today)
	seedEvents(t, db, user.ID, ActionBackupCreated, TargetBackup, 3, today)
	// Outside the 30-day window but still in the total.
	seedEvents(t, db, user.ID, ActionStationDeleted, TargetStation, 2, now.AddDate(0, 0, -45))

	stats, err := engine.Statistics(context.Background(), StatsScope{}, 0)
	if err != nil {
		t.Fatalf("Statistics: %v", err)
	}

	if stats.TotalEvents != 10 {
		t.Errorf("totalEvents = %d, want 10", stats.TotalEvents)
	}
	if stats.RecentEvents != 8 {
		t.Errorf("recentEvents = %d, want 8", stats.RecentEvents)
	}
	if stats.RecentEvents > stats.TotalEvents {
		t.Error("recent must never exceed total")
	}
	if stats.WindowDays != DefaultStatsWindowDays {
		t.Errorf("windowDays = %d, want default", stats.WindowDays)
	}

	if len(stats.TopActions) == 0 || stats.TopActions[0].Action != string(ActionStationCreated) {
		t.Errorf("topActions = %+v, want STATION_CREATED first", stats.TopActions)
	}
	if len(stats.TopActors) == 0 {
		t.Fatal("expected top actors")
	}
	if stats.TopActors[0].DisplayName != "Olive Price" {
		t.Errorf("top actor display name = %q", stats.TopActors[0].DisplayName)
	}

	if len(stats.DailyCounts) != DailyCountDays {
		t.Fatalf("dailyCounts length = %d, want %d", len(stats.DailyCounts), DailyCountDays)
	}
	if stats.DailyCounts[0].Date != now.Format("2006-01-02") {
		t.Errorf("first daily bucket = %s, want today", stats.DailyCounts[0].Date)
	}
	if stats.DailyCounts[0].Count != 8 {
		t.Errorf("today's count = %d, want 8", stats.DailyCounts[0].Count)
	}
}

func TestEngineStatistics_TieBrokenByName(t *testing.T) {
	db := setupAuditTestDB(t)
	engine := NewEngine(NewStore(db))

	actor := uuid.New()
	now := time.Now().UTC()
	seedEvents(t, db, actor, ActionUserUpdated, TargetUser, 2, now.Add(-time.Hour))
	seedEvents(t, db, actor, ActionBackupDeleted, TargetBackup, 2, now.Add(-time.Hour))

	stats, err := engine.Statistics(context.Background(), StatsScope{}, 0)
	if err != nil {
		t.Fatalf("Statistics: %v", err)
	}
	if len(stats.TopActions) != 2 {
		t.Fatalf("topActions length = %d", len(stats.TopActions))
	}
	if stats.TopActions[0].Action != string(ActionBackupDeleted) {
		t.Errorf("equal counts must order by action name, got %q first", stats.TopActions[0].Action)
	}
}

func TestEngineStatistics_ScopedToActor(t *testing.T) {
	db := setupAuditTestDB(t)
	engine := NewEngine(NewStore(db))

	a1, a2 := uuid.New(), uuid.New()
	now := time.Now().UTC()
	seedEvents(t, db, a1, ActionStationCreated, TargetStation, 4, now.Add(-time.Hour))
	seedEvents(t, db, a2, ActionStationCreated, TargetStation, 6, now.Add(-time.Hour))

	stats, err := engine.Statistics(context.Background(), StatsScope{ActorID: &a1}, 0)
	if err != nil {
		t.Fatalf("Statistics: %v", err)
	}
	if stats.TotalEvents != 4 {
		t.Errorf("scoped totalEvents = %d, want 4", stats.TotalEvents)
	}
}

func TestPercentage(t *testing.T) {
	if got := Percentage(1, 0); got != 0 {
		t.Errorf("zero total must report 0, got %d", got)
	}
	if got := Percentage(25, 100); got != 25 {
		t.Errorf("Percentage(25, 100) = %d", got)
	}
	if got := Percentage(1, 3); got != 33 {
		t.Errorf("Percentage(1, 3) = %d", got)
	}
}
