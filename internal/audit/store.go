package audit

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/stationdesk/stationdesk/internal/models"
	"gorm.io/gorm"
)

// Store is the append-only persistence layer for audit events. Writes go
// through Insert only; there is no update or delete path.
type Store struct {
	db *gorm.DB
}

// NewStore creates an event store backed by the given database
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Filter narrows a listing. All dimensions combine with AND; the free-text
// Search clause matches action, target type, or the actor's name with OR
// semantics inside the clause.
type Filter struct {
	ActorID    *uuid.UUID
	Action     string // substring match
	TargetType string
	TargetID   string
	Search     string
	StartDate  *time.Time
	EndDate    *time.Time
	Page       int
	Limit      int
}

// MaxPageSize bounds the number of events returned per page
const MaxPageSize = 100

// DefaultPageSize is used when the caller does not request a page size
const DefaultPageSize = 20

// Validate checks filter bounds, collecting every problem into a single
// ValidationError so callers get all field messages at once.
func (f *Filter) Validate() error {
	verr := &ValidationError{}
	if f.Page < 0 {
		verr.Add("page", "must be at least 1")
	}
	if f.Limit < 0 {
		verr.Add("limit", "must be at least 1")
	}
	if f.Limit > MaxPageSize {
		verr.Add("limit", "must not exceed 100")
	}
	if f.StartDate != nil && f.EndDate != nil && f.StartDate.After(*f.EndDate) {
		verr.Add("startDate", "must not be after endDate")
	}
	if len(verr.Fields) > 0 {
		return verr
	}
	return nil
}

func (f *Filter) normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = DefaultPageSize
	}
	if f.Limit > MaxPageSize {
		f.Limit = MaxPageSize
	}
}

// Insert appends a single event
func (s *Store) Insert(ctx context.Context, e *Event) error {
	return s.db.WithContext(ctx).Create(e).Error
}

// List returns one page of events matching the filter, newest first, along
// with the total match count.
func (s *Store) List(ctx context.Context, f Filter) ([]Event, int64, error) {
	f.normalize()

	var total int64
	if err := s.filtered(ctx, f).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var events []Event
	err := s.filtered(ctx, f).
		Order("audit_events.occurred_at DESC, audit_events.created_at DESC").
		Offset((f.Page - 1) * f.Limit).
		Limit(f.Limit).
		Find(&events).Error
	if err != nil {
		return nil, 0, err
	}

	return events, total, nil
}

// filtered builds the common filtered query. The users join is only added
// for free-text search, and it is a LEFT JOIN: events whose actor has been
// deleted still appear.
func (s *Store) filtered(ctx context.Context, f Filter) *gorm.DB {
	q := s.db.WithContext(ctx).Model(&Event{})

	if f.ActorID != nil {
		q = q.Where("audit_events.actor_id = ?", f.ActorID.String())
	}
	if f.Action != "" {
		q = q.Where("audit_events.action LIKE ?", "%"+f.Action+"%")
	}
	if f.TargetType != "" {
		q = q.Where("audit_events.target_type = ?", f.TargetType)
	}
	if f.TargetID != "" {
		q = q.Where("audit_events.target_id = ?", f.TargetID)
	}
	if f.StartDate != nil {
		q = q.Where("audit_events.occurred_at >= ?", *f.StartDate)
	}
	if f.EndDate != nil {
		q = q.Where("audit_events.occurred_at <= ?", *f.EndDate)
	}
	if f.Search != "" {
		like := "%" + f.Search + "%"
		q = q.
			Joins("LEFT JOIN users ON users.id = audit_events.actor_id").
			Where("(audit_events.action LIKE ? OR audit_events.target_type LIKE ? OR users.first_name LIKE ? OR users.last_name LIKE ? OR users.username LIKE ?)",
				like, like, like, like, like)
	}

	return q
}

// Get returns a single event by id
func (s *Store) Get(ctx context.Context, id uuid.UUID) (*Event, error) {
	var e Event
	err := s.db.WithContext(ctx).First(&e, "id = ?", id.String()).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	return &e, nil
}

// StatsScope optionally narrows statistics to one actor and/or target type
type StatsScope struct {
	ActorID    *uuid.UUID
	TargetType string
}

func (s *Store) scoped(ctx context.Context, scope StatsScope) *gorm.DB {
	q := s.db.WithContext(ctx).Model(&Event{})
	if scope.ActorID != nil {
		q = q.Where("actor_id = ?", scope.ActorID.String())
	}
	if scope.TargetType != "" {
		q = q.Where("target_type = ?", scope.TargetType)
	}
	return q
}

// Count returns the total number of events in scope
func (s *Store) Count(ctx context.Context, scope StatsScope) (int64, error) {
	var n int64
	err := s.scoped(ctx, scope).Count(&n).Error
	return n, err
}

// CountSince returns the number of in-scope events at or after t
func (s *Store) CountSince(ctx context.Context, scope StatsScope, t time.Time) (int64, error) {
	var n int64
	err := s.scoped(ctx, scope).Where("occurred_at >= ?", t).Count(&n).Error
	return n, err
}

// CountBetween returns the number of in-scope events in [from, to)
func (s *Store) CountBetween(ctx context.Context, scope StatsScope, from, to time.Time) (int64, error) {
	var n int64
	err := s.scoped(ctx, scope).
		Where("occurred_at >= ? AND occurred_at < ?", from, to).
		Count(&n).Error
	return n, err
}

// ActionCount is one row of the actions-by-frequency rollup
type ActionCount struct {
	Action string `json:"action"`
	Count  int64  `json:"count"`
}

// TopActions returns the most frequent actions since t, descending, ties
// broken by action name for deterministic output.
func (s *Store) TopActions(ctx context.Context, scope StatsScope, since time.Time, limit int) ([]ActionCount, error) {
	var rows []ActionCount
	err := s.scoped(ctx, scope).
		Select("action, COUNT(*) AS count").
		Where("occurred_at >= ?", since).
		Group("action").
		Order("count DESC, action ASC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

// TargetTypeCount is one row of the target-types-by-frequency rollup
type TargetTypeCount struct {
	TargetType string `json:"target_type"`
	Count      int64  `json:"count"`
}

// TopTargetTypes returns the most frequent target types since t
func (s *Store) TopTargetTypes(ctx context.Context, scope StatsScope, since time.Time, limit int) ([]TargetTypeCount, error) {
	var rows []TargetTypeCount
	err := s.scoped(ctx, scope).
		Select("target_type, COUNT(*) AS count").
		Where("occurred_at >= ?", since).
		Group("target_type").
		Order("count DESC, target_type ASC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

// ActorCount is one row of the actors-by-frequency rollup
type ActorCount struct {
	ActorID string `json:"actor_id"`
	Count   int64  `json:"count"`
}

// TopActors returns the most active actors since t
func (s *Store) TopActors(ctx context.Context, scope StatsScope, since time.Time, limit int) ([]ActorCount, error) {
	var rows []ActorCount
	err := s.scoped(ctx, scope).
		Select("actor_id, COUNT(*) AS count").
		Where("occurred_at >= ?", since).
		Group("actor_id").
		Order("count DESC, actor_id ASC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

// ActorByID loads a user for actor joins. Unscoped: a soft-deleted staff
// account still resolves so old events keep their actor details.
func (s *Store) ActorByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var u models.User
	err := s.db.WithContext(ctx).Unscoped().First(&u, "id = ?", id.String()).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrActorNotFound
		}
		return nil, err
	}
	return &u, nil
}

// ActorsByIDs loads user records for a set of actor ids, keyed by id
func (s *Store) ActorsByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.User, error) {
	if len(ids) == 0 {
		return map[uuid.UUID]models.User{}, nil
	}

	strs := make([]string, len(ids))
	for i, id := range ids {
		strs[i] = id.String()
	}

	var users []models.User
	if err := s.db.WithContext(ctx).Unscoped().Where("id IN ?", strs).Find(&users).Error; err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	return byID, nil
}
