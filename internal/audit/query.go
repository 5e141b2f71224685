package audit

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultStatsWindowDays is the trailing window for "recent" statistics
	DefaultStatsWindowDays = 30
	// DailyCountDays is the length of the daily breakdown
	DailyCountDays = 7
	// TopN is the size of each frequency rollup
	TopN = 10
)

// Engine is the read path over the event store. It never mutates state.
type Engine struct {
	store *Store
}

// NewEngine creates a query engine over the given store
func NewEngine(store *Store) *Engine {
	return &Engine{store: store}
}

// Pagination describes the position of one page within a filtered listing
type Pagination struct {
	CurrentPage     int   `json:"currentPage"`
	TotalPages      int   `json:"totalPages"`
	TotalItems      int64 `json:"totalItems"`
	ItemsPerPage    int   `json:"itemsPerPage"`
	HasNextPage     bool  `json:"hasNextPage"`
	HasPreviousPage bool  `json:"hasPreviousPage"`
}

func paginate(page, limit int, total int64) Pagination {
	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return Pagination{
		CurrentPage:     page,
		TotalPages:      totalPages,
		TotalItems:      total,
		ItemsPerPage:    limit,
		HasNextPage:     page < totalPages,
		HasPreviousPage: page > 1,
	}
}

// EventPage is one page of a filtered listing
type EventPage struct {
	Items      []Event    `json:"items"`
	Pagination Pagination `json:"pagination"`
}

// ActorSummary carries the display attributes of an event's actor
type ActorSummary struct {
	ID          uuid.UUID `json:"id"`
	Username    string    `json:"username"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	DisplayName string    `json:"display_name"`
}

// EventDetail is a single event with actor details joined in
type EventDetail struct {
	Event
	Actor *ActorSummary `json:"actor,omitempty"`
}

// ActorEventPage is an actor-scoped listing with the actor's summary
type ActorEventPage struct {
	Actor      ActorSummary `json:"actor"`
	Items      []Event      `json:"items"`
	Pagination Pagination   `json:"pagination"`
}

func summarize(id uuid.UUID, username, firstName, lastName string) *ActorSummary {
	display := strings.TrimSpace(firstName + " " + lastName)
	if display == "" {
		display = username
	}
	return &ActorSummary{
		ID:          id,
		Username:    username,
		FirstName:   firstName,
		LastName:    lastName,
		DisplayName: display,
	}
}

// List returns a filtered, paginated event listing, newest first
func (e *Engine) List(ctx context.Context, f Filter) (*EventPage, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	f.normalize()

	events, total, err := e.store.List(ctx, f)
	if err != nil {
		return nil, err
	}
	if events == nil {
		events = []Event{}
	}

	return &EventPage{
		Items:      events,
		Pagination: paginate(f.Page, f.Limit, total),
	}, nil
}

// Get returns a single event with actor details. The actor may no longer
// exist; the event is still returned, with a nil actor summary.
func (e *Engine) Get(ctx context.Context, id uuid.UUID) (*EventDetail, error) {
	ev, err := e.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	detail := &EventDetail{Event: *ev}
	if actor, err := e.store.ActorByID(ctx, ev.ActorID); err == nil {
		detail.Actor = summarize(actor.ID, actor.Username, actor.FirstName, actor.LastName)
	}
	return detail, nil
}

// ListByActor returns one actor's events. The actor must exist:
// ErrActorNotFound is distinct from an actor with zero events.
func (e *Engine) ListByActor(ctx context.Context, actorID uuid.UUID, f Filter) (*ActorEventPage, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	f.normalize()

	actor, err := e.store.ActorByID(ctx, actorID)
	if err != nil {
		return nil, err
	}

	f.ActorID = &actorID
	events, total, err := e.store.List(ctx, f)
	if err != nil {
		return nil, err
	}
	if events == nil {
		events = []Event{}
	}

	return &ActorEventPage{
		Actor:      *summarize(actor.ID, actor.Username, actor.FirstName, actor.LastName),
		Items:      events,
		Pagination: paginate(f.Page, f.Limit, total),
	}, nil
}

// ActorActivity is one row of the actors-by-frequency rollup, with display
// attributes joined in when the actor still exists.
type ActorActivity struct {
	ActorID     uuid.UUID `json:"actor_id"`
	DisplayName string    `json:"display_name,omitempty"`
	Count       int64     `json:"count"`
}

// DailyCount is the event count for one calendar day
type DailyCount struct {
	Date  string `json:"date"` // YYYY-MM-DD
	Count int64  `json:"count"`
}

// Statistics is the aggregation bundle for an optional scope
type Statistics struct {
	TotalEvents    int64             `json:"totalEvents"`
	RecentEvents   int64             `json:"recentEvents"`
	WindowDays     int               `json:"windowDays"`
	TopActions     []ActionCount     `json:"topActions"`
	TopTargetTypes []TargetTypeCount `json:"topTargetTypes"`
	TopActors      []ActorActivity   `json:"topActors"`
	DailyCounts    []DailyCount      `json:"dailyCounts"`
}

// Statistics computes exact counts and rollups for the scope over a
// trailing window of windowDays (default 30).
func (e *Engine) Statistics(ctx context.Context, scope StatsScope, windowDays int) (*Statistics, error) {
	if windowDays <= 0 {
		windowDays = DefaultStatsWindowDays
	}

	now := time.Now().UTC()
	since := now.AddDate(0, 0, -windowDays)

	total, err := e.store.Count(ctx, scope)
	if err != nil {
		return nil, err
	}

	recent, err := e.store.CountSince(ctx, scope, since)
	if err != nil {
		return nil, err
	}

	topActions, err := e.store.TopActions(ctx, scope, since, TopN)
	if err != nil {
		return nil, err
	}

	topTargets, err := e.store.TopTargetTypes(ctx, scope, since, TopN)
	if err != nil {
		return nil, err
	}

	topActors, err := e.topActors(ctx, scope, since)
	if err != nil {
		return nil, err
	}

	daily, err := e.dailyCounts(ctx, scope, now)
	if err != nil {
		return nil, err
	}

	if topActions == nil {
		topActions = []ActionCount{}
	}
	if topTargets == nil {
		topTargets = []TargetTypeCount{}
	}

	return &Statistics{
		TotalEvents:    total,
		RecentEvents:   recent,
		WindowDays:     windowDays,
		TopActions:     topActions,
		TopTargetTypes: topTargets,
		TopActors:      topActors,
		DailyCounts:    daily,
	}, nil
}

func (e *Engine) topActors(ctx context.Context, scope StatsScope, since time.Time) ([]ActorActivity, error) {
	rows, err := e.store.TopActors(ctx, scope, since, TopN)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		if id, err := uuid.Parse(row.ActorID); err == nil {
			ids = append(ids, id)
		}
	}

	actors, err := e.store.ActorsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	result := make([]ActorActivity, 0, len(rows))
	for _, row := range rows {
		activity := ActorActivity{Count: row.Count}
		if id, err := uuid.Parse(row.ActorID); err == nil {
			activity.ActorID = id
			if u, ok := actors[id]; ok {
				activity.DisplayName = u.DisplayName()
			}
		}
		result = append(result, activity)
	}
	return result, nil
}

// dailyCounts returns exact per-day counts for the trailing seven calendar
// days, newest day first. One bounded count per day keeps the query portable
// across sqlite and postgres.
func (e *Engine) dailyCounts(ctx context.Context, scope StatsScope, now time.Time) ([]DailyCount, error) {
	counts := make([]DailyCount, 0, DailyCountDays)

	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	for i := 0; i < DailyCountDays; i++ {
		from := day.AddDate(0, 0, -i)
		to := from.AddDate(0, 0, 1)

		n, err := e.store.CountBetween(ctx, scope, from, to)
		if err != nil {
			return nil, err
		}
		counts = append(counts, DailyCount{Date: from.Format("2006-01-02"), Count: n})
	}
	return counts, nil
}

// Percentage computes an integer percentage of part over total, reporting 0
// rather than dividing by zero.
func Percentage(part, total int64) int64 {
	if total == 0 {
		return 0
	}
	return part * 100 / total
}
