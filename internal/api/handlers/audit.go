package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stationdesk/stationdesk/internal/audit"
)

// AuditHandler exposes the activity log read API. All routes are admin-only
// and all writes happen elsewhere; this handler never mutates events.
type AuditHandler struct {
	engine *audit.Engine

	// statsWindow is the configured trailing window for statistics, used
	// when the request does not carry windowDays. Zero means the engine
	// default.
	statsWindow int
}

func NewAuditHandler(engine *audit.Engine, statsWindow int) *AuditHandler {
	return &AuditHandler{engine: engine, statsWindow: statsWindow}
}

// parseFilter reads listing query parameters. Malformed values are collected
// into a single ValidationError so the client sees every problem at once.
func parseFilter(c *gin.Context) (audit.Filter, error) {
	var f audit.Filter
	verr := &audit.ValidationError{}

	if raw := c.Query("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			verr.Add("page", "must be an integer")
		} else {
			f.Page = n
		}
	}
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			verr.Add("limit", "must be an integer")
		} else {
			f.Limit = n
		}
	}
	if raw := c.Query("actorId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			verr.Add("actorId", "must be a valid UUID")
		} else {
			f.ActorID = &id
		}
	}

	f.Action = c.Query("action")
	f.TargetType = c.Query("targetType")
	f.TargetID = c.Query("targetId")
	f.Search = c.Query("search")

	if raw := c.Query("startDate"); raw != "" {
		t, err := parseDate(raw, false)
		if err != nil {
			verr.Add("startDate", "must be an RFC 3339 timestamp or YYYY-MM-DD date")
		} else {
			f.StartDate = &t
		}
	}
	if raw := c.Query("endDate"); raw != "" {
		t, err := parseDate(raw, true)
		if err != nil {
			verr.Add("endDate", "must be an RFC 3339 timestamp or YYYY-MM-DD date")
		} else {
			f.EndDate = &t
		}
	}

	if len(verr.Fields) > 0 {
		return f, verr
	}
	return f, nil
}

// parseDate accepts a full timestamp or a bare date. A bare end date is
// widened to the end of that day so the range is inclusive.
func parseDate(raw string, endOfDay bool) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, err
	}
	if endOfDay {
		t = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	return t.UTC(), nil
}

func writeAuditError(c *gin.Context, err error) {
	var verr *audit.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters", "fields": verr.Fields})
	case errors.Is(err, audit.ErrEventNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Audit event not found"})
	case errors.Is(err, audit.ErrActorNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "User not found"})
	default:
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to query audit events"})
	}
}

// ListEvents godoc
// @Summary List audit events
// @Description Filtered, paginated activity log, newest first
// @Tags audit
// @Security BearerAuth
// @Produce json
// @Param page query int false "Page"
// @Param limit query int false "Page size (max 100)"
// @Param actorId query string false "Filter by acting user"
// @Param action query string false "Substring match on action"
// @Param targetType query string false "Exact target type"
// @Param targetId query string false "Exact target identifier"
// @Param search query string false "Free text across action, target type and actor name"
// @Param startDate query string false "Earliest occurrence"
// @Param endDate query string false "Latest occurrence"
// @Success 200 {object} audit.EventPage
// @Failure 400 {object} map[string]interface{}
// @Router /audit-events [get]
func (h *AuditHandler) ListEvents(c *gin.Context) {
	f, err := parseFilter(c)
	if err != nil {
		writeAuditError(c, err)
		return
	}

	page, err := h.engine.List(c.Request.Context(), f)
	if err != nil {
		writeAuditError(c, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

// GetEvent godoc
// @Summary Get a single audit event
// @Tags audit
// @Security BearerAuth
// @Param id path string true "Event UUID"
// @Success 200 {object} audit.EventDetail
// @Failure 404 {object} ErrorResponse
// @Router /audit-events/{id} [get]
func (h *AuditHandler) GetEvent(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid event ID"})
		return
	}

	detail, err := h.engine.Get(c.Request.Context(), id)
	if err != nil {
		writeAuditError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"event": detail}})
}

// ListUserEvents godoc
// @Summary List one user's audit events
// @Description The user must exist; a user with no events returns an empty page
// @Tags audit
// @Security BearerAuth
// @Param userId path string true "User UUID"
// @Success 200 {object} audit.ActorEventPage
// @Failure 404 {object} ErrorResponse
// @Router /audit-events/actors/{userId} [get]
func (h *AuditHandler) ListUserEvents(c *gin.Context) {
	actorID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid user ID"})
		return
	}

	f, err := parseFilter(c)
	if err != nil {
		writeAuditError(c, err)
		return
	}

	page, err := h.engine.ListByActor(c.Request.Context(), actorID, f)
	if err != nil {
		writeAuditError(c, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

// GetStatistics godoc
// @Summary Audit activity statistics
// @Description Totals, top actions, top target types, most active users and a daily breakdown
// @Tags audit
// @Security BearerAuth
// @Produce json
// @Param actorId query string false "Scope to one acting user"
// @Param targetType query string false "Scope to one target type"
// @Param windowDays query int false "Trailing window in days (default 30)"
// @Success 200 {object} audit.Statistics
// @Failure 400 {object} map[string]interface{}
// @Router /audit-events/stats [get]
func (h *AuditHandler) GetStatistics(c *gin.Context) {
	var scope audit.StatsScope
	verr := &audit.ValidationError{}

	if raw := c.Query("actorId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			verr.Add("actorId", "must be a valid UUID")
		} else {
			scope.ActorID = &id
		}
	}
	scope.TargetType = c.Query("targetType")

	windowDays := h.statsWindow
	if raw := c.Query("windowDays"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			verr.Add("windowDays", "must be a positive integer")
		} else {
			windowDays = n
		}
	}

	if len(verr.Fields) > 0 {
		writeAuditError(c, verr)
		return
	}

	stats, err := h.engine.Statistics(c.Request.Context(), scope, windowDays)
	if err != nil {
		writeAuditError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}
