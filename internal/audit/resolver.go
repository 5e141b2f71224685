package audit

import (
	"encoding/json"
	"log/slog"
	"strconv"

	"github.com/gin-gonic/gin"
)

// UnknownTarget is recorded when no resolution strategy produces an id.
const UnknownTarget = "unknown"

// ResolverFunc lets a route supply its own target id, for operations where
// the handler already knows the canonical id. It receives the request context
// and the raw response payload and returns the id, or "" to fall through to
// the default resolution order.
type ResolverFunc func(c *gin.Context, payload []byte) string

// Path parameters checked, in order, when no custom resolver matches.
var targetPathParams = []string{
	"id",
	"stationId",
	"userId",
	"profileId",
	"backupId",
	"reminderId",
	"roleId",
}

// Nested payload locations checked, in order, as a last resort. Create
// operations have no path parameter for the new resource, so its id is
// pulled out of the response body instead.
var targetPayloadPaths = [][]string{
	{"data", "id"},
	{"data", "user", "id"},
	{"data", "station", "id"},
	{"data", "profile", "id"},
	{"data", "backup", "id"},
	{"data", "reminder", "id"},
	{"data", "role", "id"},
}

// ResolveTarget determines which entity a completed operation affected.
// Precedence: custom resolver, then known path parameters, then a walk of
// the response payload, then UnknownTarget. Resolution never fails: a
// malformed payload or a panicking custom resolver degrades to the next
// strategy rather than disturbing the request that triggered it.
func ResolveTarget(c *gin.Context, payload []byte, custom ResolverFunc) string {
	if custom != nil {
		if id := safeResolve(custom, c, payload); id != "" {
			return id
		}
	}

	for _, name := range targetPathParams {
		if v := c.Param(name); v != "" {
			return v
		}
	}

	if id := resolveFromPayload(payload); id != "" {
		return id
	}

	return UnknownTarget
}

// safeResolve shields the caller from a misbehaving custom resolver.
func safeResolve(fn ResolverFunc, c *gin.Context, payload []byte) (id string) {
	defer func() {
		if r := recover(); r != nil {
			slog.Warn("custom target resolver panicked", "panic", r)
			id = ""
		}
	}()
	return fn(c, payload)
}

// resolveFromPayload walks the serialized response body looking for an id at
// the candidate locations. Returns "" when the payload is empty, not JSON,
// or has no id at any candidate path.
func resolveFromPayload(payload []byte) string {
	if len(payload) == 0 {
		return ""
	}

	var doc map[string]any
	if err := json.Unmarshal(payload, &doc); err != nil {
		return ""
	}

	for _, path := range targetPayloadPaths {
		if id, ok := lookupPath(doc, path); ok {
			return id
		}
	}
	return ""
}

// lookupPath descends nested objects along path and stringifies the leaf.
func lookupPath(doc map[string]any, path []string) (string, bool) {
	current := any(doc)
	for _, key := range path {
		obj, ok := current.(map[string]any)
		if !ok {
			return "", false
		}
		current, ok = obj[key]
		if !ok {
			return "", false
		}
	}
	return stringifyID(current)
}

// stringifyID converts a leaf payload value into a target id. Ids arrive as
// JSON strings or numbers depending on the resource.
func stringifyID(v any) (string, bool) {
	switch id := v.(type) {
	case string:
		if id == "" {
			return "", false
		}
		return id, true
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64), true
	case json.Number:
		return id.String(), true
	default:
		return "", false
	}
}
