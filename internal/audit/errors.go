package audit

import (
	"errors"
	"strings"
)

var (
	// ErrEventNotFound is returned when an event id does not exist.
	ErrEventNotFound = errors.New("audit event not found")
	// ErrActorNotFound is returned when a scoped actor does not exist.
	// Distinct from an actor that simply has no events.
	ErrActorNotFound = errors.New("actor not found")
)

// FieldError describes one invalid filter field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries field-level messages for malformed query parameters
type ValidationError struct {
	Fields []FieldError `json:"fields"`
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Field + ": " + f.Message
	}
	return "invalid query: " + strings.Join(msgs, "; ")
}

// Add appends one field-level message
func (e *ValidationError) Add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}
