package audit

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Event is one immutable audit record: who did what to which resource,
// from where, and when. Events are append-only; nothing in the system
// updates or deletes them.
//
// ActorID and TargetID are deliberately plain indexed columns with no
// foreign key constraint: events must outlive both their actor and their
// target, so deleting a user or a station never cascades into history.
type Event struct {
	ID            uuid.UUID `gorm:"type:text;primary_key" json:"id"`
	ActorID       uuid.UUID `gorm:"type:text;not null;index" json:"actor_id"`
	Action        string    `gorm:"not null;index" json:"action"`
	TargetType    string    `gorm:"not null;index" json:"target_type"`
	TargetID      string    `gorm:"not null;index" json:"target_id"`
	OccurredAt    time.Time `gorm:"not null;index:,sort:desc" json:"occurred_at"`
	SourceAddress string    `json:"source_address,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// TableName specifies the table name
func (Event) TableName() string {
	return "audit_events"
}

// BeforeCreate hook to generate UUID
func (e *Event) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
