package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Reminder represents a scheduled note for a station, assigned to a staff member
type Reminder struct {
	ID         uuid.UUID      `gorm:"type:text;primary_key" json:"id"`
	StationID  uuid.UUID      `gorm:"type:text;not null;index" json:"station_id"`
	Station    Station        `gorm:"foreignKey:StationID" json:"station,omitempty"`
	AssigneeID *uuid.UUID     `gorm:"type:text;index" json:"assignee_id"`
	Message    string         `gorm:"not null" json:"message"`
	DueAt      time.Time      `gorm:"not null;index" json:"due_at"`
	Sent       bool           `gorm:"default:false" json:"sent"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate hook to generate UUID
func (r *Reminder) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
