package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Station status values
const (
	StationStatusActive      = "active"
	StationStatusOffline     = "offline"
	StationStatusMaintenance = "maintenance"
	StationStatusRetired     = "retired"
)

// Station represents a physical station tracked by the system
type Station struct {
	ID         uuid.UUID      `gorm:"type:text;primary_key" json:"id"`
	Name       string         `gorm:"not null;index" json:"name"`
	DeviceCode string         `gorm:"uniqueIndex;not null" json:"device_code"`
	Location   string         `json:"location"`
	Status     string         `gorm:"not null;default:active;index" json:"status"`
	LastSeenAt *time.Time     `json:"last_seen_at,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate hook to generate UUID
func (s *Station) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
