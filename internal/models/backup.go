package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BackupStatus represents the lifecycle state of a backup
type BackupStatus string

const (
	BackupStatusPending   BackupStatus = "pending"
	BackupStatusRunning   BackupStatus = "running"
	BackupStatusCompleted BackupStatus = "completed"
	BackupStatusFailed    BackupStatus = "failed"
)

// Valid reports whether s is a known backup status.
func (s BackupStatus) Valid() bool {
	switch s {
	case BackupStatusPending, BackupStatusRunning, BackupStatusCompleted, BackupStatusFailed:
		return true
	}
	return false
}

// Backup represents one backup run for a station
type Backup struct {
	ID          uuid.UUID      `gorm:"type:text;primary_key" json:"id"`
	StationID   uuid.UUID      `gorm:"type:text;not null;index" json:"station_id"`
	Station     Station        `gorm:"foreignKey:StationID" json:"station,omitempty"`
	Status      BackupStatus   `gorm:"not null;default:pending;index" json:"status"`
	SizeBytes   int64          `json:"size_bytes"`
	Error       string         `json:"error,omitempty"`
	StartedAt   *time.Time     `json:"started_at,omitempty"`
	CompletedAt *time.Time     `json:"completed_at,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate hook to generate UUID
func (b *Backup) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}
