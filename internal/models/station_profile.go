package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StationProfile holds the backup settings for a single station
type StationProfile struct {
	ID             uuid.UUID      `gorm:"type:text;primary_key" json:"id"`
	StationID      uuid.UUID      `gorm:"type:text;not null;uniqueIndex" json:"station_id"`
	Station        Station        `gorm:"foreignKey:StationID" json:"station,omitempty"`
	BackupSchedule string         `gorm:"not null;default:'0 2 * * *'" json:"backup_schedule"`
	RetentionDays  int            `gorm:"not null;default:30" json:"retention_days"`
	Notify         bool           `gorm:"default:true" json:"notify"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate hook to generate UUID
func (p *StationProfile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
