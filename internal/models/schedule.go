package models

import "time"

// IngestSchedule is a singleton row (id = 1) holding the daily trigger time.
type IngestSchedule struct {
	ID        uint64    `gorm:"primaryKey"`
	Hour      int       `gorm:"not null"`
	Minute    int       `gorm:"not null"`
	Timezone  string    `gorm:"type:varchar(64);not null;default:'UTC'"`
	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime"`
	UpdatedAt time.Time `gorm:"type:timestamptz;autoUpdateTime"`
}

func (IngestSchedule) TableName() string {
	return "ingest_schedule"
}

const (
	ScheduleSingletonID = 1

	DefaultScheduleHour     = 2
	DefaultScheduleMinute   = 0
	DefaultScheduleTimezone = "UTC"
)
