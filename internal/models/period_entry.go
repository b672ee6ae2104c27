package models

import (
	"errors"
	"time"
)

// ErrPeriodStartTaken is returned by stores when a user already has an entry
// starting on the same day.
var ErrPeriodStartTaken = errors.New("period start already logged")

const (
	FlowLight  = "light"
	FlowMedium = "medium"
	FlowHeavy  = "heavy"
)

const (
	DefaultCycleLength  = 28
	DefaultPeriodLength = 5
)

type PeriodEntry struct {
	ID        string    `gorm:"primaryKey"`
	UserID    uint      `gorm:"not null;uniqueIndex:uidx_period_user_start"`
	StartDate time.Time `gorm:"type:date;not null;uniqueIndex:uidx_period_user_start"`
	EndDate   time.Time `gorm:"type:date;not null"`
	Flow      string    `gorm:"not null;default:medium"`
	Symptoms  []string  `gorm:"serializer:json"`
	Notes     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func IsValidFlow(flow string) bool {
	switch flow {
	case FlowLight, FlowMedium, FlowHeavy:
		return true
	default:
		return false
	}
}
