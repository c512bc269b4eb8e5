package models

import (
	"time"

	"gorm.io/gorm"
)

// SignalTracking is one price check recorded against a signal. Rows are only
// ever appended; the trail is the audit history backing the published results.
type SignalTracking struct {
	gorm.Model
	SignalID      uint `gorm:"index"`
	Price         float64
	PnlPercent    float64
	StatusAtCheck SignalStatus
	CheckedAt     time.Time
}
