package models

import (
	"time"

	"gorm.io/gorm"
)

// Job is a billable project identified by a short, user-chosen code.
// Codes are not unique: historical data may hold several jobs with the same
// code, so JobID is the only stable identity.
type Job struct {
	ID        uint           `gorm:"primarykey" json:"-"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	JobID     string `gorm:"uniqueIndex;not null" json:"job_id"`
	Code      string `gorm:"index;not null" json:"code"`
	Name      string `gorm:"not null" json:"name"`
	RateCents int64  `gorm:"not null;default:0" json:"rate_cents"` // hourly rate
}

// Label is the short form shown in prompts and tables.
func (j Job) Label() string {
	return j.Code + " " + j.Name
}
