package models

import (
	"time"

	"github.com/balkashynov/tally/internal/hours"
)

// Session is one clock-in/clock-out interval against a job. A nil ClockOut
// marks the session as open.
type Session struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	JobID    string        `gorm:"index;not null" json:"job_id"`
	SubTask  string        `json:"sub_task"`
	ClockIn  time.Time     `gorm:"index;not null" json:"clock_in"`
	ClockOut *time.Time    `gorm:"index" json:"clock_out"`
	Rounded  *hours.Tenths `json:"rounded_tenths"` // set once, on close

	// Edited marks a session whose times were changed after closing.
	Edited bool `gorm:"default:false" json:"edited"`
	// Imported marks a session reconstructed from a CSV export.
	Imported bool `gorm:"default:false" json:"imported"`
}

// Open reports whether the session has not been clocked out yet.
func (s Session) Open() bool {
	return s.ClockOut == nil
}

// Elapsed returns the time between clock-in and clock-out, or now when the
// session is still open.
func (s Session) Elapsed(now time.Time) time.Duration {
	if s.ClockOut != nil {
		return s.ClockOut.Sub(s.ClockIn)
	}
	return now.Sub(s.ClockIn)
}

func (s Session) BilledJob() string   { return s.JobID }
func (s Session) BilledAt() time.Time { return s.ClockIn }

func (s Session) BilledTenths() (hours.Tenths, bool) {
	if s.ClockOut == nil || s.Rounded == nil {
		return 0, false
	}
	return *s.Rounded, true
}
