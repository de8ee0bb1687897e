// Package report projects the session ledger into daily and weekly
// timesheets and the CSV export format.
package report

import (
	"sort"
	"time"

	"github.com/balkashynov/tally/internal/hours"
	"github.com/balkashynov/tally/internal/models"
)

// Row is one job's line in a timesheet.
type Row struct {
	JobID       string
	Code        string
	Name        string
	SubTask     string // from the period's most recent session
	Hours       hours.Tenths
	AmountCents int64
}

// Report is a daily or weekly timesheet.
type Report struct {
	Title string
	From  time.Time // first day, inclusive
	To    time.Time // last day, inclusive
	Rows  []Row

	Total      hours.Tenths
	TotalCents int64
}

// Daily builds the timesheet for the calendar date of day, in day's location.
// Only closed sessions are billed; a session belongs to the day it was
// clocked in on.
func Daily(day time.Time, sessions []models.Session, jobs map[string]models.Job) Report {
	day = hours.Day(day)
	r := project(sessions, jobs, hours.On(day))
	r.Title = "Daily timesheet " + day.Format("Mon 2006-01-02")
	r.From, r.To = day, day
	return r
}

// Weekly builds the timesheet for the week bucket ending on weekEnding.
func Weekly(weekEnding time.Time, sessions []models.Session, jobs map[string]models.Job) Report {
	weekEnding = hours.Day(weekEnding)
	r := project(sessions, jobs, hours.InWeek(weekEnding))
	r.Title = "Weekly timesheet, week ending " + weekEnding.Format("2006-01-02")
	r.From, r.To = hours.WeekRange(weekEnding)
	return r
}

func project(sessions []models.Session, jobs map[string]models.Job, filter hours.Filter) Report {
	type latest struct {
		at      time.Time
		id      uint
		subTask string
	}
	seen := map[string]latest{}
	var order []string
	for _, s := range sessions {
		if _, closed := s.BilledTenths(); !closed || !filter(s.BilledAt()) {
			continue
		}
		prev, ok := seen[s.JobID]
		if !ok {
			order = append(order, s.JobID)
		}
		if !ok || s.ClockIn.After(prev.at) || (s.ClockIn.Equal(prev.at) && s.ID > prev.id) {
			seen[s.JobID] = latest{at: s.ClockIn, id: s.ID, subTask: s.SubTask}
		}
	}

	var r Report
	for _, jobID := range order {
		job := jobs[jobID]
		total := hours.JobTotal(jobID, sessions, filter)
		row := Row{
			JobID:       jobID,
			Code:        job.Code,
			Name:        job.Name,
			SubTask:     seen[jobID].subTask,
			Hours:       total,
			AmountCents: hours.AmountCents(total, job.RateCents),
		}
		if row.Code == "" {
			row.Code = "?"
		}
		r.Rows = append(r.Rows, row)
		r.TotalCents += row.AmountCents
	}
	sort.SliceStable(r.Rows, func(i, j int) bool {
		if r.Rows[i].Code != r.Rows[j].Code {
			return r.Rows[i].Code < r.Rows[j].Code
		}
		return r.Rows[i].Name < r.Rows[j].Name
	})
	r.Total = hours.Sum(sessions, filter)
	return r
}
