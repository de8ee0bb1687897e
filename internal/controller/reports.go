package controller

import (
	"io"
	"time"

	"github.com/balkashynov/tally/internal/db"
	"github.com/balkashynov/tally/internal/hours"
	"github.com/balkashynov/tally/internal/models"
	"github.com/balkashynov/tally/internal/report"
)

// Location is the timezone reports and exports are computed in.
func (c *Controller) Location() *time.Location {
	return c.now().Location()
}

// Daily returns the timesheet for the calendar date of day.
func (c *Controller) Daily(day time.Time) (report.Report, error) {
	day = hours.Day(day.In(c.Location()))
	sessions, jobs, err := c.window("daily report", day, day.AddDate(0, 0, 1))
	if err != nil {
		return report.Report{}, err
	}
	return report.Daily(day, sessions, jobs), nil
}

// Weekly returns the timesheet for the week bucket holding day.
func (c *Controller) Weekly(day time.Time) (report.Report, error) {
	weekEnding := hours.WeekBucket(hours.Day(day.In(c.Location())))
	from, to := hours.WeekRange(weekEnding)
	sessions, jobs, err := c.window("weekly report", from, to.AddDate(0, 0, 1))
	if err != nil {
		return report.Report{}, err
	}
	return report.Weekly(weekEnding, sessions, jobs), nil
}

func (c *Controller) window(op string, from, to time.Time) ([]models.Session, map[string]models.Job, error) {
	sessions, err := c.ledger.SessionsInRange(from, to)
	if err != nil {
		c.logFailure(op, err)
		return nil, nil, err
	}
	jobs, err := c.ledger.JobIndex()
	if err != nil {
		c.logFailure(op, err)
		return nil, nil, err
	}
	return sessions, jobs, nil
}

// Export writes the whole ledger as CSV and returns the row count.
func (c *Controller) Export(w io.Writer) (int, error) {
	sessions, err := c.ledger.AllSessions()
	if err != nil {
		c.logFailure("export", err)
		return 0, err
	}
	jobs, err := c.ledger.JobIndex()
	if err != nil {
		c.logFailure("export", err)
		return 0, err
	}
	n, err := report.ExportCSV(w, report.Entries(sessions, jobs, c.Location()))
	if err != nil {
		c.logFailure("export", err)
		return n, err
	}
	c.log.Info("ledger exported", "rows", n)
	return n, nil
}

// Import reads an export and adds its rows to the ledger as closed sessions.
func (c *Controller) Import(r io.Reader) (int, error) {
	entries, err := report.ParseCSV(r, c.Location())
	if err != nil {
		c.logFailure("import", err)
		return 0, err
	}
	imports := make([]db.ImportEntry, 0, len(entries))
	for _, e := range entries {
		imports = append(imports, db.ImportEntry{Code: e.Code, Name: e.Name, Date: e.Date, Hours: e.Hours})
	}
	n, err := c.ledger.ImportEntries(imports)
	if err != nil {
		c.logFailure("import", err)
		return 0, err
	}
	return n, nil
}
