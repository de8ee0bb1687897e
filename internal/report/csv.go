package report

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/balkashynov/tally/internal/apperr"
	"github.com/balkashynov/tally/internal/hours"
	"github.com/balkashynov/tally/internal/models"
)

// DateFormat is the ISO date layout used in the CSV file.
const DateFormat = "2006-01-02"

// Header is the first row of every export.
var Header = []string{"Id", "Job Name", "Hours Worked", "Date", "Week Ending"}

// Entry is one exported timesheet row. Id carries the job code.
type Entry struct {
	Code       string
	Name       string
	Hours      hours.Tenths
	Date       time.Time
	WeekEnding time.Time
}

// Entries flattens the closed sessions into export rows, in ledger order.
// Dates are taken in loc.
func Entries(sessions []models.Session, jobs map[string]models.Job, loc *time.Location) []Entry {
	entries := make([]Entry, 0, len(sessions))
	for _, s := range sessions {
		t, closed := s.BilledTenths()
		if !closed {
			continue
		}
		job := jobs[s.JobID]
		date := hours.Day(s.BilledAt().In(loc))
		entries = append(entries, Entry{
			Code:       job.Code,
			Name:       job.Name,
			Hours:      t,
			Date:       date,
			WeekEnding: hours.WeekBucket(date),
		})
	}
	return entries
}

// ExportCSV writes the header and one row per entry, returning the number of
// data rows written.
func ExportCSV(w io.Writer, entries []Entry) (int, error) {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return 0, err
	}
	for i, e := range entries {
		record := []string{
			e.Code,
			e.Name,
			e.Hours.String(),
			e.Date.Format(DateFormat),
			e.WeekEnding.Format(DateFormat),
		}
		if err := cw.Write(record); err != nil {
			return i, err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return 0, err
	}
	return len(entries), nil
}

// ParseCSV reads an export back. The header must match exactly; a row with a
// bad value fails with a ValidationError naming its line.
func ParseCSV(r io.Reader, loc *time.Location) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(Header)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, apperr.Invalid("csv", "", "file is empty")
	}
	if err != nil {
		return nil, csvError(err)
	}
	header[0] = strings.TrimPrefix(header[0], "\ufeff")
	if strings.Join(header, ",") != strings.Join(Header, ",") {
		return nil, apperr.Invalid("csv header", strings.Join(header, ","), "expected "+strings.Join(Header, ","))
	}

	var entries []Entry
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, csvError(err)
		}
		line, _ := cr.FieldPos(0)

		entry, err := parseRecord(record, loc)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func parseRecord(record []string, loc *time.Location) (Entry, error) {
	var e Entry
	e.Code = strings.TrimSpace(record[0])
	e.Name = strings.TrimSpace(record[1])
	if e.Code == "" {
		return e, apperr.Invalid("Id", record[0], "value is empty")
	}
	if e.Name == "" {
		return e, apperr.Invalid("Job Name", record[1], "value is empty")
	}

	t, err := hours.ParseTenths(record[2])
	if err != nil {
		return e, err
	}
	e.Hours = t

	if e.Date, err = time.ParseInLocation(DateFormat, strings.TrimSpace(record[3]), loc); err != nil {
		return e, apperr.Invalid("Date", record[3], "use YYYY-MM-DD")
	}
	if e.WeekEnding, err = time.ParseInLocation(DateFormat, strings.TrimSpace(record[4]), loc); err != nil {
		return e, apperr.Invalid("Week Ending", record[4], "use YYYY-MM-DD")
	}
	if want := hours.WeekBucket(e.Date); !want.Equal(e.WeekEnding) {
		return e, apperr.Invalid("Week Ending", record[4], "date "+record[3]+" belongs to week ending "+want.Format(DateFormat))
	}
	return e, nil
}

func csvError(err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return apperr.Invalid("csv", fmt.Sprintf("line %d", pe.Line), pe.Err.Error())
	}
	return err
}
