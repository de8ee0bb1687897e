package parser

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/balkashynov/tally/internal/apperr"
)

var (
	clock24Regex = regexp.MustCompile(`^(\d{1,2}):(\d{2})$`)
	clock12Regex = regexp.MustCompile(`^(\d{1,2})(?::(\d{2}))?\s*([ap])\.?m?\.?$`)
	isoDateRegex = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})$`)
	dmyDateRegex = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})$`)
)

// ParseClock reads a wall-clock time and places it on day, in day's location.
// Supported formats:
// - hh:mm, 24 hour (e.g., "09:30", "17:05")
// - h:mm am/pm (e.g., "9:30 am", "5:05PM", "5:05 p.m.")
// - h am/pm (e.g., "9 am", "5pm")
func ParseClock(input string, day time.Time) (time.Time, error) {
	raw := input
	input = strings.ToLower(strings.TrimSpace(input))
	if input == "" {
		return time.Time{}, apperr.Invalid("time", raw, "value is empty")
	}

	var hour, minute int
	if m := clock24Regex.FindStringSubmatch(input); m != nil {
		hour, _ = strconv.Atoi(m[1])
		minute, _ = strconv.Atoi(m[2])
		if hour > 23 {
			return time.Time{}, apperr.Invalid("time", raw, "hour must be between 0 and 23")
		}
	} else if m := clock12Regex.FindStringSubmatch(input); m != nil {
		hour, _ = strconv.Atoi(m[1])
		if m[2] != "" {
			minute, _ = strconv.Atoi(m[2])
		}
		if hour < 1 || hour > 12 {
			return time.Time{}, apperr.Invalid("time", raw, "hour must be between 1 and 12 with am/pm")
		}
		hour %= 12
		if m[3] == "p" {
			hour += 12
		}
	} else {
		return time.Time{}, apperr.Invalid("time", raw, "use hh:mm or h:mm am/pm")
	}

	if minute > 59 {
		return time.Time{}, apperr.Invalid("time", raw, "minutes must be between 0 and 59")
	}

	y, mo, d := day.Date()
	return time.Date(y, mo, d, hour, minute, 0, 0, day.Location()), nil
}

// ParseDate reads a calendar date relative to now.
// Supported formats:
// - yyyy-mm-dd (e.g., "2024-12-15")
// - dd/mm/yyyy (e.g., "15/12/2024")
// - today, yesterday
func ParseDate(input string, now time.Time) (time.Time, error) {
	raw := input
	input = strings.ToLower(strings.TrimSpace(input))
	loc := now.Location()

	switch input {
	case "", "today":
		y, m, d := now.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, loc), nil
	case "yesterday", "y":
		y, m, d := now.AddDate(0, 0, -1).Date()
		return time.Date(y, m, d, 0, 0, 0, 0, loc), nil
	}

	var year, month, day int
	if m := isoDateRegex.FindStringSubmatch(input); m != nil {
		year, _ = strconv.Atoi(m[1])
		month, _ = strconv.Atoi(m[2])
		day, _ = strconv.Atoi(m[3])
	} else if m := dmyDateRegex.FindStringSubmatch(input); m != nil {
		day, _ = strconv.Atoi(m[1])
		month, _ = strconv.Atoi(m[2])
		year, _ = strconv.Atoi(m[3])
	} else {
		return time.Time{}, apperr.Invalid("date", raw, "use yyyy-mm-dd or dd/mm/yyyy")
	}

	if month < 1 || month > 12 {
		return time.Time{}, apperr.Invalid("date", raw, "month must be between 1 and 12")
	}
	date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, loc)

	// Check the date survived normalisation (handles Feb 30th, etc.)
	if date.Day() != day || date.Month() != time.Month(month) || date.Year() != year {
		return time.Time{}, apperr.Invalid("date", raw, "no such calendar day")
	}
	return date, nil
}

// FormatDate renders a date the way exports and reports print it.
func FormatDate(t time.Time) string {
	return t.Format("2006-01-02")
}
