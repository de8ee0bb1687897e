package hours

import "time"

// weekEndOffset moves a week's Monday onto its end marker.
const weekEndOffset = 5

// Day truncates t to midnight in its own location.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// SameDay reports whether a and b fall on the same calendar date in a's
// location.
func SameDay(a, b time.Time) bool {
	return Day(a).Equal(Day(b.In(a.Location())))
}

// WeekEnding returns the end marker of week number week in year. Week one is
// anchored on the Monday of the week holding the year's first Thursday: when
// January 1st is a Friday, Saturday or Sunday the anchor moves forward to the
// next Monday, otherwise back to the preceding one.
func WeekEnding(year, week int, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	d := time.Date(year, time.January, 1, 0, 0, 0, 0, loc)
	// Monday=0 .. Sunday=6
	wd := (int(d.Weekday()) + 6) % 7
	if wd > 3 {
		d = d.AddDate(0, 0, 7-wd)
	} else {
		d = d.AddDate(0, 0, -wd)
	}
	return d.AddDate(0, 0, (week-1)*7+weekEndOffset)
}

// WeekBucket returns the week-ending date under which hours worked on date are
// reported. Dates early in January can belong to the previous year's last
// week and dates late in December to the next year's first.
func WeekBucket(date time.Time) time.Time {
	year, week := date.ISOWeek()
	return WeekEnding(year, week, date.Location())
}

// WeekRange returns the first and last calendar day of the week bucket that
// ends on weekEnding.
func WeekRange(weekEnding time.Time) (time.Time, time.Time) {
	end := Day(weekEnding)
	monday := end.AddDate(0, 0, -weekEndOffset)
	return monday, monday.AddDate(0, 0, 6)
}
