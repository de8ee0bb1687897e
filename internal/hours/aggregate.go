package hours

import "time"

// Billable is the shape the engine needs from a ledger session.
type Billable interface {
	// BilledJob is the owning job's stable id.
	BilledJob() string
	// BilledAt is the clock-in time. A session that crosses midnight is
	// billed entirely to this day.
	BilledAt() time.Time
	// BilledTenths returns the rounded hours and false while the session is
	// still open.
	BilledTenths() (Tenths, bool)
}

// Filter selects sessions by their billing time.
type Filter func(billedAt time.Time) bool

// On keeps sessions billed on the calendar date of day.
func On(day time.Time) Filter {
	return func(at time.Time) bool {
		return SameDay(day, at.In(day.Location()))
	}
}

// InWeek keeps sessions whose billing date falls in the bucket ending on
// weekEnding.
func InWeek(weekEnding time.Time) Filter {
	end := Day(weekEnding)
	return func(at time.Time) bool {
		return WeekBucket(Day(at.In(end.Location()))).Equal(end)
	}
}

// Between keeps sessions billed in [from, to).
func Between(from, to time.Time) Filter {
	return func(at time.Time) bool {
		return !at.Before(from) && at.Before(to)
	}
}

// Sum totals the closed sessions in items that pass every filter, ignoring
// job identity.
func Sum[B Billable](items []B, filters ...Filter) Tenths {
	var total int64
	for _, it := range items {
		t, closed := it.BilledTenths()
		if !closed || !keep(it.BilledAt(), filters) {
			continue
		}
		total += int64(t)
	}
	// Each term already sits on the tenth grid; re-rounding keeps the total
	// there too when hundredths ever enter the sum.
	return RoundHundredths(total * 10)
}

// JobTotal sums the closed sessions of one job, optionally narrowed by
// filters. The result does not depend on the order of items and never
// decreases as sessions are added.
func JobTotal[B Billable](jobID string, items []B, filters ...Filter) Tenths {
	return Sum(ForJob(jobID, items), filters...)
}

// ForJob returns the items owned by jobID, in their original order.
func ForJob[B Billable](jobID string, items []B) []B {
	out := make([]B, 0, len(items))
	for _, it := range items {
		if it.BilledJob() == jobID {
			out = append(out, it)
		}
	}
	return out
}

func keep(at time.Time, filters []Filter) bool {
	for _, f := range filters {
		if f != nil && !f(at) {
			return false
		}
	}
	return true
}
