// Package hours converts raw clock-in/clock-out intervals into billable
// tenths of an hour and groups them into days and week buckets.
//
// Everything here is pure: callers pass the current time in, nothing is read
// from the clock or the store.
package hours

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/balkashynov/tally/internal/apperr"
)

const (
	// UnitSeconds is the billing increment: six minutes, one tenth of an hour.
	UnitSeconds = 360
	// MinimumBilled is the floor applied to every session.
	MinimumBilled Tenths = 1
)

// Tenths is a duration in tenths of an hour. It is the only precision the
// engine ever exposes.
type Tenths int64

// String renders t with exactly one fractional digit, e.g. "1.6".
func (t Tenths) String() string {
	sign := ""
	if t < 0 {
		sign = "-"
		t = -t
	}
	return fmt.Sprintf("%s%d.%d", sign, int64(t)/10, int64(t)%10)
}

// Hours returns t as a floating point hour count, for display only.
func (t Tenths) Hours() float64 {
	return float64(t) / 10
}

// roundHalfUp rounds a non-negative n to the nearest multiple of base,
// ties going up.
func roundHalfUp(n, base int64) int64 {
	half := base / 2
	return n + half - ((n + half) % base)
}

// Nearest rounds elapsed seconds to the nearest six-minute unit without
// applying the billing floor.
func Nearest(elapsedSeconds int64) Tenths {
	if elapsedSeconds < 0 {
		elapsedSeconds = 0
	}
	return Tenths(roundHalfUp(elapsedSeconds, UnitSeconds) / UnitSeconds)
}

// RoundSeconds is the billing rule for one session: round to the nearest six
// minutes, half up, and never bill less than one tenth.
func RoundSeconds(elapsedSeconds int64) Tenths {
	t := Nearest(elapsedSeconds)
	if t < MinimumBilled {
		return MinimumBilled
	}
	return t
}

// Round applies RoundSeconds to a duration. Sub-second remainders are dropped.
func Round(elapsed time.Duration) Tenths {
	return RoundSeconds(int64(elapsed / time.Second))
}

// RoundHundredths re-rounds a value expressed in hundredths of an hour to the
// nearest tenth, half up.
func RoundHundredths(h int64) Tenths {
	if h < 0 {
		return -Tenths(roundHalfUp(-h, 10) / 10)
	}
	return Tenths(roundHalfUp(h, 10) / 10)
}

// ParseTenths reads an hour count such as "1.6", "2" or "1.25". Digits past
// the first decimal are rounded half up.
func ParseTenths(s string) (Tenths, error) {
	raw := s
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, apperr.Invalid("hours", raw, "value is empty")
	}
	whole, frac, _ := strings.Cut(s, ".")
	if whole == "" {
		whole = "0"
	}
	w, err := strconv.ParseInt(whole, 10, 64)
	if err != nil || w < 0 || strings.HasPrefix(whole, "+") || strings.HasPrefix(whole, "-") {
		return 0, apperr.Invalid("hours", raw, "must be a non-negative decimal")
	}
	if w > math.MaxInt64/1000 {
		return 0, apperr.Invalid("hours", raw, "is too large")
	}
	for _, r := range frac {
		if r < '0' || r > '9' {
			return 0, apperr.Invalid("hours", raw, "must be a non-negative decimal")
		}
	}
	// Keep two fractional digits, enough to decide the tenth, and round half up.
	frac = (frac + "00")[:2]
	f, _ := strconv.ParseInt(frac, 10, 64)
	return RoundHundredths(w*100 + f), nil
}

// AmountCents prices t at an hourly rate given in cents, rounding half up to
// the cent.
func AmountCents(t Tenths, rateCents int64) int64 {
	if t <= 0 || rateCents <= 0 {
		return 0
	}
	return roundHalfUp(int64(t)*rateCents, 10) / 10
}

// Span is the wall-clock calculator: the rounded time between two clock
// readings on the same day. An end earlier than the start is taken to be on
// the following day.
func Span(start, end time.Time) Tenths {
	d := end.Sub(start)
	if d < 0 {
		d += 24 * time.Hour
	}
	return Nearest(int64(d / time.Second))
}
