package hours

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestWeekEnding(t *testing.T) {
	tests := []struct {
		name string
		year int
		week int
		want time.Time
	}{
		// 2024-01-01 is a Monday: week one starts that day.
		{"jan 1 on monday", 2024, 1, date(2024, time.January, 6)},
		{"week ten", 2024, 10, date(2024, time.March, 9)},
		// 2020-01-01 is a Wednesday: anchor moves back into December.
		{"jan 1 on wednesday", 2020, 1, date(2020, time.January, 4)},
		// 2022-01-01 is a Saturday: anchor moves forward to Monday the 3rd.
		{"jan 1 on saturday", 2022, 1, date(2022, time.January, 8)},
		// 2021-01-01 is a Friday.
		{"jan 1 on friday", 2021, 1, date(2021, time.January, 9)},
		{"last week of 2021", 2021, 52, date(2022, time.January, 1)},
		{"53 week year", 2020, 53, date(2021, time.January, 2)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, WeekEnding(tt.year, tt.week, time.UTC))
		})
	}
}

func TestWeekBucketIsStableAcrossAWeek(t *testing.T) {
	monday := date(2024, time.March, 4)
	want := WeekBucket(monday)
	for i := 0; i < 7; i++ {
		assert.Equal(t, want, WeekBucket(monday.AddDate(0, 0, i).Add(13*time.Hour)), "day %d", i)
	}
	assert.NotEqual(t, want, WeekBucket(monday.AddDate(0, 0, 7)))
	assert.NotEqual(t, want, WeekBucket(monday.AddDate(0, 0, -1)))
}

func TestWeekBucketYearBoundaries(t *testing.T) {
	// 2022 opens on a Saturday: Jan 1-2 still belong to 2021's last week,
	// Jan 3 starts the shifted Monday-anchored week one.
	assert.Equal(t, date(2022, time.January, 1), WeekBucket(date(2022, time.January, 1)))
	assert.Equal(t, date(2022, time.January, 1), WeekBucket(date(2022, time.January, 2)))
	assert.Equal(t, date(2022, time.January, 8), WeekBucket(date(2022, time.January, 3)))
	assert.Equal(t, date(2022, time.January, 8), WeekBucket(date(2022, time.January, 5)))

	// 2024-12-30 is in ISO week 1 of 2025.
	assert.Equal(t, date(2025, time.January, 4), WeekBucket(date(2024, time.December, 30)))
}

func TestWeekRange(t *testing.T) {
	from, to := WeekRange(date(2024, time.March, 9))
	assert.Equal(t, date(2024, time.March, 4), from)
	assert.Equal(t, date(2024, time.March, 10), to)
}

func TestDayAndSameDay(t *testing.T) {
	at := time.Date(2024, time.March, 4, 23, 59, 59, 0, time.UTC)
	assert.Equal(t, date(2024, time.March, 4), Day(at))
	assert.True(t, SameDay(at, date(2024, time.March, 4)))
	assert.False(t, SameDay(at, date(2024, time.March, 5)))
}
