package hours

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/balkashynov/tally/internal/apperr"
)

func TestRoundSeconds(t *testing.T) {
	tests := []struct {
		name    string
		elapsed int64
		want    string
	}{
		{"zero still bills the floor", 0, "0.1"},
		{"just under one unit", 359, "0.1"},
		{"exactly one unit", 360, "0.1"},
		{"just over one unit", 361, "0.1"},
		{"half a unit rounds up", 540, "0.2"},
		{"just under half a unit rounds down", 539, "0.1"},
		{"one hour", 3600, "1.0"},
		{"63 minutes", 3780, "1.1"},
		{"93 minutes", 93 * 60, "1.6"},
		{"eight hours and two minutes", 8*3600 + 120, "8.0"},
		{"negative clamps to the floor", -10, "0.1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RoundSeconds(tt.elapsed).String())
		})
	}
}

func TestRoundDropsSubSeconds(t *testing.T) {
	assert.Equal(t, Tenths(10), Round(time.Hour+999*time.Millisecond))
	assert.Equal(t, Tenths(1), Round(4*time.Minute))
}

func TestScenarioClockTimes(t *testing.T) {
	day := time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC)
	in := day.Add(9 * time.Hour)

	assert.Equal(t, "0.1", Round(day.Add(9*time.Hour+4*time.Minute).Sub(in)).String())
	assert.Equal(t, "1.6", Round(day.Add(10*time.Hour+33*time.Minute).Sub(in)).String())
}

func TestNearestHasNoFloor(t *testing.T) {
	assert.Equal(t, Tenths(0), Nearest(0))
	assert.Equal(t, Tenths(0), Nearest(179))
	assert.Equal(t, Tenths(1), Nearest(180))
}

func TestTenthsString(t *testing.T) {
	assert.Equal(t, "0.0", Tenths(0).String())
	assert.Equal(t, "12.3", Tenths(123).String())
	assert.Equal(t, "-0.5", Tenths(-5).String())
	assert.InDelta(t, 1.6, Tenths(16).Hours(), 1e-9)
}

func TestParseTenths(t *testing.T) {
	tests := []struct {
		in   string
		want Tenths
	}{
		{"1.6", 16},
		{"2", 20},
		{" 0.1 ", 1},
		{"1.25", 13},
		{"1.24", 12},
		{"1.05", 11},
		{".5", 5},
		{"3.", 30},
		{"1.999", 20},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTenths(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, bad := range []string{"", "abc", "-1", "-0.5", "-.5", "-0", "1.a", "+2", "1,5", "99999999999999999"} {
		t.Run("invalid "+bad, func(t *testing.T) {
			_, err := ParseTenths(bad)
			require.Error(t, err)
			assert.True(t, apperr.IsValidation(err))
		})
	}
}

func TestAmountCents(t *testing.T) {
	assert.Equal(t, int64(7200), AmountCents(16, 4500)) // 1.6h at $45.00
	assert.Equal(t, int64(333), AmountCents(1, 3333))   // 0.1h at $33.33 -> 333.3
	assert.Equal(t, int64(334), AmountCents(1, 3335))   // 333.5 rounds up
	assert.Equal(t, int64(0), AmountCents(10, 0))
}

func TestSpan(t *testing.T) {
	at := func(h, m int) time.Time { return time.Date(0, 1, 1, h, m, 0, 0, time.UTC) }

	assert.Equal(t, "1.5", Span(at(9, 0), at(10, 30)).String())
	assert.Equal(t, "1.6", Span(at(9, 0), at(10, 33)).String())
	assert.Equal(t, "2.0", Span(at(23, 0), at(1, 0)).String())
	assert.Equal(t, "0.0", Span(at(9, 0), at(9, 2)).String())
}

type fakeSession struct {
	job    string
	at     time.Time
	tenths Tenths
	open   bool
}

func (f fakeSession) BilledJob() string   { return f.job }
func (f fakeSession) BilledAt() time.Time { return f.at }
func (f fakeSession) BilledTenths() (Tenths, bool) {
	return f.tenths, !f.open
}

func TestJobTotal(t *testing.T) {
	mon := time.Date(2024, time.March, 4, 9, 0, 0, 0, time.UTC)
	sessions := []fakeSession{
		{job: "a", at: mon, tenths: 16},
		{job: "a", at: mon.Add(3 * time.Hour), tenths: 1},
		{job: "b", at: mon, tenths: 40},
		{job: "a", at: mon.AddDate(0, 0, 1), tenths: 5},
		{job: "a", at: mon.AddDate(0, 0, 1), open: true},
	}

	assert.Equal(t, Tenths(22), JobTotal("a", sessions))
	assert.Equal(t, Tenths(17), JobTotal("a", sessions, On(mon)))
	assert.Equal(t, Tenths(40), JobTotal("b", sessions))
	assert.Equal(t, Tenths(0), JobTotal("missing", sessions))
	assert.Equal(t, Tenths(62), Sum(sessions))
}

func TestJobTotalOrderInvariantAndMonotonic(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	base := time.Date(2024, time.January, 1, 8, 0, 0, 0, time.UTC)

	var sessions []fakeSession
	var previous Tenths
	for i := 0; i < 50; i++ {
		sessions = append(sessions, fakeSession{
			job:    "a",
			at:     base.Add(time.Duration(i) * time.Hour),
			tenths: RoundSeconds(rng.Int63n(4 * 3600)),
		})
		total := JobTotal("a", sessions)
		require.GreaterOrEqual(t, total, previous)
		previous = total
	}

	shuffled := append([]fakeSession(nil), sessions...)
	rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
	assert.Equal(t, JobTotal("a", sessions), JobTotal("a", shuffled))
}

func TestFilters(t *testing.T) {
	day := time.Date(2024, time.March, 6, 0, 0, 0, 0, time.UTC)
	assert.True(t, On(day)(day.Add(23*time.Hour)))
	assert.False(t, On(day)(day.Add(24*time.Hour)))

	weekEnding := time.Date(2024, time.March, 9, 0, 0, 0, 0, time.UTC)
	assert.True(t, InWeek(weekEnding)(time.Date(2024, time.March, 4, 8, 0, 0, 0, time.UTC)))
	assert.True(t, InWeek(weekEnding)(time.Date(2024, time.March, 10, 8, 0, 0, 0, time.UTC)))
	assert.False(t, InWeek(weekEnding)(time.Date(2024, time.March, 11, 8, 0, 0, 0, time.UTC)))

	assert.True(t, Between(day, day.AddDate(0, 0, 1))(day))
	assert.False(t, Between(day, day.AddDate(0, 0, 1))(day.AddDate(0, 0, 1)))
}
