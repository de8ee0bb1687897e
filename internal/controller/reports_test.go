package controller

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/balkashynov/tally/internal/apperr"
)

func TestDailyAndWeeklyReports(t *testing.T) {
	f := newFixture(t)
	c := f.controller(t)

	_, err := c.ClockIn(f.dev.JobID, "api")
	require.NoError(t, err)
	f.now = f.now.Add(93 * time.Minute)
	_, err = c.ClockOut()
	require.NoError(t, err)

	f.now = f.now.AddDate(0, 0, 1)
	_, err = c.ClockIn(f.dev.JobID, "docs")
	require.NoError(t, err)
	f.now = f.now.Add(time.Hour)
	_, err = c.ClockOut()
	require.NoError(t, err)

	daily, err := c.Daily(time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, daily.Rows, 1)
	assert.Equal(t, "1.6", daily.Total.String())
	assert.Equal(t, "api", daily.Rows[0].SubTask)

	weekly, err := c.Weekly(time.Date(2024, time.March, 7, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "2.6", weekly.Total.String())
	assert.Equal(t, "docs", weekly.Rows[0].SubTask)
	assert.Equal(t, time.Date(2024, time.March, 9, 0, 0, 0, 0, time.UTC), weekly.To.AddDate(0, 0, -1))
}

func TestExportImport(t *testing.T) {
	f := newFixture(t)
	c := f.controller(t)

	_, err := c.ClockIn(f.dev.JobID, "")
	require.NoError(t, err)
	f.now = f.now.Add(30 * time.Minute)
	_, err = c.ClockOut()
	require.NoError(t, err)

	var buf bytes.Buffer
	n, err := c.Export(&buf)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Contains(t, buf.String(), "DEV,DEVELOPMENT,0.5,2024-03-04,2024-03-09")

	imported, err := c.Import(&buf)
	require.NoError(t, err)
	assert.Equal(t, 1, imported)

	daily, err := c.Daily(f.now)
	require.NoError(t, err)
	assert.Equal(t, "1.0", daily.Total.String(), "the imported copy adds to the original")

	_, err = c.Import(strings.NewReader("nope\n"))
	assert.True(t, apperr.IsValidation(err))
}
