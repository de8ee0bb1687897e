package db

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/balkashynov/tally/internal/apperr"
	"github.com/balkashynov/tally/internal/backup"
)

// testClock is a settable clock shared by the store and its backup manager.
type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time { return c.now }

func (c *testClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestStore(t *testing.T) (*Store, *testClock) {
	t.Helper()
	dir := t.TempDir()
	clock := &testClock{now: time.Date(2024, time.March, 4, 9, 0, 0, 0, time.UTC)}

	path := filepath.Join(dir, "timesheet.db")
	backups := backup.NewManager(path, filepath.Join(dir, ".backup"), 48*time.Hour)
	backups.Now = clock.Now

	store, err := Open(path, Options{Backups: backups, Now: clock.Now})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store, clock
}

func TestOpenCreatesDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "timesheet.db")
	store, err := Open(path, Options{})
	require.NoError(t, err)
	defer store.Close()

	assert.FileExists(t, path)
	assert.Equal(t, path, store.Path())
	assert.True(t, store.DB.Migrator().HasTable("jobs"))
	assert.True(t, store.DB.Migrator().HasTable("sessions"))
}

func TestCloseTwice(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "t.db"), Options{})
	require.NoError(t, err)
	require.NoError(t, store.Close())
	require.NoError(t, store.Close())
}

func TestMutationsWriteBackups(t *testing.T) {
	store, clock := newTestStore(t)

	_, _, err := store.CreateJob(CreateJobRequest{Code: "dev", Name: "Development"})
	require.NoError(t, err)
	clock.Advance(time.Second)
	_, _, err = store.CreateJob(CreateJobRequest{Code: "ops", Name: "Operations"})
	require.NoError(t, err)

	list, err := store.backups.List()
	require.NoError(t, err)
	reasons := make([]string, 0, len(list))
	for _, b := range list {
		reasons = append(reasons, b.Reason)
	}
	assert.Contains(t, reasons, "add-job-DEV")
	assert.Contains(t, reasons, "add-job-OPS")
}

func TestFailedBackupAbortsMutation(t *testing.T) {
	store, _ := newTestStore(t)
	job, _, err := store.CreateJob(CreateJobRequest{Code: "dev", Name: "Development"})
	require.NoError(t, err)

	// Make the backup directory unusable by putting a file in its place.
	require.NoError(t, os.RemoveAll(store.backups.Dir))
	require.NoError(t, os.WriteFile(store.backups.Dir, []byte("not a dir"), 0644))

	_, err = store.OpenSession(job.JobID, "", time.Time{})
	require.Error(t, err)

	active, err := store.ActiveSession()
	require.NoError(t, err)
	assert.Nil(t, active, "nothing is written when the backup fails")
}

func TestRestore(t *testing.T) {
	store, clock := newTestStore(t)

	_, _, err := store.CreateJob(CreateJobRequest{Code: "dev", Name: "Development"})
	require.NoError(t, err)
	clock.Advance(time.Second)
	// This snapshot holds the database with DEV only.
	_, _, err = store.CreateJob(CreateJobRequest{Code: "ops", Name: "Operations"})
	require.NoError(t, err)

	jobs, err := store.ListJobs()
	require.NoError(t, err)
	require.Len(t, jobs, 2)

	target := store.backups.Name("add-job-OPS", clock.Now())
	clock.Advance(time.Second)
	info, err := store.Restore(target)
	require.NoError(t, err)
	assert.Equal(t, target, info.Name)

	jobs, err = store.ListJobs()
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "DEV", jobs[0].Code)

	list, err := store.backups.List()
	require.NoError(t, err)
	assert.Equal(t, "pre-restore", list[0].Reason)
}

func TestRestoreUnknownBackup(t *testing.T) {
	store, _ := newTestStore(t)
	_, err := store.Restore("nope")
	assert.True(t, apperr.IsNotFound(err))

	// The store is still usable.
	_, err = store.ListJobs()
	require.NoError(t, err)
}

func TestRestoreWithoutBackups(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "t.db"), Options{})
	require.NoError(t, err)
	defer store.Close()

	_, err = store.Restore("1")
	assert.True(t, apperr.IsConflict(err))
}

func TestPurge(t *testing.T) {
	store, _ := newTestStore(t)
	job, _, err := store.CreateJob(CreateJobRequest{Code: "dev", Name: "Development"})
	require.NoError(t, err)
	_, err = store.OpenSession(job.JobID, "", time.Time{})
	require.NoError(t, err)

	require.NoError(t, store.Purge())

	jobs, err := store.JobIndex()
	require.NoError(t, err)
	assert.Empty(t, jobs)
	sessions, err := store.AllSessions()
	require.NoError(t, err)
	assert.Empty(t, sessions)
}
