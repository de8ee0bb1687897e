package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/balkashynov/tally/internal/apperr"
)

type harness struct {
	dir        string
	configPath string
	now        time.Time
	stdin      string
	stdout     *bytes.Buffer
	stderr     *bytes.Buffer
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	for _, key := range []string{
		"TALLY_DATA_DIR", "TALLY_STORE_FILE", "TALLY_BACKUP_DIR", "TALLY_BACKUP_RETENTION",
		"TALLY_LOG_FILE", "TALLY_LOG_LEVEL", "TALLY_EXPORT_FILE", "TALLY_TIMEZONE",
	} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}

	dir := t.TempDir()
	h := &harness{
		dir:        dir,
		configPath: filepath.Join(dir, "config.toml"),
		// Monday
		now:    time.Date(2024, time.March, 4, 9, 0, 0, 0, time.UTC),
		stdout: &bytes.Buffer{},
		stderr: &bytes.Buffer{},
	}
	content := "data_dir = \"" + filepath.ToSlash(dir) + "\"\ntimezone = \"UTC\"\nexport_file = \"" + filepath.ToSlash(filepath.Join(dir, "out.csv")) + "\"\n"
	require.NoError(t, os.WriteFile(h.configPath, []byte(content), 0644))
	return h
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func (h *harness) run(t *testing.T, args ...string) error {
	t.Helper()
	h.stdout.Reset()
	h.stderr.Reset()
	SetDeps(&Deps{
		Stdout:     h.stdout,
		Stderr:     h.stderr,
		Stdin:      strings.NewReader(h.stdin),
		Exit:       func(code int) {},
		Now:        func() time.Time { return h.now },
		ConfigPath: func() (string, error) { return h.configPath, nil },
	})
	t.Cleanup(ResetDeps)

	resetFlags(rootCmd)
	rootCmd.SetArgs(args)
	return Execute()
}

func (h *harness) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	err := h.run(t, args...)
	require.NoError(t, err, "tally %s\nstderr: %s", strings.Join(args, " "), h.stderr.String())
	return h.stdout.String()
}

var idPattern = regexp.MustCompile(`\(id ([0-9a-f]{8})\)`)

func TestClockInStatusClockOut(t *testing.T) {
	h := newHarness(t)

	out := h.mustRun(t, "job", "add", "Website redesign @WEB $85.50")
	assert.Contains(t, out, "Added job WEB WEBSITE REDESIGN at $85.50/h")

	out = h.mustRun(t, "start", "web", "landing", "page", "--no-ui")
	assert.Contains(t, out, "Clocked in on WEB WEBSITE REDESIGN at 09:00")
	assert.Contains(t, out, "Sub-task: landing page")

	h.now = h.now.Add(93 * time.Minute)
	out = h.mustRun(t, "status")
	assert.Contains(t, out, "Clocked in on WEB WEBSITE REDESIGN (session #1)")
	assert.Contains(t, out, "Elapsed: 1h 33m (1.6 hours)")
	assert.Empty(t, h.stderr.String(), "a session opened today is not nagged about")

	out = h.mustRun(t, "stop")
	assert.Contains(t, out, "Clocked out of WEB WEBSITE REDESIGN: 1.6 hours (09:00-10:33)")

	out = h.mustRun(t, "status")
	assert.Contains(t, out, "Not clocked in. Today so far: 1.6 hours.")

	out = h.mustRun(t, "report", "daily")
	assert.Contains(t, out, "Daily timesheet Mon 2024-03-04")
	assert.Contains(t, out, "landing page")
	assert.Contains(t, out, "1.6")
	assert.Contains(t, out, "136.80")
}

func TestStartWhileClockedInConflicts(t *testing.T) {
	h := newHarness(t)
	h.mustRun(t, "job", "add", "Development", "--code", "dev")
	h.mustRun(t, "start", "DEV", "--no-ui")

	err := h.run(t, "start", "DEV", "--no-ui")
	require.Error(t, err)
	assert.True(t, apperr.IsConflict(err))
	assert.Contains(t, h.stderr.String(), "Error: clock in: already working on DEV DEVELOPMENT")

	err = h.run(t, "job", "rm", "DEV", "--yes")
	assert.True(t, apperr.IsConflict(err), "the job holds the open session")
}

func TestStopWithNothingOpen(t *testing.T) {
	h := newHarness(t)
	err := h.run(t, "stop")
	assert.True(t, apperr.IsNotFound(err))
	assert.Contains(t, h.stderr.String(), "Error: no open session found")
}

func TestSharedCodeNeedsJobID(t *testing.T) {
	h := newHarness(t)
	first := idPattern.FindStringSubmatch(h.mustRun(t, "job", "add", "Acme support @ACME"))
	require.Len(t, first, 2)
	h.mustRun(t, "job", "add", "Acme migration @ACME $120")
	assert.Contains(t, h.stderr.String(), "Warning: job code ACME is already used by 1 other job(s)")

	err := h.run(t, "start", "ACME", "--no-ui")
	assert.True(t, apperr.IsValidation(err))
	assert.Contains(t, h.stdout.String(), "Code ACME is used by 2 jobs:")
	assert.Contains(t, h.stdout.String(), first[1])

	out := h.mustRun(t, "start", "ACME", "--job-id", first[1], "--no-ui")
	assert.Contains(t, out, "Clocked in on ACME ACME SUPPORT")

	out = h.mustRun(t, "job", "find", "acme")
	assert.Contains(t, out, "ACME MIGRATION")
	assert.Contains(t, out, "ACME SUPPORT")
}

func TestUsageErrors(t *testing.T) {
	h := newHarness(t)

	err := h.run(t, "start", "--bogus")
	require.Error(t, err)
	assert.Contains(t, h.stderr.String(), "Run 'tally start --help' for usage.")

	err = h.run(t, "calc", "9:00")
	require.Error(t, err)
	assert.Contains(t, h.stderr.String(), "Run 'tally calc --help' for usage.")
}

func TestForgottenSessionRecovery(t *testing.T) {
	h := newHarness(t)
	h.mustRun(t, "job", "add", "Website @WEB")
	h.mustRun(t, "start", "WEB", "--no-ui")

	h.now = h.now.AddDate(0, 0, 1)
	h.mustRun(t, "status")
	assert.Contains(t, h.stderr.String(), "Warning: session #1 has been open since Mon 2024-03-04 09:00.")

	err := h.run(t, "recover", "close-at")
	assert.True(t, apperr.IsValidation(err))

	out := h.mustRun(t, "recover", "close-at", "17:30")
	assert.Contains(t, out, "Clocked out of WEB WEBSITE: 8.5 hours (09:00-17:30)")

	err = h.run(t, "recover", "keep")
	assert.True(t, apperr.IsConflict(err), "nothing left to recover")
}

func TestRecoverDiscard(t *testing.T) {
	h := newHarness(t)
	h.mustRun(t, "job", "add", "Website @WEB")
	h.mustRun(t, "start", "WEB", "--no-ui")

	out := h.mustRun(t, "recover", "d")
	assert.Contains(t, out, "Discarded session #1 on WEB WEBSITE")

	out = h.mustRun(t, "session", "ls")
	assert.Contains(t, out, "No sessions found.")
}

func TestResumeCarriesSubTask(t *testing.T) {
	h := newHarness(t)
	h.mustRun(t, "job", "add", "Website @WEB")

	err := h.run(t, "resume", "--no-ui")
	assert.True(t, apperr.IsNotFound(err))

	h.mustRun(t, "start", "WEB", "checkout", "flow", "--no-ui")
	h.now = h.now.Add(time.Hour)
	h.mustRun(t, "stop")

	h.now = h.now.Add(time.Hour)
	out := h.mustRun(t, "resume", "--no-ui")
	assert.Contains(t, out, "Resumed WEB WEBSITE at 11:00")
	assert.Contains(t, out, "Sub-task: checkout flow")
}

func TestStartSameDayCarriesSubTask(t *testing.T) {
	h := newHarness(t)
	h.mustRun(t, "job", "add", "Website @WEB")
	h.mustRun(t, "start", "WEB", "checkout", "--no-ui")
	h.now = h.now.Add(30 * time.Minute)
	h.mustRun(t, "stop")

	out := h.mustRun(t, "start", "WEB", "--no-ui")
	assert.Contains(t, out, "Sub-task: checkout")
	h.mustRun(t, "stop")

	out = h.mustRun(t, "start", "WEB", "search", "--no-ui")
	assert.Contains(t, out, "Sub-task: search")
	assert.Contains(t, out, "Earlier today: checkout")
}

func TestSessionEditAndList(t *testing.T) {
	h := newHarness(t)
	h.mustRun(t, "job", "add", "Website @WEB")
	h.mustRun(t, "start", "WEB", "--no-ui")
	h.now = h.now.Add(30 * time.Minute)
	h.mustRun(t, "stop")

	out := h.mustRun(t, "session", "edit", "1", "--out", "11:00")
	assert.Contains(t, out, "Session #1 now 2024-03-04 09:00-11:00: 2.0 hours")

	out = h.mustRun(t, "session", "ls")
	assert.Contains(t, out, "edited")
	assert.Contains(t, out, "Total: 2.0 hours")

	out = h.mustRun(t, "session", "ls", "--week", "--date", "2024-03-09")
	assert.Contains(t, out, "Total: 2.0 hours")

	out = h.mustRun(t, "session", "ls", "--date", "yesterday")
	assert.Contains(t, out, "No sessions found.")

	err := h.run(t, "session", "edit", "abc")
	assert.True(t, apperr.IsValidation(err))

	out = h.mustRun(t, "session", "rm", "1", "--yes")
	assert.Contains(t, out, "Deleted session #1")
}

func TestExportPurgeImport(t *testing.T) {
	h := newHarness(t)
	h.mustRun(t, "job", "add", "Website @WEB $50")
	h.mustRun(t, "start", "WEB", "--no-ui")
	h.now = h.now.Add(93 * time.Minute)
	h.mustRun(t, "stop")

	file := filepath.Join(h.dir, "march.csv")
	out := h.mustRun(t, "export", "csv", file)
	assert.Contains(t, out, "Exported 1 rows")

	content, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Equal(t, "Id,Job Name,Hours Worked,Date,Week Ending\nWEB,WEBSITE,1.6,2024-03-04,2024-03-09\n", string(content))

	out = h.mustRun(t, "export", "csv", "-")
	assert.Contains(t, out, "WEB,WEBSITE,1.6")

	h.stdin = "n\n"
	out = h.mustRun(t, "purge")
	assert.Contains(t, out, "Purge cancelled")

	h.stdin = "y\n"
	h.mustRun(t, "purge")
	out = h.mustRun(t, "job", "ls")
	assert.Contains(t, out, "No jobs found.")

	out = h.mustRun(t, "import", "csv", file)
	assert.Contains(t, out, "Imported 1 rows")

	out = h.mustRun(t, "report", "weekly", "2024-03-06")
	assert.Contains(t, out, "week ending 2024-03-09")
	assert.Contains(t, out, "1.6")

	out = h.mustRun(t, "job", "ls")
	assert.Contains(t, out, "WEB")
	assert.Contains(t, out, "0.00", "imported jobs start without a rate")
}

func TestImportRejectsBadFile(t *testing.T) {
	h := newHarness(t)
	file := filepath.Join(h.dir, "bad.csv")
	require.NoError(t, os.WriteFile(file, []byte("Id,Job Name,Hours Worked,Date,Week Ending\nWEB,WEBSITE,lots,2024-03-04,2024-03-09\n"), 0644))

	err := h.run(t, "import", "csv", file)
	assert.True(t, apperr.IsValidation(err))
	assert.Contains(t, h.stderr.String(), "line 2")

	err = h.run(t, "import", "csv", filepath.Join(h.dir, "missing.csv"))
	assert.True(t, apperr.IsValidation(err))
}

func TestBackupListAndRestore(t *testing.T) {
	h := newHarness(t)
	h.mustRun(t, "job", "add", "Website @WEB")
	h.mustRun(t, "purge", "--yes")

	out := h.mustRun(t, "backup", "ls")
	assert.Contains(t, out, "purge")
	assert.Contains(t, out, "add-job-WEB")

	matches, err := filepath.Glob(filepath.Join(h.dir, ".backup", "timesheet.db_purge-*"))
	require.NoError(t, err)
	require.Len(t, matches, 1)

	out = h.mustRun(t, "backup", "restore", filepath.Base(matches[0]), "--yes")
	assert.Contains(t, out, "Restored "+filepath.Base(matches[0]))

	out = h.mustRun(t, "job", "ls")
	assert.Contains(t, out, "WEBSITE")

	err = h.run(t, "backup", "restore", "nope", "--yes")
	assert.True(t, apperr.IsNotFound(err))

	out = h.mustRun(t, "backup", "now", "before-invoice")
	assert.Contains(t, out, "timesheet.db_before-invoice-20240304-090000")

	h.now = h.now.Add(72 * time.Hour)
	out = h.mustRun(t, "backup", "sweep")
	assert.Contains(t, out, "older than 48h")
}

func TestMenuNeedsATerminalButTakesStartupBackup(t *testing.T) {
	h := newHarness(t)
	h.mustRun(t, "job", "add", "Website @WEB")

	err := h.run(t)
	assert.True(t, apperr.IsConflict(err))

	matches, err := filepath.Glob(filepath.Join(h.dir, ".backup", "timesheet.db_startup-*"))
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}

func TestCalc(t *testing.T) {
	h := newHarness(t)
	assert.Contains(t, h.mustRun(t, "calc", "9:00", "17:30"), "from 09:00 to 17:30: 8.5 hours")
	assert.Contains(t, h.mustRun(t, "calc", "9 am", "5:30 pm"), "8.5 hours")
	assert.Contains(t, h.mustRun(t, "calc", "23:00", "01:00"), "2.0 hours")

	err := h.run(t, "calc", "9:00", "25:00")
	assert.True(t, apperr.IsValidation(err))
}

func TestConfigCommands(t *testing.T) {
	h := newHarness(t)

	out := h.mustRun(t, "config", "path")
	assert.Equal(t, h.configPath+"\n", out)

	out = h.mustRun(t, "config", "show")
	assert.Contains(t, out, "(loaded)")
	assert.Contains(t, out, `store_file = "timesheet.db"`)

	fresh := filepath.Join(h.dir, "nested", "config.toml")
	out = h.mustRun(t, "config", "init", "--config", fresh)
	assert.Contains(t, out, "Wrote "+fresh)
	_, err := os.Stat(fresh)
	require.NoError(t, err)

	err = h.run(t, "config", "init", "--config", fresh)
	assert.True(t, apperr.IsConflict(err))
	h.mustRun(t, "config", "init", "--config", fresh, "--force")
}

func TestDataDirFlag(t *testing.T) {
	h := newHarness(t)
	other := t.TempDir()
	h.mustRun(t, "job", "add", "Website @WEB", "--data-dir", other)

	_, err := os.Stat(filepath.Join(other, "timesheet.db"))
	require.NoError(t, err)
	out := h.mustRun(t, "job", "ls")
	assert.Contains(t, out, "No jobs found.", "the configured data_dir is untouched")
}

func TestVersion(t *testing.T) {
	h := newHarness(t)
	SetVersion("1.2.3", "abc123", "2024-03-04")
	t.Cleanup(func() { SetVersion("dev", "none", "unknown") })
	assert.Equal(t, "tally 1.2.3 (commit abc123, built 2024-03-04)\n", h.mustRun(t, "version"))
}
