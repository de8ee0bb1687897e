package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"TALLY_DATA_DIR", "TALLY_STORE_FILE", "TALLY_BACKUP_DIR", "TALLY_BACKUP_RETENTION",
		"TALLY_LOG_FILE", "TALLY_LOG_LEVEL", "TALLY_EXPORT_FILE", "TALLY_TIMEZONE",
	} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	clearEnv(t)
	dataDir := t.TempDir()
	t.Setenv("TALLY_DATA_DIR", dataDir)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)

	assert.Equal(t, dataDir, cfg.DataDir)
	assert.Equal(t, filepath.Join(dataDir, DefaultStoreFile), cfg.StorePath())
	assert.Equal(t, filepath.Join(dataDir, ".backup"), cfg.BackupDir)
	assert.Equal(t, filepath.Join(dataDir, "tally.log"), cfg.LogFile)

	retention, err := cfg.Retention()
	require.NoError(t, err)
	assert.Equal(t, DefaultRetention, retention)
}

func TestLoadFileThenEnvironment(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, ConfigFile)
	content := `
data_dir = "` + filepath.ToSlash(dir) + `"
store_file = "work.db"
backup_retention = "72h"
log_level = "debug"
timezone = "UTC"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	t.Setenv("TALLY_LOG_LEVEL", "warn")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "work.db", cfg.StoreFile)
	assert.Equal(t, "warn", cfg.LogLevel, "environment overrides the file")

	retention, err := cfg.Retention()
	require.NoError(t, err)
	assert.Equal(t, 72*time.Hour, retention)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "UTC", loc.String())
}

func TestLoadRejectsBrokenToml(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), ConfigFile)
	require.NoError(t, os.WriteFile(path, []byte("data_dir = [unterminated"), 0644))

	_, err := Load(path)
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := DefaultConfig()
	base.DataDir = t.TempDir()
	require.NoError(t, base.Normalize())
	require.NoError(t, base.Validate())

	badZone := base
	badZone.Timezone = "Mars/Olympus_Mons"
	assert.Error(t, badZone.Validate())

	badRetention := base
	badRetention.BackupRetention = "-1h"
	assert.Error(t, badRetention.Validate())

	notADuration := base
	notADuration.BackupRetention = "two days"
	assert.Error(t, notADuration.Validate())

	badLevel := base
	badLevel.LogLevel = "loud"
	assert.Error(t, badLevel.Validate())
}

func TestLevel(t *testing.T) {
	for input, want := range map[string]slog.Level{
		"debug": slog.LevelDebug, "info": slog.LevelInfo, "": slog.LevelInfo,
		"warn": slog.LevelWarn, "warning": slog.LevelWarn, "error": slog.LevelError,
	} {
		got, err := Config{LogLevel: input}.Level()
		require.NoError(t, err, input)
		assert.Equal(t, want, got, input)
	}
}

func TestStorePathAbsolute(t *testing.T) {
	abs := filepath.Join(t.TempDir(), "elsewhere.db")
	cfg := Config{DataDir: "/ignored", StoreFile: abs}
	assert.Equal(t, abs, cfg.StorePath())
}

func TestSampleConfigDecodes(t *testing.T) {
	var cfg Config
	_, err := toml.Decode(GenerateSampleConfig(), &cfg)
	require.NoError(t, err)
	assert.Equal(t, DefaultStoreFile, cfg.StoreFile)
	assert.Equal(t, "48h", cfg.BackupRetention)
}

func TestSetDataDirMovesDerivedPaths(t *testing.T) {
	clearEnv(t)
	cfg := DefaultConfig()
	cfg.DataDir = t.TempDir()
	custom := filepath.Join(t.TempDir(), "keep.log")
	cfg.LogFile = custom
	require.NoError(t, cfg.Normalize())

	moved := t.TempDir()
	require.NoError(t, cfg.SetDataDir(moved))
	assert.Equal(t, moved, cfg.DataDir)
	assert.Equal(t, filepath.Join(moved, ".backup"), cfg.BackupDir)
	assert.Equal(t, custom, cfg.LogFile, "explicit paths stay put")
	assert.Equal(t, filepath.Join(moved, DefaultStoreFile), cfg.StorePath())
}
