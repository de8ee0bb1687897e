package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAppendsToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "tally.log")

	log, closer, err := New(path, slog.LevelInfo)
	require.NoError(t, err)
	log.Info("first")
	require.NoError(t, closer.Close())

	log, closer, err = New(path, slog.LevelInfo)
	require.NoError(t, err)
	log.Debug("hidden")
	log.Info("second")
	require.NoError(t, closer.Close())

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "msg=first")
	assert.Contains(t, string(content), "msg=second")
	assert.NotContains(t, string(content), "hidden")
	assert.Contains(t, string(content), "time=")
}

func TestFailureCarriesOperation(t *testing.T) {
	var buf bytes.Buffer
	Failure(NewWriter(&buf, slog.LevelInfo), "clock_out", errors.New("disk full"), "session", 7)

	out := buf.String()
	assert.Contains(t, out, "level=ERROR")
	assert.Contains(t, out, "op=clock_out")
	assert.Contains(t, out, `err="disk full"`)
	assert.Contains(t, out, "session=7")
}

func TestDiscard(t *testing.T) {
	assert.False(t, Discard().Enabled(context.Background(), slog.LevelError))
}
