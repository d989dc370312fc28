package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/decred/slog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDebugLevel(t *testing.T) {
	def, levels, err := parseDebugLevel("warn,TABL=trace, engn=debug")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, def)
	assert.Equal(t, map[string]slog.Level{"TABL": slog.LevelTrace, "ENGN": slog.LevelDebug}, levels)

	def, _, err = parseDebugLevel("")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelInfo, def)

	_, _, err = parseDebugLevel("loud")
	assert.Error(t, err)
}

func TestLoggerLevels(t *testing.T) {
	lb, err := NewLogBackend(LogConfig{DebugLevel: "error,TABL=debug"})
	require.NoError(t, err)
	defer lb.Close()

	assert.Equal(t, slog.LevelDebug, lb.Logger("TABL").Level())
	assert.Equal(t, slog.LevelError, lb.Logger("SRVR").Level())
	assert.Same(t, lb.Logger("SRVR"), lb.Logger("SRVR"))

	require.NoError(t, lb.setLevel("trace"))
	assert.Equal(t, slog.LevelTrace, lb.Logger("TABL").Level())
	assert.Error(t, lb.setLevel("nope"))
}

func TestLogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "pokersrv.log")
	lb, err := NewLogBackend(LogConfig{LogFile: path, DebugLevel: "info", MaxLogFiles: 1})
	require.NoError(t, err)

	lb.Logger("MAIN").Infof("hello from the test")
	require.NoError(t, lb.Close())

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), "MAIN: hello from the test")
}

func TestQuietLogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "client.log")
	lb, err := NewLogBackend(LogConfig{LogFile: path, DebugLevel: "debug", Quiet: true})
	require.NoError(t, err)

	lb.Logger("CLNT").Debugf("only in the file")
	require.NoError(t, lb.Close())

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), "CLNT: only in the file")
}

func TestNilBackend(t *testing.T) {
	var lb *LogBackend
	assert.Equal(t, slog.Disabled, lb.Logger("X"))
	assert.NoError(t, lb.Close())
}
