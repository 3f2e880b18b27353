package logging

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func useTempHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("REMUX_HOME", home)
	t.Setenv("REMUX_CONFIG", "")
	t.Setenv(LevelEnv, "")
	t.Setenv(DebugEnv, "")
	Reset()
	t.Cleanup(Reset)
	return home
}

func TestNewLoggerCachesPerComponent(t *testing.T) {
	useTempHome(t)

	a := NewLogger("lifecycle")
	b := NewLogger("lifecycle")
	c := NewLogger("tunnel")

	assert.Same(t, a, b)
	assert.NotSame(t, a, c)
	assert.Equal(t, "lifecycle", a.Data["component"])
	assert.Equal(t, RunID(), a.Data[RunField])
	assert.Len(t, RunID(), 8)
	assert.Same(t, a.Logger, c.Logger)
}

func TestNewLoggerWritesLogFile(t *testing.T) {
	home := useTempHome(t)

	NewLogger("tunnel").WithField("port", 7681).Info("discovered")

	path := LogFilePath(Config{}, time.Now())
	require.Equal(t, filepath.Join(home, "state", "logs"), filepath.Dir(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[INFO] [tunnel] discovered port=7681 run="+RunID())
}

func TestNewLoggerLevelFromEnv(t *testing.T) {
	useTempHome(t)
	t.Setenv(LevelEnv, "warn")

	assert.Equal(t, logrus.WarnLevel, NewLogger("x").Logger.GetLevel())
}

func TestSetVerboseRaisesLevelAndEnablesStderr(t *testing.T) {
	useTempHome(t)
	var buf bytes.Buffer
	SetGlobalOutput(&buf)
	t.Cleanup(func() { SetGlobalOutput(os.Stderr) })

	log := NewLogger("cli")
	SetVerbose(true)
	log.Debug("probe")

	assert.Equal(t, logrus.DebugLevel, log.Logger.GetLevel())
	assert.Contains(t, buf.String(), "probe")
}

func TestLogFilePath(t *testing.T) {
	home := useTempHome(t)
	day := time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, filepath.Join(home, "state", "logs", "remux-2026-03-04.log"), LogFilePath(Config{}, day))
	assert.Equal(t, "/tmp/x.log", LogFilePath(Config{File: FileSinkConfig{Path: "/tmp/x.log"}}, day))
	assert.Empty(t, LogFilePath(Config{File: FileSinkConfig{Disabled: true}}, day))
}

func TestShouldLogToStderr(t *testing.T) {
	t.Setenv(DebugEnv, "")
	tests := []struct {
		name        string
		mode        string
		level       logrus.Level
		interactive bool
		want        bool
	}{
		{"always", "always", logrus.InfoLevel, true, true},
		{"never even when debugging", "never", logrus.DebugLevel, false, false},
		{"auto interactive info", "", logrus.InfoLevel, true, false},
		{"auto piped", "auto", logrus.InfoLevel, false, true},
		{"auto debug", "auto", logrus.DebugLevel, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, shouldLogToStderr(tt.mode, tt.level, tt.interactive))
		})
	}
}

func TestTextFormatter(t *testing.T) {
	entry := &logrus.Entry{
		Time:    time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Level:   logrus.WarnLevel,
		Message: "tunnel exited",
		Data:    logrus.Fields{"component": "lifecycle", "session": "demo", "attempts": 3},
	}

	out, err := (&TextFormatter{Plain: true}).Format(entry)
	require.NoError(t, err)
	assert.Equal(t, "2026-01-02 03:04:05 [WARN] [lifecycle] tunnel exited attempts=3 session=demo\n", string(out))

	out, err = (&TextFormatter{Plain: true, Config: FormatConfig{DisableTimestamp: true, DisableComponent: true}}).Format(entry)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(out), "[WARN] tunnel exited"))
}

func TestPrettyLogger(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrettyLogger().WithWriter(&buf)

	p.Success("Session demo ready")
	p.URL("url", "https://abc.ngrok.app")
	p.Field("directory", "/work/demo")
	p.ErrorPretty("stop failed", errors.New("boom"))
	p.Hint("remux attach demo")

	out := buf.String()
	assert.Contains(t, out, "Session demo ready")
	assert.Contains(t, out, "https://abc.ngrok.app")
	assert.Contains(t, out, "/work/demo")
	assert.Contains(t, out, "stop failed")
	assert.Contains(t, out, "boom")
	assert.Contains(t, out, "remux attach demo")
}
