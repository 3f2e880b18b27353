// Package testutil holds helpers shared by remux tests.
package testutil

import (
	"crypto/rand"
	"encoding/hex"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/grovetools/remux/config"
	"github.com/grovetools/remux/pkg/paths"
	"github.com/grovetools/remux/pkg/sessions"
	"github.com/stretchr/testify/require"
)

// Epoch is the fixed creation time of records built by NewRecord.
var Epoch = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

// Home points REMUX_HOME at a fresh temporary directory and clears
// REMUX_CONFIG, so nothing a test does touches the user's state.
func Home(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv(paths.HomeEnv, home)
	t.Setenv(config.EnvConfigPath, "")
	t.Setenv("REMUX_LOG_LEVEL", "")
	return home
}

// WriteConfig writes remux.yml into the config directory of the current
// REMUX_HOME and returns its path.
func WriteConfig(t *testing.T, content string) string {
	t.Helper()
	dir := paths.ConfigDir()
	require.NoError(t, os.MkdirAll(dir, 0755))
	path := filepath.Join(dir, "remux.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// RecordOption customises a record built by NewRecord.
type RecordOption func(*sessions.Record)

// WithURL sets the public URL.
func WithURL(url string) RecordOption {
	return func(r *sessions.Record) { r.PublicURL = url }
}

// WithDir sets the working directory.
func WithDir(dir string) RecordOption {
	return func(r *sessions.Record) { r.WorkingDirectory = dir }
}

// CreatedAt sets both timestamps.
func CreatedAt(t time.Time) RecordOption {
	return func(r *sessions.Record) {
		r.CreatedAt = t
		r.UpdatedAt = t
	}
}

// NewRecord builds a valid record named name created at Epoch.
func NewRecord(name string, opts ...RecordOption) sessions.Record {
	rec := sessions.Record{
		Name:             name,
		WorkingDirectory: "/tmp/" + name,
		PublicURL:        "https://" + name + ".ngrok-free.app",
		CreatedAt:        Epoch,
		UpdatedAt:        Epoch,
	}
	for _, opt := range opts {
		opt(&rec)
	}
	return rec
}

// RequireTmux skips the test if tmux is not installed.
func RequireTmux(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("tmux"); err != nil {
		t.Skip("tmux not available")
	}
}

// RandomString generates a random string of the specified length.
func RandomString(length int) string {
	bytes := make([]byte, length/2+1)
	if _, err := rand.Read(bytes); err != nil {
		panic(err)
	}
	return hex.EncodeToString(bytes)[:length]
}

// UniqueName returns a session name unlikely to clash with a real one.
func UniqueName(prefix string) string {
	return prefix + "-" + RandomString(8)
}
