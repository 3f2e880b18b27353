// Package paths provides XDG-compliant path resolution for remux.
//
// Resolution order:
// 1. REMUX_HOME (portable root) → $REMUX_HOME/{config,state,cache}
// 2. XDG env vars → $XDG_*_HOME/remux
// 3. Platform defaults → ~/.config/remux, ~/.local/state/remux, etc.
package paths

import (
	"os"
	"path/filepath"
)

const appName = "remux"

// HomeEnv names the environment variable that relocates every remux directory.
const HomeEnv = "REMUX_HOME"

func baseDir(portableSub, xdgEnv string, defaultParts ...string) string {
	if home := os.Getenv(HomeEnv); home != "" {
		return filepath.Join(home, portableSub)
	}
	if xdg := os.Getenv(xdgEnv); xdg != "" {
		return filepath.Join(xdg, appName)
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		return filepath.Join(append(append([]string{homeDir}, defaultParts...), appName)...)
	}
	return ""
}

// ConfigDir returns the remux configuration directory.
// Used for remux.yml / remux.toml.
func ConfigDir() string {
	return baseDir("config", "XDG_CONFIG_HOME", ".config")
}

// StateDir returns the remux state directory.
// Used for session records and logs.
func StateDir() string {
	return baseDir("state", "XDG_STATE_HOME", ".local", "state")
}

// CacheDir returns the remux cache directory.
func CacheDir() string {
	return baseDir("cache", "XDG_CACHE_HOME", ".cache")
}

// SessionsDir returns the default metadata store directory.
func SessionsDir() string {
	state := StateDir()
	if state == "" {
		return ""
	}
	return filepath.Join(state, "sessions")
}

// LogsDir returns the directory holding remux log files.
func LogsDir() string {
	state := StateDir()
	if state == "" {
		return ""
	}
	return filepath.Join(state, "logs")
}

// EnsureDirs creates all remux directories if they don't exist.
func EnsureDirs() error {
	for _, dir := range []string{ConfigDir(), StateDir(), SessionsDir(), LogsDir()} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return nil
}
