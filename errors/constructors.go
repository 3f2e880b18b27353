package errors

import (
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// SessionNotFound creates an error for a name with neither record nor live session
func SessionNotFound(name string) *RemuxError {
	return New(ErrCodeNotFound, fmt.Sprintf("session '%s' not found", name)).
		WithDetail("session", name)
}

// RecordNotFound creates an error for a missing metadata record
func RecordNotFound(name string) *RemuxError {
	return New(ErrCodeNotFound, fmt.Sprintf("no metadata record for session '%s'", name)).
		WithDetail("session", name)
}

// Collision creates a name collision error
func Collision(name string, hasRecord, isLive bool) *RemuxError {
	var what []string
	if hasRecord {
		what = append(what, "a metadata record")
	}
	if isLive {
		what = append(what, "a live tmux session")
	}
	return New(ErrCodeCollision,
		fmt.Sprintf("name '%s' is already in use (%s)", name, strings.Join(what, " and "))).
		WithDetail("session", name).
		WithDetail("record", hasRecord).
		WithDetail("live", isLive)
}

// StaleMetadata creates an error for a record that disagrees with live state
func StaleMetadata(name, reason string) *RemuxError {
	return New(ErrCodeStaleMetadata, fmt.Sprintf("session '%s' metadata is stale: %s", name, reason)).
		WithDetail("session", name)
}

// DiscoveryTimeout creates a tunnel discovery timeout error
func DiscoveryTimeout(port int, timeout time.Duration, lastErr error) *RemuxError {
	err := Wrap(lastErr, ErrCodeDiscoveryTimeout,
		fmt.Sprintf("no public URL for local port %d within %s", port, timeout)).
		WithDetail("port", port).
		WithDetail("timeout", timeout.String())
	return err
}

// DependencyMissing creates an error for a required binary absent from PATH
func DependencyMissing(binary string, err error) *RemuxError {
	return Wrap(err, ErrCodeDependencyMissing, fmt.Sprintf("required command '%s' not found in PATH", binary)).
		WithDetail("binary", binary)
}

// CommandFailed creates a command execution failure error
func CommandFailed(cmd string, output string, err error) *RemuxError {
	remuxErr := Wrap(err, ErrCodeCommandFailed, fmt.Sprintf("command failed: %s", cmd)).
		WithDetail("command", cmd)

	if trimmed := strings.TrimSpace(output); trimmed != "" {
		remuxErr = remuxErr.WithDetail("output", trimmed)
	}

	// Extract exit code if available
	if exitErr, ok := err.(*exec.ExitError); ok {
		remuxErr = remuxErr.WithDetail("exitCode", exitErr.ExitCode())
	}

	return remuxErr
}

// InvalidInput creates an input validation error
func InvalidInput(reason string) *RemuxError {
	return New(ErrCodeInvalidInput, reason)
}

// ConfigNotFound creates a configuration not found error
func ConfigNotFound(path string) *RemuxError {
	return New(ErrCodeConfigNotFound, fmt.Sprintf("configuration file not found: %s", path)).
		WithDetail("path", path)
}

// ConfigInvalid creates an invalid configuration error
func ConfigInvalid(reason string) *RemuxError {
	return New(ErrCodeConfigInvalid, fmt.Sprintf("invalid configuration: %s", reason))
}

// Aborted creates an error for an operation the user declined
func Aborted(operation string) *RemuxError {
	return New(ErrCodeAborted, fmt.Sprintf("%s aborted", operation))
}
