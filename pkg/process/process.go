// Package process inspects local processes by PID.
package process

import (
	"os"
	"syscall"
)

// State is the observed liveness of a process.
type State string

const (
	Running State = "running"
	Exited  State = "exited"
	Unknown State = "unknown"
)

// IsProcessAlive reports whether a process with the given PID exists.
// Signal 0 probes without delivering anything; EPERM still means alive.
func IsProcessAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	p, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = p.Signal(syscall.Signal(0))
	return err == nil || os.IsPermission(err)
}

// Inspect returns Unknown for PIDs tmux did not report (0 or negative).
func Inspect(pid int) State {
	if pid <= 0 {
		return Unknown
	}
	if IsProcessAlive(pid) {
		return Running
	}
	return Exited
}
