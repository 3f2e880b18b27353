package tmux

// NewSessionOptions describes a detached session whose first window runs Command.
type NewSessionOptions struct {
	SessionName      string
	WorkingDirectory string
	WindowName       string
	Command          string
	Env              []string // Environment variables in "KEY=VALUE" format
}

// Window holds detailed information about a tmux window.
type Window struct {
	ID       string `json:"id" yaml:"id"`
	Index    int    `json:"index" yaml:"index"`
	Name     string `json:"name" yaml:"name"`
	IsActive bool   `json:"is_active" yaml:"is_active"`
	Command  string `json:"command" yaml:"command"` // Active pane's command
	PID      int    `json:"pid" yaml:"pid"`         // Active pane's PID
	Dead     bool   `json:"dead" yaml:"dead"`       // Active pane's process has exited (remain-on-exit)
}

// RespawnOptions describes the process that replaces a pane's current one.
type RespawnOptions struct {
	Command    string
	WorkingDir string
	Env        []string // Environment variables in "KEY=VALUE" format
}

// NewWindowOptions provides detailed options for creating a new window.
type NewWindowOptions struct {
	Target     string
	WindowName string
	Command    string
	WorkingDir string
	Env        []string // Environment variables in "KEY=VALUE" format
}
