package command

import (
	"context"
	"os/exec"
)

// Executor creates exec.Cmd instances. Tests substitute an implementation
// that re-executes the test binary instead of tmux or ngrok.
type Executor interface {
	// CommandContext creates a new context-aware exec.Cmd instance.
	CommandContext(ctx context.Context, name string, args ...string) *exec.Cmd
}

// RealExecutor is the production implementation of the Executor interface,
// which uses the standard os/exec package to create commands.
type RealExecutor struct{}

// CommandContext creates a standard context-aware exec.Cmd.
func (e *RealExecutor) CommandContext(ctx context.Context, name string, args ...string) *exec.Cmd {
	return exec.CommandContext(ctx, name, args...)
}
