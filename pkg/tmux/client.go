package tmux

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/grovetools/remux/command"
	"github.com/grovetools/remux/errors"
)

// Binary is the tmux executable name.
const Binary = "tmux"

type Client struct {
	builder *command.SafeBuilder
	socket  string // Socket name for dedicated tmux server (uses -L flag)
}

// NewClient creates a client for the tmux server selected by socket ("" is
// the default server). It fails with DEPENDENCY_MISSING when tmux is not
// installed.
func NewClient(socket string) (*Client, error) {
	if _, err := exec.LookPath(Binary); err != nil {
		return nil, errors.DependencyMissing(Binary, err)
	}
	return NewClientWithExecutor(socket, &command.RealExecutor{}), nil
}

// NewClientWithExecutor creates a client that builds its commands through
// the given executor. It does not check PATH.
func NewClientWithExecutor(socket string, executor command.Executor) *Client {
	return &Client{
		builder: command.NewSafeBuilderWithExecutor(executor),
		socket:  socket,
	}
}

// Socket returns the socket name this client uses, or empty string for default.
func (c *Client) Socket() string {
	return c.socket
}

// InsideTmux reports whether the current process runs inside a tmux client.
func InsideTmux() bool {
	return os.Getenv("TMUX") != ""
}

func (c *Client) args(args []string) []string {
	// Prepend socket flag if using a dedicated server
	if c.socket != "" {
		return append([]string{"-L", c.socket}, args...)
	}
	return args
}

func (c *Client) run(ctx context.Context, args ...string) (string, error) {
	args = c.args(args)

	cmd, err := c.builder.Build(ctx, Binary, args...)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeInvalidInput, "failed to build tmux command")
	}

	output, err := cmd.CombinedOutput()
	if err != nil {
		if stderrors.Is(err, exec.ErrNotFound) {
			return output, errors.DependencyMissing(Binary, err)
		}
		return output, errors.CommandFailed(cmd.String(), output, err)
	}

	return output, nil
}

// validate checks a value that becomes part of a tmux command line.
func (c *Client) validate(kind, value string) error {
	if err := c.builder.Validate(kind, value); err != nil {
		return errors.Wrap(err, errors.ErrCodeInvalidInput, "invalid tmux argument")
	}
	return nil
}

// runAttached runs tmux with the caller's terminal attached and no timeout.
func (c *Client) runAttached(ctx context.Context, stdin io.Reader, stdout, stderr io.Writer, args ...string) error {
	args = c.args(args)

	cmd, err := c.builder.BuildInteractive(ctx, Binary, args...)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInvalidInput, "failed to build tmux command")
	}
	defer cmd.Close()

	execCmd := cmd.Exec()
	execCmd.Stdin = stdin
	execCmd.Stdout = stdout
	execCmd.Stderr = stderr
	if err := execCmd.Run(); err != nil {
		return errors.CommandFailed(cmd.String(), "", err)
	}
	return nil
}

// exitCode returns the exit status carried by a failed run, or -1.
func exitCode(err error) int {
	var exitErr *exec.ExitError
	if stderrors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}

// isMissingTarget reports whether tmux failed because the server, session
// or window does not exist.
func isMissingTarget(err error, output string) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(output)
	if remuxErr, ok := errors.As(err); ok {
		msg += " " + strings.ToLower(remuxErr.Detail("output"))
	}
	for _, marker := range []string{"no server running", "can't find session", "can't find window", "session not found", "window not found", "error connecting to"} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// target formats an exact-match session target.
func target(sessionName string) string {
	return "=" + sessionName
}

// windowTarget formats a window target inside an exact-match session.
func windowTarget(sessionName, window string) string {
	return fmt.Sprintf("=%s:%s", sessionName, window)
}
