package tmux

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
)

func (c *Client) SessionExists(ctx context.Context, sessionName string) (bool, error) {
	_, err := c.run(ctx, "has-session", "-t", target(sessionName))
	if err == nil {
		return true, nil
	}

	// has-session exits 1 both for a missing session and a missing server
	if exitCode(err) == 1 {
		return false, nil
	}

	return false, err
}

// KillSession terminates the session. A missing session or server is not an error.
func (c *Client) KillSession(ctx context.Context, sessionName string) error {
	output, err := c.run(ctx, "kill-session", "-t", target(sessionName))
	if isMissingTarget(err, output) {
		return nil
	}
	return err
}

// RenameSession changes the name of an existing session.
func (c *Client) RenameSession(ctx context.Context, oldName, newName string) error {
	if err := c.validate("sessionName", newName); err != nil {
		return err
	}
	_, err := c.run(ctx, "rename-session", "-t", target(oldName), newName)
	return err
}

// NewWindow creates a window at the end of the session's window list.
func (c *Client) NewWindow(ctx context.Context, opts NewWindowOptions) error {
	if err := c.validate("windowLabel", opts.WindowName); err != nil {
		return err
	}
	args := []string{"new-window", "-d", "-t", opts.Target, "-n", opts.WindowName}
	args, err := c.appendLaunchArgs(args, opts.WorkingDir, opts.Env, opts.Command)
	if err != nil {
		return err
	}
	_, err = c.run(ctx, args...)
	return err
}

// RespawnPane kills the process in a window's pane and starts opts.Command in
// its place. The window keeps its options, so remain-on-exit set beforehand
// applies to the new process from its first instant.
func (c *Client) RespawnPane(ctx context.Context, sessionName, windowName string, opts RespawnOptions) error {
	args := []string{"respawn-pane", "-k", "-t", windowTarget(sessionName, windowName)}
	args, err := c.appendLaunchArgs(args, opts.WorkingDir, opts.Env, opts.Command)
	if err != nil {
		return err
	}
	_, err = c.run(ctx, args...)
	return err
}

func (c *Client) appendLaunchArgs(args []string, dir string, env []string, command string) ([]string, error) {
	if dir != "" {
		if err := c.validate("workingDir", dir); err != nil {
			return nil, err
		}
		args = append(args, "-c", dir)
	}
	for _, e := range env {
		args = append(args, "-e", e)
	}
	if command != "" {
		args = append(args, command)
	}
	return args, nil
}

// KillWindow removes a window by label. A missing window is not an error.
func (c *Client) KillWindow(ctx context.Context, sessionName, windowName string) error {
	output, err := c.run(ctx, "kill-window", "-t", windowTarget(sessionName, windowName))
	if isMissingTarget(err, output) {
		return nil
	}
	return err
}

// SetRemainOnExit keeps a window around after its process exits, so a dead
// tunnel stays visible as a dead pane instead of disappearing.
func (c *Client) SetRemainOnExit(ctx context.Context, sessionName, windowName string) error {
	_, err := c.run(ctx, "set-option", "-w", "-t", windowTarget(sessionName, windowName), "remain-on-exit", "on")
	return err
}

// ListWindowsDetailed returns a list of windows with detailed information for the given session.
func (c *Client) ListWindowsDetailed(ctx context.Context, sessionName string) ([]Window, error) {
	format := "#{window_id}\t#{window_index}\t#{window_name}\t#{?window_active,1,0}\t#{pane_current_command}\t#{pane_pid}\t#{?pane_dead,1,0}"
	output, err := c.run(ctx, "list-windows", "-t", target(sessionName), "-F", format)
	if err != nil {
		return nil, err
	}
	return parseWindows(output), nil
}

func parseWindows(output string) []Window {
	lines := strings.Split(strings.TrimSpace(output), "\n")
	windows := make([]Window, 0, len(lines))
	for _, line := range lines {
		if line == "" {
			continue
		}
		parts := strings.Split(line, "\t")
		if len(parts) < 7 {
			continue // Skip malformed lines
		}

		index, err := strconv.Atoi(parts[1])
		if err != nil {
			continue
		}

		pid, err := strconv.Atoi(parts[5])
		if err != nil {
			pid = 0
		}

		windows = append(windows, Window{
			ID:       parts[0],
			Index:    index,
			Name:     parts[2],
			IsActive: parts[3] == "1",
			Command:  parts[4],
			PID:      pid,
			Dead:     parts[6] == "1",
		})
	}
	return windows
}

// ListSessions returns the names of all sessions on the server.
func (c *Client) ListSessions(ctx context.Context) ([]string, error) {
	output, err := c.run(ctx, "list-sessions", "-F", "#{session_name}")
	if err != nil {
		// If no sessions exist, tmux returns an error
		if isMissingTarget(err, output) || exitCode(err) == 1 {
			return []string{}, nil
		}
		return nil, err
	}

	var sessions []string
	for _, line := range strings.Split(strings.TrimSpace(output), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			sessions = append(sessions, line)
		}
	}
	return sessions, nil
}

// SwitchClientToSession switches the client to the specified session.
// It uses an exact match for the session name to avoid ambiguity.
func (c *Client) SwitchClientToSession(ctx context.Context, sessionName string) error {
	_, err := c.run(ctx, "switch-client", "-t", target(sessionName))
	return err
}

// AttachSession attaches the given terminal to the session and blocks until
// the user detaches.
func (c *Client) AttachSession(ctx context.Context, sessionName string, stdin io.Reader, stdout, stderr io.Writer) error {
	if err := c.runAttached(ctx, stdin, stdout, stderr, "attach-session", "-t", target(sessionName)); err != nil {
		return fmt.Errorf("failed to attach to %s: %w", sessionName, err)
	}
	return nil
}
