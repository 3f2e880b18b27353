package tmux

import (
	"context"
	"fmt"
)

// NewSession creates a detached session. The first window is named
// opts.WindowName and runs opts.Command in opts.WorkingDirectory.
func (c *Client) NewSession(ctx context.Context, opts NewSessionOptions) error {
	if opts.SessionName == "" {
		return fmt.Errorf("session name is required")
	}
	if err := c.validate("sessionName", opts.SessionName); err != nil {
		return err
	}
	if opts.WorkingDirectory != "" {
		if err := c.validate("workingDir", opts.WorkingDirectory); err != nil {
			return err
		}
	}
	if opts.WindowName != "" {
		if err := c.validate("windowLabel", opts.WindowName); err != nil {
			return err
		}
	}

	args := []string{"new-session", "-d", "-s", opts.SessionName}
	if opts.WorkingDirectory != "" {
		args = append(args, "-c", opts.WorkingDirectory)
	}
	if opts.WindowName != "" {
		args = append(args, "-n", opts.WindowName)
	}
	for _, e := range opts.Env {
		args = append(args, "-e", e)
	}
	if opts.Command != "" {
		args = append(args, opts.Command)
	}

	if _, err := c.run(ctx, args...); err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}
