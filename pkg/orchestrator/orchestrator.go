// Package orchestrator creates, inspects and tears down the tmux sessions
// that back remux sessions. It is the only package that drives tmux.
package orchestrator

import (
	"context"
	"io"
	"os"

	"github.com/grovetools/remux/errors"
	"github.com/grovetools/remux/pkg/tmux"
	"github.com/sirupsen/logrus"
)

// Window labels inside every remux session.
const (
	WindowAssistant = "assistant"
	WindowTunnel    = "tunnel"
)

// tunnelPlaceholder holds the tunnel pane open until the real command is
// respawned into it.
const tunnelPlaceholder = "cat"

// DefaultPrefix namespaces remux sessions on the tmux server.
const DefaultPrefix = "remux"

// Orchestrator is the narrow process-control surface used by the lifecycle
// controller. Names are remux session names, not tmux session names.
type Orchestrator interface {
	SessionExists(ctx context.Context, name string) (bool, error)
	CreateSession(ctx context.Context, name, workingDirectory string) error
	CreateWindow(ctx context.Context, name, label, command string) error
	KillWindow(ctx context.Context, name, label string) error
	Attach(ctx context.Context, name string) error
	KillSession(ctx context.Context, name string) error
	RenameSession(ctx context.Context, oldName, newName string) error
	ListWindows(ctx context.Context, name string) ([]tmux.Window, error)
	ListSessions(ctx context.Context) ([]string, error)
}

// Options configures a TmuxOrchestrator.
type Options struct {
	// Prefix namespaces session names; empty means DefaultPrefix.
	Prefix string
	// AssistantCommand runs in the assistant window.
	AssistantCommand string
	// TunnelCommand runs in the tunnel window.
	TunnelCommand string
	// Env is passed to both windows in "KEY=VALUE" form.
	Env []string

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// TmuxOrchestrator implements Orchestrator on a tmux server.
type TmuxOrchestrator struct {
	client     *tmux.Client
	opts       Options
	logger     *logrus.Entry
	insideTmux func() bool
}

// New creates a TmuxOrchestrator. The client is expected to come from
// tmux.NewClient, which has already verified that tmux is installed.
func New(client *tmux.Client, opts Options, logger *logrus.Entry) *TmuxOrchestrator {
	if opts.Prefix == "" {
		opts.Prefix = DefaultPrefix
	}
	if opts.Stdin == nil {
		opts.Stdin = os.Stdin
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	if logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		logger = logrus.NewEntry(l)
	}
	return &TmuxOrchestrator{
		client:     client,
		opts:       opts,
		logger:     logger,
		insideTmux: tmux.InsideTmux,
	}
}

// TmuxName returns the tmux session name for a remux session.
func (o *TmuxOrchestrator) TmuxName(name string) string {
	return tmux.QualifiedName(o.opts.Prefix, name)
}

func (o *TmuxOrchestrator) SessionExists(ctx context.Context, name string) (bool, error) {
	return o.client.SessionExists(ctx, o.TmuxName(name))
}

// CreateSession starts a detached session with the assistant window and the
// tunnel window, both rooted at workingDirectory. The tunnel window keeps its
// pane after the process exits so a dead tunnel remains visible.
func (o *TmuxOrchestrator) CreateSession(ctx context.Context, name, workingDirectory string) error {
	tmuxName := o.TmuxName(name)

	exists, err := o.client.SessionExists(ctx, tmuxName)
	if err != nil {
		return err
	}
	if exists {
		return errors.Collision(name, false, true).WithDetail("tmuxSession", tmuxName)
	}

	log := o.logger.WithFields(logrus.Fields{"session": name, "tmux_session": tmuxName})
	log.Debug("Creating tmux session")

	if err := o.client.NewSession(ctx, tmux.NewSessionOptions{
		SessionName:      tmuxName,
		WorkingDirectory: workingDirectory,
		WindowName:       WindowAssistant,
		Command:          o.opts.AssistantCommand,
		Env:              o.env(name),
	}); err != nil {
		return err
	}

	if err := o.startTunnelWindow(ctx, name, workingDirectory, o.opts.TunnelCommand); err != nil {
		return err
	}

	log.Info("Created tmux session")
	return nil
}

// CreateWindow appends a window to the session. The tunnel window gets
// remain-on-exit.
func (o *TmuxOrchestrator) CreateWindow(ctx context.Context, name, label, command string) error {
	if label == WindowTunnel {
		return o.startTunnelWindow(ctx, name, "", command)
	}
	return o.client.NewWindow(ctx, tmux.NewWindowOptions{
		Target:     "=" + o.TmuxName(name) + ":",
		WindowName: label,
		Command:    command,
		Env:        o.env(name),
	})
}

// startTunnelWindow opens the tunnel window on a placeholder, turns on
// remain-on-exit and only then starts the tunnel, so a tunnel that dies at
// startup leaves its output in a dead pane.
func (o *TmuxOrchestrator) startTunnelWindow(ctx context.Context, name, workingDirectory, command string) error {
	tmuxName := o.TmuxName(name)
	if err := o.client.NewWindow(ctx, tmux.NewWindowOptions{
		Target:     "=" + tmuxName + ":",
		WindowName: WindowTunnel,
		Command:    tunnelPlaceholder,
		WorkingDir: workingDirectory,
	}); err != nil {
		return err
	}
	if err := o.client.SetRemainOnExit(ctx, tmuxName, WindowTunnel); err != nil {
		return err
	}
	return o.client.RespawnPane(ctx, tmuxName, WindowTunnel, tmux.RespawnOptions{
		Command:    command,
		WorkingDir: workingDirectory,
		Env:        o.env(name),
	})
}

func (o *TmuxOrchestrator) KillWindow(ctx context.Context, name, label string) error {
	return o.client.KillWindow(ctx, o.TmuxName(name), label)
}

// Attach switches the current client when running inside tmux on the same
// server, and otherwise blocks in attach-session until the user detaches.
func (o *TmuxOrchestrator) Attach(ctx context.Context, name string) error {
	tmuxName := o.TmuxName(name)

	exists, err := o.client.SessionExists(ctx, tmuxName)
	if err != nil {
		return err
	}
	if !exists {
		return errors.SessionNotFound(name)
	}

	if o.insideTmux() && o.client.Socket() == "" {
		o.logger.WithField("session", name).Debug("Switching tmux client")
		return o.client.SwitchClientToSession(ctx, tmuxName)
	}
	o.logger.WithField("session", name).Debug("Attaching to tmux session")
	return o.client.AttachSession(ctx, tmuxName, o.opts.Stdin, o.opts.Stdout, o.opts.Stderr)
}

func (o *TmuxOrchestrator) KillSession(ctx context.Context, name string) error {
	return o.client.KillSession(ctx, o.TmuxName(name))
}

// RenameSession renames the tmux session. The new name must be free.
func (o *TmuxOrchestrator) RenameSession(ctx context.Context, oldName, newName string) error {
	newTmux := o.TmuxName(newName)
	exists, err := o.client.SessionExists(ctx, newTmux)
	if err != nil {
		return err
	}
	if exists {
		return errors.Collision(newName, false, true).WithDetail("tmuxSession", newTmux)
	}
	return o.client.RenameSession(ctx, o.TmuxName(oldName), newTmux)
}

func (o *TmuxOrchestrator) ListWindows(ctx context.Context, name string) ([]tmux.Window, error) {
	return o.client.ListWindowsDetailed(ctx, o.TmuxName(name))
}

// ListSessions returns the remux names of sessions in the namespace.
func (o *TmuxOrchestrator) ListSessions(ctx context.Context) ([]string, error) {
	all, err := o.client.ListSessions(ctx)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, s := range all {
		if name, ok := tmux.UnqualifiedName(o.opts.Prefix, s); ok {
			names = append(names, name)
		}
	}
	return names, nil
}

func (o *TmuxOrchestrator) env(name string) []string {
	env := append([]string{}, o.opts.Env...)
	return append(env, "REMUX_SESSION="+name)
}
