// Package notify hands session events to an external notification command.
package notify

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"time"

	"github.com/grovetools/remux/command"
	"github.com/sirupsen/logrus"
)

// DefaultBinary is the notification command looked up on PATH.
const DefaultBinary = "remux-notify"

const notifyTimeout = 10 * time.Second

// Event describes a session whose public URL became available.
type Event struct {
	Name      string
	PublicURL string
	AttachCmd string
	StopCmd   string
}

// NewEvent builds an Event with the attach and stop command lines for name.
func NewEvent(name, publicURL string) Event {
	return Event{
		Name:      name,
		PublicURL: publicURL,
		AttachCmd: fmt.Sprintf("remux attach %s", name),
		StopCmd:   fmt.Sprintf("remux stop %s", name),
	}
}

// Notifier delivers events. Delivery is best effort and never fails the caller.
type Notifier interface {
	Notify(ctx context.Context, event Event)
}

// Nop discards events.
type Nop struct{}

func (Nop) Notify(context.Context, Event) {}

// CommandNotifier runs `<binary> <name> <url> <attach cmd> <stop cmd>`.
type CommandNotifier struct {
	binary   string
	builder  *command.SafeBuilder
	lookPath func(string) (string, error)
	logger   *logrus.Entry
}

// NewCommandNotifier creates a notifier for binary (DefaultBinary if empty).
func NewCommandNotifier(binary string, logger *logrus.Entry) *CommandNotifier {
	return NewCommandNotifierWithExecutor(binary, &command.RealExecutor{}, exec.LookPath, logger)
}

// NewCommandNotifierWithExecutor creates a notifier with injected process
// creation and PATH lookup.
func NewCommandNotifierWithExecutor(binary string, executor command.Executor, lookPath func(string) (string, error), logger *logrus.Entry) *CommandNotifier {
	if binary == "" {
		binary = DefaultBinary
	}
	if logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		logger = logrus.NewEntry(l)
	}
	return &CommandNotifier{
		binary:   binary,
		builder:  command.NewSafeBuilderWithExecutor(executor),
		lookPath: lookPath,
		logger:   logger,
	}
}

// Available reports whether the notification command is installed.
func (n *CommandNotifier) Available() bool {
	_, err := n.lookPath(n.binary)
	return err == nil
}

// Notify runs the notification command. A missing binary is a silent no-op
// and failures are only logged.
func (n *CommandNotifier) Notify(ctx context.Context, event Event) {
	log := n.logger.WithFields(logrus.Fields{"session": event.Name, "notifier": n.binary})
	if !n.Available() {
		log.Debug("Notifier not installed; skipping")
		return
	}

	cmd, err := n.builder.Build(ctx, n.binary, event.Name, event.PublicURL, event.AttachCmd, event.StopCmd)
	if err != nil {
		log.WithError(err).Debug("Could not build notifier command")
		return
	}
	cmd.WithTimeout(notifyTimeout)

	if output, err := cmd.CombinedOutput(); err != nil {
		log.WithError(err).WithField("output", output).Debug("Notifier failed")
		return
	}
	log.Debug("Notification sent")
}
