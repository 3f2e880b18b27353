// Package lifecycle implements the remux session operations on top of the
// metadata store, the tmux orchestrator and tunnel discovery.
package lifecycle

import (
	"context"
	"io"
	"time"

	"github.com/grovetools/remux/errors"
	"github.com/grovetools/remux/pkg/naming"
	"github.com/grovetools/remux/pkg/notify"
	"github.com/grovetools/remux/pkg/orchestrator"
	"github.com/grovetools/remux/pkg/process"
	"github.com/grovetools/remux/pkg/sessions"
	"github.com/grovetools/remux/pkg/tunnel"
	"github.com/sirupsen/logrus"
)

// DefaultDiscoveryTimeout bounds how long init and recover wait for a URL.
const DefaultDiscoveryTimeout = 30 * time.Second

// Config holds the tunnel settings the controller needs.
type Config struct {
	// Port is the local port the tunnel forwards to.
	Port int
	// TunnelCommand restarts the tunnel during recover.
	TunnelCommand string
	// DiscoveryTimeout bounds tunnel discovery.
	DiscoveryTimeout time.Duration
}

// Deps are the collaborators of a Controller.
type Deps struct {
	Store        sessions.Store
	Orchestrator orchestrator.Orchestrator
	Discoverer   tunnel.Discoverer
	Notifier     notify.Notifier
	Logger       *logrus.Entry
	// Now defaults to time.Now.
	Now func() time.Time
	// Inspect defaults to process.Inspect.
	Inspect func(pid int) process.State
}

// Controller runs the session lifecycle operations.
type Controller struct {
	store      sessions.Store
	orch       orchestrator.Orchestrator
	resolver   *naming.Resolver
	discoverer tunnel.Discoverer
	notifier   notify.Notifier
	cfg        Config
	logger     *logrus.Entry
	now        func() time.Time
	inspect    func(pid int) process.State
}

// New creates a Controller.
func New(deps Deps, cfg Config) *Controller {
	if cfg.Port == 0 {
		cfg.Port = tunnel.DefaultPort
	}
	if cfg.DiscoveryTimeout <= 0 {
		cfg.DiscoveryTimeout = DefaultDiscoveryTimeout
	}
	if deps.Notifier == nil {
		deps.Notifier = notify.Nop{}
	}
	if deps.Logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		deps.Logger = logrus.NewEntry(l)
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Inspect == nil {
		deps.Inspect = process.Inspect
	}
	return &Controller{
		store:      deps.Store,
		orch:       deps.Orchestrator,
		resolver:   naming.NewResolver(deps.Store, deps.Orchestrator),
		discoverer: deps.Discoverer,
		notifier:   deps.Notifier,
		cfg:        cfg,
		logger:     deps.Logger,
		now:        deps.Now,
		inspect:    deps.Inspect,
	}
}

// Resolver exposes the name resolver used by the controller.
func (c *Controller) Resolver() *naming.Resolver {
	return c.resolver
}

func (c *Controller) timestamp() time.Time {
	return c.now().UTC().Truncate(time.Second)
}

// state is what currently exists for a name.
type state struct {
	record    sessions.Record
	hasRecord bool
	// recordErr is set when a record file exists but cannot be read.
	recordErr error
	live      bool
}

// observe reads the record and checks the live session immediately before
// an operation acts on them.
func (c *Controller) observe(ctx context.Context, name string) (state, error) {
	if err := sessions.ValidateName(name); err != nil {
		return state{}, errors.Wrap(err, errors.ErrCodeInvalidInput, "invalid session name")
	}

	var st state
	rec, err := c.store.Read(name)
	switch {
	case err == nil:
		st.record = rec
		st.hasRecord = true
	case errors.Is(err, errors.ErrCodeNotFound):
	case errors.Is(err, errors.ErrCodeStaleMetadata):
		st.recordErr = err
	default:
		return state{}, err
	}

	live, err := c.orch.SessionExists(ctx, name)
	if err != nil {
		return state{}, err
	}
	st.live = live
	return st, nil
}

func (c *Controller) notify(ctx context.Context, rec sessions.Record) {
	c.notifier.Notify(ctx, notify.NewEvent(rec.Name, rec.PublicURL))
}
