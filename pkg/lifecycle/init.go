package lifecycle

import (
	"context"
	"os"
	"path/filepath"

	"github.com/grovetools/remux/errors"
	"github.com/grovetools/remux/pkg/naming"
	"github.com/grovetools/remux/pkg/profiling"
	"github.com/grovetools/remux/pkg/sessions"
	"github.com/sirupsen/logrus"
)

// DecideFunc answers a name collision during init.
type DecideFunc func(naming.Resolution) naming.Decision

// InitOptions configures Init.
type InitOptions struct {
	// Name is the requested session name. Empty derives one from
	// WorkingDirectory.
	Name string
	// WorkingDirectory is where both windows start. It must be absolute.
	WorkingDirectory string
	// Decide is consulted when Name is taken. Nil aborts.
	Decide DecideFunc
}

// InitResult describes the outcome of Init.
type InitResult struct {
	Record    sessions.Record
	Requested string
	// Reused is true when the caller chose to reuse an existing session;
	// nothing was created and the caller should attach.
	Reused bool
}

// Init creates a session: tmux session with both windows, tunnel
// discovery, record, notification. When discovery times out the tmux
// session is left running, a record without a URL is written so recover can
// resume, and a DISCOVERY_TIMEOUT error is returned.
func (c *Controller) Init(ctx context.Context, opts InitOptions) (InitResult, error) {
	wd := opts.WorkingDirectory
	if !filepath.IsAbs(wd) {
		return InitResult{}, errors.InvalidInput("working directory must be an absolute path").
			WithDetail("workingDirectory", wd)
	}
	if info, err := os.Stat(wd); err != nil || !info.IsDir() {
		return InitResult{}, errors.InvalidInput("working directory does not exist").
			WithDetail("workingDirectory", wd)
	}

	name := opts.Name
	if name == "" {
		name = naming.DefaultName(wd)
	}
	result := InitResult{Requested: name}

	res, err := c.resolver.Resolve(ctx, name)
	if err != nil {
		return result, err
	}

	if res.Collision() {
		decision := naming.Abort
		if opts.Decide != nil {
			decision = opts.Decide(res)
		}
		c.logger.WithFields(logrus.Fields{
			"session":  name,
			"record":   res.HasRecord,
			"live":     res.IsLive,
			"decision": decision.String(),
		}).Info("Session name collision")

		switch decision {
		case naming.Reuse:
			if !res.IsLive {
				return result, errors.StaleMetadata(name, "a record exists but its tmux session is not running; run 'remux stop "+name+"' to clean it up")
			}
			if res.HasRecord {
				rec, err := c.store.Read(name)
				if err == nil {
					result.Record = rec
				}
			}
			if result.Record.Name == "" {
				result.Record = sessions.Record{Name: name}
			}
			result.Reused = true
			return result, nil
		case naming.Suffix:
			name, err = c.resolver.Disambiguate(ctx, name)
			if err != nil {
				return result, err
			}
		default:
			return result, res.Err()
		}
	}

	log := c.logger.WithField("session", name)

	provision := profiling.Start("tmux.provision")
	err = c.orch.CreateSession(ctx, name, wd)
	provision.Stop()
	if err != nil {
		return result, err
	}
	log.WithField("dir", wd).Info("Provisioning session")

	created := c.timestamp()
	rec := sessions.Record{
		Name:             name,
		WorkingDirectory: wd,
		CreatedAt:        created,
		UpdatedAt:        created,
	}

	discover := profiling.Start("tunnel.discover")
	url, discoverErr := c.discoverer.Discover(ctx, c.cfg.Port, c.cfg.DiscoveryTimeout)
	discover.Stop()
	if discoverErr == nil {
		rec.PublicURL = url
	}

	if err := c.store.Write(rec); err != nil {
		return InitResult{Record: rec, Requested: result.Requested}, err
	}
	result.Record = rec

	if discoverErr != nil {
		log.WithError(discoverErr).Warn("Tunnel discovery failed; session left running")
		return result, discoverErr
	}

	log.WithField("url", rec.PublicURL).Info("Session active")
	c.notify(ctx, rec)
	return result, nil
}
