package lifecycle

import (
	"context"

	"github.com/grovetools/remux/errors"
	"github.com/grovetools/remux/pkg/orchestrator"
	"github.com/grovetools/remux/pkg/profiling"
	"github.com/grovetools/remux/pkg/sessions"
)

// Recover replaces the tunnel window of a live session and rediscovers its
// public URL. The assistant window, working directory and creation time are
// left alone. On discovery timeout the record keeps an empty URL.
func (c *Controller) Recover(ctx context.Context, name string) (sessions.Record, error) {
	st, err := c.observe(ctx, name)
	if err != nil {
		return sessions.Record{}, err
	}
	if st.recordErr != nil {
		return sessions.Record{}, st.recordErr
	}
	if !st.hasRecord {
		if st.live {
			return sessions.Record{}, errors.RecordNotFound(name).
				WithDetail("hint", "the tmux session has no record; stop it and run init again")
		}
		return sessions.Record{}, errors.SessionNotFound(name)
	}
	if !st.live {
		return st.record, errors.StaleMetadata(name, "its tmux session is not running; run 'remux stop "+name+"' and 'remux init "+name+"'")
	}

	log := c.logger.WithField("session", name)
	rec := st.record

	// Degraded: the old URL is no longer trusted.
	if rec.PublicURL != "" {
		log.WithField("old_url", rec.PublicURL).Info("Clearing public URL")
	}
	rec.PublicURL = ""
	rec.UpdatedAt = c.timestamp()
	if err := c.store.Write(rec); err != nil {
		return st.record, err
	}

	if err := c.orch.KillWindow(ctx, name, orchestrator.WindowTunnel); err != nil {
		return rec, err
	}
	if err := c.orch.CreateWindow(ctx, name, orchestrator.WindowTunnel, c.cfg.TunnelCommand); err != nil {
		return rec, err
	}
	log.Info("Restarted tunnel window")

	discover := profiling.Start("tunnel.discover")
	url, err := c.discoverer.Discover(ctx, c.cfg.Port, c.cfg.DiscoveryTimeout)
	discover.Stop()
	if err != nil {
		log.WithError(err).Warn("Tunnel discovery failed during recover")
		return rec, err
	}

	rec.PublicURL = url
	rec.UpdatedAt = c.timestamp()
	if err := c.store.Write(rec); err != nil {
		return rec, err
	}

	log.WithField("url", url).Info("Session recovered")
	c.notify(ctx, rec)
	return rec, nil
}
