package tunnel

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/grovetools/remux/errors"
	"github.com/grovetools/remux/pkg/retry"
	"github.com/sirupsen/logrus"
)

// DefaultInterval is the pause between polls of the agent API.
const DefaultInterval = 500 * time.Millisecond

// ErrNoMatch means the API answered but listed no https tunnel for the port.
var ErrNoMatch = stderrors.New("no https tunnel for port yet")

// Discoverer learns the public URL of the tunnel bound to a local port.
type Discoverer interface {
	Discover(ctx context.Context, localPort int, timeout time.Duration) (string, error)
}

// Poller implements Discoverer by polling the agent API.
type Poller struct {
	API      *APIClient
	Interval time.Duration
	Clock    retry.Clock
	Logger   *logrus.Entry
}

// NewPoller creates a Poller against the API at apiURL.
func NewPoller(apiURL string, logger *logrus.Entry) *Poller {
	if logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		logger = logrus.NewEntry(l)
	}
	return &Poller{
		API:      NewAPIClient(apiURL),
		Interval: DefaultInterval,
		Clock:    retry.RealClock,
		Logger:   logger,
	}
}

// Discover polls until the agent reports an https tunnel forwarding to
// localPort, returning its URL trimmed of whitespace. An unreachable API and a
// listing without a match are both retried; only the timeout is terminal.
func (p *Poller) Discover(ctx context.Context, localPort int, timeout time.Duration) (string, error) {
	if localPort < 1 || localPort > 65535 {
		return "", errors.InvalidInput(fmt.Sprintf("invalid local port %d", localPort))
	}

	interval := p.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}

	var publicURL string
	err := retry.Poll(ctx, retry.Policy{Interval: interval, Timeout: timeout, Clock: p.Clock},
		func(ctx context.Context) (bool, error) {
			tunnels, err := p.API.Tunnels(ctx)
			if err != nil {
				p.Logger.WithError(err).Debug("Tunnel API not ready")
				return false, err
			}
			if u, ok := Match(tunnels, localPort); ok {
				publicURL = u
				return true, nil
			}
			p.Logger.WithField("tunnels", len(tunnels)).Debug("No matching tunnel yet")
			return false, ErrNoMatch
		})
	if err != nil {
		var timeoutErr *retry.TimeoutError
		if stderrors.As(err, &timeoutErr) {
			return "", errors.DiscoveryTimeout(localPort, timeout, timeoutErr.LastErr).
				WithDetail("attempts", timeoutErr.Attempts).
				WithDetail("api", p.API.BaseURL())
		}
		return "", err
	}

	p.Logger.WithField("url", publicURL).Info("Discovered tunnel URL")
	return publicURL, nil
}

// Match selects the https tunnel forwarding to localPort.
func Match(tunnels []Tunnel, localPort int) (string, bool) {
	for _, t := range tunnels {
		port, ok := t.LocalPort()
		if !ok || port != localPort {
			continue
		}
		u := strings.TrimSpace(t.PublicURL)
		if strings.HasPrefix(u, "https://") && len(u) > len("https://") {
			return u, true
		}
	}
	return "", false
}
