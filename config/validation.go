package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/grovetools/remux/errors"
)

// Validate checks the configuration after defaults and overrides are applied.
func (c *Config) Validate() error {
	if c.Tunnel.Port < 1 || c.Tunnel.Port > 65535 {
		return errors.ConfigInvalid(fmt.Sprintf("tunnel.port must be between 1 and 65535, got %d", c.Tunnel.Port)).
			WithDetail("field", "tunnel.port")
	}

	u, err := url.Parse(c.Tunnel.APIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.ConfigInvalid(fmt.Sprintf("tunnel.api_url %q is not an http(s) URL", c.Tunnel.APIURL)).
			WithDetail("field", "tunnel.api_url")
	}

	if c.Tunnel.DiscoveryTimeout <= 0 {
		return errors.ConfigInvalid("tunnel.discovery_timeout must be positive").
			WithDetail("field", "tunnel.discovery_timeout")
	}
	if c.Tunnel.PollInterval <= 0 {
		return errors.ConfigInvalid("tunnel.poll_interval must be positive").
			WithDetail("field", "tunnel.poll_interval")
	}

	if strings.TrimSpace(c.Tunnel.Command) == "" {
		return errors.ConfigInvalid("tunnel.command cannot be empty").WithDetail("field", "tunnel.command")
	}
	if _, err := c.TunnelCommand(); err != nil {
		return errors.Wrap(err, errors.ErrCodeConfigInvalid, "tunnel.command is not a valid template").
			WithDetail("field", "tunnel.command")
	}
	if strings.TrimSpace(c.Assistant.Command) == "" {
		return errors.ConfigInvalid("assistant.command cannot be empty").WithDetail("field", "assistant.command")
	}

	if c.Tmux.Prefix == "" || strings.ContainsAny(c.Tmux.Prefix, ".: ") {
		return errors.ConfigInvalid(fmt.Sprintf("tmux.prefix %q must be non-empty without '.', ':' or spaces", c.Tmux.Prefix)).
			WithDetail("field", "tmux.prefix")
	}

	return nil
}
