package config

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"text/template"
	"time"

	"github.com/grovetools/remux/errors"
	"github.com/grovetools/remux/pkg/paths"
	"github.com/pelletier/go-toml/v2"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Environment variables that override file values.
const (
	EnvConfigPath       = "REMUX_CONFIG"
	EnvTunnelPort       = "REMUX_TUNNEL_PORT"
	EnvTunnelAPIURL     = "REMUX_TUNNEL_API_URL"
	EnvDiscoveryTimeout = "REMUX_DISCOVERY_TIMEOUT"
	EnvTmuxSocket       = "REMUX_TMUX_SOCKET"
)

var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

// configNames are searched in the config directory, in order.
var configNames = []string{"remux.yml", "remux.yaml", "remux.toml"}

// Default returns the built-in configuration.
func Default() *Config {
	cfg := &Config{}
	cfg.SetDefaults()
	return cfg
}

// SetDefaults fills every unset field.
func (c *Config) SetDefaults() {
	if c.Version == "" {
		c.Version = "1.0"
	}
	if c.Tunnel.Port == 0 {
		c.Tunnel.Port = 7681
	}
	if c.Tunnel.APIURL == "" {
		c.Tunnel.APIURL = "http://127.0.0.1:4040"
	}
	if c.Tunnel.Command == "" {
		c.Tunnel.Command = "ngrok http {{.Port}}"
	}
	if c.Tunnel.DiscoveryTimeout == 0 {
		c.Tunnel.DiscoveryTimeout = Duration(30 * time.Second)
	}
	if c.Tunnel.PollInterval == 0 {
		c.Tunnel.PollInterval = Duration(500 * time.Millisecond)
	}
	if c.Assistant.Command == "" {
		c.Assistant.Command = "claude"
	}
	if c.Notify.Command == "" {
		c.Notify.Command = "remux-notify"
	}
	if c.Store.Dir == "" {
		c.Store.Dir = paths.SessionsDir()
	}
	if c.Tmux.Prefix == "" {
		c.Tmux.Prefix = "remux"
	}
}

// TunnelCommand renders the tunnel command template for the configured port.
func (c *Config) TunnelCommand() (string, error) {
	tmpl, err := template.New("tunnel").Option("missingkey=error").Parse(c.Tunnel.Command)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, struct{ Port int }{Port: c.Tunnel.Port}); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Load reads the configuration file at path, applies defaults and
// environment overrides, and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.ConfigNotFound(path)
		}
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to read config file").
			WithDetail("path", path)
	}

	cfg, err := LoadFromBytes(data, formatFor(path))
	if err != nil {
		if remuxErr, ok := errors.As(err); ok {
			return nil, remuxErr.WithDetail("path", path)
		}
		return nil, err
	}
	return cfg, nil
}

// LoadDefault loads $REMUX_CONFIG if set, otherwise the first of remux.yml,
// remux.yaml and remux.toml in the config directory. With no file present it
// returns the defaults.
func LoadDefault() (*Config, error) {
	return LoadDefaultWithLogger(nil)
}

// LoadDefaultWithLogger is LoadDefault with debug logging of the chosen file.
func LoadDefaultWithLogger(logger *logrus.Logger) (*Config, error) {
	if logger == nil {
		logger = logrus.New()
		logger.SetLevel(logrus.WarnLevel)
	}

	if path := os.Getenv(EnvConfigPath); path != "" {
		logger.WithField("path", path).Debug("Loading configuration from environment")
		return Load(path)
	}

	path, err := FindConfigFile(paths.ConfigDir())
	if err != nil {
		logger.Debug("No configuration file found, using defaults")
		cfg := Default()
		if err := cfg.applyEnv(); err != nil {
			return nil, err
		}
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		return cfg, nil
	}

	logger.WithField("path", path).Debug("Loading configuration")
	return Load(path)
}

// LoadFromBytes parses YAML or TOML configuration ("yaml" or "toml").
func LoadFromBytes(data []byte, format string) (*Config, error) {
	expanded := []byte(expandEnvVars(string(data)))

	var cfg Config
	switch format {
	case "toml":
		if err := toml.Unmarshal(expanded, &cfg); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to parse TOML configuration")
		}
		var raw map[string]interface{}
		if err := toml.Unmarshal(expanded, &raw); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to parse TOML configuration")
		}
		cfg.Extensions = extensionKeys(raw)
	default:
		if err := yaml.Unmarshal(expanded, &cfg); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to parse YAML configuration")
		}
	}

	cfg.SetDefaults()
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// FindConfigFile returns the first config file present in dir.
func FindConfigFile(dir string) (string, error) {
	if dir == "" {
		return "", errors.ConfigNotFound("")
	}
	for _, name := range configNames {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, nil
		}
	}
	return "", errors.ConfigNotFound(dir).WithDetail("searched", strings.Join(configNames, ", "))
}

// applyEnv applies REMUX_* overrides.
func (c *Config) applyEnv() error {
	if v := os.Getenv(EnvTunnelPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return errors.ConfigInvalid(EnvTunnelPort+" must be an integer").WithDetail("value", v)
		}
		c.Tunnel.Port = port
	}
	if v := os.Getenv(EnvTunnelAPIURL); v != "" {
		c.Tunnel.APIURL = v
	}
	if v := os.Getenv(EnvDiscoveryTimeout); v != "" {
		var d Duration
		if err := d.UnmarshalText([]byte(v)); err != nil {
			return errors.Wrap(err, errors.ErrCodeConfigInvalid, EnvDiscoveryTimeout+" is not a duration").
				WithDetail("value", v)
		}
		c.Tunnel.DiscoveryTimeout = d
	}
	if v, ok := os.LookupEnv(EnvTmuxSocket); ok {
		c.Tmux.Socket = v
	}
	return nil
}

func formatFor(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return "toml"
	}
	return "yaml"
}

var knownKeys = map[string]bool{
	"version": true, "tunnel": true, "assistant": true, "notify": true, "store": true, "tmux": true,
}

func extensionKeys(raw map[string]interface{}) map[string]interface{} {
	ext := make(map[string]interface{})
	for k, v := range raw {
		if !knownKeys[k] {
			ext[k] = v
		}
	}
	return ext
}

// expandEnvVars replaces ${VAR} with environment variable values
func expandEnvVars(content string) string {
	return envVarRegex.ReplaceAllStringFunc(content, func(match string) string {
		varName := envVarRegex.FindStringSubmatch(match)[1]

		// Handle default values: ${VAR:-default}
		parts := strings.SplitN(varName, ":-", 2)
		varName = parts[0]
		defaultValue := ""
		if len(parts) > 1 {
			defaultValue = parts[1]
		}

		if value := os.Getenv(varName); value != "" {
			return value
		}

		return defaultValue
	})
}
