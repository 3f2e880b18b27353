package config

import (
	"fmt"
	"time"

	"github.com/invopop/jsonschema"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

//go:generate sh -c "cd .. && go run ./tools/schema-generator/"

// Duration is a time.Duration written as a Go duration string ("30s", "500ms")
// in both YAML and TOML.
type Duration time.Duration

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

func (d Duration) String() string {
	return time.Duration(d).String()
}

// UnmarshalText implements encoding.TextUnmarshaler (used by go-toml).
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	*d = Duration(v)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalYAML accepts duration strings.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: duration must be a string such as \"30s\"", node.Line)
	}
	return d.UnmarshalText([]byte(node.Value))
}

// MarshalYAML writes the duration string.
func (d Duration) MarshalYAML() (interface{}, error) {
	return d.String(), nil
}

// JSONSchema describes Duration as a string.
func (Duration) JSONSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:        "string",
		Pattern:     `^([0-9]+(\.[0-9]+)?(ns|us|µs|ms|s|m|h))+$`,
		Description: "Go duration string, e.g. 30s or 500ms",
	}
}

// TunnelConfig configures the tunnel process and its discovery.
type TunnelConfig struct {
	Port             int      `yaml:"port" toml:"port" jsonschema:"minimum=1,maximum=65535,description=Local port the tunnel forwards to and the assistant listens on"`
	APIURL           string   `yaml:"api_url" toml:"api_url" jsonschema:"description=Base URL of the tunnel agent's local API"`
	Command          string   `yaml:"command" toml:"command" jsonschema:"description=Tunnel command template; {{.Port}} is replaced with the port"`
	DiscoveryTimeout Duration `yaml:"discovery_timeout" toml:"discovery_timeout" jsonschema:"description=How long init and recover wait for a public URL"`
	PollInterval     Duration `yaml:"poll_interval" toml:"poll_interval" jsonschema:"description=Pause between tunnel API polls"`
}

// AssistantConfig configures the process in the assistant window.
type AssistantConfig struct {
	Command string `yaml:"command" toml:"command" jsonschema:"description=Command run in the assistant window"`
}

// NotifyConfig configures the external notification command.
type NotifyConfig struct {
	Enabled *bool  `yaml:"enabled,omitempty" toml:"enabled,omitempty" jsonschema:"description=Send a notification when a public URL is discovered (default: true)"`
	Command string `yaml:"command" toml:"command" jsonschema:"description=Notification command; receives name, URL, attach and stop command lines"`
}

// IsEnabled reports whether notifications are on. Unset means on.
func (n NotifyConfig) IsEnabled() bool {
	return n.Enabled == nil || *n.Enabled
}

// StoreConfig configures the metadata store.
type StoreConfig struct {
	Dir string `yaml:"dir,omitempty" toml:"dir,omitempty" jsonschema:"description=Directory holding one JSON record per session"`
}

// TmuxConfig configures the tmux server and namespace.
type TmuxConfig struct {
	Socket string `yaml:"socket,omitempty" toml:"socket,omitempty" jsonschema:"description=Dedicated tmux socket name (tmux -L); empty uses the default server"`
	Prefix string `yaml:"prefix" toml:"prefix" jsonschema:"description=Prefix of remux tmux session names"`
}

// Config is the remux configuration file.
type Config struct {
	Version   string          `yaml:"version" toml:"version" jsonschema:"description=Configuration version"`
	Tunnel    TunnelConfig    `yaml:"tunnel" toml:"tunnel"`
	Assistant AssistantConfig `yaml:"assistant" toml:"assistant"`
	Notify    NotifyConfig    `yaml:"notify" toml:"notify"`
	Store     StoreConfig     `yaml:"store" toml:"store"`
	Tmux      TmuxConfig      `yaml:"tmux" toml:"tmux"`

	// Extensions captures all other top-level keys, such as "logging".
	Extensions map[string]interface{} `yaml:",inline" toml:"-" jsonschema:"-"`
}

// UnmarshalExtension decodes a top-level section that Config does not model
// (for example "logging") into target, which must be a pointer. A missing
// section leaves target untouched.
//
// Example:
//
//	var logCfg logging.Config
//	err := cfg.UnmarshalExtension("logging", &logCfg)
func (c *Config) UnmarshalExtension(key string, target interface{}) error {
	extensionConfig, ok := c.Extensions[key]
	if !ok {
		return nil
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		TagName:          "yaml",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return fmt.Errorf("failed to create mapstructure decoder: %w", err)
	}

	if err := decoder.Decode(extensionConfig); err != nil {
		return fmt.Errorf("failed to decode extension config for '%s': %w", key, err)
	}

	return nil
}
