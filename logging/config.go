package logging

// Config is the "logging" section of remux.yml.
type Config struct {
	// Level is the minimum level written ("debug", "info", "warn", "error").
	// REMUX_LOG_LEVEL takes precedence.
	Level string `yaml:"level"`

	// ReportCaller adds file, line and function to each entry.
	// REMUX_LOG_CALLER=true enables it too.
	ReportCaller bool `yaml:"report_caller"`

	File FileSinkConfig `yaml:"file"`

	Format FormatConfig `yaml:"format"`
}

// FileSinkConfig configures the log file.
type FileSinkConfig struct {
	// Disabled turns the file sink off. It is on by default.
	Disabled bool `yaml:"disabled"`
	// Path overrides <state dir>/logs/remux-<date>.log.
	Path string `yaml:"path"`
}

// FormatConfig controls the log output format.
type FormatConfig struct {
	// Preset is "default", "simple" or "json".
	Preset           string `yaml:"preset"`
	DisableTimestamp bool   `yaml:"disable_timestamp"`
	DisableComponent bool   `yaml:"disable_component"`
	// StructuredToStderr is "auto" (default), "always" or "never".
	StructuredToStderr string `yaml:"structured_to_stderr"`
}
