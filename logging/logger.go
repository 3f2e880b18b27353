// Package logging configures the logrus loggers used across remux.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/grovetools/remux/config"
	"github.com/grovetools/remux/pkg/paths"
	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
)

const (
	// LevelEnv overrides the configured log level.
	LevelEnv = "REMUX_LOG_LEVEL"
	// CallerEnv set to "true" enables caller reporting.
	CallerEnv = "REMUX_LOG_CALLER"
	// DebugEnv set to "1" sends structured logs to stderr in auto mode.
	DebugEnv = "REMUX_DEBUG"
)

// RunField tags every entry with the invocation it came from, so lines of
// concurrent remux processes can be told apart in the shared log file.
const RunField = "run"

var runID = uuid.New().String()[:8]

var (
	mu      sync.Mutex
	root    *logrus.Logger
	rootCfg Config
	loggers = make(map[string]*logrus.Entry)
)

// NewLogger returns the logger for a component. Entries are cached, and all
// components share one underlying logger and log file.
func NewLogger(component string) *logrus.Entry {
	mu.Lock()
	defer mu.Unlock()

	if entry, ok := loggers[component]; ok {
		return entry
	}
	if root == nil {
		rootCfg = loadConfig()
		root = newRoot(rootCfg, time.Now(), isInteractive())
	}
	entry := root.WithFields(logrus.Fields{"component": component, RunField: runID})
	loggers[component] = entry
	return entry
}

// SetVerbose raises every logger to debug and enables the stderr sink unless
// it was configured "never".
func SetVerbose(verbose bool) {
	if !verbose {
		return
	}
	NewLogger("remux")
	mu.Lock()
	defer mu.Unlock()
	root.SetLevel(logrus.DebugLevel)
	if rootCfg.Format.StructuredToStderr != "never" {
		root.SetOutput(GetGlobalOutput())
	}
}

// SetJSON switches the stderr sink to logrus's JSON formatter.
func SetJSON(enabled bool) {
	if !enabled {
		return
	}
	NewLogger("remux")
	mu.Lock()
	defer mu.Unlock()
	root.SetFormatter(&logrus.JSONFormatter{})
}

// Reset drops the shared logger so the next NewLogger re-reads configuration.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	if root != nil {
		for _, hooks := range root.Hooks {
			for _, h := range hooks {
				if fh, ok := h.(*fileHook); ok {
					fh.Close()
				}
			}
		}
	}
	root = nil
	rootCfg = Config{}
	loggers = make(map[string]*logrus.Entry)
}

// RunID returns the identifier of this process's log entries.
func RunID() string {
	return runID
}

// LogFilePath returns the file the log sink writes to on the given day, or
// "" when the sink is disabled.
func LogFilePath(cfg Config, day time.Time) string {
	if cfg.File.Disabled {
		return ""
	}
	if cfg.File.Path != "" {
		return expandPath(cfg.File.Path)
	}
	dir := paths.LogsDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, fmt.Sprintf("remux-%s.log", day.Format("2006-01-02")))
}

// CurrentConfig returns the logging section of the active configuration.
func CurrentConfig() Config {
	return loadConfig()
}

func loadConfig() Config {
	var logCfg Config
	cfg, err := config.LoadDefault()
	if err != nil {
		return logCfg
	}
	if err := cfg.UnmarshalExtension("logging", &logCfg); err != nil {
		logrus.Warnf("Failed to parse 'logging' config: %v", err)
	}
	return logCfg
}

func newRoot(logCfg Config, now time.Time, interactive bool) *logrus.Logger {
	logger := logrus.New()

	levelStr := "info"
	if v := os.Getenv(LevelEnv); v != "" {
		levelStr = v
	} else if logCfg.Level != "" {
		levelStr = logCfg.Level
	}
	level, err := logrus.ParseLevel(levelStr)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if os.Getenv(CallerEnv) == "true" || logCfg.ReportCaller {
		logger.SetReportCaller(true)
	}

	switch logCfg.Format.Preset {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	case "simple":
		logger.SetFormatter(&TextFormatter{Config: FormatConfig{
			DisableTimestamp: true,
			DisableComponent: true,
		}})
	default:
		logger.SetFormatter(&TextFormatter{Config: logCfg.Format})
	}

	if path := LogFilePath(logCfg, now); path != "" {
		if hook, err := newFileHook(path, logCfg.Format.Preset == "json"); err == nil {
			logger.AddHook(hook)
		} else if logCfg.File.Path != "" {
			logger.Warnf("Failed to open log file %s: %v", path, err)
		}
	}

	if shouldLogToStderr(logCfg.Format.StructuredToStderr, level, interactive) {
		logger.SetOutput(GetGlobalOutput())
	} else {
		logger.SetOutput(io.Discard)
	}
	return logger
}

// shouldLogToStderr applies the stderr mode. In "auto", structured logs reach
// stderr only when debugging or when stderr is not a terminal.
func shouldLogToStderr(mode string, level logrus.Level, interactive bool) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	default:
		isDebug := os.Getenv(DebugEnv) == "1" || level >= logrus.DebugLevel
		return isDebug || !interactive
	}
}

func isInteractive() bool {
	fd := os.Stderr.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// fileHook writes every entry, unstyled, to the log file regardless of the
// stderr sink.
type fileHook struct {
	mu        sync.Mutex
	file      *os.File
	formatter logrus.Formatter
}

func newFileHook(path string, json bool) (*fileHook, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}
	var formatter logrus.Formatter = &TextFormatter{Plain: true}
	if json {
		formatter = &logrus.JSONFormatter{}
	}
	return &fileHook{file: file, formatter: formatter}, nil
}

func (h *fileHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h *fileHook) Fire(entry *logrus.Entry) error {
	line, err := h.formatter.Format(entry)
	if err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	_, err = h.file.Write(line)
	return err
}

func (h *fileHook) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.file.Close()
}

func expandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}
