package command

import (
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strings"
	"time"
)

const (
	// DefaultTimeout guards non-interactive commands against a hung binary
	DefaultTimeout = 2 * time.Minute

	// MaxTimeout is the maximum allowed timeout
	MaxTimeout = 10 * time.Minute

	// MaxSessionNameLength bounds tmux session names, prefix included
	MaxSessionNameLength = 128
)

var (
	sessionNameRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]*$`)
	windowLabelRegex = regexp.MustCompile(`^[a-z][a-z0-9-]*$`)
	binaryNameRegex  = regexp.MustCompile(`^[A-Za-z0-9._/+-]+$`)
)

// SafeBuilder provides secure command execution with validation
type SafeBuilder struct {
	defaultTimeout time.Duration
	validators     map[string]func(string) error
	executor       Executor
}

// NewSafeBuilder creates a new SafeBuilder instance with a RealExecutor
func NewSafeBuilder() *SafeBuilder {
	return NewSafeBuilderWithExecutor(&RealExecutor{})
}

// NewSafeBuilderWithExecutor creates a new SafeBuilder with a custom Executor
func NewSafeBuilderWithExecutor(exec Executor) *SafeBuilder {
	if exec == nil {
		exec = &RealExecutor{}
	}
	return &SafeBuilder{
		defaultTimeout: DefaultTimeout,
		validators:     makeDefaultValidators(),
		executor:       exec,
	}
}

// makeDefaultValidators returns the default set of validators
func makeDefaultValidators() map[string]func(string) error {
	return map[string]func(string) error{
		"sessionName": validateSessionName,
		"windowLabel": validateWindowLabel,
		"workingDir":  validateWorkingDir,
		"binaryName":  validateBinaryName,
	}
}

// validateSessionName ensures tmux session names are usable as exact-match targets
func validateSessionName(name string) error {
	if name == "" {
		return fmt.Errorf("session name cannot be empty")
	}

	if !sessionNameRegex.MatchString(name) {
		return fmt.Errorf("invalid session name: %s (must start with a letter or digit and contain only letters, digits, '.', '_' and '-')", name)
	}

	if len(name) > MaxSessionNameLength {
		return fmt.Errorf("session name too long: %s (max %d characters)", name, MaxSessionNameLength)
	}

	return nil
}

// validateWindowLabel ensures window labels are simple lowercase identifiers
func validateWindowLabel(label string) error {
	if !windowLabelRegex.MatchString(label) {
		return fmt.Errorf("invalid window label: %q", label)
	}
	return nil
}

// validateWorkingDir ensures the directory is absolute and free of NUL bytes
func validateWorkingDir(path string) error {
	if path == "" {
		return fmt.Errorf("working directory cannot be empty")
	}
	if !strings.HasPrefix(path, "/") {
		return fmt.Errorf("working directory must be absolute: %s", path)
	}
	if strings.ContainsRune(path, 0) {
		return fmt.Errorf("working directory contains invalid characters")
	}
	return nil
}

// validateBinaryName rejects shell metacharacters in executable names
func validateBinaryName(name string) error {
	if !binaryNameRegex.MatchString(name) {
		return fmt.Errorf("invalid binary name: %q", name)
	}
	return nil
}

// Command represents a safe command configuration
type Command struct {
	parent   context.Context
	ctx      context.Context
	cancel   context.CancelFunc
	name     string
	args     []string
	timeout  time.Duration
	executor Executor
}

// Build creates a new command bounded by the builder's default timeout.
func (sb *SafeBuilder) Build(ctx context.Context, name string, args ...string) (*Command, error) {
	cmd, err := sb.BuildInteractive(ctx, name, args...)
	if err != nil {
		return nil, err
	}
	return cmd.WithTimeout(sb.defaultTimeout), nil
}

// BuildInteractive creates a command without a timeout. Use it for commands
// that hand the terminal to the user, such as tmux attach-session.
func (sb *SafeBuilder) BuildInteractive(ctx context.Context, name string, args ...string) (*Command, error) {
	if name == "" {
		return nil, fmt.Errorf("command name cannot be empty")
	}
	if err := validateBinaryName(name); err != nil {
		return nil, err
	}
	for _, arg := range args {
		if strings.ContainsRune(arg, 0) {
			return nil, fmt.Errorf("argument for %s contains a NUL byte", name)
		}
	}

	return &Command{
		parent:   ctx,
		ctx:      ctx,
		cancel:   func() {},
		name:     name,
		args:     args,
		executor: sb.executor,
	}, nil
}

// WithTimeout sets a custom timeout for the command
func (c *Command) WithTimeout(timeout time.Duration) *Command {
	if timeout > MaxTimeout {
		timeout = MaxTimeout
	}

	c.cancel()
	c.ctx, c.cancel = context.WithTimeout(c.parent, timeout)
	c.timeout = timeout
	return c
}

// Validate validates specific arguments
func (sb *SafeBuilder) Validate(argType string, value string) error {
	validator, exists := sb.validators[argType]
	if !exists {
		return fmt.Errorf("no validator for argument type: %s", argType)
	}

	return validator(value)
}

// Exec creates and returns an exec.Cmd. The caller must call Close once the
// command has finished.
func (c *Command) Exec() *exec.Cmd {
	return c.executor.CommandContext(c.ctx, c.name, c.args...) //nolint:gosec // SafeBuilder provides validation
}

// CombinedOutput runs the command and releases its timeout.
func (c *Command) CombinedOutput() (string, error) {
	defer c.Close()
	output, err := c.Exec().CombinedOutput()
	return string(output), err
}

// Close releases the timeout context.
func (c *Command) Close() {
	c.cancel()
}

// String renders the command line for diagnostics.
func (c *Command) String() string {
	if len(c.args) == 0 {
		return c.name
	}
	return c.name + " " + strings.Join(c.args, " ")
}
